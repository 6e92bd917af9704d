package soap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Node is a parsed element: child elements keyed by local name. A leaf
// element without attributes is a plain string, repeated siblings become an
// []any in document order, attributes live under "$" and text mixed with
// child elements or attributes under "_".
type Node = map[string]any

const (
	// AttrKey holds an element's attributes as map[string]string
	AttrKey = "$"
	// TextKey holds an element's text when it also has attributes or children
	TextKey = "_"
)

// Result is a parsed, fault-free response
type Result struct {
	Method string
	Raw    []byte
	Header Node
	Body   Node
}

// Get walks the Body by element names. Numeric indexing is not supported;
// when a step hits repeated siblings the first one is followed.
func (r *Result) Get(path ...string) any {
	if r == nil {
		return nil
	}
	return Lookup(r.Body, path...)
}

// String returns the text at path in the Body, or ""
func (r *Result) String(path ...string) string {
	return Text(r.Get(path...))
}

// Response returns the <Method>Response element, or nil when the Body holds
// something else
func (r *Result) Response() Node {
	if r == nil {
		return nil
	}
	n, _ := First(r.Body[r.Method+"Response"]).(Node)
	return n
}

// Lookup walks n by element names, following the first of any repeated siblings
func Lookup(n Node, path ...string) any {
	var cur any = n
	for _, name := range path {
		node, ok := First(cur).(Node)
		if !ok {
			return nil
		}
		cur, ok = node[name]
		if !ok {
			return nil
		}
	}
	return cur
}

// First returns v, or its first element when v is a list of siblings
func First(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

// All returns v as a list of siblings, however many there were
func All(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

// Text returns the character content of a parsed value
func Text(v any) string {
	switch t := First(v).(type) {
	case string:
		return t
	case Node:
		s, _ := t[TextKey].(string)
		return s
	default:
		return ""
	}
}

// Attr returns attribute name of a parsed element, or ""
func Attr(v any, name string) string {
	n, ok := First(v).(Node)
	if !ok {
		return ""
	}
	attrs, _ := n[AttrKey].(map[string]string)
	return attrs[name]
}

// ParseResponse parses a SOAP envelope into a Result. A Fault in the Body is
// returned as a ProtocolFault error, anything that is not a well-formed
// envelope as a MalformedResponse error.
func ParseResponse(methodName string, raw []byte) (*Result, error) {
	name, root, err := parseTree(raw)
	if err != nil {
		return nil, NewMalformedResponse(methodName, err)
	}
	if name != "Envelope" {
		return nil, NewMalformedResponse(methodName, fmt.Errorf("root element is %s, not Envelope", name))
	}

	env, _ := root.(Node)
	if env == nil {
		return nil, NewMalformedResponse(methodName, errors.New("envelope has no Body"))
	}
	bodyVal, ok := env["Body"]
	if !ok {
		return nil, NewMalformedResponse(methodName, errors.New("envelope has no Body"))
	}

	res := &Result{
		Method: methodName,
		Raw:    raw,
		Header: asNode(env["Header"]),
		Body:   asNode(bodyVal),
	}

	if fault, ok := res.Body["Fault"]; ok {
		return nil, translateFault(methodName, fault)
	}
	return res, nil
}

func asNode(v any) Node {
	if n, ok := First(v).(Node); ok {
		return n
	}
	return Node{}
}

func translateFault(method string, v any) *Error {
	f := asNode(v)

	// SOAP 1.2
	code := Text(Lookup(f, "Code", "Value"))
	subcode := Text(Lookup(f, "Code", "Subcode", "Value"))
	reason := Text(Lookup(f, "Reason", "Text"))

	// SOAP 1.1
	if code == "" {
		code = Text(f["faultcode"])
	}
	if reason == "" {
		reason = Text(f["faultstring"])
	}

	return NewProtocolFault(method, code, subcode, reason)
}

type frame struct {
	name     string
	children Node
	attrs    map[string]string
	text     strings.Builder
}

func (f *frame) value() any {
	text := strings.TrimSpace(f.text.String())
	if len(f.children) == 0 && f.attrs == nil {
		return text
	}
	n := f.children
	if n == nil {
		n = Node{}
	}
	if f.attrs != nil {
		n[AttrKey] = f.attrs
	}
	if text != "" {
		n[TextKey] = text
	}
	return n
}

func addChild(n Node, name string, v any) {
	existing, ok := n[name]
	if !ok {
		n[name] = v
		return
	}
	if list, ok := existing.([]any); ok {
		n[name] = append(list, v)
		return
	}
	n[name] = []any{existing, v}
}

// parseTree decodes a single-rooted document strictly and returns the root's
// local name and parsed value
func parseTree(raw []byte) (string, any, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = true

	var (
		stack    []*frame
		rootName string
		root     any
		done     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if done {
				return "", nil, errors.New("content after document element")
			}
			f := &frame{name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				if f.attrs == nil {
					f.attrs = make(map[string]string)
				}
				f.attrs[a.Name.Local] = a.Value
			}
			stack = append(stack, f)

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) != 0 {
					return "", nil, errors.New("text outside document element")
				}
				continue
			}
			stack[len(stack)-1].text.Write(t)

		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			v := f.value()
			if len(stack) == 0 {
				rootName, root, done = f.name, v, true
				continue
			}
			parent := stack[len(stack)-1]
			if parent.children == nil {
				parent.children = Node{}
			}
			addChild(parent.children, f.name, v)
		}
	}

	if !done {
		return "", nil, errors.New("empty document")
	}
	return rootName, root, nil
}
