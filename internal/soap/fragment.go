package soap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const fragmentTag = "fragment"

// Fragment builds the body of a request element. Values set through it are
// escaped on output, so caller-supplied tokens and names cannot change the
// structure of the request.
//
//	f := soap.NewFragment()
//	f.AddText("timg:VideoSourceToken", token)
//	body, err := f.Build()
type Fragment struct {
	root *etree.Element
}

// NewFragment returns an empty fragment
func NewFragment() *Fragment {
	return &Fragment{root: etree.NewElement(fragmentTag)}
}

// Add appends an empty element and returns it for further nesting
func (f *Fragment) Add(name string) *etree.Element {
	return f.root.CreateElement(name)
}

// AddText appends an element holding text
func (f *Fragment) AddText(name, text string) *etree.Element {
	el := f.root.CreateElement(name)
	el.SetText(text)
	return el
}

// AddFloat appends an element holding a decimal number
func (f *Fragment) AddFloat(name string, v float64) *etree.Element {
	return f.AddText(name, FormatFloat(v))
}

// AddBool appends an element holding xs:boolean text
func (f *Fragment) AddBool(name string, v bool) *etree.Element {
	return f.AddText(name, strconv.FormatBool(v))
}

// Empty reports whether nothing has been added
func (f *Fragment) Empty() bool {
	return len(f.root.Child) == 0
}

// Build serializes the fragment's nodes without a wrapping element
func (f *Fragment) Build() (string, error) {
	if f.Empty() {
		return "", nil
	}
	doc := etree.NewDocument()
	doc.SetRoot(f.root.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to serialize fragment: %w", err)
	}
	s = strings.TrimPrefix(s, "<"+fragmentTag+">")
	return strings.TrimSuffix(s, "</"+fragmentTag+">"), nil
}

// SetFloat creates child name under parent holding a decimal number
func SetFloat(parent *etree.Element, name string, v float64) *etree.Element {
	el := parent.CreateElement(name)
	el.SetText(FormatFloat(v))
	return el
}

// SetText creates child name under parent holding text
func SetText(parent *etree.Element, name, text string) *etree.Element {
	el := parent.CreateElement(name)
	el.SetText(text)
	return el
}

// FormatFloat renders v in the shortest form that round-trips, without exponent
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
