package soap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

// EnvelopeNamespace is the SOAP 1.2 envelope namespace
const EnvelopeNamespace = "http://www.w3.org/2003/05/soap-envelope"

var namespaceDecl = regexp.MustCompile(`^xmlns(?::([A-Za-z_][A-Za-z0-9_.\-]*))?="([^"<&]*)"$`)

// CreateRequest wraps body in a SOAP 1.2 envelope declaring namespaces in
// order after the envelope namespace. When username is non-empty a
// WS-Security UsernameToken header is added, timestamped with the device
// clock (local time plus clockDifference).
func CreateRequest(body string, namespaces []string, clockDifference time.Duration, username, password string) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	env := doc.CreateElement("s:Envelope")
	env.CreateAttr("xmlns:s", EnvelopeNamespace)

	declared := map[string]string{"xmlns:s": EnvelopeNamespace}
	for _, ns := range namespaces {
		m := namespaceDecl.FindStringSubmatch(ns)
		if m == nil {
			return "", NewInvalidArgument("CreateRequest", "namespaces", fmt.Sprintf("contains malformed declaration %q", ns))
		}
		key := "xmlns"
		if m[1] != "" {
			key += ":" + m[1]
		}
		if uri, ok := declared[key]; ok {
			if uri != m[2] {
				return "", NewInvalidArgument("CreateRequest", "namespaces", fmt.Sprintf("redeclares %s", key))
			}
			continue
		}
		declared[key] = m[2]
		env.CreateAttr(key, m[2])
	}

	if username != "" {
		token, err := NewUsernameToken(username, password, clockDifference)
		if err != nil {
			return "", &Error{Kind: ErrInvalidArgument, Method: "CreateRequest", Message: "could not build security token", Err: err}
		}
		appendSecurityHeader(env.CreateElement("s:Header"), token)
	}

	bodyEl := env.CreateElement("s:Body")
	if body == "" {
		return doc.WriteToString()
	}
	if err := checkFragment(body); err != nil {
		return "", &Error{Kind: ErrInvalidArgument, Method: "CreateRequest", Argument: "body", Message: "is not well-formed XML", Err: err}
	}

	// The body goes in byte for byte; etree only lays out the envelope.
	marker := "body-" + uuid.NewString()
	bodyEl.SetText(marker)
	out, err := doc.WriteToString()
	if err != nil {
		return "", err
	}
	i := strings.LastIndex(out, marker)
	if i < 0 {
		return "", errors.New("body marker missing from envelope")
	}
	return out[:i] + body + out[i+len(marker):], nil
}

func appendSecurityHeader(header *etree.Element, token *UsernameToken) {
	sec := header.CreateElement("Security")
	sec.CreateAttr("s:mustUnderstand", "1")
	sec.CreateAttr("xmlns", WSSENamespace)

	ut := sec.CreateElement("UsernameToken")
	ut.CreateElement("Username").SetText(token.Username)

	pw := ut.CreateElement("Password")
	pw.CreateAttr("Type", PasswordDigestType)
	pw.SetText(token.Digest)

	nonce := ut.CreateElement("Nonce")
	nonce.CreateAttr("EncodingType", Base64EncodingType)
	nonce.SetText(token.Nonce)

	created := ut.CreateElement("Created")
	created.CreateAttr("xmlns", WSUNamespace)
	created.SetText(token.Created)
}

// checkFragment checks that body is a well-formed sequence of XML nodes that
// stays inside its parent element. Undeclared namespace prefixes are accepted
// since fragments rely on the envelope's declarations.
func checkFragment(body string) error {
	dec := xml.NewDecoder(strings.NewReader("<fragment>" + body + "</fragment>"))
	dec.Strict = true

	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			if depth == 0 && dec.InputOffset() > int64(len("<fragment>")) {
				return errors.New("fragment closes its parent element")
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.ProcInst, xml.Directive:
			return errors.New("fragment holds a processing instruction or directive")
		}
	}
}
