// Package document parses form submissions into a field-addressable XML tree and patches
// single fields of stored submissions.
package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"mobileforms-service/internal/pkg/exceptions"
	"strings"

	"github.com/beevik/etree"
)

// Document is a parsed form submission. Reads never reparse, so repeated extractions within
// one processing pass see the same tree.
type Document struct {
	tree *etree.Document
}

// Parse builds a Document from raw. Input that is not a single well-formed XML element
// fails with a malformed document error and no Document is returned.
func Parse(raw []byte) (*Document, error) {
	if err := checkWellFormed(raw); err != nil {
		return nil, exceptions.ErrDocumentMalformed(err)
	}

	tree := etree.NewDocument()
	tree.ReadSettings.PreserveCData = true
	if err := tree.ReadFromBytes(raw); err != nil {
		return nil, exceptions.ErrDocumentMalformed(err)
	}
	if tree.Root() == nil {
		return nil, exceptions.ErrDocumentMalformed(errors.New("document has no root element"))
	}
	return &Document{tree: tree}, nil
}

// Extract returns the trimmed text of field. The second result is false when the path does
// not resolve or resolves to empty text.
func (d *Document) Extract(field FieldLocator) (string, bool) {
	path, ok := field.compiled()
	if !ok {
		return "", false
	}
	element := d.tree.FindElementPath(path)
	if element == nil {
		return "", false
	}
	value := strings.TrimSpace(element.Text())
	if value == "" {
		return "", false
	}
	return value, true
}

// match resolves field to exactly one element. It never creates elements.
func (d *Document) match(field FieldLocator) error {
	path, ok := field.compiled()
	if !ok {
		return exceptions.ErrDocumentUnknownField(int(field))
	}
	switch elements := d.tree.FindElementsPath(path); len(elements) {
	case 0:
		return exceptions.ErrDocumentFieldNotFound(field.Path())
	case 1:
		return nil
	default:
		return exceptions.ErrDocumentAmbiguousField(field.Path(), len(elements))
	}
}

// PatchField returns raw with the text of field replaced by value. Every byte outside the
// addressed text is carried over unchanged. raw itself is never modified; on any error the
// caller still holds the original bytes.
func PatchField(raw []byte, field FieldLocator, value string) ([]byte, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := doc.match(field); err != nil {
		return nil, err
	}

	target, err := locateText(raw, strings.Split(strings.TrimPrefix(field.Path(), "/"), "/"))
	if err != nil {
		return nil, exceptions.ErrDocumentMalformed(err)
	}

	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(value)); err != nil {
		return nil, exceptions.ErrDocumentMalformed(err)
	}

	patched := make([]byte, 0, len(raw)+escaped.Len()+len(target.name)+3)
	if target.selfClosing {
		// <name/> becomes <name>value</name>; attributes stay as written.
		patched = append(patched, raw[:target.start-2]...)
		patched = append(patched, '>')
		patched = append(patched, escaped.Bytes()...)
		patched = append(patched, "</"+target.name+">"...)
		patched = append(patched, raw[target.start:]...)
		return patched, nil
	}
	patched = append(patched, raw[:target.start]...)
	patched = append(patched, escaped.Bytes()...)
	patched = append(patched, raw[target.end:]...)
	return patched, nil
}

// textSpan is the byte range of an element's leading character data inside the raw input.
type textSpan struct {
	start, end  int
	name        string
	selfClosing bool
}

// locateText finds the first element whose ancestry matches segments and returns the span
// of its leading character data. The span stops at the first child element, comment or
// processing instruction, matching what the tree reports as the element's text.
func locateText(raw []byte, segments []string) (textSpan, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.Strict = true

	var stack []string
	var found textSpan
	matched := false
	for {
		before := int(decoder.InputOffset())
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return textSpan{}, errors.New("addressed element not found in input")
		}
		if err != nil {
			return textSpan{}, err
		}
		after := int(decoder.InputOffset())

		if matched {
			switch token.(type) {
			case xml.CharData:
				continue
			case xml.EndElement:
				// The synthetic end of <name/> consumes no input.
				found.selfClosing = after == before && found.start == before
			}
			found.end = before
			return found, nil
		}

		switch t := token.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if equalPath(stack, segments) {
				matched = true
				found = textSpan{start: after, name: rawTagName(raw[before:after])}
			}
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
}

func equalPath(stack, segments []string) bool {
	if len(stack) != len(segments) {
		return false
	}
	for i := range stack {
		if stack[i] != segments[i] {
			return false
		}
	}
	return true
}

// rawTagName returns the qualified name exactly as written in a start tag.
func rawTagName(tag []byte) string {
	name := bytes.TrimPrefix(tag, []byte("<"))
	if i := bytes.IndexAny(name, " \t\r\n/>"); i >= 0 {
		name = name[:i]
	}
	return string(name)
}

// checkWellFormed runs the strict decoder over raw so unbalanced or truncated input is
// rejected before the tree is built.
func checkWellFormed(raw []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.Strict = true
	roots := 0
	depth := 0
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		switch token.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	if roots != 1 {
		return errors.New("document must have exactly one root element")
	}
	return nil
}
