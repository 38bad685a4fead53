package transcode

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// marshalXML encodes an arbitrary payload as XML under the given root tag.
// Map keys are emitted in sorted order so output is deterministic; slice
// elements repeat under an "item" tag.
func marshalXML(rootTag string, v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeElement(&buf, safeTag(rootTag), v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeElement(buf *bytes.Buffer, tag string, v interface{}) error {
	buf.WriteString("<" + tag + ">")

	switch val := v.(type) {
	case nil:
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := writeElement(buf, safeTag(k), val[k]); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, item := range val {
			if err := writeElement(buf, "item", item); err != nil {
				return err
			}
		}
	case string:
		if err := xml.EscapeText(buf, []byte(val)); err != nil {
			return err
		}
	default:
		if err := xml.EscapeText(buf, []byte(fmt.Sprintf("%v", val))); err != nil {
			return err
		}
	}

	buf.WriteString("</" + tag + ">")
	return nil
}

// safeTag makes a string usable as an XML tag name
func safeTag(tag string) string {
	if tag == "" {
		return "value"
	}
	tag = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, tag)
	if tag[0] >= '0' && tag[0] <= '9' {
		tag = "_" + tag
	}
	return tag
}

// unmarshalXML parses an XML document into its root tag name and a
// structured value: nested elements become maps, repeated sibling tags
// become slices, and text-only elements become strings. Attributes are
// dropped; the gateway relays element content only.
func unmarshalXML(data []byte) (rootTag string, value interface{}, err error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", nil, fmt.Errorf("xml document has no root element")
		}
		if err != nil {
			return "", nil, fmt.Errorf("parsing xml: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			value, err := parseElement(dec)
			if err != nil {
				return "", nil, fmt.Errorf("parsing xml: %w", err)
			}
			return start.Name.Local, value, nil
		}
	}
}

func parseElement(dec *xml.Decoder) (interface{}, error) {
	children := make(map[string]interface{})
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(dec)
			if err != nil {
				return nil, err
			}
			name := t.Name.Local
			if existing, ok := children[name]; ok {
				if slice, ok := existing.([]interface{}); ok {
					children[name] = append(slice, child)
				} else {
					children[name] = []interface{}{existing, child}
				}
			} else {
				children[name] = child
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(children) > 0 {
				return children, nil
			}
			return strings.TrimSpace(text.String()), nil
		}
	}
}
