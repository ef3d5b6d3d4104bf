// Package xmljson converts XML documents (SharePoint Atom feeds and OData
// payloads) into the compact JSON shape consumed by flow contexts.
//
// Each element becomes an object keyed by its prefixed name. Attributes go
// under "_attributes", text (CDATA included) under "_text", and repeated
// siblings collapse into an array. Whitespace between elements and comments
// are dropped.
package xmljson

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/cockroachdb/errors"
)

const (
	AttributesKey  = "_attributes"
	TextKey        = "_text"
	DeclarationKey = "_declaration"
)

// Convert parses data and returns its compact representation.
func Convert(data []byte) (map[string]any, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, "error parsing xml")
	}
	if doc.Root() == nil {
		return nil, errors.New("error parsing xml: no root element")
	}

	out := make(map[string]any)
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.ProcInst:
			if t.Target == "xml" {
				out[DeclarationKey] = map[string]any{AttributesKey: parseInst(t.Inst)}
			}
		case *etree.Element:
			addChild(out, t.FullTag(), convertElement(t))
		}
	}
	return out, nil
}

// Text returns the "_text" value of the object found by walking path, or
// false when any step is missing.
func Text(doc map[string]any, path ...string) (string, bool) {
	var cur any = doc
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = m[p]; !ok {
			return "", false
		}
	}
	m, ok := cur.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m[TextKey].(string)
	return s, ok
}

func convertElement(el *etree.Element) map[string]any {
	obj := make(map[string]any)

	if len(el.Attr) > 0 {
		attrs := make(map[string]any, len(el.Attr))
		for _, a := range el.Attr {
			attrs[a.FullKey()] = a.Value
		}
		obj[AttributesKey] = attrs
	}

	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			addChild(obj, t.FullTag(), convertElement(t))
		case *etree.CharData:
			if t.IsWhitespace() {
				continue
			}
			addChild(obj, TextKey, t.Data)
		}
	}
	return obj
}

// addChild stores v under key, turning the slot into an array on the
// second occurrence.
func addChild(obj map[string]any, key string, v any) {
	existing, ok := obj[key]
	if !ok {
		obj[key] = v
		return
	}
	if arr, ok := existing.([]any); ok {
		obj[key] = append(arr, v)
		return
	}
	obj[key] = []any{existing, v}
}

// parseInst reads pseudo-attributes such as version="1.0" encoding="utf-8".
func parseInst(inst string) map[string]any {
	attrs := make(map[string]any)
	for _, field := range strings.Fields(inst) {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		attrs[k] = strings.Trim(v, `"'`)
	}
	return attrs
}
