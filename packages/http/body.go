package http

import (
	"encoding/json"
)

// RawResponseKey is the field that wraps a payload which is not a JSON object.
const RawResponseKey = "raw_response"

type BodyKind int

const (
	// BodyParsed is a payload that decoded to a JSON object.
	BodyParsed BodyKind = iota
	// BodyRawText is anything else, kept verbatim.
	BodyRawText
)

func (k BodyKind) String() string {
	if k == BodyParsed {
		return "parsed"
	}
	return "raw"
}

// Body is a response payload tagged as either Parsed or RawText.
type Body struct {
	kind   BodyKind
	raw    []byte
	fields map[string]any
}

func ParseBody(data []byte) *Body {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err == nil && fields != nil {
		return &Body{kind: BodyParsed, raw: data, fields: fields}
	}
	return &Body{kind: BodyRawText, raw: data}
}

// RawText wraps text that should not be interpreted as JSON.
func RawText(text string) *Body {
	return &Body{kind: BodyRawText, raw: []byte(text)}
}

func (b *Body) Kind() BodyKind {
	return b.kind
}

func (b *Body) IsParsed() bool {
	return b.kind == BodyParsed
}

func (b *Body) Text() string {
	return string(b.raw)
}

// Fields returns the decoded object, or {raw_response: text} for raw payloads.
func (b *Body) Fields() map[string]any {
	if b.kind == BodyParsed {
		return b.fields
	}
	return map[string]any{RawResponseKey: string(b.raw)}
}

// JSON returns a JSON document for the Fields view.
func (b *Body) JSON() []byte {
	if b.kind == BodyParsed {
		return b.raw
	}
	data, _ := json.Marshal(b.Fields())
	return data
}

func (b *Body) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Fields())
}

// Indented renders the Fields view for humans.
func (b *Body) Indented() string {
	data, err := json.MarshalIndent(b.Fields(), "", "  ")
	if err != nil {
		return b.Text()
	}
	return string(data)
}
