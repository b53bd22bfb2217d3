// Package transcript turns the host's conversation payload into the flat text
// document stored as an issue's chat.md.
package transcript

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

// Part is one element of an entry's parts list. It is a TextPart, a
// ToolPart or an UnknownPart.
type Part interface {
	isPart()
}

// TextPart is dialogue text.
type TextPart struct {
	Text string
}

// ToolPart is a tool invocation. Input, Output and Error hold the payload
// rendered as text; an empty string means the payload was absent.
type ToolPart struct {
	Name   string
	Input  string
	Output string
	Error  string
}

// UnknownPart is any part kind the renderer does not display.
type UnknownPart struct {
	Type string
}

func (TextPart) isPart()    {}
func (ToolPart) isPart()    {}
func (UnknownPart) isPart() {}

// Entry is one message of the conversation.
type Entry struct {
	Role  string
	Parts []Part
}

// Unrecognized carries a payload that is not a list of entries, rendered as
// text for diagnostics.
type Unrecognized struct {
	Dump string
}

// Payload is a decoded conversation. Exactly one of Entries or Unrecognized
// is meaningful: Unrecognized is non-nil when the input was not a list.
type Payload struct {
	Entries      []Entry
	Unrecognized *Unrecognized
}

const nullDump = "<null>"

// Decode interprets data as a list of entries. It never fails: anything that
// is not a JSON array becomes an Unrecognized payload.
func Decode(data []byte) Payload {
	trimmed := bytes.TrimSpace(data)

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil || items == nil {
		return Payload{Unrecognized: &Unrecognized{Dump: dump(trimmed)}}
	}

	entries := make([]Entry, 0, len(items))
	for _, raw := range items {
		if e, ok := decodeEntry(raw); ok {
			entries = append(entries, e)
		}
	}
	return Payload{Entries: entries}
}

// ExtractMessages finds the messages list in a host payload. It accepts a
// bare array, or an object whose "messages" field is an array or an object
// holding the array under "items", "messages" or "list". ok is false when
// none of those shapes is present.
func ExtractMessages(data []byte) (messages json.RawMessage, ok bool) {
	trimmed := bytes.TrimSpace(data)
	if isArray(trimmed) {
		return trimmed, true
	}

	obj := asObject(trimmed)
	m, found := obj["messages"]
	if !found {
		return nil, false
	}
	if isArray(m) {
		return m, true
	}
	inner := asObject(m)
	for _, key := range []string{"items", "messages", "list"} {
		if v, found := inner[key]; found && isArray(v) {
			return v, true
		}
	}
	return nil, false
}

// Count returns the number of elements of a JSON array, or 0.
func Count(messages json.RawMessage) int {
	var items []json.RawMessage
	if err := json.Unmarshal(messages, &items); err != nil {
		return 0
	}
	return len(items)
}

func decodeEntry(raw json.RawMessage) (Entry, bool) {
	obj := asObject(raw)
	if obj == nil {
		return Entry{}, false
	}

	var info map[string]interface{}
	_ = json.Unmarshal(obj["info"], &info)

	e := Entry{Role: "message"}
	for _, key := range []string{"role", "type", "kind"} {
		if v := cast.ToString(info[key]); v != "" {
			e.Role = v
			break
		}
	}

	var parts []json.RawMessage
	_ = json.Unmarshal(obj["parts"], &parts)
	for _, rawPart := range parts {
		if p, ok := decodePart(rawPart); ok {
			e.Parts = append(e.Parts, p)
		}
	}
	return e, true
}

func decodePart(raw json.RawMessage) (Part, bool) {
	obj := asObject(raw)
	if obj == nil {
		return nil, false
	}

	typ, _ := asString(obj["type"])
	switch typ {
	case "text":
		if text, ok := asString(obj["text"]); ok {
			return TextPart{Text: text}, true
		}
	case "tool":
		return decodeTool(obj), true
	}
	return UnknownPart{Type: typ}, true
}

func decodeTool(obj map[string]json.RawMessage) ToolPart {
	name, _ := asString(obj["tool"])
	name = strings.TrimSpace(name)
	if name == "" {
		name = "unknown"
	}

	st := asObject(obj["state"])
	input := st["input"]
	if _, ok := asString(st["raw"]); ok {
		input = st["raw"]
	}
	return ToolPart{
		Name:   name,
		Input:  toolText(input),
		Output: toolText(st["output"]),
		Error:  toolText(st["error"]),
	}
}

// toolText renders a tool payload: strings as their trimmed value, anything
// else as indented JSON.
func toolText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if s, ok := asString(raw); ok {
		return strings.TrimSpace(s)
	}
	return indent(raw)
}

func dump(raw []byte) string {
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		return nullDump
	case !json.Valid(raw):
		return string(raw)
	}
	if s, ok := asString(raw); ok {
		return s
	}
	return indent(raw)
}

func indent(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func asObject(raw json.RawMessage) map[string]json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func asString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isArray(raw json.RawMessage) bool {
	var items []json.RawMessage
	return json.Unmarshal(raw, &items) == nil && items != nil
}
