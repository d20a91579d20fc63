package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResultKind tells which arm of a Result is populated
type ResultKind int

const (
	// Structured means the body parsed as JSON (an empty body is JSON null)
	Structured ResultKind = iota
	// PlainText means the body was not JSON and is kept verbatim
	PlainText
)

func (k ResultKind) String() string {
	if k == PlainText {
		return "plain-text"
	}
	return "structured"
}

// Result is a successful response under the dual-format policy:
// either a parsed JSON document or the raw text of a non-JSON body.
type Result struct {
	kind ResultKind
	raw  json.RawMessage
	text string
}

// StructuredResult wraps a JSON document
func StructuredResult(raw json.RawMessage) Result {
	return Result{kind: Structured, raw: raw}
}

// TextResult wraps a non-JSON body
func TextResult(text string) Result {
	return Result{kind: PlainText, text: text}
}

func (r Result) Kind() ResultKind { return r.kind }

// Text returns the raw body and true when the result is plain text
func (r Result) Text() (string, bool) {
	return r.text, r.kind == PlainText
}

// Raw returns the JSON document of a structured result, nil otherwise
func (r Result) Raw() json.RawMessage {
	if r.kind != Structured {
		return nil
	}
	return r.raw
}

// IsNull reports a structured result whose document is JSON null, as produced by an empty body
func (r Result) IsNull() bool {
	return r.kind == Structured && (len(r.raw) == 0 || string(r.raw) == "null")
}

// Contains reports whether a plain-text result contains substr
func (r Result) Contains(substr string) bool {
	return r.kind == PlainText && strings.Contains(r.text, substr)
}

// Decode unmarshals a structured result into v
func (r Result) Decode(v any) error {
	if r.kind != Structured {
		return fmt.Errorf("expected a JSON response, got plain text %q", r.text)
	}
	if err := json.Unmarshal(r.raw, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
