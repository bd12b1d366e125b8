package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// envelopeSchema is the {success, data, message} wrapper every endpoint uses.
// message is a string, a list of strings or a field-error map.
const envelopeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["success"],
  "properties": {
    "success": {"type": "boolean"},
    "message": {
      "anyOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}},
        {"type": "object"},
        {"type": "null"}
      ]
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func envelope() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("envelope.json", envelopeSchema)
	})

	return schema, schemaErr
}

// validateEnvelope checks body against the envelope schema.
func validateEnvelope(body []byte) error {
	s, err := envelope()
	if err != nil {
		return fmt.Errorf("compile envelope schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return nil
}

// succeeded reads the success flag. Callers validate the envelope first.
func succeeded(body []byte) bool {
	return gjson.GetBytes(body, "success").Bool()
}

// firstMessage returns the first human-readable message in an envelope,
// preferring a plain string, then the first string of an array, then the
// first entry of a field-error map. An "errors" map is consulted last.
func firstMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	if msg := messageFrom(gjson.GetBytes(body, "message")); msg != "" {
		return msg
	}

	return messageFrom(gjson.GetBytes(body, "errors"))
}

// fieldErrors collects a per-field map from an object-valued message or
// errors member, keeping the first text for each field.
func fieldErrors(body []byte) map[string]string {
	if !gjson.ValidBytes(body) {
		return nil
	}

	fields := make(map[string]string)

	for _, path := range []string{"message", "errors"} {
		r := gjson.GetBytes(body, path)
		if !r.IsObject() {
			continue
		}

		r.ForEach(func(key, value gjson.Result) bool {
			if _, seen := fields[key.String()]; seen {
				return true
			}

			if msg := messageFrom(value); msg != "" {
				fields[key.String()] = msg
			}

			return true
		})
	}

	if len(fields) == 0 {
		return nil
	}

	return fields
}

func messageFrom(r gjson.Result) string {
	switch {
	case !r.Exists():
		return ""
	case r.Type == gjson.String:
		return strings.TrimSpace(r.Str)
	case r.IsArray():
		for _, item := range r.Array() {
			if msg := messageFrom(item); msg != "" {
				return msg
			}
		}
	case r.IsObject():
		var msg string

		r.ForEach(func(_, value gjson.Result) bool {
			msg = messageFrom(value)
			return msg == ""
		})

		return msg
	}

	return ""
}

// decodePath unmarshals the JSON found at path into out. A missing path
// leaves out untouched.
func decodePath(body []byte, path string, out any) error {
	r := gjson.GetBytes(body, path)
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}

	if err := json.Unmarshal([]byte(r.Raw), out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return nil
}

// Page is one page of a paginated collection nested under data.<resource>.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	LastPage    int
	Total       int
}

// HasNext reports whether another page follows.
func (p *Page[T]) HasNext() bool {
	return p.CurrentPage < p.LastPage
}

// Filter returns a copy of the page keeping only the items keep accepts.
func (p *Page[T]) Filter(keep func(T) bool) *Page[T] {
	if p == nil {
		return nil
	}

	out := *p
	out.Items = make([]T, 0, len(p.Items))

	for _, item := range p.Items {
		if keep(item) {
			out.Items = append(out.Items, item)
		}
	}

	out.Total -= len(p.Items) - len(out.Items)

	return &out
}

// decodePage reads data.<resource>. Both the paginated object form
// ({data: [...], current_page, ...}) and a bare array are accepted.
func decodePage[T any](body []byte, resource string) (*Page[T], error) {
	base := "data." + resource
	r := gjson.GetBytes(body, base)

	page := &Page[T]{Items: []T{}}

	if r.IsArray() {
		if err := decodePath(body, base, &page.Items); err != nil {
			return nil, err
		}

		page.CurrentPage, page.LastPage, page.Total = 1, 1, len(page.Items)

		return page, nil
	}

	if err := decodePath(body, base+".data", &page.Items); err != nil {
		return nil, err
	}

	page.CurrentPage = int(r.Get("current_page").Int())
	page.LastPage = int(r.Get("last_page").Int())
	page.Total = int(r.Get("total").Int())

	if page.CurrentPage == 0 {
		page.CurrentPage = 1
	}

	if page.LastPage == 0 {
		page.LastPage = page.CurrentPage
	}

	return page, nil
}
