package models

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode converts a schemaless document into T. Backends disagree on scalar
// types (sqlite returns 0/1 for booleans, JSON numbers arrive as float64),
// so the decoder is weakly typed.
func Decode[T any](doc map[string]any) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(doc); err != nil {
		return out, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// DecodeAll decodes every document, failing on the first bad one.
func DecodeAll[T any](docs []map[string]any) ([]T, error) {
	out := make([]T, 0, len(docs))
	for i, doc := range docs {
		v, err := Decode[T](doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
