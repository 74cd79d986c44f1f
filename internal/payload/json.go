package payload

import (
	"bytes"
	"fmt"

	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// DecodeJSON parses a JSON document into a Go payload.
func DecodeJSON(data []byte) (any, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	ty, err := ctyjson.ImpliedType(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}
	val, err := ctyjson.Unmarshal(data, ty)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}
	return FromCty(val)
}

// EncodeJSON renders a payload as compact JSON. Object keys are sorted.
func EncodeJSON(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	val, err := ToCty(v)
	if err != nil {
		return nil, err
	}
	if val.IsNull() {
		return []byte("null"), nil
	}
	return ctyjson.Marshal(val, val.Type())
}
