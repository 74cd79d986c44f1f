package handlers

import (
	"fmt"
	"time"
)

// Args gives typed access to the fields of a handler's structured input.
type Args map[string]any

// ArgsOf returns the input as Args. The input must be an object.
func ArgsOf(in any) (Args, error) {
	m, ok := in.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("handler input must be an object, got %T", in)
	}
	return Args(m), nil
}

// String returns the string field key, or def when it is absent.
func (a Args) String(key, def string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string, got %T", key, v)
	}
	return s, nil
}

// RequiredString returns the string field key and fails when it is absent or
// empty.
func (a Args) RequiredString(key string) (string, error) {
	s, err := a.String(key, "")
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("field %q is required", key)
	}
	return s, nil
}

// Bool returns the bool field key, or def when it is absent.
func (a Args) Bool(key string, def bool) (bool, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("field %q must be a bool, got %T", key, v)
	}
	return b, nil
}

// Duration parses the string field key as a time.Duration, or returns def
// when it is absent.
func (a Args) Duration(key string, def time.Duration) (time.Duration, error) {
	s, err := a.String(key, "")
	if err != nil || s == "" {
		return def, err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return d, nil
}
