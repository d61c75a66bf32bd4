// Package fieldmap converts structured records to and from the flat
// name/value maps a stream entry is made of. Bare scalars are rejected: the
// log's wire format requires named fields.
package fieldmap

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// EncodingError reports a value that cannot cross the field-map boundary.
type EncodingError struct {
	Reason string
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fieldmap: %s: %v", e.Reason, e.Err)
	}
	return "fieldmap: " + e.Reason
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Encode maps a structured record to its field-map form. Field names follow
// the record's JSON tags.
func Encode(entity any) (map[string]any, error) {
	if entity == nil {
		return nil, &EncodingError{Reason: "entity must not be nil"}
	}

	rv := reflect.ValueOf(entity)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, &EncodingError{Reason: "entity must not be nil"}
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return nil, &EncodingError{Reason: fmt.Sprintf("entity must be a structured value, got %s", rv.Kind())}
	}

	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, &EncodingError{Reason: "entity is not serializable", Err: err}
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &EncodingError{Reason: "entity is not representable as a field map", Err: err}
	}
	return fields, nil
}

// Decode fills target (a non-nil pointer) from a field map.
func Decode(fields map[string]any, target any) error {
	if fields == nil {
		return &EncodingError{Reason: "field map must not be nil"}
	}
	if target == nil {
		return &EncodingError{Reason: "target must not be nil"}
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &EncodingError{Reason: fmt.Sprintf("target must be a non-nil pointer, got %T", target)}
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return &EncodingError{Reason: "field map is not serializable", Err: err}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return &EncodingError{Reason: fmt.Sprintf("field map does not fit %T", target), Err: err}
	}
	return nil
}
