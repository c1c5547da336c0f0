// Package schema checks document metadata against an app's data-key schema.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"docrepo/internal/model"
)

const (
	msgInvalidSchema   = "Invalid schema format. Please provide a valid JSON string."
	msgInvalidMetadata = "Invalid meta data format. Please provide a valid JSON string."
)

var errNotObject = errors.New("json value is not an object")

// Result is the outcome of a validation run. Valid is true iff Errors is empty.
type Result struct {
	Valid  bool
	Errors []string
}

// Message joins every error into one human-readable sentence list.
func (r Result) Message() string {
	return strings.Join(r.Errors, ". ")
}

// Validate checks metadataJSON against a pre-parsed schema.
// Schema fields are visited in sorted order.
func Validate(schema model.DataKeys, metadataJSON string) Result {
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return validate(keys, schema, metadataJSON)
}

// ValidateJSON parses schemaJSON first and then validates metadataJSON against it.
// Schema fields are visited in declaration order.
func ValidateJSON(schemaJSON, metadataJSON string) Result {
	keys, schema, err := parseSchema([]byte(schemaJSON))
	if err != nil {
		return invalid(msgInvalidSchema)
	}
	return validate(keys, schema, metadataJSON)
}

func validate(schemaKeys []string, schema model.DataKeys, metadataJSON string) Result {
	dataKeys, fields, err := decodeObject([]byte(metadataJSON))
	if err != nil {
		return invalid(msgInvalidMetadata)
	}

	var errs []string
	for _, key := range dataKeys {
		if _, ok := schema[key]; !ok {
			errs = append(errs, fmt.Sprintf("Unexpected key: %s is not defined in the schema", key))
		}
	}

	for _, key := range schemaKeys {
		dk := schema[key]
		raw, present := fields[key]
		if !present {
			if dk.Required {
				errs = append(errs, fmt.Sprintf("Missing required field: %s", key))
			}
			continue
		}

		value, err := decodeValue(raw)
		if err != nil {
			return invalid(msgInvalidMetadata)
		}
		if !matchesType(value, dk.Type) {
			errs = append(errs, fmt.Sprintf("Invalid type for field: %s. Expected %s, but got %s", key, dk.Type, typeOf(value)))
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func invalid(msg string) Result {
	return Result{Valid: false, Errors: []string{msg}}
}

func parseSchema(data []byte) ([]string, model.DataKeys, error) {
	keys, fields, err := decodeObject(data)
	if err != nil {
		return nil, nil, err
	}
	schema := make(model.DataKeys, len(fields))
	for _, k := range keys {
		var dk model.DataKey
		if err := json.Unmarshal(fields[k], &dk); err != nil {
			return nil, nil, err
		}
		schema[k] = dk
	}
	return keys, schema, nil
}

// decodeObject reads a single top-level JSON object, keeping its keys in document order.
// A repeated key keeps its first position and its last value.
func decodeObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errNotObject
	}

	var keys []string
	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, seen := fields[key]; !seen {
			keys = append(keys, key)
		}
		fields[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, errors.New("trailing data after json object")
	}
	return keys, fields, nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func matchesType(value any, typ string) bool {
	switch typ {
	case model.DataKeyString:
		_, ok := value.(string)
		return ok
	case model.DataKeyNumber:
		n, ok := value.(json.Number)
		if !ok {
			return false
		}
		f, ok := numberValue(n)
		return ok && !math.IsNaN(f)
	case model.DataKeyInteger:
		n, ok := value.(json.Number)
		if !ok {
			return false
		}
		f, ok := numberValue(n)
		return ok && !math.IsInf(f, 0) && f == math.Trunc(f)
	case model.DataKeyBoolean:
		_, ok := value.(bool)
		return ok
	case model.DataKeyDate:
		switch v := value.(type) {
		case string:
			return isDate(v)
		case json.Number:
			return isDate(v.String())
		}
		return false
	default:
		return false
	}
}

// numberValue converts a JSON number, letting out-of-range values become infinities.
func numberValue(n json.Number) (float64, bool) {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// typeOf names the runtime type of a decoded JSON value.
func typeOf(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return "object"
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"2006",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.RFC822,
	time.RFC822Z,
	time.ANSIC,
	time.UnixDate,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
