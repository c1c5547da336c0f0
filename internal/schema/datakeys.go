package schema

import (
	"encoding/json"
	"fmt"

	"docrepo/internal/model"
)

// EntryError reports a malformed data-key declaration.
type EntryError struct {
	Key string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("Invalid format for data_keys entry: %s", e.Key)
}

var knownTypes = map[string]bool{
	model.DataKeyString:  true,
	model.DataKeyNumber:  true,
	model.DataKeyInteger: true,
	model.DataKeyBoolean: true,
	model.DataKeyDate:    true,
}

// ParseDataKeys checks a data-key declaration object and returns it parsed.
// Every entry must be an object with a known string "type" and a boolean "required".
// The first offending entry, in declaration order, is reported as an *EntryError.
func ParseDataKeys(raw []byte) (model.DataKeys, error) {
	keys, fields, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	out := make(model.DataKeys, len(keys))
	for _, key := range keys {
		var entry map[string]any
		if err := json.Unmarshal(fields[key], &entry); err != nil || entry == nil {
			return nil, &EntryError{Key: key}
		}
		typ, ok := entry["type"].(string)
		if !ok || !knownTypes[typ] {
			return nil, &EntryError{Key: key}
		}
		required, ok := entry["required"].(bool)
		if !ok {
			return nil, &EntryError{Key: key}
		}
		out[key] = model.DataKey{Type: typ, Required: required}
	}
	return out, nil
}
