package layout

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/0mao0/minerpick/internal/model"
)

// unwrap peels JSON strings that carry encoded JSON. Some deployments encode
// the content list once, some twice.
func unwrap(raw json.RawMessage) (json.RawMessage, error) {
	data := bytes.TrimSpace(raw)

	for len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}

		data = bytes.TrimSpace([]byte(s))
	}

	return data, nil
}

// DecodeContentList accepts a content list as a JSON array, as an encoded
// JSON string, or wrapped in {"content_list": [...]}. It returns the elements
// that decode and the normalized array. Elements that fail to decode are
// skipped.
func DecodeContentList(raw json.RawMessage) ([]model.Element, json.RawMessage, error) {
	data, err := unwrap(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: content list: %w", ErrInvalidResponse, err)
	}

	if len(data) == 0 || string(data) == "null" {
		return nil, nil, nil
	}

	if data[0] == '{' {
		var wrapped struct {
			ContentList json.RawMessage `json:"content_list"`
		}

		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, nil, fmt.Errorf("%w: content list: %w", ErrInvalidResponse, err)
		}

		return DecodeContentList(wrapped.ContentList)
	}

	var items []json.RawMessage

	if err := json.Unmarshal(data, &items); err != nil {
		return nil, nil, fmt.Errorf("%w: content list: %w", ErrInvalidResponse, err)
	}

	elements := make([]model.Element, 0, len(items))

	for _, item := range items {
		var e model.Element

		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}

		elements = append(elements, e)
	}

	return elements, data, nil
}

// DecodeTables reads a table id to definition map. Anything that is not an
// object yields an empty map.
func DecodeTables(raw json.RawMessage) map[string]model.TableDefinition {
	out := make(map[string]model.TableDefinition)

	data, err := unwrap(raw)
	if err != nil || len(data) == 0 || data[0] != '{' {
		return out
	}

	var entries map[string]json.RawMessage

	if err := json.Unmarshal(data, &entries); err != nil {
		return out
	}

	for id, entry := range entries {
		var def model.TableDefinition

		if err := json.Unmarshal(entry, &def); err != nil {
			continue
		}

		if def.ID == "" {
			def.ID = id
		}

		def.Enriched = def.Enriched || len(def.Cells) > 0
		out[id] = def
	}

	return out
}
