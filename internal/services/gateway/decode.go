package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
)

// decodeList accepts a bare JSON array or an object carrying the array under
// field. null, an empty body and a missing field all decode to an empty list.
func decodeList[T any](p Payload, field string) ([]T, error) {
	if p.IsNull() {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(p)

	var raw json.RawMessage = trimmed
	if trimmed[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		inner, ok := wrapper[field]
		if !ok || Payload(inner).IsNull() {
			return nil, nil
		}
		raw = inner
	}

	if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] != '[' {
		return nil, fmt.Errorf("expected a list in %q", field)
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", field, err)
	}
	return out, nil
}

// decodeObject decodes the object stored under field, or the whole body when
// the field is absent.
func decodeObject[T any](p Payload, field string) (T, error) {
	var out T
	if p.IsNull() {
		return out, fmt.Errorf("empty response body")
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(p, &wrapper); err == nil {
		if inner, ok := wrapper[field]; ok && !Payload(inner).IsNull() {
			return out, Payload(inner).Decode(&out)
		}
	}
	return out, p.Decode(&out)
}

// NormalizeCatalog turns a model listing into a Catalog. Both a bare array and
// {"models": [...]} are accepted.
func NormalizeCatalog(p Payload) (models.Catalog, error) {
	list, err := decodeList[models.CatalogModel](p, "models")
	if err != nil {
		return models.EmptyCatalog(), err
	}
	return models.FoundCatalog(list), nil
}
