package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// listEnvelopeKeys are the wrapper keys the backend uses around collections.
var listEnvelopeKeys = []string{"data", "sessions", "fees", "transactions", "classes", "items", "results"}

// unwrapList returns the JSON array at the top of body or under a known wrapper key.
// A missing or null collection decodes as an empty array.
func unwrapList(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return json.RawMessage("[]"), nil
	}
	if body[0] == '[' {
		return body, nil
	}
	if body[0] != '{' {
		return nil, errors.New("clients: expected JSON array or object")
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, err
	}
	for _, key := range listEnvelopeKeys {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			return raw, nil
		}
		if len(raw) > 0 && raw[0] == '{' {
			return unwrapList(raw)
		}
	}
	return json.RawMessage("[]"), nil
}

// unwrapObject returns the object under "data" when the backend wraps single records.
func unwrapObject(body []byte) json.RawMessage {
	body = bytes.TrimSpace(body)
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return body
	}
	if raw, ok := wrapper["data"]; ok {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '{' {
			return raw
		}
	}
	return body
}

// getList fetches path and decodes the (possibly wrapped) collection into out. Numbers
// landing in interface values stay json.Number so large ids keep every digit.
func (c *BaseClient) getList(ctx context.Context, path string, out interface{}) error {
	var raw json.RawMessage
	if err := c.DoJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return err
	}
	list, err := unwrapList(raw)
	if err != nil {
		return fmt.Errorf("clients: decode GET %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(list))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("clients: decode GET %s: %w", path, err)
	}
	return nil
}
