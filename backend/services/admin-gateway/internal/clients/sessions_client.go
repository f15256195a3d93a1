package clients

import "context"

// SessionsClient reads academic sessions from the school backend.
type SessionsClient struct {
	base *BaseClient
}

// NewSessionsClient returns client.
func NewSessionsClient(base *BaseClient) *SessionsClient {
	return &SessionsClient{base: base}
}

// ListSessions returns the raw session records; field names vary between backends.
func (c *SessionsClient) ListSessions(ctx context.Context) ([]map[string]any, error) {
	var records []map[string]any
	if err := c.base.getList(ctx, "/sessions", &records); err != nil {
		return nil, err
	}
	return records, nil
}
