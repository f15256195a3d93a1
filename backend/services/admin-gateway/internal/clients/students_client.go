package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"schooladmin/backend/services/admin-gateway/internal/models"
)

// StudentsClient reads student and class records.
type StudentsClient struct {
	base *BaseClient
}

// NewStudentsClient returns client.
func NewStudentsClient(base *BaseClient) *StudentsClient {
	return &StudentsClient{base: base}
}

// GetStudent fetches one user record.
func (c *StudentsClient) GetStudent(ctx context.Context, userID string) (*models.Student, error) {
	path := "/users/" + url.PathEscape(userID)
	var raw json.RawMessage
	if err := c.base.DoJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	var student models.Student
	if err := json.Unmarshal(unwrapObject(raw), &student); err != nil {
		return nil, fmt.Errorf("clients: decode GET %s: %w", path, err)
	}
	return &student, nil
}

// ListClasses returns the classes of a session with their fees.
func (c *StudentsClient) ListClasses(ctx context.Context, sessionID string) ([]models.Class, error) {
	var classes []models.Class
	if err := c.base.getList(ctx, "/classes/session/"+url.PathEscape(sessionID), &classes); err != nil {
		return nil, err
	}
	return classes, nil
}
