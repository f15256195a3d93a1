package registry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"schooladmin/backend/services/admin-gateway/internal/models"
)

var (
	idAliases   = []string{"sessionId", "id", "value", "session_id"}
	nameAliases = []string{"name", "sessionName", "label"}
)

// Normalize maps a backend session record onto {id, name}. The first alias present wins.
// Normalize(Raw(Normalize(x))) equals Normalize(x).
func Normalize(raw map[string]any) models.Session {
	var s models.Session
	for _, key := range idAliases {
		if v, ok := raw[key]; ok {
			if id := scalarString(v); id != "" {
				s.ID = id
				break
			}
		}
	}
	for _, key := range nameAliases {
		if v, ok := raw[key]; ok {
			if name := scalarString(v); name != "" {
				s.Name = name
				break
			}
		}
	}
	return s
}

// Raw renders a session back into the canonical record shape.
func Raw(s models.Session) map[string]any {
	return map[string]any{"id": s.ID, "name": s.Name}
}

// NormalizeAll keeps server order, dropping records without an id and repeated ids.
func NormalizeAll(records []map[string]any) []models.Session {
	out := make([]models.Session, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		s := Normalize(r)
		if s.ID == "" {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil, map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
