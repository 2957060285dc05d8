package sqlite

import (
	"context"
	"fmt"
	"strings"
)

// Pragmas reads each named pragma. PRAGMA takes no bound parameters, so
// names are limited to identifier characters.
func (s *Store) Pragmas(ctx context.Context, names ...string) (map[string]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if !pragmaName(name) {
			return nil, fmt.Errorf("invalid pragma name: %q", name)
		}
		var v any
		if err := s.db.QueryRowContext(ctx, "PRAGMA "+name+";").Scan(&v); err != nil {
			return nil, fmt.Errorf("pragma %s: %w", name, err)
		}
		out[name] = pragmaString(v)
	}
	return out, nil
}

func pragmaName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		return false
	}
	return true
}

func pragmaString(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case []byte:
		return string(vv)
	default:
		return fmt.Sprint(vv)
	}
}
