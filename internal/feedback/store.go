package feedback

import (
	"context"
	"time"

	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/neo4jdb"
)

// Store is the graph-store contract the feedback services depend on.
// Implemented by neo4jdb.Client in production and by fakes in tests.
type Store interface {
	Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
	Write(ctx context.Context, cypher string, params map[string]any) (neo4jdb.WriteSummary, error)
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func boolValue(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func timeValue(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

func stringPtr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}
