package feedback

import (
	"context"

	"go.uber.org/zap"

	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/logger"
	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/neo4jdb"
)

type capturedQuery struct {
	cypher string
	params map[string]any
}

// fakeStore records every query and serves canned rows.
type fakeStore struct {
	readRows []map[string]any
	readErr  error
	writeErr error
	summary  neo4jdb.WriteSummary

	reads  []capturedQuery
	writes []capturedQuery
}

func (f *fakeStore) Read(_ context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.reads = append(f.reads, capturedQuery{cypher: cypher, params: params})
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.readRows, nil
}

func (f *fakeStore) Write(_ context.Context, cypher string, params map[string]any) (neo4jdb.WriteSummary, error) {
	f.writes = append(f.writes, capturedQuery{cypher: cypher, params: params})
	if f.writeErr != nil {
		return neo4jdb.WriteSummary{}, f.writeErr
	}
	return f.summary, nil
}

func newTestLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}
