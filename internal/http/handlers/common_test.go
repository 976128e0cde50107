package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/neo4j-contrib/dx-feedback-form/internal/feedback"
	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/logger"
	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/neo4jdb"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type capturedQuery struct {
	cypher string
	params map[string]any
}

type fakeStore struct {
	readRows []map[string]any
	readErr  error
	writeErr error

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
	return neo4jdb.WriteSummary{NodesCreated: 1}, nil
}

func newTestLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func newTestRouter(store feedback.Store) *gin.Engine {
	log := newTestLogger()
	resolver := feedback.NewProjectResolver("")
	ingestSvc := feedback.NewIngestionService(store, resolver, log)
	analyticsSvc := feedback.NewAnalyticsService(store, log)

	r := gin.New()
	fh := NewFeedbackHandler(log, ingestSvc)
	rh := NewReportHandler(log, analyticsSvc)
	r.POST("/feedback", fh.Submit)
	r.GET("/api/feedback/:project", rh.ProjectFeedback)
	r.GET("/api/page/:id", rh.PageFeedback)
	r.GET("/api/fire/:project", rh.FireReport)
	return r
}
