package feedback

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/logger"
)

// ErrDuplicateSubmission marks the double-submit rejection; it is a
// business outcome, not a storage failure.
var ErrDuplicateSubmission = errors.New("duplicate submission within the same minute")

const duplicateCheckCypher = `
MATCH (feedback:Feedback)
WHERE feedback.url = $url AND feedback.helpful = $helpful AND
      feedback.userAgent = $userAgent AND
      datetime.truncate('minute', feedback.timestamp) = datetime.truncate('minute')
RETURN feedback.timestamp AS timestamp
`

const storeFeedbackCypher = `
MERGE (project:Project {name: $project})
MERGE (page:Page {uri: $url})
MERGE (page)-[:PROJECT]->(project)
CREATE (feedback:Feedback)
SET feedback += $props, feedback.timestamp = datetime()
CREATE (page)-[:HAS_FEEDBACK]->(feedback)
`

// IngestionService validates and persists feedback submissions.
type IngestionService struct {
	store    Store
	resolver *ProjectResolver
	log      *logger.Logger
}

func NewIngestionService(store Store, resolver *ProjectResolver, log *logger.Logger) *IngestionService {
	return &IngestionService{
		store:    store,
		resolver: resolver,
		log:      log.With("service", "Ingestion"),
	}
}

// Submit resolves the owning project, applies the same-minute
// deduplication guard and writes the feedback, page and project in one
// transaction. The dedup check and the write are deliberately not one
// atomic unit: concurrent identical submissions within a minute can
// both land, which is acceptable for advisory telemetry.
func (s *IngestionService) Submit(ctx context.Context, sub Submission) error {
	project := s.resolver.Resolve(sub.Project, sub.URL)
	s.log.Info("feedback submission",
		"project", project, "url", sub.URL, "helpful", sub.Helpful,
		"identity", sub.Identity, "gid", sub.GID, "uetsid", sub.UETSID)

	existing, err := s.store.Read(ctx, duplicateCheckCypher, map[string]any{
		"url":       sub.URL,
		"helpful":   sub.Helpful,
		"userAgent": sub.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("duplicate check: %w", err)
	}
	if len(existing) > 0 {
		s.log.Info("duplicate submission within same minute", "url", sub.URL, "matches", len(existing))
		return ErrDuplicateSubmission
	}

	summary, err := s.store.Write(ctx, storeFeedbackCypher, map[string]any{
		"project": project,
		"url":     sub.URL,
		"props":   sub.props(),
	})
	if err != nil {
		return fmt.Errorf("store feedback: %w", err)
	}
	s.log.Info("feedback stored",
		"nodes_created", summary.NodesCreated,
		"relationships_created", summary.RelationshipsCreated,
		"properties_set", summary.PropertiesSet)
	return nil
}
