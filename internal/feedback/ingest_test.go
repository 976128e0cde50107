package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/neo4jdb"
)

func newIngestFixture(store *fakeStore) *IngestionService {
	return NewIngestionService(store, NewProjectResolver(""), newTestLogger())
}

func TestSubmitWritesFeedback(t *testing.T) {
	store := &fakeStore{summary: neo4jdb.WriteSummary{NodesCreated: 1, RelationshipsCreated: 1}}
	svc := newIngestFixture(store)

	sub := Submission{
		URL:       "https://neo4j.com/docs/labs/neo4j-streams/quickstart/",
		Helpful:   true,
		UserAgent: "Mozilla/5.0",
		Reason:    "missing",
	}
	if err := svc.Submit(context.Background(), sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.reads) != 1 {
		t.Fatalf("expected one dedup read, got %d", len(store.reads))
	}
	dedup := store.reads[0]
	if dedup.params["url"] != sub.URL || dedup.params["helpful"] != true || dedup.params["userAgent"] != "Mozilla/5.0" {
		t.Fatalf("dedup params: %+v", dedup.params)
	}
	if !strings.Contains(dedup.cypher, "datetime.truncate('minute'") {
		t.Fatalf("dedup must truncate to the minute: %s", dedup.cypher)
	}

	if len(store.writes) != 1 {
		t.Fatalf("expected one write, got %d", len(store.writes))
	}
	write := store.writes[0]
	for _, clause := range []string{
		"MERGE (project:Project {name: $project})",
		"MERGE (page:Page {uri: $url})",
		"MERGE (page)-[:PROJECT]->(project)",
		"CREATE (feedback:Feedback)",
		"feedback.timestamp = datetime()",
		"CREATE (page)-[:HAS_FEEDBACK]->(feedback)",
	} {
		if !strings.Contains(write.cypher, clause) {
			t.Fatalf("write cypher missing %q:\n%s", clause, write.cypher)
		}
	}
	if write.params["project"] != "neo4j-streams" {
		t.Fatalf("resolved project: %v", write.params["project"])
	}
	props, ok := write.params["props"].(map[string]any)
	if !ok {
		t.Fatalf("props param missing: %+v", write.params)
	}
	if props["helpful"] != true || props["reason"] != "missing" {
		t.Fatalf("props: %+v", props)
	}
	if _, ok := props["timestamp"]; ok {
		t.Fatalf("timestamp is assigned by the store, not the service")
	}
}

func TestSubmitRejectsDuplicateWithoutWriting(t *testing.T) {
	store := &fakeStore{
		readRows: []map[string]any{{"timestamp": time.Now()}},
	}
	svc := newIngestFixture(store)

	err := svc.Submit(context.Background(), Submission{URL: "https://x/doc", UserAgent: "ua"})
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
	if len(store.writes) != 0 {
		t.Fatalf("duplicate must not trigger a write")
	}
}

func TestSubmitSurfacesStorageFailure(t *testing.T) {
	store := &fakeStore{readErr: errors.New("connection reset")}
	svc := newIngestFixture(store)

	err := svc.Submit(context.Background(), Submission{URL: "https://x/doc"})
	if err == nil || errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	if len(store.writes) != 0 {
		t.Fatalf("failed dedup check must not trigger a write")
	}

	store = &fakeStore{writeErr: errors.New("routing churn")}
	svc = newIngestFixture(store)
	if err := svc.Submit(context.Background(), Submission{URL: "https://x/doc"}); err == nil {
		t.Fatalf("write failure must surface")
	}
}
