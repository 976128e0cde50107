package feedback

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/logger"
)

const dateLayout = "02 Jan 2006"

// One-tailed 90% standard-normal critical value for the Wilson score
// lower bound.
const unhelpfulnessZ = 1.281551565545

const feedbackByProjectCypher = `
MATCH (feedback:Feedback)<-[:HAS_FEEDBACK]-(page:Page)-[:PROJECT]->(:Project {name: $project})
WHERE $start <= feedback.timestamp < $end
RETURN feedback.helpful AS helpful,
       feedback.moreInformation AS information,
       feedback.reason AS reason,
       feedback.userJourney AS userJourney,
       feedback.timestamp AS timestamp,
       page.uri AS uri
ORDER BY feedback.timestamp DESC
`

const feedbackByPageCypher = `
MATCH (page:Page {uri: $uri})
OPTIONAL MATCH (page)-[:HAS_FEEDBACK]->(feedback:Feedback)
RETURN page.uri AS uri,
       feedback.helpful AS helpful,
       feedback.moreInformation AS information,
       feedback.reason AS reason,
       feedback.timestamp AS timestamp
`

const voteCountsByPageCypher = `
MATCH (:Project {name: $project})<-[:PROJECT]-(page:Page)-[:HAS_FEEDBACK]->(feedback:Feedback)
WITH page, collect(feedback.helpful) AS votes
WITH page.uri AS uri,
     size([v IN votes WHERE v]) AS helpful,
     size([v IN votes WHERE NOT v]) AS notHelpful
WHERE notHelpful > 0
RETURN uri, helpful, notHelpful
`

// FeedbackRow is one submission in the monthly project listing.
type FeedbackRow struct {
	Helpful         bool     `json:"helpful"`
	Information     *string  `json:"information"`
	Reason          *string  `json:"reason"`
	UserJourney     *string  `json:"userJourney"`
	SessionDuration *float64 `json:"sessionDuration"`
	URI             string   `json:"uri"`
	Date            string   `json:"date"`
}

type PageFeedbackEntry struct {
	Helpful     bool    `json:"helpful"`
	Information *string `json:"information"`
	Reason      *string `json:"reason"`
	Date        string  `json:"date"`
}

type PageFeedback struct {
	URI      string              `json:"uri"`
	Feedback []PageFeedbackEntry `json:"feedback"`
}

// PageScore ranks a page by the Wilson lower bound of its true
// unhelpful proportion.
type PageScore struct {
	URI           string  `json:"uri"`
	Helpful       int64   `json:"helpful"`
	NotHelpful    int64   `json:"notHelpful"`
	Unhelpfulness float64 `json:"unhelpfulness"`
}

// AnalyticsService answers the read-side queries over the persisted
// feedback graph.
type AnalyticsService struct {
	store Store
	log   *logger.Logger
}

func NewAnalyticsService(store Store, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{store: store, log: log.With("service", "Analytics")}
}

// FeedbackByProject returns the project's feedback inside the calendar
// month containing ref (current month when ref is zero), most recent
// first. The window is half-open: [first of month, first of next).
func (s *AnalyticsService) FeedbackByProject(ctx context.Context, project string, ref time.Time) ([]FeedbackRow, error) {
	if ref.IsZero() {
		ref = time.Now().UTC()
	}
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	s.log.Info("retrieving project feedback", "project", project, "start", start, "end", end)

	rows, err := s.store.Read(ctx, feedbackByProjectCypher, map[string]any{
		"project": project,
		"start":   start,
		"end":     end,
	})
	if err != nil {
		return nil, fmt.Errorf("feedback by project: %w", err)
	}

	out := make([]FeedbackRow, 0, len(rows))
	for _, row := range rows {
		fr := FeedbackRow{
			Information: stringPtr(row["information"]),
			Reason:      stringPtr(row["reason"]),
		}
		fr.Helpful, _ = boolValue(row["helpful"])
		fr.URI, _ = stringValue(row["uri"])
		if ts, ok := timeValue(row["timestamp"]); ok {
			fr.Date = ts.Format(dateLayout)
		}
		fr.UserJourney, fr.SessionDuration = s.renderJourney(row["userJourney"])
		out = append(out, fr)
	}
	return out, nil
}

// PageFeedback returns the page named by uri with all its feedback.
// An unknown uri yields an empty slice; a known page with no feedback
// yields the page with an empty feedback list.
func (s *AnalyticsService) PageFeedback(ctx context.Context, uri string) ([]PageFeedback, error) {
	s.log.Info("retrieving page feedback", "uri", uri)

	rows, err := s.store.Read(ctx, feedbackByPageCypher, map[string]any{"uri": uri})
	if err != nil {
		return nil, fmt.Errorf("feedback by page: %w", err)
	}
	if len(rows) == 0 {
		return []PageFeedback{}, nil
	}

	page := PageFeedback{Feedback: []PageFeedbackEntry{}}
	page.URI, _ = stringValue(rows[0]["uri"])
	for _, row := range rows {
		helpful, ok := boolValue(row["helpful"])
		if !ok {
			// OPTIONAL MATCH row for a page without feedback.
			continue
		}
		entry := PageFeedbackEntry{
			Helpful:     helpful,
			Information: stringPtr(row["information"]),
			Reason:      stringPtr(row["reason"]),
		}
		if ts, ok := timeValue(row["timestamp"]); ok {
			entry.Date = ts.Format(dateLayout)
		}
		page.Feedback = append(page.Feedback, entry)
	}
	return []PageFeedback{page}, nil
}

// FireReport ranks the project's pages by how confidently unhelpful
// they are. Pages without a single negative vote never appear.
func (s *AnalyticsService) FireReport(ctx context.Context, project string) ([]PageScore, error) {
	s.log.Info("building fire report", "project", project)

	rows, err := s.store.Read(ctx, voteCountsByPageCypher, map[string]any{"project": project})
	if err != nil {
		return nil, fmt.Errorf("fire report: %w", err)
	}

	out := make([]PageScore, 0, len(rows))
	for _, row := range rows {
		score := PageScore{}
		score.URI, _ = stringValue(row["uri"])
		score.Helpful, _ = intValue(row["helpful"])
		score.NotHelpful, _ = intValue(row["notHelpful"])
		if score.NotHelpful == 0 {
			continue
		}
		score.Unhelpfulness = Unhelpfulness(score.Helpful, score.NotHelpful)
		out = append(out, score)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Unhelpfulness != out[j].Unhelpfulness {
			return out[i].Unhelpfulness > out[j].Unhelpfulness
		}
		return out[i].URI < out[j].URI
	})
	return out, nil
}

// Unhelpfulness is the Wilson score interval lower bound for the true
// proportion of not-helpful votes. Unlike the raw proportion it
// rewards volume: a page with consistent negative feedback outranks a
// page with a single complaint, and abundant helpful votes pull the
// score down.
func Unhelpfulness(helpful, notHelpful int64) float64 {
	n := float64(helpful + notHelpful)
	if n == 0 {
		return 0
	}
	p := float64(notHelpful) / n
	z := unhelpfulnessZ
	left := p + (z*z)/(2*n)
	right := z * math.Sqrt(p*(1-p)/n+(z*z)/(4*n*n))
	under := 1 + (z*z)/n
	return (left - right) / under
}

// renderJourney turns the raw userJourney property (absent or a JSON
// string) into the prettified trace and session duration. Anything
// unparseable is treated as absent.
func (s *AnalyticsService) renderJourney(raw any) (*string, *float64) {
	encoded, ok := stringValue(raw)
	if !ok || encoded == "" {
		return nil, nil
	}
	journey, err := ParseJourney(encoded)
	if err != nil {
		s.log.Warn("unparseable user journey", "error", err)
		return nil, nil
	}
	pretty := journey.Prettify()
	duration := journey.SessionDuration()
	return &pretty, &duration
}
