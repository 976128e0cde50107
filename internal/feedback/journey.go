package feedback

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// JourneyStep is one visited page in the click path a reader took
// before submitting feedback. LandTime is a monotonically increasing
// numeric timestamp (seconds).
type JourneyStep struct {
	URL      string  `json:"url"`
	LandTime float64 `json:"landTime"`
}

type Journey []JourneyStep

func ParseJourney(raw string) (Journey, error) {
	var steps Journey
	if err := json.Unmarshal([]byte(raw), &steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// Prettify renders the click path as a multi-line trace. Each step
// after the first is indented one space deeper and marked as
// descending from the previous one; every step but the last shows the
// seconds spent before moving to the next page.
func (j Journey) Prettify() string {
	var b strings.Builder
	for i, step := range j {
		if i > 0 {
			b.WriteString(strings.Repeat(" ", i-1))
			b.WriteString("↳ ")
		}
		if i < len(j)-1 {
			b.WriteString("(")
			b.WriteString(formatSeconds(j[i+1].LandTime - step.LandTime))
			b.WriteString("s) ")
		}
		b.WriteString(urlPath(step.URL))
		b.WriteString("\n")
	}
	return b.String()
}

// SessionDuration sums the successive landTime deltas, which for a
// monotonic sequence equals last minus first.
func (j Journey) SessionDuration() float64 {
	var dur float64
	for i := 0; i < len(j)-1; i++ {
		dur += j[i+1].LandTime - j[i].LandTime
	}
	return dur
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}

// Integral values print without a decimal point, matching the numbers
// clients send in the landTime field.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
