package cleaning

import (
	"context"
	"sort"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/analysis"
	"github.com/de-tools/report-atlas/pkg/services/sentiment"
	"github.com/de-tools/report-atlas/pkg/services/textproc"
	"github.com/rs/zerolog"
)

const (
	// MinSessionMinutes excludes sessions of a second or less.
	MinSessionMinutes = 1.0 / 60
	// MaxSessionMinutes excludes sessions of 12 hours or more.
	MaxSessionMinutes = 720.0
)

// UnknownDevice labels users without a device type.
const UnknownDevice = "unknown"

// NormalizeDevice lowercases and trims a device type.
func NormalizeDevice(device string) string {
	d := strings.ToLower(strings.TrimSpace(device))
	if d == "" {
		return UnknownDevice
	}
	return d
}

// DeviceShare is the number and share of users on one device type.
type DeviceShare struct {
	Device  string
	Users   int
	Percent float64
}

// DeviceDistribution groups users by normalised device type, most common first.
func DeviceDistribution(users []domain.User) []DeviceShare {
	devices := make([]string, 0, len(users))
	for _, u := range users {
		devices = append(devices, NormalizeDevice(u.DeviceType))
	}
	counts := analysis.ValueCounts(devices)

	shares := make([]DeviceShare, 0, len(counts))
	for _, c := range counts {
		shares = append(shares, DeviceShare{
			Device:  c.Key,
			Users:   c.Count,
			Percent: analysis.Percent(float64(c.Count), float64(len(users))),
		})
	}
	return shares
}

// ValidSessions drops sessions with a missing timestamp or an end before the start.
func ValidSessions(ctx context.Context, sessions []domain.Session) []domain.Session {
	valid := make([]domain.Session, 0, len(sessions))
	for _, s := range sessions {
		if _, ok := s.Duration(); ok {
			valid = append(valid, s)
		}
	}
	if dropped := len(sessions) - len(valid); dropped > 0 {
		zerolog.Ctx(ctx).Warn().Int("dropped", dropped).Msg("Dropped sessions without a valid duration")
	}
	return valid
}

// SessionDurations returns the duration in minutes of every measurable session. Sessions that
// are still open or end before they start are dropped.
func SessionDurations(sessions []domain.Session) []float64 {
	minutes := make([]float64, 0, len(sessions))
	for _, s := range sessions {
		d, ok := s.Duration()
		if !ok {
			continue
		}
		minutes = append(minutes, d.Minutes())
	}
	return minutes
}

// ReasonableDurations keeps durations strictly between MinSessionMinutes and MaxSessionMinutes.
func ReasonableDurations(minutes []float64) []float64 {
	return analysis.Filter(minutes, func(m float64) bool {
		return m > MinSessionMinutes && m < MaxSessionMinutes
	})
}

// Sentiment categories in ascending order.
const (
	VeryNegative = "Very Negative"
	Negative     = "Negative"
	Neutral      = "Neutral"
	Positive     = "Positive"
	VeryPositive = "Very Positive"
)

// SentimentOrder lists the categories from most negative to most positive.
var SentimentOrder = []string{VeryNegative, Negative, Neutral, Positive, VeryPositive}

var sentimentBounds = []float64{-1.1, -0.5, -0.1, 0.1, 0.5, 1.1}

// SentimentCategory buckets a polarity score. Buckets are closed on the right, the first one
// is also closed on the left. Scores outside [-1.1, 1.1] get no category.
func SentimentCategory(score float64) string {
	if score < sentimentBounds[0] || score > sentimentBounds[len(sentimentBounds)-1] {
		return ""
	}
	idx := sort.SearchFloat64s(sentimentBounds, score)
	if idx == 0 {
		return SentimentOrder[0]
	}
	return SentimentOrder[idx-1]
}

// EnrichFeedback derives clean text, sentiment and keywords for each review.
func EnrichFeedback(feedback []domain.Feedback, scorer sentiment.Scorer) []domain.Feedback {
	out := make([]domain.Feedback, 0, len(feedback))
	for _, f := range feedback {
		f.CleanText = textproc.CleanText(f.Text)
		f.Sentiment = scorer.Score(f.Text)
		f.SentimentCategory = SentimentCategory(f.Sentiment)
		f.Keywords = textproc.Keywords(f.CleanText)
		out = append(out, f)
	}
	return out
}
