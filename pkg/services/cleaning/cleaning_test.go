package cleaning

import (
	"context"
	"testing"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceDistribution_NormalisesMixedCase(t *testing.T) {
	// Given device types with mixed case and stray whitespace
	users := []domain.User{
		{ID: "1", DeviceType: "Mobile"},
		{ID: "2", DeviceType: "mobile "},
		{ID: "3", DeviceType: "DESKTOP"},
	}

	// When
	shares := DeviceDistribution(users)

	// Then
	got := map[string]int{}
	for _, s := range shares {
		got[s.Device] = s.Users
	}
	assert.Equal(t, map[string]int{"mobile": 2, "desktop": 1}, got)
	require.Len(t, shares, 2)
	assert.Equal(t, "mobile", shares[0].Device)
	assert.InDelta(t, 66.67, shares[0].Percent, 0.01)
}

func TestNormalizeDevice(t *testing.T) {
	assert.Equal(t, "tablet", NormalizeDevice("  Tablet"))
	assert.Equal(t, UnknownDevice, NormalizeDevice("   "))
}

func TestSessionDurations_DropsEndBeforeStart(t *testing.T) {
	start := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	sessions := []domain.Session{
		{UserID: "1", Start: start, End: start.Add(-5 * time.Minute)},
	}

	assert.Empty(t, SessionDurations(sessions))

	sessions = append(sessions, domain.Session{UserID: "2", Start: start, End: start.Add(15 * time.Minute)})
	assert.Equal(t, []float64{15}, SessionDurations(sessions))
}

func TestValidSessions(t *testing.T) {
	// Given one session ending before it starts, one without an end and one valid session
	start := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	sessions := []domain.Session{
		{UserID: "1", Start: start, End: start.Add(-time.Minute)},
		{UserID: "2", Start: start},
		{UserID: "3", Start: start, End: start.Add(10 * time.Minute)},
	}

	// When
	valid := ValidSessions(context.Background(), sessions)

	// Then
	require.Len(t, valid, 1)
	assert.Equal(t, "3", valid[0].UserID)
	assert.Empty(t, ValidSessions(context.Background(), sessions[:2]))
}

func TestReasonableDurations(t *testing.T) {
	in := []float64{0, 1.0 / 60, 0.5, 30, 719.9, 720, 1000}
	assert.Equal(t, []float64{0.5, 30, 719.9}, ReasonableDurations(in))
}

func TestSentimentCategory(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{-1.1, VeryNegative},
		{-1, VeryNegative},
		{-0.5, VeryNegative},
		{-0.3, Negative},
		{-0.1, Negative},
		{0, Neutral},
		{0.1, Neutral},
		{0.3, Positive},
		{0.5, Positive},
		{0.9, VeryPositive},
		{1.1, VeryPositive},
		{1.5, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SentimentCategory(tc.score), "score %v", tc.score)
	}
}

type fixedScorer float64

func (f fixedScorer) Score(string) float64 { return float64(f) }

func TestEnrichFeedback(t *testing.T) {
	feedback := []domain.Feedback{{Text: "Loved the Shuttle!!"}, {Text: ""}}

	out := EnrichFeedback(feedback, fixedScorer(0.6))

	require.Len(t, out, 2)
	assert.Equal(t, "loved the shuttle", out[0].CleanText)
	assert.Equal(t, VeryPositive, out[0].SentimentCategory)
	assert.Equal(t, []string{"loved", "shuttle"}, out[0].Keywords)
	assert.Equal(t, "", out[1].CleanText)
	assert.Empty(t, out[1].Keywords)
	assert.Equal(t, "", feedback[0].CleanText, "input is not mutated")
}
