package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/de-tools/report-atlas/pkg/dataset"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestDecodeSessions_KeepsOpenSessionsAndDropsUnparseable(t *testing.T) {
	// Given
	start := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	rs := dataset.ResultSet{
		Name:    "sessions_b",
		Columns: []string{"id", "user_id", "session_start", "session_end"},
		Rows: []dataset.Row{
			{"id": 1, "user_id": int64(7), "session_start": start, "session_end": start.Add(30 * time.Minute)},
			{"id": 2, "user_id": int64(8), "session_start": "garbage", "session_end": nil},
			{"id": 3, "user_id": int64(9), "session_start": "2025-05-01 12:00:00", "session_end": nil},
		},
	}

	// When
	sessions := DecodeSessions(testContext(t), rs)

	// Then
	require.Len(t, sessions, 2)
	assert.Equal(t, "7", sessions[0].UserID)
	d, ok := sessions[0].Duration()
	assert.True(t, ok)
	assert.Equal(t, 30*time.Minute, d)
	_, ok = sessions[1].Duration()
	assert.False(t, ok, "open session has no duration")
}

func TestDecodeUsers_RequiredColumnWithoutData(t *testing.T) {
	// Given an id column that is present but entirely null or blank
	rs := dataset.ResultSet{
		Name:    "users_b",
		Columns: []string{"id", "device_type"},
		Rows: []dataset.Row{
			{"id": nil, "device_type": "mobile"},
			{"id": "  ", "device_type": "desktop"},
		},
	}

	// When
	users := DecodeUsers(testContext(t), rs)

	// Then
	assert.Empty(t, users)
}

func TestDecodeFeedback_RatingIsOptional(t *testing.T) {
	rs := dataset.ResultSet{
		Name:    "user_feedback_q",
		Columns: []string{"id", "user_id", "rating", "feedback_text", "service_type"},
		Rows: []dataset.Row{
			{"id": 1, "user_id": 1, "rating": int64(5), "feedback_text": "Great!", "service_type": "Flight"},
			{"id": 2, "user_id": 2, "rating": nil, "feedback_text": nil, "service_type": "Hotel"},
			{"id": 3, "user_id": 3, "rating": "4", "feedback_text": "ok", "service_type": nil},
		},
	}

	feedback := DecodeFeedback(testContext(t), rs)

	require.Len(t, feedback, 3)
	require.NotNil(t, feedback[0].Rating)
	assert.Equal(t, 5.0, *feedback[0].Rating)
	assert.Nil(t, feedback[1].Rating)
	assert.Equal(t, "", feedback[1].Text)
	require.NotNil(t, feedback[2].Rating)
	assert.Equal(t, 4.0, *feedback[2].Rating)
	assert.Equal(t, "", feedback[2].ServiceType)
}

func TestDecodeUsers_MissingRequiredColumn(t *testing.T) {
	rs := dataset.ResultSet{
		Name:    "users_b",
		Columns: []string{"device_type"},
		Rows:    []dataset.Row{{"device_type": "mobile"}},
	}

	assert.Empty(t, DecodeUsers(testContext(t), rs))
}

func TestDecodePayments_DropsNonNumericAmounts(t *testing.T) {
	rs := dataset.ResultSet{
		Name:    "payments_s",
		Columns: []string{"user_id", "amount"},
		Rows: []dataset.Row{
			{"user_id": "a", "amount": "19.99"},
			{"user_id": "b", "amount": "free"},
			{"user_id": "c", "amount": 5},
		},
	}

	payments := DecodePayments(testContext(t), rs)

	require.Len(t, payments, 2)
	assert.InDelta(t, 19.99, payments[0].Amount, 1e-9)
	assert.Equal(t, "c", payments[1].UserID)
}

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want map[string]any
	}{
		{name: "json text", in: `{"destination": "Paris"}`, want: map[string]any{"destination": "Paris"}},
		{name: "json bytes", in: []byte(`{"location": "Rome"}`), want: map[string]any{"location": "Rome"}},
		{name: "dict literal", in: `{'destination': 'Tokyo', 'flex': True}`, want: map[string]any{"destination": "Tokyo", "flex": true}},
		{name: "map", in: map[string]any{"k": "v"}, want: map[string]any{"k": "v"}},
		{name: "nil", in: nil, want: map[string]any{}},
		{name: "garbage", in: "not a dict", want: map[string]any{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseMetadata(tc.in))
		})
	}
}
