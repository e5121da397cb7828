package adapters

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/de-tools/report-atlas/pkg/dataset"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Row schemas of the tables the reports read. Identifiers are text so integer and uuid keys
// compare the same way across tables.
var (
	UserSchema = dataset.Schema{Name: "users", Fields: []dataset.Field{
		{Name: "id", Kind: dataset.KindText, Required: true},
		{Name: "created_at", Kind: dataset.KindTime},
		{Name: "device_type", Kind: dataset.KindText},
		{Name: "country", Kind: dataset.KindText},
		{Name: "city", Kind: dataset.KindText},
	}}

	SessionSchema = dataset.Schema{Name: "sessions", Fields: []dataset.Field{
		{Name: "user_id", Kind: dataset.KindText, Required: true},
		{Name: "session_start", Kind: dataset.KindTime, Required: true},
		{Name: "session_end", Kind: dataset.KindTime},
	}}

	EventSchema = dataset.Schema{Name: "events", Fields: []dataset.Field{
		{Name: "user_id", Kind: dataset.KindText, Required: true},
		{Name: "event_type", Kind: dataset.KindText, Required: true},
		{Name: "event_time", Kind: dataset.KindTime, Required: true},
		{Name: "metadata", Kind: dataset.KindRaw},
	}}

	FeedbackSchema = dataset.Schema{Name: "feedback", Fields: []dataset.Field{
		{Name: "id", Kind: dataset.KindText},
		{Name: "user_id", Kind: dataset.KindText},
		{Name: "service_type", Kind: dataset.KindText},
		{Name: "location", Kind: dataset.KindText},
		{Name: "feedback_text", Kind: dataset.KindText},
		{Name: "rating", Kind: dataset.KindNumber},
		{Name: "submitted_at", Kind: dataset.KindTime},
		{Name: "country", Kind: dataset.KindText},
		{Name: "user_city", Kind: dataset.KindText},
	}}

	PaymentSchema = dataset.Schema{Name: "payments", Fields: []dataset.Field{
		{Name: "user_id", Kind: dataset.KindText},
		{Name: "amount", Kind: dataset.KindNumber, Required: true},
	}}

	TrafficSourceSchema = dataset.Schema{Name: "traffic_sources", Fields: []dataset.Field{
		{Name: "source", Kind: dataset.KindText, Required: true},
	}}
)

// validate applies the schema and logs what had to be discarded.
func validate(ctx context.Context, schema dataset.Schema, rs dataset.ResultSet) dataset.ResultSet {
	logger := zerolog.Ctx(ctx)
	out, v := schema.Validate(rs)
	if rs.IsEmpty() {
		return out
	}
	if !v.Usable() {
		logger.Warn().
			Str("table", rs.Name).
			Strs("missing_columns", v.MissingRequired).
			Msg("required columns missing; table treated as empty")
		return out
	}
	for _, f := range schema.Fields {
		if f.Required && !rs.HasData(f.Name) {
			logger.Warn().
				Str("table", rs.Name).
				Str("column", f.Name).
				Msg("required column has no data; table treated as empty")
			return dataset.Empty(rs.Name)
		}
	}
	if len(v.MissingOptional) > 0 {
		logger.Debug().Str("table", rs.Name).Strs("missing_columns", v.MissingOptional).Msg("optional columns missing")
	}
	if v.Dropped > 0 {
		logger.Warn().Str("table", rs.Name).Int("dropped", v.Dropped).Msg("rows dropped during validation")
	}
	return out
}

func DecodeUsers(ctx context.Context, rs dataset.ResultSet) []domain.User {
	rows := validate(ctx, UserSchema, rs).Rows
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, domain.User{
			ID:         text(row, "id"),
			CreatedAt:  timestamp(row, "created_at"),
			DeviceType: text(row, "device_type"),
			Country:    text(row, "country"),
			City:       text(row, "city"),
		})
	}
	return users
}

func DecodeSessions(ctx context.Context, rs dataset.ResultSet) []domain.Session {
	rows := validate(ctx, SessionSchema, rs).Rows
	sessions := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, domain.Session{
			UserID: text(row, "user_id"),
			Start:  timestamp(row, "session_start"),
			End:    timestamp(row, "session_end"),
		})
	}
	return sessions
}

func DecodeEvents(ctx context.Context, rs dataset.ResultSet) []domain.Event {
	rows := validate(ctx, EventSchema, rs).Rows
	events := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, domain.Event{
			UserID:   text(row, "user_id"),
			Type:     strings.TrimSpace(text(row, "event_type")),
			Time:     timestamp(row, "event_time"),
			Metadata: ParseMetadata(row["metadata"]),
		})
	}
	return events
}

func DecodeFeedback(ctx context.Context, rs dataset.ResultSet) []domain.Feedback {
	rows := validate(ctx, FeedbackSchema, rs).Rows
	feedback := make([]domain.Feedback, 0, len(rows))
	for _, row := range rows {
		f := domain.Feedback{
			ID:          text(row, "id"),
			UserID:      text(row, "user_id"),
			ServiceType: text(row, "service_type"),
			Location:    text(row, "location"),
			Text:        text(row, "feedback_text"),
			SubmittedAt: timestamp(row, "submitted_at"),
			Country:     text(row, "country"),
			City:        text(row, "user_city"),
		}
		if rating, ok := row["rating"].(float64); ok {
			f.Rating = &rating
		}
		feedback = append(feedback, f)
	}
	return feedback
}

func DecodePayments(ctx context.Context, rs dataset.ResultSet) []domain.Payment {
	rows := validate(ctx, PaymentSchema, rs).Rows
	payments := make([]domain.Payment, 0, len(rows))
	for _, row := range rows {
		amount, _ := row["amount"].(float64)
		payments = append(payments, domain.Payment{UserID: text(row, "user_id"), Amount: amount})
	}
	return payments
}

func DecodeTrafficSources(ctx context.Context, rs dataset.ResultSet) []domain.TrafficSource {
	rows := validate(ctx, TrafficSourceSchema, rs).Rows
	sources := make([]domain.TrafficSource, 0, len(rows))
	for _, row := range rows {
		sources = append(sources, domain.TrafficSource{Source: text(row, "source")})
	}
	return sources
}

// ParseMetadata reads event metadata stored as a JSON object, or as a dict literal with
// single quotes. Anything else yields an empty map.
func ParseMetadata(v any) map[string]any {
	switch t := v.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return t
	}

	raw := strings.TrimSpace(dataset.Text(v))
	if raw == "" {
		return map[string]any{}
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err == nil && m != nil {
		return m
	}

	literal := strings.NewReplacer("'", `"`, "None", "null", "True", "true", "False", "false").Replace(raw)
	m = nil
	if err := json.Unmarshal([]byte(literal), &m); err == nil && m != nil {
		return m
	}
	return map[string]any{}
}

func text(row dataset.Row, col string) string {
	s, _ := row[col].(string)
	return s
}

func timestamp(row dataset.Row, col string) time.Time {
	t, _ := row[col].(time.Time)
	return t
}
