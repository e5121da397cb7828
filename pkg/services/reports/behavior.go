package reports

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/de-tools/report-atlas/pkg/chart"
	"github.com/de-tools/report-atlas/pkg/dataset"
	"github.com/de-tools/report-atlas/pkg/document"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/analysis"
	"github.com/de-tools/report-atlas/pkg/services/cleaning"
	"github.com/de-tools/report-atlas/pkg/services/pipeline"
	"github.com/de-tools/report-atlas/pkg/store/sql"
)

const BehaviorName = "behavior"

const (
	bookingTolerance = 12 * time.Hour
	maxTimeToBook    = 240.0
	topPreferences   = 5
	maxSessionBins   = 20
	durationBins     = 50
	timeToBookBins   = 40

	// sessionsPerUserCap is the quantile above which users are left out of the sessions chart.
	sessionsPerUserCap = 0.95
)

// behaviorEventTypes are the event types the behavior report reads, funnel first.
func behaviorEventTypes() []string {
	types := append([]string{}, analysis.FunnelEvents...)
	types = append(types, analysis.OutcomeEvents...)
	return append(types, "login", "share_deal")
}

func eventsQuery() string {
	quoted := make([]string, 0, len(analysis.FunnelEvents)+len(analysis.OutcomeEvents)+2)
	for _, t := range behaviorEventTypes() {
		quoted = append(quoted, "'"+t+"'")
	}
	return fmt.Sprintf(
		"SELECT * FROM user_events_b WHERE event_type IN (%s) AND event_time IS NOT NULL AND user_id IS NOT NULL",
		strings.Join(quoted, ", "),
	)
}

// Behavior analyses the booking journey: funnel, sessions, preferences, outcomes and devices.
type Behavior struct {
	settings analysis.RecommendationSettings

	raw struct {
		users, sessions, events dataset.ResultSet
	}

	users    []domain.User
	sessions []domain.Session
	events   []domain.Event

	funnel    []analysis.Count
	durations []float64

	// meanDuration is nil when no session has a reasonable duration.
	meanDuration *float64
	outcomes     []analysis.Count
	timeToBook   []float64
	devices      []cleaning.DeviceShare
}

func NewBehavior(settings analysis.RecommendationSettings) *Behavior {
	return &Behavior{settings: settings}
}

func (r *Behavior) Name() string       { return BehaviorName }
func (r *Behavior) Title() string      { return "User Behavior Analysis Report" }
func (r *Behavior) OutputFile() string { return "User_Behavior_Analysis_Report.pdf" }

func (r *Behavior) Load(ctx context.Context, loader *sql.Loader) {
	r.raw.users = loader.Load(ctx, "users_b", "SELECT * FROM users_b")
	r.raw.sessions = loader.Load(ctx, "sessions_b", "SELECT * FROM sessions_b")
	r.raw.events = loader.Load(ctx, "user_events_b", eventsQuery())
}

func (r *Behavior) Clean(ctx context.Context) {
	r.users = adapters.DecodeUsers(ctx, r.raw.users)
	r.sessions = cleaning.ValidSessions(ctx, adapters.DecodeSessions(ctx, r.raw.sessions))
	r.events = adapters.DecodeEvents(ctx, r.raw.events)

	r.funnel = analysis.FunnelCounts(r.events)
	r.durations = cleaning.ReasonableDurations(cleaning.SessionDurations(r.sessions))
	if len(r.durations) > 0 {
		mean := analysis.Mean(r.durations)
		r.meanDuration = &mean
	}
	r.outcomes = analysis.BookingOutcomes(r.events)
	r.timeToBook = analysis.Filter(
		analysis.TimeToBook(r.events, r.sessions, bookingTolerance),
		func(m float64) bool { return m >= 0 && m < maxTimeToBook },
	)
	r.devices = cleaning.DeviceDistribution(r.users)
}

func (r *Behavior) Intro(env *pipeline.Env) []document.Element {
	return []document.Element{
		document.Paragraph("Report generated on: " + env.Now.Format(time.DateTime)),
		document.Heading("Travel Booking Behavior Insights"),
	}
}

func (r *Behavior) Sections() []pipeline.Section {
	return []pipeline.Section{
		{Title: "1. Travel Booking Funnel Analysis", Render: r.funnelSection},
		{Title: "2. User Session Analysis", Render: r.sessionSection},
		{Title: "3. Travel Preferences Analysis (Top 5)", Render: r.preferencesSection},
		{Title: "4. Booking Behavior Insights", Render: r.bookingSection},
		{Title: "5. Device and Platform Behavior", Render: r.deviceSection},
		{Title: "6. Behavioral Insights and Recommendations", Render: r.recommendationsSection},
	}
}

func (r *Behavior) funnelSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	if len(r.events) == 0 {
		return pipeline.Unavailable("No event data loaded. Cannot perform funnel analysis.")
	}
	if len(r.funnel) == 0 {
		return pipeline.Unavailable("No funnel event data available within selected events.")
	}

	labels := make([]string, len(r.funnel))
	values := make([]float64, len(r.funnel))
	for i, c := range r.funnel {
		labels[i], values[i] = c.Key, float64(c.Count)
	}

	lines := []string{"<b>Simplified Conversion Rates (Grouped Stages):</b>"}
	for _, c := range analysis.Conversions(analysis.StageCounts(r.funnel)) {
		lines = append(lines, fmt.Sprintf("%s: %s", c.Name, c))
	}

	return pipeline.NewBatch(ctx, env).
		Chart("Travel Booking Funnel - Event Counts", 7, 4, func(fig chart.Figure) error {
			fig.XLabel, fig.YLabel = "Event Type (Ordered by Funnel Stage)", "Number of Events"
			return env.Renderer.Bars(fig, labels, values)
		}).
		Paragraph("%s", strings.Join(lines, "<br/>")).
		Paragraph("<i>Note: Conversion rates are simplified based on event counts and may not represent unique user progression perfectly.</i>").
		Result()
}

func (r *Behavior) sessionSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	if len(r.sessions) == 0 {
		return pipeline.Unavailable("No valid session durations found in the 1 sec - 12 hour range.")
	}

	b := pipeline.NewBatch(ctx, env)
	if len(r.durations) == 0 {
		b.Placeholder("No valid session durations found in the 1 sec - 12 hour range.")
	} else {
		b.Chart("Distribution of Session Duration (1 sec - 12 hours)", 6, 3.5, func(fig chart.Figure) error {
			fig.XLabel, fig.YLabel = "Session Duration (minutes)", "Number of Sessions"
			return env.Renderer.Histogram(fig, r.durations, durationBins)
		})
		b.Paragraph("<b>Session Duration (1 sec - 12 hours):</b><br/>Average: %.1f minutes<br/>Median: %.1f minutes<br/>Total sessions analyzed: %s",
			*r.meanDuration, analysis.Median(r.durations), analysis.FormatInt(len(r.durations)))
	}

	perUser := analysis.SessionsPerUser(r.sessions)
	if len(perUser) == 0 {
		return b.Placeholder("Could not calculate sessions per user (no user groups found).").Result()
	}
	limit := analysis.Quantile(perUser, sessionsPerUserCap)
	capped := analysis.Filter(perUser, func(n float64) bool { return n <= limit })
	bins := int(math.Max(1, math.Min(maxSessionBins, math.Floor(limit))))

	b.Chart(fmt.Sprintf("Sessions per User Distribution (up to %.0f sessions)", limit), 6, 3.5, func(fig chart.Figure) error {
		fig.XLabel, fig.YLabel = "Number of Sessions per User", "Number of Users"
		return env.Renderer.Histogram(fig, capped, bins)
	})
	return b.Paragraph("<b>Sessions per User:</b><br/>Average: %.1f sessions/user<br/>Median: %.0f sessions/user<br/>Total users with sessions: %s",
		analysis.Mean(perUser), analysis.Median(perUser), analysis.FormatInt(len(perUser))).
		Result()
}

func (r *Behavior) preferencesSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	if len(r.events) == 0 {
		return pipeline.Unavailable("No event data loaded. Cannot perform preference analysis.")
	}

	b := pipeline.NewBatch(ctx, env)
	r.topSearches(b, env, "search_flight", "destination", "Top 5 Flight Destinations Searched", "Destination",
		"No flight destination data found in search event metadata.")
	r.topSearches(b, env, "search_hotel", "location", "Top 5 Hotel Locations Searched", "Location",
		"No hotel location data found in search event metadata.")
	return b.Result()
}

func (r *Behavior) topSearches(b *pipeline.Batch, env *pipeline.Env, eventType, key, title, axis, missing string) {
	top := analysis.TopMetadataValues(r.events, eventType, key, topPreferences)
	if len(top) == 0 {
		b.Placeholder("%s", missing)
		return
	}

	labels := make([]string, len(top))
	values := make([]float64, len(top))
	for i, c := range top {
		labels[i], values[i] = c.Key, float64(c.Count)
	}
	b.Chart(title, 6, 3.5, func(fig chart.Figure) error {
		fig.XLabel, fig.YLabel = axis, "Number of Searches"
		return env.Renderer.Bars(fig, labels, values)
	})
}

func (r *Behavior) bookingSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	if len(r.events) == 0 {
		return pipeline.Unavailable("No event data loaded. Cannot perform booking behavior analysis.")
	}

	b := pipeline.NewBatch(ctx, env)
	if len(r.outcomes) == 0 {
		b.Placeholder("No booking, abandonment, or cancellation event data found.")
	} else {
		slices := make([]chart.Slice, 0, len(r.outcomes))
		for _, o := range r.outcomes {
			slices = append(slices, chart.Slice{Label: o.Key, Value: float64(o.Count)})
		}
		b.Chart("Booking Outcomes (Completion vs. Abandonment/Cancellation)", 5, 3, func(fig chart.Figure) error {
			return env.Renderer.Pie(fig, slices)
		})
	}

	if len(r.timeToBook) == 0 {
		return b.Placeholder("No 'time to book' data found within the 0-240 minute range.").Result()
	}
	return b.Chart("Time from Session Start to Booking (0-240 minutes)", 6, 3.5, func(fig chart.Figure) error {
		fig.XLabel, fig.YLabel = "Minutes from Session Start", "Number of Bookings"
		return env.Renderer.Histogram(fig, r.timeToBook, timeToBookBins)
	}).
		Paragraph("Average time from session start to booking (0-240 min): %.1f minutes (Median: %.1f min)",
			analysis.Mean(r.timeToBook), analysis.Median(r.timeToBook)).
		Result()
}

func (r *Behavior) deviceSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	if len(r.devices) == 0 {
		return pipeline.Unavailable("User data not available for device analysis.")
	}

	labels := make([]string, len(r.devices))
	values := make([]float64, len(r.devices))
	rows := make([][]any, len(r.devices))
	for i, d := range r.devices {
		labels[i], values[i] = d.Device, d.Percent
		rows[i] = []any{d.Device, analysis.FormatInt(d.Users), fmt.Sprintf("%.1f%%", d.Percent)}
	}

	return pipeline.NewBatch(ctx, env).
		Chart("User Distribution by Device Type", 5, 3, func(fig chart.Figure) error {
			fig.XLabel, fig.YLabel = "Device Type", "Percentage of Users (%)"
			return env.Renderer.Bars(fig, labels, values)
		}).
		Table([]string{"Device Type", "User Count", "Percentage"}, rows,
			[]float64{2 * document.Inch, 2 * document.Inch, 2 * document.Inch}).
		Result()
}

func (r *Behavior) recommendationsSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	insights := analysis.BehaviorRecommendations(r.outcomes, r.meanDuration, r.settings)
	return pipeline.NewBatch(ctx, env).
		Paragraph("Based on the analysis, consider the following actions:").
		Table([]string{"Potential Insight Area", "Suggested Action / Investigation"}, domain.InsightRows(insights),
			[]float64{2.5 * document.Inch, 4.5 * document.Inch}).
		Result()
}
