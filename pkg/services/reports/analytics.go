package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/de-tools/report-atlas/pkg/chart"
	"github.com/de-tools/report-atlas/pkg/dataset"
	"github.com/de-tools/report-atlas/pkg/document"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/analysis"
	"github.com/de-tools/report-atlas/pkg/services/pipeline"
	"github.com/de-tools/report-atlas/pkg/store/sql"
)

const AnalyticsName = "analytics"

const sampleFeedback = 5

// Analytics is the platform overview: growth, activity, ratings, revenue and acquisition.
type Analytics struct {
	raw struct {
		users, sessions, feedback, payments, traffic dataset.ResultSet
	}

	feedback []domain.Feedback
	payments []domain.Payment

	growth  []analysis.DayCount
	dau     []analysis.DayCount
	ratings []float64
	sources []analysis.Count
}

func NewAnalytics() *Analytics {
	return &Analytics{}
}

func (r *Analytics) Name() string       { return AnalyticsName }
func (r *Analytics) Title() string      { return "User Analytics and Reporting" }
func (r *Analytics) OutputFile() string { return "User_Analytics_Report.pdf" }

func (r *Analytics) Load(ctx context.Context, loader *sql.Loader) {
	r.raw.users = loader.Load(ctx, "users_s", "SELECT * FROM users_s")
	r.raw.sessions = loader.Load(ctx, "sessions_s", "SELECT * FROM sessions_s")
	r.raw.feedback = loader.Load(ctx, "user_feedback_s", "SELECT * FROM user_feedback_s")
	r.raw.payments = loader.Load(ctx, "payments_s", "SELECT * FROM payments_s")
	r.raw.traffic = loader.Load(ctx, "traffic_sources_s", "SELECT source FROM traffic_sources_s")
}

func (r *Analytics) Clean(ctx context.Context) {
	r.growth = analysis.CumulativeUsers(adapters.DecodeUsers(ctx, r.raw.users))
	r.dau = analysis.DailyActiveUsers(adapters.DecodeSessions(ctx, r.raw.sessions))
	r.feedback = adapters.DecodeFeedback(ctx, r.raw.feedback)
	r.ratings = analysis.Ratings(r.feedback)
	r.payments = adapters.DecodePayments(ctx, r.raw.payments)

	sources := adapters.DecodeTrafficSources(ctx, r.raw.traffic)
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Source)
	}
	r.sources = analysis.ValueCounts(names)
}

func (r *Analytics) averageRating() float64 {
	return analysis.Round(analysis.Mean(r.ratings), 2)
}

func (r *Analytics) Intro(*pipeline.Env) []document.Element {
	topSource, topCount := "N/A", 0
	if len(r.sources) > 0 {
		topSource, topCount = r.sources[0].Key, r.sources[0].Count
	}

	return []document.Element{
		document.Heading("Summary Highlights"),
		document.Paragraph(fmt.Sprintf(
			"<b>Total Users:</b> %s<br/>"+
				"<b>Max Daily Active Users:</b> %s<br/>"+
				"<b>Average User Rating:</b> %s / 5<br/>"+
				"<b>Total Revenue Collected:</b> %s<br/>"+
				"<b>Top Traffic Source:</b> %s (%s users)",
			analysis.FormatInt(analysis.Last(r.growth)),
			analysis.FormatInt(analysis.MaxCount(r.dau)),
			document.Cell(r.averageRating()),
			analysis.FormatMoney(analysis.TotalRevenue(r.payments)),
			document.Plain(topSource), analysis.FormatInt(topCount),
		)),
	}
}

func (r *Analytics) Sections() []pipeline.Section {
	return []pipeline.Section{
		{Title: "User Growth Metrics", Render: r.growthSection},
		{Title: "User Activity Metrics", Render: r.activitySection},
		{Title: "User Feedback Summary", Render: r.feedbackSection},
		{Title: "Revenue Insights", Render: r.revenueSection},
		{Title: "Traffic Sources", Render: r.trafficSection},
	}
}

func (r *Analytics) growthSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	if len(r.growth) == 0 {
		return pipeline.Unavailable("No user growth data available to generate chart.")
	}

	xs := make([]time.Time, len(r.growth))
	ys := make([]float64, len(r.growth))
	for i, d := range r.growth {
		xs[i], ys[i] = d.Day, float64(d.Count)
	}

	return pipeline.NewBatch(ctx, env).
		Paragraph("This section shows how your user base is growing over time, broken down by day.").
		Chart("Cumulative User Growth Over Time", 6, 3.5, func(fig chart.Figure) error {
			fig.XLabel, fig.YLabel = "Date", "Total Users"
			return env.Renderer.Line(fig, xs, ys)
		}).
		Result()
}

func (r *Analytics) activitySection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	if len(r.dau) == 0 {
		return pipeline.Unavailable("No user activity data available to generate chart.")
	}

	labels := make([]string, len(r.dau))
	values := make([]float64, len(r.dau))
	for i, d := range r.dau {
		labels[i], values[i] = d.Day.Format(time.DateOnly), float64(d.Count)
	}

	return pipeline.NewBatch(ctx, env).
		Paragraph("Daily Active Users (DAU) is calculated based on user sessions started each day.").
		Chart("Daily Active Users", 6, 3.5, func(fig chart.Figure) error {
			fig.XLabel, fig.YLabel = "Date", "Unique Users"
			return env.Renderer.Bars(fig, labels, values)
		}).
		Result()
}

func (r *Analytics) feedbackSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	if len(r.feedback) == 0 {
		return pipeline.Unavailable("No user feedback data available.")
	}

	b := pipeline.NewBatch(ctx, env).
		Paragraph("Here's a summary of the average rating and selected comments from users.").
		Paragraph("Average User Rating: %s/5", document.Cell(r.averageRating()))

	samples := make([]domain.Feedback, 0, sampleFeedback)
	for _, f := range r.feedback {
		if len(samples) == sampleFeedback {
			break
		}
		if len(r.ratings) > 0 && f.Rating == nil {
			continue
		}
		samples = append(samples, f)
	}

	b.Paragraph("<b>Sample Feedback:</b>")
	for _, f := range samples {
		text := f.Text
		if text == "" {
			text = "No comment provided"
		}
		b.Paragraph("<b>Rating:</b> %s - <i>%s</i>", document.Cell(f.Rating), document.Plain(text))
	}
	return b.Result()
}

func (r *Analytics) revenueSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	if len(r.payments) == 0 {
		return pipeline.Unavailable("No revenue data available.")
	}

	b := pipeline.NewBatch(ctx, env).
		Paragraph("Displays revenue per user and total income from all purchases.").
		Paragraph("Total Revenue Collected: %s", analysis.FormatMoney(analysis.TotalRevenue(r.payments)))

	perUser := analysis.RevenuePerUser(r.payments)
	if len(perUser) == 0 {
		return b.Placeholder("No per-user revenue data to generate chart.").Result()
	}
	return b.Chart("Distribution of Revenue per User", 6, 3.5, func(fig chart.Figure) error {
		fig.XLabel, fig.YLabel = "Revenue Amount ($)", "User Count"
		return env.Renderer.Histogram(fig, perUser, 10)
	}).Result()
}

func (r *Analytics) trafficSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	if len(r.sources) == 0 {
		return pipeline.Unavailable("No traffic source data available to generate chart.")
	}

	slices := make([]chart.Slice, 0, len(r.sources))
	for _, s := range r.sources {
		slices = append(slices, chart.Slice{Label: s.Key, Value: float64(s.Count)})
	}

	return pipeline.NewBatch(ctx, env).
		Paragraph("Users arrive from various channels. Here's a breakdown by source.").
		Chart("Traffic Source Distribution", 5, 5, func(fig chart.Figure) error {
			return env.Renderer.Pie(fig, slices)
		}).
		Result()
}
