package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/report-atlas/pkg/adapters"
	"github.com/de-tools/report-atlas/pkg/chart"
	"github.com/de-tools/report-atlas/pkg/dataset"
	"github.com/de-tools/report-atlas/pkg/document"
	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/services/analysis"
	"github.com/de-tools/report-atlas/pkg/services/cleaning"
	"github.com/de-tools/report-atlas/pkg/services/pipeline"
	"github.com/de-tools/report-atlas/pkg/services/sentiment"
	"github.com/de-tools/report-atlas/pkg/services/textproc"
	"github.com/de-tools/report-atlas/pkg/store/sql"
)

const FeedbackName = "feedback"

const (
	feedbackQuery = "SELECT f.*, u.country, u.city AS user_city FROM user_feedback_q f JOIN users_q u ON f.user_id = u.id"
	topKeywords   = 15
	topThemes     = 3
)

// feedbackRun is the state shared between the sections of one feedback report. Nil fields
// could not be computed.
type feedbackRun struct {
	feedback []domain.Feedback
	ratings  []float64

	satisfaction *analysis.SatisfactionMetrics
	services     []analysis.ServiceRating
	positive     []domain.Feedback
	negative     []domain.Feedback
	praise       []analysis.Count
	complaints   []analysis.Count
	positiveText bool
	negativeText bool
}

// Feedback analyses review ratings, sentiment and recurring keywords.
type Feedback struct {
	scorer sentiment.Scorer
	raw    dataset.ResultSet
	run    feedbackRun
}

func NewFeedback(scorer sentiment.Scorer) *Feedback {
	return &Feedback{scorer: scorer}
}

func (r *Feedback) Name() string       { return FeedbackName }
func (r *Feedback) Title() string      { return "User Feedback Analysis Report" }
func (r *Feedback) OutputFile() string { return "User_Feedback_Analysis_Report.pdf" }

func (r *Feedback) Load(ctx context.Context, loader *sql.Loader) {
	r.raw = loader.Load(ctx, "user_feedback_q", feedbackQuery)
}

func (r *Feedback) Clean(ctx context.Context) {
	run := feedbackRun{
		feedback: cleaning.EnrichFeedback(adapters.DecodeFeedback(ctx, r.raw), r.scorer),
	}
	run.ratings = analysis.Ratings(run.feedback)
	if len(run.ratings) > 0 {
		m := analysis.Satisfaction(run.ratings)
		run.satisfaction = &m
	}
	run.services = analysis.ServiceRatings(run.feedback)

	for _, f := range run.feedback {
		if f.Rating == nil || f.CleanText == "" {
			continue
		}
		switch {
		case *f.Rating >= analysis.PositiveRating:
			run.positive = append(run.positive, f)
		case *f.Rating <= analysis.NegativeRating:
			run.negative = append(run.negative, f)
		}
	}
	run.positiveText = hasText(run.positive)
	run.negativeText = hasText(run.negative)
	run.praise = analysis.TopN(keywordsOf(run.positive), topThemes)
	run.complaints = analysis.TopN(keywordsOf(run.negative), topThemes)

	r.run = run
}

func (r *Feedback) Intro(*pipeline.Env) []document.Element {
	if len(r.run.feedback) == 0 {
		return nil
	}
	return []document.Element{document.Heading("Customer Satisfaction Insights")}
}

func (r *Feedback) Sections() []pipeline.Section {
	if len(r.run.feedback) == 0 {
		return []pipeline.Section{{Render: func(context.Context, *pipeline.Env) pipeline.Result {
			return pipeline.Unavailable("No feedback data found in the database.")
		}}}
	}
	return []pipeline.Section{
		{Title: "1. Overall Satisfaction Metrics", Render: r.satisfactionSection},
		{Title: "2. Service-Specific Performance", Render: r.serviceSection},
		{Title: "3. Sentiment Analysis", Render: r.sentimentSection},
		{Title: "4. Textual Feedback Insights", Render: r.textSection},
		{Title: "5. Key Themes and Potential Recommendations", Render: r.themesSection},
	}
}

func (r *Feedback) satisfactionSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	m := r.run.satisfaction
	if m == nil {
		return pipeline.Unavailable("No valid rating data available for overall satisfaction analysis.")
	}

	dist := analysis.RatingDistribution(r.run.ratings)
	labels := make([]string, len(dist))
	values := make([]float64, len(dist))
	for i, d := range dist {
		labels[i], values[i] = document.Cell(d.Rating), float64(d.Count)
	}

	return pipeline.NewBatch(ctx, env).
		Chart("Distribution of User Ratings", 6, 3.5, func(fig chart.Figure) error {
			fig.XLabel, fig.YLabel = "Rating (1-5)", "Number of Reviews"
			return env.Renderer.Bars(fig, labels, values)
		}).
		Paragraph("<b>Key Satisfaction Metrics:</b><br/>"+
			"Average Rating: %.2f/5<br/>"+
			"Positive Reviews (4-5 stars): %.1f%% (%d reviews)<br/>"+
			"Negative Reviews (1-2 stars): %.1f%% (%d reviews)<br/>"+
			"Total Reviews Analyzed: %d",
			m.Average, m.PercentPositive, m.Positive, m.PercentNegative, m.Negative, m.Total).
		Result()
}

func (r *Feedback) serviceSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	services := r.run.services
	if len(services) == 0 {
		return pipeline.Unavailable("No data available for service-specific rating analysis.")
	}

	labels := make([]string, len(services))
	values := make([]float64, len(services))
	rows := make([][]any, len(services))
	for i, s := range services {
		labels[i], values[i] = s.Service, s.Average
		rows[i] = []any{s.Service, fmt.Sprintf("%.2f", s.Average), s.Reviews, fmt.Sprintf("%.1f%%", s.PercentPositive)}
	}

	return pipeline.NewBatch(ctx, env).
		Chart("Average Rating by Service Type", 6, 3.5, func(fig chart.Figure) error {
			fig.XLabel, fig.YLabel = "Service Type", "Average Rating (1-5)"
			return env.Renderer.Bars(fig, labels, values)
		}).
		Table([]string{"Service", "Avg Rating", "Reviews", "% Positive"}, rows, nil).
		Result()
}

func (r *Feedback) sentimentSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	categories := make([]string, 0, len(r.run.feedback))
	byRating := make(map[float64][]float64)
	for _, f := range r.run.feedback {
		if f.SentimentCategory != "" {
			categories = append(categories, f.SentimentCategory)
		}
		if f.Rating != nil {
			byRating[*f.Rating] = append(byRating[*f.Rating], f.Sentiment)
		}
	}

	b := pipeline.NewBatch(ctx, env)
	counts := analysis.ValueCounts(categories)
	var labels []string
	var values []float64
	for _, c := range cleaning.SentimentOrder {
		if n := analysis.Lookup(counts, c); n > 0 {
			labels = append(labels, c)
			values = append(values, float64(n))
		}
	}
	if len(labels) == 0 {
		b.Placeholder("No sentiment category data available for distribution plot.")
	} else {
		b.Chart("Sentiment Distribution of Feedback", 6, 3.5, func(fig chart.Figure) error {
			fig.XLabel, fig.YLabel = "Sentiment Category", "Number of Reviews"
			return env.Renderer.Bars(fig, labels, values)
		})
	}

	if len(byRating) == 0 {
		return b.Placeholder("Rating or sentiment score data missing for correlation plot.").Result()
	}
	groups := make([]chart.Group, 0, len(byRating))
	for _, d := range analysis.RatingDistribution(r.run.ratings) {
		groups = append(groups, chart.Group{Label: document.Cell(d.Rating), Values: byRating[d.Rating]})
	}
	return b.Chart("Sentiment Scores by Rating Level", 6, 3.5, func(fig chart.Figure) error {
		fig.XLabel, fig.YLabel = "Rating", "Sentiment Score (-1 to 1)"
		return env.Renderer.BoxPlot(fig, groups)
	}).Result()
}

func (r *Feedback) textSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	b := pipeline.NewBatch(ctx, env)

	wordCloud(b, env, r.run.positive, "Frequent Terms in Positive Reviews (4-5 stars)",
		"No positive reviews (4-5 stars) with text found for word cloud.")
	wordCloud(b, env, r.run.negative, "Frequent Terms in Negative Reviews (1-2 stars)",
		"No negative reviews (1-2 stars) with text found for word cloud.")

	top := analysis.TopN(keywordsOf(r.run.feedback), topKeywords)
	if len(top) == 0 {
		return b.Placeholder("No keywords extracted for analysis.").Result()
	}
	labels := make([]string, len(top))
	values := make([]float64, len(top))
	for i, c := range top {
		labels[i], values[i] = c.Key, float64(c.Count)
	}
	return b.Chart("Top 15 Keywords in Feedback (4+ letters, excluding common words)", 6, 3.5, func(fig chart.Figure) error {
		fig.XLabel, fig.YLabel = "Keyword", "Frequency"
		return env.Renderer.Bars(fig, labels, values)
	}).Result()
}

func wordCloud(b *pipeline.Batch, env *pipeline.Env, feedback []domain.Feedback, title, missing string) {
	words := cloudWords(feedback)
	if len(words) == 0 {
		b.Placeholder("%s", missing)
		return
	}
	b.Chart(title, 6, 3, func(fig chart.Figure) error {
		return env.Renderer.WordCloud(fig, words)
	})
}

func (r *Feedback) themesSection(ctx context.Context, env *pipeline.Env) pipeline.Result {
	insights := analysis.FeedbackThemes(analysis.ThemeInputs{
		Services:     r.run.services,
		Praise:       r.run.praise,
		Complaints:   r.run.complaints,
		PositiveText: r.run.positiveText,
		NegativeText: r.run.negativeText,
		Satisfaction: r.run.satisfaction,
	})
	return pipeline.NewBatch(ctx, env).
		Paragraph("This section provides high-level themes based on the analysis. Further qualitative analysis is recommended for specific actions.").
		Table([]string{"Analysis Area", "Observation / Potential Action"}, domain.InsightRows(insights), nil).
		Result()
}

func hasText(feedback []domain.Feedback) bool {
	for _, f := range feedback {
		if strings.TrimSpace(f.CleanText) != "" {
			return true
		}
	}
	return false
}

func keywordsOf(feedback []domain.Feedback) []string {
	var keywords []string
	for _, f := range feedback {
		keywords = append(keywords, f.Keywords...)
	}
	return keywords
}

// cloudWords weighs every non-stopword token of the cleaned review text by its frequency.
func cloudWords(feedback []domain.Feedback) []chart.Word {
	var tokens []string
	for _, f := range feedback {
		for _, tok := range textproc.Tokenize(f.CleanText) {
			if _, stop := textproc.Stopwords[tok]; !stop {
				tokens = append(tokens, tok)
			}
		}
	}
	counts := analysis.ValueCounts(tokens)
	words := make([]chart.Word, 0, len(counts))
	for _, c := range counts {
		words = append(words, chart.Word{Text: c.Key, Weight: float64(c.Count)})
	}
	return words
}
