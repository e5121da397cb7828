package analysis

import (
	"fmt"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

// RecommendationSettings holds the thresholds that trigger behavioural recommendations.
type RecommendationSettings struct {
	// MaxAbandonPercent flags abandonment above this share of booking outcomes (default: 30)
	MaxAbandonPercent float64
	// MaxCancelPercent flags cancellations above this share of booking outcomes (default: 10)
	MaxCancelPercent float64
	// ShortSessionMinutes flags a mean session duration below this value (default: 5)
	ShortSessionMinutes float64
	// LongSessionMinutes flags a mean session duration above this value (default: 30)
	LongSessionMinutes float64
	// MinRecommendations is the count below which general recommendations are added (default: 2)
	MinRecommendations int
}

// DefaultRecommendationSettings returns the default thresholds.
func DefaultRecommendationSettings() RecommendationSettings {
	return RecommendationSettings{
		MaxAbandonPercent:   30,
		MaxCancelPercent:    10,
		ShortSessionMinutes: 5,
		LongSessionMinutes:  30,
		MinRecommendations:  2,
	}
}

var generalRecommendations = []domain.Insight{
	{
		Area:   "Funnel Drop-off Points",
		Action: "Compare conversion between funnel stages (search to view, view to intent, intent to book) for key products such as flights and hotels. Focus optimisation on the largest leaks.",
	},
	{
		Area:   "Device Experience Parity",
		Action: "Compare conversion, session duration and abandonment across device types. Prioritise improvements for the weakest device segment.",
	},
	{
		Area:   "Personalization Opportunities",
		Action: "Use the most searched destinations and locations to personalise the homepage, promotional emails and targeted offers.",
	},
}

var generalReview = domain.Insight{
	Area:   "General Review",
	Action: "Review user paths, session recordings and feedback to find pain points across the booking journey.",
}

// BehaviorRecommendations derives recommendations from booking outcomes and the mean session
// duration. meanDuration is nil when durations could not be computed.
func BehaviorRecommendations(outcomes []Count, meanDuration *float64, settings RecommendationSettings) []domain.Insight {
	var insights []domain.Insight

	if total := Total(outcomes); total > 0 {
		abandon := Percent(float64(Lookup(outcomes, OutcomeAbandoned)), float64(total))
		if abandon > settings.MaxAbandonPercent {
			insights = append(insights, domain.Insight{
				Area:   fmt.Sprintf("High Abandonment Rate (~%.0f%%)", abandon),
				Action: "Investigate checkout friction: long forms, unexpected fees, limited payment options, forced sign-up. Add abandoned booking reminders and review the events that precede abandon_booking.",
			})
		}
		cancel := Percent(float64(Lookup(outcomes, OutcomeCancelled)), float64(total))
		if cancel > settings.MaxCancelPercent {
			insights = append(insights, domain.Insight{
				Area:   fmt.Sprintf("Notable Cancellation Rate (~%.0f%%)", cancel),
				Action: "Review cancellation policies for clarity, collect cancellation reasons and make sure descriptions and prices match what is delivered.",
			})
		}
	}

	if meanDuration != nil {
		switch {
		case *meanDuration < settings.ShortSessionMinutes:
			insights = append(insights, domain.Insight{
				Area:   fmt.Sprintf("Short Avg. Session Duration (%.1f min)", *meanDuration),
				Action: "Check landing page relevance, load times and navigation. Analyse entry and exit pages of short sessions and A/B test landing content.",
			})
		case *meanDuration > settings.LongSessionMinutes:
			insights = append(insights, domain.Insight{
				Area:   fmt.Sprintf("Long Avg. Session Duration (%.1f min)", *meanDuration),
				Action: "Long sessions can mean engagement or struggle. Segment them by task completion, simplify complex flows and improve search and filtering.",
			})
		}
	}

	if len(insights) < settings.MinRecommendations {
		insights = append(insights, generalRecommendations...)
	}
	if len(insights) == 0 {
		insights = append(insights, generalReview)
	}
	return insights
}

// ThemeInputs carries the feedback figures the themes table draws on. Nil fields mean the
// figure could not be computed.
type ThemeInputs struct {
	Services     []ServiceRating
	Praise       []Count
	Complaints   []Count
	PositiveText bool
	NegativeText bool
	Satisfaction *SatisfactionMetrics
}

// FeedbackThemes summarises service performance, recurring keywords and overall sentiment.
func FeedbackThemes(in ThemeInputs) []domain.Insight {
	var insights []domain.Insight

	if len(in.Services) > 0 {
		top := in.Services[0]
		bottom := in.Services[len(in.Services)-1]
		insights = append(insights,
			domain.Insight{Area: "Top Rated Service", Action: fmt.Sprintf("%s (%.2f/5)", top.Service, top.Average)},
			domain.Insight{Area: "Lowest Rated Service", Action: fmt.Sprintf("%s (%.2f/5) - Investigate further", bottom.Service, bottom.Average)},
		)
	} else {
		insights = append(insights, domain.Insight{Area: "Service Performance", Action: "Data insufficient for comparison."})
	}

	switch {
	case !in.PositiveText:
		insights = append(insights, domain.Insight{Area: "Common Praise Themes", Action: "No positive text to analyze."})
	case len(in.Praise) == 0:
		insights = append(insights, domain.Insight{Area: "Common Praise Themes", Action: "No specific keywords dominate positive reviews."})
	default:
		insights = append(insights, domain.Insight{
			Area:   "Common Praise Themes",
			Action: fmt.Sprintf("Keywords like %s frequently appear in positive feedback.", keywordList(in.Praise)),
		})
	}

	switch {
	case !in.NegativeText:
		insights = append(insights, domain.Insight{Area: "Common Complaint Themes", Action: "No negative text to analyze."})
	case len(in.Complaints) == 0:
		insights = append(insights, domain.Insight{Area: "Common Complaint Themes", Action: "No specific keywords dominate negative reviews."})
	default:
		insights = append(insights, domain.Insight{
			Area:   "Common Complaint Themes",
			Action: fmt.Sprintf("Keywords like %s are common in negative feedback. Focus areas.", keywordList(in.Complaints)),
		})
	}

	if in.Satisfaction != nil && in.Satisfaction.Total > 0 {
		insights = append(insights, domain.Insight{
			Area:   "Overall Sentiment",
			Action: fmt.Sprintf("%.1f%% positive ratings (4-5 stars).", in.Satisfaction.PercentPositive),
		})
	} else {
		insights = append(insights, domain.Insight{Area: "Overall Sentiment", Action: "Rating data unavailable."})
	}
	return insights
}

func keywordList(counts []Count) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("'%s' (%d)", c.Key, c.Count))
	}
	return strings.Join(parts, ", ")
}
