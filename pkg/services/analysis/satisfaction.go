package analysis

import (
	"sort"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

const (
	// PositiveRating is the lowest rating counted as positive.
	PositiveRating = 4.0
	// NegativeRating is the highest rating counted as negative.
	NegativeRating = 2.0
)

// SatisfactionMetrics summarises a set of star ratings.
type SatisfactionMetrics struct {
	Total           int
	Average         float64 // 2 decimals
	Positive        int
	Negative        int
	PercentPositive float64 // 1 decimal
	PercentNegative float64 // 1 decimal
}

// Satisfaction computes the average rating and the positive/negative split.
func Satisfaction(ratings []float64) SatisfactionMetrics {
	m := SatisfactionMetrics{Total: len(ratings)}
	if m.Total == 0 {
		return m
	}
	for _, r := range ratings {
		if r >= PositiveRating {
			m.Positive++
		}
		if r <= NegativeRating {
			m.Negative++
		}
	}
	m.Average = Round(Mean(ratings), 2)
	m.PercentPositive = Round(Percent(float64(m.Positive), float64(m.Total)), 1)
	m.PercentNegative = Round(Percent(float64(m.Negative), float64(m.Total)), 1)
	return m
}

// Ratings collects the ratings present on the feedback rows.
func Ratings(feedback []domain.Feedback) []float64 {
	ratings := make([]float64, 0, len(feedback))
	for _, f := range feedback {
		if f.Rating != nil {
			ratings = append(ratings, *f.Rating)
		}
	}
	return ratings
}

// RatingCount is the number of reviews with one rating value.
type RatingCount struct {
	Rating float64
	Count  int
}

// RatingDistribution counts reviews per rating value, ordered by rating.
func RatingDistribution(ratings []float64) []RatingCount {
	freq := make(map[float64]int)
	for _, r := range ratings {
		freq[r]++
	}
	dist := make([]RatingCount, 0, len(freq))
	for r, n := range freq {
		dist = append(dist, RatingCount{Rating: r, Count: n})
	}
	sort.Slice(dist, func(i, j int) bool { return dist[i].Rating < dist[j].Rating })
	return dist
}

// ServiceRating is the per-service rating aggregate.
type ServiceRating struct {
	Service         string
	Average         float64 // 2 decimals
	Reviews         int
	PercentPositive float64 // 1 decimal
}

// ServiceRatings aggregates rated feedback by service type, best average first.
func ServiceRatings(feedback []domain.Feedback) []ServiceRating {
	byService := make(map[string][]float64)
	for _, f := range feedback {
		if f.Rating == nil || f.ServiceType == "" {
			continue
		}
		byService[f.ServiceType] = append(byService[f.ServiceType], *f.Rating)
	}

	out := make([]ServiceRating, 0, len(byService))
	for service, ratings := range byService {
		m := Satisfaction(ratings)
		out = append(out, ServiceRating{
			Service:         service,
			Average:         m.Average,
			Reviews:         m.Total,
			PercentPositive: m.PercentPositive,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Service < out[j].Service
	})
	return out
}
