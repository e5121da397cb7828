package analysis

import (
	"fmt"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

// Stage is a coarse step of the booking journey.
type Stage int

const (
	StageSearch Stage = iota
	StageViewRefine
	StageIntent
	StageBook
)

func (s Stage) String() string {
	switch s {
	case StageSearch:
		return "Search"
	case StageViewRefine:
		return "View/Refine"
	case StageIntent:
		return "Intent"
	case StageBook:
		return "Book"
	default:
		return "Unknown"
	}
}

// FunnelEvents lists the tracked funnel event types in journey order.
var FunnelEvents = []string{
	"search_flight", "search_hotel", "search_package", "search_car", "search_activity", "search_train", "search_bus",
	"view_flight", "view_hotel", "view_package", "compare_hotel", "view_deal", "apply_filter", "sort_results",
	"click_book", "wishlist_add",
	"book_flight", "book_hotel", "book_package", "book_car", "book_activity", "book_train", "repeat_booking",
}

var refineEvents = map[string]struct{}{
	"compare_hotel": {}, "apply_filter": {}, "sort_results": {},
}

// StageOf classifies an event type into a funnel stage.
func StageOf(eventType string) (Stage, bool) {
	switch {
	case strings.HasPrefix(eventType, "search_"):
		return StageSearch, true
	case strings.HasPrefix(eventType, "view_"):
		return StageViewRefine, true
	case strings.HasPrefix(eventType, "click_"), eventType == "wishlist_add":
		return StageIntent, true
	case strings.HasPrefix(eventType, "book_"), eventType == "repeat_booking":
		return StageBook, true
	}
	if _, ok := refineEvents[eventType]; ok {
		return StageViewRefine, true
	}
	return 0, false
}

// FunnelCounts counts funnel events in journey order, skipping types that never occur.
func FunnelCounts(events []domain.Event) []Count {
	freq := make(map[string]int)
	for _, e := range events {
		freq[e.Type]++
	}
	var counts []Count
	for _, t := range FunnelEvents {
		if n := freq[t]; n > 0 {
			counts = append(counts, Count{Key: t, Count: n})
		}
	}
	return counts
}

// StageTotals is the number of events per funnel stage.
type StageTotals map[Stage]int

// StageCounts sums event counts per stage.
func StageCounts(counts []Count) StageTotals {
	totals := StageTotals{}
	for _, c := range counts {
		if stage, ok := StageOf(c.Key); ok {
			totals[stage] += c.Count
		}
	}
	return totals
}

// Conversion is the ratio between two funnel stages.
type Conversion struct {
	Name        string
	Numerator   int
	Denominator int
}

// Rate returns the conversion in percent, 0 when the denominator is 0.
func (c Conversion) Rate() float64 {
	return Percent(float64(c.Numerator), float64(c.Denominator))
}

func (c Conversion) String() string {
	return fmt.Sprintf("%.1f%% (%s / %s)", c.Rate(), FormatInt(c.Numerator), FormatInt(c.Denominator))
}

// Conversions returns the step-to-step and overall conversion rates.
func Conversions(t StageTotals) []Conversion {
	return []Conversion{
		{Name: "Search to View/Refine", Numerator: t[StageViewRefine], Denominator: t[StageSearch]},
		{Name: "View/Refine to Intent", Numerator: t[StageIntent], Denominator: t[StageViewRefine]},
		{Name: "Intent to Book", Numerator: t[StageBook], Denominator: t[StageIntent]},
		{Name: "Overall (Search to Book)", Numerator: t[StageBook], Denominator: t[StageSearch]},
	}
}

const (
	OutcomeCompleted = "Completed Booking"
	OutcomeAbandoned = "Abandoned Booking"
	OutcomeCancelled = "Cancelled Booking"
)

// OutcomeEvents are the event types that describe how a booking ended, besides book events.
var OutcomeEvents = []string{"abandon_booking", "cancel_booking"}

// BookingOutcome maps an event type to its booking outcome.
func BookingOutcome(eventType string) (string, bool) {
	switch {
	case eventType == "abandon_booking":
		return OutcomeAbandoned, true
	case eventType == "cancel_booking":
		return OutcomeCancelled, true
	case strings.HasPrefix(eventType, "book_"), eventType == "repeat_booking":
		return OutcomeCompleted, true
	default:
		return "", false
	}
}

// BookingOutcomes counts booking outcomes across events.
func BookingOutcomes(events []domain.Event) []Count {
	var outcomes []string
	for _, e := range events {
		if o, ok := BookingOutcome(e.Type); ok {
			outcomes = append(outcomes, o)
		}
	}
	return ValueCounts(outcomes)
}
