package domain

import "time"

// User is one row of a users table.
type User struct {
	ID         string
	CreatedAt  time.Time
	DeviceType string
	Country    string
	City       string
}

// Session is one row of a sessions table. End is zero when the session is still open.
type Session struct {
	UserID string
	Start  time.Time
	End    time.Time
}

// Duration returns the session length and false when the session cannot be measured.
func (s Session) Duration() (time.Duration, bool) {
	if s.Start.IsZero() || s.End.IsZero() || s.End.Before(s.Start) {
		return 0, false
	}
	return s.End.Sub(s.Start), true
}

// Event is one tracked user action.
type Event struct {
	UserID   string
	Type     string
	Time     time.Time
	Metadata map[string]any
}

// Feedback is a single review, optionally joined with the reviewing user's location.
type Feedback struct {
	ID          string
	UserID      string
	ServiceType string
	Location    string
	Text        string
	Rating      *float64
	SubmittedAt time.Time
	Country     string
	City        string

	// Derived during cleaning.
	CleanText         string
	Sentiment         float64
	SentimentCategory string
	Keywords          []string
}

type Payment struct {
	UserID string
	Amount float64
}

type TrafficSource struct {
	Source string
}
