// Package core defines the domain types shared across the application:
// the review schema produced by the model, stored reviews, users, and the
// error taxonomy used by the HTTP layer.
package core

import (
	"fmt"
	"time"
)

// Severity classifies how serious a single finding is.
// Only the three values below are valid; anything else coming back from the
// model is treated as a malformed response.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is one of the three allowed severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Finding is one reported issue within a review category.
type Finding struct {
	Issue       string   `json:"issue"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
}

// ReviewOutput is the canonical structured review for one code submission.
// The three category slices are always non-nil so rendering stays total,
// and ImprovedCode is one complete revised file, never a diff.
type ReviewOutput struct {
	Summary       string    `json:"summary"`
	Bugs          []Finding `json:"bugs"`
	Security      []Finding `json:"security"`
	BestPractices []Finding `json:"bestPractices"`
	ImprovedCode  string    `json:"improvedCode"`
}

// Normalize replaces nil category slices with empty ones.
func (o *ReviewOutput) Normalize() {
	if o.Bugs == nil {
		o.Bugs = []Finding{}
	}
	if o.Security == nil {
		o.Security = []Finding{}
	}
	if o.BestPractices == nil {
		o.BestPractices = []Finding{}
	}
}

// Validate checks the schema invariants: every finding carries an issue text
// and a severity from the fixed enum.
func (o *ReviewOutput) Validate() error {
	for _, group := range []struct {
		name     string
		findings []Finding
	}{
		{"bugs", o.Bugs},
		{"security", o.Security},
		{"bestPractices", o.BestPractices},
	} {
		for i, f := range group.findings {
			if f.Issue == "" {
				return fmt.Errorf("%s[%d]: missing issue", group.name, i)
			}
			if !f.Severity.Valid() {
				return fmt.Errorf("%s[%d]: invalid severity %q", group.name, i, f.Severity)
			}
		}
	}
	return nil
}

// Review is a single persisted review linked to a user.
type Review struct {
	ID        string       `json:"id" db:"id"`
	UserID    string       `json:"userId" db:"user_id"`
	Input     string       `json:"input" db:"input"`
	Output    ReviewOutput `json:"output"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"_id" db:"id"`
	FullName     string    `json:"fullName" db:"full_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
