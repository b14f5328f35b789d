// Package mentions provides the extracted-mention store for the resolution
// engine. A mention is a free-text reference to a person lifted from a
// scraped roster, member list, or vote tally; the extractor creates mentions
// at status pending, and this engine's classification step mutates each one
// exactly once.
package mentions

import (
	"fmt"
	"time"
)

// MatchingStatus represents the resolution status of an extracted mention.
type MatchingStatus string

const (
	StatusPending     MatchingStatus = "pending"
	StatusMatched     MatchingStatus = "matched"
	StatusNeedsReview MatchingStatus = "needs_review"
	StatusNoMatch     MatchingStatus = "no_match"
)

// Classification thresholds. A confirmed match requires confidence at or
// above MatchedThreshold; the band below it down to ReviewThreshold is
// queued for human review; anything lower is recorded as no match.
const (
	MatchedThreshold = 0.7
	ReviewThreshold  = 0.5
)

// ExtractedMention represents a person mention extracted from a source page.
type ExtractedMention struct {
	ID int64 `json:"id"`

	// GroupContextID identifies the conference, parliamentary group, or
	// proposal the mention was extracted from.
	GroupContextID int64 `json:"group_context_id"`

	// What was extracted
	ExtractedName      string  `json:"extracted_name"`
	ExtractedPartyName *string `json:"extracted_party_name,omitempty"`
	ExtractedRole      *string `json:"extracted_role,omitempty"`
	SourceURL          string  `json:"source_url"`
	ExtractedAt        time.Time `json:"extracted_at"`

	// Resolution outcome
	MatchedPoliticianID *int64         `json:"matched_politician_id,omitempty"`
	MatchingConfidence  *float64       `json:"matching_confidence,omitempty"`
	MatchingStatus      MatchingStatus `json:"matching_status"`
	MatchedAt           *time.Time     `json:"matched_at,omitempty"`
}

// PartyName returns the extracted party name or "" when unset.
func (m ExtractedMention) PartyName() string {
	if m.ExtractedPartyName == nil {
		return ""
	}
	return *m.ExtractedPartyName
}

// Role returns the extracted role or "" when unset.
func (m ExtractedMention) Role() string {
	if m.ExtractedRole == nil {
		return ""
	}
	return *m.ExtractedRole
}

// ClassificationInput captures the outcome of classifying one mention.
// It is persisted as a single atomic row update.
type ClassificationInput struct {
	PoliticianID *int64
	Confidence   float64
	Status       MatchingStatus
	MatchedAt    *time.Time
}

// Validate enforces the status invariants before persistence:
// matched and needs_review require a politician and a confidence inside the
// band; no_match requires a nil politician and zero confidence.
func (in ClassificationInput) Validate() error {
	switch in.Status {
	case StatusMatched:
		if in.PoliticianID == nil {
			return fmt.Errorf("matched status requires a politician id")
		}
		if in.Confidence < MatchedThreshold {
			return fmt.Errorf("matched status requires confidence >= %.2f, got %.2f", MatchedThreshold, in.Confidence)
		}
	case StatusNeedsReview:
		if in.PoliticianID == nil {
			return fmt.Errorf("needs_review status requires a politician id")
		}
		if in.Confidence < ReviewThreshold || in.Confidence >= MatchedThreshold {
			return fmt.Errorf("needs_review status requires confidence in [%.2f, %.2f), got %.2f", ReviewThreshold, MatchedThreshold, in.Confidence)
		}
	case StatusNoMatch:
		if in.PoliticianID != nil {
			return fmt.Errorf("no_match status must not carry a politician id")
		}
		if in.Confidence != 0 {
			return fmt.Errorf("no_match status must carry confidence 0.0, got %.2f", in.Confidence)
		}
	default:
		return fmt.Errorf("invalid classification status %q", in.Status)
	}
	return nil
}

// SummaryCounts is the read-only extraction summary projection: mention
// counts by status for a group (or all groups). It is derived, never
// independently persisted or mutated.
type SummaryCounts struct {
	Pending     int `json:"pending"`
	Matched     int `json:"matched"`
	NeedsReview int `json:"needs_review"`
	NoMatch     int `json:"no_match"`
	Total       int `json:"total"`
}
