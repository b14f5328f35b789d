// Package resolver implements the mention-resolution pipeline: candidate
// lookup, match arbitration, and confidence-based classification of
// extracted mentions against the canonical politician registry.
package resolver

import (
	"context"
	"time"

	"github.com/google/uuid"

	sherrors "github.com/seihyo/seihyo-cli/pkg/errors"
	"github.com/seihyo/seihyo-cli/pkg/logging"
	"github.com/seihyo/seihyo-cli/pkg/mentions"
)

// BatchResult accumulates outcomes of one ProcessPending run.
type BatchResult struct {
	RunID       string `json:"run_id"`
	Total       int    `json:"total"`
	Matched     int    `json:"matched"`
	NeedsReview int    `json:"needs_review"`
	NoMatch     int    `json:"no_match"`
	Errors      int    `json:"errors"`
}

// Classifier orchestrates batches of pending mentions through the
// finder → arbitrator → persistence pipeline. Mentions are processed
// sequentially; each mention's state transition is atomic, so a batch can
// be safely interrupted between mentions and resumed by a later run.
type Classifier struct {
	finder     *CandidateFinder
	arbitrator *MatchArbitrator
	repo       mentions.Repository
	config     Config
	log        logging.Logger
	metrics    *Metrics

	// now is injected for deterministic tests.
	now func() time.Time
}

// NewClassifier creates a classifier with explicit collaborators.
func NewClassifier(
	finder *CandidateFinder,
	arbitrator *MatchArbitrator,
	repo mentions.Repository,
	config Config,
	log logging.Logger,
	metrics *Metrics,
) *Classifier {
	if err := config.Validate(); err != nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Classifier{
		finder:     finder,
		arbitrator: arbitrator,
		repo:       repo,
		config:     config,
		log:        log,
		metrics:    metrics,
		now:        time.Now,
	}
}

// ProcessPending classifies all pending mentions, optionally filtered by
// group context. A per-mention failure is counted and the batch continues;
// only a registry outage aborts the run. Reprocessing already-classified
// mentions is a no-op because only pending rows are selected.
func (c *Classifier) ProcessPending(ctx context.Context, groupID *int64) (BatchResult, error) {
	result := BatchResult{RunID: "match_" + uuid.NewString()[:8]}

	ctx = context.WithValue(ctx, logging.RunIDKey, result.RunID)
	log := c.log.WithContext(ctx)

	pending, err := c.repo.ListPending(ctx, groupID)
	if err != nil {
		return result, err
	}

	result.Total = len(pending)
	log.Info("processing pending mentions", logging.F("total", result.Total))

	for _, mention := range pending {
		status, err := c.classifyOne(ctx, mention)
		if err != nil {
			if sherrors.IsRegistryUnavailable(err) {
				// Nothing can proceed without candidate lookup.
				log.Error("registry unavailable, aborting batch", logging.Err(err))
				return result, err
			}
			result.Errors++
			c.metrics.countError()
			log.Warn("mention classification failed",
				logging.F("mention_id", mention.ID),
				logging.F("name", mention.ExtractedName),
				logging.Err(err))
			continue
		}

		c.metrics.countStatus(string(status))
		switch status {
		case mentions.StatusMatched:
			result.Matched++
		case mentions.StatusNeedsReview:
			result.NeedsReview++
		case mentions.StatusNoMatch:
			result.NoMatch++
		}
	}

	log.Info("batch complete",
		logging.F("matched", result.Matched),
		logging.F("needs_review", result.NeedsReview),
		logging.F("no_match", result.NoMatch),
		logging.F("errors", result.Errors))

	return result, nil
}

// classifyOne runs the per-mention pipeline and persists the outcome as a
// single atomic row update.
func (c *Classifier) classifyOne(ctx context.Context, mention mentions.ExtractedMention) (mentions.MatchingStatus, error) {
	candidates, err := c.finder.Find(ctx, mention.ExtractedName, mention.PartyName())
	if err != nil {
		return "", err
	}

	if len(candidates) > 1 {
		c.metrics.countOracleRequest()
	}

	verdict := c.arbitrator.Arbitrate(ctx, MentionContext{
		Name:      mention.ExtractedName,
		PartyName: mention.PartyName(),
		Role:      mention.Role(),
	}, candidates)

	input := c.classify(verdict)

	if err := c.repo.UpdateClassification(ctx, mention.ID, input); err != nil {
		return "", err
	}

	return input.Status, nil
}

// classify maps a verdict onto a classification outcome. A nil politician
// forces no_match with confidence 0.0 regardless of any computed value;
// below the review threshold the politician id is discarded, not persisted.
func (c *Classifier) classify(verdict Verdict) mentions.ClassificationInput {
	if verdict.PoliticianID == nil {
		return mentions.ClassificationInput{Status: mentions.StatusNoMatch}
	}

	switch {
	case verdict.Confidence >= c.config.Thresholds.Matched:
		now := c.now()
		return mentions.ClassificationInput{
			PoliticianID: verdict.PoliticianID,
			Confidence:   verdict.Confidence,
			Status:       mentions.StatusMatched,
			MatchedAt:    &now,
		}
	case verdict.Confidence >= c.config.Thresholds.NeedsReview:
		now := c.now()
		return mentions.ClassificationInput{
			PoliticianID: verdict.PoliticianID,
			Confidence:   verdict.Confidence,
			Status:       mentions.StatusNeedsReview,
			MatchedAt:    &now,
		}
	default:
		return mentions.ClassificationInput{Status: mentions.StatusNoMatch}
	}
}
