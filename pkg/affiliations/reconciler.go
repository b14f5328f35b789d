package affiliations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/seihyo/seihyo-cli/pkg/logging"
	"github.com/seihyo/seihyo-cli/pkg/mentions"
)

// Reconciler folds confirmed mention matches into temporally consistent
// affiliation intervals. It never deletes rows; it only inserts new
// intervals or end-dates overlapping ones.
type Reconciler struct {
	mentionRepo mentions.Repository
	affRepo     Repository
	log         logging.Logger

	// now is injected for deterministic tests.
	now func() time.Time
}

// NewReconciler creates a reconciler with explicit collaborators.
func NewReconciler(mentionRepo mentions.Repository, affRepo Repository, log logging.Logger) *Reconciler {
	if log == nil {
		log = logging.Nop()
	}
	return &Reconciler{
		mentionRepo: mentionRepo,
		affRepo:     affRepo,
		log:         log,
		now:         time.Now,
	}
}

// Reconcile upserts an affiliation for every matched mention in the target
// group, closing prior overlapping actives so at most one interval per
// (politician, group) is open at any instant. asOf defaults to today.
// A persistence failure for one mention is counted and the batch continues.
// Re-running with identical inputs yields no changes.
func (r *Reconciler) Reconcile(ctx context.Context, groupID *int64, asOf *time.Time) (ReconcileResult, error) {
	result := ReconcileResult{RunID: "reconcile_" + uuid.NewString()[:8]}

	asOfDate := DateOnly(r.now())
	if asOf != nil {
		asOfDate = DateOnly(*asOf)
	}

	ctx = context.WithValue(ctx, logging.RunIDKey, result.RunID)
	log := r.log.WithContext(ctx)

	matched, err := r.mentionRepo.ListMatched(ctx, groupID)
	if err != nil {
		return result, err
	}

	result.Total = len(matched)
	log.Info("reconciling affiliations",
		logging.F("total", result.Total),
		logging.F("as_of", asOfDate.Format("2006-01-02")))

	for _, mention := range matched {
		created, err := r.reconcileOne(ctx, mention, asOfDate)
		if err != nil {
			result.Failed++
			log.Warn("affiliation reconciliation failed",
				logging.F("mention_id", mention.ID),
				logging.F("politician_id", *mention.MatchedPoliticianID),
				logging.Err(err))
			continue
		}
		if created {
			result.Created++
		}
	}

	log.Info("reconciliation complete",
		logging.F("created", result.Created),
		logging.F("failed", result.Failed))

	return result, nil
}

// reconcileOne closes overlapping actives and upserts the target interval
// for one matched mention.
func (r *Reconciler) reconcileOne(ctx context.Context, mention mentions.ExtractedMention, asOf time.Time) (bool, error) {
	politicianID := *mention.MatchedPoliticianID
	groupID := mention.GroupContextID

	actives, err := r.affRepo.ListActive(ctx, politicianID, groupID)
	if err != nil {
		return false, err
	}

	// Close every active interval that began before the new one. An active
	// row starting exactly at asOf is the upsert target itself, not an
	// overlap to close.
	for _, active := range actives {
		if active.StartDate.Before(asOf) {
			if err := r.affRepo.Close(ctx, active.ID, asOf.AddDate(0, 0, -1)); err != nil {
				return false, err
			}
		}
	}

	return r.affRepo.Upsert(ctx, UpsertInput{
		PoliticianID: politicianID,
		GroupID:      groupID,
		StartDate:    asOf,
		Role:         mention.ExtractedRole,
	})
}
