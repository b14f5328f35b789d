package resolver

import (
	"context"

	"github.com/seihyo/seihyo-cli/pkg/logging"
	"github.com/seihyo/seihyo-cli/pkg/politicians"
)

// Verdict is the arbitrator's output for one mention: the chosen politician
// (nil for no match) and a calibrated confidence.
type Verdict struct {
	PoliticianID *int64
	Confidence   float64
}

// Confidence values for the deterministic single-candidate shortcuts. A
// unique exact-name hit is almost always correct; party agreement raises
// confidence further.
const (
	singleCandidatePartyMatch = 0.95
	singleCandidateConfidence = 0.85
)

// MatchArbitrator decides which candidate a mention refers to. Zero or one
// candidates are decided deterministically; two or more defer to the oracle.
// Arbitration never raises for oracle problems; it fails toward "no match"
// so batches keep flowing.
type MatchArbitrator struct {
	oracle Oracle
	log    logging.Logger
}

// NewMatchArbitrator creates a new arbitrator.
func NewMatchArbitrator(oracle Oracle, log logging.Logger) *MatchArbitrator {
	if log == nil {
		log = logging.Nop()
	}
	return &MatchArbitrator{
		oracle: oracle,
		log:    log,
	}
}

// Arbitrate resolves a mention against its candidate list.
func (a *MatchArbitrator) Arbitrate(ctx context.Context, mention MentionContext, candidates []politicians.Politician) Verdict {
	switch len(candidates) {
	case 0:
		return Verdict{}
	case 1:
		return a.decideSingle(mention, candidates[0])
	default:
		return a.deferToOracle(ctx, mention, candidates)
	}
}

func (a *MatchArbitrator) decideSingle(mention MentionContext, candidate politicians.Politician) Verdict {
	id := candidate.ID
	confidence := singleCandidateConfidence
	if mention.PartyName != "" && candidate.PartyName != nil &&
		NormalizeParty(mention.PartyName) == NormalizeParty(*candidate.PartyName) {
		confidence = singleCandidatePartyMatch
	}
	return Verdict{PoliticianID: &id, Confidence: confidence}
}

func (a *MatchArbitrator) deferToOracle(ctx context.Context, mention MentionContext, candidates []politicians.Politician) Verdict {
	arb, err := a.oracle.Arbitrate(ctx, mention, candidates)
	if err != nil {
		a.log.Warn("oracle arbitration failed, treating as no match",
			logging.F("name", mention.Name),
			logging.F("candidates", len(candidates)),
			logging.Err(err))
		return Verdict{}
	}

	if arb.SelectedIndex == 0 {
		return Verdict{}
	}

	id := candidates[arb.SelectedIndex-1].ID
	return Verdict{PoliticianID: &id, Confidence: arb.Confidence}
}
