package resolver

import (
	"context"

	sherrors "github.com/seihyo/seihyo-cli/pkg/errors"
	"github.com/seihyo/seihyo-cli/pkg/politicians"
)

// MentionContext is the mention-side context handed to the oracle when
// arbitrating among multiple candidates.
type MentionContext struct {
	Name      string `json:"name"`
	PartyName string `json:"party_name,omitempty"`
	Role      string `json:"role,omitempty"`
	GroupName string `json:"group_name,omitempty"`
}

// Arbitration is the oracle's verdict. SelectedIndex is 1-based into the
// candidate list; 0 means "none of these".
type Arbitration struct {
	SelectedIndex int     `json:"selected_index"`
	Confidence    float64 `json:"confidence"`
}

// Oracle arbitrates among two or more candidates for one mention.
type Oracle interface {
	// Arbitrate asks which candidate (1-indexed) the mention refers to.
	// Implementations must bound the call with a timeout; a timeout or
	// malformed reply surfaces as an error, never as an indefinite block.
	Arbitrate(ctx context.Context, mention MentionContext, candidates []politicians.Politician) (Arbitration, error)

	// IsAvailable checks if the oracle is currently reachable.
	IsAvailable(ctx context.Context) bool
}

// OracleErrorCode identifies the type of oracle error.
type OracleErrorCode string

const (
	OracleErrTimeout      OracleErrorCode = "timeout"
	OracleErrUnavailable  OracleErrorCode = "unavailable"
	OracleErrParseFailure OracleErrorCode = "parse_failure"
)

// OracleError represents an error from the judgment oracle.
type OracleError struct {
	Code    OracleErrorCode `json:"code"`
	Message string          `json:"message"`
	Details string          `json:"details,omitempty"`
}

func (e *OracleError) Error() string {
	return e.Message
}

// Unwrap maps oracle error codes onto the engine's error taxonomy so that
// callers can classify with errors.Is.
func (e *OracleError) Unwrap() error {
	if e.Code == OracleErrParseFailure {
		return sherrors.ErrMalformedOracleResponse
	}
	return sherrors.ErrOracleFailure
}
