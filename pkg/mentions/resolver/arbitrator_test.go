package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/seihyo/seihyo-cli/pkg/politicians"
)

// MockOracle implements Oracle for testing.
type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) Arbitrate(ctx context.Context, mention MentionContext, candidates []politicians.Politician) (Arbitration, error) {
	args := m.Called(ctx, mention, candidates)
	return args.Get(0).(Arbitration), args.Error(1)
}

func (m *MockOracle) IsAvailable(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func strPtr(s string) *string { return &s }

func TestArbitrateZeroCandidates(t *testing.T) {
	arbitrator := NewMatchArbitrator(nil, nil)

	verdict := arbitrator.Arbitrate(context.Background(), MentionContext{Name: "鈴木一郎"}, nil)

	assert.Nil(t, verdict.PoliticianID)
	assert.Equal(t, 0.0, verdict.Confidence)
}

func TestArbitrateSingleCandidatePartyMatch(t *testing.T) {
	arbitrator := NewMatchArbitrator(nil, nil)

	candidates := []politicians.Politician{
		{ID: 10, Name: "山田太郎", PartyName: strPtr("自民党")},
	}

	verdict := arbitrator.Arbitrate(context.Background(), MentionContext{
		Name:      "山田太郎",
		PartyName: "自民党",
	}, candidates)

	assert.NotNil(t, verdict.PoliticianID)
	assert.Equal(t, int64(10), *verdict.PoliticianID)
	assert.Equal(t, 0.95, verdict.Confidence)
}

func TestArbitrateSingleCandidatePartyMismatch(t *testing.T) {
	arbitrator := NewMatchArbitrator(nil, nil)

	candidates := []politicians.Politician{
		{ID: 10, Name: "山田太郎", PartyName: strPtr("立憲民主党")},
	}

	verdict := arbitrator.Arbitrate(context.Background(), MentionContext{
		Name:      "山田太郎",
		PartyName: "自民党",
	}, candidates)

	assert.NotNil(t, verdict.PoliticianID)
	assert.Equal(t, int64(10), *verdict.PoliticianID)
	assert.Equal(t, 0.85, verdict.Confidence)
}

func TestArbitrateSingleCandidateNoPartyHint(t *testing.T) {
	arbitrator := NewMatchArbitrator(nil, nil)

	candidates := []politicians.Politician{
		{ID: 10, Name: "山田太郎", PartyName: strPtr("自民党")},
	}

	// Party agreement requires both sides non-null.
	verdict := arbitrator.Arbitrate(context.Background(), MentionContext{Name: "山田太郎"}, candidates)

	assert.Equal(t, 0.85, verdict.Confidence)
}

func TestArbitrateSingleCandidateFullWidthParty(t *testing.T) {
	arbitrator := NewMatchArbitrator(nil, nil)

	candidates := []politicians.Politician{
		{ID: 10, Name: "山田太郎", PartyName: strPtr("自民党")},
	}

	// Width differences must not defeat party agreement.
	verdict := arbitrator.Arbitrate(context.Background(), MentionContext{
		Name:      "山田太郎",
		PartyName: "自民党 ",
	}, candidates)

	assert.Equal(t, 0.95, verdict.Confidence)
}

func TestArbitrateMultipleCandidatesOracleSelects(t *testing.T) {
	oracle := new(MockOracle)
	arbitrator := NewMatchArbitrator(oracle, nil)

	candidates := []politicians.Politician{
		{ID: 10, Name: "佐藤健"},
		{ID: 11, Name: "佐藤健太"},
	}

	oracle.On("Arbitrate", mock.Anything, mock.Anything, candidates).
		Return(Arbitration{SelectedIndex: 2, Confidence: 0.6}, nil)

	verdict := arbitrator.Arbitrate(context.Background(), MentionContext{Name: "佐藤健"}, candidates)

	assert.NotNil(t, verdict.PoliticianID)
	assert.Equal(t, int64(11), *verdict.PoliticianID)
	assert.Equal(t, 0.6, verdict.Confidence)
	oracle.AssertExpectations(t)
}

func TestArbitrateMultipleCandidatesOracleSaysNoMatch(t *testing.T) {
	oracle := new(MockOracle)
	arbitrator := NewMatchArbitrator(oracle, nil)

	candidates := []politicians.Politician{
		{ID: 10, Name: "佐藤健"},
		{ID: 11, Name: "佐藤健太"},
	}

	oracle.On("Arbitrate", mock.Anything, mock.Anything, candidates).
		Return(Arbitration{SelectedIndex: 0, Confidence: 0.9}, nil)

	verdict := arbitrator.Arbitrate(context.Background(), MentionContext{Name: "佐藤健"}, candidates)

	assert.Nil(t, verdict.PoliticianID)
	assert.Equal(t, 0.0, verdict.Confidence)
}

func TestArbitrateOracleFailureDegradesToNoMatch(t *testing.T) {
	oracle := new(MockOracle)
	arbitrator := NewMatchArbitrator(oracle, nil)

	candidates := []politicians.Politician{
		{ID: 10, Name: "佐藤健"},
		{ID: 11, Name: "佐藤健太"},
	}

	oracle.On("Arbitrate", mock.Anything, mock.Anything, candidates).
		Return(Arbitration{}, &OracleError{Code: OracleErrTimeout, Message: "request timeout"})

	verdict := arbitrator.Arbitrate(context.Background(), MentionContext{Name: "佐藤健"}, candidates)

	assert.Nil(t, verdict.PoliticianID)
	assert.Equal(t, 0.0, verdict.Confidence)
}

func TestArbitrateMalformedOracleResponseDegradesToNoMatch(t *testing.T) {
	oracle := new(MockOracle)
	arbitrator := NewMatchArbitrator(oracle, nil)

	candidates := []politicians.Politician{
		{ID: 10, Name: "佐藤健"},
		{ID: 11, Name: "佐藤健太"},
	}

	oracle.On("Arbitrate", mock.Anything, mock.Anything, candidates).
		Return(Arbitration{}, &OracleError{Code: OracleErrParseFailure, Message: "not parseable"})

	verdict := arbitrator.Arbitrate(context.Background(), MentionContext{Name: "佐藤健"}, candidates)

	assert.Nil(t, verdict.PoliticianID)
	assert.Equal(t, 0.0, verdict.Confidence)
}
