package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sherrors "github.com/seihyo/seihyo-cli/pkg/errors"
	"github.com/seihyo/seihyo-cli/pkg/mentions"
	"github.com/seihyo/seihyo-cli/pkg/politicians"
)

type MockMentionRepo struct {
	mock.Mock
}

func (m *MockMentionRepo) ListPending(ctx context.Context, groupID *int64) ([]mentions.ExtractedMention, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mentions.ExtractedMention), args.Error(1)
}

func (m *MockMentionRepo) ListMatched(ctx context.Context, groupID *int64) ([]mentions.ExtractedMention, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mentions.ExtractedMention), args.Error(1)
}

func (m *MockMentionRepo) UpdateClassification(ctx context.Context, id int64, in mentions.ClassificationInput) error {
	args := m.Called(ctx, id, in)
	return args.Error(0)
}

func (m *MockMentionRepo) StatusCounts(ctx context.Context, groupID *int64) (mentions.SummaryCounts, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(mentions.SummaryCounts), args.Error(1)
}

func int64Ptr(v int64) *int64 { return &v }

func newTestClassifier(registry politicians.Registry, oracle Oracle, repo mentions.Repository) *Classifier {
	cfg := DefaultConfig()
	c := NewClassifier(
		NewCandidateFinder(registry, cfg),
		NewMatchArbitrator(oracle, nil),
		repo,
		cfg,
		nil,
		nil,
	)
	c.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func pendingMention(id int64, name string, party *string) mentions.ExtractedMention {
	return mentions.ExtractedMention{
		ID:                 id,
		GroupContextID:     1,
		ExtractedName:      name,
		ExtractedPartyName: party,
		MatchingStatus:     mentions.StatusPending,
	}
}

func TestProcessPendingSingleCandidatePartyMatch(t *testing.T) {
	registry := new(MockRegistry)
	repo := new(MockMentionRepo)

	registry.On("SearchByName", mock.Anything, "山田太郎").
		Return([]politicians.Politician{{ID: 10, Name: "山田太郎", PartyName: strPtr("自民党")}}, nil)

	repo.On("ListPending", mock.Anything, (*int64)(nil)).
		Return([]mentions.ExtractedMention{pendingMention(1, "山田太郎", strPtr("自民党"))}, nil)
	repo.On("UpdateClassification", mock.Anything, int64(1),
		mock.MatchedBy(func(in mentions.ClassificationInput) bool {
			return in.Status == mentions.StatusMatched &&
				in.PoliticianID != nil && *in.PoliticianID == 10 &&
				in.Confidence == 0.95 &&
				in.MatchedAt != nil
		})).Return(nil)

	c := newTestClassifier(registry, nil, repo)
	result, err := c.ProcessPending(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 0, result.Errors)
	assert.NotEmpty(t, result.RunID)
	repo.AssertExpectations(t)
}

func TestProcessPendingOracleFailureDegradesToNoMatch(t *testing.T) {
	registry := new(MockRegistry)
	oracle := new(MockOracle)
	repo := new(MockMentionRepo)

	two := []politicians.Politician{
		{ID: 10, Name: "佐藤健", PartyName: strPtr("自民党")},
		{ID: 11, Name: "佐藤健", PartyName: strPtr("立憲民主党")},
	}
	registry.On("SearchByName", mock.Anything, "佐藤健").Return(two, nil)
	oracle.On("Arbitrate", mock.Anything, mock.Anything, two).
		Return(Arbitration{}, &OracleError{Code: OracleErrTimeout, Message: "request timeout"})

	repo.On("ListPending", mock.Anything, (*int64)(nil)).
		Return([]mentions.ExtractedMention{pendingMention(1, "佐藤健", nil)}, nil)
	repo.On("UpdateClassification", mock.Anything, int64(1),
		mentions.ClassificationInput{Status: mentions.StatusNoMatch}).Return(nil)

	c := newTestClassifier(registry, oracle, repo)
	result, err := c.ProcessPending(context.Background(), nil)

	// The oracle outage degrades the mention, it does not count as an error.
	require.NoError(t, err)
	assert.Equal(t, 1, result.NoMatch)
	assert.Equal(t, 0, result.Errors)
	repo.AssertExpectations(t)
}

func TestProcessPendingMixedBatch(t *testing.T) {
	registry := new(MockRegistry)
	oracle := new(MockOracle)
	repo := new(MockMentionRepo)

	// Mention 1: unique exact match without party hint -> matched at 0.85.
	registry.On("SearchByName", mock.Anything, "山田太郎").
		Return([]politicians.Politician{{ID: 10, Name: "山田太郎"}}, nil)

	// Mention 2: two candidates, oracle answers in the review band.
	two := []politicians.Politician{
		{ID: 20, Name: "鈴木一郎", PartyName: strPtr("自民党")},
		{ID: 21, Name: "鈴木一郎", PartyName: strPtr("公明党")},
	}
	registry.On("SearchByName", mock.Anything, "鈴木一郎").Return(two, nil)
	oracle.On("Arbitrate", mock.Anything, mock.Anything, two).
		Return(Arbitration{SelectedIndex: 2, Confidence: 0.6}, nil)

	// Mention 3: nothing in the registry at all.
	registry.On("SearchByName", mock.Anything, "存在しない人").
		Return([]politicians.Politician{}, nil)
	registry.On("SearchByPartialName", mock.Anything, "存在しない人", 5).
		Return([]politicians.Politician{}, nil)

	repo.On("ListPending", mock.Anything, (*int64)(nil)).
		Return([]mentions.ExtractedMention{
			pendingMention(1, "山田太郎", nil),
			pendingMention(2, "鈴木一郎", nil),
			pendingMention(3, "存在しない人", nil),
		}, nil)
	repo.On("UpdateClassification", mock.Anything, int64(1),
		mock.MatchedBy(func(in mentions.ClassificationInput) bool {
			return in.Status == mentions.StatusMatched && in.Confidence == 0.85
		})).Return(nil)
	repo.On("UpdateClassification", mock.Anything, int64(2),
		mock.MatchedBy(func(in mentions.ClassificationInput) bool {
			return in.Status == mentions.StatusNeedsReview &&
				in.PoliticianID != nil && *in.PoliticianID == 21 &&
				in.Confidence == 0.6
		})).Return(nil)
	repo.On("UpdateClassification", mock.Anything, int64(3),
		mentions.ClassificationInput{Status: mentions.StatusNoMatch}).Return(nil)

	c := newTestClassifier(registry, oracle, repo)
	result, err := c.ProcessPending(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.NeedsReview)
	assert.Equal(t, 1, result.NoMatch)
	repo.AssertExpectations(t)
}

func TestProcessPendingPersistenceFailureContinues(t *testing.T) {
	registry := new(MockRegistry)
	repo := new(MockMentionRepo)

	registry.On("SearchByName", mock.Anything, "山田太郎").
		Return([]politicians.Politician{{ID: 10, Name: "山田太郎"}}, nil)
	registry.On("SearchByName", mock.Anything, "田中花子").
		Return([]politicians.Politician{{ID: 11, Name: "田中花子"}}, nil)

	repo.On("ListPending", mock.Anything, (*int64)(nil)).
		Return([]mentions.ExtractedMention{
			pendingMention(1, "山田太郎", nil),
			pendingMention(2, "田中花子", nil),
		}, nil)
	repo.On("UpdateClassification", mock.Anything, int64(1), mock.Anything).
		Return(sherrors.ErrPersistenceFailure)
	repo.On("UpdateClassification", mock.Anything, int64(2), mock.Anything).
		Return(nil)

	c := newTestClassifier(registry, nil, repo)
	result, err := c.ProcessPending(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 1, result.Matched)
	repo.AssertExpectations(t)
}

func TestProcessPendingRegistryUnavailableAborts(t *testing.T) {
	registry := new(MockRegistry)
	repo := new(MockMentionRepo)

	registry.On("SearchByName", mock.Anything, mock.Anything).
		Return(nil, sherrors.ErrRegistryUnavailable)

	repo.On("ListPending", mock.Anything, (*int64)(nil)).
		Return([]mentions.ExtractedMention{
			pendingMention(1, "山田太郎", nil),
			pendingMention(2, "田中花子", nil),
		}, nil)

	c := newTestClassifier(registry, nil, repo)
	result, err := c.ProcessPending(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, sherrors.IsRegistryUnavailable(err))
	assert.Equal(t, 2, result.Total)
	// Nothing was classified before the abort.
	repo.AssertNotCalled(t, "UpdateClassification", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPendingGroupFilterPassedThrough(t *testing.T) {
	repo := new(MockMentionRepo)
	groupID := int64Ptr(42)

	repo.On("ListPending", mock.Anything, groupID).
		Return([]mentions.ExtractedMention{}, nil)

	c := newTestClassifier(new(MockRegistry), nil, repo)
	result, err := c.ProcessPending(context.Background(), groupID)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	repo.AssertExpectations(t)
}

func TestClassifyThresholds(t *testing.T) {
	c := newTestClassifier(new(MockRegistry), nil, new(MockMentionRepo))

	tests := []struct {
		name       string
		verdict    Verdict
		wantStatus mentions.MatchingStatus
		wantID     *int64
	}{
		{"at matched threshold", Verdict{PoliticianID: int64Ptr(1), Confidence: 0.7}, mentions.StatusMatched, int64Ptr(1)},
		{"above matched threshold", Verdict{PoliticianID: int64Ptr(1), Confidence: 0.95}, mentions.StatusMatched, int64Ptr(1)},
		{"just below matched", Verdict{PoliticianID: int64Ptr(1), Confidence: 0.69}, mentions.StatusNeedsReview, int64Ptr(1)},
		{"at review threshold", Verdict{PoliticianID: int64Ptr(1), Confidence: 0.5}, mentions.StatusNeedsReview, int64Ptr(1)},
		{"below review discards id", Verdict{PoliticianID: int64Ptr(1), Confidence: 0.49}, mentions.StatusNoMatch, nil},
		{"nil politician", Verdict{Confidence: 0.99}, mentions.StatusNoMatch, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := c.classify(tt.verdict)

			assert.Equal(t, tt.wantStatus, in.Status)
			if tt.wantID == nil {
				assert.Nil(t, in.PoliticianID)
				assert.Zero(t, in.Confidence)
				assert.Nil(t, in.MatchedAt)
			} else {
				require.NotNil(t, in.PoliticianID)
				assert.Equal(t, *tt.wantID, *in.PoliticianID)
				assert.Equal(t, tt.verdict.Confidence, in.Confidence)
				require.NotNil(t, in.MatchedAt)
			}
			assert.NoError(t, in.Validate())
		})
	}
}
