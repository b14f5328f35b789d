package mentions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestClassificationInputValidate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		input   ClassificationInput
		wantErr bool
	}{
		{
			name:  "matched at threshold",
			input: ClassificationInput{PoliticianID: int64Ptr(10), Confidence: 0.7, Status: StatusMatched, MatchedAt: &now},
		},
		{
			name:  "matched high confidence",
			input: ClassificationInput{PoliticianID: int64Ptr(10), Confidence: 0.95, Status: StatusMatched, MatchedAt: &now},
		},
		{
			name:    "matched without politician",
			input:   ClassificationInput{Confidence: 0.95, Status: StatusMatched},
			wantErr: true,
		},
		{
			name:    "matched below threshold",
			input:   ClassificationInput{PoliticianID: int64Ptr(10), Confidence: 0.69, Status: StatusMatched},
			wantErr: true,
		},
		{
			name:  "needs review in band",
			input: ClassificationInput{PoliticianID: int64Ptr(10), Confidence: 0.6, Status: StatusNeedsReview, MatchedAt: &now},
		},
		{
			name:  "needs review at lower bound",
			input: ClassificationInput{PoliticianID: int64Ptr(10), Confidence: 0.5, Status: StatusNeedsReview, MatchedAt: &now},
		},
		{
			name:    "needs review at upper bound",
			input:   ClassificationInput{PoliticianID: int64Ptr(10), Confidence: 0.7, Status: StatusNeedsReview},
			wantErr: true,
		},
		{
			name:    "needs review without politician",
			input:   ClassificationInput{Confidence: 0.6, Status: StatusNeedsReview},
			wantErr: true,
		},
		{
			name:  "no match",
			input: ClassificationInput{Status: StatusNoMatch},
		},
		{
			name:    "no match with politician",
			input:   ClassificationInput{PoliticianID: int64Ptr(10), Status: StatusNoMatch},
			wantErr: true,
		},
		{
			name:    "no match with nonzero confidence",
			input:   ClassificationInput{Confidence: 0.3, Status: StatusNoMatch},
			wantErr: true,
		},
		{
			name:    "pending is not a classification outcome",
			input:   ClassificationInput{Status: StatusPending},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMentionAccessors(t *testing.T) {
	m := ExtractedMention{ExtractedName: "山田太郎"}
	assert.Equal(t, "", m.PartyName())
	assert.Equal(t, "", m.Role())

	party := "自民党"
	role := "団長"
	m.ExtractedPartyName = &party
	m.ExtractedRole = &role
	assert.Equal(t, "自民党", m.PartyName())
	assert.Equal(t, "団長", m.Role())
}
