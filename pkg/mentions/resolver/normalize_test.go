package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "山田太郎", "山田太郎"},
		{"ideographic space", "山田　太郎", "山田太郎"},
		{"ascii space", "山田 太郎", "山田太郎"},
		{"leading and trailing", "　山田太郎 ", "山田太郎"},
		{"full-width latin", "ＡＢＣ", "ABC"},
		{"half-width katakana", "ﾔﾏﾀﾞ", "ヤマダ"},
		{"multiple spaces", "山田  太郎", "山田太郎"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeParty(t *testing.T) {
	assert.Equal(t, "自民党", NormalizeParty(" 自民党　"))
	assert.Equal(t, "自民党", NormalizeParty("自民党"))
}
