package tweet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateText_WithinBound(t *testing.T) {
	assert.NoError(t, ValidateText(""))
	assert.NoError(t, ValidateText("hello"))
	assert.NoError(t, ValidateText(strings.Repeat("a", MaxTextLen)))
}

func TestValidateText_TooLong(t *testing.T) {
	err := ValidateText(strings.Repeat("a", MaxTextLen+1))
	assert.True(t, IsTooLong(err))
}

func TestValidateText_BoundIsBytes(t *testing.T) {
	// 47 three-byte runes is 141 bytes, over the limit even though the
	// rune count is well under it.
	text := strings.Repeat("€", 47)
	assert.Len(t, text, 141)
	assert.True(t, IsTooLong(ValidateText(text)))

	assert.NoError(t, ValidateText(strings.Repeat("€", 46)))
}
