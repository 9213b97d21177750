package fbr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDescription(t *testing.T) {
	assert.Equal(t, "Steel rods 12mm", SanitizeDescription("Steel rods   12mm"))
	assert.Equal(t, "Cable ”armoured”", SanitizeDescription(`Cable "armoured"`))
	assert.Equal(t, "CUsers", SanitizeDescription(`C\Users`))
	assert.Equal(t, "a b c", SanitizeDescription("a\tb\n c"))
	assert.Equal(t, "", SanitizeDescription("   "))
}

func TestSanitizeDescriptionIdempotent(t *testing.T) {
	inputs := []string{
		`Cable "armoured" \ 25mm`,
		"  spaced\t\tout  ",
		"already clean",
		"",
		`\\\"`,
	}
	for _, in := range inputs {
		once := SanitizeDescription(in)
		assert.Equal(t, once, SanitizeDescription(once), "input %q", in)
	}
}
