package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidChannelName(t *testing.T) {
	t.Parallel()

	valid := []string{"general", "team-1", "A", "Dev-Ops-2024", strings.Repeat("a", 50)}
	for _, name := range valid {
		assert.True(t, ValidChannelName(name), "name %q", name)
	}

	invalid := []string{"", "has space", "snake_case", "a/b", "émoji", strings.Repeat("a", 51)}
	for _, name := range invalid {
		assert.False(t, ValidChannelName(name), "name %q", name)
	}
}

func TestValidChannelPassword(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidChannelPassword("abc123"))
	assert.True(t, ValidChannelPassword("A1"))

	assert.False(t, ValidChannelPassword(""))
	assert.False(t, ValidChannelPassword("has space"))
	assert.False(t, ValidChannelPassword("p@ss"))
}

func TestValidateChannel(t *testing.T) {
	t.Parallel()

	t.Run("valid input", func(t *testing.T) {
		errs := ValidateChannel("general", "public")
		assert.False(t, errs.HasErrors())
	})

	t.Run("empty type is allowed and defaults later", func(t *testing.T) {
		errs := ValidateChannel("general", "")
		assert.False(t, errs.HasErrors())
	})

	t.Run("missing name", func(t *testing.T) {
		errs := ValidateChannel("  ", "public")
		assert.Contains(t, errs, "name")
	})

	t.Run("bad characters", func(t *testing.T) {
		errs := ValidateChannel("no spaces allowed", "public")
		assert.Contains(t, errs, "name")
	})

	t.Run("unknown type", func(t *testing.T) {
		errs := ValidateChannel("general", "direct")
		assert.Contains(t, errs, "type")
	})
}
