package repository

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublicIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^USER_\d{5}$`)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := newPublicID()
		require.NoError(t, err)
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	// 200 draws from a 100k space virtually never collapse to a handful
	// of values; a tiny seen-set would mean the randomness is broken.
	assert.Greater(t, len(seen), 150)
}

func TestStatAllowed(t *testing.T) {
	for _, stat := range []string{"runs", "wickets", "sixes", "hundreds", "average", "strike_rate"} {
		assert.True(t, StatAllowed(stat), stat)
	}
	// Case-insensitive on purpose; the route parameter comes from URLs.
	assert.True(t, StatAllowed("RUNS"))

	for _, stat := range []string{"", "allrounders", "name", "id; DROP TABLE players", "created_at"} {
		assert.False(t, StatAllowed(stat), stat)
	}
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry '9876543210' for key 'uq_user_phone'")))
	assert.False(t, isDuplicateKey(errors.New("Error 1213 (40001): Deadlock found")))
	assert.False(t, isDuplicateKey(nil))
}

func TestRoundAverage(t *testing.T) {
	assert.Equal(t, 53.13, roundAverage(53.1257))
	assert.Equal(t, 53.13, roundAverage(53.125))
	assert.Equal(t, 0.0, roundAverage(0))
	assert.Equal(t, 100.0, roundAverage(99.999))
}

func TestStatChangesEmpty(t *testing.T) {
	assert.True(t, StatChanges{}.Empty())

	runs := int64(100)
	assert.False(t, StatChanges{Runs: &runs}.Empty())

	url := "/uploads/x.jpg"
	assert.False(t, StatChanges{PhotoURL: &url}.Empty())
}
