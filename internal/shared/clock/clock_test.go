package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_NowUsesLocation(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	now := NewSystem(loc).Now()
	assert.Equal(t, loc, now.Location())
}

func TestSystem_NilLocationDefaultsToUTC(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.UTC, NewSystem(nil).Now().Location())
}

func TestFixed(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	c := Fixed(at)

	assert.True(t, c.Now().Equal(at))
	assert.True(t, c.Now().Equal(at))
}
