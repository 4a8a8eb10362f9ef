package simrt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_StartsAtZero(t *testing.T) {
	c := newClock()
	assert.Equal(t, Instant{}, c.Now())
}

func TestClock_AdvanceToMovesForward(t *testing.T) {
	c := newClock()
	ok := c.advanceTo(Instant{elapsed: 5 * time.Second})
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, c.Now().elapsed)
}

func TestClock_AdvanceToNeverGoesBackward(t *testing.T) {
	c := newClock()
	c.advanceTo(Instant{elapsed: 10 * time.Second})
	ok := c.advanceTo(Instant{elapsed: 3 * time.Second})
	assert.False(t, ok)
	assert.Equal(t, 10*time.Second, c.Now().elapsed)
}

func TestClock_AdvanceToSameInstantIsNoop(t *testing.T) {
	c := newClock()
	c.advanceTo(Instant{elapsed: 10 * time.Second})
	ok := c.advanceTo(Instant{elapsed: 10 * time.Second})
	assert.False(t, ok)
}

func TestInstant_AddSubBeforeAfter(t *testing.T) {
	i := Instant{elapsed: time.Second}
	j := i.Add(2 * time.Second)
	assert.Equal(t, 3*time.Second, j.elapsed)
	assert.Equal(t, 2*time.Second, j.Sub(i))
	assert.True(t, i.Before(j))
	assert.True(t, j.After(i))
	assert.False(t, j.Before(i))
}

func TestInstant_String(t *testing.T) {
	i := Instant{elapsed: 3 * time.Second}
	assert.Equal(t, "T+3s", i.String())
}
