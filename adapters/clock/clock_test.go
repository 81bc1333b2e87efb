package clock_test

import (
	"testing"
	"time"

	"github.com/artpar/apiquery/adapters/clock"
	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestReal_Now(t *testing.T) {
	before := time.Now()
	got := clock.Real{}.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestFake(t *testing.T) {
	c := clock.NewFake(epoch)
	assert.Equal(t, epoch, c.Now())
	assert.Equal(t, epoch, c.Now())

	c.Advance(time.Hour)
	assert.Equal(t, epoch.Add(time.Hour), c.Now())
}

func TestTicking(t *testing.T) {
	c := clock.NewTicking(epoch, 250*time.Millisecond)

	start := c.Now()
	assert.Equal(t, epoch, start)
	assert.Equal(t, 250*time.Millisecond, clock.Since(c, start))
	assert.Equal(t, epoch.Add(500*time.Millisecond), c.Now())
}
