package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatClock_UsesDisplayLocation(t *testing.T) {
	prev := displayLoc
	t.Cleanup(func() { displayLoc = prev })

	SetDisplayLocation("UTC")
	ts := time.Date(2024, 3, 1, 14, 32, 15, 0, time.FixedZone("X", 2*3600))
	assert.Equal(t, "12:32:15", FormatClock(ts))

	SetDisplayLocation("No/Such_Zone")
	assert.Equal(t, time.UTC, GetLocation())
}
