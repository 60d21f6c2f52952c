package utils

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ClockLayout is the wall clock format of trade timestamps
const ClockLayout = "15:04:05"

var displayLoc = time.Local

// SetDisplayLocation selects the zone trade timestamps are shown in.
// Unknown names keep the current location.
func SetDisplayLocation(name string) {
	if name == "" {
		return
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		// In production docker, ensure tzdata is installed
		logrus.WithField("module", "utils").Warnf("[WARN] unknown timezone %q, keeping %s", name, displayLoc)
		return
	}
	displayLoc = loc
}

// GetLocation returns the display *time.Location
func GetLocation() *time.Location {
	return displayLoc
}

// FormatClock renders t as a local wall clock string
func FormatClock(t time.Time) string {
	return t.In(displayLoc).Format(ClockLayout)
}
