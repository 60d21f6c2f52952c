package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"pocketdesk/internal/domain"
)

var log = logrus.WithField("module", "guard")

// LossGuard is the safety net that disarms the bot once the profit made
// since arming falls to the configured loss limit
type LossGuard struct {
	notifier domain.Notifier
}

// NewLossGuard creates a new LossGuard. notifier may be nil.
func NewLossGuard(notifier domain.Notifier) *LossGuard {
	return &LossGuard{notifier: notifier}
}

// Enforce disarms the bot in snap when the loss limit is hit and returns the
// reason. It must run on an unpublished snapshot.
func (g *LossGuard) Enforce(snap *domain.Snapshot) (string, bool) {
	if !snap.Settings.BotActive || snap.Settings.LossLimit <= 0 {
		return "", false
	}

	sinceArmed := snap.ProfitSinceArmed()
	if sinceArmed > -snap.Settings.LossLimit {
		return "", false
	}

	snap.Settings.BotActive = false
	reason := fmt.Sprintf("Loss limit reached: %.2f since armed (limit $%.2f)", sinceArmed, snap.Settings.LossLimit)
	log.Warnf("[WARN] Bot disarmed. %s", reason)
	return reason, true
}

// Report tells the operator the bot was stopped
func (g *LossGuard) Report(reason string) {
	if g.notifier == nil {
		return
	}
	if err := g.notifier.NotifyBotStopped(reason); err != nil {
		log.Warnf("[WARN] Failed to send notification: %v", err)
	}
}
