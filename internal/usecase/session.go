package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pocketdesk/internal/domain"
	"pocketdesk/internal/metrics"
	"pocketdesk/internal/service"
	"pocketdesk/internal/utils"
)

var log = logrus.WithField("module", "session")

const persistTimeout = 10 * time.Second

// SessionDeps are the collaborators of a session. Submitter is nil when trades
// are only kept locally; Notifier and Guard may be nil.
type SessionDeps struct {
	Store     domain.SettingsStore
	Submitter domain.TradeSubmitter
	Notifier  domain.Notifier
	Guard     *service.LossGuard
	Now       func() time.Time
}

// Session owns the operator's view. The current snapshot is published
// atomically; readers never lock. Writers are the refresh cycle and operator
// actions, serialized by mu.
type Session struct {
	current atomic.Pointer[domain.Snapshot]
	loaded  atomic.Bool

	mu      sync.Mutex
	tradeMu sync.Mutex // held for a whole OpenTrade, including submission

	store     domain.SettingsStore
	submitter domain.TradeSubmitter
	notifier  domain.Notifier
	guard     *service.LossGuard
	validate  *validator.Validate
	now       func() time.Time

	lastTradeAt time.Time
}

// NewSession creates a session starting from initial
func NewSession(initial *domain.Snapshot, deps SessionDeps) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Session{
		store:     deps.Store,
		submitter: deps.Submitter,
		notifier:  deps.Notifier,
		guard:     deps.Guard,
		validate:  validator.New(),
		now:       deps.Now,
	}
	s.current.Store(initial.Clone())
	return s
}

// Snapshot returns the published snapshot. Callers must not modify it.
func (s *Session) Snapshot() *domain.Snapshot {
	return s.current.Load()
}

// Loading reports whether no refresh cycle has been applied yet
func (s *Session) Loading() bool {
	return !s.loaded.Load()
}

// Settings returns the current settings bundle
func (s *Session) Settings() domain.Settings {
	return s.Snapshot().Settings
}

// Account derives the account view from the published snapshot
func (s *Session) Account() domain.AccountState {
	return accountState(s.Snapshot())
}

func accountState(snap *domain.Snapshot) domain.AccountState {
	return domain.AccountState{
		Balance:        snap.Balance,
		TotalProfit:    metrics.TotalProfit(snap.Trades),
		BotActive:      snap.Settings.BotActive,
		IsConnected:    snap.Settings.IsConnected,
		ActivePosition: snap.ActivePosition,
	}
}

// update applies fn to a clone of the current snapshot and publishes it.
// Nothing is published when fn fails.
func (s *Session) update(fn func(next *domain.Snapshot) error) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Load().Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.current.Store(next)
	return next, nil
}

// ApplyCycle applies the patches of one refresh cycle in order and publishes
// the result as the next cycle
func (s *Session) ApplyCycle(patches []domain.Patch) *domain.Snapshot {
	var (
		stopReason string
		stopped    bool
	)
	next, _ := s.update(func(next *domain.Snapshot) error {
		for _, patch := range patches {
			if patch != nil {
				patch(next)
			}
		}
		next.Cycle++
		next.UpdatedAt = s.now()
		if s.guard != nil {
			stopReason, stopped = s.guard.Enforce(next)
		}
		return nil
	})
	s.loaded.Store(true)

	if stopped {
		s.guard.Report(stopReason)
		s.persistDisarm(next.Settings)
	}
	return next
}

// persistDisarm forwards a loss guard stop to the settings store so the
// provider's bot flag follows the session. Bundles never applied by the
// operator have no account to write to.
func (s *Session) persistDisarm(settings domain.Settings) {
	if s.store == nil || settings.PocketOptionID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.store.SaveSettings(ctx, settings); err != nil {
		log.Errorf("[ERROR] Failed to persist bot stop for %s: %v", settings.PocketOptionID, err)
		if s.notifier != nil {
			if nerr := s.notifier.NotifySettingsFailed(settings, err); nerr != nil {
				log.Warnf("[WARN] Failed to send notification: %v", nerr)
			}
		}
	}
}

// ToggleBot arms or disarms the bot and returns the new settings
func (s *Session) ToggleBot() domain.Settings {
	next, _ := s.update(func(next *domain.Snapshot) error {
		next.Settings.BotActive = !next.Settings.BotActive
		if next.Settings.BotActive {
			next.Arm()
		}
		return nil
	})
	log.Infof("[OK] Bot active: %t", next.Settings.BotActive)
	return next.Settings
}

// ToggleConnection flips the connection flag and returns the new settings
func (s *Session) ToggleConnection() domain.Settings {
	next, _ := s.update(func(next *domain.Snapshot) error {
		next.Settings.IsConnected = !next.Settings.IsConnected
		return nil
	})
	log.Infof("[OK] Connected: %t", next.Settings.IsConnected)
	return next.Settings
}

// ApplySettings validates and persists a settings bundle. A failed write is
// returned as *domain.PersistenceError, leaves the session unchanged and is
// never retried.
func (s *Session) ApplySettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	if err := s.validate.Struct(settings); err != nil {
		return domain.Settings{}, fmt.Errorf("%w: %v", domain.ErrInvalidSettings, err)
	}

	if err := s.store.SaveSettings(ctx, settings); err != nil {
		log.Errorf("[ERROR] Failed to save settings for %s: %v", settings.PocketOptionID, err)
		if s.notifier != nil {
			if nerr := s.notifier.NotifySettingsFailed(settings, err); nerr != nil {
				log.Warnf("[WARN] Failed to send notification: %v", nerr)
			}
		}
		return domain.Settings{}, &domain.PersistenceError{Err: err}
	}

	next, _ := s.update(func(next *domain.Snapshot) error {
		if settings.BotActive && !next.Settings.BotActive {
			next.Arm()
		}
		next.Settings = settings
		return nil
	})
	log.Infof("[OK] Settings saved for %s", settings.PocketOptionID)
	return next.Settings, nil
}

// OpenTrade opens a trade from the signal of pairID and makes the pair the
// active position
func (s *Session) OpenTrade(ctx context.Context, pairID string) (domain.Trade, error) {
	s.tradeMu.Lock()
	defer s.tradeMu.Unlock()

	snap := s.Snapshot()
	obs, ok := domain.FindObservation(snap.Observations, pairID)
	if !ok {
		return domain.Trade{}, domain.ErrObservationNotFound
	}
	if !obs.Signal.Actionable() {
		return domain.Trade{}, domain.ErrHoldSignal
	}
	if !snap.Settings.BotActive {
		return domain.Trade{}, domain.ErrBotInactive
	}

	now := s.now()
	interval := time.Duration(snap.Settings.TradeInterval) * time.Minute
	if !s.lastTradeAt.IsZero() && now.Sub(s.lastTradeAt) < interval {
		return domain.Trade{}, domain.ErrTradeIntervalNotElapsed
	}

	trade := domain.Trade{
		ID:         uuid.New().String(),
		Pair:       obs.Name,
		Type:       obs.Signal,
		OpenPrice:  obs.Price,
		Timestamp:  utils.FormatClock(now),
		Expiration: obs.Expiration,
		OpenedAt:   now,
	}

	if s.submitter != nil {
		recorded, err := s.submitter.SubmitTrade(ctx, trade)
		if err != nil {
			return domain.Trade{}, fmt.Errorf("failed to submit trade: %w", err)
		}
		trade = recorded
	}

	_, _ = s.update(func(next *domain.Snapshot) error {
		next.AppendTrade(trade)
		next.SetActivePosition(obs, trade.ID)
		return nil
	})
	s.lastTradeAt = now

	log.Infof("[OK] Opened %s %s @ %.5f (%s)", trade.Type, trade.Pair, trade.OpenPrice, trade.Expiration)
	if s.notifier != nil {
		if err := s.notifier.NotifyTradeOpened(trade); err != nil {
			log.Warnf("[WARN] Failed to send notification: %v", err)
		}
	}
	return trade, nil
}

// ClearPosition drops the active position without touching trades
func (s *Session) ClearPosition() {
	_, _ = s.update(func(next *domain.Snapshot) error {
		next.ClearActivePosition()
		return nil
	})
}
