// Package service provides the core business service that coordinates
// the remote store, the durable local mirror and the offline mutation
// queue.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/podium/internal/adapters/cache"
	"github.com/okian/podium/internal/adapters/outbox"
	"github.com/okian/podium/internal/adapters/remote"
	"github.com/okian/podium/internal/auth"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// ChangeEvent tells a subscriber that mirrored data of a kind changed
// and should be re-read.
type ChangeEvent struct {
	Kind cache.Kind
}

// Service implements the prediction, race lifecycle and sync
// operations on top of the injected adapters.
type Service struct {
	mu sync.RWMutex

	// Core components
	remote   remote.Store
	mirror   cache.Store
	pendingQ outbox.Queue
	scorer   scoring.Scorer
	tokens   *auth.Service

	// drainMu makes queue drains single-flight; concurrent triggers
	// coalesce instead of replaying twice.
	drainMu sync.Mutex

	// Configuration
	roster        []string
	admins        map[string]bool
	syncInterval  time.Duration
	pingInterval  time.Duration
	notifications <-chan remote.Notification
	now           func() time.Time

	// State
	started bool
	online  bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	subs    []chan ChangeEvent

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithScorer overrides the scoring scheme.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithRoster sets the valid driver codes for predictions and results.
func WithRoster(roster []string) Option {
	return func(s *Service) {
		if len(roster) > 0 {
			s.roster = roster
		}
	}
}

// WithAdmins marks usernames whose session tokens carry the admin flag.
func WithAdmins(usernames []string) Option {
	return func(s *Service) {
		s.admins = make(map[string]bool, len(usernames))
		for _, u := range usernames {
			s.admins[u] = true
		}
	}
}

// WithTokenService sets the session token issuer used by Login.
func WithTokenService(t *auth.Service) Option {
	return func(s *Service) {
		if t != nil {
			s.tokens = t
		}
	}
}

// WithSyncInterval sets the periodic drain interval.
func WithSyncInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.syncInterval = d
		}
	}
}

// WithPingInterval sets the connectivity probe interval.
func WithPingInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

// WithNotifications wires the remote change stream into the service;
// each notification triggers a refresh of the affected kind.
func WithNotifications(ch <-chan remote.Notification) Option {
	return func(s *Service) {
		s.notifications = ch
	}
}

// WithClock overrides the wall clock. Tests use this to move races
// through their lifecycle without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over the given adapters.
func New(rs remote.Store, mirror cache.Store, pending outbox.Queue, opts ...Option) *Service {
	s := &Service{
		remote:       rs,
		mirror:       mirror,
		pendingQ:     pending,
		scorer:       scoring.NewPodiumScorer(),
		syncInterval: 30 * time.Second,
		pingInterval: 10 * time.Second,
		now:          time.Now,
		stopCh:       make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start probes the remote store, primes the mirror when reachable and
// launches the background ping, sync and notification loops.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting podium service...")

	online := s.remote.Ping(ctx) == nil
	s.online = online
	metrics.UpdateConnectivity(online)

	if online {
		if err := s.refreshAll(ctx); err != nil {
			s.logger.Warn(ctx, "initial refresh failed", logger.Error(err))
		}
	} else {
		s.logger.Warn(ctx, "remote store unreachable, starting offline")
	}

	s.wg.Add(2)
	go s.pingLoop(ctx)
	go s.syncLoop(ctx)
	if s.notifications != nil {
		s.wg.Add(1)
		go s.notificationLoop(ctx)
	}

	s.started = true
	s.updateOutboxDepth(ctx)
	s.logger.Info(ctx, "podium service started",
		logger.Any("online", online),
		logger.Int("rosterSize", len(s.roster)),
	)

	// Anything queued from a previous run replays as soon as possible.
	if online {
		go func() { _ = s.Sync(ctx) }()
	}

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()

	if !s.started {
		s.mu.Unlock()
		return
	}

	s.logger.Info(context.Background(), "stopping podium service...")

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.mu.Unlock()

	// Subscriber channels close only after every loop has exited.
	s.wg.Wait()

	s.mu.Lock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.mu.Unlock()

	s.logger.Info(context.Background(), "podium service stopped")
}

// Online reports the last observed connectivity state.
func (s *Service) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// Subscribe returns a channel of change events for mirrored data. The
// channel closes on Stop. Slow subscribers drop events rather than
// blocking the sync loops.
func (s *Service) Subscribe() <-chan ChangeEvent {
	ch := make(chan ChangeEvent, 16)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Service) notifySubs(kind cache.Kind) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- ChangeEvent{Kind: kind}:
		default:
		}
	}
}

// setOnline records a connectivity transition; coming back online
// reports true so callers can trigger a drain.
func (s *Service) setOnline(online bool) (cameOnline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cameOnline = online && !s.online
	if s.online != online {
		s.online = online
		metrics.UpdateConnectivity(online)
	}
	return cameOnline
}

func (s *Service) pingLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			err := s.remote.Ping(ctx)
			metrics.RecordRemoteLatency(float64(time.Since(start).Milliseconds()))
			if err != nil {
				s.setOnline(false)
				continue
			}
			if s.setOnline(true) {
				s.logger.Info(ctx, "remote store reachable again, draining queue")
				if err := s.Sync(ctx); err != nil {
					s.logger.Warn(ctx, "drain after reconnect failed", logger.Error(err))
				}
			}
		}
	}
}

func (s *Service) syncLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.Online() {
				continue
			}
			if err := s.Sync(ctx); err != nil {
				s.logger.Warn(ctx, "periodic sync failed", logger.Error(err))
			}
		}
	}
}

func (s *Service) notificationLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case n, ok := <-s.notifications:
			if !ok {
				return
			}
			metrics.RecordNotification(n.Channel)
			s.logger.Debug(ctx, "change notification",
				logger.String("channel", n.Channel),
				logger.String("payload", n.Payload),
			)
			switch n.Channel {
			case remote.ChannelRaces:
				if err := s.refreshRaces(ctx); err != nil {
					s.logger.Warn(ctx, "race refresh failed", logger.Error(err))
				}
			case remote.ChannelPredictions:
				if err := s.refreshPredictions(ctx); err != nil {
					s.logger.Warn(ctx, "prediction refresh failed", logger.Error(err))
				}
			}
		}
	}
}

func (s *Service) updateOutboxDepth(ctx context.Context) {
	n, err := s.pendingQ.Len(ctx)
	if err != nil {
		return
	}
	metrics.UpdateOutboxDepth(n)
}
