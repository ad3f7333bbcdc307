package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisPinger adapts a go-redis client, whose Ping returns a command.
type RedisPinger func(ctx context.Context) error

func (f RedisPinger) Ping(ctx context.Context) error { return f(ctx) }

type Monitor struct {
	store       Pinger
	storeDriver string
	redis       Pinger

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

// New builds a monitor for the task store and, when redis is non-nil, the Redis server.
func New(store Pinger, storeDriver string, redis Pinger, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		store:       store,
		storeDriver: storeDriver,
		redis:       redis,
		interval:    interval,
		cron:        cron.New(cron.WithSeconds()),
		logger:      logger,
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, _ = m.cron.AddFunc(schedule, m.Refresh)
	return m
}

// Start performs a first check and launches the scheduler.
func (m *Monitor) Start() {
	m.Refresh()
	m.cron.Start()
}

// Stop halts the scheduler, waiting for a running check or ctx, whichever ends first.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

// IsOnline reports whether the task store answered the last check.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Store.Online
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh runs every check once and caches the result.
func (m *Monitor) Refresh() {
	status := Status{
		Store: Service{
			Driver: m.storeDriver,
			Online: m.check("store", m.store, 3*time.Second),
		},
		LastCheck: time.Now().UTC(),
	}
	if m.redis != nil {
		status.Redis = &Service{Online: m.check("redis", m.redis, 2*time.Second)}
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Store.Online != status.Store.Online {
		m.logger.Info("store availability changed", zap.Bool("online", status.Store.Online))
	}
}

func (m *Monitor) check(name string, target Pinger, timeout time.Duration) bool {
	if target == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := target.Ping(ctx); err != nil {
		m.logger.Warn("health check failed", zap.String("service", name), zap.Error(err))
		return false
	}
	return true
}
