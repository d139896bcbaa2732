package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Probe reports whether a backing service is reachable.
type Probe func(ctx context.Context) error

type probe struct {
	name    string
	check   Probe
	timeout time.Duration
}

// Monitor periodically probes the registered backends and caches the result
// for the health endpoint.
type Monitor struct {
	probes []probe

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		logger:   logger,
		status:   Status{Components: map[string]bool{}},
	}
}

// Register adds a named probe. Register before Start.
func (m *Monitor) Register(name string, check Probe, timeout time.Duration) {
	if check == nil {
		return
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	m.probes = append(m.probes, probe{name: name, check: check, timeout: timeout})
}

// Start runs an immediate check and schedules the following ones.
func (m *Monitor) Start() error {
	m.Refresh()

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", m.interval), m.Refresh); err != nil {
		return err
	}
	c.Start()
	m.cron = c
	return nil
}

// Stop waits for a running check to finish.
func (m *Monitor) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	components := make(map[string]bool, len(m.status.Components))
	for k, v := range m.status.Components {
		components[k] = v
	}
	return Status{Components: components, LastCheck: m.status.LastCheck}
}

// Refresh probes every backend once.
func (m *Monitor) Refresh() {
	components := make(map[string]bool, len(m.probes))
	for _, p := range m.probes {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.check(ctx)
		cancel()
		if err != nil {
			m.logger.Warn("dependency check failed", zap.String("component", p.name), zap.Error(err))
		}
		components[p.name] = err == nil
	}

	m.mu.Lock()
	m.status = Status{Components: components, LastCheck: time.Now()}
	m.mu.Unlock()
}

func PostgresProbe(pool *pgxpool.Pool) Probe {
	return func(ctx context.Context) error {
		if pool == nil {
			return fmt.Errorf("postgres pool not configured")
		}
		return pool.Ping(ctx)
	}
}

func RedisProbe(client redislib.UniversalClient) Probe {
	return func(ctx context.Context) error {
		if client == nil {
			return fmt.Errorf("redis client not configured")
		}
		return client.Ping(ctx).Err()
	}
}

// Counter is satisfied by the session repositories; a successful count
// proves the store is readable.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

func CountProbe(c Counter) Probe {
	return func(ctx context.Context) error {
		_, err := c.Count(ctx)
		return err
	}
}
