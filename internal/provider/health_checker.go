package provider

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"soundstake.io/soundstake/internal/pkg/logger"
)

// DependencyStatus represents the health of a remote collaborator.
type DependencyStatus string

const (
	DependencyStatusUnknown     DependencyStatus = "UNKNOWN"
	DependencyStatusHealthy     DependencyStatus = "HEALTHY"
	DependencyStatusUnreachable DependencyStatus = "UNREACHABLE"
)

// DependencyHealth contains health check results.
type DependencyHealth struct {
	Name        string           `json:"name"`
	Status      DependencyStatus `json:"status"`
	LastChecked time.Time        `json:"last_checked"`
	Error       string           `json:"error,omitempty"`
}

// HealthChecker periodically pings the payment and streaming services.
type HealthChecker struct {
	targets  []Pinger
	interval time.Duration
	timeout  time.Duration
	results  map[string]*DependencyHealth
	mu       sync.RWMutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHealthChecker creates a HealthChecker.
func NewHealthChecker(interval, timeout time.Duration, targets ...Pinger) *HealthChecker {
	return &HealthChecker{
		targets:  targets,
		interval: interval,
		timeout:  timeout,
		results:  make(map[string]*DependencyHealth),
		stopCh:   make(chan struct{}),
	}
}

// Check performs a single health check.
func (c *HealthChecker) Check(ctx context.Context, target Pinger) *DependencyHealth {
	health := &DependencyHealth{
		Name:        target.Name(),
		LastChecked: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := target.Ping(ctx); err != nil {
		health.Status = DependencyStatusUnreachable
		health.Error = err.Error()
		logger.Warn("Dependency health check failed",
			zap.String("dependency", target.Name()),
			zap.Error(err),
		)
		return health
	}

	health.Status = DependencyStatusHealthy
	return health
}

// Snapshot returns the cached status of every target.
func (c *HealthChecker) Snapshot() []DependencyHealth {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]DependencyHealth, 0, len(c.targets))
	for _, t := range c.targets {
		if h, ok := c.results[t.Name()]; ok {
			out = append(out, *h)
			continue
		}
		out = append(out, DependencyHealth{Name: t.Name(), Status: DependencyStatusUnknown})
	}
	return out
}

// Healthy reports whether every target passed its last check.
func (c *HealthChecker) Healthy() bool {
	for _, h := range c.Snapshot() {
		if h.Status != DependencyStatusHealthy {
			return false
		}
	}
	return true
}

// CheckAll checks every target and caches the results.
func (c *HealthChecker) CheckAll(ctx context.Context) {
	for _, t := range c.targets {
		health := c.Check(ctx, t)
		c.mu.Lock()
		c.results[health.Name] = health
		c.mu.Unlock()
	}
}

// Start begins periodic health checking.
// nolint:naked-goroutine // ticker loop; doesn't fit worker pool pattern.
func (c *HealthChecker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.CheckAll(ctx)

		for {
			select {
			case <-ticker.C:
				c.CheckAll(ctx)
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts periodic health checking. Safe to call more than once.
func (c *HealthChecker) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}
