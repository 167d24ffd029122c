package epoch

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/occstore/engine/pkg/log"
	"github.com/occstore/engine/pkg/metrics"
	"github.com/occstore/engine/pkg/xctid"
)

// Manager tracks the engine's three epochs:
//
//   - current: the epoch being stamped onto new commits.
//   - grace:   current - 1, whose commits are still being flushed.
//   - durable: the highest epoch every logger has written to stable
//     storage, computed as the minimum of per-logger reports.
type Manager struct {
	current atomic.Uint32 // xctid.Epoch, 0 is invalid so we start at 1

	mu            sync.Mutex
	loggerDurable map[int]xctid.Epoch
	durable       atomic.Uint32

	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger zerolog.Logger
}

// NewManager constructs a Manager seeded at epoch 1 (0 means "invalid")
// with the given periodic advance interval.
func NewManager(interval time.Duration) *Manager {
	m := &Manager{
		loggerDurable: make(map[int]xctid.Epoch),
		interval:      interval,
		stopCh:        make(chan struct{}),
		logger:        log.WithComponent("epoch"),
	}
	m.current.Store(1)
	metrics.CurrentEpoch.Set(1)
	return m
}

// Current returns the epoch being stamped onto new commits.
func (m *Manager) Current() xctid.Epoch {
	return xctid.Epoch(m.current.Load())
}

// Grace returns current-1, the most recently closed epoch.
func (m *Manager) Grace() xctid.Epoch {
	c := m.current.Load()
	if c <= 1 {
		return 0
	}
	return xctid.Epoch(c - 1)
}

// Durable returns the highest epoch every logger has flushed to stable
// storage.
func (m *Manager) Durable() xctid.Epoch {
	return xctid.Epoch(m.durable.Load())
}

// Start launches the periodic advance loop as a background goroutine.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.run()
}

// Stop halts the periodic advance loop and waits for it to exit.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

// run is the ticker-driven advance loop: a ticker plus a select over
// the ticker and stop channels.
func (m *Manager) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info().Dur("interval", m.interval).Msg("epoch manager started")

	for {
		select {
		case <-ticker.C:
			m.AdvanceOnDemand("periodic")
		case <-m.stopCh:
			m.logger.Info().Msg("epoch manager stopped")
			return
		}
	}
}

// AdvanceOnDemand performs one epoch advance: compute E' = E+1, fence,
// publish E' as current, and recompute durability. It is safe to call
// from the periodic loop or from a caller racing to make a synchronous
// commit durable, or to isolate a storage-creation log in its own epoch.
func (m *Manager) AdvanceOnDemand(reason string) xctid.Epoch {
	next := m.current.Add(1)
	metrics.CurrentEpoch.Set(float64(next))
	metrics.EpochAdvancesTotal.Inc()
	m.recomputeDurable()
	m.logger.Debug().Uint32("new_epoch", next).Str("reason", reason).Msg("epoch advanced")
	return xctid.Epoch(next)
}

// ReportLoggerDurable records the highest epoch a given worker's logger
// has flushed to stable storage, then recomputes the engine-wide
// durable epoch as the minimum across every reporting logger.
func (m *Manager) ReportLoggerDurable(workerID int, durable xctid.Epoch) {
	m.mu.Lock()
	m.loggerDurable[workerID] = durable
	m.mu.Unlock()
	m.recomputeDurable()
}

func (m *Manager) recomputeDurable() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.loggerDurable) == 0 {
		return
	}
	min := xctid.Epoch(^uint32(0))
	for _, e := range m.loggerDurable {
		if e < min {
			min = e
		}
	}
	m.durable.Store(uint32(min))
	metrics.DurableEpoch.Set(float64(min))
	metrics.EpochLag.Set(float64(m.current.Load()) - float64(min))
}

// WaitForDurable blocks the caller until the durable epoch reaches at
// least target, triggering on-demand advances so the wait does not
// depend solely on the periodic loop. Used by a synchronous commit
// that must confirm durability before returning to its caller.
func (m *Manager) WaitForDurable(target xctid.Epoch) {
	for m.Durable() < target {
		m.AdvanceOnDemand("wait-for-durable")
		time.Sleep(time.Millisecond)
	}
}
