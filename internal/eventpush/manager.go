package eventpush

import (
	"bytes"
	"context"
	"hash/fnv"
	"io"
	"os"
	"sync"
	"time"

	"casino-wallet/internal/eventpush/sinks"
	"casino-wallet/internal/httpclient"
	"casino-wallet/internal/notify"

	"github.com/rs/zerolog/log"
)

const (
	SinkKafka   = "kafka"
	SinkWebhook = "webhook"
)

type breakerState struct {
	consecutiveFailures int
	openUntil           time.Time
}

// Manager fans balance events out to the configured targets. Jobs are
// partitioned across workers by player, so without retries one player's
// events reach a target in commit order.
type Manager struct {
	cfg      Config
	adapters map[string]sinks.Adapter

	queues []chan pushJob
	retryQ *retryQueue
	done   chan struct{}

	mu           sync.Mutex
	started      bool
	breakerByKey map[string]breakerState
}

func NewManager(cfg Config) *Manager {
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = 2048
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.CircuitOpenDuration <= 0 {
		cfg.CircuitOpenDuration = 30 * time.Second
	}

	adapters := map[string]sinks.Adapter{
		SinkWebhook: sinks.NewWebhookAdapter(httpclient.New(cfg.RequestTimeout)),
	}
	if len(cfg.KafkaBrokers) > 0 {
		adapters[SinkKafka] = sinks.NewKafkaAdapter(cfg.KafkaBrokers)
	}

	perWorker := max(cfg.DispatchBuffer/cfg.Workers, 1)
	m := &Manager{
		cfg:          cfg,
		adapters:     adapters,
		queues:       make([]chan pushJob, cfg.Workers),
		done:         make(chan struct{}),
		breakerByKey: map[string]breakerState{},
	}
	for i := range m.queues {
		m.queues[i] = make(chan pushJob, perWorker)
	}
	m.retryQ = newRetryQueue(m.enqueue, m.done)
	return m
}

func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		return nil
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	for _, q := range m.queues {
		go m.worker(ctx, q)
	}
	if m.cfg.ConfigPath != "" {
		go m.watchConfigLoop(ctx)
	}
	go func() {
		<-ctx.Done()
		close(m.done)
		m.closeAdapters()
	}()
	log.Info().Int("workers", len(m.queues)).Int("targets", len(m.currentTargets())).Msg("event push started")
	return nil
}

// Notify queues ev for every matching target. It never blocks; a full queue
// drops the job.
func (m *Manager) Notify(ev notify.BalanceChanged) {
	if !m.cfg.Enabled {
		return
	}
	for _, target := range matchTargets(m.currentTargets(), ev) {
		if !m.enqueue(pushJob{Target: target, Event: ev}) {
			metricPushDroppedTotal.Add(1)
		}
	}
}

func (m *Manager) enqueue(job pushJob) bool {
	q := m.queues[partition(job.Event.PlayerID, len(m.queues))]
	select {
	case <-m.done:
		return false
	case q <- job:
		metricPushQueuedTotal.Add(1)
		return true
	default:
		return false
	}
}

func partition(playerID string, n int) int {
	h := fnv.New32a()
	_, _ = io.WriteString(h, playerID)
	return int(h.Sum32() % uint32(n))
}

func (m *Manager) currentTargets() []Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Target, len(m.cfg.Targets))
	copy(out, m.cfg.Targets)
	return out
}

func (m *Manager) closeAdapters() {
	for name, a := range m.adapters {
		c, ok := a.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Str("sink", name).Msg("close event sink")
		}
	}
}

func (m *Manager) watchConfigLoop(ctx context.Context) {
	interval := m.cfg.ConfigReload
	if interval <= 0 {
		interval = time.Second
	}
	lastRaw, _ := os.ReadFile(m.cfg.ConfigPath)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			raw, err := os.ReadFile(m.cfg.ConfigPath)
			if err != nil {
				metricPushConfigReloadError.Add(1)
				continue
			}
			if bytes.Equal(bytes.TrimSpace(raw), bytes.TrimSpace(lastRaw)) {
				continue
			}
			targets, err := parseTargetsYAML(raw)
			if err != nil {
				metricPushConfigReloadError.Add(1)
				log.Warn().Err(err).Str("path", m.cfg.ConfigPath).Msg("event push config reload failed")
				continue
			}
			m.mu.Lock()
			m.cfg.Targets = append(m.fixedTargets(), targets...)
			m.mu.Unlock()
			lastRaw = raw
			metricPushConfigReloadTotal.Add(1)
		}
	}
}

// fixedTargets are the targets that come from the environment rather than the
// targets file. Caller holds m.mu.
func (m *Manager) fixedTargets() []Target {
	out := make([]Target, 0, 1)
	for _, t := range m.cfg.Targets {
		if t.Name == defaultKafkaTarget {
			out = append(out, t)
		}
	}
	return out
}
