package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/teaminbox/internal/httpapi"
	"github.com/nhle/teaminbox/internal/model"
	"github.com/nhle/teaminbox/internal/store"
)

// FeedState represents the current state of the feed.
type FeedState int

const (
	FeedIdle FeedState = iota
	FeedRunning
	FeedError
)

// FeedStatus holds the sync state of the feed.
type FeedStatus struct {
	State    FeedState
	LastSync time.Time
	Error    error
}

// FeedResultMsg is a tea.Msg sent when a fetch completes.
type FeedResultMsg struct {
	Notifications []model.Notification
	// NewCount is the number of notifications not seen in earlier fetches.
	// The first fetch of a session reports zero.
	NewCount int
	Err      error
	// AuthFailed is set when the service rejected the API token.
	AuthFailed bool
}

// Lister fetches the notification feed.
type Lister interface {
	List(ctx context.Context) ([]model.Notification, error)
}

const (
	defaultInterval     = 30 * time.Second
	defaultFetchTimeout = 30 * time.Second
)

// Poller fetches the feed immediately on Start, then on a fixed interval
// and whenever Refresh is called, until Stop.
type Poller struct {
	lister       Lister
	store        store.Store
	log          *zap.SugaredLogger
	interval     time.Duration
	fetchTimeout time.Duration

	resultCh  chan FeedResultMsg
	triggerCh chan struct{}

	mu          gosync.Mutex
	status      FeedStatus
	latest      []model.Notification
	fetchedOnce bool
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
}

// Option customizes a Poller.
type Option func(*Poller)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithFetchTimeout bounds each fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.fetchTimeout = d
		}
	}
}

// WithStore writes every successful fetch to s.
func WithStore(s store.Store) Option {
	return func(p *Poller) {
		p.store = s
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(p *Poller) {
		if log != nil {
			p.log = log
		}
	}
}

// New creates a new Poller for the given feed.
func New(l Lister, opts ...Option) *Poller {
	p := &Poller{
		lister:       l,
		log:          zap.NewNop().Sugar(),
		interval:     defaultInterval,
		fetchTimeout: defaultFetchTimeout,
		resultCh:     make(chan FeedResultMsg, 16),
		triggerCh:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start starts the polling goroutine and returns a tea.Cmd that waits
// for the first result. Calling Start while running returns nil.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	done := p.done
	p.mu.Unlock()

	go p.loop(ctx, done)

	return p.waitForResult()
}

// Stop cancels the loop, including any in-flight fetch, and waits for it
// to exit. No result is published after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done
}

// Refresh asks for an immediate fetch. Requests made while one is already
// pending are coalesced. It never blocks.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Notifications returns the latest fetched feed.
func (p *Poller) Notifications() []model.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]model.Notification, len(p.latest))
	copy(out, p.latest)
	return out
}

// Status returns the current feed status.
func (p *Poller) Status() FeedStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// FetchOnce performs a single fetch outside the loop without publishing.
func (p *Poller) FetchOnce(ctx context.Context) ([]model.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()
	return p.lister.List(ctx)
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately
	p.fetch(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx)
		case <-p.triggerCh:
			p.fetch(ctx)
		}
	}
}

// fetch performs a single fetch, writes it to the store and publishes
// a FeedResultMsg. Failures are logged and published, never returned.
func (p *Poller) fetch(ctx context.Context) {
	p.setStatus(FeedRunning, nil)

	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	ns, err := p.lister.List(fetchCtx)
	if ctx.Err() != nil {
		// Stopped mid-fetch: nothing was synced, so LastSync stays put.
		p.mu.Lock()
		p.status.State = FeedIdle
		p.status.Error = nil
		p.mu.Unlock()
		return
	}
	if err != nil {
		p.log.Warnw("feed fetch failed", "error", err)
		p.setStatus(FeedError, err)
		p.sendResult(FeedResultMsg{Err: err, AuthFailed: httpapi.IsAuthError(err)})
		return
	}

	newCount := 0
	if p.store != nil {
		added, err := p.store.ReplaceNotifications(fetchCtx, ns)
		if err != nil {
			p.log.Errorw("caching feed failed", "error", err)
		} else {
			newCount = len(added)
		}
	}

	p.mu.Lock()
	p.latest = ns
	first := !p.fetchedOnce
	p.fetchedOnce = true
	p.mu.Unlock()

	if first {
		newCount = 0
	}

	p.setStatus(FeedIdle, nil)
	p.log.Debugw("feed fetched", "count", len(ns), "new", newCount)
	p.sendResult(FeedResultMsg{Notifications: ns, NewCount: newCount})
}

// setStatus updates the feed status.
func (p *Poller) setStatus(state FeedState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == FeedIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a FeedResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg FeedResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next fetch result.
// Call it after handling a FeedResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
