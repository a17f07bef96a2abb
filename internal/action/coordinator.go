// Package action drives accept/decline of team invitations against the
// authorization service and keeps the local overlay in step with it.
package action

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/teaminbox/internal/authz"
	"github.com/nhle/teaminbox/internal/httpapi"
	"github.com/nhle/teaminbox/internal/invite"
	"github.com/nhle/teaminbox/internal/model"
)

// Action is what the viewer wants to do with an invitation.
type Action int

const (
	Accept Action = iota
	Reject
)

func (a Action) String() string {
	if a == Reject {
		return "reject"
	}
	return "accept"
}

// Outcome tells the caller what a call did. Failures are never returned
// as errors; they are logged and reflected in the overlay.
type Outcome int

const (
	// OutcomeSkipped: the id is already processed or in flight.
	OutcomeSkipped Outcome = iota
	// OutcomeAwaitingConfirmation: a decline opened the gate.
	OutcomeAwaitingConfirmation
	// OutcomeNoToken: no token could be resolved; nothing changed.
	OutcomeNoToken
	// OutcomeSubmitted: the id is now processing and the returned
	// Submission must be run.
	OutcomeSubmitted
	// OutcomeSucceeded: the service accepted the action.
	OutcomeSucceeded
	// OutcomeFailed: the service call failed; a retry is allowed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeAwaitingConfirmation:
		return "awaiting confirmation"
	case OutcomeNoToken:
		return "no token"
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ReadMarker marks a notification as read on the notification service.
type ReadMarker interface {
	MarkRead(ctx context.Context, id string) error
}

// Refresher forces an immediate feed refresh.
type Refresher interface {
	Refresh()
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func())

func defaultAfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Event reports a state change of one notification id.
type Event struct {
	ID     string
	Action Action
	State  invite.State
	// Released is set when the post-success processing hold ends.
	Released bool
	Err      error
}

const (
	defaultRefreshDelay   = 500 * time.Millisecond
	defaultProcessingHold = time.Second
)

// Coordinator performs accept/decline actions. It owns the overlay and the
// confirmation gate; everything else only reads them.
type Coordinator struct {
	authz     authz.Service
	marker    ReadMarker
	refresher Refresher
	overlay   *invite.Overlay
	gate      *Gate
	log       *zap.SugaredLogger
	after     AfterFunc
	events    chan Event

	refreshDelay   time.Duration
	processingHold time.Duration
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDelays sets the post-success refresh delay and processing hold.
func WithDelays(refresh, hold time.Duration) Option {
	return func(c *Coordinator) {
		c.refreshDelay = refresh
		c.processingHold = hold
	}
}

// WithAfterFunc replaces the scheduler used for the delayed callbacks.
func WithAfterFunc(f AfterFunc) Option {
	return func(c *Coordinator) {
		if f != nil {
			c.after = f
		}
	}
}

// New creates a Coordinator. refresher may be nil when nothing needs to
// be refreshed after an action.
func New(a authz.Service, marker ReadMarker, refresher Refresher, opts ...Option) *Coordinator {
	c := &Coordinator{
		authz:          a,
		marker:         marker,
		refresher:      refresher,
		overlay:        invite.NewOverlay(),
		gate:           &Gate{},
		log:            zap.NewNop().Sugar(),
		after:          defaultAfterFunc,
		events:         make(chan Event, 64),
		refreshDelay:   defaultRefreshDelay,
		processingHold: defaultProcessingHold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Overlay returns the local action state, for classification and display.
func (c *Coordinator) Overlay() *invite.Overlay {
	return c.overlay
}

// Gate returns the confirmation gate.
func (c *Coordinator) Gate() *Gate {
	return c.gate
}

// Events delivers state changes. Events are dropped when nobody reads.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Submission is an admitted action whose network step has not run yet.
type Submission struct {
	c      *Coordinator
	n      model.Notification
	action Action
	token  string
}

// Notification returns the notification being acted on.
func (s *Submission) Notification() model.Notification { return s.n }

// Action returns the action being submitted.
func (s *Submission) Action() Action { return s.action }

// Token returns the resolved invitation token.
func (s *Submission) Token() string { return s.token }

// Perform runs the synchronous part of an action. A decline only opens
// the gate. An accept that passes the guards moves the id to processing
// and returns a Submission whose Run performs the network call.
func (c *Coordinator) Perform(n model.Notification, a Action) (*Submission, Outcome) {
	if c.overlay.IsProcessed(n.ID) {
		return nil, OutcomeSkipped
	}

	if a == Reject {
		c.gate.Open(n)
		return nil, OutcomeAwaitingConfirmation
	}

	return c.admit(n, a)
}

// Confirm closes the gate and admits the pending decline, bypassing the
// deferral in Perform. Confirming a closed gate is a no-op.
func (c *Coordinator) Confirm() (*Submission, Outcome) {
	n, ok := c.gate.take()
	if !ok {
		return nil, OutcomeSkipped
	}
	if c.overlay.IsProcessed(n.ID) {
		return nil, OutcomeSkipped
	}
	return c.admit(n, Reject)
}

// Cancel closes the gate without acting.
func (c *Coordinator) Cancel() {
	c.gate.Cancel()
}

// Do performs an action end to end. A decline stops at the gate.
func (c *Coordinator) Do(ctx context.Context, n model.Notification, a Action) Outcome {
	sub, outcome := c.Perform(n, a)
	if sub == nil {
		return outcome
	}
	return sub.Run(ctx)
}

func (c *Coordinator) admit(n model.Notification, a Action) (*Submission, Outcome) {
	token, err := invite.ResolveToken(n)
	if err != nil {
		c.log.Errorw("cannot resolve invitation token",
			"notification_id", n.ID,
			"action", a.String(),
			"error", err,
		)
		return nil, OutcomeNoToken
	}

	if !c.overlay.Begin(n.ID) {
		return nil, OutcomeSkipped
	}
	c.emit(Event{ID: n.ID, Action: a, State: invite.StateProcessing})

	return &Submission{c: c, n: n, action: a, token: token}, OutcomeSubmitted
}

// Run calls the authorization service and settles the overlay. Calling
// Run more than once has no further effect.
func (s *Submission) Run(ctx context.Context) Outcome {
	c := s.c
	id := s.n.ID

	if !c.overlay.IsProcessing(id) {
		return OutcomeSkipped
	}

	var err error
	switch s.action {
	case Reject:
		err = c.authz.RejectInvitation(ctx, s.token)
	default:
		err = c.authz.AcceptInvitation(ctx, s.token)
	}

	if err != nil {
		c.overlay.Fail(id)
		c.logFailure(s, err)
		c.emit(Event{ID: id, Action: s.action, State: invite.StateFailed, Err: err})
		return OutcomeFailed
	}

	c.overlay.Complete(id)
	c.log.Infow("invitation action succeeded",
		"notification_id", id,
		"action", s.action.String(),
	)
	c.emit(Event{ID: id, Action: s.action, State: invite.StateProcessed})

	if c.marker != nil {
		if err := c.marker.MarkRead(ctx, id); err != nil {
			c.log.Warnw("marking notification read failed",
				"notification_id", id,
				"error", err,
			)
		}
	}

	if c.refresher != nil {
		c.after(c.refreshDelay, c.refresher.Refresh)
	}
	c.after(c.processingHold, func() {
		c.overlay.Release(id)
		c.emit(Event{ID: id, Action: s.action, State: invite.StateProcessed, Released: true})
	})

	return OutcomeSucceeded
}

func (c *Coordinator) logFailure(s *Submission, err error) {
	fields := []any{
		"notification_id", s.n.ID,
		"action", s.action.String(),
		"error", err,
	}
	if apiErr, ok := httpapi.AsAPIError(err); ok {
		fields = append(fields,
			"status", apiErr.StatusCode,
			"payload", string(apiErr.Body),
		)
	}
	if errors.Is(err, context.Canceled) {
		c.log.Warnw("invitation action canceled", fields...)
		return
	}
	c.log.Errorw("invitation action failed", fields...)
}

// emit sends an event without blocking the caller.
func (c *Coordinator) emit(e Event) {
	select {
	case c.events <- e:
	default:
	}
}
