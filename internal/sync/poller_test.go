package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teaminbox/internal/httpapi"
	"github.com/nhle/teaminbox/internal/model"
	"github.com/nhle/teaminbox/internal/testutil"
)

type fakeLister struct {
	mu      gosync.Mutex
	batches [][]model.Notification
	err     error
	calls   int
	block   bool
}

func (f *fakeLister) List(ctx context.Context) ([]model.Notification, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	err := f.err
	var ns []model.Notification
	if len(f.batches) > 0 {
		ns = f.batches[0]
		if len(f.batches) > 1 {
			f.batches = f.batches[1:]
		}
	}
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return ns, err
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func next(t *testing.T, p *Poller) FeedResultMsg {
	t.Helper()
	select {
	case msg := <-p.resultCh:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed result")
		return FeedResultMsg{}
	}
}

func TestPoller_FetchesImmediatelyOnStart(t *testing.T) {
	l := &fakeLister{batches: [][]model.Notification{{testutil.Invitation("n1", "t1", 0)}}}
	p := New(l, WithInterval(time.Hour))

	require.NotNil(t, p.Start())
	defer p.Stop()

	msg := next(t, p)
	require.NoError(t, msg.Err)
	require.Len(t, msg.Notifications, 1)
	assert.Equal(t, "n1", msg.Notifications[0].ID)
	assert.Zero(t, msg.NewCount, "first fetch reports no new notifications")
	assert.Len(t, p.Notifications(), 1)
	assert.Equal(t, FeedIdle, p.Status().State)
	assert.False(t, p.Status().LastSync.IsZero())
}

func TestPoller_StartTwiceReturnsNil(t *testing.T) {
	p := New(&fakeLister{}, WithInterval(time.Hour))
	require.NotNil(t, p.Start())
	defer p.Stop()

	assert.Nil(t, p.Start())
}

func TestPoller_RefreshTriggersFetchAndCountsNew(t *testing.T) {
	s := testutil.NewTestStore(t)
	l := &fakeLister{batches: [][]model.Notification{
		{testutil.Notice("n1", 0)},
		{testutil.Notice("n1", 0), testutil.Invitation("n2", "t2", 5)},
	}}
	p := New(l, WithInterval(time.Hour), WithStore(s))

	p.Start()
	defer p.Stop()
	next(t, p)

	p.Refresh()
	msg := next(t, p)
	require.NoError(t, msg.Err)
	assert.Len(t, msg.Notifications, 2)
	assert.Equal(t, 1, msg.NewCount)

	// n1 is a read notice; only the new invitation is unread.
	count, err := s.CountUnread(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPoller_IntervalTicks(t *testing.T) {
	l := &fakeLister{}
	p := New(l, WithInterval(10*time.Millisecond))

	p.Start()
	defer p.Stop()

	next(t, p)
	next(t, p)
	assert.GreaterOrEqual(t, l.callCount(), 2)
}

func TestPoller_FailureIsReportedAndPollingContinues(t *testing.T) {
	l := &fakeLister{err: errors.New("connection refused")}
	p := New(l, WithInterval(time.Hour))

	p.Start()
	defer p.Stop()

	msg := next(t, p)
	assert.EqualError(t, msg.Err, "connection refused")
	assert.False(t, msg.AuthFailed)
	assert.Equal(t, FeedError, p.Status().State)
	assert.Empty(t, p.Notifications())

	l.mu.Lock()
	l.err = nil
	l.batches = [][]model.Notification{{testutil.Notice("n1", 0)}}
	l.mu.Unlock()

	p.Refresh()
	msg = next(t, p)
	require.NoError(t, msg.Err)
	assert.Len(t, msg.Notifications, 1)
	assert.Equal(t, FeedIdle, p.Status().State)
}

func TestPoller_AuthFailureFlagged(t *testing.T) {
	l := &fakeLister{err: &httpapi.AuthError{Service: "notifications", Message: "bad token"}}
	p := New(l, WithInterval(time.Hour))

	p.Start()
	defer p.Stop()

	assert.True(t, next(t, p).AuthFailed)
}

func TestPoller_StopCancelsInFlightFetch(t *testing.T) {
	l := &fakeLister{block: true}
	p := New(l, WithInterval(time.Hour))

	p.Start()
	require.Eventually(t, func() bool { return l.callCount() == 1 }, time.Second, 5*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	select {
	case msg := <-p.resultCh:
		t.Fatalf("unexpected result after Stop: %+v", msg)
	default:
	}

	st := p.Status()
	assert.Equal(t, FeedIdle, st.State)
	assert.True(t, st.LastSync.IsZero())
}

func TestPoller_RefreshNeverBlocks(t *testing.T) {
	p := New(&fakeLister{}, WithInterval(time.Hour))

	// Not started: repeated refreshes coalesce into one pending trigger.
	for i := 0; i < 10; i++ {
		p.Refresh()
	}
	assert.Len(t, p.triggerCh, 1)
}

func TestPoller_StopWithoutStart(t *testing.T) {
	p := New(&fakeLister{})
	assert.NotPanics(t, p.Stop)
}

func TestPoller_FetchOnce(t *testing.T) {
	l := &fakeLister{batches: [][]model.Notification{{testutil.Notice("n1", 0)}}}
	p := New(l)

	ns, err := p.FetchOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, ns, 1)

	select {
	case <-p.resultCh:
		t.Fatal("FetchOnce must not publish")
	default:
	}
}
