package streams_test

import (
	"errors"
	"sort"
	"testing"
	"time"

	skerrors "github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/streams"
	"github.com/kbukum/streamkit/streamtest"
)

func TestMergeDeliversEverySourceItem(t *testing.T) {
	rec := streamtest.NewAutoRecorder[int](streams.Unbounded)
	streams.Merge(
		streams.FromSlice([]int{1, 2, 3}),
		streams.FromSlice([]int{4, 5}),
		streams.FromSlice([]int{6}),
	).Subscribe(rec)

	if !rec.AwaitTerminal(time.Second) {
		t.Fatal("stream did not terminate")
	}
	got := append([]int(nil), rec.Items()...)
	sort.Ints(got)
	want := []int{1, 2, 3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("items = %v, want %v in some order", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sorted items[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if rec.Completions() != 1 {
		t.Errorf("completions = %d, want 1", rec.Completions())
	}
}

func TestMergeZeroSourcesCompletes(t *testing.T) {
	rec := streamtest.NewRecorder[int]()
	streams.Merge[int]().Subscribe(rec)

	if rec.Completions() != 1 {
		t.Errorf("completions = %d, want immediate completion", rec.Completions())
	}
}

func TestMergeHonorsDownstreamDemand(t *testing.T) {
	rec := streamtest.NewRecorder[int]()
	streams.Merge(
		streams.FromSlice([]int{1, 2}),
		streams.FromSlice([]int{3, 4}),
	).Subscribe(rec)

	rec.Request(3)

	if got := rec.Items(); len(got) != 3 {
		t.Errorf("items = %v, want exactly 3", got)
	}
	if rec.Completions() != 0 {
		t.Error("merge must not complete while a source still has items")
	}

	rec.Request(1)
	if got := rec.Items(); len(got) != 4 {
		t.Errorf("items = %v, want all 4", got)
	}
	if rec.Completions() != 1 {
		t.Errorf("completions = %d, want 1", rec.Completions())
	}
}

// silentPublisher activates but never emits; it records cancellation so
// tests can assert sibling cleanup.
type silentPublisher struct {
	cancels chan struct{}
}

func newSilentPublisher() *silentPublisher {
	return &silentPublisher{cancels: make(chan struct{}, 1)}
}

func (p *silentPublisher) Subscribe(s streams.Subscriber[int]) {
	s.OnSubscribe(&silentSubscription{p: p})
}

type silentSubscription struct {
	p *silentPublisher
}

func (s *silentSubscription) Request(uint64) {}
func (s *silentSubscription) Cancel() {
	select {
	case s.p.cancels <- struct{}{}:
	default:
	}
}

func TestMergeFirstErrorWinsAndCancelsSiblings(t *testing.T) {
	silent := newSilentPublisher()
	boom := errors.New("source failed")

	rec := streamtest.NewAutoRecorder[int](streams.Unbounded)
	streams.Merge[int](silent, streams.Failed[int](boom)).Subscribe(rec)

	if !rec.AwaitTerminal(time.Second) {
		t.Fatal("stream did not terminate")
	}
	errs := rec.Errors()
	if len(errs) != 1 || !errors.Is(errs[0], boom) {
		t.Errorf("errors = %v, want [source failed]", errs)
	}
	if rec.Completions() != 0 {
		t.Error("an errored merge must not also complete")
	}
	select {
	case <-silent.cancels:
	case <-time.After(time.Second):
		t.Error("sibling source was not cancelled on error")
	}
}

func TestMergeCancelPropagatesToAllSources(t *testing.T) {
	a := newSilentPublisher()
	b := newSilentPublisher()

	rec := streamtest.NewRecorder[int]()
	streams.Merge[int](a, b).Subscribe(rec)
	rec.Cancel()

	for i, src := range []*silentPublisher{a, b} {
		select {
		case <-src.cancels:
		case <-time.After(time.Second):
			t.Errorf("source %d was not cancelled", i)
		}
	}
}

func TestMergeZeroRequestIsAProtocolViolation(t *testing.T) {
	rec := streamtest.NewRecorder[int]()
	streams.Merge(streams.FromSlice([]int{1, 2})).Subscribe(rec)

	rec.Request(0)

	errs := rec.Errors()
	if len(errs) != 1 || skerrors.CodeOf(errs[0]) != skerrors.ErrCodeProtocolViolation {
		t.Errorf("errors = %v, want one protocol violation", errs)
	}
}
