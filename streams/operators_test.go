package streams_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	skerrors "github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/streams"
	"github.com/kbukum/streamkit/streamtest"
)

func TestMapTransformsInOrder(t *testing.T) {
	rec := streamtest.NewAutoRecorder[string](streams.Unbounded)
	streams.Map(streams.FromSlice([]int{1, 2, 3}), func(v int) (string, error) {
		return strconv.Itoa(v * 10), nil
	}).Subscribe(rec)

	if !rec.AwaitTerminal(time.Second) {
		t.Fatal("stream did not terminate")
	}
	got := rec.Items()
	if len(got) != 3 || got[0] != "10" || got[1] != "20" || got[2] != "30" {
		t.Errorf("items = %v, want [10 20 30]", got)
	}
	if rec.Completions() != 1 {
		t.Errorf("completions = %d, want 1", rec.Completions())
	}
}

func TestMapErrorCancelsUpstream(t *testing.T) {
	spy := streamtest.NewCancelSpy(streams.Range(0, 100))
	rec := streamtest.NewAutoRecorder[int](streams.Unbounded)

	streams.Map[int, int](spy, func(v int) (int, error) {
		if v == 2 {
			return 0, errors.New("bad value")
		}
		return v, nil
	}).Subscribe(rec)

	if !rec.AwaitTerminal(time.Second) {
		t.Fatal("stream did not terminate")
	}
	if got := rec.Items(); len(got) != 2 {
		t.Errorf("items = %v, want the 2 before the failure", got)
	}
	errs := rec.Errors()
	if len(errs) != 1 || skerrors.CodeOf(errs[0]) != skerrors.ErrCodeTransformFailure {
		t.Errorf("errors = %v, want one transform failure", errs)
	}
	if spy.Cancels() != 1 {
		t.Errorf("upstream cancels = %d, want 1", spy.Cancels())
	}
}

func TestMapPanicBecomesErrorSignal(t *testing.T) {
	rec := streamtest.NewAutoRecorder[int](streams.Unbounded)
	streams.Map(streams.Just(1), func(int) (int, error) {
		panic("transform exploded")
	}).Subscribe(rec)

	if !rec.AwaitTerminal(time.Second) {
		t.Fatal("stream did not terminate")
	}
	errs := rec.Errors()
	if len(errs) != 1 || skerrors.CodeOf(errs[0]) != skerrors.ErrCodeTransformFailure {
		t.Errorf("errors = %v, want one transform failure", errs)
	}
	if rec.Completions() != 0 {
		t.Error("a failed stream must not also complete")
	}
}

func TestFilterKeepsMatchesInOrder(t *testing.T) {
	rec := streamtest.NewAutoRecorder[int](streams.Unbounded)
	streams.Filter(streams.Range(1, 10), func(v int) bool { return v%2 == 0 }).Subscribe(rec)

	if !rec.AwaitTerminal(time.Second) {
		t.Fatal("stream did not terminate")
	}
	got := rec.Items()
	want := []int{2, 4, 6, 8, 10}
	if len(got) != len(want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("items[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestFilterNeverStallsBoundedDemand(t *testing.T) {
	rec := streamtest.NewRecorder[int]()
	streams.Filter(streams.FromSlice([]int{1, 2, 3, 4}), func(v int) bool { return v > 2 }).Subscribe(rec)

	rec.Request(2)

	got := rec.Items()
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("items = %v, want [3 4]", got)
	}
	if rec.Completions() != 1 {
		t.Errorf("completions = %d, want 1: rejected items must re-request upstream", rec.Completions())
	}
}

func TestTakeCancelsUpstreamAtLimit(t *testing.T) {
	spy := streamtest.NewCancelSpy(streams.Range(0, 100))
	rec := streamtest.NewAutoRecorder[int](streams.Unbounded)

	streams.Take[int](spy, 3).Subscribe(rec)

	if !rec.AwaitTerminal(time.Second) {
		t.Fatal("stream did not terminate")
	}
	if got := rec.Items(); len(got) != 3 {
		t.Errorf("items = %v, want 3", got)
	}
	if rec.Completions() != 1 {
		t.Errorf("completions = %d, want 1", rec.Completions())
	}
	if spy.Cancels() != 1 {
		t.Errorf("upstream cancels = %d, want 1", spy.Cancels())
	}
}

func TestTakeZeroCompletesImmediately(t *testing.T) {
	rec := streamtest.NewRecorder[int]()
	streams.Take(streams.Range(0, 10), 0).Subscribe(rec)

	if !rec.Subscribed() {
		t.Error("Take(0) must still deliver OnSubscribe")
	}
	if rec.Completions() != 1 {
		t.Errorf("completions = %d, want immediate completion", rec.Completions())
	}
	if len(rec.Items()) != 0 {
		t.Errorf("items = %v, want none", rec.Items())
	}
}

func TestSkipDropsLeadingItems(t *testing.T) {
	rec := streamtest.NewRecorder[int]()
	streams.Skip(streams.Range(0, 6), 3).Subscribe(rec)

	rec.Request(2)
	got := rec.Items()
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("items = %v, want [3 4]", got)
	}
}

func TestTapObservesWithoutChanging(t *testing.T) {
	var seen []int
	rec := streamtest.NewAutoRecorder[int](streams.Unbounded)
	streams.Tap(streams.FromSlice([]int{7, 8}), func(v int) {
		seen = append(seen, v)
	}).Subscribe(rec)

	if !rec.AwaitTerminal(time.Second) {
		t.Fatal("stream did not terminate")
	}
	if got := rec.Items(); len(got) != 2 || got[0] != 7 || got[1] != 8 {
		t.Errorf("items = %v, want [7 8]", got)
	}
	if len(seen) != 2 || seen[0] != 7 || seen[1] != 8 {
		t.Errorf("side effects = %v, want [7 8]", seen)
	}
}

func TestOperatorsSuppressDuplicateTerminals(t *testing.T) {
	rogue := streams.NewPublisher[int](func(s streams.Subscriber[int]) {
		s.OnSubscribe(noopSubscription{})
		s.OnNext(1)
		s.OnComplete()
		s.OnComplete()
		s.OnError(errors.New("late error"))
	})

	rec := streamtest.NewAutoRecorder[int](streams.Unbounded)
	streams.Map(rogue, func(v int) (int, error) { return v, nil }).Subscribe(rec)

	if rec.Completions() != 1 {
		t.Errorf("completions = %d, want exactly 1", rec.Completions())
	}
	if len(rec.Errors()) != 0 {
		t.Errorf("errors = %v, want none after completion", rec.Errors())
	}
}

type noopSubscription struct{}

func (noopSubscription) Request(uint64) {}
func (noopSubscription) Cancel()        {}
