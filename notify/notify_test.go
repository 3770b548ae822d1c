package notify_test

import (
	"sync"
	"testing"
	"time"

	"github.com/kbukum/streamkit/notify"
	"github.com/kbukum/streamkit/streams"
	"github.com/kbukum/streamkit/streamtest"
)

func TestBroadcasterCallsEveryListener(t *testing.T) {
	b := notify.NewBroadcaster[string]()

	var got []string
	var mu sync.Mutex
	for i := 0; i < 3; i++ {
		b.Listen(func(v string) {
			mu.Lock()
			got = append(got, v)
			mu.Unlock()
		})
	}

	b.Publish("tick")
	if len(got) != 3 {
		t.Errorf("listener calls = %d, want 3", len(got))
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
}

func TestBroadcasterRemoveIsIdempotent(t *testing.T) {
	b := notify.NewBroadcaster[int]()

	calls := 0
	remove := b.Listen(func(int) { calls++ })
	other := b.Listen(func(int) {})
	_ = other

	remove()
	remove()

	b.Publish(1)
	if calls != 0 {
		t.Errorf("removed listener called %d times", calls)
	}
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}

func TestAsPublisherDeliversWithDemand(t *testing.T) {
	b := notify.NewBroadcaster[int]()
	rec := streamtest.NewAutoRecorder[int](streams.Unbounded)
	notify.AsPublisher(b).Subscribe(rec)

	b.Publish(1)
	b.Publish(2)
	b.Publish(3)

	got := rec.Items()
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("items = %v, want [1 2 3]", got)
	}
	if rec.Completions() != 0 || len(rec.Errors()) != 0 {
		t.Error("the adapter must never terminate on its own")
	}
}

func TestAsPublisherLatestValueWins(t *testing.T) {
	b := notify.NewBroadcaster[string]()
	rec := streamtest.NewRecorder[string]()
	notify.AsPublisher(b).Subscribe(rec)

	// zero demand: each publish overwrites the stashed value
	b.Publish("stale")
	b.Publish("fresh")

	rec.Request(1)
	got := rec.Items()
	if len(got) != 1 || got[0] != "fresh" {
		t.Errorf("items = %v, want only the newest value", got)
	}
}

func TestAsPublisherStashHoldsAcrossRequests(t *testing.T) {
	b := notify.NewBroadcaster[int]()
	rec := streamtest.NewRecorder[int]()
	notify.AsPublisher(b).Subscribe(rec)

	b.Publish(7)
	rec.Request(1)
	rec.Request(1)
	b.Publish(8)

	got := rec.Items()
	if len(got) != 2 || got[0] != 7 || got[1] != 8 {
		t.Errorf("items = %v, want [7 8]", got)
	}
}

func TestAsPublisherCancelRemovesListener(t *testing.T) {
	b := notify.NewBroadcaster[int]()
	rec := streamtest.NewAutoRecorder[int](streams.Unbounded)
	notify.AsPublisher(b).Subscribe(rec)

	if b.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after subscribe", b.Len())
	}
	rec.Cancel()
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after cancel", b.Len())
	}

	b.Publish(9)
	if len(rec.Items()) != 0 {
		t.Errorf("items = %v, want none after cancel", rec.Items())
	}
}

func TestAsPublisherZeroRequestIsIgnored(t *testing.T) {
	b := notify.NewBroadcaster[int]()
	rec := streamtest.NewRecorder[int]()
	notify.AsPublisher(b).Subscribe(rec)

	rec.Request(0)
	b.Publish(1)

	if len(rec.Errors()) != 0 {
		t.Errorf("errors = %v, want none: the adapter has no error channel", rec.Errors())
	}
	if len(rec.Items()) != 0 {
		t.Errorf("items = %v, want none without demand", rec.Items())
	}
}

func TestAsPublisherIndependentActivations(t *testing.T) {
	b := notify.NewBroadcaster[int]()
	pub := notify.AsPublisher(b)

	eager := streamtest.NewAutoRecorder[int](streams.Unbounded)
	lazy := streamtest.NewRecorder[int]()
	pub.Subscribe(eager)
	pub.Subscribe(lazy)

	b.Publish(1)
	b.Publish(2)

	if got := eager.Items(); len(got) != 2 {
		t.Errorf("eager items = %v, want both", got)
	}
	if got := lazy.Items(); len(got) != 0 {
		t.Errorf("lazy items = %v, want none", got)
	}

	lazy.Request(streams.Unbounded)
	if got := lazy.Items(); len(got) != 1 || got[0] != 2 {
		t.Errorf("lazy items = %v, want just the stashed newest value", got)
	}
}

func TestAsPublisherConcurrentPublishes(t *testing.T) {
	b := notify.NewBroadcaster[int]()
	rec := streamtest.NewAutoRecorder[int](streams.Unbounded)
	notify.AsPublisher(b).Subscribe(rec)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.Publish(base*100 + j)
			}
		}(i)
	}
	wg.Wait()

	// unbounded demand: every publish is either delivered or overwritten
	// while in flight; the recorder must never see interleaved corruption
	if !rec.AwaitItems(1, time.Second) {
		t.Fatal("no items delivered")
	}
	if n := len(rec.Items()); n > 400 {
		t.Errorf("items = %d, want at most the 400 published", n)
	}
}
