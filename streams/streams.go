package streams

import (
	skerrors "github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/logger"
)

// Publisher is a provider of a potentially unbounded number of sequenced
// items, publishing them according to the demand received from its
// Subscriber.
//
// A Publisher is an immutable stream description: Subscribe may be called
// any number of times, and each call creates an independent activation with
// its own Subscription and state.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// Subscriber receives a call to OnSubscribe exactly once after being passed
// to Publisher.Subscribe, then zero or more OnNext calls, then at most one
// of OnError or OnComplete. No callback follows a terminal one.
type Subscriber[T any] interface {
	OnSubscribe(s Subscription)
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Subscription is the one-to-one control channel between a Subscriber and a
// Publisher activation. Request and Cancel may be called from any goroutine;
// calls after a terminal signal or after Cancel are no-ops.
type Subscription interface {
	// Request adds n to the outstanding demand. n must be positive;
	// a zero request is a protocol violation surfaced on the error channel.
	Request(n uint64)
	// Cancel stops the activation. Idempotent and safe to call concurrently.
	// Cancellation produces no terminal signal.
	Cancel()
}

// Unbounded requests effectively infinite demand.
const Unbounded uint64 = ^uint64(0)

// NewPublisher builds a Publisher from a subscribe function. The function
// runs once per Subscribe call and must deliver OnSubscribe before any other
// signal. A panic inside it is converted into an immediate error signal
// rather than escaping to the caller.
func NewPublisher[T any](subscribe func(Subscriber[T])) Publisher[T] {
	return &publisherFunc[T]{subscribe: subscribe}
}

type publisherFunc[T any] struct {
	subscribe func(Subscriber[T])
}

func (p *publisherFunc[T]) Subscribe(s Subscriber[T]) {
	guard := &activationGuard[T]{delegate: s}
	defer func() {
		if r := recover(); r != nil {
			guard.failActivation(skerrors.SubscribeFailed("publisher", nil).WithDetail("panic", r))
		}
	}()
	p.subscribe(guard)
}

// activationGuard tracks whether OnSubscribe has been delivered so that a
// failed activation can still hand the consumer a valid Subscription before
// the error signal.
type activationGuard[T any] struct {
	delegate   Subscriber[T]
	subscribed bool
}

func (g *activationGuard[T]) OnSubscribe(s Subscription) {
	g.subscribed = true
	g.delegate.OnSubscribe(s)
}

func (g *activationGuard[T]) OnNext(v T)        { g.delegate.OnNext(v) }
func (g *activationGuard[T]) OnError(err error) { g.delegate.OnError(err) }
func (g *activationGuard[T]) OnComplete()       { g.delegate.OnComplete() }

func (g *activationGuard[T]) failActivation(err error) {
	if !g.subscribed {
		g.delegate.OnSubscribe(nopSubscription{})
	}
	g.delegate.OnError(err)
}

// nopSubscription accepts and ignores all control calls. Handed out when an
// activation fails before a real Subscription exists, so the consumer can
// still call Cancel safely.
type nopSubscription struct{}

func (nopSubscription) Request(uint64) {}
func (nopSubscription) Cancel()        {}

// SubscriberFuncs builds a Subscriber from optional callbacks.
// Nil callbacks are filled with defaults: OnSubscribe requests Unbounded,
// OnError logs through the logger package.
type SubscriberFuncs[T any] struct {
	OnSubscribe func(Subscription)
	OnNext      func(T)
	OnError     func(error)
	OnComplete  func()
}

// Build fills in any nil callbacks and returns the assembled Subscriber.
func (f SubscriberFuncs[T]) Build() Subscriber[T] {
	if f.OnSubscribe == nil {
		f.OnSubscribe = func(s Subscription) { s.Request(Unbounded) }
	}
	if f.OnNext == nil {
		f.OnNext = func(T) {}
	}
	if f.OnError == nil {
		f.OnError = func(err error) {
			logger.Get(logger.SubsystemStreams).WithError(err).Error("unhandled stream error")
		}
	}
	if f.OnComplete == nil {
		f.OnComplete = func() {}
	}
	return &assembledSubscriber[T]{funcs: f}
}

type assembledSubscriber[T any] struct {
	funcs SubscriberFuncs[T]
}

func (a *assembledSubscriber[T]) OnSubscribe(s Subscription) { a.funcs.OnSubscribe(s) }
func (a *assembledSubscriber[T]) OnNext(v T)                 { a.funcs.OnNext(v) }
func (a *assembledSubscriber[T]) OnError(err error)          { a.funcs.OnError(err) }
func (a *assembledSubscriber[T]) OnComplete()                { a.funcs.OnComplete() }
