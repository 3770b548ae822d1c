package sse

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/streams"
)

// ErrorEvent is broadcast when a bridged stream terminates with an error.
type ErrorEvent struct {
	Stream  string `json:"stream"`
	Message string `json:"message"`
}

// StreamTo subscribes to a publisher with unbounded demand and broadcasts
// each item to all hub clients on the named stream. An error termination
// is broadcast as an error event; completion just logs. The returned stop
// function cancels the subscription.
func StreamTo[T any](hub *Hub, stream string, source streams.Publisher[T], encode func(T) []byte) (stop func()) {
	log := logger.Get(logger.SubsystemSSE).WithStream(stream)

	var sub streams.Subscription
	source.Subscribe(streams.SubscriberFuncs[T]{
		OnSubscribe: func(s streams.Subscription) {
			sub = s
			s.Request(streams.Unbounded)
		},
		OnNext: func(item T) {
			hub.Broadcast(stream, encode(item))
		},
		OnError: func(err error) {
			data, _ := json.Marshal(ErrorEvent{Stream: stream, Message: err.Error()})
			hub.Broadcast(stream, wrapEvent(EventTypeError, data))
			log.WithError(err).Error("bridged stream failed")
		},
		OnComplete: func() {
			log.Info("bridged stream completed")
		},
	}.Build())

	return func() {
		if sub != nil {
			sub.Cancel()
		}
	}
}

// JSONEncoder returns an encode function that marshals items to JSON.
// Marshal failures encode as an error event payload.
func JSONEncoder[T any]() func(T) []byte {
	return func(item T) []byte {
		data, err := json.Marshal(item)
		if err != nil {
			fallback, _ := json.Marshal(ErrorEvent{Message: err.Error()})
			return fallback
		}
		return data
	}
}

func wrapEvent(eventType string, data []byte) []byte {
	wrapped, _ := json.Marshal(map[string]json.RawMessage{
		"event": json.RawMessage(fmt.Sprintf("%q", eventType)),
		"data":  json.RawMessage(data),
	})
	return wrapped
}
