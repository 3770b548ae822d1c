// Package sse delivers stream events to browsers over Server-Sent Events.
//
// A Hub groups connected clients by stream name and fans each broadcast
// out to that stream's clients. Handler serves a gin endpoint for one named
// stream, and StreamTo bridges any publisher onto the hub with unbounded
// demand. Slow clients lose events rather than stalling the hub.
//
// # Usage
//
//	comp := sse.NewComponent()
//	registry.Register(comp)
//	router.GET("/events/quotes", sse.Handler(comp.Hub(), "quotes"))
//	stop := sse.StreamTo(comp.Hub(), "quotes", quotes, sse.JSONEncoder[Quote]())
package sse
