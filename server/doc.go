// Package server provides the HTTP surface of a streamkit application: a
// Gin-backed server with recovery, request-ID and logging middleware, plus
// standard health and version endpoints. SSE routes from the sse package
// mount onto its engine.
package server
