// Package bootstrap assembles a complete streamkit application: it loads
// configuration, initializes logging and stream tunables, and wires the
// pooled scheduler, SSE hub and HTTP server into one component registry
// with uniform start/stop lifecycle and signal handling.
//
// # Usage
//
//	app, err := bootstrap.New()
//	if err != nil {
//	    ...
//	}
//	quotes := streams.Map(source, parseQuote)
//	app.Server.GinEngine().GET("/events/quotes", sse.Handler(app.SSE.Hub(), "quotes"))
//	app.OnStart(func(context.Context) error {
//	    stop := sse.StreamTo(app.SSE.Hub(), "quotes", quotes, sse.JSONEncoder[Quote]())
//	    app.OnStop(func(context.Context) error { stop(); return nil })
//	    return nil
//	})
//	app.Run(context.Background())
package bootstrap
