// Package live serves a reactive model over HTTP and WebSocket.
//
// A reactive.Runtime is not safe for concurrent use, so a Host owns one and
// runs every piece of work that touches it on a single goroutine. HTTP
// handlers and WebSocket readers hand work to the Host with Do or Dispatch.
//
// Each WebSocket client gets a disposable effect that reads the model and
// pushes a state frame whenever a value it read changes. Disconnecting
// disposes the effect, dropping its subscriptions.
//
//	host := live.NewHost(reactive.NewRuntime(), logger)
//	defer host.Stop()
//
//	var counter *live.Counter
//	host.Do(ctx, func() { counter = live.NewCounter(host.Runtime()) })
//
//	srv := live.NewServer(host, counter, live.ServerConfig{Logger: logger})
//	srv.ListenAndServe(ctx, ":8080")
package live
