// Package reactive provides a small fine-grained reactive runtime.
//
// The runtime has three primitives. Dependencies between them are tracked
// automatically: reading a signal while an effect runs subscribes that
// effect, and writing the signal re-runs every subscribed effect before the
// write returns.
//
// # Core Types
//
// Signal[T] is a mutable reactive cell:
//
//	rt := reactive.NewRuntime()
//	count := reactive.NewSignal(rt, 0)
//	value := count.Get()  // Read (subscribes the running effect)
//	count.Set(5)          // Write (re-runs subscribers synchronously)
//	count.Update(func(n int) int { return n + 1 })
//
// Effect is a re-runnable computation. The fold form receives the value it
// returned last time:
//
//	reactive.NewEffect(rt, func(prev int) int {
//	    next := count.Get()
//	    fmt.Println("changed from", prev, "to", next)
//	    return next
//	}, 0)
//
// The disposable form returns a Cleanup that runs before each re-run and on
// disposal:
//
//	dispose := reactive.NewDisposableEffect(rt, func() reactive.Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { /* cleanup */ }
//	})
//	defer dispose()
//
// Memo[T] is a read-only signal kept current by an internal effect:
//
//	doubled := reactive.NewMemo(rt, func(int) int { return count.Get() * 2 }, 0)
//	count.Set(10)
//	doubled.Get() // 20, recomputed during Set
//
// The pair-shaped constructors CreateSignal, CreateEffect and CreateMemo
// return plain accessor and setter functions for callers that prefer them.
//
// # Execution Model
//
// Everything is synchronous and push-based. There is no batching and no
// glitch-free scheduling: N changing writes cause N notification passes, and
// an effect downstream of two paths from one signal runs once per path.
// Each notification pass iterates a snapshot of the subscriber set taken
// before the first subscriber runs.
//
// # Thread Safety
//
// A Runtime is not safe for concurrent use. All signals, effects and memos
// created against a Runtime must be used from one goroutine at a time; hosts
// that receive work from many goroutines serialize it onto a single loop
// (see package live).
package reactive
