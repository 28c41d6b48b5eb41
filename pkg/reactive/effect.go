package reactive

import (
	"fmt"
	"time"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// effectNode is the arena entry behind every effect and memo.
type effectNode struct {
	rt   *Runtime
	id   EffectID
	name string
	kind EffectKind

	// body runs the user function and stores its result.
	body func()

	// cleanup is the cleanup function from the last run.
	cleanup Cleanup

	// sources are the signals this effect is subscribed to.
	sources []source

	// owner is the Owner that owns this effect.
	owner *Owner

	runs     uint64
	disposed bool
}

// newEffect allocates an arena slot owned by the current owner.
func (rt *Runtime) newEffect(kind EffectKind, name string) *effectNode {
	e := &effectNode{
		rt:    rt,
		kind:  kind,
		name:  name,
		owner: rt.owner,
	}
	if e.owner != nil && e.owner.disposed {
		panic(rerrors.New("R003").
			WithDetail(fmt.Sprintf("cannot create %s %q inside a disposed owner", kind, name)).
			Wrap(ErrOwnerDisposed))
	}

	rt.effects = append(rt.effects, e)
	e.id = EffectID(len(rt.effects))
	rt.stats.EffectsCreated++

	if e.owner != nil {
		e.owner.registerEffect(e)
	}
	return e
}

func (e *effectNode) info() EffectInfo {
	return EffectInfo{
		ID:    e.id,
		Name:  e.name,
		Kind:  e.kind,
		Run:   e.runs,
		Depth: e.rt.depth,
	}
}

// clearSources unsubscribes the effect from every signal it read.
func (e *effectNode) clearSources() {
	for _, src := range e.sources {
		src.unsubscribe(e.id)
	}
	e.sources = e.sources[:0]
}

// execute runs the effect once:
//  1. run and clear the previous cleanup, untracked
//  2. in TrackRebuild mode, drop the previous subscriptions
//  3. make the effect the tracking listener and its owner the current owner
//  4. run the body; listener, owner and depth are restored on every exit path
func (rt *Runtime) execute(e *effectNode) {
	if e.disposed {
		return
	}
	if rt.maxDepth > 0 && rt.depth >= rt.maxDepth {
		panic(rerrors.New("R001").
			WithDetail(fmt.Sprintf("%s %q (id %d) would run at depth %d, limit is %d",
				e.kind, e.name, e.id, rt.depth+1, rt.maxDepth)).
			WithSuggestion("Check for effects that write signals read by each other").
			Wrap(ErrCascadeDepth))
	}

	rt.depth++
	if rt.depth > rt.stats.MaxDepthObserved {
		rt.stats.MaxDepthObserved = rt.depth
	}
	defer func() { rt.depth-- }()

	if e.cleanup != nil {
		cleanup := e.cleanup
		e.cleanup = nil
		Untrack(rt, cleanup)
	}
	// The cleanup may have disposed the effect, directly or via its owner.
	if e.disposed {
		return
	}

	if rt.mode == TrackRebuild {
		e.clearSources()
	}

	e.runs++
	rt.stats.EffectRuns++
	info := e.info()

	var start time.Time
	if rt.observer != nil || rt.debug.LogEffectRuns {
		start = time.Now()
	}
	if rt.observer != nil {
		rt.observer.EffectStarted(info)
	}

	prevListener := rt.setListener(e.id)
	prevOwner := rt.setOwner(e.owner)
	finished := false
	defer func() {
		rt.setOwner(prevOwner)
		rt.setListener(prevListener)
		rt.finishRun(info, start, !finished)
	}()

	e.body()
	finished = true
}

// finishRun reports a completed or panicked run.
func (rt *Runtime) finishRun(info EffectInfo, start time.Time, panicked bool) {
	if start.IsZero() {
		return
	}
	elapsed := time.Since(start)
	if rt.debug.LogEffectRuns {
		rt.logger.Debug("effect run",
			"effect_id", info.ID,
			"name", info.Name,
			"kind", info.Kind.String(),
			"run", info.Run,
			"depth", info.Depth,
			"elapsed", elapsed,
			"panicked", panicked)
	}
	if rt.observer != nil {
		rt.observer.EffectFinished(info, elapsed, panicked)
	}
}

// dispose stops the effect: it is marked first so that writes made by the
// pending cleanup cannot re-run it, then the cleanup runs and every
// subscription is dropped.
func (e *effectNode) dispose() {
	if e.disposed {
		return
	}
	e.disposed = true

	if e.cleanup != nil {
		cleanup := e.cleanup
		e.cleanup = nil
		Untrack(e.rt, cleanup)
	}

	e.clearSources()
	e.sources = nil
	e.body = nil

	rt := e.rt
	rt.stats.EffectsDisposed++
	if rt.debug.LogEffectRuns {
		rt.logger.Debug("effect disposed", "effect_id", e.id, "name", e.name, "runs", e.runs)
	}
	if rt.observer != nil {
		rt.observer.EffectDisposed(e.info())
	}
}

// Effect is a handle on a fold effect.
type Effect struct {
	node *effectNode
}

// ID returns the effect's subscription token.
func (e *Effect) ID() EffectID {
	return e.node.id
}

// Name returns the debug label of the effect.
func (e *Effect) Name() string {
	return e.node.name
}

// Runs returns how many times the effect body has started.
func (e *Effect) Runs() uint64 {
	return e.node.runs
}

// IsDisposed returns true if the effect has been disposed.
func (e *Effect) IsDisposed() bool {
	return e.node.disposed
}

// Dispose stops the effect and drops its subscriptions.
func (e *Effect) Dispose() {
	e.node.dispose()
}

// EffectOption configures an effect.
type EffectOption func(*effectOptions)

type effectOptions struct {
	name string
}

// WithEffectName sets the debug label of an effect.
// It appears in debug logs and observer callbacks.
func WithEffectName(name string) EffectOption {
	return func(o *effectOptions) {
		o.name = name
	}
}

func applyEffectOptions(opts []EffectOption) effectOptions {
	var options effectOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}

// NewEffect creates a fold effect and runs it immediately. fn receives the
// value it returned on the previous run, or initial on the first run, and
// re-runs whenever a signal it read changes.
//
// Example:
//
//	reactive.NewEffect(rt, func(prev int) int {
//	    next := count.Get()
//	    fmt.Println("changed from", prev, "to", next)
//	    return next
//	}, 0)
func NewEffect[T any](rt *Runtime, fn func(prev T) T, initial T, opts ...EffectOption) *Effect {
	options := applyEffectOptions(opts)
	node := rt.newEffect(KindEffect, options.name)

	value := initial
	node.body = func() {
		value = fn(value)
	}

	rt.execute(node)
	return &Effect{node: node}
}

// CreateEffect creates an effect with a zero-argument body and runs it
// immediately.
//
// Example:
//
//	reactive.CreateEffect(rt, func() {
//	    fmt.Println("Count is:", count.Get())
//	})
func CreateEffect(rt *Runtime, fn func(), opts ...EffectOption) *Effect {
	return NewEffect(rt, func(struct{}) struct{} {
		fn()
		return struct{}{}
	}, struct{}{}, opts...)
}

// NewDisposableEffect creates an effect whose body may return a Cleanup and
// runs it immediately. The cleanup runs before every re-run and when the
// returned Disposer is called. After disposal the effect never runs again
// and holds no subscriptions.
//
// Example:
//
//	dispose := reactive.NewDisposableEffect(rt, func() reactive.Cleanup {
//	    id := count.Get()
//	    conn := open(id)
//	    return func() { conn.Close() }
//	})
//	defer dispose()
func NewDisposableEffect(rt *Runtime, fn func() Cleanup, opts ...EffectOption) Disposer {
	options := applyEffectOptions(opts)
	node := rt.newEffect(KindDisposable, options.name)

	node.body = func() {
		cleanup := fn()
		if node.disposed {
			// Disposed by its own body: nothing will call the cleanup later.
			if cleanup != nil {
				Untrack(rt, cleanup)
			}
			return
		}
		node.cleanup = cleanup
	}

	rt.execute(node)
	return node.dispose
}
