package reactive

import (
	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// Owner is a scope that owns effects. When an Owner is disposed, every
// effect and memo created while it was current is disposed too, along with
// its child owners and registered cleanups.
//
// Owners form a hierarchy: an owner created while another is current
// becomes its child. An effect re-running restores its owner as current, so
// effects created by later runs belong to the same owner.
type Owner struct {
	rt *Runtime

	// parent is the parent Owner in the hierarchy.
	// nil for a root Owner.
	parent *Owner

	children []*Owner
	effects  []*effectNode
	cleanups []func()

	disposed bool
}

// NewOwner creates an owner that is a child of the current owner, or a root
// owner if there is none.
func (rt *Runtime) NewOwner() *Owner {
	o := &Owner{
		rt:     rt,
		parent: rt.owner,
	}
	if o.parent != nil && !o.parent.disposed {
		o.parent.children = append(o.parent.children, o)
	}
	return o
}

// Parent returns the parent Owner, or nil if this is a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed returns true if this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed
}

// Effects returns the number of effects registered with this owner.
func (o *Owner) Effects() int {
	return len(o.effects)
}

// Run makes o the current owner while fn runs. It panics with an error
// matching ErrOwnerDisposed if o has been disposed.
//
// Example:
//
//	owner := rt.NewOwner()
//	owner.Run(func() {
//	    reactive.CreateEffect(rt, func() { fmt.Println(count.Get()) })
//	})
//	owner.Dispose() // stops the effect
func (o *Owner) Run(fn func()) {
	if o.disposed {
		panic(rerrors.New("R003").Wrap(ErrOwnerDisposed))
	}
	old := o.rt.setOwner(o)
	defer o.rt.setOwner(old)
	fn()
}

// OnCleanup registers a function to run when this Owner is disposed.
// If the owner is already disposed, fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

func (o *Owner) registerEffect(e *effectNode) {
	o.effects = append(o.effects, e)
}

// Dispose disposes child owners, then owned effects, then runs cleanups in
// reverse registration order. Calling it more than once is a no-op.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	effects := o.effects
	o.effects = nil
	for _, e := range effects {
		e.dispose()
	}

	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		Untrack(o.rt, cleanups[i])
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}
}

// removeChild removes a child Owner from this Owner's children.
func (o *Owner) removeChild(child *Owner) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}
