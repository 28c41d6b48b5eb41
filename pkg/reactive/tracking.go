package reactive

// Listener returns the effect currently tracking dependencies, or zero if
// reads are not being tracked.
func (rt *Runtime) Listener() EffectID {
	return rt.listener
}

// setListener sets the tracking effect and returns the previous one so it
// can be restored. Callers restore with defer so a panicking body cannot
// leave tracking pointed at a finished effect.
func (rt *Runtime) setListener(id EffectID) EffectID {
	old := rt.listener
	rt.listener = id
	return old
}

// Owner returns the owner that will own newly created effects, or nil.
func (rt *Runtime) Owner() *Owner {
	return rt.owner
}

// setOwner sets the current owner and returns the previous one.
func (rt *Runtime) setOwner(o *Owner) *Owner {
	old := rt.owner
	rt.owner = o
	return old
}

// Untrack runs fn with dependency tracking disabled. Signals read inside fn
// do not subscribe the surrounding effect.
func Untrack(rt *Runtime, fn func()) {
	old := rt.setListener(0)
	defer rt.setListener(old)
	fn()
}

// Untracked returns fn's result, read with dependency tracking disabled.
func Untracked[T any](rt *Runtime, fn func() T) T {
	old := rt.setListener(0)
	defer rt.setListener(old)
	return fn()
}
