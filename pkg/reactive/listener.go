package reactive

// EffectID identifies an effect within its Runtime. It is an index into the
// runtime's effect arena and is used as the subscription token stored in
// signal subscriber sets. The zero value means "no effect".
type EffectID uint64

// Cleanup is a function returned by disposable effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// Disposer stops a disposable effect. Calling it more than once is a no-op.
type Disposer func()

// EffectKind distinguishes the flavours of effect kept in the arena.
type EffectKind uint8

const (
	// KindEffect is a fold effect created by NewEffect or CreateEffect.
	KindEffect EffectKind = iota + 1

	// KindDisposable is a cleanup-returning effect created by NewDisposableEffect.
	KindDisposable

	// KindMemo is the effect owned by a Memo.
	KindMemo
)

// String returns a human-readable name for the effect kind.
func (k EffectKind) String() string {
	switch k {
	case KindEffect:
		return "effect"
	case KindDisposable:
		return "disposable"
	case KindMemo:
		return "memo"
	default:
		return "unknown"
	}
}
