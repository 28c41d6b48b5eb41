package reactive

import (
	"errors"
	"testing"
	"time"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// TestDiamondDependency documents the synchronous cascade: D sees a stale C
// on the first pass and runs once per path from A.
func TestDiamondDependency(t *testing.T) {
	rt := NewRuntime()
	a := NewSignal(rt, 1)
	b := NewMemo(rt, func(int) int { return a.Get() * 2 }, 0)
	c := NewMemo(rt, func(int) int { return a.Get() + 10 }, 0)

	type obs struct{ b, c int }
	var seen []obs
	CreateEffect(rt, func() {
		seen = append(seen, obs{b.Get(), c.Get()})
	})

	a.Set(2)

	want := []obs{
		{2, 11}, // creation
		{4, 11}, // b updated first, c not yet
		{4, 12}, // c updated
	}
	if len(seen) != len(want) {
		t.Fatalf("expected %d runs of D, got %d: %v", len(want), len(seen), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("run %d: expected %+v, got %+v", i, want[i], seen[i])
		}
	}

	last := seen[len(seen)-1]
	if last.b != b.Peek() || last.c != c.Peek() {
		t.Errorf("final run should observe fully updated values, got %+v", last)
	}
}

func TestDiamondWithEffects(t *testing.T) {
	rt := NewRuntime()
	a := NewSignal(rt, 0)
	bOut := NewSignal(rt, 0)
	cOut := NewSignal(rt, 0)
	dRuns := 0

	CreateEffect(rt, func() { bOut.Set(a.Get() + 1) })
	CreateEffect(rt, func() { cOut.Set(a.Get() + 2) })
	CreateEffect(rt, func() {
		_ = bOut.Get()
		_ = cOut.Get()
		dRuns++
	})

	a.Set(5)
	if dRuns != 3 {
		t.Errorf("expected D to run 1 + 2 times, got %d", dRuns)
	}
	if bOut.Peek() != 6 || cOut.Peek() != 7 {
		t.Errorf("expected 6 and 7, got %d and %d", bOut.Peek(), cOut.Peek())
	}
}

func TestIndependentRuntimes(t *testing.T) {
	rt1 := NewRuntime()
	rt2 := NewRuntime()

	s1 := NewSignal(rt1, 0)
	s2 := NewSignal(rt2, 0)

	runs := 0
	CreateEffect(rt1, func() {
		// s2 belongs to another runtime: reading it here is not tracked.
		_ = s1.Get()
		_ = s2.Get()
		runs++
	})

	s2.Set(1)
	if runs != 1 {
		t.Errorf("a signal of rt2 must not notify an effect of rt1, got %d runs", runs)
	}
	s1.Set(1)
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestMaxDepthGuard(t *testing.T) {
	rt := NewRuntime(WithMaxDepth(8))
	a := NewSignal(rt, 0)
	b := NewSignal(rt, 0)

	// A and B feed each other forever.
	CreateEffect(rt, func() { b.Set(a.Get() + 1) })
	err := Catch(func() {
		CreateEffect(rt, func() { a.Set(b.Get() + 1) })
	})

	if !errors.Is(err, ErrCascadeDepth) {
		t.Fatalf("expected ErrCascadeDepth, got %v", err)
	}
	if !rerrors.HasCode(err, "R001") {
		t.Errorf("expected R001 code, got %v", err)
	}
	if rt.Depth() != 0 || rt.Listener() != 0 {
		t.Errorf("runtime should unwind fully, depth=%d listener=%d", rt.Depth(), rt.Listener())
	}
	if rt.Stats().MaxDepthObserved != 8 {
		t.Errorf("expected max depth 8, got %d", rt.Stats().MaxDepthObserved)
	}
}

func TestMaxDepthAllowsFiniteCascades(t *testing.T) {
	rt := NewRuntime(WithMaxDepth(4))
	a := NewSignal(rt, 0)
	b := NewSignal(rt, 0)
	c := NewSignal(rt, 0)

	CreateEffect(rt, func() { b.Set(a.Get()) })
	CreateEffect(rt, func() { c.Set(b.Get()) })

	if err := Catch(func() { a.Set(1) }); err != nil {
		t.Fatalf("finite cascade should pass, got %v", err)
	}
	if c.Peek() != 1 {
		t.Errorf("expected 1, got %d", c.Peek())
	}
}

func TestUntrack(t *testing.T) {
	rt := NewRuntime()
	tracked := NewSignal(rt, 0)
	ignored := NewSignal(rt, 0)
	runs := 0

	CreateEffect(rt, func() {
		_ = tracked.Get()
		Untrack(rt, func() { _ = ignored.Get() })
		_ = Untracked(rt, ignored.Get)
		runs++
	})

	ignored.Set(1)
	if runs != 1 {
		t.Errorf("untracked read should not subscribe, got %d runs", runs)
	}
	tracked.Set(1)
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

type recordingObserver struct {
	NopObserver
	writes   []bool
	started  []EffectInfo
	finished []bool
	disposed []EffectID
}

func (r *recordingObserver) SignalWritten(_ SignalInfo, changed bool) {
	r.writes = append(r.writes, changed)
}

func (r *recordingObserver) EffectStarted(e EffectInfo) {
	r.started = append(r.started, e)
}

func (r *recordingObserver) EffectFinished(_ EffectInfo, elapsed time.Duration, panicked bool) {
	r.finished = append(r.finished, panicked)
}

func (r *recordingObserver) EffectDisposed(e EffectInfo) {
	r.disposed = append(r.disposed, e.ID)
}

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	rt := NewRuntime(WithObserver(obs))
	s := NewSignal(rt, 0)

	dispose := NewDisposableEffect(rt, func() Cleanup {
		if s.Get() == 2 {
			panic("two")
		}
		return nil
	}, WithEffectName("watcher"))

	s.Set(0)
	s.Set(1)
	_ = Catch(func() { s.Set(2) })
	dispose()

	if len(obs.writes) != 3 || obs.writes[0] || !obs.writes[1] || !obs.writes[2] {
		t.Errorf("unexpected writes %v", obs.writes)
	}
	if len(obs.started) != 3 {
		t.Fatalf("expected 3 runs started, got %d", len(obs.started))
	}
	if obs.started[0].Name != "watcher" || obs.started[0].Kind != KindDisposable {
		t.Errorf("unexpected info %+v", obs.started[0])
	}
	if obs.started[2].Run != 3 || obs.started[2].Depth != 1 {
		t.Errorf("unexpected run info %+v", obs.started[2])
	}
	if len(obs.finished) != 3 || obs.finished[0] || obs.finished[1] || !obs.finished[2] {
		t.Errorf("unexpected finished %v", obs.finished)
	}
	if len(obs.disposed) != 1 {
		t.Errorf("expected 1 disposal, got %v", obs.disposed)
	}
}

func TestStats(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)
	m := NewMemo(rt, func(int) int { return s.Get() + 1 }, 0)
	dispose := NewDisposableEffect(rt, func() Cleanup {
		_ = m.Get()
		return nil
	})

	s.Set(1)
	dispose()

	st := rt.Stats()
	if st.SignalsCreated != 2 {
		t.Errorf("expected 2 signals, got %d", st.SignalsCreated)
	}
	if st.EffectsCreated != 2 || st.EffectsDisposed != 1 || st.ActiveEffects() != 1 {
		t.Errorf("unexpected effect counts %+v", st)
	}
	// memo x2, effect x2
	if st.EffectRuns != 4 {
		t.Errorf("expected 4 runs, got %d", st.EffectRuns)
	}
	if st.MaxDepthObserved != 2 {
		t.Errorf("expected depth 2 (memo inside write, effect inside memo), got %d", st.MaxDepthObserved)
	}
}

func TestParseTrackingMode(t *testing.T) {
	tests := []struct {
		in      string
		want    TrackingMode
		wantErr bool
	}{
		{"", TrackRebuild, false},
		{"rebuild", TrackRebuild, false},
		{"Accumulate", TrackAccumulate, false},
		{" accumulate ", TrackAccumulate, false},
		{"lazy", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTrackingMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTrackingMode(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTrackingMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if TrackAccumulate.String() != "accumulate" || TrackRebuild.String() != "rebuild" {
		t.Error("unexpected TrackingMode strings")
	}
}

func TestCatchNonErrorPanic(t *testing.T) {
	err := Catch(func() { panic(42) })
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != 42 {
		t.Fatalf("expected PanicError(42), got %v", err)
	}
	if !rerrors.HasCode(err, "R004") {
		t.Errorf("expected R004, got %v", err)
	}
	if Catch(func() {}) != nil {
		t.Error("Catch should return nil when fn does not panic")
	}
}
