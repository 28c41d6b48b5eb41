package reactive

import (
	"testing"
)

func TestSignalGetSet(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 5)

	if s.Get() != 5 {
		t.Errorf("expected 5, got %d", s.Get())
	}

	if got := s.Set(10); got != 10 {
		t.Errorf("Set should return the resolved value, got %d", got)
	}
	if s.Get() != 10 {
		t.Errorf("expected 10, got %d", s.Get())
	}
}

func TestSignalReadOutsideEffectDoesNotSubscribe(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 1)

	_ = s.Get()
	_ = s.Get()

	if len(s.Subscribers()) != 0 {
		t.Errorf("expected no subscribers, got %v", s.Subscribers())
	}
}

func TestSignalUpdate(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 5)

	if got := s.Update(func(n int) int { return n + 1 }); got != 6 {
		t.Errorf("expected Update to return 6, got %d", got)
	}
	if s.Get() != 6 {
		t.Errorf("expected 6, got %d", s.Get())
	}
}

func TestSignalChainedUpdatersComposeLeftToRight(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 5)

	s.Update(func(n int) int { return n + 1 })
	s.Update(func(n int) int { return n * 10 })
	s.Update(func(n int) int { return n - 3 })

	if s.Get() != 57 {
		t.Errorf("expected (5+1)*10-3 = 57, got %d", s.Get())
	}
}

func TestSignalWriteVariants(t *testing.T) {
	rt := NewRuntime()
	get, set := CreateSignal(rt, 0)

	if got := set(Value(3)); got != 3 {
		t.Errorf("Value write returned %d, want 3", got)
	}
	if got := set(Updater(func(n int) int { return n * 2 })); got != 6 {
		t.Errorf("Updater write returned %d, want 6", got)
	}
	if get() != 6 {
		t.Errorf("expected 6, got %d", get())
	}

	if Value(1).IsUpdater() {
		t.Error("Value should not be an updater")
	}
	if !Updater(func(n int) int { return n }).IsUpdater() {
		t.Error("Updater should be an updater")
	}
}

func TestSignalEqualWriteDoesNotNotify(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 5)
	runs := 0

	CreateEffect(rt, func() {
		_ = s.Get()
		runs++
	})

	s.Set(5)
	s.Update(func(n int) int { return n })

	if runs != 1 {
		t.Errorf("expected 1 run (equal writes suppressed), got %d", runs)
	}
	if rt.Stats().SignalWrites != 2 || rt.Stats().Notifications != 0 {
		t.Errorf("unexpected stats %+v", rt.Stats())
	}
}

func TestSignalCustomEquals(t *testing.T) {
	type point struct{ X, Y int }

	rt := NewRuntime()
	s := NewSignal(rt, point{1, 1}, WithEquals(func(a, b point) bool {
		return a.X == b.X
	}))
	runs := 0
	CreateEffect(rt, func() {
		_ = s.Get()
		runs++
	})

	// Same X: treated as unchanged, value keeps its old content.
	s.Set(point{1, 99})
	if runs != 1 {
		t.Errorf("expected 1 run, got %d", runs)
	}
	if s.Peek() != (point{1, 1}) {
		t.Errorf("suppressed write should not change the value, got %+v", s.Peek())
	}

	s.Set(point{2, 2})
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestSignalAlwaysNotify(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0, WithAlwaysNotify[int]())
	runs := 0
	CreateEffect(rt, func() {
		_ = s.Get()
		runs++
	})

	s.Set(0)
	s.Set(0)

	if runs != 3 {
		t.Errorf("expected 3 runs, got %d", runs)
	}
}

func TestSignalLaterOptionWins(t *testing.T) {
	rt := NewRuntime()
	never := func(a, b int) bool { return true }

	s := NewSignal(rt, 0, WithAlwaysNotify[int](), WithEquals(never))
	runs := 0
	CreateEffect(rt, func() {
		_ = s.Get()
		runs++
	})
	s.Set(1)
	if runs != 1 {
		t.Errorf("WithEquals after WithAlwaysNotify should win, got %d runs", runs)
	}
}

func TestSignalUpdaterPanicLeavesValue(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 7)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected updater panic to propagate")
			}
		}()
		s.Update(func(int) int { panic("boom") })
	}()

	if s.Get() != 7 {
		t.Errorf("expected value to stay 7, got %d", s.Get())
	}
}

func TestSignalName(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, "", WithName[string]("title"))
	if s.Name() != "title" {
		t.Errorf("expected name title, got %q", s.Name())
	}
	if s.ID() == 0 {
		t.Error("signal ID should be non-zero")
	}
	other := NewSignal(rt, "")
	if other.ID() == s.ID() {
		t.Error("signal IDs should be unique")
	}
}

func TestSignalNotifiesInSubscriptionOrder(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)
	var order []string

	for _, name := range []string{"a", "b", "c"} {
		name := name
		CreateEffect(rt, func() {
			if s.Get() > 0 {
				order = append(order, name)
			}
		})
	}

	s.Set(1)

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestSignalSnapshotIsolatesNotificationPass(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)
	lateRuns := 0

	// The first subscriber creates a new subscriber of s while s is notifying.
	CreateEffect(rt, func() {
		if s.Get() == 1 {
			CreateEffect(rt, func() {
				_ = s.Get()
				lateRuns++
			})
		}
	})

	s.Set(1)
	// Only the creation run: the new effect was not in the snapshot.
	if lateRuns != 1 {
		t.Errorf("expected 1 run of the late subscriber, got %d", lateRuns)
	}

	s.Set(2)
	if lateRuns != 2 {
		t.Errorf("expected the late subscriber to see the next write, got %d runs", lateRuns)
	}
}

func TestSignalNestedWriteCompletesBeforeOuterContinues(t *testing.T) {
	rt := NewRuntime()
	a := NewSignal(rt, 0)
	b := NewSignal(rt, 0)
	var log []string

	CreateEffect(rt, func() {
		v := a.Get()
		if v > 0 {
			log = append(log, "first")
			b.Set(v)
		}
	})
	CreateEffect(rt, func() {
		if v := b.Get(); v > 0 {
			log = append(log, "b-reader")
		}
	})
	CreateEffect(rt, func() {
		if a.Get() > 0 {
			log = append(log, "second")
		}
	})

	a.Set(1)

	want := []string{"first", "b-reader", "second"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], log[i])
		}
	}
}

func TestSignalPanicAbortsPass(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)
	after := 0

	CreateEffect(rt, func() {
		if s.Get() == 1 {
			panic("subscriber failed")
		}
	})
	CreateEffect(rt, func() {
		_ = s.Get()
		after++
	})

	err := Catch(func() { s.Set(1) })
	if err == nil {
		t.Fatal("expected panic from the first subscriber")
	}
	if after != 1 {
		t.Errorf("later subscribers should not run after a panic, got %d runs", after)
	}
	if s.Peek() != 1 {
		t.Errorf("value should already be stored, got %d", s.Peek())
	}
}
