package reactive

import "testing"

func BenchmarkSignalSetNoSubscribers(b *testing.B) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s.Set(i)
	}
}

func BenchmarkSignalSetOneEffect(b *testing.B) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)
	CreateEffect(rt, func() { _ = s.Get() })
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set(i + 1)
	}
}

func BenchmarkMemoChain(b *testing.B) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)
	prev := NewMemo(rt, func(int) int { return s.Get() }, 0)
	for i := 0; i < 9; i++ {
		p := prev
		prev = NewMemo(rt, func(int) int { return p.Get() + 1 }, 0)
	}
	last := prev
	CreateEffect(rt, func() { _ = last.Get() })
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set(i + 1)
	}
}

func BenchmarkFanOut100(b *testing.B) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)
	for i := 0; i < 100; i++ {
		CreateEffect(rt, func() { _ = s.Get() })
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Set(i + 1)
	}
}
