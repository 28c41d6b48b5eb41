package live

import (
	"fmt"

	rerrors "github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// HistoryLimit is the number of past counts kept by a Counter.
const HistoryLimit = 10

// Counter is the reactive model served by the live server: a count signal
// and three memos derived from it.
type Counter struct {
	Count *reactive.Signal[int]

	doubled *reactive.Memo[int]
	parity  *reactive.Memo[string]
	history *reactive.Memo[[]int]
}

// NewCounter creates a Counter on rt. It must run on the goroutine that
// owns rt.
func NewCounter(rt *reactive.Runtime) *Counter {
	c := &Counter{
		Count: reactive.NewSignal(rt, 0, reactive.WithName[int]("count")),
	}
	c.doubled = reactive.NewMemo(rt, func(int) int {
		return c.Count.Get() * 2
	}, 0, reactive.WithName[int]("doubled"))

	// parity only changes on odd/even flips, so readers of it skip the
	// writes in between.
	c.parity = reactive.NewMemo(rt, func(string) string {
		if c.Count.Get()%2 == 0 {
			return "even"
		}
		return "odd"
	}, "", reactive.WithName[string]("parity"))

	c.history = reactive.NewMemo(rt, func(prev []int) []int {
		n := c.Count.Get()
		next := make([]int, 0, HistoryLimit)
		if len(prev) >= HistoryLimit {
			prev = prev[len(prev)-HistoryLimit+1:]
		}
		next = append(next, prev...)
		return append(next, n)
	}, nil, reactive.WithName[[]int]("history"))
	return c
}

// Doubled returns the doubled memo.
func (c *Counter) Doubled() *reactive.Memo[int] { return c.doubled }

// Parity returns the parity memo.
func (c *Counter) Parity() *reactive.Memo[string] { return c.parity }

// History returns the history memo.
func (c *Counter) History() *reactive.Memo[[]int] { return c.history }

// State is the JSON view of a Counter.
type State struct {
	Count   int    `json:"count"`
	Doubled int    `json:"doubled"`
	Parity  string `json:"parity"`
	History []int  `json:"history"`
}

// State reads the counter without subscribing.
func (c *Counter) State() State {
	return State{
		Count:   c.Count.Peek(),
		Doubled: c.doubled.Peek(),
		Parity:  c.parity.Peek(),
		History: append([]int(nil), c.history.Peek()...),
	}
}

// Track subscribes the running effect to Count and returns the current
// state. The memos subscribed to Count when the Counter was created, ahead
// of any watcher, so they are already current when a watcher re-runs and
// each change produces exactly one consistent State.
func (c *Counter) Track() State {
	_ = c.Count.Get()
	return c.State()
}

// Op names a counter operation.
type Op string

const (
	OpInc   Op = "inc"
	OpDec   Op = "dec"
	OpReset Op = "reset"
	OpSet   Op = "set"
)

// Message is a client request: {"op":"inc|dec|reset|set","value":n}.
// For inc and dec a zero value means a step of 1.
type Message struct {
	Op    Op  `json:"op"`
	Value int `json:"value,omitempty"`
}

// Apply performs msg on the counter and returns the new count.
func (c *Counter) Apply(msg Message) (int, error) {
	step := msg.Value
	if step == 0 {
		step = 1
	}
	switch msg.Op {
	case OpInc:
		return c.Count.Update(func(n int) int { return n + step }), nil
	case OpDec:
		return c.Count.Update(func(n int) int { return n - step }), nil
	case OpReset:
		return c.Count.Set(0), nil
	case OpSet:
		return c.Count.Set(msg.Value), nil
	default:
		return c.Count.Peek(), rerrors.New("P061").
			WithDetail(fmt.Sprintf("unknown op %q", msg.Op)).
			WithSuggestion("Use one of inc, dec, reset, set")
	}
}
