package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// demos are scripted walkthroughs printing what each effect observes.
var demos = map[string]struct {
	summary string
	run     func(w io.Writer, rt *reactive.Runtime)
}{
	"counter": {"a signal, a memo and an effect reading both", demoCounter},
	"diamond": {"two memos derived from one signal feeding one effect", demoDiamond},
	"cleanup": {"a disposable effect whose cleanup runs before each re-run", demoCleanup},
}

func demoNames() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func demoCmd() *cobra.Command {
	var (
		tracking string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "demo [counter|diamond|cleanup]",
		Short: "Run a scripted walkthrough of the runtime",
		Long: `Run a scripted walkthrough of the runtime and print each effect run.

Demos:
` + demoList() + `
Examples:
  reactive demo counter
  reactive demo diamond --tracking=accumulate
  reactive demo --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if tracking != "" {
				cfg.Runtime.Tracking = tracking
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			names := args
			if all || len(names) == 0 {
				names = demoNames()
			}
			for _, name := range names {
				rt := reactive.NewRuntime(cfg.RuntimeOptions()...)
				if err := runDemo(cmd.OutOrStdout(), name, rt); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tracking, "tracking", "", "Dependency tracking mode: rebuild or accumulate")
	cmd.Flags().BoolVar(&all, "all", false, "Run every demo")

	return cmd
}

func demoList() string {
	var b strings.Builder
	for _, name := range demoNames() {
		fmt.Fprintf(&b, "  %-8s %s\n", name, demos[name].summary)
	}
	return b.String()
}

// runDemo runs the named demo on rt, converting a panic into an error.
func runDemo(w io.Writer, name string, rt *reactive.Runtime) error {
	d, ok := demos[name]
	if !ok {
		return errors.New("C160").
			WithDetail(fmt.Sprintf("No demo named %q", name)).
			WithSuggestion("Available demos: " + strings.Join(demoNames(), ", "))
	}
	fmt.Fprintf(w, "== %s: %s\n", name, d.summary)
	if err := reactive.Catch(func() { d.run(w, rt) }); err != nil {
		return err
	}
	st := rt.Stats()
	fmt.Fprintf(w, "-- %d effect runs, %d notifications, max depth %d\n\n",
		st.EffectRuns, st.Notifications, st.MaxDepthObserved)
	return nil
}

func demoCounter(w io.Writer, rt *reactive.Runtime) {
	count, setCount := reactive.CreateSignal(rt, 0, reactive.WithName[int]("count"))
	doubled := reactive.CreateMemo(rt, func(int) int { return count() * 2 }, 0)

	reactive.CreateEffect(rt, func() {
		fmt.Fprintf(w, "effect: count=%d doubled=%d\n", count(), doubled())
	})

	step := func(label string, write reactive.Write[int]) {
		fmt.Fprintf(w, "> %s\n", label)
		setCount(write)
	}
	// The effect reads count and doubled, so each change runs it once
	// through the memo and once directly.
	step("set 1", reactive.Value(1))
	step("update n+1", reactive.Updater(func(n int) int { return n + 1 }))
	step("set 2 (equal, suppressed)", reactive.Value(2))
}

func demoDiamond(w io.Writer, rt *reactive.Runtime) {
	a := reactive.NewSignal(rt, 1, reactive.WithName[int]("a"))
	b := reactive.NewMemo(rt, func(int) int { return a.Get() * 2 }, 0, reactive.WithName[int]("b"))
	c := reactive.NewMemo(rt, func(int) int { return a.Get() + 10 }, 0, reactive.WithName[int]("c"))

	d := reactive.NewEffect(rt, func(run int) int {
		run++
		fmt.Fprintf(w, "d run %d: b=%d c=%d\n", run, b.Get(), c.Get())
		return run
	}, 0, reactive.WithEffectName("d"))

	fmt.Fprintln(w, "> set a=2")
	a.Set(2)
	fmt.Fprintf(w, "d ran %d times; the middle run saw c before it updated\n", d.Runs())
}

func demoCleanup(w io.Writer, rt *reactive.Runtime) {
	room := reactive.NewSignal(rt, "lobby", reactive.WithName[string]("room"))

	dispose := reactive.NewDisposableEffect(rt, func() reactive.Cleanup {
		name := room.Get()
		fmt.Fprintf(w, "join %s\n", name)
		return func() { fmt.Fprintf(w, "leave %s\n", name) }
	}, reactive.WithEffectName("presence"))

	fmt.Fprintln(w, "> room=kitchen")
	room.Set("kitchen")
	fmt.Fprintln(w, "> room=kitchen (equal, suppressed)")
	room.Set("kitchen")
	fmt.Fprintln(w, "> dispose")
	dispose()
	fmt.Fprintln(w, "> room=garden (disposed, nothing runs)")
	room.Set("garden")
}
