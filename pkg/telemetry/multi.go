package telemetry

import (
	"time"

	"github.com/vango-dev/reactive/pkg/reactive"
)

type multi []reactive.Observer

// Multi returns an Observer that forwards every callback to each of the
// given observers in order. nil observers are skipped.
func Multi(observers ...reactive.Observer) reactive.Observer {
	list := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

func (m multi) SignalWritten(s reactive.SignalInfo, changed bool) {
	for _, o := range m {
		o.SignalWritten(s, changed)
	}
}

func (m multi) EffectStarted(e reactive.EffectInfo) {
	for _, o := range m {
		o.EffectStarted(e)
	}
}

func (m multi) EffectFinished(e reactive.EffectInfo, elapsed time.Duration, panicked bool) {
	for _, o := range m {
		o.EffectFinished(e, elapsed, panicked)
	}
}

func (m multi) EffectDisposed(e reactive.EffectInfo) {
	for _, o := range m {
		o.EffectDisposed(e)
	}
}
