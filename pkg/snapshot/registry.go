package snapshot

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	rerrors "github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// FormatVersion is the version written into every Snapshot.
const FormatVersion = 1

// Snapshot is the serialized state of a Registry.
type Snapshot struct {
	Version int                        `json:"version"`
	TakenAt time.Time                  `json:"taken_at"`
	Values  map[string]json.RawMessage `json:"values"`

	// Types records the Go type of each value for mismatch detection.
	Types map[string]string `json:"types,omitempty"`
}

// Names returns the value names in the snapshot, sorted.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s.Values))
	for name := range s.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type entry struct {
	typeName string
	capture  func() (json.RawMessage, error)

	// decode returns a function that applies the decoded value.
	decode func(json.RawMessage) (func(), error)
}

// Registry maps stable names to signals. It is used from the goroutine that
// owns the signals' runtime.
type Registry struct {
	order   []string
	entries map[string]entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds sig to reg under name. It returns an error if the name is
// empty or already taken.
func Register[T any](reg *Registry, name string, sig *reactive.Signal[T]) error {
	if name == "" {
		return fmt.Errorf("snapshot: empty name")
	}
	if _, exists := reg.entries[name]; exists {
		return fmt.Errorf("snapshot: %q already registered", name)
	}

	reg.entries[name] = entry{
		typeName: reflect.TypeOf((*T)(nil)).Elem().String(),
		capture: func() (json.RawMessage, error) {
			return json.Marshal(sig.Peek())
		},
		decode: func(raw json.RawMessage) (func(), error) {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			return func() { sig.Set(v) }, nil
		},
	}
	reg.order = append(reg.order, name)
	return nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Capture reads every registered signal without subscribing and returns
// the encoded values.
func (r *Registry) Capture() (Snapshot, error) {
	snap := Snapshot{
		Version: FormatVersion,
		TakenAt: time.Now().UTC(),
		Values:  make(map[string]json.RawMessage, len(r.order)),
		Types:   make(map[string]string, len(r.order)),
	}
	for _, name := range r.order {
		e := r.entries[name]
		raw, err := e.capture()
		if err != nil {
			return Snapshot{}, rerrors.New("S081").
				WithDetail(fmt.Sprintf("encoding %q", name)).
				Wrap(err)
		}
		snap.Values[name] = raw
		snap.Types[name] = e.typeName
	}
	return snap, nil
}

// Restore writes the snapshot's values through the registered signals in
// registration order. Every value is decoded before any signal is written,
// so a type mismatch leaves all signals untouched. Names present in only
// one of the registry and the snapshot are skipped.
func (r *Registry) Restore(snap Snapshot) error {
	if snap.Version > FormatVersion {
		return rerrors.New("S080").
			WithDetail(fmt.Sprintf("snapshot version %d is newer than supported version %d", snap.Version, FormatVersion))
	}

	apply := make([]func(), 0, len(r.order))
	for _, name := range r.order {
		raw, ok := snap.Values[name]
		if !ok {
			continue
		}
		e := r.entries[name]
		if recorded, ok := snap.Types[name]; ok && recorded != e.typeName {
			return rerrors.New("S082").
				WithDetail(fmt.Sprintf("%q was saved as %s, registered as %s", name, recorded, e.typeName))
		}
		set, err := e.decode(raw)
		if err != nil {
			return rerrors.New("S082").
				WithDetail(fmt.Sprintf("decoding %q as %s", name, e.typeName)).
				Wrap(err)
		}
		apply = append(apply, set)
	}

	for _, set := range apply {
		set()
	}
	return nil
}
