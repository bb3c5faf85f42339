// Package selection holds the brand-selection state machine that drives map
// painting. States are immutable snapshots; a Holder owns the one mutable
// reference and swaps whole snapshots.
package selection

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/couchcryptid/zip-coverage/internal/domain"
)

var (
	// ErrBrandHidden is returned when selecting a brand the filter does not show.
	ErrBrandHidden = errors.New("brand is not in the active filter")

	// ErrFilterDisabled is returned by SetFilter in the fixed-brand variant.
	ErrFilterDisabled = errors.New("brand filter is disabled")
)

// Variant describes which optional UI affordances are enabled.
type Variant struct {
	// BrandFilter shows a filter panel; only filtered brands can be selected.
	// When false all brands are always selectable.
	BrandFilter bool
	// ExportPanel enables the brand drawer and PDF export.
	ExportPanel bool
}

// Effect tells the renderer what to do after a transition.
type Effect string

const (
	EffectNone    Effect = "none"
	EffectRepaint Effect = "repaint"
	EffectReset   Effect = "reset"
)

// State is an immutable selection snapshot.
type State struct {
	variant Variant
	active  domain.Brand
	filter  []domain.Brand
}

// New returns the initial state: no brand active and, in the filter variant,
// an empty filter.
func New(v Variant) State {
	return State{variant: v}
}

// Variant returns the UI variant the state was created for.
func (s State) Variant() Variant { return s.variant }

// Active returns the active brand, if any.
func (s State) Active() (domain.Brand, bool) {
	return s.active, s.active != ""
}

// Visible returns the brands the user can currently select.
func (s State) Visible() []domain.Brand {
	if !s.variant.BrandFilter {
		return slices.Clone(domain.Brands)
	}
	return slices.Clone(s.filter)
}

func (s State) visible(b domain.Brand) bool {
	if !s.variant.BrandFilter {
		return true
	}
	return slices.Contains(s.filter, b)
}

// Select toggles brand b. Selecting a different brand (or any brand from the
// idle state) activates it and requests a repaint; selecting the active brand
// again deactivates it and requests a reset.
func (s State) Select(b domain.Brand) (State, Effect, error) {
	if !b.Valid() {
		return s, EffectNone, fmt.Errorf("%w: %q", domain.ErrUnknownBrand, b)
	}
	if !s.visible(b) {
		return s, EffectNone, fmt.Errorf("%w: %q", ErrBrandHidden, b)
	}
	next := s
	if s.active == b {
		next.active = ""
		return next, EffectReset, nil
	}
	next.active = b
	return next, EffectRepaint, nil
}

// SetFilter replaces the filter set. Removing the active brand clears the
// selection and requests a reset.
func (s State) SetFilter(brands []domain.Brand) (State, Effect, error) {
	if !s.variant.BrandFilter {
		return s, EffectNone, ErrFilterDisabled
	}
	for _, b := range brands {
		if !b.Valid() {
			return s, EffectNone, fmt.Errorf("%w: %q", domain.ErrUnknownBrand, b)
		}
	}
	filter := make([]domain.Brand, 0, len(brands))
	for _, b := range domain.Brands {
		if slices.Contains(brands, b) {
			filter = append(filter, b)
		}
	}

	next := s
	next.filter = filter
	if s.active != "" && !slices.Contains(filter, s.active) {
		next.active = ""
		return next, EffectReset, nil
	}
	return next, EffectNone, nil
}

type stateJSON struct {
	Active      domain.Brand   `json:"active,omitempty"`
	Visible     []domain.Brand `json:"visible"`
	BrandFilter bool           `json:"brand_filter"`
	ExportPanel bool           `json:"export_panel"`
}

// MarshalJSON renders the snapshot for API clients.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Active:      s.active,
		Visible:     s.Visible(),
		BrandFilter: s.variant.BrandFilter,
		ExportPanel: s.variant.ExportPanel,
	})
}

// Holder owns the current snapshot.
type Holder struct {
	current atomic.Pointer[State]
}

// NewHolder returns a holder initialized with New(v).
func NewHolder(v Variant) *Holder {
	h := &Holder{}
	s := New(v)
	h.current.Store(&s)
	return h
}

// Load returns the current snapshot.
func (h *Holder) Load() State {
	return *h.current.Load()
}

// Apply runs a transition against the current snapshot and installs the
// result. Concurrent callers retry until their transition applies to the
// snapshot it was computed from. Failed transitions leave the state unchanged.
func (h *Holder) Apply(transition func(State) (State, Effect, error)) (State, Effect, error) {
	for {
		cur := h.current.Load()
		next, effect, err := transition(*cur)
		if err != nil {
			return *cur, EffectNone, err
		}
		if h.current.CompareAndSwap(cur, &next) {
			return next, effect, nil
		}
	}
}
