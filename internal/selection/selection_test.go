package selection

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/couchcryptid/zip-coverage/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_Toggle(t *testing.T) {
	s := New(Variant{})
	_, ok := s.Active()
	require.False(t, ok, "initial state has no active brand")

	s, effect, err := s.Select(domain.BrandHWC)
	require.NoError(t, err)
	assert.Equal(t, EffectRepaint, effect)
	active, ok := s.Active()
	assert.True(t, ok)
	assert.Equal(t, domain.BrandHWC, active)

	s, effect, err = s.Select(domain.BrandMSE)
	require.NoError(t, err)
	assert.Equal(t, EffectRepaint, effect)
	active, _ = s.Active()
	assert.Equal(t, domain.BrandMSE, active)

	s, effect, err = s.Select(domain.BrandMSE)
	require.NoError(t, err)
	assert.Equal(t, EffectReset, effect)
	_, ok = s.Active()
	assert.False(t, ok)
}

func TestSelect_SnapshotsAreImmutable(t *testing.T) {
	idle := New(Variant{})
	active, _, err := idle.Select(domain.BrandTCA)
	require.NoError(t, err)

	_, ok := idle.Active()
	assert.False(t, ok, "original snapshot must not change")
	b, _ := active.Active()
	assert.Equal(t, domain.BrandTCA, b)
}

func TestSelect_UnknownBrand(t *testing.T) {
	s := New(Variant{})
	next, effect, err := s.Select("xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownBrand))
	assert.Equal(t, EffectNone, effect)
	assert.Equal(t, s, next)
}

func TestFixedVariant(t *testing.T) {
	s := New(Variant{})
	assert.Equal(t, domain.Brands, s.Visible())

	_, _, err := s.SetFilter([]domain.Brand{domain.BrandHWC})
	assert.True(t, errors.Is(err, ErrFilterDisabled))
}

func TestFilterVariant(t *testing.T) {
	s := New(Variant{BrandFilter: true})
	assert.Empty(t, s.Visible())

	_, _, err := s.Select(domain.BrandHWC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBrandHidden))

	s, effect, err := s.SetFilter([]domain.Brand{domain.BrandTCA, domain.BrandHWC})
	require.NoError(t, err)
	assert.Equal(t, EffectNone, effect)
	assert.Equal(t, []domain.Brand{domain.BrandHWC, domain.BrandTCA}, s.Visible(), "filter kept in catalog order")

	s, effect, err = s.Select(domain.BrandHWC)
	require.NoError(t, err)
	assert.Equal(t, EffectRepaint, effect)

	s, effect, err = s.SetFilter([]domain.Brand{domain.BrandHWC, domain.BrandMSQ})
	require.NoError(t, err)
	assert.Equal(t, EffectNone, effect, "active brand still visible")

	s, effect, err = s.SetFilter([]domain.Brand{domain.BrandMSQ})
	require.NoError(t, err)
	assert.Equal(t, EffectReset, effect)
	_, ok := s.Active()
	assert.False(t, ok)

	_, _, err = s.SetFilter([]domain.Brand{"xyz"})
	assert.True(t, errors.Is(err, domain.ErrUnknownBrand))
}

func TestState_MarshalJSON(t *testing.T) {
	s, _, err := New(Variant{ExportPanel: true}).Select(domain.BrandMSQ)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"active":"msq","visible":["hwc","mse","msq","tca"],"brand_filter":false,"export_panel":true}`, string(data))
}

func TestHolder_Apply(t *testing.T) {
	h := NewHolder(Variant{})

	s, effect, err := h.Apply(func(s State) (State, Effect, error) { return s.Select(domain.BrandHWC) })
	require.NoError(t, err)
	assert.Equal(t, EffectRepaint, effect)
	assert.Equal(t, s, h.Load())

	_, _, err = h.Apply(func(s State) (State, Effect, error) { return s.Select("bad") })
	require.Error(t, err)
	active, _ := h.Load().Active()
	assert.Equal(t, domain.BrandHWC, active, "failed transition keeps state")
}

func TestHolder_ConcurrentToggles(t *testing.T) {
	h := NewHolder(Variant{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = h.Apply(func(s State) (State, Effect, error) { return s.Select(domain.BrandMSE) })
		}()
	}
	wg.Wait()

	// An even number of toggles returns to idle.
	_, ok := h.Load().Active()
	assert.False(t, ok)
}
