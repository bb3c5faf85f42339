package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLocation(t *testing.T) {
	for _, q := range []string{"columbus", "Columbus, Ohio", "  COLUMBUS oh"} {
		loc, err := ResolveLocation(q)
		require.NoError(t, err, q)
		assert.Equal(t, Columbus, loc)
	}

	for _, q := range []string{"", "cleveland", "ohio columbus"} {
		_, err := ResolveLocation(q)
		require.Error(t, err, q)
		assert.True(t, errors.Is(err, ErrUnsupportedLocation))
	}
}

func TestSuggestLocations(t *testing.T) {
	assert.Equal(t, []string{"Columbus, Ohio"}, SuggestLocations("Col"))
	assert.Equal(t, []string{"Columbus, Ohio"}, SuggestLocations("columb"))
	assert.Empty(t, SuggestLocations("co"))
	assert.Empty(t, SuggestLocations("dayton"))
}
