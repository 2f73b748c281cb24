package badges

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	badge, err := Get("teacher")
	require.NoError(t, err)
	assert.Equal(t, "Teacher", badge.Name)
	assert.Equal(t, LevelBronze, badge.Level)
	assert.Equal(t, "badge3", badge.CSSClass)

	_, err = Get("no-such-badge")
	assert.ErrorIs(t, err, ErrUnknownBadge)
}

func TestGetOrPlaceholder(t *testing.T) {
	badge := GetOrPlaceholder("guru")
	assert.Equal(t, "Guru", badge.Name)
	assert.Equal(t, LevelGold, badge.Level)

	placeholder := GetOrPlaceholder("retired-badge")
	assert.Equal(t, "retired-badge", placeholder.Slug)
	assert.Empty(t, placeholder.Name)
	assert.Equal(t, LevelBronze, placeholder.Level)
	assert.Equal(t, "badge3", placeholder.CSSClass)
}

func TestIsRegistered(t *testing.T) {
	assert.True(t, IsRegistered("supporter"))
	assert.False(t, IsRegistered("retired-badge"))
}

func TestAll(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)

	assert.True(t, sort.SliceIsSorted(all, func(i, j int) bool {
		return all[i].Slug < all[j].Slug
	}))

	for _, b := range all {
		assert.NotEmpty(t, b.Slug)
		assert.NotEmpty(t, b.Name)
		assert.NotEmpty(t, b.CSSClass)
	}
}

func TestLevelDisplay(t *testing.T) {
	assert.Equal(t, "gold", Badge{Level: LevelGold}.LevelDisplay())
	assert.Equal(t, "silver", Badge{Level: LevelSilver}.LevelDisplay())
	assert.Equal(t, "bronze", Badge{Level: LevelBronze}.LevelDisplay())
}
