package models

import (
	"testing"

	"github.com/reviewloop/reviewloop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignPrimaryTarget(t *testing.T) {
	t.Run("FlaggedPrimaryWins", func(t *testing.T) {
		c := &Campaign{Targets: []ReviewTarget{
			{ID: 1},
			{ID: 2, IsPrimary: true},
			{ID: 3},
		}}

		got := c.PrimaryTarget()
		require.NotNil(t, got)
		assert.Equal(t, uint(2), got.ID)
	})

	t.Run("SoleTargetIsPrimary", func(t *testing.T) {
		c := &Campaign{Targets: []ReviewTarget{{ID: 5}}}

		got := c.PrimaryTarget()
		require.NotNil(t, got)
		assert.Equal(t, uint(5), got.ID)
	})

	t.Run("AmbiguousWithoutFlag", func(t *testing.T) {
		c := &Campaign{Targets: []ReviewTarget{{ID: 1}, {ID: 2}}}
		assert.Nil(t, c.PrimaryTarget())
	})

	t.Run("NoTargets", func(t *testing.T) {
		c := &Campaign{}
		assert.Nil(t, c.PrimaryTarget())
	})
}

func TestReviewTargetHasIdentifier(t *testing.T) {
	assert.False(t, (&ReviewTarget{}).HasIdentifier())
	assert.True(t, (&ReviewTarget{ASIN: utils.ToPtr("B0ABCDEFGH")}).HasIdentifier())
	assert.True(t, (&ReviewTarget{ItemID: utils.ToPtr("12345")}).HasIdentifier())
	assert.True(t, (&ReviewTarget{PlaceID: utils.ToPtr("place")}).HasIdentifier())
	assert.True(t, (&ReviewTarget{URL: utils.ToPtr("https://example.com")}).HasIdentifier())
}
