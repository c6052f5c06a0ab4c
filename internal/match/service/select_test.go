package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-matcher/internal/match/model"
)

func cand(idx, start, length int) model.Candidate {
	return model.Candidate{Product: &model.Product{Index: idx}, Start: start, Length: length}
}

func TestSelectBest(t *testing.T) {
	t.Run("earlier start wins over length", func(t *testing.T) {
		best, ok := SelectBest([]model.Candidate{cand(0, 5, 10), cand(1, 2, 3)})
		require.True(t, ok)
		assert.Equal(t, 1, best.Product.Index)
	})

	t.Run("same start longer wins", func(t *testing.T) {
		best, ok := SelectBest([]model.Candidate{cand(0, 4, 4), cand(1, 4, 8)})
		require.True(t, ok)
		assert.Equal(t, 1, best.Product.Index)
	})

	t.Run("full tie goes to ingestion order", func(t *testing.T) {
		in := []model.Candidate{cand(3, 4, 8), cand(1, 4, 8), cand(2, 4, 8)}
		best, ok := SelectBest(in)
		require.True(t, ok)
		assert.Equal(t, 1, best.Product.Index)
		// вход не переставляется
		assert.Equal(t, 3, in[0].Product.Index)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := SelectBest(nil)
		assert.False(t, ok)
	})
}
