package runstore

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-matcher/internal/match/model"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func sampleResult() *model.Result {
	return &model.Result{
		Stats: model.Stats{Listings: 3, Matched: 1, UnknownManufacturer: 1, UnknownModel: 1},
		Products: []model.ProductResult{
			{ProductName: "Sony_DSC-W300", Listings: []json.RawMessage{json.RawMessage(`{"title":"sony dsc-w300","price":"199.99"}`)}},
			{ProductName: "Canon_EOS_5D", Listings: []json.RawMessage{}},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	res := sampleResult()
	id, err := s.Save(res)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, res.RunID)
	assert.False(t, res.CreatedAt.IsZero())

	got, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, id, got.RunID)
	assert.Equal(t, res.Stats, got.Stats)
	require.Len(t, got.Products, 2)
	assert.Equal(t, "Sony_DSC-W300", got.Products[0].ProductName)
	assert.JSONEq(t, `{"title":"sony dsc-w300","price":"199.99"}`, string(got.Products[0].Listings[0]))
}

func TestLoadMissing(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Load("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrRunNotFound))
}

func TestListOrderedByCreation(t *testing.T) {
	s, _ := newTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := sampleResult()
	second.RunID = "b"
	second.CreatedAt = base.Add(time.Hour)
	first := sampleResult()
	first.RunID = "z"
	first.CreatedAt = base

	_, err := s.Save(second)
	require.NoError(t, err)
	_, err = s.Save(first)
	require.NoError(t, err)

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "z", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.Equal(t, 1, list[0].Stats.Matched)
}

func TestReopenKeepsRuns(t *testing.T) {
	s, path := newTestStore(t)
	id, err := s.Save(sampleResult())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	_, err = s2.Load(id)
	require.NoError(t, err)
}
