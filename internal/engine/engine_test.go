package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/diana-hep/femtocode/internal/mock"
	"github.com/diana-hep/femtocode/internal/testutil"
	"github.com/diana-hep/femtocode/pkg/config"
	apperr "github.com/diana-hep/femtocode/pkg/errors"
	"github.com/diana-hep/femtocode/pkg/model"
	"github.com/diana-hep/femtocode/pkg/utils"
)

func testEngine(catalog *mock.MockCatalog, store *mock.MockStorage) *Engine {
	cfg := &config.Config{
		Engine: config.EngineConfig{MaxWorker: 2},
	}
	return New(cfg, &utils.NullLogger{}, catalog, store)
}

// expectSegments registers one Download expectation per segment.
func expectSegments(store *mock.MockStorage, segments map[string][]byte, keys ...string) {
	for _, key := range keys {
		store.ExpectDownload(key, segments[key])
	}
}

func TestEngine_Explode_ShapeOnly(t *testing.T) {
	ds, segments := testutil.NestedDataset()
	catalog := &mock.MockCatalog{}
	store := &mock.MockStorage{}
	catalog.ExpectGetDataset(ds)
	expectSegments(store, segments, model.SegmentKey("nested", "xs@size"))

	e := testEngine(catalog, store)
	result, err := e.Explode(context.Background(), &model.ExplodeRequest{
		Dataset: "nested",
		Levels:  []string{"xs@size", "xs@size"},
	})
	require.NoError(t, err)

	assert.Equal(t, []uint64{0, 1, 1, 2, 0, 2}, result.Repeats)
	assert.Equal(t, 6, result.RepeatCount)
	assert.Zero(t, result.LeafCount)
	assert.Nil(t, result.Items)
	store.AssertExpectations(t)
}

func TestEngine_Explode_WithData(t *testing.T) {
	ds, segments := testutil.NestedDataset()
	catalog := &mock.MockCatalog{}
	store := &mock.MockStorage{}
	catalog.ExpectGetDataset(ds)
	expectSegments(store, segments,
		model.SegmentKey("nested", "xs@size"),
		model.SegmentKey("nested", "xs"))

	e := testEngine(catalog, store)
	result, err := e.Explode(context.Background(), &model.ExplodeRequest{
		Dataset:    "nested",
		Levels:     []string{"xs@size", "xs@size"},
		DataColumn: "xs",
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("abc"), result.Items)
	assert.Equal(t, 3, result.LeafCount)
	assert.Equal(t, 1, result.ItemBytes)
}

func TestEngine_Explode_CartesianBroadcast(t *testing.T) {
	levels := []string{"xs@size", "ys@size"}

	t.Run("data follows outer column", func(t *testing.T) {
		ds, segments := testutil.PairDataset()
		catalog := &mock.MockCatalog{}
		store := &mock.MockStorage{}
		catalog.ExpectGetDataset(ds)
		expectSegments(store, segments,
			model.SegmentKey("pairs", "xs@size"),
			model.SegmentKey("pairs", "ys@size"),
			model.SegmentKey("pairs", "xs"))

		e := testEngine(catalog, store)
		result, err := e.Explode(context.Background(), &model.ExplodeRequest{
			Dataset:    "pairs",
			Levels:     levels,
			DataColumn: "xs",
		})
		require.NoError(t, err)

		assert.Equal(t, []uint64{4, 4, 4, 4, 4}, result.Repeats)
		assert.Equal(t, 16, result.LeafCount)
		assert.Equal(t, testutil.Int64Segment(
			1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4,
		), result.Items)
	})

	t.Run("data follows inner column", func(t *testing.T) {
		ds, segments := testutil.PairDataset()
		catalog := &mock.MockCatalog{}
		store := &mock.MockStorage{}
		catalog.ExpectGetDataset(ds)
		expectSegments(store, segments,
			model.SegmentKey("pairs", "xs@size"),
			model.SegmentKey("pairs", "ys@size"),
			model.SegmentKey("pairs", "ys"))

		e := testEngine(catalog, store)
		result, err := e.Explode(context.Background(), &model.ExplodeRequest{
			Dataset:    "pairs",
			Levels:     levels,
			DataColumn: "ys",
		})
		require.NoError(t, err)

		assert.Equal(t, 16, result.LeafCount)
		assert.Equal(t, testutil.Float64Segment(
			0.5, 0.25, 0.125, 0.0625,
			0.5, 0.25, 0.125, 0.0625,
			0.5, 0.25, 0.125, 0.0625,
			0.5, 0.25, 0.125, 0.0625,
		), result.Items)
	})
}

func TestEngine_Explode_UnnestedData(t *testing.T) {
	ds, segments := testutil.FlatDataset()
	catalog := &mock.MockCatalog{}
	store := &mock.MockStorage{}
	catalog.ExpectGetDataset(ds)
	expectSegments(store, segments, model.SegmentKey("flat", "a"))

	e := testEngine(catalog, store)
	result, err := e.Explode(context.Background(), &model.ExplodeRequest{
		Dataset:    "flat",
		DataColumn: "a",
	})
	require.NoError(t, err)

	assert.Zero(t, result.RepeatCount)
	assert.Equal(t, 3, result.LeafCount)
	assert.Equal(t, testutil.Int64Segment(1, 2, 3), result.Items)
}

func TestEngine_Explode_Errors(t *testing.T) {
	t.Run("unknown dataset", func(t *testing.T) {
		catalog := &mock.MockCatalog{}
		store := &mock.MockStorage{}
		catalog.On("GetDataset", tmock.Anything, "ghost").Return(nil, errors.New("no such dataset"))

		e := testEngine(catalog, store)
		_, err := e.Explode(context.Background(), &model.ExplodeRequest{Dataset: "ghost"})
		assert.Equal(t, apperr.CodeNotFound, apperr.GetErrorCode(err))
	})

	t.Run("unknown level column", func(t *testing.T) {
		ds, _ := testutil.NestedDataset()
		catalog := &mock.MockCatalog{}
		store := &mock.MockStorage{}
		catalog.ExpectGetDataset(ds)

		e := testEngine(catalog, store)
		_, err := e.Explode(context.Background(), &model.ExplodeRequest{
			Dataset: "nested",
			Levels:  []string{"bogus@size"},
		})
		assert.Equal(t, apperr.CodeInvalidInput, apperr.GetErrorCode(err))
	})

	t.Run("data column used as level", func(t *testing.T) {
		ds, _ := testutil.NestedDataset()
		catalog := &mock.MockCatalog{}
		store := &mock.MockStorage{}
		catalog.ExpectGetDataset(ds)

		e := testEngine(catalog, store)
		_, err := e.Explode(context.Background(), &model.ExplodeRequest{
			Dataset: "nested",
			Levels:  []string{"xs"},
		})
		assert.Equal(t, apperr.CodeInvalidInput, apperr.GetErrorCode(err))
	})

	t.Run("data column off the level map", func(t *testing.T) {
		ds, segments := testutil.PairDataset()
		catalog := &mock.MockCatalog{}
		store := &mock.MockStorage{}
		catalog.ExpectGetDataset(ds)
		expectSegments(store, segments, model.SegmentKey("pairs", "xs@size"))
		expectSegments(store, segments, model.SegmentKey("pairs", "ys"))

		e := testEngine(catalog, store)
		_, err := e.Explode(context.Background(), &model.ExplodeRequest{
			Dataset:    "pairs",
			Levels:     []string{"xs@size"},
			DataColumn: "ys",
		})
		assert.Equal(t, apperr.CodeInvalidInput, apperr.GetErrorCode(err))
	})

	t.Run("data shorter than its size column promises", func(t *testing.T) {
		ds, segments := testutil.NestedDataset()
		segments[model.SegmentKey("nested", "xs")] = []byte("ab") // one item short
		catalog := &mock.MockCatalog{}
		store := &mock.MockStorage{}
		catalog.ExpectGetDataset(ds)
		expectSegments(store, segments,
			model.SegmentKey("nested", "xs@size"),
			model.SegmentKey("nested", "xs"))

		e := testEngine(catalog, store)
		_, err := e.Explode(context.Background(), &model.ExplodeRequest{
			Dataset:    "nested",
			Levels:     []string{"xs@size", "xs@size"},
			DataColumn: "xs",
		})
		assert.Equal(t, apperr.CodeColumnError, apperr.GetErrorCode(err))
	})
}

func TestEngine_ExplodeMany(t *testing.T) {
	ds, segments := testutil.NestedDataset()
	catalog := &mock.MockCatalog{}
	store := &mock.MockStorage{}
	catalog.ExpectGetDataset(ds)
	// Two independent runs; each loads its own copy of the size column.
	expectSegments(store, segments, model.SegmentKey("nested", "xs@size"))
	expectSegments(store, segments, model.SegmentKey("nested", "xs@size"))

	e := testEngine(catalog, store)
	reqs := []*model.ExplodeRequest{
		{Dataset: "nested", Levels: []string{"xs@size", "xs@size"}},
		{Dataset: "nested", Levels: []string{"xs@size", "xs@size"}},
	}

	results, err := e.ExplodeMany(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, results[0].Repeats, results[1].Repeats)
}

func TestEngine_Add(t *testing.T) {
	t.Run("int plus int", func(t *testing.T) {
		ds, segments := testutil.FlatDataset()
		catalog := &mock.MockCatalog{}
		store := &mock.MockStorage{}
		catalog.ExpectGetDataset(ds)
		expectSegments(store, segments,
			model.SegmentKey("flat", "a"),
			model.SegmentKey("flat", "b"))

		e := testEngine(catalog, store)
		result, err := e.Add(context.Background(), &model.AddRequest{
			Dataset: "flat", Left: "a", Right: "b",
		})
		require.NoError(t, err)
		assert.Equal(t, model.KindInt64, result.Kind)
		assert.Equal(t, []int64{11, 22, 33}, result.Ints)
	})

	t.Run("int plus float promotes", func(t *testing.T) {
		ds, segments := testutil.FlatDataset()
		catalog := &mock.MockCatalog{}
		store := &mock.MockStorage{}
		catalog.ExpectGetDataset(ds)
		expectSegments(store, segments,
			model.SegmentKey("flat", "a"),
			model.SegmentKey("flat", "c"))

		e := testEngine(catalog, store)
		result, err := e.Add(context.Background(), &model.AddRequest{
			Dataset: "flat", Left: "a", Right: "c",
		})
		require.NoError(t, err)
		assert.Equal(t, model.KindFloat64, result.Kind)
		assert.Equal(t, []float64{1.5, 2.25, 3.125}, result.Floats)
	})

	t.Run("misaligned operands", func(t *testing.T) {
		ds, segments := testutil.FlatDataset()
		segments[model.SegmentKey("flat", "b")] = testutil.Int64Segment(1, 2)
		ds.Columns[1].Items = 2
		catalog := &mock.MockCatalog{}
		store := &mock.MockStorage{}
		catalog.ExpectGetDataset(ds)
		expectSegments(store, segments,
			model.SegmentKey("flat", "a"),
			model.SegmentKey("flat", "b"))

		e := testEngine(catalog, store)
		_, err := e.Add(context.Background(), &model.AddRequest{
			Dataset: "flat", Left: "a", Right: "b",
		})
		assert.Equal(t, apperr.CodeInvalidInput, apperr.GetErrorCode(err))
	})

	t.Run("non numeric operand", func(t *testing.T) {
		ds, _ := testutil.NestedDataset()
		catalog := &mock.MockCatalog{}
		store := &mock.MockStorage{}
		catalog.ExpectGetDataset(ds)

		e := testEngine(catalog, store)
		_, err := e.Add(context.Background(), &model.AddRequest{
			Dataset: "nested", Left: "xs", Right: "xs",
		})
		assert.Equal(t, apperr.CodeInvalidInput, apperr.GetErrorCode(err))
	})
}
