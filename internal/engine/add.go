package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/diana-hep/femtocode/internal/column"
	"github.com/diana-hep/femtocode/internal/kernel"
	apperr "github.com/diana-hep/femtocode/pkg/errors"
	"github.com/diana-hep/femtocode/pkg/model"
	"github.com/diana-hep/femtocode/pkg/parallel"
	"github.com/diana-hep/femtocode/pkg/telemetry"
)

// chunkedAddThreshold is the array length above which elementwise addition
// is split over workers. Output ranges are disjoint, so the result does not
// depend on scheduling.
const chunkedAddThreshold = 1 << 18

// indexRange is one half-open range of a chunked elementwise run.
type indexRange struct{ start, end int }

// Add computes the pairwise sum of two pre-aligned data columns. The output
// is int64 only when both operands are int64; any float operand promotes
// the result to float64 with the integers converted round-to-nearest-even.
func (e *Engine) Add(ctx context.Context, req *model.AddRequest) (*model.AddResult, error) {
	ctx, otelSpan := telemetry.Tracer().Start(ctx, "engine.add")
	defer otelSpan.End()
	otelSpan.SetAttributes(
		attribute.String("dataset", req.Dataset),
		attribute.String("left", req.Left),
		attribute.String("right", req.Right),
	)

	started := time.Now()

	ds, err := e.catalog.GetDataset(ctx, req.Dataset)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeNotFound, "dataset lookup failed", err)
	}

	left, leftKind, err := e.loadNumericColumn(ctx, ds, req.Left)
	if err != nil {
		return nil, err
	}
	right, rightKind, err := e.loadNumericColumn(ctx, ds, req.Right)
	if err != nil {
		return nil, err
	}
	if left.Items() != right.Items() {
		return nil, apperr.Wrap(apperr.CodeInvalidInput,
			"operands are not aligned: "+req.Left+" and "+req.Right, nil)
	}

	result := &model.AddResult{Length: left.Items()}

	switch {
	case leftKind == model.KindInt64 && rightKind == model.KindInt64:
		a, _ := left.Int64s()
		b, _ := right.Int64s()
		out := make([]int64, len(a))
		e.chunked(ctx, len(a), func(s indexRange) {
			kernel.PlusInt64(a[s.start:s.end], b[s.start:s.end], out[s.start:s.end])
		})
		result.Kind = model.KindInt64
		result.Ints = out

	case leftKind == model.KindInt64:
		a, _ := left.Int64s()
		b, _ := right.Float64s()
		out := make([]float64, len(a))
		e.chunked(ctx, len(a), func(s indexRange) {
			kernel.PlusInt64Float64(a[s.start:s.end], b[s.start:s.end], out[s.start:s.end])
		})
		result.Kind = model.KindFloat64
		result.Floats = out

	case rightKind == model.KindInt64:
		a, _ := left.Float64s()
		b, _ := right.Int64s()
		out := make([]float64, len(a))
		e.chunked(ctx, len(a), func(s indexRange) {
			kernel.PlusFloat64Int64(a[s.start:s.end], b[s.start:s.end], out[s.start:s.end])
		})
		result.Kind = model.KindFloat64
		result.Floats = out

	default:
		a, _ := left.Float64s()
		b, _ := right.Float64s()
		out := make([]float64, len(a))
		e.chunked(ctx, len(a), func(s indexRange) {
			kernel.PlusFloat64(a[s.start:s.end], b[s.start:s.end], out[s.start:s.end])
		})
		result.Kind = model.KindFloat64
		result.Floats = out
	}

	result.Elapsed = time.Since(started)
	return result, nil
}

// loadNumericColumn fetches a data column that the addition kernels can
// consume: 8-byte items of a known numeric kind.
func (e *Engine) loadNumericColumn(ctx context.Context, ds *model.Dataset, name string) (*column.DataColumn, model.ItemKind, error) {
	col, ok := ds.Column(name)
	if !ok {
		return nil, 0, apperr.Wrap(apperr.CodeInvalidInput, "unknown column "+name, nil)
	}
	if col.Role != model.RoleData {
		return nil, 0, apperr.Wrap(apperr.CodeInvalidInput, "column "+name+" is not a data column", nil)
	}
	if col.Kind != model.KindInt64 && col.Kind != model.KindFloat64 {
		return nil, 0, apperr.Wrap(apperr.CodeInvalidInput, "column "+name+" is not numeric", nil)
	}
	if col.ItemBytes != 8 {
		return nil, 0, apperr.Wrap(apperr.CodeInvalidInput, "column "+name+" does not hold 8-byte items", nil)
	}

	data, err := e.loadDataColumn(ctx, ds.Name, col)
	if err != nil {
		return nil, 0, err
	}
	return data, col.Kind, nil
}

// chunked runs fn over [0, n) in one piece, or over disjoint worker ranges
// when the array is long.
func (e *Engine) chunked(ctx context.Context, n int, fn func(indexRange)) {
	if n == 0 {
		return
	}
	if n < chunkedAddThreshold {
		fn(indexRange{0, n})
		return
	}

	workers := e.cfg.Engine.MaxWorker
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	var spans []indexRange
	for start := 0; start < n; start += chunk {
		spans = append(spans, indexRange{start, min(start+chunk, n)})
	}

	pool := parallel.NewWorkerPool[indexRange, struct{}](parallel.PoolConfig{MaxWorkers: workers})
	pool.ExecuteFunc(ctx, spans, func(_ context.Context, s indexRange) (struct{}, error) {
		fn(s)
		return struct{}{}, nil
	})
}
