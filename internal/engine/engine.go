// Package engine ties the catalog, segment storage, and explosion kernels
// into the runtime's execution service.
package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/diana-hep/femtocode/internal/column"
	"github.com/diana-hep/femtocode/internal/kernel"
	"github.com/diana-hep/femtocode/internal/repository"
	"github.com/diana-hep/femtocode/internal/storage"
	"github.com/diana-hep/femtocode/pkg/config"
	apperr "github.com/diana-hep/femtocode/pkg/errors"
	"github.com/diana-hep/femtocode/pkg/model"
	"github.com/diana-hep/femtocode/pkg/parallel"
	"github.com/diana-hep/femtocode/pkg/telemetry"
	"github.com/diana-hep/femtocode/pkg/utils"
)

// Engine executes explosions and elementwise computations over registered
// datasets.
type Engine struct {
	cfg     *config.Config
	logger  utils.Logger
	catalog repository.CatalogRepository
	store   storage.Storage
}

// New creates a new Engine.
func New(cfg *config.Config, logger utils.Logger, catalog repository.CatalogRepository, store storage.Storage) *Engine {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Engine{
		cfg:     cfg,
		logger:  logger,
		catalog: catalog,
		store:   store,
	}
}

// shape is one resolved explosion shape: the distinct size columns a request
// touches and the per-level indices into them.
type shape struct {
	columnNames   []string
	levelToColumn []int
	sizeColumns   [][]uint64
}

// columnIndex returns the position of a size column within the shape.
func (s *shape) columnIndex(name string) (int, bool) {
	for i, n := range s.columnNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Explode materializes the jagged shape described by the request and, when
// a data column is named, the broadcast data payload. It runs the kernel
// twice: a dry run to size the output exactly, then the fill; a mismatch
// between the two phases is reported as an internal error.
func (e *Engine) Explode(ctx context.Context, req *model.ExplodeRequest) (*model.ExplodeResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "engine.explode")
	defer span.End()
	span.SetAttributes(
		attribute.String("dataset", req.Dataset),
		attribute.Int("levels", len(req.Levels)),
	)

	started := time.Now()
	timer := utils.NewTimer("explode " + req.Dataset)

	ds, err := e.catalog.GetDataset(ctx, req.Dataset)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeNotFound, "dataset lookup failed", err)
	}

	sh, err := e.resolveShape(ctx, ds, req.Levels)
	if err != nil {
		return nil, err
	}

	result := &model.ExplodeResult{
		Dataset:    ds.Name,
		NumEntries: ds.NumEntries,
	}

	repeats, err := e.explodeShape(timer, ds, sh)
	if err != nil {
		return nil, err
	}
	result.Repeats = repeats
	result.RepeatCount = len(repeats)

	if req.DataColumn != "" {
		items, itemBytes, leaves, err := e.explodeData(ctx, timer, ds, sh, req.DataColumn)
		if err != nil {
			return nil, err
		}
		result.Items = items
		result.ItemBytes = itemBytes
		result.LeafCount = leaves
	}

	result.Elapsed = time.Since(started)
	timer.Report(e.logger)
	e.logger.WithField("dataset", ds.Name).
		Debug("exploded %d repeats, %d leaves in %s", result.RepeatCount, result.LeafCount, result.Elapsed)

	return result, nil
}

// ExplodeMany runs independent explosions concurrently. Each call owns its
// scratch, so requests only share the read-only columns; results come back
// in request order.
func (e *Engine) ExplodeMany(ctx context.Context, reqs []*model.ExplodeRequest) ([]*model.ExplodeResult, error) {
	pool := parallel.NewWorkerPool[*model.ExplodeRequest, *model.ExplodeResult](
		parallel.PoolConfig{MaxWorkers: e.cfg.Engine.MaxWorker},
	)

	taskResults := pool.ExecuteFunc(ctx, reqs, func(ctx context.Context, req *model.ExplodeRequest) (*model.ExplodeResult, error) {
		return e.Explode(ctx, req)
	})

	results := make([]*model.ExplodeResult, len(taskResults))
	var firstErr error
	for i, tr := range taskResults {
		if tr.Error != nil && firstErr == nil {
			firstErr = tr.Error
		}
		results[i] = tr.Result
	}
	return results, firstErr
}

// resolveShape maps level names onto loaded size columns. A size column
// named at several levels is loaded once and consumed serially by the
// kernel.
func (e *Engine) resolveShape(ctx context.Context, ds *model.Dataset, levels []string) (*shape, error) {
	sh := &shape{levelToColumn: make([]int, len(levels))}

	for levi, name := range levels {
		col, ok := ds.Column(name)
		if !ok {
			return nil, apperr.Wrap(apperr.CodeInvalidInput, "unknown size column "+name, nil)
		}
		if col.Role != model.RoleSize {
			return nil, apperr.Wrap(apperr.CodeInvalidInput, "column "+name+" is not a size column", nil)
		}

		idx, seen := sh.columnIndex(name)
		if !seen {
			sizes, err := e.loadSizeColumn(ctx, ds.Name, name)
			if err != nil {
				return nil, err
			}
			idx = len(sh.columnNames)
			sh.columnNames = append(sh.columnNames, name)
			sh.sizeColumns = append(sh.sizeColumns, sizes)
		}
		sh.levelToColumn[levi] = idx
	}

	return sh, nil
}

// explodeShape runs the two-phase shape explosion.
func (e *Engine) explodeShape(timer *utils.Timer, ds *model.Dataset, sh *shape) ([]uint64, error) {
	scratch, err := kernel.NewScratch(len(sh.levelToColumn), len(sh.sizeColumns))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeScratchAlloc, "shape scratch", err)
	}

	phase := timer.StartPhase("shape dry-run")
	dry, err := kernel.ExplodeSizeWith(scratch, int(ds.NumEntries), sh.levelToColumn, sh.sizeColumns, nil)
	phase.Stop()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidInput, "shape explosion", err)
	}

	repeats := make([]uint64, dry)
	phase = timer.StartPhase("shape fill")
	filled, err := kernel.ExplodeSizeWith(scratch, int(ds.NumEntries), sh.levelToColumn, sh.sizeColumns, repeats)
	phase.Stop()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidInput, "shape explosion", err)
	}
	if filled != dry {
		return nil, apperr.Wrap(apperr.CodePhaseLength, "shape explosion", nil)
	}

	return repeats, nil
}

// explodeData runs the two-phase data explosion for the named data column.
func (e *Engine) explodeData(ctx context.Context, timer *utils.Timer, ds *model.Dataset, sh *shape, name string) ([]byte, int, int, error) {
	col, ok := ds.Column(name)
	if !ok {
		return nil, 0, 0, apperr.Wrap(apperr.CodeInvalidInput, "unknown data column "+name, nil)
	}
	if col.Role != model.RoleData {
		return nil, 0, 0, apperr.Wrap(apperr.CodeInvalidInput, "column "+name+" is not a data column", nil)
	}

	data, err := e.loadDataColumn(ctx, ds.Name, col)
	if err != nil {
		return nil, 0, 0, err
	}

	sizeColumns := sh.sizeColumns
	levelToColumn := sh.levelToColumn
	dataIdx := 0

	if col.SizeColumn == "" {
		// Unnested data: one item per record.
		if len(levelToColumn) > 0 {
			return nil, 0, 0, apperr.Wrap(apperr.CodeInvalidInput,
				"data column "+name+" has no size column but levels were given", nil)
		}
		if int64(data.Items()) != ds.NumEntries {
			return nil, 0, 0, apperr.Wrap(apperr.CodeColumnError,
				"data column "+name, column.ErrCountMismatch)
		}
		sizeColumns = [][]uint64{{}}
	} else {
		idx, seen := sh.columnIndex(col.SizeColumn)
		if !seen {
			return nil, 0, 0, apperr.Wrap(apperr.CodeInvalidInput,
				"size column "+col.SizeColumn+" of "+name+" is not among the levels", nil)
		}
		dataIdx = idx

		// One backing item per data-cursor advance of the traversal.
		consumed, err := kernel.DataConsumption(int(ds.NumEntries), levelToColumn, sizeColumns, dataIdx)
		if err != nil {
			return nil, 0, 0, apperr.Wrap(apperr.CodeInvalidInput, "data explosion", err)
		}
		if consumed != data.Items() {
			return nil, 0, 0, apperr.Wrap(apperr.CodeColumnError,
				"data column "+name, column.ErrCountMismatch)
		}
	}

	phase := timer.StartPhase("data dry-run")
	dry, err := kernel.ExplodeDataBytes(int(ds.NumEntries), levelToColumn, sizeColumns, dataIdx, col.ItemBytes, data.Bytes, nil)
	phase.Stop()
	if err != nil {
		return nil, 0, 0, apperr.Wrap(apperr.CodeInvalidInput, "data explosion", err)
	}

	out := make([]byte, dry*col.ItemBytes)
	phase = timer.StartPhase("data fill")
	filled, err := kernel.ExplodeDataBytes(int(ds.NumEntries), levelToColumn, sizeColumns, dataIdx, col.ItemBytes, data.Bytes, out)
	phase.Stop()
	if err != nil {
		return nil, 0, 0, apperr.Wrap(apperr.CodeInvalidInput, "data explosion", err)
	}
	if filled != dry {
		return nil, 0, 0, apperr.Wrap(apperr.CodePhaseLength, "data explosion", nil)
	}

	return out, col.ItemBytes, dry, nil
}

// loadSizeColumn fetches and decodes one size segment.
func (e *Engine) loadSizeColumn(ctx context.Context, dataset, name string) (column.SizeColumn, error) {
	rc, err := e.store.Download(ctx, model.SegmentKey(dataset, name))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorageError, "fetch size column "+name, err)
	}
	defer rc.Close()

	sizes, err := column.ReadSizeColumn(rc)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeColumnError, "decode size column "+name, err)
	}
	return sizes, nil
}

// loadDataColumn fetches and decodes one data segment.
func (e *Engine) loadDataColumn(ctx context.Context, dataset string, col *model.Column) (*column.DataColumn, error) {
	rc, err := e.store.Download(ctx, model.SegmentKey(dataset, col.Name))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStorageError, "fetch data column "+col.Name, err)
	}
	defer rc.Close()

	data, err := column.ReadDataColumn(rc, col.ItemBytes)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeColumnError, "decode data column "+col.Name, err)
	}
	return data, nil
}
