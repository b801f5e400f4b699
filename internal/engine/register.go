package engine

import (
	"context"
	"os"

	apperr "github.com/diana-hep/femtocode/pkg/errors"
	"github.com/diana-hep/femtocode/pkg/model"
)

// RegisterDataset uploads the segment file of every column and records the
// dataset in the catalog. files maps column names to local segment paths.
func (e *Engine) RegisterDataset(ctx context.Context, ds *model.Dataset, files map[string]string) error {
	for i := range ds.Columns {
		col := &ds.Columns[i]

		path, ok := files[col.Name]
		if !ok {
			return apperr.Wrap(apperr.CodeInvalidInput, "no segment file for column "+col.Name, nil)
		}

		info, err := os.Stat(path)
		if err != nil {
			return apperr.Wrap(apperr.CodeInvalidInput, "segment file for "+col.Name, err)
		}
		if info.Size()%int64(col.ItemBytes) != 0 {
			return apperr.Wrap(apperr.CodeColumnError,
				"segment file for "+col.Name+" is not a whole number of items", nil)
		}
		col.Items = info.Size() / int64(col.ItemBytes)

		if err := e.store.UploadFile(ctx, model.SegmentKey(ds.Name, col.Name), path); err != nil {
			return apperr.Wrap(apperr.CodeStorageError, "upload column "+col.Name, err)
		}
	}

	if err := e.catalog.CreateDataset(ctx, ds); err != nil {
		return apperr.Wrap(apperr.CodeCatalogError, "register dataset "+ds.Name, err)
	}

	e.logger.Info("registered dataset %s: %d entries, %d columns", ds.Name, ds.NumEntries, len(ds.Columns))
	return nil
}
