package writer

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/rxtech-lab/polygon-flatfiles/internal/logger"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/table"
)

// WriterType selects the parquet backend.
type WriterType string

const (
	// WriterTypeDuckDB loads the table into an in-memory DuckDB and exports it with COPY.
	WriterTypeDuckDB WriterType = "duckdb"
	// WriterTypeParquet encodes the table directly with parquet-go.
	WriterTypeParquet WriterType = "parquet"
)

// TableWriter persists a decoded table to a single parquet file.
type TableWriter interface {
	// Name returns the backend name.
	Name() WriterType
	// WriteTable writes the table to outputPath. The file either appears
	// complete or not at all.
	WriteTable(t *table.Table, outputPath string) error
}

// New returns the writer for the given backend. An empty type selects DuckDB.
func New(writerType WriterType, log *logger.Logger) (TableWriter, error) {
	if log == nil {
		log = logger.NewNop()
	}

	switch writerType {
	case WriterTypeDuckDB, "":
		return NewDuckDBWriter(log), nil
	case WriterTypeParquet:
		return NewParquetWriter(log), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedWriter, "unsupported writer %q", writerType)
	}
}

// tempPath returns a hidden sibling of outputPath so the final rename stays on
// the same file system.
func tempPath(outputPath string) string {
	dir, base := filepath.Split(outputPath)

	return filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")
}

// commit moves a finished temp file into place, removing it on failure.
func commit(tmp, outputPath string) error {
	if err := os.Rename(tmp, outputPath); err != nil {
		_ = os.Remove(tmp)

		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to move %s into place", outputPath)
	}

	return nil
}
