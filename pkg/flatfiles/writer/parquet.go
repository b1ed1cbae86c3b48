package writer

import (
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/rxtech-lab/polygon-flatfiles/internal/logger"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/table"
)

const maxRowsPerRowGroup = 80_000

// ParquetWriter encodes tables with parquet-go, without a database in between.
// Columns are stored in name order since parquet groups are keyed by name.
type ParquetWriter struct {
	logger *logger.Logger
}

// NewParquetWriter creates a new ParquetWriter.
func NewParquetWriter(log *logger.Logger) *ParquetWriter {
	return &ParquetWriter{logger: log}
}

// Name implements TableWriter.
func (w *ParquetWriter) Name() WriterType {
	return WriterTypeParquet
}

// WriteTable implements TableWriter.
func (w *ParquetWriter) WriteTable(t *table.Table, outputPath string) error {
	if t == nil {
		return errors.New(errors.ErrCodeWriteFailed, "cannot write a nil table")
	}

	schema := SchemaOf(t.Columns)
	tmp := tempPath(outputPath)

	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create %s", tmp)
	}

	if err := writeRows(f, schema, t); err != nil {
		var result *multierror.Error
		result = multierror.Append(result, err)

		if closeErr := f.Close(); closeErr != nil {
			result = multierror.Append(result, closeErr)
		}

		_ = os.Remove(tmp)

		return errors.Wrapf(errors.ErrCodeWriteFailed, result.ErrorOrNil(), "failed to write %s", outputPath)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)

		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to close %s", tmp)
	}

	if err := commit(tmp, outputPath); err != nil {
		return err
	}

	w.logger.Debug("Encoded table to parquet",
		zap.String("path", outputPath),
		zap.Int("rows", t.Len()),
		zap.String("writer", string(WriterTypeParquet)),
	)

	return nil
}

func writeRows(f *os.File, schema *parquet.Schema, t *table.Table) error {
	pw := parquet.NewGenericWriter[map[string]any](f,
		schema,
		parquet.Compression(&parquet.Zstd),
		parquet.MaxRowsPerRowGroup(maxRowsPerRowGroup),
	)

	rows := make([]map[string]any, 0, t.Len())

	for _, row := range t.Rows {
		record := make(map[string]any, len(t.Columns))

		for i, column := range t.Columns {
			// Absent keys are written as nulls.
			if row[i] == nil {
				continue
			}

			record[column.Name] = parquetValue(column.Type, row[i])
		}

		rows = append(rows, record)
	}

	if len(rows) > 0 {
		n, err := pw.Write(rows)
		if err != nil {
			_ = pw.Close()

			return err
		}

		if n != len(rows) {
			_ = pw.Close()

			return errors.Newf(errors.ErrCodeWriteFailed, "wrote %d of %d rows", n, len(rows))
		}
	}

	return pw.Close()
}

// SchemaOf builds the parquet schema of a table. Every column is optional.
func SchemaOf(columns []table.Column) *parquet.Schema {
	fields := make(parquet.Group, len(columns))

	for _, column := range columns {
		fields[column.Name] = parquet.Optional(parquetNode(column.Type))
	}

	return parquet.NewSchema("flatfile", fields)
}

func parquetNode(columnType table.ColumnType) parquet.Node {
	switch columnType {
	case table.ColumnInt64:
		return parquet.Int(64)
	case table.ColumnFloat64:
		return parquet.Leaf(parquet.DoubleType)
	case table.ColumnTimestamp:
		return parquet.Timestamp(parquet.Nanosecond)
	default:
		return parquet.String()
	}
}

func parquetValue(columnType table.ColumnType, v any) any {
	if columnType == table.ColumnTimestamp {
		if ts, ok := table.Time(v); ok {
			return ts.UnixNano()
		}
	}

	return v
}
