package writer

import (
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/table"
)

const readBatchSize = 1000

// ReadTable loads a parquet file written by either backend back into a table.
// Columns keep the order stored in the file.
func ReadTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeReadFailed, err, "failed to open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeReadFailed, err, "failed to stat %s", path)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeReadFailed, err, "failed to open parquet file %s", path)
	}

	fields := pf.Schema().Fields()
	columns := make([]table.Column, len(fields))
	units := make([]time.Duration, len(fields))

	for i, field := range fields {
		columns[i] = table.Column{Name: field.Name(), Type: columnType(field)}
		units[i] = timestampUnit(field)
	}

	out := table.New(columns)

	reader := parquet.NewGenericReader[map[string]any](pf, pf.Schema())
	defer reader.Close()

	buf := make([]map[string]any, readBatchSize)

	for {
		for i := range buf {
			buf[i] = make(map[string]any, len(columns))
		}

		n, err := reader.Read(buf)
		for _, record := range buf[:n] {
			row := make([]any, len(columns))
			for i, column := range columns {
				row[i] = tableValue(column.Type, units[i], record[column.Name])
			}

			out.Rows = append(out.Rows, row)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, errors.Wrapf(errors.ErrCodeReadFailed, err, "failed to read rows of %s", path)
		}

		if n == 0 {
			break
		}
	}

	return out, nil
}

func columnType(field parquet.Field) table.ColumnType {
	if timestampUnit(field) != 0 {
		return table.ColumnTimestamp
	}

	switch field.Type().Kind() {
	case parquet.Int32, parquet.Int64:
		return table.ColumnInt64
	case parquet.Float, parquet.Double:
		return table.ColumnFloat64
	default:
		return table.ColumnString
	}
}

// timestampUnit returns the resolution of a timestamp column, or zero for
// any other column.
func timestampUnit(field parquet.Field) time.Duration {
	lt := field.Type().LogicalType()
	if lt == nil || lt.Timestamp == nil {
		return 0
	}

	switch {
	case lt.Timestamp.Unit.Nanos != nil:
		return time.Nanosecond
	case lt.Timestamp.Unit.Millis != nil:
		return time.Millisecond
	default:
		return time.Microsecond
	}
}

func tableValue(columnType table.ColumnType, unit time.Duration, v any) any {
	switch value := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(value)
	case int32:
		return int64(value)
	case float32:
		return float64(value)
	case int64:
		if columnType == table.ColumnTimestamp {
			return time.Unix(0, value*int64(unit)).UTC()
		}

		return value
	case time.Time:
		return value.UTC()
	default:
		return value
	}
}
