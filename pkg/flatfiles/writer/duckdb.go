package writer

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/hashicorp/go-multierror"
	"github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/polygon-flatfiles/internal/logger"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/table"
)

const stagingTable = "flatfile"

// DuckDBWriter stages a table in an in-memory DuckDB database through the
// appender API and exports it with COPY ... (FORMAT PARQUET).
type DuckDBWriter struct {
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBWriter creates a new DuckDBWriter.
func NewDuckDBWriter(log *logger.Logger) *DuckDBWriter {
	return &DuckDBWriter{
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Name implements TableWriter.
func (w *DuckDBWriter) Name() WriterType {
	return WriterTypeDuckDB
}

// WriteTable implements TableWriter.
func (w *DuckDBWriter) WriteTable(t *table.Table, outputPath string) (err error) {
	if t == nil {
		return errors.New(errors.ErrCodeWriteFailed, "cannot write a nil table")
	}

	ctx := context.Background()

	connector, err := duckdb.NewConnector("", nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to open DuckDB database", err)
	}

	// Closing the DB also closes the connector.
	db := sql.OpenDB(connector)
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			err = multierror.Append(err, fmt.Errorf("failed to close db connection: %w", closeErr))
		}
	}()

	conn, err := db.Conn(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to open DuckDB connection", err)
	}

	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = multierror.Append(err, fmt.Errorf("failed to release db connection: %w", closeErr))
		}
	}()

	if _, err = conn.ExecContext(ctx, createTableSQL(t.Columns)); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create staging table", err)
	}

	if err = appendRows(conn, t); err != nil {
		return err
	}

	if err = w.checkStagedRows(ctx, conn, t.Len()); err != nil {
		return err
	}

	tmp := tempPath(outputPath)

	_, err = conn.ExecContext(ctx, fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, stagingTable, escapeLiteral(tmp)))
	if err != nil {
		_ = os.Remove(tmp)

		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to export %s to parquet", outputPath)
	}

	if err = commit(tmp, outputPath); err != nil {
		return err
	}

	w.logger.Debug("Exported table to parquet",
		zap.String("path", outputPath),
		zap.Int("rows", t.Len()),
		zap.String("writer", string(WriterTypeDuckDB)),
	)

	return nil
}

// appendRows bulk loads every row through a DuckDB appender bound to conn.
func appendRows(conn *sql.Conn, t *table.Table) error {
	if t.Len() == 0 {
		return nil
	}

	return conn.Raw(func(driverConn any) (err error) {
		rawConn, ok := driverConn.(driver.Conn)
		if !ok {
			return errors.New(errors.ErrCodeWriteFailed, "DuckDB connection does not expose a driver connection")
		}

		appender, err := duckdb.NewAppenderFromConn(rawConn, "", stagingTable)
		if err != nil {
			return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create appender", err)
		}

		// Close flushes whatever is still buffered.
		defer func() {
			if closeErr := appender.Close(); closeErr != nil {
				err = multierror.Append(err, errors.Wrap(errors.ErrCodeWriteFailed, "failed to flush appender", closeErr))
			}
		}()

		values := make([]driver.Value, len(t.Columns))

		for i, row := range t.Rows {
			for j, v := range row {
				values[j] = v
			}

			if err := appender.AppendRow(values...); err != nil {
				return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to append row %d", i)
			}
		}

		return nil
	})
}

// checkStagedRows compares the staging table's row count with the source table.
func (w *DuckDBWriter) checkStagedRows(ctx context.Context, conn *sql.Conn, want int) error {
	query, args, err := w.sq.Select("count(*)").From(stagingTable).ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to build count query", err)
	}

	var staged int
	if err := conn.QueryRowContext(ctx, query, args...).Scan(&staged); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to count staged rows", err)
	}

	if staged != want {
		return errors.Newf(errors.ErrCodeWriteFailed, "staged %d rows, expected %d", staged, want)
	}

	return nil
}

func createTableSQL(columns []table.Column) string {
	defs := make([]string, len(columns))
	for i, column := range columns {
		defs[i] = quoteIdent(column.Name) + " " + duckDBType(column.Type)
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", stagingTable, strings.Join(defs, ", "))
}

func duckDBType(columnType table.ColumnType) string {
	switch columnType {
	case table.ColumnInt64:
		return "BIGINT"
	case table.ColumnFloat64:
		return "DOUBLE"
	case table.ColumnTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "VARCHAR"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
