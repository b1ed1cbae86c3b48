package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/writer"
)

// inspectAction prints the schema and the first rows of a downloaded file.
func inspectAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New(errors.ErrCodeInvalidConfiguration, "inspect needs the path of a parquet file")
	}

	t, err := writer.ReadTable(path)
	if err != nil {
		return err
	}

	limit := int(cmd.Int("rows"))
	if limit < 0 || limit > t.Len() {
		limit = t.Len()
	}

	w := cmd.Root().Writer
	fmt.Fprintf(w, "%s: %d rows\n", path, t.Len())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	header := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		header[i] = fmt.Sprintf("%s (%s)", column.Name, column.Type)
	}

	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range t.Rows[:limit] {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}

		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

func formatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return value.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(value)
	}
}
