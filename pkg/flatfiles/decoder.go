package flatfiles

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/klauspost/compress/gzip"

	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/table"
)

// MarketTimezone is the zone Clean converts vendor timestamps into.
const MarketTimezone = "America/New_York"

// Decoder turns a raw flat file payload into a table.
type Decoder interface {
	Decode(endpoint Endpoint, data []byte) (*table.Table, error)
}

// CSVDecoder decodes gzip compressed (or plain) CSV flat files.
type CSVDecoder struct{}

// NewCSVDecoder returns the decoder used for vendor flat files.
func NewCSVDecoder() *CSVDecoder {
	return &CSVDecoder{}
}

// Decode decompresses the payload if it carries the gzip magic bytes, then
// parses the header and rows. Cells are converted using the endpoint's schema.
func (d *CSVDecoder) Decode(endpoint Endpoint, data []byte) (*table.Table, error) {
	var reader io.Reader = bytes.NewReader(data)

	if isGzip(data) {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecompressFailed, "failed to open gzip stream", err)
		}
		defer gz.Close()

		reader = gz
	}

	csvReader := csv.NewReader(reader)
	csvReader.ReuseRecord = false
	csvReader.FieldsPerRecord = 0

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeMissingHeader, "flat file is empty")
	}

	if err != nil {
		return nil, wrapReadError(err, "failed to read CSV header")
	}

	schema := SchemaFor(endpoint)
	columns := make([]table.Column, len(header))

	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.Newf(errors.ErrCodeMissingHeader, "column %d has no name", i)
		}

		columns[i] = table.Column{Name: name, Type: schema.Type(name)}
	}

	out := table.New(columns)
	line := 1

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}

		line++

		if err != nil {
			return nil, wrapReadError(err, fmt.Sprintf("failed to read CSV row at line %d", line))
		}

		row := make([]any, len(record))
		for i, raw := range record {
			value, err := parseCell(columns[i].Type, raw)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMalformedRow, err,
					"line %d column %q", line, columns[i].Name)
			}

			row[i] = value
		}

		out.Rows = append(out.Rows, row)
	}

	return out, nil
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// wrapReadError separates a corrupt gzip stream from a malformed CSV body.
func wrapReadError(err error, message string) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return errors.Wrap(errors.ErrCodeMalformedRow, message, err)
	}

	return errors.Wrap(errors.ErrCodeDecompressFailed, message, err)
}

func parseCell(columnType table.ColumnType, raw string) (any, error) {
	value := strings.TrimSpace(raw)

	switch columnType {
	case table.ColumnInt64:
		if value == "" {
			return nil, nil
		}

		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i, nil
		}

		// Some datasets print integers in float notation (e.g. 1.0e+09).
		f, err := strconv.ParseFloat(value, 64)
		// float64(math.MaxInt64) rounds up to 2^63, which no int64 can hold.
		if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}

		return int64(f), nil
	case table.ColumnFloat64:
		if value == "" {
			return nil, nil
		}

		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}

		return f, nil
	case table.ColumnTimestamp:
		if value == "" {
			return nil, nil
		}

		t, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return nil, fmt.Errorf("%q is not a timestamp", raw)
		}

		return t, nil
	default:
		return raw, nil
	}
}

// Clean adds a "timestamp" column converted from the endpoint's epoch
// nanosecond column into the market timezone.
func Clean(t *table.Table, endpoint Endpoint) error {
	source := TimestampSource(endpoint)

	idx := t.ColumnIndex(source)
	if idx < 0 {
		return errors.Newf(errors.ErrCodeMissingColumn, "cannot clean %s data without column %q", endpoint, source)
	}

	loc, err := time.LoadLocation(MarketTimezone)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFormat, "failed to load market timezone", err)
	}

	err = t.AddColumn(table.Column{Name: "timestamp", Type: table.ColumnTimestamp}, func(row []any) (any, error) {
		switch v := row[idx].(type) {
		case nil:
			return nil, nil
		case int64:
			return time.Unix(0, v).In(loc), nil
		default:
			return nil, fmt.Errorf("column %q holds %T, expected int64", source, v)
		}
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeFormat, "failed to derive timestamp column", err)
	}

	return nil
}
