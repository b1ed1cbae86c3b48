package flatfiles

import (
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/table"
)

// Schema maps column names onto their types. Columns absent from a schema are
// decoded as strings.
type Schema map[string]table.ColumnType

// Columns published in the aggregate files (day and minute bars).
var aggregateSchema = Schema{
	"ticker":       table.ColumnString,
	"volume":       table.ColumnFloat64,
	"open":         table.ColumnFloat64,
	"close":        table.ColumnFloat64,
	"high":         table.ColumnFloat64,
	"low":          table.ColumnFloat64,
	"window_start": table.ColumnInt64,
	"transactions": table.ColumnInt64,
}

var tradeSchema = Schema{
	"ticker":                table.ColumnString,
	"conditions":            table.ColumnString,
	"correction":            table.ColumnInt64,
	"exchange":              table.ColumnInt64,
	"id":                    table.ColumnString,
	"participant_timestamp": table.ColumnInt64,
	"price":                 table.ColumnFloat64,
	"sequence_number":       table.ColumnInt64,
	"sip_timestamp":         table.ColumnInt64,
	"size":                  table.ColumnFloat64,
	"tape":                  table.ColumnInt64,
	"trf_id":                table.ColumnInt64,
	"trf_timestamp":         table.ColumnInt64,
}

var quoteSchema = Schema{
	"ticker":                table.ColumnString,
	"ask_exchange":          table.ColumnInt64,
	"ask_price":             table.ColumnFloat64,
	"ask_size":              table.ColumnFloat64,
	"bid_exchange":          table.ColumnInt64,
	"bid_price":             table.ColumnFloat64,
	"bid_size":              table.ColumnFloat64,
	"conditions":            table.ColumnString,
	"indicators":            table.ColumnString,
	"participant_timestamp": table.ColumnInt64,
	"sequence_number":       table.ColumnInt64,
	"sip_timestamp":         table.ColumnInt64,
	"tape":                  table.ColumnInt64,
	"trf_timestamp":         table.ColumnInt64,
}

// Default column order used when an empty table has to be produced.
var (
	aggregateColumns = []string{"ticker", "volume", "open", "close", "high", "low", "window_start", "transactions"}
	tradeColumns     = []string{"ticker", "conditions", "correction", "exchange", "participant_timestamp", "price", "sip_timestamp", "size"}
	quoteColumns     = []string{"ticker", "ask_exchange", "ask_price", "ask_size", "bid_exchange", "bid_price", "bid_size", "sequence_number", "sip_timestamp"}
)

// SchemaFor returns the column schema of an endpoint.
func SchemaFor(endpoint Endpoint) Schema {
	switch endpoint {
	case EndpointTrades:
		return tradeSchema
	case EndpointQuotes:
		return quoteSchema
	default:
		return aggregateSchema
	}
}

// TimestampSource is the epoch-nanosecond column Clean converts into a timestamp.
func TimestampSource(endpoint Endpoint) string {
	switch endpoint {
	case EndpointTrades, EndpointQuotes:
		return "sip_timestamp"
	default:
		return "window_start"
	}
}

// EmptyTable returns a table with the endpoint's default columns and no rows.
func EmptyTable(endpoint Endpoint) *table.Table {
	var names []string

	switch endpoint {
	case EndpointTrades:
		names = tradeColumns
	case EndpointQuotes:
		names = quoteColumns
	default:
		names = aggregateColumns
	}

	schema := SchemaFor(endpoint)
	columns := make([]table.Column, len(names))

	for i, name := range names {
		columns[i] = table.Column{Name: name, Type: schema.Type(name)}
	}

	return table.New(columns)
}

// Type returns the type of a column, defaulting to string.
func (s Schema) Type(name string) table.ColumnType {
	if t, ok := s[name]; ok {
		return t
	}

	return table.ColumnString
}
