package mocks

import (
	"bytes"
	"encoding/csv"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/shopspring/decimal"
)

// FileKind selects the column layout of a generated flat file.
type FileKind string

const (
	FileKindAggregates FileKind = "aggregates"
	FileKindTrades     FileKind = "trades"
	FileKindQuotes     FileKind = "quotes"
)

var headers = map[FileKind][]string{
	FileKindAggregates: {"ticker", "volume", "open", "close", "high", "low", "window_start", "transactions"},
	FileKindTrades:     {"ticker", "conditions", "correction", "exchange", "participant_timestamp", "price", "sip_timestamp", "size"},
	FileKindQuotes:     {"ticker", "ask_exchange", "ask_price", "ask_size", "bid_exchange", "bid_price", "bid_size", "sequence_number", "sip_timestamp"},
}

// Header returns the CSV header written for a kind.
func Header(kind FileKind) []string {
	return headers[kind]
}

// DataGenerator generates realistic vendor flat files for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a flat file is generated.
type GeneratorConfig struct {
	// Ticker is written into every row
	Ticker string
	// StartTime is the timestamp of the first row
	StartTime time.Time
	// Interval is the duration between rows
	Interval time.Duration
	// Count is the number of rows
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per row)
	Volatility float64
	// Trend is the drift factor (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average size or volume per row
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a regular session of minute bars on 2024-02-01.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Ticker:         "AAPL",
		StartTime:      time.Date(2024, 2, 1, 14, 30, 0, 0, time.UTC),
		Interval:       time.Minute,
		Count:          390,
		InitialPrice:   185.0,
		Volatility:     0.002,
		Trend:          0.0,
		VolumeBase:     5000,
		VolumeVariance: 0.3,
	}
}

// ForDay returns a copy of config starting at the same time of day on day.
func (c GeneratorConfig) ForDay(day time.Time) GeneratorConfig {
	y, m, d := day.Date()
	h, mi, s := c.StartTime.Clock()
	c.StartTime = time.Date(y, m, d, h, mi, s, 0, time.UTC)

	return c
}

// Generate renders a plain CSV flat file of the given kind. Prices follow a
// geometric Brownian motion.
func (g *DataGenerator) Generate(kind FileKind, config GeneratorConfig) []byte {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	_ = w.Write(Header(kind))

	price := config.InitialPrice
	ts := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := price
		close := g.step(open, config)
		nanos := strconv.FormatInt(ts.UnixNano(), 10)
		volume := g.volume(config)

		var record []string

		switch kind {
		case FileKindTrades:
			record = []string{
				config.Ticker,
				strconv.Itoa(g.rng.Intn(40)),
				"0",
				strconv.Itoa(300 + g.rng.Intn(20)),
				strconv.FormatInt(ts.UnixNano()-int64(g.rng.Intn(1000)), 10),
				formatFloat(close, 4),
				nanos,
				formatFloat(math.Ceil(volume/100), 0),
			}
		case FileKindQuotes:
			spread := math.Max(close*0.0005, 0.01)
			record = []string{
				config.Ticker,
				strconv.Itoa(300 + g.rng.Intn(20)),
				formatFloat(close+spread/2, 4),
				formatFloat(math.Ceil(volume/1000), 0),
				strconv.Itoa(300 + g.rng.Intn(20)),
				formatFloat(close-spread/2, 4),
				formatFloat(math.Ceil(volume/1000), 0),
				strconv.Itoa(i + 1),
				nanos,
			}
		default:
			highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
			lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

			high := math.Max(open, close) + highExtension
			low := math.Min(open, close) - lowExtension
			if low <= 0 {
				low = math.Min(open, close) * 0.99
			}

			record = []string{
				config.Ticker,
				formatFloat(volume, 0),
				formatFloat(open, 4),
				formatFloat(close, 4),
				formatFloat(high, 4),
				formatFloat(low, 4),
				nanos,
				strconv.Itoa(1 + g.rng.Intn(200)),
			}
		}

		_ = w.Write(record)

		price = close
		ts = ts.Add(config.Interval)
	}

	w.Flush()

	return buf.Bytes()
}

// GenerateGzip renders the same file as Generate, gzip compressed the way the
// vendor publishes it.
func (g *DataGenerator) GenerateGzip(kind FileKind, config GeneratorConfig) []byte {
	return Gzip(g.Generate(kind, config))
}

// Gzip compresses data.
func Gzip(data []byte) []byte {
	var buf bytes.Buffer

	w := gzip.NewWriter(&buf)
	_, _ = w.Write(data)
	_ = w.Close()

	return buf.Bytes()
}

// step moves the price one row forward.
func (g *DataGenerator) step(open float64, config GeneratorConfig) float64 {
	// Box-Muller transform for a normal sample
	u1 := g.rng.Float64()
	u2 := g.rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

	drift := 0.0
	if config.Count > 0 {
		drift = config.Trend / float64(config.Count)
	}

	close := open * (1 + config.Volatility*z + drift)
	if close <= 0 {
		close = open * 0.99 // Prevent negative prices
	}

	return close
}

func (g *DataGenerator) volume(config GeneratorConfig) float64 {
	variation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance

	volume := config.VolumeBase * variation
	if volume < 0 {
		volume = config.VolumeBase * 0.1
	}

	return volume
}

// formatFloat renders val the way the vendor prints prices, without binary
// float noise in the last digits.
func formatFloat(val float64, decimals int32) string {
	return decimal.NewFromFloat(val).Round(decimals).String()
}
