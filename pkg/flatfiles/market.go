package flatfiles

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
)

// Market is the asset class a flat file covers.
type Market string

const (
	MarketOptions Market = "options"
	MarketStocks  Market = "stocks"
	MarketCrypto  Market = "crypto"
	MarketForex   Market = "forex"
	MarketIndex   Market = "index"
)

// Endpoint is the granularity or type of data in a flat file.
type Endpoint string

const (
	EndpointDay     Endpoint = "day"
	EndpointMinutes Endpoint = "minutes"
	EndpointTrades  Endpoint = "trades"
	EndpointQuotes  Endpoint = "quotes"
)

// AllMarkets lists the markets in a stable order.
var AllMarkets = []Market{MarketOptions, MarketStocks, MarketCrypto, MarketForex, MarketIndex}

// AllEndpoints lists the endpoints in a stable order.
var AllEndpoints = []Endpoint{EndpointDay, EndpointMinutes, EndpointTrades, EndpointQuotes}

// marketPrefixes maps a market onto the top level directory of the bucket.
var marketPrefixes = map[Market]string{
	MarketOptions: "us_options_opra",
	MarketStocks:  "us_stocks_sip",
	MarketCrypto:  "global_crypto",
	MarketForex:   "global_forex",
	MarketIndex:   "us_indices",
}

// endpointDirs maps an endpoint onto the dataset directory below the market.
var endpointDirs = map[Endpoint]string{
	EndpointDay:     "day_aggs_v1",
	EndpointMinutes: "minute_aggs_v1",
	EndpointTrades:  "trades_v1",
	EndpointQuotes:  "quotes_v1",
}

// Pair is a (market, endpoint) combination.
type Pair struct {
	Market   Market
	Endpoint Endpoint
}

func (p Pair) String() string {
	return fmt.Sprintf("%s/%s", p.Market, p.Endpoint)
}

// pathTemplates is the finite table of datasets the vendor publishes. The
// template is expanded with the year, month and ISO date of the file.
var pathTemplates = map[Pair]string{}

func init() {
	offered := map[Market][]Endpoint{
		MarketOptions: {EndpointDay, EndpointMinutes, EndpointTrades, EndpointQuotes},
		MarketStocks:  {EndpointDay, EndpointMinutes, EndpointTrades, EndpointQuotes},
		MarketCrypto:  {EndpointDay, EndpointMinutes, EndpointTrades},
		MarketForex:   {EndpointDay, EndpointMinutes, EndpointQuotes},
		MarketIndex:   {EndpointDay, EndpointMinutes},
	}

	for market, endpoints := range offered {
		for _, endpoint := range endpoints {
			pathTemplates[Pair{Market: market, Endpoint: endpoint}] =
				marketPrefixes[market] + "/" + endpointDirs[endpoint] + "/{year}/{month}/{date}.csv.gz"
		}
	}

	if err := ValidateTaxonomy(); err != nil {
		panic(err)
	}
}

// ValidateTaxonomy checks that every entry of the path table is well formed
// and that no two pairs share a dataset directory.
func ValidateTaxonomy() error {
	seen := make(map[string]Pair, len(pathTemplates))

	for pair, template := range pathTemplates {
		if _, ok := marketPrefixes[pair.Market]; !ok {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "path table references unknown market %q", pair.Market)
		}

		if _, ok := endpointDirs[pair.Endpoint]; !ok {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "path table references unknown endpoint %q", pair.Endpoint)
		}

		for _, placeholder := range []string{"{year}", "{month}", "{date}"} {
			if !strings.Contains(template, placeholder) {
				return errors.Newf(errors.ErrCodeInvalidConfiguration, "template for %s is missing %s", pair, placeholder)
			}
		}

		dir := template[:strings.Index(template, "{year}")]
		if other, dup := seen[dir]; dup {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "%s and %s share dataset directory %s", pair, other, dir)
		}

		seen[dir] = pair
	}

	return nil
}

// ParseMarket maps a case-insensitive market name onto a Market.
func ParseMarket(name string) (Market, error) {
	market := Market(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := marketPrefixes[market]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidMarket, "invalid market %q, expected one of %v", name, AllMarkets)
	}

	return market, nil
}

// ParseEndpoint maps a case-insensitive endpoint name onto an Endpoint.
func ParseEndpoint(name string) (Endpoint, error) {
	endpoint := Endpoint(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := endpointDirs[endpoint]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidEndpoint, "invalid endpoint %q, expected one of %v", name, AllEndpoints)
	}

	return endpoint, nil
}

// Supports reports whether the vendor publishes the endpoint for the market.
func Supports(market Market, endpoint Endpoint) bool {
	_, ok := pathTemplates[Pair{Market: market, Endpoint: endpoint}]

	return ok
}

// CheckPair fails with an InvalidConfiguration error if the pair has no path template.
func CheckPair(market Market, endpoint Endpoint) error {
	if !Supports(market, endpoint) {
		return errors.Newf(errors.ErrCodeUnsupportedPair, "no flat files for market %q and endpoint %q", market, endpoint)
	}

	return nil
}

// SupportedPairs returns every pair of the path table, ordered by market then endpoint.
func SupportedPairs() []Pair {
	pairs := make([]Pair, 0, len(pathTemplates))

	for _, market := range AllMarkets {
		for _, endpoint := range AllEndpoints {
			if Supports(market, endpoint) {
				pairs = append(pairs, Pair{Market: market, Endpoint: endpoint})
			}
		}
	}

	return pairs
}
