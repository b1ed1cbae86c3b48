package flatfiles

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
)

const (
	// DateLayout is the layout used in object keys and local file names.
	DateLayout = "2006-01-02"
	// RemoteSuffix is the extension of every flat file in the bucket.
	RemoteSuffix = ".csv.gz"
	// LocalSuffix is the extension of every file written to disk.
	LocalSuffix = ".parquet"
)

// ObjectKey is the pair of names derived from (market, endpoint, date).
type ObjectKey struct {
	// Remote is the key of the flat file inside the bucket.
	Remote string
	// LocalFilename is the base name of the parquet file written for the date.
	LocalFilename string
	// Date is the calendar date the key was built for.
	Date time.Time
}

// MapKey builds the remote key and local file name of a flat file. It is
// deterministic and only fails for pairs without a path template.
//
// example:
// MapKey(MarketOptions, EndpointTrades, 2024-02-01) =>
// us_options_opra/trades_v1/2024/02/2024-02-01.csv.gz, options_trades_2024-02-01.parquet
func MapKey(market Market, endpoint Endpoint, date time.Time) (ObjectKey, error) {
	template, ok := pathTemplates[Pair{Market: market, Endpoint: endpoint}]
	if !ok {
		return ObjectKey{}, CheckPair(market, endpoint)
	}

	day := Day(date)
	replacer := strings.NewReplacer(
		"{year}", fmt.Sprintf("%04d", day.Year()),
		"{month}", fmt.Sprintf("%02d", int(day.Month())),
		"{date}", day.Format(DateLayout),
	)

	return ObjectKey{
		Remote:        replacer.Replace(template),
		LocalFilename: LocalFilename(market, endpoint, day),
		Date:          day,
	}, nil
}

// LocalFilename names the parquet file for a date, e.g. options_trades_2024-02-01.parquet.
func LocalFilename(market Market, endpoint Endpoint, date time.Time) string {
	return fmt.Sprintf("%s_%s_%s%s", market, endpoint, Day(date).Format(DateLayout), LocalSuffix)
}

// CombinedFilename is the base name of the file holding every downloaded date
// of a run, e.g. options_trades.parquet.
func CombinedFilename(market Market, endpoint Endpoint) string {
	return fmt.Sprintf("%s_%s%s", market, endpoint, LocalSuffix)
}

// Prefix builds a listing prefix for a dataset, optionally narrowed to a year
// and a month. A month without a year is rejected.
func Prefix(market Market, endpoint Endpoint, year optional.Option[int], month optional.Option[int]) (string, error) {
	if err := CheckPair(market, endpoint); err != nil {
		return "", err
	}

	prefix := marketPrefixes[market] + "/" + endpointDirs[endpoint]

	if month.IsSome() && year.IsNone() {
		return "", errors.New(errors.ErrCodeInvalidConfiguration, "month cannot come without a year")
	}

	if year.IsSome() {
		y := year.Unwrap()
		if y < 2000 || y > 2099 {
			return "", errors.Newf(errors.ErrCodeInvalidConfiguration, "year must be between 2000 and 2099, got %d", y)
		}

		prefix = fmt.Sprintf("%s/%04d", prefix, y)
	}

	if month.IsSome() {
		m := month.Unwrap()
		if m < 1 || m > 12 {
			return "", errors.Newf(errors.ErrCodeInvalidConfiguration, "month must be between 1 and 12, got %d", m)
		}

		prefix = fmt.Sprintf("%s/%02d", prefix, m)
	}

	return prefix, nil
}

// ListParams selects the objects returned by a listing.
type ListParams struct {
	Market   Market
	Endpoint Endpoint
	Year     optional.Option[int]
	Month    optional.Option[int]
}

// DateFromKey recovers the date of a remote key from its file name.
func DateFromKey(remote string) (time.Time, error) {
	base := path.Base(remote)
	if !strings.HasSuffix(base, RemoteSuffix) {
		return time.Time{}, errors.Newf(errors.ErrCodeInvalidConfiguration, "key %q is not a flat file", remote)
	}

	date, err := time.Parse(DateLayout, strings.TrimSuffix(base, RemoteSuffix))
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "key %q has no date", remote)
	}

	return date, nil
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is a closed range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range and enforces Start <= End.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}

	return r, nil
}

// Validate fails with an InvalidConfiguration error when the range is empty or reversed.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New(errors.ErrCodeInvalidDateRange, "start and end dates are required")
	}

	if Day(r.Start).After(Day(r.End)) {
		return errors.Newf(errors.ErrCodeInvalidDateRange, "start date %s is after end date %s",
			r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}

	return nil
}

// Days returns the number of dates in the range.
func (r DateRange) Days() int {
	return int(Day(r.End).Sub(Day(r.Start)).Hours()/24) + 1
}

// Dates returns every date of the range in chronological order.
func (r DateRange) Dates() []time.Time {
	if Day(r.Start).After(Day(r.End)) {
		return nil
	}

	dates := make([]time.Time, 0, r.Days())
	for d := Day(r.Start); !d.After(Day(r.End)); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}

	return dates
}
