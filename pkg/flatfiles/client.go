package flatfiles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/polygon-flatfiles/internal/logger"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/fetcher"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/table"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/writer"
)

// Mode selects where downloaded dates end up.
type Mode string

const (
	// ModeInMemory concatenates every date into one table.
	ModeInMemory Mode = "in_memory"
	// ModeToDisk writes one parquet file per date.
	ModeToDisk Mode = "to_disk"
)

// TransientPolicy decides what happens to a date that fails with a transient
// or format error.
type TransientPolicy string

const (
	// TransientPolicyAbort stops the run and returns the error.
	TransientPolicyAbort TransientPolicy = "abort"
	// TransientPolicySkip records the failure and moves on to the next date.
	TransientPolicySkip TransientPolicy = "skip"
)

// OnDownloadProgress is called after every processed date.
type OnDownloadProgress = func(current float64, total float64, message string)

// ClientConfig holds the configuration of the flat file client.
type ClientConfig struct {
	AccessKey    string            `validate:"required"`
	SecretKey    string            `validate:"required"`
	EndpointURL  string            `validate:"omitempty,url"`
	Bucket       string
	Region       string
	WriterType   writer.WriterType `validate:"omitempty,oneof=duckdb parquet"`
	ShowProgress bool
}

// DownloadOptions controls how each fetched date is handled.
type DownloadOptions struct {
	Mode            Mode            `validate:"omitempty,oneof=in_memory to_disk"`
	OutputDir       string
	Clean           bool
	TransientPolicy TransientPolicy `validate:"omitempty,oneof=abort skip"`
	// Combine also writes all downloaded dates, concatenated in date order,
	// to OutputDir/CombinedFilename. It works in both modes.
	Combine bool
}

// DownloadParams holds the parameters of a date range download.
type DownloadParams struct {
	Market   Market   `validate:"required"`
	Endpoint Endpoint `validate:"required"`
	Range    DateRange

	DownloadOptions
}

// DateFailure is a date skipped under TransientPolicySkip.
type DateFailure struct {
	Date time.Time
	Key  string
	Err  error
}

// DownloadResult describes a finished run. Table is set in ModeInMemory or
// with Combine, Files in ModeToDisk. Combined is the path of the combined
// file, empty when nothing was downloaded.
type DownloadResult struct {
	Table    *table.Table
	Files    []string
	Combined string
	Skipped  []time.Time
	Failed   []DateFailure
}

// Client downloads flat files for a market and endpoint over a range of dates.
type Client struct {
	fetcher      fetcher.ObjectFetcher
	decoder      Decoder
	writer       writer.TableWriter
	logger       *logger.Logger
	validate     *validator.Validate
	onProgress   OnDownloadProgress
	showProgress bool
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for run logs.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithWriter replaces the parquet writer.
func WithWriter(w writer.TableWriter) Option {
	return func(c *Client) {
		c.writer = w
	}
}

// WithDecoder replaces the flat file decoder.
func WithDecoder(d Decoder) Option {
	return func(c *Client) {
		c.decoder = d
	}
}

// WithProgressBar renders a terminal progress bar while downloading.
func WithProgressBar(show bool) Option {
	return func(c *Client) {
		c.showProgress = show
	}
}

// NewClient validates the configuration and connects to the vendor's S3 store.
func NewClient(config ClientConfig, onProgress OnDownloadProgress, opts ...Option) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	// Fail fast when the key templates are broken.
	if err := ValidateTaxonomy(); err != nil {
		return nil, err
	}

	c := newClient(nil, onProgress, validate)
	c.showProgress = config.ShowProgress

	for _, opt := range opts {
		opt(c)
	}

	objectFetcher, err := fetcher.NewS3Fetcher(fetcher.S3Config{
		AccessKey:   config.AccessKey,
		SecretKey:   config.SecretKey,
		EndpointURL: config.EndpointURL,
		Bucket:      config.Bucket,
		Region:      config.Region,
	}, c.logger)
	if err != nil {
		return nil, err
	}

	c.fetcher = objectFetcher

	if c.writer == nil {
		c.writer, err = writer.New(config.WriterType, c.logger)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// NewClientWithFetcher builds a client on top of an existing object fetcher.
func NewClientWithFetcher(objectFetcher fetcher.ObjectFetcher, onProgress OnDownloadProgress, opts ...Option) *Client {
	c := newClient(objectFetcher, onProgress, validator.New())

	for _, opt := range opts {
		opt(c)
	}

	if c.writer == nil {
		c.writer = writer.NewDuckDBWriter(c.logger)
	}

	return c
}

func newClient(objectFetcher fetcher.ObjectFetcher, onProgress OnDownloadProgress, validate *validator.Validate) *Client {
	return &Client{
		fetcher:    objectFetcher,
		decoder:    NewCSVDecoder(),
		logger:     logger.NewNop(),
		validate:   validate,
		onProgress: onProgress,
	}
}

// Download fetches every date of params.Range in order. Dates the vendor
// never published are skipped. In ModeToDisk, files written before a fatal
// error stay on disk.
func (c *Client) Download(ctx context.Context, params DownloadParams) (*DownloadResult, error) {
	if err := c.validate.Struct(params); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download parameters", err)
	}

	if err := CheckPair(params.Market, params.Endpoint); err != nil {
		return nil, err
	}

	if err := params.Range.Validate(); err != nil {
		return nil, err
	}

	opts := params.DownloadOptions.withDefaults()
	if opts.writesFiles() {
		if err := checkOutputDir(opts.OutputDir); err != nil {
			return nil, err
		}
	}

	dates := params.Range.Dates()
	keys := make([]ObjectKey, 0, len(dates))

	for _, date := range dates {
		key, err := MapKey(params.Market, params.Endpoint, date)
		if err != nil {
			return nil, err
		}

		keys = append(keys, key)
	}

	return c.run(ctx, params.Market, params.Endpoint, keys, opts)
}

// ListObjects returns the flat files published under a market and endpoint,
// optionally narrowed to a year and month, sorted by date.
func (c *Client) ListObjects(ctx context.Context, params ListParams) ([]ObjectKey, error) {
	prefix, err := Prefix(params.Market, params.Endpoint, params.Year, params.Month)
	if err != nil {
		return nil, err
	}

	objects, err := c.fetcher.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	keys := make([]ObjectKey, 0, len(objects))

	for _, object := range objects {
		date, err := DateFromKey(object.Key)
		if err != nil {
			c.logger.Debug("Ignoring object outside the key layout", zap.String("key", object.Key))

			continue
		}

		keys = append(keys, ObjectKey{
			Remote:        object.Key,
			LocalFilename: LocalFilename(params.Market, params.Endpoint, date),
			Date:          date,
		})
	}

	slices.SortStableFunc(keys, func(a, b ObjectKey) int {
		return a.Date.Compare(b.Date)
	})

	return keys, nil
}

// DownloadListed lists the published files first and downloads exactly those.
func (c *Client) DownloadListed(ctx context.Context, params ListParams, opts DownloadOptions) (*DownloadResult, error) {
	if err := c.validate.Struct(opts); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download options", err)
	}

	if err := CheckPair(params.Market, params.Endpoint); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	if opts.writesFiles() {
		if err := checkOutputDir(opts.OutputDir); err != nil {
			return nil, err
		}
	}

	keys, err := c.ListObjects(ctx, params)
	if err != nil {
		return nil, err
	}

	return c.run(ctx, params.Market, params.Endpoint, keys, opts)
}

func (c *Client) run(ctx context.Context, market Market, endpoint Endpoint, keys []ObjectKey, opts DownloadOptions) (*DownloadResult, error) {
	log := c.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("market", string(market)),
		zap.String("endpoint", string(endpoint)),
		zap.String("mode", string(opts.Mode)),
	)

	log.Info("Starting flat file download", zap.Int("dates", len(keys)))

	result := &DownloadResult{}
	bar := c.newProgressBar(len(keys), fmt.Sprintf("Downloading %s %s", market, endpoint))

	var tables []*table.Table

	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeFetchCancelled, "download cancelled", err)
		}

		day := key.Date.Format(DateLayout)

		tbl, err := c.fetchDate(ctx, endpoint, key, opts.Clean)
		if err != nil {
			switch {
			case errors.IsNotFound(err):
				log.Debug("No flat file published for date", zap.String("date", day), zap.String("key", key.Remote))
				result.Skipped = append(result.Skipped, key.Date)
			case skippable(err, opts.TransientPolicy):
				log.Warn("Skipping failed date", zap.String("date", day), zap.String("key", key.Remote), zap.Error(err))
				result.Failed = append(result.Failed, DateFailure{Date: key.Date, Key: key.Remote, Err: err})
			default:
				log.Error("Download aborted", zap.String("date", day), zap.String("key", key.Remote), zap.Error(err))

				return nil, err
			}

			c.progress(bar, i+1, len(keys), fmt.Sprintf("Skipped %s", day))

			continue
		}

		if opts.Mode == ModeToDisk {
			path := filepath.Join(opts.OutputDir, key.LocalFilename)
			if err := c.writeTable(log, tbl, path); err != nil {
				return nil, err
			}

			result.Files = append(result.Files, path)
			log.Info("Wrote flat file", zap.String("date", day), zap.String("path", path), zap.Int("rows", tbl.Len()))
		} else {
			log.Info("Downloaded flat file", zap.String("date", day), zap.Int("rows", tbl.Len()))
		}

		if opts.Mode == ModeInMemory || opts.Combine {
			tables = append(tables, tbl)
		}

		c.progress(bar, i+1, len(keys), fmt.Sprintf("Downloaded %s", day))
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if opts.Mode == ModeInMemory || opts.Combine {
		combined, err := c.combine(endpoint, tables, opts.Clean)
		if err != nil {
			return nil, err
		}

		result.Table = combined
	}

	if opts.Combine {
		if len(tables) == 0 {
			log.Warn("Nothing downloaded, no combined file written")
		} else {
			path := filepath.Join(opts.OutputDir, CombinedFilename(market, endpoint))
			if err := c.writeTable(log, result.Table, path); err != nil {
				return nil, err
			}

			result.Combined = path
			log.Info("Wrote combined file", zap.String("path", path), zap.Int("rows", result.Table.Len()))
		}
	}

	log.Info("Finished flat file download",
		zap.Int("files", len(result.Files)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)),
	)

	return result, nil
}

// writeTable persists tbl through the configured writer. Every failure is an
// IO error.
func (c *Client) writeTable(log *logger.Logger, tbl *table.Table, path string) error {
	err := c.writer.WriteTable(tbl, path)
	if err == nil {
		return nil
	}

	log.Error("Failed to write flat file", zap.String("path", path), zap.Error(err))

	if !errors.IsIO(err) {
		err = errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write %s", path)
	}

	return err
}

// fetchDate downloads and decodes a single date.
func (c *Client) fetchDate(ctx context.Context, endpoint Endpoint, key ObjectKey, clean bool) (*table.Table, error) {
	data, err := c.fetcher.Fetch(ctx, key.Remote)
	if err != nil {
		if errors.GetKind(err) == errors.KindUnknown {
			err = errors.Wrapf(errors.ErrCodeTransient, err, "fetch %s", key.Remote)
		}

		return nil, err
	}

	tbl, err := c.decoder.Decode(endpoint, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key.Remote, err)
	}

	if clean {
		if err := Clean(tbl, endpoint); err != nil {
			return nil, fmt.Errorf("clean %s: %w", key.Remote, err)
		}
	}

	return tbl, nil
}

func (c *Client) combine(endpoint Endpoint, tables []*table.Table, clean bool) (*table.Table, error) {
	if len(tables) == 0 {
		empty := EmptyTable(endpoint)
		if clean {
			if err := Clean(empty, endpoint); err != nil {
				return nil, err
			}
		}

		return empty, nil
	}

	combined, err := table.Concat(tables...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, "failed to concatenate daily tables", err)
	}

	return combined, nil
}

func (c *Client) newProgressBar(total int, description string) *progressbar.ProgressBar {
	if !c.showProgress || total == 0 {
		return nil
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
	)
}

func (c *Client) progress(bar *progressbar.ProgressBar, current, total int, message string) {
	if bar != nil {
		_ = bar.Add(1)
	}

	if c.onProgress != nil {
		c.onProgress(float64(current), float64(total), message)
	}
}

// skippable reports whether the policy lets the run continue past err.
// Authentication failures and cancellation always abort.
func skippable(err error, policy TransientPolicy) bool {
	if policy != TransientPolicySkip || errors.HasCode(err, errors.ErrCodeFetchCancelled) {
		return false
	}

	return errors.IsTransient(err) || errors.IsFormat(err)
}

func checkOutputDir(dir string) error {
	if dir == "" {
		return errors.New(errors.ErrCodeOutputDirMissing, "output directory is required when writing to disk")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeOutputDirMissing, err, "output directory %s is not accessible", dir)
	}

	if !info.IsDir() {
		return errors.Newf(errors.ErrCodeOutputDirMissing, "output path %s is not a directory", dir)
	}

	return nil
}

func (o DownloadOptions) writesFiles() bool {
	return o.Mode == ModeToDisk || o.Combine
}

func (o DownloadOptions) withDefaults() DownloadOptions {
	if o.Mode == "" {
		o.Mode = ModeInMemory
	}

	if o.TransientPolicy == "" {
		o.TransientPolicy = TransientPolicyAbort
	}

	return o
}
