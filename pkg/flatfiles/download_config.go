package flatfiles

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
)

// compactDateLayout is the YYYYMMDD form accepted next to DateLayout.
const compactDateLayout = "20060102"

// DownloadConfig is the serializable form of a download request, as read from
// the command line or a JSON document.
type DownloadConfig struct {
	Market     string `json:"market" jsonschema:"title=Market,description=Asset class of the flat files,required,enum=options,enum=stocks,enum=crypto,enum=forex,enum=index" validate:"required,oneof=options stocks crypto forex index"`
	Endpoint   string `json:"endpoint" jsonschema:"title=Endpoint,description=Dataset to download,required,enum=day,enum=minutes,enum=trades,enum=quotes" validate:"required,oneof=day minutes trades quotes"`
	StartDate  string `json:"startDate" jsonschema:"title=Start Date,description=First date to download (YYYY-MM-DD or YYYYMMDD),required" validate:"required"`
	EndDate    string `json:"endDate,omitempty" jsonschema:"title=End Date,description=Last date to download (inclusive). Defaults to the start date"`
	Mode       string `json:"mode,omitempty" jsonschema:"title=Mode,description=Keep the data in memory or write one parquet file per date,enum=in_memory,enum=to_disk,default=to_disk" validate:"omitempty,oneof=in_memory to_disk"`
	OutputDir  string `json:"outputDir,omitempty" jsonschema:"title=Output Directory,description=Existing directory parquet files are written to"`
	Clean      bool   `json:"clean,omitempty" jsonschema:"title=Clean,description=Add a timestamp column in the America/New_York timezone"`
	SkipFailed bool   `json:"skipFailed,omitempty" jsonschema:"title=Skip Failed,description=Record dates failing with transient or format errors and continue"`
	Combine    bool   `json:"combine,omitempty" jsonschema:"title=Combine,description=Also write every downloaded date into one parquet file in the output directory"`
}

// Validate validates the DownloadConfig fields.
func (c *DownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download config", err)
	}

	_, err := c.dateRange()

	return err
}

func (c *DownloadConfig) dateRange() (DateRange, error) {
	start, err := ParseDate(c.StartDate)
	if err != nil {
		return DateRange{}, err
	}

	end := start

	if c.EndDate != "" {
		if end, err = ParseDate(c.EndDate); err != nil {
			return DateRange{}, err
		}
	}

	return DateRange{Start: start, End: end}, nil
}

// ToDownloadParams converts the config into DownloadParams. A missing end date
// selects a single day.
func (c *DownloadConfig) ToDownloadParams() (DownloadParams, error) {
	if err := c.Validate(); err != nil {
		return DownloadParams{}, err
	}

	dates, err := c.dateRange()
	if err != nil {
		return DownloadParams{}, err
	}

	mode := Mode(c.Mode)
	if mode == "" {
		mode = ModeToDisk
	}

	policy := TransientPolicyAbort
	if c.SkipFailed {
		policy = TransientPolicySkip
	}

	return DownloadParams{
		Market:   Market(c.Market),
		Endpoint: Endpoint(c.Endpoint),
		Range:    dates,
		DownloadOptions: DownloadOptions{
			Mode:            mode,
			OutputDir:       c.OutputDir,
			Clean:           c.Clean,
			TransientPolicy: policy,
			Combine:         c.Combine,
		},
	}, nil
}

// ParseDate accepts YYYY-MM-DD and YYYYMMDD.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range []string{DateLayout, compactDateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeInvalidDateRange, "invalid date %q, expected YYYY-MM-DD or YYYYMMDD", value)
}
