package flatfiles

import (
	"context"
	goerrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/polygon-flatfiles/mocks"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/fetcher"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/table"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/writer"
)

// fakeFetcher serves objects from memory. Keys without an object or an error
// are reported as not found, like dates the vendor never published.
type fakeFetcher struct {
	mu      sync.Mutex
	objects map[string][]byte
	errs    map[string]error
	fetched []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		objects: map[string][]byte{},
		errs:    map[string]error{},
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetched = append(f.fetched, key)

	if err, ok := f.errs[key]; ok {
		return nil, err
	}

	data, ok := f.objects[key]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeNotFound, "%s: object not found", key)
	}

	return data, nil
}

func (f *fakeFetcher) List(_ context.Context, prefix string) ([]fetcher.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var objects []fetcher.ObjectInfo

	for key, data := range f.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, fetcher.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}

	return objects, nil
}

func (f *fakeFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.fetched...)
}

type ClientTestSuite struct {
	suite.Suite
	fetcher   *fakeFetcher
	generator *mocks.DataGenerator
	outputDir string
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (suite *ClientTestSuite) SetupTest() {
	suite.fetcher = newFakeFetcher()
	suite.generator = mocks.NewDataGenerator(42)
	suite.outputDir = suite.T().TempDir()
}

// publish stores a generated flat file for the date and returns its key.
func (suite *ClientTestSuite) publish(market Market, endpoint Endpoint, day time.Time, ticker string, rows int) string {
	key, err := MapKey(market, endpoint, day)
	suite.Require().NoError(err)

	kind := mocks.FileKindAggregates

	switch endpoint {
	case EndpointTrades:
		kind = mocks.FileKindTrades
	case EndpointQuotes:
		kind = mocks.FileKindQuotes
	}

	config := mocks.DefaultConfig().ForDay(day)
	config.Ticker = ticker
	config.Count = rows

	suite.fetcher.objects[key.Remote] = suite.generator.GenerateGzip(kind, config)

	return key.Remote
}

func (suite *ClientTestSuite) optionTrades(start, end time.Time, opts DownloadOptions) DownloadParams {
	return DownloadParams{
		Market:          MarketOptions,
		Endpoint:        EndpointTrades,
		Range:           DateRange{Start: start, End: end},
		DownloadOptions: opts,
	}
}

func (suite *ClientTestSuite) outputFiles() []string {
	entries, err := os.ReadDir(suite.outputDir)
	suite.Require().NoError(err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}

func (suite *ClientTestSuite) TestDownloadInMemoryKeepsDateOrder() {
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 2), "O:SPY240202C00480000", 2)
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 1), "O:SPY240201C00480000", 3)

	client := NewClientWithFetcher(suite.fetcher, nil)

	result, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 2), DownloadOptions{}))
	suite.Require().NoError(err)
	suite.Require().NotNil(result.Table)
	suite.Equal(5, result.Table.Len())
	suite.Empty(result.Files)
	suite.Empty(result.Skipped)

	for i := 0; i < 3; i++ {
		ticker, _ := result.Table.Value(i, "ticker")
		suite.Equal("O:SPY240201C00480000", ticker)
	}

	for i := 3; i < 5; i++ {
		ticker, _ := result.Table.Value(i, "ticker")
		suite.Equal("O:SPY240202C00480000", ticker)
	}

	suite.Equal([]string{
		"us_options_opra/trades_v1/2024/02/2024-02-01.csv.gz",
		"us_options_opra/trades_v1/2024/02/2024-02-02.csv.gz",
	}, suite.fetcher.calls())
}

func (suite *ClientTestSuite) TestDownloadToDiskWritesOneFilePerDate() {
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 1), "O:SPY240201C00480000", 3)
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 2), "O:SPY240202C00480000", 2)

	for _, writerType := range []writer.WriterType{writer.WriterTypeDuckDB, writer.WriterTypeParquet} {
		suite.Run(string(writerType), func() {
			outputDir := suite.T().TempDir()

			w, err := writer.New(writerType, nil)
			suite.Require().NoError(err)

			client := NewClientWithFetcher(suite.fetcher, nil, WithWriter(w))

			result, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 2),
				DownloadOptions{Mode: ModeToDisk, OutputDir: outputDir}))
			suite.Require().NoError(err)
			suite.Nil(result.Table)
			suite.Equal([]string{
				filepath.Join(outputDir, "options_trades_2024-02-01.parquet"),
				filepath.Join(outputDir, "options_trades_2024-02-02.parquet"),
			}, result.Files)

			entries, err := os.ReadDir(outputDir)
			suite.Require().NoError(err)
			suite.Len(entries, 2)

			first, err := writer.ReadTable(result.Files[0])
			suite.Require().NoError(err)
			suite.Equal(3, first.Len())
			suite.ElementsMatch(mocks.Header(mocks.FileKindTrades), first.ColumnNames())

			second, err := writer.ReadTable(result.Files[1])
			suite.Require().NoError(err)
			suite.Equal(2, second.Len())
		})
	}
}

func (suite *ClientTestSuite) TestMissingDatesAreSkipped() {
	// 2024-02-03 and 2024-02-04 fall on a weekend.
	suite.publish(MarketStocks, EndpointMinutes, date(2024, 2, 2), "AAPL", 4)
	suite.publish(MarketStocks, EndpointMinutes, date(2024, 2, 5), "AAPL", 6)

	client := NewClientWithFetcher(suite.fetcher, nil)

	result, err := client.Download(context.Background(), DownloadParams{
		Market:   MarketStocks,
		Endpoint: EndpointMinutes,
		Range:    DateRange{Start: date(2024, 2, 2), End: date(2024, 2, 5)},
		DownloadOptions: DownloadOptions{
			Mode:      ModeToDisk,
			OutputDir: suite.outputDir,
		},
	})
	suite.Require().NoError(err)
	suite.Equal([]time.Time{date(2024, 2, 3), date(2024, 2, 4)}, result.Skipped)
	suite.Len(suite.fetcher.calls(), 4)
	suite.ElementsMatch([]string{
		"stocks_minutes_2024-02-02.parquet",
		"stocks_minutes_2024-02-05.parquet",
	}, suite.outputFiles())
}

func (suite *ClientTestSuite) TestNothingPublishedReturnsEmptyTable() {
	client := NewClientWithFetcher(suite.fetcher, nil)

	result, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 3), date(2024, 2, 4), DownloadOptions{}))
	suite.Require().NoError(err)
	suite.Equal(0, result.Table.Len())
	suite.Equal(EmptyTable(EndpointTrades).ColumnNames(), result.Table.ColumnNames())
	suite.Len(result.Skipped, 2)

	result, err = client.Download(context.Background(), suite.optionTrades(date(2024, 2, 3), date(2024, 2, 3), DownloadOptions{Clean: true}))
	suite.Require().NoError(err)
	suite.GreaterOrEqual(result.Table.ColumnIndex("timestamp"), 0)
}

func (suite *ClientTestSuite) TestDownloadWithClean() {
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 1), "O:SPY240201C00480000", 2)

	client := NewClientWithFetcher(suite.fetcher, nil)

	result, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 1), DownloadOptions{Clean: true}))
	suite.Require().NoError(err)

	v, _ := result.Table.Value(0, "timestamp")
	ts, ok := table.Time(v)
	suite.Require().True(ok)
	suite.Equal(MarketTimezone, ts.Location().String())
	suite.Equal(9, ts.Hour())
}

func (suite *ClientTestSuite) TestInvalidParametersFailBeforeFetching() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	// No expectations: any fetch fails the test.
	mockFetcher := mocks.NewMockObjectFetcher(ctrl)
	client := NewClientWithFetcher(mockFetcher, nil)

	testCases := []struct {
		name   string
		params DownloadParams
		code   errors.ErrorCode
	}{
		{
			name:   "reversed range",
			params: suite.optionTrades(date(2024, 2, 5), date(2024, 2, 1), DownloadOptions{}),
			code:   errors.ErrCodeInvalidDateRange,
		},
		{
			name:   "missing dates",
			params: suite.optionTrades(time.Time{}, time.Time{}, DownloadOptions{}),
			code:   errors.ErrCodeInvalidDateRange,
		},
		{
			name: "unsupported pair",
			params: DownloadParams{
				Market:   MarketIndex,
				Endpoint: EndpointTrades,
				Range:    DateRange{Start: date(2024, 2, 1), End: date(2024, 2, 1)},
			},
			code: errors.ErrCodeUnsupportedPair,
		},
		{
			name:   "unknown mode",
			params: suite.optionTrades(date(2024, 2, 1), date(2024, 2, 1), DownloadOptions{Mode: "to_cloud"}),
			code:   errors.ErrCodeInvalidConfiguration,
		},
		{
			name:   "unknown policy",
			params: suite.optionTrades(date(2024, 2, 1), date(2024, 2, 1), DownloadOptions{TransientPolicy: "retry"}),
			code:   errors.ErrCodeInvalidConfiguration,
		},
		{
			name:   "missing market",
			params: DownloadParams{Endpoint: EndpointTrades, Range: DateRange{Start: date(2024, 2, 1), End: date(2024, 2, 1)}},
			code:   errors.ErrCodeInvalidConfiguration,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := client.Download(context.Background(), tc.params)
			suite.Require().Error(err)
			suite.True(errors.IsInvalidConfiguration(err), err.Error())
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}

func (suite *ClientTestSuite) TestMissingOutputDirFailsBeforeFetching() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	client := NewClientWithFetcher(mocks.NewMockObjectFetcher(ctrl), nil)

	notADir := filepath.Join(suite.outputDir, "file.txt")
	suite.Require().NoError(os.WriteFile(notADir, []byte("x"), 0o600))

	for _, dir := range []string{"", filepath.Join(suite.outputDir, "missing"), notADir} {
		_, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 2),
			DownloadOptions{Mode: ModeToDisk, OutputDir: dir}))
		suite.Require().Error(err)
		suite.True(errors.IsIO(err), err.Error())
		suite.True(errors.HasCode(err, errors.ErrCodeOutputDirMissing))
	}

	suite.NoDirExists(filepath.Join(suite.outputDir, "missing"))
	suite.Equal([]string{"file.txt"}, suite.outputFiles())
}

func (suite *ClientTestSuite) TestAuthErrorAlwaysAborts() {
	key := suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 1), "O:SPY", 1)
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 2), "O:SPY", 1)
	suite.fetcher.errs[key] = errors.New(errors.ErrCodeAuthFailed, "credentials rejected")

	client := NewClientWithFetcher(suite.fetcher, nil)

	for _, policy := range []TransientPolicy{TransientPolicyAbort, TransientPolicySkip} {
		suite.fetcher.fetched = nil

		_, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 2),
			DownloadOptions{TransientPolicy: policy}))
		suite.Require().Error(err)
		suite.True(errors.IsAuth(err))
		suite.Len(suite.fetcher.calls(), 1)
	}
}

func (suite *ClientTestSuite) TestTransientPolicy() {
	key := suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 1), "O:SPY240201C00480000", 3)
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 2), "O:SPY240202C00480000", 2)
	suite.fetcher.errs[key] = errors.New(errors.ErrCodeTransient, "connection reset")

	client := NewClientWithFetcher(suite.fetcher, nil)

	_, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 2), DownloadOptions{}))
	suite.Require().Error(err)
	suite.True(errors.IsTransient(err))

	result, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 2),
		DownloadOptions{TransientPolicy: TransientPolicySkip}))
	suite.Require().NoError(err)
	suite.Equal(2, result.Table.Len())
	suite.Require().Len(result.Failed, 1)
	suite.Equal(date(2024, 2, 1), result.Failed[0].Date)
	suite.Equal(key, result.Failed[0].Key)
	suite.True(errors.IsTransient(result.Failed[0].Err))
}

func (suite *ClientTestSuite) TestFormatErrorFollowsTransientPolicy() {
	key := suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 1), "O:SPY", 3)
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 2), "O:SPY", 2)
	suite.fetcher.objects[key] = mocks.Gzip([]byte("ticker,price\nO:SPY,not-a-price\n"))

	client := NewClientWithFetcher(suite.fetcher, nil)

	_, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 2), DownloadOptions{}))
	suite.Require().Error(err)
	suite.True(errors.IsFormat(err))

	result, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 2),
		DownloadOptions{TransientPolicy: TransientPolicySkip}))
	suite.Require().NoError(err)
	suite.Len(result.Failed, 1)
	suite.Equal(2, result.Table.Len())
}

func (suite *ClientTestSuite) TestToDiskKeepsEarlierFilesOnFailure() {
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 1), "O:SPY", 3)
	key := suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 2), "O:SPY", 2)
	suite.fetcher.errs[key] = errors.New(errors.ErrCodeTransient, "connection reset")

	client := NewClientWithFetcher(suite.fetcher, nil)

	_, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 2),
		DownloadOptions{Mode: ModeToDisk, OutputDir: suite.outputDir}))
	suite.Require().Error(err)
	suite.Equal([]string{"options_trades_2024-02-01.parquet"}, suite.outputFiles())
}

func (suite *ClientTestSuite) TestWriterFailureIsIOError() {
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 1), "O:SPY", 3)

	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	mockWriter := mocks.NewMockTableWriter(ctrl)
	mockWriter.EXPECT().
		WriteTable(gomock.Any(), filepath.Join(suite.outputDir, "options_trades_2024-02-01.parquet")).
		Return(goerrors.New("disk full"))

	client := NewClientWithFetcher(suite.fetcher, nil, WithWriter(mockWriter))

	_, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 1),
		DownloadOptions{Mode: ModeToDisk, OutputDir: suite.outputDir}))
	suite.Require().Error(err)
	suite.True(errors.IsIO(err))
	suite.True(errors.HasCode(err, errors.ErrCodeWriteFailed))
}

func (suite *ClientTestSuite) TestUnclassifiedFetchErrorIsTransient() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	mockFetcher := mocks.NewMockObjectFetcher(ctrl)
	mockFetcher.EXPECT().
		Fetch(gomock.Any(), "us_options_opra/trades_v1/2024/02/2024-02-01.csv.gz").
		Return(nil, goerrors.New("socket closed"))

	client := NewClientWithFetcher(mockFetcher, nil)

	_, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 1), DownloadOptions{}))
	suite.True(errors.IsTransient(err))
}

func (suite *ClientTestSuite) TestCancelledContextStopsTheRun() {
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 1), "O:SPY", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClientWithFetcher(suite.fetcher, nil)

	_, err := client.Download(ctx, suite.optionTrades(date(2024, 2, 1), date(2024, 2, 2),
		DownloadOptions{TransientPolicy: TransientPolicySkip}))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFetchCancelled))
	suite.Empty(suite.fetcher.calls())
}

func (suite *ClientTestSuite) TestProgressCallback() {
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 1), "O:SPY", 1)

	var updates [][2]float64

	client := NewClientWithFetcher(suite.fetcher, func(current, total float64, _ string) {
		updates = append(updates, [2]float64{current, total})
	})

	_, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 3), DownloadOptions{}))
	suite.Require().NoError(err)
	suite.Equal([][2]float64{{1, 3}, {2, 3}, {3, 3}}, updates)
}

func (suite *ClientTestSuite) TestListObjects() {
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 5), "O:SPY", 1)
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 1), "O:SPY", 1)
	suite.publish(MarketOptions, EndpointTrades, date(2024, 3, 1), "O:SPY", 1)
	suite.publish(MarketOptions, EndpointQuotes, date(2024, 2, 1), "O:SPY", 1)
	suite.fetcher.objects["us_options_opra/trades_v1/2024/02/README.txt"] = []byte("notes")

	client := NewClientWithFetcher(suite.fetcher, nil)

	keys, err := client.ListObjects(context.Background(), ListParams{
		Market:   MarketOptions,
		Endpoint: EndpointTrades,
		Year:     optional.Some(2024),
		Month:    optional.Some(2),
	})
	suite.Require().NoError(err)
	suite.Require().Len(keys, 2)
	suite.Equal(date(2024, 2, 1), keys[0].Date)
	suite.Equal("options_trades_2024-02-05.parquet", keys[1].LocalFilename)

	keys, err = client.ListObjects(context.Background(), ListParams{Market: MarketOptions, Endpoint: EndpointTrades})
	suite.Require().NoError(err)
	suite.Len(keys, 3)

	_, err = client.ListObjects(context.Background(), ListParams{Market: MarketIndex, Endpoint: EndpointQuotes})
	suite.True(errors.IsInvalidConfiguration(err))
}

func (suite *ClientTestSuite) TestDownloadListed() {
	suite.publish(MarketCrypto, EndpointDay, date(2024, 1, 31), "X:BTCUSD", 1)
	suite.publish(MarketCrypto, EndpointDay, date(2024, 2, 2), "X:BTCUSD", 1)
	suite.publish(MarketCrypto, EndpointDay, date(2024, 2, 1), "X:BTCUSD", 1)

	client := NewClientWithFetcher(suite.fetcher, nil)

	result, err := client.DownloadListed(context.Background(),
		ListParams{Market: MarketCrypto, Endpoint: EndpointDay, Year: optional.Some(2024), Month: optional.Some(2)},
		DownloadOptions{Mode: ModeToDisk, OutputDir: suite.outputDir})
	suite.Require().NoError(err)
	suite.Equal([]string{
		filepath.Join(suite.outputDir, "crypto_day_2024-02-01.parquet"),
		filepath.Join(suite.outputDir, "crypto_day_2024-02-02.parquet"),
	}, result.Files)
	suite.Equal([]string{
		"global_crypto/day_aggs_v1/2024/02/2024-02-01.csv.gz",
		"global_crypto/day_aggs_v1/2024/02/2024-02-02.csv.gz",
	}, suite.fetcher.calls())
}

func (suite *ClientTestSuite) TestDownloadListedCombine() {
	suite.publish(MarketCrypto, EndpointDay, date(2024, 2, 2), "X:ETHUSD", 2)
	suite.publish(MarketCrypto, EndpointDay, date(2024, 2, 1), "X:BTCUSD", 3)

	client := NewClientWithFetcher(suite.fetcher, nil)

	result, err := client.DownloadListed(context.Background(),
		ListParams{Market: MarketCrypto, Endpoint: EndpointDay, Year: optional.Some(2024)},
		DownloadOptions{Mode: ModeToDisk, OutputDir: suite.outputDir, Combine: true})
	suite.Require().NoError(err)
	suite.Len(result.Files, 2)
	suite.Equal(filepath.Join(suite.outputDir, "crypto_day.parquet"), result.Combined)
	suite.ElementsMatch([]string{"crypto_day_2024-02-01.parquet", "crypto_day_2024-02-02.parquet", "crypto_day.parquet"},
		suite.outputFiles())

	combined, err := writer.ReadTable(result.Combined)
	suite.Require().NoError(err)
	suite.Equal(5, combined.Len())

	first, _ := combined.Value(0, "ticker")
	last, _ := combined.Value(4, "ticker")
	suite.Equal("X:BTCUSD", first)
	suite.Equal("X:ETHUSD", last)
}

func (suite *ClientTestSuite) TestCombineInMemoryWritesOnlyTheCombinedFile() {
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 1), "O:SPY", 3)
	suite.publish(MarketOptions, EndpointTrades, date(2024, 2, 2), "O:SPY", 2)

	client := NewClientWithFetcher(suite.fetcher, nil)

	result, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 2),
		DownloadOptions{Mode: ModeInMemory, OutputDir: suite.outputDir, Combine: true}))
	suite.Require().NoError(err)
	suite.Empty(result.Files)
	suite.Equal(5, result.Table.Len())
	suite.Equal([]string{"options_trades.parquet"}, suite.outputFiles())
}

func (suite *ClientTestSuite) TestCombineWithNothingDownloaded() {
	client := NewClientWithFetcher(suite.fetcher, nil)

	result, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 3), date(2024, 2, 4),
		DownloadOptions{Mode: ModeToDisk, OutputDir: suite.outputDir, Combine: true}))
	suite.Require().NoError(err)
	suite.Empty(result.Combined)
	suite.Equal(0, result.Table.Len())
	suite.Empty(suite.outputFiles())
}

func (suite *ClientTestSuite) TestCombineNeedsOutputDir() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	client := NewClientWithFetcher(mocks.NewMockObjectFetcher(ctrl), nil)

	_, err := client.Download(context.Background(), suite.optionTrades(date(2024, 2, 1), date(2024, 2, 2),
		DownloadOptions{Mode: ModeInMemory, Combine: true}))
	suite.True(errors.HasCode(err, errors.ErrCodeOutputDirMissing))
}

func (suite *ClientTestSuite) TestDownloadListedValidatesFirst() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	client := NewClientWithFetcher(mocks.NewMockObjectFetcher(ctrl), nil)

	_, err := client.DownloadListed(context.Background(),
		ListParams{Market: MarketForex, Endpoint: EndpointTrades}, DownloadOptions{})
	suite.True(errors.IsInvalidConfiguration(err))

	_, err = client.DownloadListed(context.Background(),
		ListParams{Market: MarketForex, Endpoint: EndpointQuotes},
		DownloadOptions{Mode: ModeToDisk, OutputDir: filepath.Join(suite.outputDir, "missing")})
	suite.True(errors.IsIO(err))
}

func (suite *ClientTestSuite) TestNewClientValidatesConfig() {
	_, err := NewClient(ClientConfig{AccessKey: "key"}, nil)
	suite.True(errors.IsInvalidConfiguration(err))

	_, err = NewClient(ClientConfig{AccessKey: "key", SecretKey: "secret", WriterType: "csv"}, nil)
	suite.True(errors.IsInvalidConfiguration(err))

	_, err = NewClient(ClientConfig{AccessKey: "key", SecretKey: "secret", EndpointURL: "not a url"}, nil)
	suite.True(errors.IsInvalidConfiguration(err))

	client, err := NewClient(ClientConfig{AccessKey: "key", SecretKey: "secret", WriterType: writer.WriterTypeParquet}, nil)
	suite.Require().NoError(err)
	suite.Equal(writer.WriterTypeParquet, client.writer.Name())
}
