package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/polygon-flatfiles/internal/config"
	"github.com/rxtech-lab/polygon-flatfiles/internal/logger"
	"github.com/rxtech-lab/polygon-flatfiles/internal/version"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/utils"
)

// connectionFlags are shared by every command that talks to the store.
func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "access-key",
			Usage: "S3 access key. Defaults to POLYGON_ACCESS_KEY or ACCESS_KEY",
		},
		&cli.StringFlag{
			Name:  "secret-key",
			Usage: "S3 secret key. Defaults to POLYGON_SECRET_KEY or SECRET_KEY",
		},
		&cli.StringFlag{
			Name:  "endpoint-url",
			Usage: "S3 endpoint of the flat file store",
		},
		&cli.StringFlag{
			Name:  "bucket",
			Usage: "Bucket holding the flat files",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to a flatfiles.yaml config file",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log at debug level in a human readable format",
		},
	}
}

func pairFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "market",
			Aliases:  []string{"m"},
			Usage:    fmt.Sprintf("Market to download (%s)", joinMarkets()),
			Sources:  cli.EnvVars("POLYGON_MARKET"),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "endpoint",
			Aliases:  []string{"e"},
			Usage:    fmt.Sprintf("Dataset to download (%s)", joinEndpoints()),
			Sources:  cli.EnvVars("POLYGON_ENDPOINT"),
			Required: true,
		},
	}
}

func combineFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "combine",
		Usage: "Also write every downloaded date into one <market>_<endpoint>.parquet file",
	}
}

func newApp() *cli.Command {
	downloadFlags := append(pairFlags(),
		&cli.StringFlag{
			Name:     "start-date",
			Aliases:  []string{"s"},
			Usage:    "First date in `YYYY-MM-DD` or `YYYYMMDD` format",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "end-date",
			Aliases: []string{"d"},
			Usage:   "Last date (inclusive). Defaults to the start date",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Existing directory the parquet files are written to. Defaults to POLYGON_OUTPUT_DIR or DATADIR",
		},
		&cli.StringFlag{
			Name:    "writer",
			Aliases: []string{"w"},
			Usage:   "Parquet backend (duckdb, parquet)",
		},
		&cli.BoolFlag{
			Name:  "clean",
			Usage: "Add a timestamp column in the America/New_York timezone",
		},
		&cli.BoolFlag{
			Name:  "skip-failed",
			Usage: "Record dates failing with transient or format errors and continue",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Show a progress bar",
		},
		combineFlag(),
	)

	listFlags := append(pairFlags(),
		&cli.IntFlag{
			Name:    "year",
			Aliases: []string{"y"},
			Usage:   "Only list files of this year",
		},
		&cli.IntFlag{
			Name:  "month",
			Usage: "Only list files of this month (requires --year)",
		},
		&cli.BoolFlag{
			Name:  "download",
			Usage: "Download every listed file into --output-dir",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Existing directory the parquet files are written to",
		},
		combineFlag(),
	)

	return &cli.Command{
		Name:    "flatfiles",
		Usage:   "Download vendor flat files from S3 and store them as parquet",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:   "download",
				Usage:  "Download every date of a range",
				Flags:  append(downloadFlags, connectionFlags()...),
				Action: downloadAction,
			},
			{
				Name:   "list",
				Usage:  "List the flat files published for a market and endpoint",
				Flags:  append(listFlags, connectionFlags()...),
				Action: listAction,
			},
			{
				Name:   "keys",
				Usage:  "Print the supported markets and endpoints",
				Action: keysAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of a download request or of the config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "target",
						Usage: "Schema to print (download, config)",
						Value: "download",
					},
				},
				Action: schemaAction,
			},
			{
				Name:  "init",
				Usage: "Write a sample flatfiles.yaml and its JSON schema",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory the files are written to",
						Value: ".",
					},
				},
				Action: initAction,
			},
			{
				Name:      "inspect",
				Usage:     "Print the schema and first rows of a downloaded parquet file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "rows",
						Usage: "Number of rows to print, negative for all",
						Value: 10,
					},
				},
				Action: inspectAction,
			},
			{
				Name:   "version",
				Usage:  "Print the tool version",
				Action: versionAction,
			},
		},
	}
}

func versionAction(_ context.Context, cmd *cli.Command) error {
	fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

	return nil
}

// loadConfig merges flags, environment and config file.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	explicit := config.Config{
		AccessKey:   cmd.String("access-key"),
		SecretKey:   cmd.String("secret-key"),
		EndpointURL: cmd.String("endpoint-url"),
		Bucket:      cmd.String("bucket"),
		OutputDir:   cmd.String("output-dir"),
		Writer:      cmd.String("writer"),
	}

	cfg, err := config.Load(explicit, cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	if cmd.Bool("verbose") {
		return logger.NewDevelopmentLogger()
	}

	return logger.NewLogger()
}

func newClient(cmd *cli.Command, cfg *config.Config, log *logger.Logger) (*flatfiles.Client, error) {
	return flatfiles.NewClient(cfg.ToClientConfig(), nil,
		flatfiles.WithLogger(log),
		flatfiles.WithProgressBar(cmd.Bool("progress")),
	)
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	request := flatfiles.DownloadConfig{
		Market:     strings.ToLower(cmd.String("market")),
		Endpoint:   strings.ToLower(cmd.String("endpoint")),
		StartDate:  cmd.String("start-date"),
		EndDate:    cmd.String("end-date"),
		Mode:       string(flatfiles.ModeToDisk),
		OutputDir:  cfg.OutputDir,
		Clean:      cmd.Bool("clean"),
		SkipFailed: cmd.Bool("skip-failed") || cfg.TransientPolicy == string(flatfiles.TransientPolicySkip),
		Combine:    cmd.Bool("combine"),
	}

	params, err := request.ToDownloadParams()
	if err != nil {
		return err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Debug("Loaded configuration", zap.Stringer("config", cfg))

	client, err := newClient(cmd, cfg, log)
	if err != nil {
		return err
	}

	result, err := client.Download(ctx, params)
	if err != nil {
		return err
	}

	printResult(cmd.Root().Writer, result)

	return nil
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	market, err := flatfiles.ParseMarket(cmd.String("market"))
	if err != nil {
		return err
	}

	endpoint, err := flatfiles.ParseEndpoint(cmd.String("endpoint"))
	if err != nil {
		return err
	}

	params := flatfiles.ListParams{
		Market:   market,
		Endpoint: endpoint,
		Year:     optional.None[int](),
		Month:    optional.None[int](),
	}

	if cmd.IsSet("year") {
		params.Year = optional.Some(int(cmd.Int("year")))
	}

	if cmd.IsSet("month") {
		params.Month = optional.Some(int(cmd.Int("month")))
	}

	// Reject malformed filters before connecting.
	if _, err := flatfiles.Prefix(market, endpoint, params.Year, params.Month); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	client, err := newClient(cmd, cfg, log)
	if err != nil {
		return err
	}

	if cmd.Bool("download") {
		result, err := client.DownloadListed(ctx, params, flatfiles.DownloadOptions{
			Mode:      flatfiles.ModeToDisk,
			OutputDir: cfg.OutputDir,
			Combine:   cmd.Bool("combine"),
		})
		if err != nil {
			return err
		}

		printResult(cmd.Root().Writer, result)

		return nil
	}

	keys, err := client.ListObjects(ctx, params)
	if err != nil {
		return err
	}

	for _, key := range keys {
		fmt.Fprintln(cmd.Root().Writer, key.Remote)
	}

	return nil
}

func keysAction(_ context.Context, cmd *cli.Command) error {
	w := cmd.Root().Writer

	for _, pair := range flatfiles.SupportedPairs() {
		prefix, err := flatfiles.Prefix(pair.Market, pair.Endpoint, optional.None[int](), optional.None[int]())
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%-8s %-8s %s\n", pair.Market, pair.Endpoint, prefix)
	}

	return nil
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	var target any

	switch cmd.String("target") {
	case "download":
		target = flatfiles.DownloadConfig{}
	case "config":
		target = config.Config{}
	default:
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown schema target %q", cmd.String("target"))
	}

	schema, err := utils.JSONSchema(target)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, schema)

	return nil
}

func printResult(w io.Writer, result *flatfiles.DownloadResult) {
	for _, file := range result.Files {
		fmt.Fprintf(w, "wrote %s\n", file)
	}

	if result.Combined != "" {
		fmt.Fprintf(w, "combined %s\n", result.Combined)
	}

	if result.Table != nil {
		fmt.Fprintf(w, "downloaded %d rows\n", result.Table.Len())
	}

	for _, day := range result.Skipped {
		fmt.Fprintf(w, "skipped %s (not published)\n", day.Format(flatfiles.DateLayout))
	}

	for _, failure := range result.Failed {
		fmt.Fprintf(w, "failed %s: %v\n", failure.Date.Format(flatfiles.DateLayout), failure.Err)
	}
}

// exitCode maps an error onto the process exit status.
func exitCode(err error) int {
	switch errors.GetKind(err) {
	case errors.KindInvalidConfiguration:
		return 2
	case errors.KindAuth:
		return 3
	case errors.KindIO:
		return 4
	default:
		return 1
	}
}

func joinMarkets() string {
	names := make([]string, len(flatfiles.AllMarkets))
	for i, market := range flatfiles.AllMarkets {
		names[i] = string(market)
	}

	return strings.Join(names, ", ")
}

func joinEndpoints() string {
	names := make([]string, len(flatfiles.AllEndpoints))
	for i, endpoint := range flatfiles.AllEndpoints {
		names[i] = string(endpoint)
	}

	return strings.Join(names, ", ")
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
