package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/rxtech-lab/polygon-flatfiles/internal/version"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/fetcher"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/writer"
)

const (
	// EnvPrefix is prepended to every key when reading the environment, e.g.
	// "output_dir" is read from POLYGON_OUTPUT_DIR.
	EnvPrefix = "POLYGON"
	// FileName is the config file searched for in the working directory.
	FileName = "flatfiles"
)

// legacyEnv lists the environment names older deployments still export.
var legacyEnv = map[string]string{
	"access_key": "ACCESS_KEY",
	"secret_key": "SECRET_KEY",
	"output_dir": "DATADIR",
}

// Config holds everything needed to talk to the flat file store and place
// downloaded files.
type Config struct {
	AccessKey       string `mapstructure:"access_key" yaml:"access_key" json:"access_key" jsonschema:"title=Access Key,description=S3 access key id issued by the vendor" validate:"required"`
	SecretKey       string `mapstructure:"secret_key" yaml:"secret_key" json:"secret_key" jsonschema:"title=Secret Key,description=S3 secret access key issued by the vendor" validate:"required"`
	EndpointURL     string `mapstructure:"endpoint_url" yaml:"endpoint_url" json:"endpoint_url" jsonschema:"title=Endpoint URL,default=https://files.polygon.io" validate:"omitempty,url"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket" json:"bucket" jsonschema:"title=Bucket,default=flatfiles"`
	Region          string `mapstructure:"region" yaml:"region" json:"region" jsonschema:"title=Region,default=us-east-1"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir" jsonschema:"title=Output Directory,description=Existing directory parquet files are written to"`
	Writer          string `mapstructure:"writer" yaml:"writer" json:"writer" jsonschema:"title=Writer,enum=duckdb,enum=parquet,default=duckdb" validate:"omitempty,oneof=duckdb parquet"`
	Version         string `mapstructure:"version" yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version,description=Version of the tool that wrote the file"`
	TransientPolicy string `mapstructure:"transient_policy" yaml:"transient_policy" json:"transient_policy" jsonschema:"title=Transient Policy,enum=abort,enum=skip,default=abort" validate:"omitempty,oneof=abort skip"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		EndpointURL:     fetcher.DefaultEndpointURL,
		Bucket:          fetcher.DefaultBucket,
		Region:          fetcher.DefaultRegion,
		Writer:          string(writer.WriterTypeDuckDB),
		TransientPolicy: string(flatfiles.TransientPolicyAbort),
	}
}

// Load fills the empty fields of explicit from, in order, the environment,
// the config file and the defaults. configFile may be empty, in which case
// flatfiles.yaml is looked up in the working directory and skipped when absent.
func Load(explicit Config, configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := Default()
	v.SetDefault("endpoint_url", defaults.EndpointURL)
	v.SetDefault("bucket", defaults.Bucket)
	v.SetDefault("region", defaults.Region)
	v.SetDefault("writer", defaults.Writer)
	v.SetDefault("transient_policy", defaults.TransientPolicy)

	for _, key := range keys() {
		names := []string{key, EnvPrefix + "_" + strings.ToUpper(key)}
		if legacy, ok := legacyEnv[key]; ok {
			names = append(names, legacy)
		}

		if err := v.BindEnv(names...); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to bind %s", key)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", configFile)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to read config file", err)
			}
		}
	}

	var loaded Config
	if err := v.Unmarshal(&loaded); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to decode configuration", err)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), loaded.Version); err != nil {
		return nil, err
	}

	merged := Config{
		AccessKey:       pick(explicit.AccessKey, loaded.AccessKey),
		SecretKey:       pick(explicit.SecretKey, loaded.SecretKey),
		EndpointURL:     pick(explicit.EndpointURL, loaded.EndpointURL),
		Bucket:          pick(explicit.Bucket, loaded.Bucket),
		Region:          pick(explicit.Region, loaded.Region),
		OutputDir:       pick(explicit.OutputDir, loaded.OutputDir),
		Writer:          pick(explicit.Writer, loaded.Writer),
		TransientPolicy: pick(explicit.TransientPolicy, loaded.TransientPolicy),
		Version:         loaded.Version,
	}

	return &merged, nil
}

// Validate checks that the configuration can open a client. Missing
// credentials get their own error code so callers can point at them.
func (c *Config) Validate() error {
	if c.AccessKey == "" || c.SecretKey == "" {
		return errors.Newf(errors.ErrCodeMissingCredentials,
			"access key and secret key are required, set %s_ACCESS_KEY and %s_SECRET_KEY", EnvPrefix, EnvPrefix)
	}

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}

// ToClientConfig converts the configuration into a flatfiles.ClientConfig.
func (c *Config) ToClientConfig() flatfiles.ClientConfig {
	return flatfiles.ClientConfig{
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		EndpointURL: c.EndpointURL,
		Bucket:      c.Bucket,
		Region:      c.Region,
		WriterType:  writer.WriterType(c.Writer),
	}
}

// String renders the configuration with the secret redacted.
func (c Config) String() string {
	return fmt.Sprintf("access_key=%s secret_key=%s endpoint_url=%s bucket=%s region=%s output_dir=%s writer=%s transient_policy=%s",
		redact(c.AccessKey, 4), redact(c.SecretKey, 0), c.EndpointURL, c.Bucket, c.Region, c.OutputDir, c.Writer, c.TransientPolicy)
}

func keys() []string {
	return []string{"access_key", "secret_key", "endpoint_url", "bucket", "region", "output_dir", "writer", "transient_policy"}
}

func pick(explicit, loaded string) string {
	if explicit != "" {
		return explicit
	}

	return loaded
}

// redact keeps the first visible characters of a secret.
func redact(secret string, visible int) string {
	if secret == "" {
		return ""
	}

	if len(secret) <= visible {
		return strings.Repeat("*", len(secret))
	}

	return secret[:visible] + "****"
}
