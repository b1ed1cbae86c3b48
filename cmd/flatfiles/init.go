package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/polygon-flatfiles/internal/config"
	"github.com/rxtech-lab/polygon-flatfiles/internal/version"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
	"github.com/rxtech-lab/polygon-flatfiles/pkg/utils"
)

const (
	schemaFileName = "flatfiles-config.json"
	sampleFileName = config.FileName + ".yaml"
)

// initAction writes the config schema and, when absent, a sample config that
// references it for editor completion.
func initAction(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	w := cmd.Root().Writer

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(errors.ErrCodeIO, err, "failed to create %s", dir)
	}

	schemaJSON, err := utils.JSONSchema(config.Config{})
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnknown, "failed to generate schema", err)
	}

	schemaPath := filepath.Join(dir, schemaFileName)
	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write %s", schemaPath)
	}

	fmt.Fprintf(w, "schema written to %s\n", schemaPath)

	samplePath := filepath.Join(dir, sampleFileName)
	if _, err := os.Stat(samplePath); err == nil {
		fmt.Fprintf(w, "%s already exists, leaving it untouched\n", samplePath)

		return nil
	}

	sample, err := sampleConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(samplePath, sample, 0o600); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write %s", samplePath)
	}

	fmt.Fprintf(w, "sample config written to %s\n", samplePath)

	return nil
}

func sampleConfig() ([]byte, error) {
	sample := config.Default()
	sample.AccessKey = "<access key>"
	sample.SecretKey = "<secret key>"
	sample.OutputDir = "./data"
	sample.Version = version.GetVersion()

	yamlBytes, err := yaml.Marshal(sample)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnknown, "failed to marshal sample config", err)
	}

	header := []byte("# yaml-language-server: $schema=" + schemaFileName + "\n")

	return append(header, yamlBytes...), nil
}
