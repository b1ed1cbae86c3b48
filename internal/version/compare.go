package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rxtech-lab/polygon-flatfiles/pkg/errors"
)

// CheckConfigCompatibility reports whether a config file written by
// configVersion can be read by toolVersion.
//
// Rules:
//   - An empty config version or a "main" build on either side skips the check
//   - Major versions must match
//   - The config may not come from a newer minor version, whose keys this
//     build would silently ignore
//
// Examples:
//   - Tool 1.2.0, Config 1.2.4 -> OK
//   - Tool 1.3.0, Config 1.2.0 -> OK
//   - Tool 1.2.0, Config 1.3.0 -> ERROR (config is newer)
//   - Tool 2.0.0, Config 1.2.0 -> ERROR (major differs)
func CheckConfigCompatibility(toolVersion, configVersion string) error {
	toolVersion = strings.TrimPrefix(toolVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if configVersion == "" || toolVersion == "main" || configVersion == "main" {
		return nil
	}

	toolSemver, err := semver.NewVersion(toolVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid tool version '%s'", toolVersion)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid config version '%s'", configVersion)
	}

	if toolSemver.Major() != configSemver.Major() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"major version mismatch: tool is %d.x.x but config was written for %d.x.x",
			toolSemver.Major(), configSemver.Major())
	}

	if configSemver.Minor() > toolSemver.Minor() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"config was written for %d.%d.x, upgrade the tool (currently %s)",
			configSemver.Major(), configSemver.Minor(), toolSemver.String())
	}

	return nil
}
