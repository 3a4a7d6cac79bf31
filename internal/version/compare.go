package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
)

// CheckConfigCompatibility checks that a config file written by configVersion can be
// loaded by toolVersion. Returns nil if compatible, error with details if not.
//
// Compatibility Rules:
//   - An empty config version or a "main" (development build) on either side skips the check
//   - Major versions must match exactly
//   - The config minor version must not be newer than the tool's
//   - Patch versions can differ
//
// Examples:
//   - Tool 1.2.0, Config 1.2.0 -> OK
//   - Tool 1.3.0, Config 1.2.4 -> OK (older config)
//   - Tool 1.2.0, Config 1.3.0 -> ERROR (config newer than tool)
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
			"major version mismatch: tool is %d.x.x but config requires %d.x.x",
			toolSemver.Major(), configSemver.Major())
	}

	if configSemver.Minor() > toolSemver.Minor() {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"config requires %d.%d.x but tool is %d.%d.x",
			configSemver.Major(), configSemver.Minor(),
			toolSemver.Major(), toolSemver.Minor())
	}

	return nil
}
