package config

import (
	stderrors "errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/ohlc-tracker/internal/version"
	"github.com/rxtech-lab/ohlc-tracker/pkg/errors"
)

const (
	// SchemaFileName is the JSON schema written next to the sample config.
	SchemaFileName = "ohlc-config.json"
	// SampleFileName is the sample config referencing SchemaFileName.
	SampleFileName = "ohlc-config.yaml"
)

// WriteSample writes the JSON schema and, when it does not exist yet, a sample config
// holding the defaults into dir. The sample is never overwritten.
func WriteSample(dir string) (schemaPath, samplePath string, err error) {
	schema, err := Schema()
	if err != nil {
		return "", "", err
	}

	schemaPath = filepath.Join(dir, SchemaFileName)
	samplePath = filepath.Join(dir, SampleFileName)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", errors.Wrapf(errors.ErrCodeInvalidOutputLocation, err, "failed to create %s", dir)
	}

	if err := os.WriteFile(schemaPath, []byte(schema), 0o644); err != nil {
		return "", "", errors.Wrapf(errors.ErrCodeInvalidOutputLocation, err, "failed to write %s", schemaPath)
	}

	if _, err := os.Stat(samplePath); err == nil || !stderrors.Is(err, os.ErrNotExist) {
		return schemaPath, samplePath, nil
	}

	sample := Default()
	sample.Version = version.GetVersion()

	body, err := yaml.Marshal(sample)
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal sample config", err)
	}

	// Editors with the YAML language server pick the schema up from this comment.
	body = append([]byte("# yaml-language-server: $schema="+SchemaFileName+"\n"), body...)

	if err := os.WriteFile(samplePath, body, 0o644); err != nil {
		return "", "", errors.Wrapf(errors.ErrCodeInvalidOutputLocation, err, "failed to write %s", samplePath)
	}

	return schemaPath, samplePath, nil
}
