package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/ohlc-tracker/internal/version"
)

type GenerateTestSuite struct {
	suite.Suite
	dir string
}

func TestGenerateSuite(t *testing.T) {
	suite.Run(t, new(GenerateTestSuite))
}

func (suite *GenerateTestSuite) SetupTest() {
	suite.dir = filepath.Join(suite.T().TempDir(), "config")
}

func (suite *GenerateTestSuite) TestWritesSchemaAndSample() {
	schemaPath, samplePath, err := WriteSample(suite.dir)
	suite.Require().NoError(err)

	suite.Equal(filepath.Join(suite.dir, SchemaFileName), schemaPath)
	suite.FileExists(schemaPath)

	sample, err := os.ReadFile(samplePath)
	suite.Require().NoError(err)
	suite.True(strings.HasPrefix(string(sample), "# yaml-language-server: $schema="+SchemaFileName+"\n"))

	// The sample round-trips into a valid configuration equal to the defaults.
	cfg, err := Parse(sample)
	suite.Require().NoError(err)
	suite.NoError(cfg.Validate())
	expected := Default()
	expected.Version = version.GetVersion()
	suite.Equal(expected, cfg)
}

func (suite *GenerateTestSuite) TestSampleNotOverwritten() {
	_, samplePath, err := WriteSample(suite.dir)
	suite.Require().NoError(err)

	suite.Require().NoError(os.WriteFile(samplePath, []byte("name: Mine\n"), 0o644))

	_, _, err = WriteSample(suite.dir)
	suite.Require().NoError(err)

	content, err := os.ReadFile(samplePath)
	suite.Require().NoError(err)
	suite.Equal("name: Mine\n", string(content))
}
