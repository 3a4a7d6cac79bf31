package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	l, err := NewLogger()
	suite.Require().NoError(err)
	suite.NotNil(l.Logger)
	suite.True(l.Core().Enabled(zapcore.InfoLevel))
	suite.False(l.Core().Enabled(zapcore.DebugLevel))
}

func (suite *LoggerTestSuite) TestNewLoggerWithLevel() {
	path := filepath.Join(suite.T().TempDir(), "test.log")

	l, err := NewLoggerWithOptions(Options{Level: "debug", OutputPaths: []string{path}})
	suite.Require().NoError(err)
	suite.True(l.Core().Enabled(zapcore.DebugLevel))

	l.Info("hello", zap.String("symbol", "TCS.NS"))
	suite.NoError(l.Sync())
}

func (suite *LoggerTestSuite) TestInvalidLevel() {
	_, err := NewLoggerWithOptions(Options{Level: "loud"})
	suite.Error(err)
	suite.Contains(err.Error(), "invalid log level")
}

func (suite *LoggerTestSuite) TestParseLevel() {
	testCases := []struct {
		input    string
		expected zapcore.Level
	}{
		{input: "", expected: zapcore.InfoLevel},
		{input: "debug", expected: zapcore.DebugLevel},
		{input: "warn", expected: zapcore.WarnLevel},
		{input: "error", expected: zapcore.ErrorLevel},
	}

	for _, tc := range testCases {
		suite.Run(tc.input, func() {
			level, err := ParseLevel(tc.input)
			suite.NoError(err)
			suite.Equal(tc.expected, level)
		})
	}
}

func (suite *LoggerTestSuite) TestNop() {
	l := NewNop()
	l.Info("discarded")
	suite.NoError(l.Sync())
}
