package logger

import (
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

func (suite *LoggerTestSuite) TestNewDevelopmentLogger() {
	l, err := NewDevelopmentLogger()
	suite.Require().NoError(err)
	suite.True(l.Core().Enabled(zapcore.DebugLevel))
}

func (suite *LoggerTestSuite) TestNop() {
	l := NewNop()
	suite.NotNil(l)
	l.Info("discarded", zap.String("key", "value"))
	suite.NoError(l.Sync())
}

func (suite *LoggerTestSuite) TestWith() {
	child := NewNop().With(zap.String("run_id", "abc"))
	suite.NotNil(child.Logger)
}

func (suite *LoggerTestSuite) TestSyncNilLogger() {
	l := &Logger{}
	suite.NoError(l.Sync())
}
