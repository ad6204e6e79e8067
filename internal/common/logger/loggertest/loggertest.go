// Package loggertest provides a Logger for tests that writes through
// testing.TB, so output is attached to the failing test.
package loggertest

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"policyfund-workers/internal/common/logger"
)

func New(t testing.TB) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}
