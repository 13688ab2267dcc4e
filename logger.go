package bincodec

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger atomic.Pointer[zap.Logger]
	nop    = zap.NewNop()
)

// Logger returns the package logger. It is a no-op logger unless SetLogger
// installed another one.
//
// Only configuration-time events are logged (enum construction, union
// finalization, composite merges). Encode and decode never log.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

// SetLogger installs l as the package logger. A nil l restores the no-op
// logger.
func SetLogger(l *zap.Logger) {
	if l != nil {
		l = l.Named("bincodec")
	}
	logger.Store(l)
}
