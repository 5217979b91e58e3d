// Package goroutine runs background work that must not take the process down.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/orris-inc/channelsync/internal/shared/logger"
)

// SafeGo runs fn in a new goroutine and logs a panic instead of crashing.
func SafeGo(log logger.Interface, name string, fn func()) {
	go Run(log, name, fn)
}

// Run calls fn on the current goroutine, converting a panic into an error log.
// It reports whether fn returned normally.
func Run(log logger.Interface, name string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			log.Errorw("goroutine panicked",
				"goroutine", name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
	return true
}
