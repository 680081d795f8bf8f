package pathcache

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"
)

// AcquisitionTimeout is how long a lock acquisition or long-lived guard may
// be held before watchAcquisition logs a diagnostic. This is a debug aid
// only; it never cancels or times out the actual operation.
var AcquisitionTimeout = 5 * time.Second

// diagnosticsSink receives the formatted warning; tests can swap it to
// capture output instead of writing to stderr.
var diagnosticsSink atomic.Value // func(string)

func init() {
	diagnosticsSink.Store(func(msg string) { fmt.Fprintln(os.Stderr, msg) })
}

// watchAcquisition starts a timer that, if not stopped within
// AcquisitionTimeout, reports the given label along with the caller's
// stack so a pathologically slow filesystem probe or lock holder shows up
// in logs instead of silently wedging the run.
func watchAcquisition(label string) (stop func()) {
	stack := captureStack()
	timer := time.AfterFunc(AcquisitionTimeout, func() {
		sink := diagnosticsSink.Load().(func(string))
		sink(fmt.Sprintf("pathcache: %s not released after %s\n%s", label, AcquisitionTimeout, stack))
	})
	return func() { timer.Stop() }
}

func captureStack() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
