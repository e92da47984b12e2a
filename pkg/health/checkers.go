package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails when the process runs more than threshold
// goroutines. Leaked websocket feeds show up here first.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, threshold)
		}
		return nil
	}
}

// HeapCheck fails when the live heap exceeds maxBytes. The whole store lives
// in memory, so unbounded growth means orders or subscribers are leaking.
func HeapCheck(maxBytes uint64) CheckFunc {
	return func(context.Context) error {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		if ms.HeapAlloc > maxBytes {
			return errors.Errorf("heap %d bytes exceeds threshold %d", ms.HeapAlloc, maxBytes)
		}
		return nil
	}
}
