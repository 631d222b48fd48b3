package utils

import (
	"context"
)

// GracefulShutdown waits for ctx to be cancelled (typically by SIGINT/SIGTERM
// through signal.NotifyContext), runs cleanup once and then calls cancel.
func GracefulShutdown(ctx context.Context, cancel context.CancelFunc, cleanup func()) {
	<-ctx.Done()
	if cleanup != nil {
		cleanup()
	}
	cancel()
}
