// Package detached runs fire-and-forget tasks. A detached task has its own
// error boundary: the caller never waits for it and its failure is observable
// only in the logs.
package detached

import (
	"fmt"
	"log/slog"

	"github.com/thirdwheel/companion-backend/pkg/logger"
)

func Go(name string, fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("detached task panicked", "task", name, logger.Err(fmt.Errorf("%v", r)))
			}
		}()

		if err := fn(); err != nil {
			slog.Error("detached task failed", "task", name, logger.Err(err))
		}
	}()
}
