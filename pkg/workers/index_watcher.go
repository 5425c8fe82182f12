package workers

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/thirdwheel/companion-backend/pkg/index"
	"github.com/thirdwheel/companion-backend/pkg/logger"
)

type EngineInvalidator interface {
	Invalidate()
}

// indexWatcher watches the storage directory and drops the cached chat
// engine whenever the index artifacts are rewritten, so the next request
// picks up the rebuilt store.
type indexWatcher struct {
	storageDir string
	engines    EngineInvalidator
}

func NewIndexWatcher(storageDir string, engines EngineInvalidator) (*indexWatcher, error) {
	return &indexWatcher{
		storageDir: storageDir,
		engines:    engines,
	}, nil
}

func (i *indexWatcher) Name() string { return "index_watcher" }

func (i *indexWatcher) Start(ctx context.Context) error {
	slog.Info("Starting worker", "name", i.Name(), "dir", i.storageDir)
	defer slog.Info("Worker stopped", "name", i.Name())

	// The storage dir may not exist yet on a fresh deployment; fsnotify
	// cannot watch a missing path.
	if err := os.MkdirAll(i.storageDir, 0o755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(i.storageDir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !i.isIndexChange(event) {
				continue
			}
			slog.Info("index artifacts changed, invalidating engine", "file", event.Name, "op", event.Op.String())
			i.engines.Invalidate()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watching index directory", logger.Err(err))
		}
	}
}

func (i *indexWatcher) isIndexChange(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	// SQLite writes the journal next to the database file.
	return strings.HasPrefix(filepath.Base(event.Name), index.FileName)
}
