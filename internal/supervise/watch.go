package supervise

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WaitForOutput blocks until path exists and has content, or the grace
// window expires. A recorder whose daemon check passed can still die or
// block without writing anything; watching the output file catches that
// within the grace window instead of after the full recording timeout.
func WaitForOutput(ctx context.Context, path string, grace time.Duration) error {
	if hasContent(path) {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// No inotify available: fall back to polling.
		return pollForOutput(ctx, path, grace)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return pollForOutput(ctx, path, grace)
	}

	deadline := time.NewTimer(grace)
	defer deadline.Stop()

	// Race: the file may have been written between the first check and the
	// watch registration.
	if hasContent(path) {
		return nil
	}

	for {
		select {
		case ev := <-watcher.Events:
			if ev.Name == path && hasContent(path) {
				return nil
			}
		case <-watcher.Errors:
			return pollForOutput(ctx, path, grace)
		case <-deadline.C:
			return fmt.Errorf("recorder produced no output within %v", grace)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func pollForOutput(ctx context.Context, path string, grace time.Duration) error {
	deadline := time.After(grace)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			if hasContent(path) {
				return nil
			}
		case <-deadline:
			return fmt.Errorf("recorder produced no output within %v", grace)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func hasContent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
