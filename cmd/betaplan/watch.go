package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const watchDebounce = 150 * time.Millisecond

// watch plans paths once and again whenever one of them is written, created
// or renamed into place. It returns when ctx ends.
func (c *cli) watch(ctx context.Context, paths []string, opts planOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	// Directories are watched rather than files so editors that replace the
	// file on save keep triggering events.
	watched := make(map[string]string, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		watched[abs] = path
		dir := filepath.Dir(abs)
		if slices.Contains(watcher.WatchList(), dir) {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	c.replan(ctx, paths, opts)

	pending := make(map[string]struct{})
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			path, ok := watched[abs]
			if !ok {
				continue
			}
			c.logger.Debug("problem file changed", zap.String("path", path), zap.Stringer("op", event.Op))
			pending[path] = struct{}{}
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("file watcher error", zap.Error(err))
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for _, path := range paths {
				if _, ok := pending[path]; ok {
					changed = append(changed, path)
				}
			}
			clear(pending)
			c.replan(ctx, changed, opts)
		}
	}
}

// replan plans and renders paths, reporting failures without stopping the
// watch loop.
func (c *cli) replan(ctx context.Context, paths []string, opts planOptions) {
	if len(paths) == 0 {
		return
	}
	results, err := c.planFiles(ctx, paths, opts)
	if err != nil {
		return
	}
	if err := c.render(results, opts.format); err != nil {
		c.logger.Warn("failed to render results", zap.Error(err))
	}
	if opts.format == formatText {
		fmt.Fprintln(c.stdout)
	}
}
