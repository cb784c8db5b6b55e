package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads prompts whenever a prompt file changes on disk. It blocks
// until ctx is done. onChange, if not nil, runs after each reload.
func (s *PromptStore) Watch(ctx context.Context, log *zap.Logger, onChange func(name string)) error {
	s.once.Do(s.populate)
	if s.initErr != nil {
		return s.initErr
	}
	if log == nil {
		log = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, relevant := promptName(event)
			if !relevant {
				continue
			}
			s.Reload()
			log.Info("prompt reloaded", zap.String("prompt", name), zap.String("op", event.Op.String()))
			if onChange != nil {
				onChange(name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("prompt watcher error", zap.Error(err))
		}
	}
}

// promptName maps a watcher event to the prompt it affects. Chmod events
// and files other than *.txt are ignored.
func promptName(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	base := filepath.Base(event.Name)
	if filepath.Ext(base) != ".txt" || strings.HasPrefix(base, ".") {
		return "", false
	}
	return strings.TrimSuffix(base, ".txt"), true
}
