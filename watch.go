package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/radovskyb/watcher"
	"go.uber.org/zap"
)

// EventReload is posted by the watcher so the reload runs on the main
// goroutine.
type EventReload struct {
	t time.Time
}

func (e *EventReload) When() time.Time { return e.t }

// watchTarget returns the path to watch and whether to recurse: the file
// itself in file mode, the worktree in diff mode.
func watchTarget(s *State) (string, bool, error) {
	if s.Mode == ModeFile {
		return s.Path, false, nil
	}
	root, err := gitRoot()
	return root, true, err
}

// isGitPath reports whether path is inside a .git directory.
func isGitPath(path string) bool {
	sep := string(filepath.Separator)
	return strings.Contains(path, sep+".git"+sep) || strings.HasSuffix(path, sep+".git")
}

// startWatcher sends on updateCh whenever the watched files change. It
// blocks until the watcher stops.
func startWatcher(s *State, updateCh chan<- struct{}) {
	target, recursive, err := watchTarget(s)
	if err != nil || target == "" {
		s.Logger.Debug("watch disabled", zap.Error(err))
		return
	}

	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create, watcher.Remove, watcher.Rename)
	w.AddFilterHook(func(_ os.FileInfo, fullPath string) error {
		if isGitPath(fullPath) {
			return watcher.ErrSkip
		}
		return nil
	})

	if recursive {
		err = w.AddRecursive(target)
	} else {
		err = w.Add(target)
	}
	if err != nil {
		s.Logger.Warn("Error starting watcher", zap.String("path", target), zap.Error(err))
		return
	}

	go func() {
		for {
			select {
			case <-w.Event:
				select {
				case updateCh <- struct{}{}:
				default:
				}
			case err := <-w.Error:
				s.Logger.Warn("watcher error", zap.Error(err))
			case <-w.Closed:
				return
			}
		}
	}()

	if err := w.Start(100 * time.Millisecond); err != nil {
		s.Logger.Warn("Error running watcher", zap.Error(err))
	}
}

// watchAndUpdate debounces watcher notifications into EventReload events.
func watchAndUpdate(s *State, screen tcell.Screen) {
	updates := make(chan struct{}, 1)
	go startWatcher(s, updates)

	var pending *time.Timer
	for range updates {
		if pending != nil {
			pending.Stop()
		}
		pending = time.AfterFunc(300*time.Millisecond, func() {
			_ = screen.PostEvent(&EventReload{t: time.Now()})
		})
	}
}
