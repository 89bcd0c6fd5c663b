package workspace

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sergeknystautas/gitview/internal/config"
	"github.com/sergeknystautas/gitview/internal/logging"
	"github.com/sergeknystautas/gitview/internal/vcs"
)

// GitWatcher watches .git metadata directories and calls onChange, debounced,
// for the repository whose metadata changed.
type GitWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(repoDir string)
	logger   logging.Logger

	// watchedPaths maps watched filesystem paths to repository directories.
	// Several worktrees can map to the same path (shared base repo refs/).
	watchedPaths   map[string][]string
	watchedPathsMu sync.Mutex

	// debounceTimers holds per-repository debounce timers.
	debounceTimers   map[string]*time.Timer
	debounceTimersMu sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewGitWatcher creates a new git watcher. Returns nil if watching is disabled
// in config or the watcher cannot be created.
func NewGitWatcher(cfg *config.Config, logger logging.Logger, onChange func(repoDir string)) *GitWatcher {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("component", "git-watcher")

	if !cfg.GetWatchEnabled() {
		logger.Info("disabled by config")
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create watcher", "err", err)
		return nil
	}

	return &GitWatcher{
		watcher:        w,
		debounce:       cfg.WatchDebounce(),
		onChange:       onChange,
		logger:         logger,
		watchedPaths:   make(map[string][]string),
		debounceTimers: make(map[string]*time.Timer),
		stopCh:         make(chan struct{}),
	}
}

// Start launches the event loop goroutine.
func (gw *GitWatcher) Start() {
	go gw.eventLoop()
	gw.logger.Debug("started")
}

// Stop closes the watcher and cancels all pending timers.
// Safe to call multiple times.
func (gw *GitWatcher) Stop() {
	gw.stopOnce.Do(func() {
		close(gw.stopCh)
		gw.watcher.Close()

		gw.debounceTimersMu.Lock()
		for _, t := range gw.debounceTimers {
			t.Stop()
		}
		gw.debounceTimersMu.Unlock()

		gw.logger.Debug("stopped")
	})
}

// AddRepo watches the git metadata of the repository at repoDir: the git dir
// itself (HEAD, index, rebase-merge), refs/ and logs/, and for worktrees the
// main repository's refs/.
func (gw *GitWatcher) AddRepo(repoDir string) error {
	gitDir, err := vcs.ResolveGitDir(repoDir)
	if err != nil {
		return err
	}

	gw.addWatch(gitDir, repoDir)

	refsDir := filepath.Join(gitDir, "refs")
	gw.watchRecursive(refsDir, repoDir)
	gw.watchRecursive(filepath.Join(gitDir, "logs"), repoDir)
	gw.watchRecursive(filepath.Join(gitDir, "rebase-merge"), repoDir)

	if baseRefs := vcs.SharedRefsDir(gitDir); baseRefs != "" && baseRefs != refsDir {
		gw.watchRecursive(baseRefs, repoDir)
	}

	gw.logger.Info("watching", "repo", repoDir, "gitdir", gitDir)
	return nil
}

// RemoveRepo removes all watches for a repository and cancels its debounce
// timer.
func (gw *GitWatcher) RemoveRepo(repoDir string) {
	gw.watchedPathsMu.Lock()
	var pathsToRemove []string
	for path, repos := range gw.watchedPaths {
		filtered := removeFromSlice(repos, repoDir)
		if len(filtered) == 0 {
			pathsToRemove = append(pathsToRemove, path)
			delete(gw.watchedPaths, path)
		} else {
			gw.watchedPaths[path] = filtered
		}
	}
	gw.watchedPathsMu.Unlock()

	for _, path := range pathsToRemove {
		gw.watcher.Remove(path)
	}

	gw.debounceTimersMu.Lock()
	if t, ok := gw.debounceTimers[repoDir]; ok {
		t.Stop()
		delete(gw.debounceTimers, repoDir)
	}
	gw.debounceTimersMu.Unlock()

	gw.logger.Info("unwatched", "repo", repoDir)
}

func (gw *GitWatcher) eventLoop() {
	for {
		select {
		case event, ok := <-gw.watcher.Events:
			if !ok {
				return
			}
			gw.handleEvent(event)
		case err, ok := <-gw.watcher.Errors:
			if !ok {
				return
			}
			gw.logger.Warn("watch error", "err", err)
		case <-gw.stopCh:
			return
		}
	}
}

// handleEvent maps an fsnotify event to repositories and resets their
// debounce timers.
func (gw *GitWatcher) handleEvent(event fsnotify.Event) {
	// New directories (refs/remotes/<name>, rebase-merge) get their own watch.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			gw.watchedPathsMu.Lock()
			repos := append([]string(nil), gw.watchedPaths[filepath.Dir(event.Name)]...)
			gw.watchedPathsMu.Unlock()

			for _, repo := range repos {
				gw.watchRecursive(event.Name, repo)
			}
		}
	}

	for _, repo := range gw.findRepos(event.Name) {
		gw.resetDebounce(repo)
	}
}

// findRepos returns the repositories associated with path, checking the
// exact path and then its parent directories.
func (gw *GitWatcher) findRepos(path string) []string {
	gw.watchedPathsMu.Lock()
	defer gw.watchedPathsMu.Unlock()

	if repos, ok := gw.watchedPaths[path]; ok {
		return append([]string(nil), repos...)
	}

	dir := filepath.Dir(path)
	for {
		if repos, ok := gw.watchedPaths[dir]; ok {
			return append([]string(nil), repos...)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

func (gw *GitWatcher) resetDebounce(repoDir string) {
	gw.debounceTimersMu.Lock()
	defer gw.debounceTimersMu.Unlock()

	if t, ok := gw.debounceTimers[repoDir]; ok {
		t.Reset(gw.debounce)
		return
	}

	gw.debounceTimers[repoDir] = time.AfterFunc(gw.debounce, func() {
		select {
		case <-gw.stopCh:
			return
		default:
		}
		if gw.onChange != nil {
			gw.onChange(repoDir)
		}
	})
}

// addWatch adds a filesystem watch and maps the path to a repository.
func (gw *GitWatcher) addWatch(path, repoDir string) {
	if _, err := os.Stat(path); err != nil {
		return
	}

	gw.watchedPathsMu.Lock()
	repos := gw.watchedPaths[path]
	needsAdd := len(repos) == 0
	if !containsString(repos, repoDir) {
		gw.watchedPaths[path] = append(repos, repoDir)
	}
	gw.watchedPathsMu.Unlock()

	if needsAdd {
		if err := gw.watcher.Add(path); err != nil {
			gw.logger.Warn("failed to watch", "path", path, "err", err)
		}
	}
}

// watchRecursive watches a directory and all its subdirectories.
func (gw *GitWatcher) watchRecursive(dir, repoDir string) {
	if _, err := os.Stat(dir); err != nil {
		return
	}

	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			gw.addWatch(path, repoDir)
		}
		return nil
	})
}

func containsString(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}

func removeFromSlice(slice []string, val string) []string {
	result := make([]string, 0, len(slice))
	for _, s := range slice {
		if s != val {
			result = append(result, s)
		}
	}
	return result
}
