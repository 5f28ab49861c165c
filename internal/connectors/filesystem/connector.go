// Package filesystem discovers and watches source documents on local disk.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/logger"
)

// ErrClosed is returned when watching a closed connector.
var ErrClosed = errors.New("connector closed")

// Connector walks a source directory for supported documents.
type Connector struct {
	rootPath string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a connector rooted at rootPath.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// Root returns the source directory.
func (c *Connector) Root() string {
	return c.rootPath
}

// Validate checks that the root exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(c.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", c.rootPath)
		}
		return fmt.Errorf("stat %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", c.rootPath)
	}
	return nil
}

// Discover returns every non-hidden file of the given kind under the root,
// recursively, sorted by path. Content is read unless the kind is
// extracted by an external tool (PDF). Unreadable files are reported as
// skipped; an unusable root fails the whole call.
func (c *Connector) Discover(
	ctx context.Context,
	kind domain.DocumentKind,
) ([]domain.RawDocument, []*domain.DocumentLoadError, error) {
	if !kind.IsValid() {
		return nil, nil, fmt.Errorf("%w: document kind %q", domain.ErrUnsupportedType, kind)
	}
	if err := c.Validate(ctx); err != nil {
		return nil, nil, err
	}

	var paths []string
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if c.hidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if k, ok := domain.KindForPath(path); ok && k == kind {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", c.rootPath, err)
	}
	sort.Strings(paths)

	docs := make([]domain.RawDocument, 0, len(paths))
	var skipped []*domain.DocumentLoadError
	for _, path := range paths {
		raw, err := readRaw(path, kind)
		if err != nil {
			skipped = append(skipped, &domain.DocumentLoadError{Kind: kind, Path: path, Err: err})
			continue
		}
		docs = append(docs, raw)
	}
	logger.Debug("discovered %d %s files in %s", len(docs), kind, c.rootPath)
	return docs, skipped, nil
}

// Watch streams changes to supported documents under the root.
// The channel closes when ctx is cancelled or the connector is closed.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.SourceChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// fsnotify is not recursive, so register every visible directory.
	err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if c.hidden(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}
	c.watcher = watcher

	changes := make(chan domain.SourceChange)
	go c.watchLoop(ctx, watcher, changes)
	return changes, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- domain.SourceChange) {
	defer close(changes)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !c.hidden(event.Name) {
					if err := watcher.Add(event.Name); err != nil {
						logger.Warn("watch %s: %v", event.Name, err)
					}
				}
			}
			change := c.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// handleFsEvent maps a filesystem event to a change of a supported document.
// Directories, hidden files, unsupported kinds and chmod-only events are ignored.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.SourceChange {
	if c.hidden(event.Name) {
		return nil
	}
	kind, ok := domain.KindForPath(event.Name)
	if !ok {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.SourceChange{Type: domain.ChangeDeleted, Path: event.Name, Kind: kind}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		changeType := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = domain.ChangeCreated
		}
		return &domain.SourceChange{Type: changeType, Path: event.Name, Kind: kind}
	default:
		return nil
	}
}

// Close stops any active watcher. Safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// DocumentID derives a stable document identifier from a path.
// Loaders that emit several documents per file pass a distinguishing suffix.
func DocumentID(path string, suffix ...string) string {
	name := "file://" + path + strings.Join(suffix, "")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// hidden reports whether path is hidden relative to the root.
// The root itself may live in a hidden directory such as ~/.vox.
func (c *Connector) hidden(path string) bool {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil {
		return isHidden(path)
	}
	return isHidden(rel)
}

// isHidden reports whether any path component starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func readRaw(path string, kind domain.DocumentKind) (domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.RawDocument{}, err
	}
	raw := domain.RawDocument{
		URI:  path,
		Kind: kind,
		Metadata: map[string]any{
			"modified": info.ModTime().UTC().Format(time.RFC3339),
		},
	}
	if kind == domain.KindPDF {
		return raw, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, err
	}
	raw.Content = content
	return raw, nil
}
