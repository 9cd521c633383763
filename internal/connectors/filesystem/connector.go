// Package filesystem reads plain-text and Markdown files from a local
// directory tree and watches it for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/custodia-labs/docassist/internal/core/domain"
	"github.com/custodia-labs/docassist/internal/logger"
	"github.com/custodia-labs/docassist/internal/normalisers/markdown"
	"github.com/custodia-labs/docassist/internal/normalisers/plaintext"
)

// MaxFileSize is the largest file the connector will read.
const MaxFileSize = 10 << 20

// ErrClosed is returned when a closed connector is used.
var ErrClosed = errors.New("filesystem connector closed")

// normaliser cleans a document read from disk.
type normaliser interface {
	Extensions() []string
	Normalise(domain.Document) domain.Document
}

// normalisers maps each supported file extension to its normaliser.
var normalisers = byExtension(plaintext.New(), markdown.New())

func byExtension(ns ...normaliser) map[string]normaliser {
	m := make(map[string]normaliser)
	for _, n := range ns {
		for _, ext := range n.Extensions() {
			m[ext] = n
		}
	}
	return m
}

// ChangeType identifies what happened to a watched file.
type ChangeType int

const (
	ChangeCreated ChangeType = iota
	ChangeUpdated
	ChangeDeleted
)

func (t ChangeType) String() string {
	switch t {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is a file event observed by Watch. Document is nil for deletions.
type Change struct {
	Type     ChangeType
	Path     string
	Document *domain.Document
}

// Connector reads documents from a directory tree.
type Connector struct {
	rootPath string

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a connector rooted at rootPath.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// RootPath returns the directory the connector reads from.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Validate checks that the root path exists and is a directory.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}
	return nil
}

// Scan yields every supported, non-hidden file under the root. Files that
// cannot be read are yielded as errors and the walk continues.
func (c *Connector) Scan(ctx context.Context) iter.Seq2[domain.Document, error] {
	return func(yield func(domain.Document, error) bool) {
		if err := c.Validate(ctx); err != nil {
			yield(domain.Document{}, err)
			return
		}

		stop := errors.New("stop")
		err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if !yield(domain.Document{}, err) {
					return stop
				}
				return nil
			}
			if path != c.rootPath && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !isSupported(path) {
				return nil
			}

			doc, err := ReadDocument(path)
			if !yield(doc, err) {
				return stop
			}
			return nil
		})

		if err != nil && !errors.Is(err, stop) {
			yield(domain.Document{}, err)
		}
	}
}

// Watch reports file changes under the root until ctx is cancelled or the
// connector is closed. The returned channel is closed when watching stops.
func (c *Connector) Watch(ctx context.Context) (<-chan Change, error) {
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if c.watcher != nil {
		_ = c.watcher.Close()
	}
	c.watcher = watcher
	c.mu.Unlock()

	if err := addTree(watcher, c.rootPath); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}

	changes := make(chan Change)
	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) && isDir(event.Name) && !isHidden(filepath.Base(event.Name)) {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Warn("watch %s: %v", event.Name, err)
					}
					continue
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
				logger.Warn("filesystem watcher: %v", err)
			}
		}
	}()

	return changes, nil
}

// Close stops any active watch.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// handleFsEvent converts an fsnotify event into a Change, or nil when the
// event is irrelevant.
func (c *Connector) handleFsEvent(event fsnotify.Event) *Change {
	if hiddenWithin(c.rootPath, event.Name) || !isSupported(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Type: ChangeDeleted, Path: event.Name}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if isDir(event.Name) {
			return nil
		}
		doc, err := ReadDocument(event.Name)
		if err != nil {
			logger.Warn("read %s: %v", event.Name, err)
			return nil
		}
		typ := ChangeUpdated
		if event.Has(fsnotify.Create) {
			typ = ChangeCreated
		}
		return &Change{Type: typ, Path: event.Name, Document: &doc}
	default:
		return nil
	}
}

// DocumentID returns the stable document ID for a file path, so re-reading
// a file replaces its stored document.
func DocumentID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+path)).String()
}

// ReadDocument reads a single UTF-8 text file and normalises it according
// to its extension. Files of other extensions are returned unchanged.
func ReadDocument(path string) (domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Document{}, err
	}
	if info.Size() > MaxFileSize {
		return domain.Document{}, fmt.Errorf("%s: file larger than %d bytes", path, MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}
	if !utf8.Valid(data) {
		return domain.Document{}, fmt.Errorf("%s: not valid UTF-8 text", path)
	}

	doc := domain.Document{
		ID:        DocumentID(path),
		Title:     filepath.Base(path),
		Source:    path,
		Kind:      domain.KindFile,
		Content:   string(data),
		CreatedAt: info.ModTime().UTC().Truncate(time.Second),
	}
	if n, ok := normalisers[strings.ToLower(filepath.Ext(path))]; ok {
		doc = n.Normalise(doc)
	}
	return doc, nil
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isSupported(path string) bool {
	_, ok := normalisers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// isHidden reports whether any element of path starts with a dot.
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

// hiddenWithin checks only the part of path below root.
func hiddenWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return isHidden(filepath.Base(path))
	}
	return isHidden(rel)
}
