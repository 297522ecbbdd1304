// Package discover finds order data files under a directory tree.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultPattern matches order data files.
const DefaultPattern = "*.json"

// ErrRootNotFound is returned when the discovery root does not exist.
var ErrRootNotFound = errors.New("data root not found")

type options struct {
	pattern string
	logger  *zap.Logger
}

// Option configures Discover.
type Option func(*options)

// WithPattern sets the shell pattern file names must match.
func WithPattern(pattern string) Option {
	return func(o *options) {
		if pattern != "" {
			o.pattern = pattern
		}
	}
}

// WithLogger sets the logger that receives the discovery summary.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Discover walks root recursively and returns the absolute path of every regular
// file whose name matches the pattern, in lexical order within each directory.
// Dot-files are skipped. A root that is itself a file is returned if it matches.
func Discover(root string, opts ...Option) ([]string, error) {
	o := options{pattern: DefaultPattern, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if _, err := filepath.Match(o.pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", o.pattern, err)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	files := make([]string, 0)
	if !info.IsDir() {
		if ok := matches(o.pattern, info.Name()); ok && info.Mode().IsRegular() {
			files = append(files, abs)
		}
	} else {
		err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if matches(o.pattern, d.Name()) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory: %w", err)
		}
	}

	o.logger.Info("files found", zap.Int("count", len(files)), zap.String("root", root))
	return files, nil
}

func matches(pattern, name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ok, _ := filepath.Match(pattern, name)
	return ok
}
