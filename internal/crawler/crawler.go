package crawler

import (
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultIgnored lists directory names that never hold project sources.
var DefaultIgnored = []string{
	".git", "__pycache__", "venv", ".venv", "env", "node_modules",
	"site-packages", ".tox", "build", "dist",
}

// Crawler scans a directory for Python source files.
type Crawler struct {
	ignored map[string]struct{}
	logger  *zap.Logger
}

// NewCrawler creates a new crawler instance.
func NewCrawler(logger *zap.Logger) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ignored := make(map[string]struct{}, len(DefaultIgnored))
	for _, name := range DefaultIgnored {
		ignored[name] = struct{}{}
	}
	return &Crawler{ignored: ignored, logger: logger}
}

// Files returns every Python file under root in lexical order.
func (c *Crawler) Files(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, skip := c.ignored[d.Name()]; skip && path != root {
				c.logger.Debug("skipping directory", zap.String("path", path))
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".py") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
