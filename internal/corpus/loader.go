// Package corpus loads Markdown files from a filesystem into a documents table
// that md_ast can be joined against.
package corpus

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Extensions selected by Load, lower case.
var Extensions = []string{".md", ".markdown", ".mdx"}

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// Stats summarises one Load.
type Stats struct {
	Loaded  int
	Skipped int
}

// Load walks root on fs and adds every Markdown file to target. Paths are
// stored relative to root with forward slashes. Binary files are skipped and
// logged; a failing target aborts the walk.
func Load(fs billy.Filesystem, root string, target Target) (Stats, error) {
	var stats Stats
	if root == "" {
		root = "/"
	}

	err := util.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != root && skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !isMarkdown(p) {
			return nil
		}

		content, err := util.ReadFile(fs, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		if isBinary(content) {
			log.Printf("corpus: skipping binary file %s", p)
			stats.Skipped++
			return nil
		}

		doc := Document{
			Path:    relative(root, p),
			Content: string(content),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if err := target.Add(doc); err != nil {
			return err
		}
		stats.Loaded++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("load %s: %w", root, err)
	}
	return stats, nil
}

func isMarkdown(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// isBinary reports a NUL byte in the first 8000 bytes, as git does.
func isBinary(content []byte) bool {
	if len(content) > 8000 {
		content = content[:8000]
	}
	return bytes.IndexByte(content, 0) >= 0
}

func relative(root, p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	root = strings.TrimSuffix(strings.ReplaceAll(root, "\\", "/"), "/")
	return strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
}
