// Package navigator discovers source files related to an entry point so the
// style analyzer and implementer can see the surrounding code, not just one
// file. The discovery is heuristic: imports and field declarations name the
// collaborator types, and files carrying those names are looked up in the
// source tree.
package navigator

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/naoko-ai/naoko/internal/logging"
)

var (
	importRegex = regexp.MustCompile(`import\s+([\w.]+);`)
	fieldRegex  = regexp.MustCompile(`private\s+(?:final\s+)?([A-Z]\w+)\s+\w+;`)
)

// commonTypes are framework and library names that never map to project files.
var commonTypes = map[string]bool{
	"List": true, "Map": true, "Set": true, "String": true, "Integer": true,
	"Long": true, "Boolean": true, "Double": true, "Optional": true,
	"ResponseEntity": true, "Object": true, "Exception": true,
}

// Navigator finds related source files under a project root.
type Navigator struct {
	rootDir string
	logger  *logging.Logger
}

// New creates a Navigator rooted at the project directory.
func New(rootDir string, logger *logging.Logger) *Navigator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Navigator{rootDir: rootDir, logger: logger}
}

// FindRelated reads the entry point and returns it together with the files
// backing the types it references. A missing entry point yields an empty
// list, not an error: discovery is best-effort context gathering.
func (n *Navigator) FindRelated(entryPoint string) []string {
	content, err := os.ReadFile(entryPoint)
	if err != nil {
		n.logger.Warn("entry point not readable", "path", entryPoint, "error", err)
		return nil
	}

	names := make(map[string]bool)
	for _, m := range importRegex.FindAllStringSubmatch(string(content), -1) {
		imp := m[1]
		if strings.HasPrefix(imp, "java.") || strings.HasPrefix(imp, "org.springframework.") {
			continue
		}
		parts := strings.Split(imp, ".")
		names[parts[len(parts)-1]] = true
	}
	for _, m := range fieldRegex.FindAllStringSubmatch(string(content), -1) {
		names[m[1]] = true
	}

	// Conventional Maven/Gradle layout first, whole tree as fallback.
	base := filepath.Join(n.rootDir, "src", "main", "java")
	if _, err := os.Stat(base); err != nil {
		base = n.rootDir
	}

	found := map[string]bool{entryPoint: true}
	for name := range names {
		if commonTypes[name] {
			continue
		}
		if path := n.findFile(base, name+".java"); path != "" {
			found[path] = true
			n.logger.Debug("found related file", "type", name, "path", path)
		}
	}

	related := make([]string, 0, len(found))
	for path := range found {
		related = append(related, path)
	}
	sort.Strings(related)
	return related
}

// findFile returns the first file with the given name under base.
func (n *Navigator) findFile(base, name string) string {
	var match string
	_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if match != "" {
			return filepath.SkipAll
		}
		if !d.IsDir() && d.Name() == name {
			match = path
			return filepath.SkipAll
		}
		return nil
	})
	return match
}
