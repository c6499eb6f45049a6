package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/isaacchacko/den"
)

// FileStore writes files into a temporary directory and moves them into
// place on Commit, so readers never observe a half-written export.
type FileStore struct {
	baseDir string
	name    string
}

// NewFileStore creates a new FileStore.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

// Dir returns the final export directory.
func (s *FileStore) Dir() string {
	return filepath.Join(s.baseDir, s.name)
}

// SavePage writes page as markdown with front matter under pages/.
func (s *FileStore) SavePage(page *den.PageContent) error {
	relPath, err := URLToPath(page.URL)
	if err != nil {
		return err
	}
	return s.write(filepath.Join("pages", relPath), []byte(FormatPage(page)))
}

// SaveJSON writes v as indented JSON to name.
func (s *FileStore) SaveJSON(name string, v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return s.write(name, append(buf, '\n'))
}

func (s *FileStore) write(relPath string, data []byte) error {
	fullPath := filepath.Join(s.tempDir(), relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0644)
}

// FormatPage formats a page with YAML front matter.
func FormatPage(page *den.PageContent) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(strconv.Quote(page.Title))
	if !page.FetchedAt.IsZero() {
		b.WriteString("\nfetched: ")
		b.WriteString(page.FetchedAt.UTC().Format(time.RFC3339))
	}
	if page.ContentHash != "" {
		b.WriteString("\nhash: ")
		b.WriteString(page.ContentHash)
	}
	b.WriteString("\n---\n\n")
	b.WriteString(page.Content)
	return b.String()
}

// Commit replaces the final directory with the temporary one.
func (s *FileStore) Commit() error {
	if err := os.RemoveAll(s.Dir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.Dir())
}

// Abort discards everything written since the store was created.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
