// Package content supplies challenge texts for sessions and races.
package content

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Challenge is one target text.
type Challenge struct {
	ID   string
	Text string
}

// Category is an ordered list of challenges raced back to back.
type Category struct {
	Name       string
	Challenges []Challenge
}

// Count returns the number of challenges in the category.
func (c Category) Count() int {
	return len(c.Challenges)
}

// Provider supplies target texts. Implementations must return stable
// content for a given ref: a race's participants all type the same text.
type Provider interface {
	Challenge(ref string) (Challenge, error)
	Category(name string) (Category, error)
}

// DirProvider serves challenges from .txt files in a directory. The file
// base name is the challenge ref; a subdirectory is a category whose
// challenges are ordered by file name.
type DirProvider struct {
	dir string
}

// NewDirProvider returns a provider rooted at dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{dir: dir}
}

// Challenge loads one challenge text.
func (p *DirProvider) Challenge(ref string) (Challenge, error) {
	text, err := loadText(filepath.Join(p.dir, ref+".txt"))
	if err != nil {
		return Challenge{}, fmt.Errorf("challenge %q: %w", ref, err)
	}
	return Challenge{ID: ref, Text: text}, nil
}

// Category loads an ordered challenge list from a subdirectory.
func (p *DirProvider) Category(name string) (Category, error) {
	dir := filepath.Join(p.dir, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Category{}, fmt.Errorf("category %q: %w", name, err)
	}
	var refs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		refs = append(refs, strings.TrimSuffix(entry.Name(), ".txt"))
	}
	if len(refs) == 0 {
		return Category{}, fmt.Errorf("category %q has no challenges", name)
	}
	sort.Strings(refs)

	cat := Category{Name: name}
	for _, ref := range refs {
		text, err := loadText(filepath.Join(dir, ref+".txt"))
		if err != nil {
			return Category{}, fmt.Errorf("category %q: %w", name, err)
		}
		cat.Challenges = append(cat.Challenges, Challenge{ID: name + "/" + ref, Text: text})
	}
	return cat, nil
}

// loadText reads a challenge file, joining its lines with single spaces so
// the target is one typeable line.
func loadText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("empty challenge file: %s", path)
	}
	return strings.Join(lines, " "), nil
}
