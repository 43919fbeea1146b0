package index

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// FileReport holds the reconstructed imports of one file.
type FileReport struct {
	Path       string   `json:"path"`
	Statements []string `json:"statements"`
	Unresolved int      `json:"unresolved"` // Bindings the resolver could not place
}

// Report is the result of indexing a set of files. Files are sorted by path.
type Report struct {
	Root  string       `json:"root,omitempty"`
	Files []FileReport `json:"files"`
}

// File returns the report for path.
func (r *Report) File(path string) (FileReport, bool) {
	i := sort.Search(len(r.Files), func(i int) bool { return r.Files[i].Path >= path })
	if i < len(r.Files) && r.Files[i].Path == path {
		return r.Files[i], true
	}
	return FileReport{}, false
}

// Statements returns the total number of statements across files.
func (r *Report) Statements() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Statements)
	}
	return n
}

// With returns a copy of r where the files of update replace their older
// versions and the removed paths are dropped.
func (r *Report) With(update *Report, removed ...string) *Report {
	byPath := make(map[string]FileReport, len(r.Files)+len(update.Files))
	for _, f := range r.Files {
		byPath[f.Path] = f
	}
	for _, f := range update.Files {
		byPath[f.Path] = f
	}
	for _, path := range removed {
		delete(byPath, path)
	}

	out := &Report{Root: r.Root, Files: make([]FileReport, 0, len(byPath))}
	for _, f := range byPath {
		out.Files = append(out.Files, f)
	}
	out.sort()
	return out
}

func (r *Report) sort() {
	sort.Slice(r.Files, func(i, j int) bool {
		return r.Files[i].Path < r.Files[j].Path
	})
}

// SaveReport persists the report to a JSON file.
func SaveReport(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// LoadReport loads a report from a JSON file.
func LoadReport(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	defer f.Close()

	r := &Report{}
	if err := json.NewDecoder(f).Decode(r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	// Older files may not be sorted.
	r.sort()
	return r, nil
}
