package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

type ChangedFile struct {
	Path    string // Relative to the directory passed to ChangedPythonFiles
	Deleted bool
}

// ChangedPythonFiles runs git diff in dir and returns the Python files that
// changed since baseRef, including uncommitted changes and untracked files
// not covered by .gitignore.
func ChangedPythonFiles(ctx context.Context, dir, baseRef string) ([]ChangedFile, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "diff", "--name-status", "--relative", baseRef, "--")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}

	changes, err := parseNameStatus(output)
	if err != nil {
		return nil, err
	}

	untracked, err := untrackedFiles(ctx, dir)
	if err != nil {
		return nil, err
	}
	changes = append(changes, untracked...)

	var out []ChangedFile
	seen := make(map[string]bool)
	for _, c := range changes {
		if !strings.HasSuffix(c.Path, ".py") || seen[c.Path] {
			continue
		}
		seen[c.Path] = true
		c.Path = filepath.FromSlash(c.Path)
		out = append(out, c)
	}
	return out, nil
}

func untrackedFiles(ctx context.Context, dir string) ([]ChangedFile, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "ls-files", "--others", "--exclude-standard", "--", "*.py")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files failed: %w", err)
	}

	var files []ChangedFile
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			files = append(files, ChangedFile{Path: line})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

// parseNameStatus reads `git diff --name-status` output. A rename is
// reported as the deletion of the old path and a change to the new one.
func parseNameStatus(output []byte) ([]ChangedFile, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	var changes []ChangedFile

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("unexpected git diff line %q", line)
		}

		status := fields[0]
		switch status[0] {
		case 'D':
			changes = append(changes, ChangedFile{Path: fields[1], Deleted: true})
		case 'R':
			if len(fields) < 3 {
				return nil, fmt.Errorf("unexpected git diff line %q", line)
			}
			changes = append(changes,
				ChangedFile{Path: fields[1], Deleted: true},
				ChangedFile{Path: fields[2]},
			)
		case 'C':
			if len(fields) < 3 {
				return nil, fmt.Errorf("unexpected git diff line %q", line)
			}
			changes = append(changes, ChangedFile{Path: fields[2]})
		default:
			changes = append(changes, ChangedFile{Path: fields[1]})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}
