package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"envdiff/internal/model"
)

// ReadError wraps a failure to read one file at load or refresh time. It is
// surfaced to the user and never crashes the process; a file that vanishes
// mid-session degrades its column instead (see the session layer).
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
	}
	return path
}

// ReadFile loads one file from disk into ground truth.
func ReadFile(path string) (model.EnvFile, error) {
	path = ExpandTilde(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return model.EnvFile{}, &ReadError{Path: path, Err: err}
	}
	lines := Parse(string(data))
	return model.EnvFile{
		Path: path,
		Name: filepath.Base(path),
		Vars: Vars(lines),
	}, nil
}

// Load reads every path. Any unreadable file fails the whole load; callers
// starting a session need all columns present.
func Load(paths []string) ([]model.EnvFile, error) {
	files := make([]model.EnvFile, 0, len(paths))
	for _, p := range paths {
		f, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
