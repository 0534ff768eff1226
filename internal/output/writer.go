package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// OutputWriteError reports an artifact that could not be written.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("write artifact %q: %v", e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error { return e.Err }

// Writer manages artifacts for a single report generation. Directories are
// created on first write, so an unused Writer leaves no trace on disk.
type Writer struct {
	RunDir  string
	written map[string]struct{}
	// existed records whether RunDir was present before the first write.
	existed *bool
}

// NewWriter returns a Writer rooted at runDir.
func NewWriter(runDir string) *Writer {
	return &Writer{RunDir: runDir, written: map[string]struct{}{}}
}

// Dir returns the artifact root.
func (w *Writer) Dir() string { return w.RunDir }

// WriteJSON writes an object to a JSON file under the run directory.
func (w *Writer) WriteJSON(name string, value any) (string, error) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", &OutputWriteError{Path: filepath.Join(w.RunDir, name), Err: err}
	}
	return w.WriteBytes(name, append(payload, '\n'))
}

// WriteText writes a string to a file under the run directory.
func (w *Writer) WriteText(name string, data string) (string, error) {
	return w.WriteBytes(name, []byte(data))
}

// WriteBytes writes bytes to a file under the run directory.
func (w *Writer) WriteBytes(name string, data []byte) (string, error) {
	path := filepath.Join(w.RunDir, filepath.FromSlash(name))
	if err := w.mkdirFor(path); err != nil {
		return "", &OutputWriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &OutputWriteError{Path: path, Err: err}
	}
	w.record(name)
	return path, nil
}

// CopyFile copies src to name under the run directory.
func (w *Writer) CopyFile(name, src string) (string, error) {
	path := filepath.Join(w.RunDir, filepath.FromSlash(name))
	in, err := os.Open(src)
	if err != nil {
		return "", &OutputWriteError{Path: path, Err: err}
	}
	defer in.Close()

	if err := w.mkdirFor(path); err != nil {
		return "", &OutputWriteError{Path: path, Err: err}
	}
	out, err := os.Create(path)
	if err != nil {
		return "", &OutputWriteError{Path: path, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", &OutputWriteError{Path: path, Err: err}
	}
	if err := out.Close(); err != nil {
		return "", &OutputWriteError{Path: path, Err: err}
	}
	w.record(name)
	return path, nil
}

// Artifacts lists written artifact names, slash separated and sorted.
func (w *Writer) Artifacts() []string {
	out := make([]string, 0, len(w.written))
	for name := range w.written {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Discard removes every artifact written so far, then the directories left
// empty by that, so a failed generation leaves nothing behind. RunDir itself
// is only removed when this Writer created it.
func (w *Writer) Discard() error {
	var firstErr error
	root := filepath.Clean(w.RunDir)
	dirs := map[string]struct{}{}
	for _, name := range w.Artifacts() {
		path := filepath.Join(w.RunDir, filepath.FromSlash(name))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = &OutputWriteError{Path: path, Err: err}
		}
		for dir := filepath.Dir(path); dir != root && dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
			dirs[dir] = struct{}{}
		}
		delete(w.written, name)
	}

	// Deepest first so parents are empty by the time they are tried.
	ordered := make([]string, 0, len(dirs))
	for dir := range dirs {
		ordered = append(ordered, dir)
	}
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })
	for _, dir := range ordered {
		_ = os.Remove(dir)
	}
	if w.existed != nil && !*w.existed {
		_ = os.Remove(w.RunDir)
	}
	return firstErr
}

func (w *Writer) mkdirFor(path string) error {
	if w.existed == nil {
		_, err := os.Stat(w.RunDir)
		existed := err == nil
		w.existed = &existed
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func (w *Writer) record(name string) {
	if w.written == nil {
		w.written = map[string]struct{}{}
	}
	w.written[filepath.ToSlash(name)] = struct{}{}
}
