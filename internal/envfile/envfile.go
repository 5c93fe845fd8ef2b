// Package envfile reads and updates flat KEY=VALUE environment files.
//
// The format is the minimal dotenv dialect the deployment scripts have always
// used: one KEY=VALUE pair per line, optional single or double quotes around
// the value, # comments, and blank lines. One layer of matching surrounding
// quotes is stripped; no escape sequences or variable expansion are
// interpreted. Lines that do not look like an assignment are skipped, not
// errors, so a hand-edited file never aborts a run.
package envfile

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// NotFoundError reports a missing environment file. It is fatal before any
// secret-store call is attempted.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("environment file not found: %s", e.Path)
}

// File is a parsed environment file. Later assignments to the same key
// overwrite earlier ones, matching shell sourcing semantics.
type File struct {
	Path string

	vars map[string]string
}

// Load parses the file at path. A missing file yields *NotFoundError; any
// other read failure is returned wrapped.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("reading environment file: %w", err)
	}
	defer f.Close()

	file := &File{Path: path, vars: make(map[string]string)}

	scanner := bufio.NewScanner(f)
	// Secrets can be long (certificates, connection strings).
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		file.vars[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading environment file: %w", err)
	}

	return file, nil
}

// parseLine splits one line into a key/value pair. Comment lines, blank
// lines, and lines without a valid KEY= prefix report ok=false.
func parseLine(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}

	idx := strings.Index(trimmed, "=")
	if idx <= 0 {
		return "", "", false
	}

	key = strings.TrimSpace(trimmed[:idx])
	if !validKey(key) {
		return "", "", false
	}

	value = strings.TrimSpace(trimmed[idx+1:])
	value = stripQuotes(value)
	return key, value, true
}

// validKey accepts the usual shell identifier shape. The mapping table mixes
// upper-case settings (AZURE_CLIENT_ID) and lower-case agent keys
// (interior_designer), so both cases are allowed.
func validKey(key string) bool {
	for i, r := range key {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(key) > 0
}

// stripQuotes removes one layer of matching surrounding quotes. Mismatched or
// lone quotes are left alone.
func stripQuotes(v string) string {
	if len(v) < 2 {
		return v
	}
	first, last := v[0], v[len(v)-1]
	if first != last {
		return v
	}
	if first == '"' || first == '\'' {
		return v[1 : len(v)-1]
	}
	return v
}

// Lookup returns the raw value for key. Present-with-empty and absent are
// distinguished here; callers that treat them the same (the mapping resolver
// does) check the value, not ok.
func (f *File) Lookup(key string) (string, bool) {
	v, ok := f.vars[key]
	return v, ok
}

// Get returns the value for key, or "" if the key is absent.
func (f *File) Get(key string) string {
	return f.vars[key]
}

// Len reports the number of distinct keys parsed.
func (f *File) Len() int {
	return len(f.vars)
}

// Keys returns all parsed keys in sorted order.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.vars))
	for k := range f.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Update rewrites the file at path so that every key in values carries its
// new value: existing assignments are replaced in place, missing keys are
// appended at the end in sorted order. All other lines, including comments
// and malformed lines, are preserved verbatim. A missing file is created
// with owner-only permissions, since the values are typically credentials.
func Update(path string, values map[string]string) error {
	remaining := make(map[string]string, len(values))
	for k, v := range values {
		remaining[k] = v
	}

	var lines []string
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// New file; nothing to preserve.
	case err != nil:
		return fmt.Errorf("reading environment file: %w", err)
	default:
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		// A fresh empty file splits to one empty line; drop it.
		if len(lines) == 1 && lines[0] == "" {
			lines = nil
		}
	}

	for i, line := range lines {
		key, _, ok := parseLine(line)
		if !ok {
			continue
		}
		if v, found := remaining[key]; found {
			lines[i] = formatAssignment(key, v)
			delete(remaining, key)
		}
	}

	appended := make([]string, 0, len(remaining))
	for k := range remaining {
		appended = append(appended, k)
	}
	sort.Strings(appended)
	for _, k := range appended {
		lines = append(lines, formatAssignment(k, remaining[k]))
	}

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("writing environment file: %w", err)
	}
	return nil
}

// formatAssignment renders KEY=VALUE, quoting values that would not survive
// a round trip through parseLine.
func formatAssignment(key, value string) string {
	if strings.ContainsAny(value, " \t#") || value == "" {
		return fmt.Sprintf("%s=%q", key, value)
	}
	return key + "=" + value
}
