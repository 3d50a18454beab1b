package file

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/tpsoftworks/todo/pkg/types"
)

// readDatabase reads the file at path and splits it into the version tag
// (first line) and the record lines that follow. Blank lines are dropped.
func readDatabase(path string) (string, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	tag := strings.TrimSpace(lines[0])

	var body []string
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		body = append(body, line)
	}
	return tag, body, nil
}

// writeDatabase replaces the file at path with the serialized dataset.
// The new content is written to a temporary file and renamed over path.
func writeDatabase(path string, ds dataset) error {
	var b strings.Builder
	for _, line := range serialize(ds) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := atomic.WriteFile(path, strings.NewReader(b.String())); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// splitRecord splits one record line into exactly n unescaped fields.
func splitRecord(line string, n int) ([]string, error) {
	fields := types.SplitFields(line)
	if len(fields) != n {
		return nil, fmt.Errorf("%w: expected %d fields, got %d in %q", types.ErrCorruptDatabase, n, len(fields), line)
	}
	for i := range fields {
		fields[i] = types.Unescape(fields[i])
	}
	return fields, nil
}

// idSet tracks ids seen while parsing one file.
type idSet map[int]bool

// parseID parses a record id. Ids must be positive and unique in a file.
func (s idSet) parseID(field string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid task id %q", types.ErrCorruptDatabase, field)
	}
	if s[id] {
		return 0, fmt.Errorf("%w: duplicate task id %d", types.ErrCorruptDatabase, id)
	}
	s[id] = true
	return id, nil
}

// normalizeStatus maps a stored status to a known value. Anything that is
// not recognized becomes StatusOpen.
func normalizeStatus(s string) types.Status {
	st, err := types.ParseStatus(s)
	if err != nil {
		return types.StatusOpen
	}
	return st
}
