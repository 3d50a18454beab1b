package file

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// backupFile copies the database at path to a sibling file named after
// the version it holds, e.g. todo.db.todo-1.<uuid>.bak, and returns the
// new file's path. UUID v7 names sort by creation time.
func backupFile(path, tag string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s for backup: %w", path, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		id = uuid.New()
	}
	dst := fmt.Sprintf("%s.%s.%s.bak", path, strings.ReplaceAll(tag, "/", "-"), id)

	if err := atomic.WriteFile(dst, strings.NewReader(string(data))); err != nil {
		return "", fmt.Errorf("writing backup %s: %w", dst, err)
	}
	return dst, nil
}
