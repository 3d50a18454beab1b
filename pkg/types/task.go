package types

import (
	"strings"
	"time"
)

// TimeLayout is the format of CreatedAt and CompletedAt (day/month hour:minute).
const TimeLayout = "02/01 15:04"

// Status is the lifecycle state of a task.
type Status string

// Task states.
const (
	StatusOpen Status = "open"
	StatusDone Status = "done"
)

// Valid reports whether s is a recognized status.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusDone
}

// ParseStatus converts a stored status string.
// Returns ErrInvalidStatus if the value is not recognized.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Task is a single entry of the todo list.
type Task struct {
	ID          int    `json:"id"`                     // Assigned by the backend on Create; 0 until then.
	Title       string `json:"title"`                  // Raw title, any character allowed.
	CreatedAt   string `json:"created_at"`             // Formatted with TimeLayout at creation, never recomputed.
	Status      Status `json:"status"`                 // StatusOpen or StatusDone.
	CompletedAt string `json:"completed_at,omitempty"` // Set once, on the first transition to done.
	Auto        bool   `json:"auto"`                   // Added by the automated populator.
}

// NewTask builds an open task from a caller-supplied title, stamping
// CreatedAt with the current time.
func NewTask(title string) Task {
	return Task{
		Title:     title,
		CreatedAt: time.Now().Format(TimeLayout),
		Status:    StatusOpen,
	}
}

// Validate checks the fields a caller controls. A title must contain
// something other than whitespace and the status must be recognized.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrInvalidTitle
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// PrepareNew fills the defaults of a task about to be created (open
// status, CreatedAt stamped with now) and validates the result. The id is
// left for the backend to assign.
func PrepareNew(t Task, now time.Time) (Task, error) {
	if t.Status == "" {
		t.Status = StatusOpen
	}
	if t.CreatedAt == "" {
		t.CreatedAt = now.Format(TimeLayout)
	}
	t.ID = 0
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Complete marks the task as done. CompletedAt is only set the first time.
func (t *Task) Complete(now time.Time) {
	t.Status = StatusDone
	if t.CompletedAt == "" {
		t.CompletedAt = now.Format(TimeLayout)
	}
}

// Reopen moves a done task back to open. CompletedAt is kept.
func (t *Task) Reopen() {
	t.Status = StatusOpen
}

// Done reports whether the task is completed.
func (t Task) Done() bool {
	return t.Status == StatusDone
}

// Delimiter separates fields of a stored record.
const Delimiter = ','

// Escape makes s safe to store as a single delimited field: backslashes,
// delimiters and line breaks are prefixed with a backslash.
// Unescape(Escape(s)) == s for every s.
func Escape(s string) string {
	if !strings.ContainsAny(s, "\\,\n\r") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case Delimiter:
			b.WriteString(`\,`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Unescape reverses Escape. A trailing lone backslash, or a backslash
// followed by an unknown character, is kept as is.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch next := s[i+1]; next {
		case '\\':
			b.WriteByte('\\')
		case Delimiter:
			b.WriteByte(Delimiter)
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(c)
			b.WriteByte(next)
		}
		i++
	}
	return b.String()
}

// SplitFields splits an escaped record line on unescaped delimiters.
// Fields are returned still escaped.
func SplitFields(line string) []string {
	var fields []string
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case Delimiter:
			fields = append(fields, line[start:i])
			start = i + 1
		}
	}
	return append(fields, line[start:])
}

// JoinFields escapes each field and joins them with the delimiter.
func JoinFields(fields ...string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = Escape(f)
	}
	return strings.Join(escaped, string(Delimiter))
}
