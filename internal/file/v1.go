package file

import (
	"strconv"

	"github.com/tpsoftworks/todo/pkg/types"
)

// tagV1 is the first versioned format: id,title,created_at,status.
const tagV1 = "todo/1"

type v1Task struct {
	id        int
	title     string
	createdAt string
	status    string // stored verbatim; not validated in this format
}

type v1Dataset struct {
	tasks []v1Task
}

func (d *v1Dataset) version() string { return tagV1 }

func (d *v1Dataset) records() []string {
	lines := make([]string, 0, len(d.tasks))
	for _, t := range d.tasks {
		lines = append(lines, types.JoinFields(strconv.Itoa(t.id), t.title, t.createdAt, t.status))
	}
	return lines
}

func parseV1(body []string) (dataset, error) {
	ids := idSet{}
	d := &v1Dataset{tasks: make([]v1Task, 0, len(body))}
	for _, line := range body {
		f, err := splitRecord(line, 4)
		if err != nil {
			return nil, err
		}
		id, err := ids.parseID(f[0])
		if err != nil {
			return nil, err
		}
		d.tasks = append(d.tasks, v1Task{id: id, title: f[1], createdAt: f[2], status: f[3]})
	}
	return d, nil
}
