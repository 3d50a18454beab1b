package file

import (
	"fmt"
	"strconv"

	"github.com/tpsoftworks/todo/pkg/types"
)

// tagV2 adds completed_at: id,title,created_at,status,completed_at.
const tagV2 = "todo/2"

type v2Task struct {
	id          int
	title       string
	createdAt   string
	status      types.Status
	completedAt string
}

type v2Dataset struct {
	tasks []v2Task
}

func (d *v2Dataset) version() string { return tagV2 }

func (d *v2Dataset) records() []string {
	lines := make([]string, 0, len(d.tasks))
	for _, t := range d.tasks {
		lines = append(lines, types.JoinFields(strconv.Itoa(t.id), t.title, t.createdAt, string(t.status), t.completedAt))
	}
	return lines
}

func parseV2(body []string) (dataset, error) {
	ids := idSet{}
	d := &v2Dataset{tasks: make([]v2Task, 0, len(body))}
	for _, line := range body {
		f, err := splitRecord(line, 5)
		if err != nil {
			return nil, err
		}
		id, err := ids.parseID(f[0])
		if err != nil {
			return nil, err
		}
		d.tasks = append(d.tasks, v2Task{
			id:          id,
			title:       f[1],
			createdAt:   f[2],
			status:      normalizeStatus(f[3]),
			completedAt: f[4],
		})
	}
	return d, nil
}

// upgradeV2 carries a v1 dataset forward. Unknown statuses become open.
// Done tasks get created_at as their completion time, the earliest
// moment they can have been finished; open tasks have none.
func upgradeV2(prev dataset) (dataset, error) {
	src, ok := prev.(*v1Dataset)
	if !ok {
		return nil, fmt.Errorf("upgrade to %s: unexpected predecessor %s", tagV2, prev.version())
	}
	d := &v2Dataset{tasks: make([]v2Task, 0, len(src.tasks))}
	for _, t := range src.tasks {
		nt := v2Task{
			id:        t.id,
			title:     t.title,
			createdAt: t.createdAt,
			status:    normalizeStatus(t.status),
		}
		if nt.status == types.StatusDone {
			nt.completedAt = t.createdAt
		}
		d.tasks = append(d.tasks, nt)
	}
	return d, nil
}
