package file

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tpsoftworks/todo/pkg/types"
)

// tagV3 adds the auto flag: id,title,created_at,status,completed_at,auto.
// This is the format the driver serves from.
const tagV3 = "todo/3"

type v3Dataset struct {
	tasks []types.Task
}

func (d *v3Dataset) version() string { return tagV3 }

func (d *v3Dataset) records() []string {
	lines := make([]string, 0, len(d.tasks))
	for _, t := range d.tasks {
		lines = append(lines, formatV3(t))
	}
	return lines
}

func formatV3(t types.Task) string {
	return types.JoinFields(
		strconv.Itoa(t.ID),
		t.Title,
		t.CreatedAt,
		string(t.Status),
		t.CompletedAt,
		strconv.FormatBool(t.Auto),
	)
}

func parseV3(body []string) (dataset, error) {
	ids := idSet{}
	d := &v3Dataset{tasks: make([]types.Task, 0, len(body))}
	for _, line := range body {
		t, err := parseV3Record(ids, line)
		if err != nil {
			return nil, err
		}
		d.tasks = append(d.tasks, t)
	}
	return d, nil
}

// parseV3Record is strict: the current format is only ever written by
// this build, so an unknown status or flag means the file was damaged.
func parseV3Record(ids idSet, line string) (types.Task, error) {
	f, err := splitRecord(line, 6)
	if err != nil {
		return types.Task{}, err
	}
	id, err := ids.parseID(f[0])
	if err != nil {
		return types.Task{}, err
	}
	status, err := types.ParseStatus(f[3])
	if err != nil {
		return types.Task{}, fmt.Errorf("%w: task %d: status %q", types.ErrCorruptDatabase, id, f[3])
	}
	auto, err := strconv.ParseBool(strings.TrimSpace(f[5]))
	if err != nil {
		return types.Task{}, fmt.Errorf("%w: task %d: auto flag %q", types.ErrCorruptDatabase, id, f[5])
	}
	return types.Task{
		ID:          id,
		Title:       f[1],
		CreatedAt:   f[2],
		Status:      status,
		CompletedAt: f[4],
		Auto:        auto,
	}, nil
}

// upgradeV3 carries a v2 dataset forward. Existing tasks were all added
// by hand, so auto is false.
func upgradeV3(prev dataset) (dataset, error) {
	src, ok := prev.(*v2Dataset)
	if !ok {
		return nil, fmt.Errorf("upgrade to %s: unexpected predecessor %s", tagV3, prev.version())
	}
	d := &v3Dataset{tasks: make([]types.Task, 0, len(src.tasks))}
	for _, t := range src.tasks {
		status := t.status
		if !status.Valid() {
			status = types.StatusOpen
		}
		d.tasks = append(d.tasks, types.Task{
			ID:          t.id,
			Title:       t.title,
			CreatedAt:   t.createdAt,
			Status:      status,
			CompletedAt: t.completedAt,
		})
	}
	return d, nil
}
