package mpapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// TaskQuery filters the tasks route.
type TaskQuery struct {
	TaskIDs  []string
	Formula  []string
	Elements []string
}

// Query renders the filters as API parameters.
func (t TaskQuery) Query() (Query, error) {
	q := Query{"formula": t.Formula, "elements": t.Elements}
	if err := setIDs(q, "task_ids", t.TaskIDs); err != nil {
		return nil, err
	}
	return q, nil
}

// TaskRester queries individual calculations.
type TaskRester struct {
	*Rester[schema.TaskDoc]
	trajectory  *Rester[schema.TrajectoryDoc]
	deprecation *Rester[schema.DeprecationDoc]
}

func newTaskRester(c *Client) *TaskRester {
	return &TaskRester{
		Rester:      NewRester[schema.TaskDoc](c, "tasks"),
		trajectory:  NewRester[schema.TrajectoryDoc](c, "tasks/trajectory"),
		deprecation: NewRester[schema.DeprecationDoc](c, "tasks/deprecation"),
	}
}

// SearchTaskDocs returns the tasks matching tq.
func (r *TaskRester) SearchTaskDocs(ctx context.Context, tq TaskQuery, opts ...SearchOption) ([]schema.TaskDoc, error) {
	q, err := tq.Query()
	if err != nil {
		return nil, err
	}
	return r.Search(ctx, q, opts...)
}

// GetTrajectory returns the ionic relaxation trajectories of a task, one
// per calculation.
func (r *TaskRester) GetTrajectory(ctx context.Context, taskID string) ([]schema.Trajectory, error) {
	ids, err := ValidateIDs([]string{taskID})
	if err != nil {
		return nil, err
	}
	docs, _, err := r.trajectory.single(ctx, "", url.Values{"task_ids": {ids[0]}})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 || len(docs[0].Trajectories) == 0 {
		return nil, fmt.Errorf("%w: no trajectory data for %s found", ErrNoResult, ids[0])
	}
	return docs[0].Trajectories, nil
}

// IsDeprecated reports, for every task id, whether it was deprecated.
func (r *TaskRester) IsDeprecated(ctx context.Context, taskIDs ...string) (map[string]bool, error) {
	ids, err := ValidateIDs(taskIDs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}
	docs, _, err := r.deprecation.single(ctx, "", url.Values{"task_ids": {strings.Join(ids, ",")}})
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(docs))
	for _, d := range docs {
		out[d.TaskID] = d.Deprecated
	}
	return out, nil
}
