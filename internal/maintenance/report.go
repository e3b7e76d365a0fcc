package maintenance

import (
	"context"
	"fmt"

	"github.com/neurastate/datahub/internal/logger"
)

// Task names the maintenance operations the CLI can invoke.
type Task string

const (
	TaskUpdateParentFolios Task = "update-parent-folios"
	TaskUpdateMeta         Task = "update-meta"
	TaskRunAll             Task = "run-all"
)

// TaskReport is one completed step inside a composite run.
type TaskReport struct {
	Name    string      `json:"name"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// Report is the structured outcome of a maintenance invocation. Database
// errors are absorbed here rather than propagated, so the caller can decide
// on an exit code while still seeing partial results.
type Report struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data,omitempty"`
	Tasks   []TaskReport `json:"tasks,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Execute runs the named task and converts any failure into a Report.
// run-all executes parent flags strictly before meta: the metadata pass
// reads the flag the first pass maintains. The sequence is not transactional;
// a failure after the first step leaves flags updated and metadata stale,
// which the partial task list makes visible.
func Execute(ctx context.Context, runner Runner, task Task, log *logger.Logger) *Report {
	log.Info("Starting data maintenance task", map[string]interface{}{
		"task": string(task),
	})

	switch task {
	case TaskUpdateParentFolios:
		result, err := runner.UpdateParentFolioFlags(ctx)
		if err != nil {
			return failure("Failed to update parent folio flags", err, nil, log)
		}
		return &Report{
			Success: true,
			Message: "Parent folio flags updated successfully",
			Data:    result,
		}

	case TaskUpdateMeta:
		result, err := runner.UpdateMeta(ctx)
		if err != nil {
			return failure("Failed to update property metadata", err, nil, log)
		}
		return &Report{
			Success: true,
			Message: "Property metadata updated successfully",
			Data:    result,
		}

	case TaskRunAll:
		var tasks []TaskReport

		parentResult, err := runner.UpdateParentFolioFlags(ctx)
		if err != nil {
			return failure("Failed to update parent folio flags", err, tasks, log)
		}
		tasks = append(tasks, TaskReport{
			Name:    string(TaskUpdateParentFolios),
			Success: true,
			Data:    parentResult,
		})

		metaResult, err := runner.UpdateMeta(ctx)
		if err != nil {
			return failure("Failed to update property metadata", err, tasks, log)
		}
		tasks = append(tasks, TaskReport{
			Name:    string(TaskUpdateMeta),
			Success: true,
			Data:    metaResult,
		})

		return &Report{
			Success: true,
			Message: "All data maintenance tasks completed successfully",
			Tasks:   tasks,
		}

	default:
		return &Report{
			Success: false,
			Message: "Failed to complete data maintenance task",
			Error:   fmt.Sprintf("unknown maintenance task: %s", task),
		}
	}
}

func failure(message string, err error, completed []TaskReport, log *logger.Logger) *Report {
	log.Error("Data maintenance task failed", err, nil)
	return &Report{
		Success: false,
		Message: message,
		Tasks:   completed,
		Error:   err.Error(),
	}
}
