package mcpadapter

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/promptops/experiment-hub/internal/models"
	"github.com/promptops/experiment-hub/internal/runstate"
	"github.com/promptops/experiment-hub/internal/setup"
)

// ListExperimentsInput is the (empty) MCP tool input for listing experiments.
type ListExperimentsInput struct{}

// ExperimentList is the MCP tool output for listing experiments.
type ExperimentList struct {
	Experiments []models.Experiment `json:"experiments"`
}

// RunExperimentInput is the MCP tool input for running an experiment.
type RunExperimentInput struct {
	ExperimentID int64 `json:"experiment_id" jsonschema:"id of the experiment to run"`
}

// NewListExperimentsHandler returns a tool handler backed by the wired store.
// Pass the returned function to mcp.AddTool.
func NewListExperimentsHandler(deps *setup.Dependencies) func(context.Context, *mcp.CallToolRequest, ListExperimentsInput) (*mcp.CallToolResult, ExperimentList, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListExperimentsInput) (*mcp.CallToolResult, ExperimentList, error) {
		experiments, err := deps.Store.ListExperiments(ctx)
		if err != nil {
			return nil, ExperimentList{}, err
		}
		return nil, ExperimentList{Experiments: experiments}, nil
	}
}

// NewRunExperimentHandler returns a tool handler that executes the run
// pipeline under the same run lock the HTTP surface uses.
func NewRunExperimentHandler(deps *setup.Dependencies) func(context.Context, *mcp.CallToolRequest, RunExperimentInput) (*mcp.CallToolResult, models.RunReport, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RunExperimentInput) (*mcp.CallToolResult, models.RunReport, error) {
		return runExperiment(ctx, deps, input.ExperimentID)
	}
}

func runExperiment(ctx context.Context, deps *setup.Dependencies, experimentID int64) (*mcp.CallToolResult, models.RunReport, error) {
	acquired, err := deps.Tracker.TryAcquire(ctx, experimentID)
	if err != nil {
		return nil, models.RunReport{}, err
	}
	if !acquired {
		return nil, models.RunReport{}, fmt.Errorf("a run is already in progress for experiment %d", experimentID)
	}
	defer releaseLock(ctx, deps.Tracker, experimentID, deps)

	report, err := deps.Runner.RunExperiment(ctx, experimentID)
	if err != nil {
		return nil, models.RunReport{}, err
	}

	if err := deps.Tracker.SetLastRun(ctx, experimentID, report); err != nil {
		deps.Logger.Warn().Err(err).Int64("experiment_id", experimentID).Msg("Failed to record run report")
	}

	return nil, report, nil
}

func releaseLock(ctx context.Context, tracker runstate.Tracker, experimentID int64, deps *setup.Dependencies) {
	if err := tracker.Release(ctx, experimentID); err != nil {
		deps.Logger.Warn().Err(err).Int64("experiment_id", experimentID).Msg("Failed to release run lock")
	}
}
