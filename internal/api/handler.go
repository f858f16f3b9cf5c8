package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/emicklei/go-restful/v3"
	"github.com/promptops/experiment-hub/internal/api/middleware"
	"github.com/promptops/experiment-hub/internal/judge"
	"github.com/promptops/experiment-hub/internal/models"
	"github.com/promptops/experiment-hub/internal/runstate"
	"github.com/promptops/experiment-hub/internal/store"
	"github.com/promptops/experiment-hub/internal/summary"
	"github.com/rs/zerolog"
)

// ExperimentRunner executes the run pipeline for one experiment.
type ExperimentRunner interface {
	RunExperiment(ctx context.Context, experimentID int64) (models.RunReport, error)
}

type Handler struct {
	store      store.Store
	runner     ExperimentRunner
	judge      judge.Judge
	tracker    runstate.Tracker
	aggregator *summary.Aggregator
	logger     *zerolog.Logger
}

func NewHandler(
	s store.Store,
	r ExperimentRunner,
	j judge.Judge,
	tracker runstate.Tracker,
	aggregator *summary.Aggregator,
	logger *zerolog.Logger,
) *Handler {
	return &Handler{
		store:      s,
		runner:     r,
		judge:      j,
		tracker:    tracker,
		aggregator: aggregator,
		logger:     logger,
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// RunResponse is the aggregate outcome returned by the run endpoint.
type RunResponse struct {
	Message            string              `json:"message"`
	TestCasesProcessed int                 `json:"test_cases_processed"`
	Failures           []int64             `json:"failures,omitempty"`
	Summary            *summary.RunSummary `json:"summary,omitempty"`
}

// GET /experiments
func (h *Handler) ListExperiments(req *restful.Request, resp *restful.Response) {
	experiments, err := h.store.ListExperiments(req.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list experiments")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, experiments)
}

// POST /experiments
func (h *Handler) CreateExperiment(req *restful.Request, resp *restful.Response) {
	var fields models.ExperimentFields
	if err := req.ReadEntity(&fields); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if err := fields.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	experiment, err := h.store.CreateExperiment(req.Request.Context(), fields)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create experiment")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info().Int64("experiment_id", experiment.ID).Str("name", experiment.Name).Msg("Experiment created")
	resp.WriteHeaderAndEntity(http.StatusCreated, experiment)
}

// PUT /experiments/{id}
func (h *Handler) UpdateExperiment(req *restful.Request, resp *restful.Response) {
	id, ok := h.pathID(req, resp)
	if !ok {
		return
	}

	var patch models.ExperimentPatch
	if err := req.ReadEntity(&patch); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if err := patch.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	experiment, err := h.store.UpdateExperiment(req.Request.Context(), id, patch)
	if err != nil {
		h.writeStoreError(resp, err, "Failed to update experiment")
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, experiment)
}

// DELETE /experiments/{id}
func (h *Handler) DeleteExperiment(req *restful.Request, resp *restful.Response) {
	id, ok := h.pathID(req, resp)
	if !ok {
		return
	}

	if err := h.store.DeleteExperiment(req.Request.Context(), id); err != nil {
		h.writeStoreError(resp, err, "Failed to delete experiment")
		return
	}

	h.logger.Info().Int64("experiment_id", id).Msg("Experiment and associated test cases deleted")
	resp.WriteHeaderAndEntity(http.StatusOK, MessageResponse{
		Message: "Experiment and associated test cases deleted successfully",
	})
}

// POST /experiments/{id}/run
func (h *Handler) RunExperiment(req *restful.Request, resp *restful.Response) {
	id, ok := h.pathID(req, resp)
	if !ok {
		return
	}

	ctx := req.Request.Context()

	acquired, err := h.tracker.TryAcquire(ctx, id)
	if err != nil {
		h.logger.Error().Err(err).Int64("experiment_id", id).Msg("Failed to acquire run lock")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}
	if !acquired {
		middleware.HandleError(resp, fmt.Errorf("a run is already in progress for experiment %d", id), http.StatusConflict)
		return
	}
	defer func() {
		if err := h.tracker.Release(ctx, id); err != nil {
			h.logger.Warn().Err(err).Int64("experiment_id", id).Msg("Failed to release run lock")
		}
	}()

	report, err := h.runner.RunExperiment(ctx, id)
	if err != nil {
		h.writeStoreError(resp, err, "Failed to run experiment")
		return
	}

	if err := h.tracker.SetLastRun(ctx, id, report); err != nil {
		h.logger.Warn().Err(err).Int64("experiment_id", id).Msg("Failed to record run report")
	}

	response := RunResponse{
		Message:            "Experiment run successfully",
		TestCasesProcessed: report.TestCasesProcessed,
		Failures:           report.Failures,
	}
	if report.TestCasesProcessed == 0 {
		response.Message = "No test cases to run"
		resp.WriteHeaderAndEntity(http.StatusOK, response)
		return
	}

	if testCases, err := h.store.ListTestCases(ctx, &id); err == nil {
		s := h.aggregator.Aggregate(testCases)
		response.Summary = &s
	} else {
		h.logger.Warn().Err(err).Int64("experiment_id", id).Msg("Failed to load test cases for summary")
	}

	resp.WriteHeaderAndEntity(http.StatusOK, response)
}

// GET /test-cases
func (h *Handler) ListTestCases(req *restful.Request, resp *restful.Response) {
	var experimentID *int64
	if raw := req.QueryParameter("experiment_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.HandleError(resp, fmt.Errorf("invalid experiment_id %q", raw), http.StatusBadRequest)
			return
		}
		experimentID = &id
	}

	testCases, err := h.store.ListTestCases(req.Request.Context(), experimentID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list test cases")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, testCases)
}

// POST /test-cases
func (h *Handler) CreateTestCase(req *restful.Request, resp *restful.Response) {
	var fields models.TestCaseFields
	if err := req.ReadEntity(&fields); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if err := fields.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	testCase, err := h.store.CreateTestCase(req.Request.Context(), fields)
	if err != nil {
		h.writeStoreError(resp, err, "Failed to create test case")
		return
	}

	h.logger.Info().Int64("test_case_id", testCase.ID).Int64("experiment_id", testCase.ExperimentID).Msg("Test case created")
	resp.WriteHeaderAndEntity(http.StatusCreated, testCase)
}

// PUT /test-cases/{id}
//
// A patch that edits a provider's output without an explicit verdict
// re-judges the edited output against the test case's input and expected
// output, so an edited output is never persisted next to a stale verdict.
func (h *Handler) UpdateTestCase(req *restful.Request, resp *restful.Response) {
	id, ok := h.pathID(req, resp)
	if !ok {
		return
	}

	var patch models.TestCasePatch
	if err := req.ReadEntity(&patch); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if err := patch.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	ctx := req.Request.Context()

	if needsReevaluation(patch) {
		current, err := h.store.GetTestCase(ctx, id)
		if err != nil {
			h.writeStoreError(resp, err, "Failed to load test case")
			return
		}

		experiment, err := h.store.GetExperiment(ctx, current.ExperimentID)
		if err != nil {
			h.writeStoreError(resp, err, "Failed to load experiment")
			return
		}

		input := current.Input
		if patch.Input != nil {
			input = *patch.Input
		}
		expected := current.ExpectedOutput
		if patch.ExpectedOutput != nil {
			expected = *patch.ExpectedOutput
		}

		for provider, resultPatch := range patch.Results {
			if resultPatch.Output == nil || resultPatch.Verdict != nil {
				continue
			}

			verdict := h.judge.Evaluate(ctx, judge.Input{
				SystemPrompt:    experiment.SystemPrompt,
				UserInput:       input,
				ExpectedOutput:  expected,
				CandidateOutput: *resultPatch.Output,
			})
			resultPatch.Verdict = &verdict
			patch.Results[provider] = resultPatch

			h.logger.Info().
				Int64("test_case_id", id).
				Str("provider", string(provider)).
				Bool("verdict", verdict).
				Msg("re-judged edited output")
		}
	}

	testCase, err := h.store.UpdateTestCase(ctx, id, patch)
	if err != nil {
		h.writeStoreError(resp, err, "Failed to update test case")
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, testCase)
}

// DELETE /test-cases/{id}
func (h *Handler) DeleteTestCase(req *restful.Request, resp *restful.Response) {
	id, ok := h.pathID(req, resp)
	if !ok {
		return
	}

	if err := h.store.DeleteTestCase(req.Request.Context(), id); err != nil {
		h.writeStoreError(resp, err, "Failed to delete test case")
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, MessageResponse{Message: "Test case deleted successfully"})
}

// GET /health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}

func needsReevaluation(patch models.TestCasePatch) bool {
	for _, resultPatch := range patch.Results {
		if resultPatch.Output != nil && resultPatch.Verdict == nil {
			return true
		}
	}
	return false
}

func (h *Handler) pathID(req *restful.Request, resp *restful.Response) (int64, bool) {
	raw := req.PathParameter("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		middleware.HandleError(resp, fmt.Errorf("invalid id %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeStoreError(resp *restful.Response, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		middleware.HandleError(resp, err, http.StatusNotFound)
		return
	}
	h.logger.Error().Err(err).Msg(msg)
	middleware.HandleError(resp, err, http.StatusInternalServerError)
}
