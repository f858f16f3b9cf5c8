package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/promptops/experiment-hub/internal/api/middleware"
	"github.com/promptops/experiment-hub/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("/health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.GET("/experiments").
			To(handler.ListExperiments).
			Doc("List experiments").
			Metadata(restfulspec.KeyOpenAPITags, []string{"experiments"}).
			Writes([]models.Experiment{}).
			Returns(200, "OK", []models.Experiment{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/experiments").
			To(handler.CreateExperiment).
			Doc("Create an experiment").
			Metadata(restfulspec.KeyOpenAPITags, []string{"experiments"}).
			Reads(models.ExperimentFields{}).
			Writes(models.Experiment{}).
			Returns(201, "Created", models.Experiment{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.PUT("/experiments/{id}").
			To(handler.UpdateExperiment).
			Doc("Update an experiment").
			Metadata(restfulspec.KeyOpenAPITags, []string{"experiments"}).
			Param(ws.PathParameter("id", "Experiment id").DataType("integer")).
			Reads(models.ExperimentPatch{}).
			Writes(models.Experiment{}).
			Returns(200, "OK", models.Experiment{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.DELETE("/experiments/{id}").
			To(handler.DeleteExperiment).
			Doc("Delete an experiment and all of its test cases").
			Metadata(restfulspec.KeyOpenAPITags, []string{"experiments"}).
			Param(ws.PathParameter("id", "Experiment id").DataType("integer")).
			Writes(MessageResponse{}).
			Returns(200, "OK", MessageResponse{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/experiments/{id}/run").
			To(handler.RunExperiment).
			Doc("Run every test case of an experiment against its enabled providers").
			Metadata(restfulspec.KeyOpenAPITags, []string{"runs"}).
			Param(ws.PathParameter("id", "Experiment id").DataType("integer")).
			Writes(RunResponse{}).
			Returns(200, "OK", RunResponse{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}).
			Returns(409, "Run In Progress", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/test-cases").
			To(handler.ListTestCases).
			Doc("List test cases, joined with the owning experiment").
			Metadata(restfulspec.KeyOpenAPITags, []string{"test-cases"}).
			Param(ws.QueryParameter("experiment_id", "Restrict to one experiment").DataType("integer").Required(false)).
			Writes([]models.TestCase{}).
			Returns(200, "OK", []models.TestCase{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/test-cases").
			To(handler.CreateTestCase).
			Doc("Create a test case").
			Metadata(restfulspec.KeyOpenAPITags, []string{"test-cases"}).
			Reads(models.TestCaseFields{}).
			Writes(models.TestCase{}).
			Returns(201, "Created", models.TestCase{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.PUT("/test-cases/{id}").
			To(handler.UpdateTestCase).
			Doc("Partially update a test case; edited outputs are re-judged").
			Metadata(restfulspec.KeyOpenAPITags, []string{"test-cases"}).
			Param(ws.PathParameter("id", "Test case id").DataType("integer")).
			Reads(models.TestCasePatch{}).
			Writes(models.TestCase{}).
			Returns(200, "OK", models.TestCase{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.DELETE("/test-cases/{id}").
			To(handler.DeleteTestCase).
			Doc("Delete a test case").
			Metadata(restfulspec.KeyOpenAPITags, []string{"test-cases"}).
			Param(ws.PathParameter("id", "Test case id").DataType("integer")).
			Writes(MessageResponse{}).
			Returns(200, "OK", MessageResponse{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
