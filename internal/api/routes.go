package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/evaluate").
			To(handler.Evaluate).
			Doc("Evaluate a suite of scenario runs").
			Metadata(restfulspec.KeyOpenAPITags, []string{"evaluate"}).
			Reads(EvaluateSuiteRequest{}).
			Writes(models.EvaluationArtifact{}).
			Returns(200, "OK", models.EvaluationArtifact{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}).
			Returns(504, "Batch Timed Out", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/evaluate/scenario").
			To(handler.EvaluateScenario).
			Doc("Evaluate one scenario run synchronously").
			Metadata(restfulspec.KeyOpenAPITags, []string{"evaluate"}).
			Reads(models.EvaluationInput{}).
			Writes(models.EvaluationResult{}).
			Returns(200, "OK", models.EvaluationResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/runs/{run_id}").
			To(handler.GetRun).
			Doc("Fetch a stored evaluation artifact").
			Metadata(restfulspec.KeyOpenAPITags, []string{"runs"}).
			Param(ws.PathParameter("run_id", "Evaluation run id").DataType("string")).
			Writes(models.EvaluationArtifact{}).
			Returns(200, "OK", models.EvaluationArtifact{}).
			Returns(404, "Run Not Found", middleware.ErrorResponse{}).
			Returns(501, "Store Not Configured", middleware.ErrorResponse{}))

	container.Add(ws)
}

// RegisterOpenAPI serves the OpenAPI document of every registered service.
func RegisterOpenAPI(container *restful.Container) {
	container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
	}))
}
