package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/chemlab-api/internal/api"
	apiMiddleware "github.com/phrazzld/chemlab-api/internal/api/middleware"
)

// setupRouter registers every route and the middleware stack.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(app.metrics.Middleware)

	learnerHandler := api.NewLearnerHandler(app.learnerService, app.jwtService, app.config.Auth)
	catalogHandler := api.NewCatalogHandler(app.catalog)
	workspaceHandler := api.NewWorkspaceHandler(app.learnerService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/learners", learnerHandler.Register)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/molecules", catalogHandler.Molecules)
			r.Get("/chemicals", catalogHandler.Chemicals)
			r.Get("/tools", catalogHandler.Tools)
			r.Get("/topics", catalogHandler.Topics)
			r.Get("/elements", catalogHandler.Elements)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/progress", learnerHandler.GetProgress)
			r.Get("/dashboard", workspaceHandler.Dashboard)
			r.Get("/view", workspaceHandler.GetView)
			r.Put("/view", workspaceHandler.SetView)

			r.Route("/tutor", func(r chi.Router) {
				r.Get("/", workspaceHandler.GetTutor)
				r.Post("/ask", workspaceHandler.AskTutor)
				r.Post("/close", workspaceHandler.CloseTutor)
			})

			r.Route("/viewer", func(r chi.Router) {
				r.Get("/", workspaceHandler.GetViewer)
				r.Put("/molecule", workspaceHandler.SelectMolecule)
				r.Post("/ar", workspaceHandler.SetAR)
				r.Post("/camera/retry", workspaceHandler.RetryCamera)
				r.Post("/insight", workspaceHandler.AskInsight)
			})

			r.Route("/lab", func(r chi.Router) {
				r.Get("/", workspaceHandler.GetLab)
				r.Post("/items", workspaceHandler.AddLabItem)
				r.Delete("/items/{instanceID}", workspaceHandler.RemoveLabItem)
				r.Post("/clear", workspaceHandler.ClearLab)
				r.Post("/react", workspaceHandler.SimulateReaction)
				r.Post("/result/dismiss", workspaceHandler.DismissLabResult)
				r.Post("/result/ask", workspaceHandler.AskLabWhy)
			})

			r.Route("/quiz", func(r chi.Router) {
				r.Get("/", workspaceHandler.GetQuiz)
				r.Put("/topic", workspaceHandler.SelectQuizTopic)
				r.Post("/start", workspaceHandler.StartQuiz)
				r.Post("/answer", workspaceHandler.AnswerQuiz)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})
	r.Handle("/metrics", app.metrics.Handler())

	return r
}
