package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oursapp/ours-api/internal/api"
	apiMiddleware "github.com/oursapp/ours-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	memoryHandler := api.NewMemoryHandler(app.memoryService, app.relationshipService, app.logger)
	stateHandler := api.NewStateHandler(app.syncService, app.logger)
	invitationHandler := api.NewInvitationHandler(app.invitationService, app.logger)
	relationshipHandler := api.NewRelationshipHandler(app.relationshipService, app.logger)
	reflectionHandler := api.NewReflectionHandler(app.reflectionService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Memory endpoints
			r.Post("/memories", memoryHandler.CreateMemory)
			r.Post("/memories/{id}/reveal", memoryHandler.RevealMemory)
			r.Patch("/memories/{id}/shared", memoryHandler.SetShared)

			// Relationship endpoints
			r.Get("/relationships/active", relationshipHandler.GetActiveRelationship)
			r.Get("/relationships/{id}", relationshipHandler.GetRelationship)
			r.Get("/relationships/{id}/memories", memoryHandler.GetTimeline)
			r.Get("/relationships/{id}/state", stateHandler.GetState)
			r.Post("/relationships/{id}/disconnect", relationshipHandler.Disconnect)

			// Invitation endpoints
			r.Post("/invitations", invitationHandler.CreateInvitation)
			r.Post("/invitations/accept", invitationHandler.AcceptByCode)
			r.Get("/invitations/{id}", invitationHandler.GetInvitation)
			r.Post("/invitations/{id}/deliver", invitationHandler.MarkDelivered)
			r.Post("/invitations/{id}/accept", invitationHandler.AcceptInvitation)
			r.Post("/invitations/{id}/decline", invitationHandler.DeclineInvitation)

			// Reflection endpoints
			r.Post("/reflections", reflectionHandler.CreateReflection)
			r.Get("/reflections", reflectionHandler.GetReflections)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
