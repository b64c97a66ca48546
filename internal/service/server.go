package service

import (
	"timebank/internal/app"
	"timebank/internal/pkg/auth"
	"timebank/internal/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// Service encapsulates the HTTP server configuration, including the
// application's business logic, HTTP handlers, the server's run address,
// and a logger for event and error logging.
type Service struct {
	handlers   *handlers
	app        *app.App
	runAddress string
	log        *logger.Logger
}

// NewService creates and initializes a new Service instance.
func NewService(app *app.App, runAddress string, l *logger.Logger) *Service {
	handlers := newHandlers(app, l)
	return &Service{handlers: handlers, app: app, runAddress: runAddress, log: l}
}

// NewRouter sets up and returns a new chi.Router instance with the
// necessary middleware and routes. Logging middleware applies globally;
// everything beyond signup, login and the static catalog requires a JWT.
func (service *Service) NewRouter() chi.Router {
	router := chi.NewRouter()
	router.Use(service.log.WithLogging())

	router.Post("/api/auth/signup", service.handlers.signupHandler)
	router.Post("/api/auth/login", service.handlers.loginHandler)

	router.Get("/api/catalog/tasks", service.handlers.catalogTasksHandler)
	router.Get("/api/catalog/categories", service.handlers.catalogCategoriesHandler)
	router.Get("/api/catalog/tasks/{id}", service.handlers.catalogTaskHandler)
	router.Get("/api/catalog/badges", service.handlers.catalogBadgesHandler)
	router.Get("/api/catalog/plans", service.handlers.catalogPlansHandler)

	router.Route("/", func(r chi.Router) {
		r.Use(auth.CheckJWTMiddleware())

		r.Get("/api/user", service.handlers.getUserHandler)
		r.Patch("/api/user", service.handlers.updateUserHandler)

		r.Post("/api/offers", service.handlers.postOfferHandler)
		r.Post("/api/requests", service.handlers.postRequestHandler)
		r.Get("/api/marketplace", service.handlers.marketplaceHandler)
		r.Get("/api/posts/my", service.handlers.myPostsHandler)
		r.Patch("/api/posts/{kind}/{id}/status", service.handlers.updateTaskStatusHandler)

		r.Post("/api/matches", service.handlers.createMatchHandler)
		r.Post("/api/matches/{id}/accept", service.handlers.acceptMatchHandler)
		r.Post("/api/matches/{id}/complete", service.handlers.completeMatchHandler)
		r.Get("/api/matches/my", service.handlers.myMatchesHandler)
		r.Get("/api/matches/{id}", service.handlers.getMatchHandler)

		r.Post("/api/reviews", service.handlers.createReviewHandler)
		r.Get("/api/users/{id}/reviews", service.handlers.userReviewsHandler)

		r.Get("/api/transactions", service.handlers.transactionsHandler)
		r.Get("/api/leaderboard", service.handlers.leaderboardHandler)
		r.Get("/api/dashboard", service.handlers.dashboardHandler)
		r.Post("/api/credits/purchase", service.handlers.purchaseHandler)
	})

	return router
}
