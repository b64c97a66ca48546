// Package service contains HTTP handler implementations for the TimeBank API
// endpoints. It orchestrates request parsing, calls the underlying business
// logic in the app package, handles errors (including database-specific
// errors), and writes appropriate HTTP responses.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"timebank/internal/app"
	"timebank/internal/catalog"
	"timebank/internal/models"
	"timebank/internal/pkg/auth"
	"timebank/internal/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const requestTimeout = 10 * time.Second

// handlers aggregates dependencies needed by HTTP handlers,
// including the application business logic and logger.
type handlers struct {
	app *app.App
	log *logger.Logger
}

// newHandlers initializes a new handlers instance with the provided app and
// logger dependencies.
func newHandlers(app *app.App, l *logger.Logger) *handlers {
	return &handlers{app: app, log: l}
}

// signupHandler registers a new user and returns a token with the profile.
func (handlers *handlers) signupHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	var signupRequest models.SignupRequest
	if !readJSONBody(res, req, &signupRequest) {
		return
	}

	var pgError *pgconn.PgError
	token, user, err := handlers.app.ProcessSignup(ctx, signupRequest)
	if err != nil {
		if ok := errors.As(err, &pgError); ok && pgError.Code == pgerrcode.UniqueViolation {
			writeErrorResponse(res, "user with provided email already exists", http.StatusConflict)
			return
		}

		if errors.Is(err, app.ErrMissingSignupFields) {
			writeErrorResponse(res, "missing email, password or name", http.StatusBadRequest)
			return
		}
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusCreated, models.AuthResponse{Token: token, User: user})
}

// loginHandler verifies credentials and returns a token with the profile.
func (handlers *handlers) loginHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	var loginRequest models.LoginRequest
	if !readJSONBody(res, req, &loginRequest) {
		return
	}

	token, user, err := handlers.app.ProcessLogin(ctx, loginRequest)
	if err != nil {
		if errors.Is(err, app.ErrMissingEmailOrPassword) {
			writeErrorResponse(res, "missing email or password", http.StatusBadRequest)
			return
		}

		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			writeErrorResponse(res, "incorrect email or password", http.StatusUnauthorized)
			return
		}
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, models.AuthResponse{Token: token, User: user})
}

// getUserHandler returns the authenticated user's profile.
func (handlers *handlers) getUserHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := handlers.app.ProcessGetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeErrorResponse(res, "user not found", http.StatusNotFound)
			return
		}
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, user)
}

// updateUserHandler shallow-merges profile fields into the user's record.
func (handlers *handlers) updateUserHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	var updates models.UpdateUserRequest
	if !readJSONBody(res, req, &updates) {
		return
	}

	user, err := handlers.app.ProcessUpdateUser(ctx, userID, updates)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, user)
}

// dashboardHandler returns the user's headline numbers.
func (handlers *handlers) dashboardHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	dashboard, err := handlers.app.ProcessDashboard(ctx, userID)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, dashboard)
}

// leaderboardHandler returns the community leaderboard.
func (handlers *handlers) leaderboardHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	entries, err := handlers.app.ProcessLeaderboard(ctx, limit)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, entries)
}

// transactionsHandler returns the user's ledger history, newest first.
func (handlers *handlers) transactionsHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	transactions, err := handlers.app.ProcessListTransactions(ctx, userID)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, transactions)
}

// purchaseHandler credits the user with a plan's credit amount, once per
// idempotency key.
func (handlers *handlers) purchaseHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	var purchaseRequest models.PurchaseRequest
	if !readJSONBody(res, req, &purchaseRequest) {
		return
	}

	purchase, err := handlers.app.ProcessPurchase(ctx, userID, purchaseRequest)
	if err != nil {
		if errors.Is(err, app.ErrUnknownPlan) {
			writeErrorResponse(res, "unknown credit plan", http.StatusBadRequest)
			return
		}

		if errors.Is(err, app.ErrInvalidIdempotencyKey) {
			writeErrorResponse(res, "idempotency key must be a valid UUID", http.StatusBadRequest)
			return
		}
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, purchase)
}

// catalogTasksHandler returns the static task type catalog, optionally
// narrowed to a single category.
func (handlers *handlers) catalogTasksHandler(res http.ResponseWriter, req *http.Request) {
	if category := req.URL.Query().Get("category"); category != "" {
		writeJSONResponse(res, http.StatusOK, catalog.TaskTypesByCategory(category))
		return
	}
	writeJSONResponse(res, http.StatusOK, catalog.TaskTypes)
}

// catalogCategoriesHandler returns the distinct task categories.
func (handlers *handlers) catalogCategoriesHandler(res http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(res, http.StatusOK, catalog.Categories())
}

// catalogTaskHandler returns a single task type by its catalog id.
func (handlers *handlers) catalogTaskHandler(res http.ResponseWriter, req *http.Request) {
	taskType, ok := catalog.TaskTypeByID(chi.URLParam(req, "id"))
	if !ok {
		writeErrorResponse(res, "unknown task type", http.StatusNotFound)
		return
	}
	writeJSONResponse(res, http.StatusOK, taskType)
}

// catalogBadgesHandler returns the badge definitions.
func (handlers *handlers) catalogBadgesHandler(res http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(res, http.StatusOK, catalog.Badges)
}

// catalogPlansHandler returns the credit plans.
func (handlers *handlers) catalogPlansHandler(res http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(res, http.StatusOK, catalog.CreditPlans)
}

// readJSONBody reads and unmarshals the request body into dst, writing a
// 400 response and returning false on failure.
func readJSONBody(res http.ResponseWriter, req *http.Request, dst any) bool {
	requestBody, err := io.ReadAll(req.Body)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return false
	}

	if err = json.Unmarshal(requestBody, dst); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// writeJSONResponse marshals v and writes it with the given status code.
func writeJSONResponse(res http.ResponseWriter, statusCode int, v any) {
	result, err := json.Marshal(v)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	res.Write(result)
}

func writeErrorResponse(res http.ResponseWriter, errorInfo string, statusCode int) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	json.NewEncoder(res).Encode(models.ErrorResponse{Errors: errorInfo})
}
