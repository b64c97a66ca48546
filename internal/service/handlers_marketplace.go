package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"timebank/internal/app"
	"timebank/internal/models"
	"timebank/internal/pkg/auth"
	"timebank/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// postOfferHandler publishes a new offer posting.
func (handlers *handlers) postOfferHandler(res http.ResponseWriter, req *http.Request) {
	handlers.postTask(res, req, models.KindOffer)
}

// postRequestHandler publishes a new request posting.
func (handlers *handlers) postRequestHandler(res http.ResponseWriter, req *http.Request) {
	handlers.postTask(res, req, models.KindRequest)
}

func (handlers *handlers) postTask(res http.ResponseWriter, req *http.Request, kind models.TaskKind) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	var postRequest models.PostTaskRequest
	if !readJSONBody(res, req, &postRequest) {
		return
	}

	task, err := handlers.app.ProcessPostTask(ctx, userID, kind, postRequest)
	if err != nil {
		if errors.Is(err, app.ErrMissingTaskFields) {
			writeErrorResponse(res, "missing task type or non-positive credits", http.StatusBadRequest)
			return
		}

		if errors.Is(err, app.ErrInvalidMode) {
			writeErrorResponse(res, "mode must be online, offline or both", http.StatusBadRequest)
			return
		}
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusCreated, task)
}

// marketplaceHandler returns the open postings of other users, filtered by
// the q, city, mode and category query parameters.
func (handlers *handlers) marketplaceHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	query := req.URL.Query()
	filter := app.BrowseFilter{
		Query:    query.Get("q"),
		City:     query.Get("city"),
		Mode:     query.Get("mode"),
		Category: query.Get("category"),
	}

	marketplace, err := handlers.app.ProcessBrowse(ctx, userID, filter)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, marketplace)
}

// myPostsHandler returns every posting owned by the user.
func (handlers *handlers) myPostsHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	posts, err := handlers.app.ProcessMyPosts(ctx, userID)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, posts)
}

// updateTaskStatusHandler sets the status of a posting directly, outside
// the match flow. Completing a posting this way moves no credits.
func (handlers *handlers) updateTaskStatusHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	if _, ok := auth.UserIDFromContext(req.Context()); !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	var kind models.TaskKind
	switch chi.URLParam(req, "kind") {
	case "offers":
		kind = models.KindOffer
	case "requests":
		kind = models.KindRequest
	default:
		writeErrorResponse(res, "kind must be offers or requests", http.StatusBadRequest)
		return
	}

	taskID, ok := parseIDParam(res, req)
	if !ok {
		return
	}

	var statusRequest struct {
		Status models.TaskStatus `json:"status"`
	}
	if !readJSONBody(res, req, &statusRequest) {
		return
	}
	switch statusRequest.Status {
	case models.TaskStatusOpen, models.TaskStatusInProgress, models.TaskStatusCompleted, models.TaskStatusExpired:
	default:
		writeErrorResponse(res, "unknown status", http.StatusBadRequest)
		return
	}

	if err := handlers.app.ProcessUpdateTaskStatus(ctx, kind, taskID, statusRequest.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeErrorResponse(res, "posting not found", http.StatusNotFound)
			return
		}
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.WriteHeader(http.StatusOK)
}

// createMatchHandler records a pending match between the caller and the
// owner of the named posting.
func (handlers *handlers) createMatchHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	var matchRequest models.CreateMatchRequest
	if !readJSONBody(res, req, &matchRequest) {
		return
	}

	var pgError *pgconn.PgError
	match, err := handlers.app.ProcessCreateMatch(ctx, userID, matchRequest)
	if err != nil {
		if errors.Is(err, app.ErrMissingMatchLink) {
			writeErrorResponse(res, "exactly one of requestId and offerId is required", http.StatusBadRequest)
			return
		}

		if errors.Is(err, app.ErrOwnPosting) {
			writeErrorResponse(res, "cannot connect to your own posting", http.StatusBadRequest)
			return
		}

		if errors.Is(err, storage.ErrTaskNotFound) {
			writeErrorResponse(res, "posting not found or no longer open", http.StatusBadRequest)
			return
		}

		if ok := errors.As(err, &pgError); ok && pgError.Code == pgerrcode.CheckViolation &&
			pgError.ConstraintName == "matches_chk_different_users" {
			writeErrorResponse(res, "cannot connect to your own posting", http.StatusBadRequest)
			return
		}
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusCreated, match)
}

// acceptMatchHandler moves a pending match to accepted and the linked
// postings to in_progress.
func (handlers *handlers) acceptMatchHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	matchID, ok := parseIDParam(res, req)
	if !ok {
		return
	}

	match, err := handlers.app.ProcessAcceptMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeErrorResponse(res, "match not found", http.StatusNotFound)
			return
		}

		if errors.Is(err, storage.ErrMatchNotPending) {
			writeErrorResponse(res, "match is not pending", http.StatusConflict)
			return
		}
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, match)
}

// completeMatchHandler settles a match: the requester pays the helper and
// the linked postings close, atomically.
func (handlers *handlers) completeMatchHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	matchID, ok := parseIDParam(res, req)
	if !ok {
		return
	}

	var pgError *pgconn.PgError
	match, newBadges, err := handlers.app.ProcessCompleteMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeErrorResponse(res, "match not found", http.StatusNotFound)
			return
		}

		if errors.Is(err, storage.ErrMatchNotSettleable) {
			writeErrorResponse(res, "match cannot be completed", http.StatusConflict)
			return
		}

		if errors.Is(err, storage.ErrInsufficientCredits) {
			writeErrorResponse(res, "insufficient credits to settle the task", http.StatusBadRequest)
			return
		}

		if ok := errors.As(err, &pgError); ok && pgError.Code == pgerrcode.CheckViolation &&
			pgError.ConstraintName == "users_time_credits_check" {
			writeErrorResponse(res, "insufficient credits to settle the task", http.StatusBadRequest)
			return
		}
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, models.CompleteMatchResponse{Match: match, NewBadges: newBadges})
}

// getMatchHandler returns a single match the caller is party to.
func (handlers *handlers) getMatchHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	matchID, ok := parseIDParam(res, req)
	if !ok {
		return
	}

	match, err := handlers.app.ProcessGetMatch(ctx, matchID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeErrorResponse(res, "match not found", http.StatusNotFound)
			return
		}

		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, match)
}

// myMatchesHandler returns every match the user is party to.
func (handlers *handlers) myMatchesHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	matches, err := handlers.app.ProcessMyMatches(ctx, userID)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, matches)
}

// createReviewHandler appends a review for the recipient user.
func (handlers *handlers) createReviewHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := auth.UserIDFromContext(req.Context())
	if !ok {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return
	}

	var reviewRequest models.CreateReviewRequest
	if !readJSONBody(res, req, &reviewRequest) {
		return
	}

	var pgError *pgconn.PgError
	review, err := handlers.app.ProcessCreateReview(ctx, userID, reviewRequest)
	if err != nil {
		if errors.Is(err, app.ErrInvalidRating) {
			writeErrorResponse(res, "rating must be between 1 and 5", http.StatusBadRequest)
			return
		}

		if ok := errors.As(err, &pgError); ok && pgError.Code == pgerrcode.ForeignKeyViolation {
			writeErrorResponse(res, "review recipient does not exist", http.StatusBadRequest)
			return
		}
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusCreated, review)
}

// userReviewsHandler returns the reviews received by a user.
func (handlers *handlers) userReviewsHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := parseIDParam(res, req)
	if !ok {
		return
	}

	reviews, err := handlers.app.ProcessListReviews(ctx, userID)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(res, http.StatusOK, reviews)
}

// parseIDParam parses the {id} URL parameter, writing a 400 response and
// returning false when it is not a positive integer.
func parseIDParam(res http.ResponseWriter, req *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeErrorResponse(res, "invalid id provided", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
