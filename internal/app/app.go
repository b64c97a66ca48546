// Package app provides the core business logic for the TimeBank service.
// It handles registration and login, profile updates, marketplace postings,
// match lifecycle (create, accept, complete with atomic credit settlement),
// the credit ledger, reviews, badge awarding, and the credit purchase flow.
// The package integrates with the storage layer for data persistence and
// uses the auth package for token generation.
package app

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"timebank/internal/catalog"
	"timebank/internal/models"
	"timebank/internal/pkg/auth"
	"timebank/internal/pkg/logger"
	"timebank/internal/pkg/security"
	"timebank/internal/storage"

	"github.com/google/uuid"
)

// taskExpiry is how long a posting stays open before the sweep expires it.
const taskExpiry = 7 * 24 * time.Hour

// startingCredits is the balance granted on signup.
const startingCredits = 5

// Predefined errors for invalid requests.
var (
	// ErrMissingSignupFields indicates a signup without email, password or name.
	ErrMissingSignupFields = errors.New("app: missing email, password or name")
	// ErrMissingEmailOrPassword indicates a login without email or password.
	ErrMissingEmailOrPassword = errors.New("app: missing email or password")
	// ErrMissingTaskFields indicates a posting without a task label or a
	// non-positive credit price.
	ErrMissingTaskFields = errors.New("app: missing task type or non-positive credits")
	// ErrInvalidMode indicates a posting with an unknown delivery mode.
	ErrInvalidMode = errors.New("app: invalid delivery mode")
	// ErrMissingMatchLink indicates a match request that names no posting or both.
	ErrMissingMatchLink = errors.New("app: exactly one of requestId and offerId required")
	// ErrOwnPosting indicates a user acting on their own posting.
	ErrOwnPosting = errors.New("app: cannot connect to your own posting")
	// ErrInvalidRating indicates a review rating outside 1..5.
	ErrInvalidRating = errors.New("app: rating must be between 1 and 5")
	// ErrUnknownPlan indicates a purchase naming a plan that is not in the catalog.
	ErrUnknownPlan = errors.New("app: unknown credit plan")
	// ErrInvalidIdempotencyKey indicates a purchase without a valid UUID key.
	ErrInvalidIdempotencyKey = errors.New("app: invalid idempotency key")
)

// App encapsulates the application logic and dependencies required to
// process requests. It interacts with the storage layer and uses a logger
// for error and activity logging.
type App struct {
	db  storage.Storage // Database storage layer for persistent data operations.
	log *logger.Logger  // Logger for logging application events and errors.
}

// NewApp creates and returns a new instance of App with the provided
// storage and logger dependencies.
func NewApp(db storage.Storage, log *logger.Logger) *App {
	return &App{db: db, log: log}
}

// ProcessSignup registers a new user with the starting credit balance and
// returns a session token. A duplicate email surfaces as a unique-violation
// error from storage for the handler to map.
func (app *App) ProcessSignup(ctx context.Context, req models.SignupRequest) (string, *models.User, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return "", nil, ErrMissingSignupFields
	}

	user := &models.User{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		City:        req.City,
		TimeCredits: startingCredits,
	}

	user, err := app.db.CreateUser(ctx, user)
	if err != nil {
		return "", nil, err
	}

	// The starting balance gets its own ledger row so the history accounts
	// for every credit the user holds. The account itself is already
	// committed, so a failed ledger write is logged rather than failing
	// the signup.
	welcome := &models.Transaction{
		ToUserID:    user.ID,
		Amount:      startingCredits,
		TaskType:    "Welcome Bonus",
		Description: "Starting balance",
		Type:        models.TransactionEarned,
	}
	if _, err = app.db.CreateTransaction(ctx, welcome); err != nil {
		app.log.Sugar().Errorf("Failed to record the welcome bonus for user %d: %s", user.ID, err)
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// ProcessLogin verifies the user's credentials and returns a session token.
func (app *App) ProcessLogin(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	if req.Email == "" || req.Password == "" {
		return "", nil, ErrMissingEmailOrPassword
	}

	user, err := app.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return "", nil, err
	}

	if err := security.CheckPassword(user.Password, req.Password); err != nil {
		return "", nil, err
	}
	user.Password = ""

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// ProcessGetUser retrieves the profile of a user.
func (app *App) ProcessGetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := app.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// ProcessUpdateUser shallow-merges the provided profile fields into the
// user's record and returns the updated profile. Fields left nil are never
// touched: updating the city does not erase the skills or the balance.
func (app *App) ProcessUpdateUser(ctx context.Context, userID int64, updates models.UpdateUserRequest) (*models.User, error) {
	if err := app.db.UpdateUser(ctx, userID, updates); err != nil {
		return nil, err
	}
	return app.ProcessGetUser(ctx, userID)
}

// ProcessPostTask publishes a new offer or request. The posting opens
// immediately and expires exactly seven days after creation.
func (app *App) ProcessPostTask(ctx context.Context, userID int64, kind models.TaskKind, req models.PostTaskRequest) (*models.Task, error) {
	if req.TaskType == "" || req.Credits <= 0 {
		return nil, ErrMissingTaskFields
	}
	switch req.Mode {
	case models.ModeOnline, models.ModeOffline, models.ModeBoth:
	default:
		return nil, ErrInvalidMode
	}

	user, err := app.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	city := user.City
	if city == "" {
		city = "Location not set"
	}

	now := time.Now().UTC()
	task := &models.Task{
		Kind:        kind,
		UserID:      userID,
		UserName:    user.Name,
		UserCity:    city,
		TaskType:    req.TaskType,
		Description: req.Description,
		Credits:     req.Credits,
		Mode:        req.Mode,
		Location:    req.Location,
		IsRemote:    req.Mode != models.ModeOffline,
		CreatedAt:   now,
		Status:      models.TaskStatusOpen,
		ExpiresAt:   now.Add(taskExpiry),
	}

	return app.db.CreateTask(ctx, task)
}

// ProcessBrowse returns the open postings of other users matching the
// filter, in insertion order.
func (app *App) ProcessBrowse(ctx context.Context, userID int64, filter BrowseFilter) (*models.MarketplaceResponse, error) {
	offers, err := app.db.ListOpenTasks(ctx, models.KindOffer)
	if err != nil {
		return nil, err
	}
	requests, err := app.db.ListOpenTasks(ctx, models.KindRequest)
	if err != nil {
		return nil, err
	}

	return &models.MarketplaceResponse{
		Offers:   FilterTasks(offers, userID, filter),
		Requests: FilterTasks(requests, userID, filter),
	}, nil
}

// ProcessMyPosts returns every posting owned by the user.
func (app *App) ProcessMyPosts(ctx context.Context, userID int64) ([]models.Task, error) {
	return app.db.ListTasksByUser(ctx, userID)
}

// ProcessUpdateTaskStatus sets the status of a posting directly, stamping a
// completion time when the new status is completed.
func (app *App) ProcessUpdateTaskStatus(ctx context.Context, kind models.TaskKind, taskID int64, status models.TaskStatus) error {
	var completedAt *time.Time
	if status == models.TaskStatusCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}
	return app.db.UpdateTaskStatus(ctx, kind, taskID, status, completedAt)
}

// ProcessCreateMatch records a pending match between the caller and the
// owner of the named posting. Acting on an offer makes the caller the
// requester; acting on a request makes the caller the helper.
func (app *App) ProcessCreateMatch(ctx context.Context, userID int64, req models.CreateMatchRequest) (*models.Match, error) {
	if (req.RequestID == 0) == (req.OfferID == 0) {
		return nil, ErrMissingMatchLink
	}

	match := &models.Match{
		RequestID: req.RequestID,
		OfferID:   req.OfferID,
	}

	if req.OfferID != 0 {
		offer, err := app.findTask(ctx, models.KindOffer, req.OfferID)
		if err != nil {
			return nil, err
		}
		if offer.UserID == userID {
			return nil, ErrOwnPosting
		}
		match.RequesterID = userID
		match.HelperID = offer.UserID
	} else {
		request, err := app.findTask(ctx, models.KindRequest, req.RequestID)
		if err != nil {
			return nil, err
		}
		if request.UserID == userID {
			return nil, ErrOwnPosting
		}
		match.RequesterID = request.UserID
		match.HelperID = userID
	}

	return app.db.CreateMatch(ctx, match)
}

// findTask locates an open posting by kind and id.
func (app *App) findTask(ctx context.Context, kind models.TaskKind, id int64) (*models.Task, error) {
	tasks, err := app.db.ListOpenTasks(ctx, kind)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, storage.ErrTaskNotFound
}

// ProcessAcceptMatch accepts a pending match and moves the linked postings
// to in_progress.
func (app *App) ProcessAcceptMatch(ctx context.Context, matchID int64) (*models.Match, error) {
	return app.db.AcceptMatch(ctx, matchID)
}

// ProcessGetMatch returns a single match. A match is only visible to its
// requester and helper; anyone else gets the same not-found error as a
// missing id.
func (app *App) ProcessGetMatch(ctx context.Context, matchID, userID int64) (*models.Match, error) {
	match, err := app.db.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.RequesterID != userID && match.HelperID != userID {
		return nil, sql.ErrNoRows
	}
	return match, nil
}

// ProcessCompleteMatch settles a match: statuses cascade to completed, the
// requester pays the helper, and one earned ledger row is written, all in
// a single storage transaction. Afterwards the helper's cumulative stats
// are re-read and any newly crossed badge thresholds are awarded.
func (app *App) ProcessCompleteMatch(ctx context.Context, matchID int64) (*models.Match, []models.Badge, error) {
	settlement, err := app.db.SettleMatch(ctx, matchID, time.Now().UTC())
	if err != nil {
		return nil, nil, err
	}

	newBadges, err := app.awardBadges(ctx, settlement.HelperID)
	if err != nil {
		// The settlement is already committed; a failed badge check is
		// logged rather than unwinding the payment.
		app.log.Sugar().Errorf("Badge award failed for user %d: %s", settlement.HelperID, err)
		return settlement.Match, nil, nil
	}

	return settlement.Match, newBadges, nil
}

// awardBadges evaluates every badge threshold against the user's current
// cumulative stats and appends the newly qualifying ones. Already-held
// badges are skipped, so repeated calls with the same stats award nothing.
func (app *App) awardBadges(ctx context.Context, userID int64) ([]models.Badge, error) {
	tasksCompleted, creditsEarned, err := app.db.GetHelperStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err := app.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := catalog.BadgeStats{
		UserID:         userID,
		TasksCompleted: tasksCompleted,
		CreditsEarned:  creditsEarned,
		SkillCount:     len(user.Skills),
		ReviewCount:    user.ReviewCount,
		Rating:         user.Rating,
	}

	newBadges := catalog.EvaluateBadges(user.Badges, stats, time.Now().UTC())
	if len(newBadges) == 0 {
		return nil, nil
	}

	if err := app.db.AddUserBadges(ctx, userID, newBadges); err != nil {
		return nil, err
	}
	return newBadges, nil
}

// ProcessMyMatches returns every match the user is party to.
func (app *App) ProcessMyMatches(ctx context.Context, userID int64) ([]models.Match, error) {
	return app.db.ListMatchesByUser(ctx, userID)
}

// ProcessCreateReview appends a review for the recipient; the recipient's
// rating and review-count aggregates are recomputed by storage in the same
// transaction.
func (app *App) ProcessCreateReview(ctx context.Context, userID int64, req models.CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if req.Type != models.ReviewAsHelper && req.Type != models.ReviewAsRequester {
		req.Type = models.ReviewAsHelper
	}

	reviewer, err := app.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		FromUserID:   userID,
		FromUserName: reviewer.Name,
		ToUserID:     req.ToUserID,
		TaskID:       req.TaskID,
		TaskTitle:    req.TaskTitle,
		Rating:       req.Rating,
		Comment:      req.Comment,
		Type:         req.Type,
	}

	return app.db.CreateReview(ctx, review)
}

// ProcessListReviews returns the reviews received by a user.
func (app *App) ProcessListReviews(ctx context.Context, userID int64) ([]models.Review, error) {
	return app.db.ListReviewsForUser(ctx, userID)
}

// ProcessListTransactions returns the user's ledger history.
func (app *App) ProcessListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	return app.db.ListTransactionsByUser(ctx, userID)
}

// ProcessLeaderboard returns the community leaderboard.
func (app *App) ProcessLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return app.db.ListLeaderboard(ctx, limit)
}

// ProcessDashboard aggregates the user's headline numbers: credit balance,
// counts of active postings, and credits earned over the trailing week.
func (app *App) ProcessDashboard(ctx context.Context, userID int64) (*models.DashboardResponse, error) {
	user, err := app.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := app.db.ListTasksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	dashboard := &models.DashboardResponse{TimeCredits: user.TimeCredits}
	for _, post := range posts {
		if post.Status != models.TaskStatusOpen && post.Status != models.TaskStatusInProgress {
			continue
		}
		if post.Kind == models.KindOffer {
			dashboard.ActiveOffers++
		} else {
			dashboard.ActiveRequests++
		}
	}

	oneWeekAgo := time.Now().UTC().AddDate(0, 0, -7)
	earned, err := app.db.CreditsEarnedSince(ctx, userID, oneWeekAgo)
	if err != nil {
		return nil, err
	}
	dashboard.CreditsEarnedThisWeek = earned

	return dashboard, nil
}

// ProcessPurchase credits the user with the chosen plan's credit amount and
// records the purchase in the ledger. The client supplies a UUID
// idempotency key; replaying it reports the prior outcome without
// crediting twice.
func (app *App) ProcessPurchase(ctx context.Context, userID int64, req models.PurchaseRequest) (*models.PurchaseResponse, error) {
	plan, ok := catalog.PlanByID(req.PlanID)
	if !ok {
		return nil, ErrUnknownPlan
	}
	if _, err := uuid.Parse(req.IdempotencyKey); err != nil {
		return nil, ErrInvalidIdempotencyKey
	}

	balance, applied, err := app.db.PurchaseCredits(ctx, userID, req.IdempotencyKey, plan.Credits, plan.Name)
	if err != nil {
		return nil, err
	}

	return &models.PurchaseResponse{
		Credits:     plan.Credits,
		NewBalance:  balance,
		AlreadyDone: !applied,
	}, nil
}

// ProcessExpirySweep expires every open posting whose deadline has passed.
// It runs at startup and on the sweep schedule.
func (app *App) ProcessExpirySweep(ctx context.Context) (int64, error) {
	expired, err := app.db.ExpireOverdueTasks(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		app.log.Sugar().Infof("Expired %d overdue postings", expired)
	}
	return expired, nil
}
