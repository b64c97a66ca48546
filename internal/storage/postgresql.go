// Package storage provides primitives for connecting to and interacting
// with data storage systems. It defines the Storage interface along with a
// PostgreSQL implementation that manages users, marketplace postings,
// matches, the credit ledger, and reviews. Multi-step credit movements are
// performed inside database transactions so a balance change and its ledger
// record land together or not at all.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"timebank/internal/models"
	"timebank/internal/pkg/logger"
	"timebank/internal/pkg/security"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Sentinel errors surfaced to the app and handler layers.
var (
	// ErrInsufficientCredits is returned when a settlement would drive the
	// requester's balance negative.
	ErrInsufficientCredits = errors.New("storage: insufficient credits")
	// ErrMatchNotPending is returned when accepting a match that is not pending.
	ErrMatchNotPending = errors.New("storage: match is not pending")
	// ErrMatchNotSettleable is returned when completing a match that is
	// neither pending nor accepted.
	ErrMatchNotSettleable = errors.New("storage: match cannot be completed")
	// ErrTaskNotFound is returned when a posting cannot be located among the
	// open postings of its kind.
	ErrTaskNotFound = errors.New("storage: task not found")
)

const (
	createUserQuery = `INSERT INTO users (email, password_hash, name, city, skills, time_credits)
		VALUES ($1, $2, $3, $4, '[]', $5)
		RETURNING id, join_date;`
	userColumns = `id, email, password_hash, name, bio, city, skills, avatar,
		time_credits, total_time_given, total_time_received, rating, review_count, join_date`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = $1;`
	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	updateUserQuery     = `UPDATE users SET
		name = COALESCE($2, name),
		bio = COALESCE($3, bio),
		city = COALESCE($4, city),
		skills = COALESCE($5, skills),
		avatar = COALESCE($6, avatar),
		updated_at = NOW()
		WHERE id = $1;`
	leaderboardQuery = `SELECT u.id, u.name, u.city, u.total_time_given, u.time_credits,
		(SELECT COUNT(*) FROM user_badges b WHERE b.user_id = u.id)
		FROM users u ORDER BY u.total_time_given DESC, u.id LIMIT $1;`

	getUserBadgesQuery = `SELECT id, name, description, icon, color, category, earned_at
		FROM user_badges WHERE user_id = $1 ORDER BY earned_at, id;`
	addUserBadgeQuery = `INSERT INTO user_badges (user_id, name, description, icon, color, category, earned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT user_badges_unique_name DO NOTHING
		RETURNING id;`

	taskColumns = `id, user_id, user_name, user_city, task_type, description, credits,
		mode, location, is_remote, status, created_at, completed_at, expires_at`

	createMatchQuery = `INSERT INTO matches (request_id, offer_id, requester_id, helper_id, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING id, created_at;`
	matchColumns  = `id, request_id, offer_id, requester_id, helper_id, status, created_at, completed_at`
	getMatchQuery = `SELECT ` + matchColumns + ` FROM matches WHERE id = $1;`
	getMatchForUpdateQuery = `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE;`
	listMatchesByUserQuery = `SELECT ` + matchColumns + ` FROM matches
		WHERE requester_id = $1 OR helper_id = $1 ORDER BY created_at DESC, id DESC;`
	setMatchStatusQuery = `UPDATE matches SET status = $2, completed_at = $3 WHERE id = $1;`

	lockUserQuery          = `SELECT time_credits FROM users WHERE id = $1 FOR UPDATE;`
	adjustUserCreditsQuery = `UPDATE users SET time_credits = time_credits + $1, updated_at = NOW() WHERE id = $2;`
	bumpTimeGivenQuery     = `UPDATE users SET total_time_given = total_time_given + $1, updated_at = NOW() WHERE id = $2;`
	bumpTimeReceivedQuery  = `UPDATE users SET total_time_received = total_time_received + $1, updated_at = NOW() WHERE id = $2;`

	createTransactionQuery = `INSERT INTO transactions (from_user_id, to_user_id, amount, task_type, description, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at;`
	settleLedgerQuery = `INSERT INTO transactions (from_user_id, to_user_id, amount, task_type, description, type)
		VALUES ($1, $2, $3, $4, $5, $6);`
	listTransactionsQuery = `SELECT id, from_user_id, to_user_id, amount, task_type, description, type, created_at
		FROM transactions WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC, id DESC;`
	creditsEarnedSinceQuery = `SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE to_user_id = $1 AND type = 'earned' AND created_at >= $2;`
	purchaseLedgerQuery = `INSERT INTO transactions (to_user_id, amount, task_type, description, type, idempotency_key)
		VALUES ($1, $2, 'Credit Purchase', $3, 'earned', $4)
		ON CONFLICT (idempotency_key) DO NOTHING;`

	createReviewQuery = `INSERT INTO reviews (from_user_id, from_user_name, to_user_id, task_id, task_title, rating, comment, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at;`
	listReviewsForUserQuery = `SELECT id, from_user_id, from_user_name, to_user_id, task_id, task_title, rating, comment, type, created_at
		FROM reviews WHERE to_user_id = $1 ORDER BY created_at DESC, id DESC;`
	recomputeRatingQuery = `UPDATE users SET
		rating = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE to_user_id = $1),
		review_count = (SELECT COUNT(*) FROM reviews WHERE to_user_id = $1),
		updated_at = NOW()
		WHERE id = $1;`

	helperStatsMatchesQuery = `SELECT COUNT(*) FROM matches WHERE helper_id = $1 AND status = 'completed';`
	helperStatsCreditsQuery = `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE to_user_id = $1 AND type = 'earned';`
)

// Settlement describes the outcome of completing a match: who paid, who
// earned, how much, and the label of the settled task.
type Settlement struct {
	Match       *models.Match
	RequesterID int64
	HelperID    int64
	Amount      int
	TaskType    string
}

// Storage defines the methods required for data storage operations.
type Storage interface {
	// Close closes the database connection.
	Close()

	// User methods.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, updates models.UpdateUserRequest) error
	ListLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	AddUserBadges(ctx context.Context, userID int64, badges []models.Badge) error

	// Posting methods.
	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	ListOpenTasks(ctx context.Context, kind models.TaskKind) ([]models.Task, error)
	ListTasksByUser(ctx context.Context, userID int64) ([]models.Task, error)
	UpdateTaskStatus(ctx context.Context, kind models.TaskKind, id int64, status models.TaskStatus, completedAt *time.Time) error
	ExpireOverdueTasks(ctx context.Context, now time.Time) (int64, error)

	// Match methods.
	CreateMatch(ctx context.Context, match *models.Match) (*models.Match, error)
	GetMatch(ctx context.Context, id int64) (*models.Match, error)
	ListMatchesByUser(ctx context.Context, userID int64) ([]models.Match, error)
	AcceptMatch(ctx context.Context, matchID int64) (*models.Match, error)
	SettleMatch(ctx context.Context, matchID int64, now time.Time) (*Settlement, error)

	// Ledger methods.
	CreateTransaction(ctx context.Context, tr *models.Transaction) (*models.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID int64) ([]models.Transaction, error)
	CreditsEarnedSince(ctx context.Context, userID int64, since time.Time) (int, error)
	PurchaseCredits(ctx context.Context, userID int64, idempotencyKey string, amount int, planName string) (newBalance int, applied bool, err error)

	// Review methods.
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	ListReviewsForUser(ctx context.Context, userID int64) ([]models.Review, error)

	// GetHelperStats returns the helper-side totals badge awarding reads:
	// completed matches as helper and credits earned over the ledger.
	GetHelperStats(ctx context.Context, userID int64) (tasksCompleted int, creditsEarned int, err error)
}

// PostgreSQL implements the Storage interface using a PostgreSQL database.
type PostgreSQL struct {
	db  *sql.DB        // Connection to the database.
	log *logger.Logger // Logger for recording events and errors.
}

// NewPostgreSQL creates a new PostgreSQL instance with the provided
// connection string and logger. It opens the connection, pings the database
// to ensure connectivity, and runs the embedded schema migrations.
func NewPostgreSQL(configDBString string, l *logger.Logger) (*PostgreSQL, error) {
	db, err := sql.Open("pgx", configDBString)
	if err != nil {
		l.Sugar().Errorf("Failed to open a database: %s", err)
		return &PostgreSQL{db: db, log: l}, err
	}

	const defaultTimeout = 10 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		l.Sugar().Errorf("Database ping failed: %s", err)
		return &PostgreSQL{db: db, log: l}, err
	}

	postgresql := &PostgreSQL{db: db, log: l}
	if err := postgresql.runMigrations(ctx); err != nil {
		l.Sugar().Errorf("Failed to run migrations: %s", err)
		return postgresql, err
	}

	return postgresql, nil
}

func (postgresql *PostgreSQL) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, postgresql.db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection if it is open.
func (postgresql *PostgreSQL) Close() {
	if postgresql.db != nil {
		postgresql.db.Close()
	}
}

// taskTable maps a posting kind to its table. Offers and requests share a
// schema but live in separate collections.
func taskTable(kind models.TaskKind) string {
	if kind == models.KindOffer {
		return "offers"
	}
	return "requests"
}

// CreateUser registers a new user by hashing the password and inserting the
// user into the database. A duplicate email surfaces as a unique-violation
// PgError for the caller to map.
func (postgresql *PostgreSQL) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	encryptedPassword := security.HashPassword(user.Password)

	err := postgresql.db.QueryRowContext(ctx, createUserQuery,
		user.Email, encryptedPassword, user.Name, user.City, user.TimeCredits).
		Scan(&user.ID, &user.JoinDate)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query createUserQuery: %s", err)
		return user, err
	}

	user.Password = ""
	user.Skills = []string{}
	user.Badges = []models.Badge{}
	return user, nil
}

func (postgresql *PostgreSQL) scanUser(ctx context.Context, row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var skillsRaw []byte

	err := row.Scan(&user.ID, &user.Email, &user.Password, &user.Name, &user.Bio, &user.City,
		&skillsRaw, &user.Avatar, &user.TimeCredits, &user.TotalTimeGiven, &user.TotalTimeReceived,
		&user.Rating, &user.ReviewCount, &user.JoinDate)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(skillsRaw, &user.Skills); err != nil {
		postgresql.log.Sugar().Errorf("Failed to decode user skills: %s", err)
		return nil, err
	}

	badges, err := postgresql.getUserBadges(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Badges = badges

	return user, nil
}

// GetUserByEmail retrieves a user together with their badges by email.
// The stored password hash is returned in the Password field for
// verification by the app layer.
func (postgresql *PostgreSQL) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return postgresql.scanUser(ctx, postgresql.db.QueryRowContext(ctx, getUserByEmailQuery, email))
}

// GetUserByID retrieves a user together with their badges by id.
func (postgresql *PostgreSQL) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return postgresql.scanUser(ctx, postgresql.db.QueryRowContext(ctx, getUserByIDQuery, id))
}

// UpdateUser applies a shallow merge of the provided profile fields: only
// non-nil fields overwrite the stored values, everything else is untouched.
func (postgresql *PostgreSQL) UpdateUser(ctx context.Context, id int64, updates models.UpdateUserRequest) error {
	var skillsRaw interface{}
	if updates.Skills != nil {
		encoded, err := json.Marshal(*updates.Skills)
		if err != nil {
			return err
		}
		skillsRaw = encoded
	}

	result, err := postgresql.db.ExecContext(ctx, updateUserQuery,
		id, updates.Name, updates.Bio, updates.City, skillsRaw, updates.Avatar)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query updateUserQuery: %s", err)
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListLeaderboard returns users ranked by total time given.
func (postgresql *PostgreSQL) ListLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := postgresql.db.QueryContext(ctx, leaderboardQuery, limit)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query leaderboardQuery: %s", err)
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		entry := models.LeaderboardEntry{}
		if err := rows.Scan(&entry.UserID, &entry.Name, &entry.City,
			&entry.TotalTimeGiven, &entry.TimeCredits, &entry.BadgeCount); err != nil {
			return nil, err
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return entries, err
	}

	return entries, nil
}

func (postgresql *PostgreSQL) getUserBadges(ctx context.Context, userID int64) ([]models.Badge, error) {
	rows, err := postgresql.db.QueryContext(ctx, getUserBadgesQuery, userID)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query getUserBadgesQuery: %s", err)
		return nil, err
	}
	defer rows.Close()

	badges := []models.Badge{}
	for rows.Next() {
		badge := models.Badge{}
		if err := rows.Scan(&badge.ID, &badge.Name, &badge.Description,
			&badge.Icon, &badge.Color, &badge.Category, &badge.EarnedAt); err != nil {
			return nil, err
		}
		badges = append(badges, badge)
	}
	if err := rows.Err(); err != nil {
		return badges, err
	}

	return badges, nil
}

// AddUserBadges appends earned badges to a user. Badges the user already
// holds are skipped, so awarding is idempotent at the storage level too.
func (postgresql *PostgreSQL) AddUserBadges(ctx context.Context, userID int64, badges []models.Badge) error {
	for _, badge := range badges {
		var id int64
		err := postgresql.db.QueryRowContext(ctx, addUserBadgeQuery,
			userID, badge.Name, badge.Description, badge.Icon, badge.Color, badge.Category, badge.EarnedAt).
			Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			continue // already held
		}
		if err != nil {
			postgresql.log.Sugar().Errorf("Failed to execute a query addUserBadgeQuery: %s", err)
			return err
		}
	}
	return nil
}

// CreateTask inserts a new offer or request posting.
func (postgresql *PostgreSQL) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := fmt.Sprintf(`INSERT INTO %s (user_id, user_name, user_city, task_type, description, credits, mode, location, is_remote, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id;`, taskTable(task.Kind))

	err := postgresql.db.QueryRowContext(ctx, query,
		task.UserID, task.UserName, task.UserCity, task.TaskType, task.Description,
		task.Credits, string(task.Mode), task.Location, task.IsRemote,
		string(task.Status), task.CreatedAt, task.ExpiresAt).
		Scan(&task.ID)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to insert a %s posting: %s", task.Kind, err)
		return task, err
	}

	return task, nil
}

func scanTasks(rows *sql.Rows, kind models.TaskKind) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		task := models.Task{Kind: kind}
		var mode, status string
		if err := rows.Scan(&task.ID, &task.UserID, &task.UserName, &task.UserCity,
			&task.TaskType, &task.Description, &task.Credits, &mode, &task.Location,
			&task.IsRemote, &status, &task.CreatedAt, &task.CompletedAt, &task.ExpiresAt); err != nil {
			return nil, err
		}
		task.Mode = models.TaskMode(mode)
		task.Status = models.TaskStatus(status)
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return tasks, err
	}
	return tasks, nil
}

// ListOpenTasks returns all open postings of the given kind in insertion order.
func (postgresql *PostgreSQL) ListOpenTasks(ctx context.Context, kind models.TaskKind) ([]models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE status = 'open' ORDER BY id;`, taskColumns, taskTable(kind))

	rows, err := postgresql.db.QueryContext(ctx, query)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to list open %ss: %s", kind, err)
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows, kind)
}

// ListTasksByUser returns every posting owned by a user, offers first, each
// collection in insertion order.
func (postgresql *PostgreSQL) ListTasksByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	var all []models.Task
	for _, kind := range []models.TaskKind{models.KindOffer, models.KindRequest} {
		query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 ORDER BY id;`, taskColumns, taskTable(kind))

		rows, err := postgresql.db.QueryContext(ctx, query, userID)
		if err != nil {
			postgresql.log.Sugar().Errorf("Failed to list %ss by user: %s", kind, err)
			return nil, err
		}

		tasks, err := scanTasks(rows, kind)
		rows.Close()
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
	}
	return all, nil
}

// UpdateTaskStatus sets the status (and optionally the completion stamp) of
// a posting identified by kind and id.
func (postgresql *PostgreSQL) UpdateTaskStatus(ctx context.Context, kind models.TaskKind, id int64, status models.TaskStatus, completedAt *time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $2, completed_at = $3 WHERE id = $1;`, taskTable(kind))

	result, err := postgresql.db.ExecContext(ctx, query, id, string(status), completedAt)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to update %s status: %s", kind, err)
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExpireOverdueTasks flips every open posting whose expiry has passed to
// expired. Postings that are in progress or completed are never touched,
// whatever their expiry stamp says.
func (postgresql *PostgreSQL) ExpireOverdueTasks(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"offers", "requests"} {
		query := fmt.Sprintf(`UPDATE %s SET status = 'expired' WHERE status = 'open' AND expires_at <= $1;`, table)

		result, err := postgresql.db.ExecContext(ctx, query, now)
		if err != nil {
			postgresql.log.Sugar().Errorf("Failed to expire overdue rows in %s: %s", table, err)
			return total, err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return total, err
		}
		total += rows
	}
	return total, nil
}

// CreateMatch appends a pending match. A zero RequestID or OfferID is
// stored as NULL, depending on which posting the match originated from.
func (postgresql *PostgreSQL) CreateMatch(ctx context.Context, match *models.Match) (*models.Match, error) {
	err := postgresql.db.QueryRowContext(ctx, createMatchQuery,
		nullableID(match.RequestID), nullableID(match.OfferID), match.RequesterID, match.HelperID).
		Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query createMatchQuery: %s", err)
		return match, err
	}
	match.Status = models.MatchStatusPending
	return match, nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var requestID, offerID sql.NullInt64
	var status string
	if err := row.Scan(&match.ID, &requestID, &offerID, &match.RequesterID,
		&match.HelperID, &status, &match.CreatedAt, &match.CompletedAt); err != nil {
		return nil, err
	}
	match.RequestID = requestID.Int64
	match.OfferID = offerID.Int64
	match.Status = models.MatchStatus(status)
	return match, nil
}

// GetMatch retrieves a match by id.
func (postgresql *PostgreSQL) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	return scanMatch(postgresql.db.QueryRowContext(ctx, getMatchQuery, id))
}

// ListMatchesByUser returns every match the user is party to, newest first.
func (postgresql *PostgreSQL) ListMatchesByUser(ctx context.Context, userID int64) ([]models.Match, error) {
	rows, err := postgresql.db.QueryContext(ctx, listMatchesByUserQuery, userID)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query listMatchesByUserQuery: %s", err)
		return nil, err
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *match)
	}
	if err := rows.Err(); err != nil {
		return matches, err
	}
	return matches, nil
}

// linkedTaskStatus transitions the postings a match references inside an
// open transaction.
func (postgresql *PostgreSQL) linkedTaskStatus(ctx context.Context, tx *sql.Tx, match *models.Match, status models.TaskStatus, completedAt *time.Time) error {
	links := []struct {
		kind models.TaskKind
		id   int64
	}{
		{models.KindRequest, match.RequestID},
		{models.KindOffer, match.OfferID},
	}

	for _, link := range links {
		if link.id == 0 {
			continue
		}
		query := fmt.Sprintf(`UPDATE %s SET status = $2, completed_at = $3 WHERE id = $1;`, taskTable(link.kind))
		if _, err := tx.ExecContext(ctx, query, link.id, string(status), completedAt); err != nil {
			postgresql.log.Sugar().Errorf("Failed to transition linked %s %d: %s", link.kind, link.id, err)
			return err
		}
	}
	return nil
}

// AcceptMatch sets a pending match to accepted and transitions the linked
// offer/request (whichever ids are present) to in_progress, atomically.
func (postgresql *PostgreSQL) AcceptMatch(ctx context.Context, matchID int64) (*models.Match, error) {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := scanMatch(tx.QueryRowContext(ctx, getMatchForUpdateQuery, matchID))
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusPending {
		return nil, ErrMatchNotPending
	}

	if _, err := tx.ExecContext(ctx, setMatchStatusQuery, matchID, string(models.MatchStatusAccepted), nil); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query setMatchStatusQuery: %s", err)
		return nil, err
	}

	if err := postgresql.linkedTaskStatus(ctx, tx, match, models.TaskStatusInProgress, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	match.Status = models.MatchStatusAccepted
	return match, nil
}

// SettleMatch completes a match in a single transaction: the match and its
// linked postings are marked completed, the requester is debited, the
// helper is credited, the give/receive counters are bumped, and one earned
// ledger row is written. Either everything lands or nothing does.
func (postgresql *PostgreSQL) SettleMatch(ctx context.Context, matchID int64, now time.Time) (*Settlement, error) {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := scanMatch(tx.QueryRowContext(ctx, getMatchForUpdateQuery, matchID))
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusPending && match.Status != models.MatchStatusAccepted {
		return nil, ErrMatchNotSettleable
	}

	// The settlement amount comes from the linked posting; the request wins
	// when both sides are linked.
	var amount int
	var taskType string
	switch {
	case match.RequestID != 0:
		err = tx.QueryRowContext(ctx, `SELECT credits, task_type FROM requests WHERE id = $1;`, match.RequestID).
			Scan(&amount, &taskType)
	case match.OfferID != 0:
		err = tx.QueryRowContext(ctx, `SELECT credits, task_type FROM offers WHERE id = $1;`, match.OfferID).
			Scan(&amount, &taskType)
	default:
		return nil, sql.ErrNoRows
	}
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to load linked posting for match %d: %s", matchID, err)
		return nil, err
	}

	// Lock the payer row first so concurrent settlements serialize on it.
	var requesterBalance int
	if err := tx.QueryRowContext(ctx, lockUserQuery, match.RequesterID).Scan(&requesterBalance); err != nil {
		return nil, err
	}
	if requesterBalance < amount {
		return nil, ErrInsufficientCredits
	}

	if _, err := tx.ExecContext(ctx, adjustUserCreditsQuery, -amount, match.RequesterID); err != nil {
		postgresql.log.Sugar().Errorf("Failed to debit requester %d: %s", match.RequesterID, err)
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, adjustUserCreditsQuery, amount, match.HelperID); err != nil {
		postgresql.log.Sugar().Errorf("Failed to credit helper %d: %s", match.HelperID, err)
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, bumpTimeGivenQuery, amount, match.HelperID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, bumpTimeReceivedQuery, amount, match.RequesterID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, setMatchStatusQuery, matchID, string(models.MatchStatusCompleted), now); err != nil {
		return nil, err
	}
	if err := postgresql.linkedTaskStatus(ctx, tx, match, models.TaskStatusCompleted, &now); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Completed: %s", taskType)
	if _, err := tx.ExecContext(ctx, settleLedgerQuery,
		match.RequesterID, match.HelperID, amount, taskType, description, string(models.TransactionEarned),
	); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query settleLedgerQuery: %s", err)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	match.Status = models.MatchStatusCompleted
	match.CompletedAt = &now

	return &Settlement{
		Match:       match,
		RequesterID: match.RequesterID,
		HelperID:    match.HelperID,
		Amount:      amount,
		TaskType:    taskType,
	}, nil
}

// CreateTransaction appends a ledger row without any balance side effect.
// Settlements and purchases write their ledger rows inside their own
// transactions; this is for standalone entries.
func (postgresql *PostgreSQL) CreateTransaction(ctx context.Context, tr *models.Transaction) (*models.Transaction, error) {
	err := postgresql.db.QueryRowContext(ctx, createTransactionQuery,
		nullableID(tr.FromUserID), tr.ToUserID, tr.Amount, tr.TaskType, tr.Description, string(tr.Type)).
		Scan(&tr.ID, &tr.CreatedAt)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query createTransactionQuery: %s", err)
		return tr, err
	}
	return tr, nil
}

// ListTransactionsByUser returns the user's ledger history, newest first.
func (postgresql *PostgreSQL) ListTransactionsByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	rows, err := postgresql.db.QueryContext(ctx, listTransactionsQuery, userID)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query listTransactionsQuery: %s", err)
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		tr := models.Transaction{}
		var fromUserID sql.NullInt64
		var trType string
		if err := rows.Scan(&tr.ID, &fromUserID, &tr.ToUserID, &tr.Amount,
			&tr.TaskType, &tr.Description, &trType, &tr.CreatedAt); err != nil {
			return nil, err
		}
		tr.FromUserID = fromUserID.Int64
		tr.Type = models.TransactionType(trType)
		transactions = append(transactions, tr)
	}
	if err := rows.Err(); err != nil {
		return transactions, err
	}
	return transactions, nil
}

// CreditsEarnedSince sums the earned ledger rows of a user from the given
// instant onwards.
func (postgresql *PostgreSQL) CreditsEarnedSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var total int
	err := postgresql.db.QueryRowContext(ctx, creditsEarnedSinceQuery, userID, since).Scan(&total)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query creditsEarnedSinceQuery: %s", err)
		return 0, err
	}
	return total, nil
}

// PurchaseCredits credits a user's balance and writes the purchase ledger
// row in one transaction. The idempotency key deduplicates replays: a key
// that has been seen before leaves the balance alone and reports
// applied=false.
func (postgresql *PostgreSQL) PurchaseCredits(ctx context.Context, userID int64, idempotencyKey string, amount int, planName string) (int, bool, error) {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	description := fmt.Sprintf("Purchased %s", planName)
	result, err := tx.ExecContext(ctx, purchaseLedgerQuery, userID, amount, description, idempotencyKey)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query purchaseLedgerQuery: %s", err)
		return 0, false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	applied := rows == 1

	if applied {
		if _, err := tx.ExecContext(ctx, adjustUserCreditsQuery, amount, userID); err != nil {
			postgresql.log.Sugar().Errorf("Failed to credit purchase for user %d: %s", userID, err)
			return 0, false, err
		}
	}

	var balance int
	if err := tx.QueryRowContext(ctx, `SELECT time_credits FROM users WHERE id = $1;`, userID).Scan(&balance); err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return balance, applied, nil
}

// CreateReview appends a review and recomputes the recipient's rating and
// review-count aggregates in the same transaction.
func (postgresql *PostgreSQL) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return review, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, createReviewQuery,
		review.FromUserID, review.FromUserName, review.ToUserID, review.TaskID,
		review.TaskTitle, review.Rating, review.Comment, string(review.Type)).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query createReviewQuery: %s", err)
		return review, err
	}

	if _, err := tx.ExecContext(ctx, recomputeRatingQuery, review.ToUserID); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query recomputeRatingQuery: %s", err)
		return review, err
	}

	if err := tx.Commit(); err != nil {
		return review, err
	}
	return review, nil
}

// ListReviewsForUser returns the reviews received by a user, newest first.
func (postgresql *PostgreSQL) ListReviewsForUser(ctx context.Context, userID int64) ([]models.Review, error) {
	rows, err := postgresql.db.QueryContext(ctx, listReviewsForUserQuery, userID)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query listReviewsForUserQuery: %s", err)
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		review := models.Review{}
		var reviewType string
		if err := rows.Scan(&review.ID, &review.FromUserID, &review.FromUserName,
			&review.ToUserID, &review.TaskID, &review.TaskTitle, &review.Rating,
			&review.Comment, &reviewType, &review.CreatedAt); err != nil {
			return nil, err
		}
		review.Type = models.ReviewType(reviewType)
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return reviews, err
	}
	return reviews, nil
}

// GetHelperStats returns the totals badge evaluation needs for a helper.
func (postgresql *PostgreSQL) GetHelperStats(ctx context.Context, userID int64) (int, int, error) {
	var tasksCompleted int
	if err := postgresql.db.QueryRowContext(ctx, helperStatsMatchesQuery, userID).Scan(&tasksCompleted); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query helperStatsMatchesQuery: %s", err)
		return 0, 0, err
	}

	var creditsEarned int
	if err := postgresql.db.QueryRowContext(ctx, helperStatsCreditsQuery, userID).Scan(&creditsEarned); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query helperStatsCreditsQuery: %s", err)
		return 0, 0, err
	}

	return tasksCompleted, creditsEarned, nil
}
