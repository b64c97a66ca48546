// Package models defines the data structures used throughout the application.
// It includes the TimeBank domain entities (users, offers, requests, matches,
// transactions, reviews, badges) together with the request and response
// payloads exchanged over the HTTP API.
package models

import "time"

// TaskStatus describes the lifecycle state of an Offer or a Request.
type TaskStatus string

// Task lifecycle states. A posting starts open, moves to in_progress once a
// match against it is accepted, and ends either completed or expired.
const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusExpired    TaskStatus = "expired"
)

// MatchStatus describes the lifecycle state of a Match.
type MatchStatus string

// Match lifecycle states.
const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusAccepted  MatchStatus = "accepted"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// TaskMode describes how a posting can be delivered.
type TaskMode string

// Delivery modes. ModeBoth satisfies both an online and an offline filter.
const (
	ModeOnline  TaskMode = "online"
	ModeOffline TaskMode = "offline"
	ModeBoth    TaskMode = "both"
)

// TaskKind discriminates between the two posting collections when a single
// operation can target either of them.
type TaskKind string

// Posting kinds.
const (
	KindOffer   TaskKind = "offer"
	KindRequest TaskKind = "request"
)

// TransactionType tags a ledger entry from the point of view of the
// receiving user.
type TransactionType string

// Ledger entry types.
const (
	TransactionEarned TransactionType = "earned"
	TransactionSpent  TransactionType = "spent"
)

// ReviewType records which side of a match the reviewer was on.
type ReviewType string

// Review types.
const (
	ReviewAsHelper    ReviewType = "helper"
	ReviewAsRequester ReviewType = "requester"
)

// User represents a registered member of the time bank.
// TimeCredits is the spendable balance; TotalTimeGiven and TotalTimeReceived
// are cumulative counters bumped on match settlement. Rating and ReviewCount
// are aggregates maintained by the storage layer whenever a review is added.
type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	Password          string    `json:"-"`
	Name              string    `json:"name"`
	Bio               string    `json:"bio"`
	Skills            []string  `json:"skills"`
	City              string    `json:"city"`
	TimeCredits       int       `json:"timeCredits"`
	TotalTimeGiven    int       `json:"totalTimeGiven"`
	TotalTimeReceived int       `json:"totalTimeReceived"`
	JoinDate          time.Time `json:"joinDate"`
	Avatar            string    `json:"avatar,omitempty"`
	Badges            []Badge   `json:"badges"`
	Rating            float64   `json:"rating"`
	ReviewCount       int       `json:"reviewCount"`
}

// Badge is a non-revocable achievement marker held by a user.
type Badge struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	Category    string    `json:"category"`
	EarnedAt    time.Time `json:"earnedAt"`
}

// Task is a marketplace posting. Offers and Requests share the same shape
// and are stored in separate collections distinguished by Kind.
type Task struct {
	ID          int64      `json:"id"`
	Kind        TaskKind   `json:"kind"`
	UserID      int64      `json:"userId"`
	UserName    string     `json:"userName"`
	UserCity    string     `json:"userCity"`
	TaskType    string     `json:"taskType"`
	Description string     `json:"description"`
	Credits     int        `json:"credits"`
	Mode        TaskMode   `json:"mode"`
	Location    string     `json:"location,omitempty"`
	IsRemote    bool       `json:"isRemote"`
	CreatedAt   time.Time  `json:"createdAt"`
	Status      TaskStatus `json:"status"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	ExpiresAt   time.Time  `json:"expiresAt"`
}

// Match is a proposed pairing between a requester and a helper against a
// specific posting. RequestID or OfferID is zero when the match originated
// from the other collection.
type Match struct {
	ID          int64       `json:"id"`
	RequestID   int64       `json:"requestId,omitempty"`
	OfferID     int64       `json:"offerId,omitempty"`
	RequesterID int64       `json:"requesterId"`
	HelperID    int64       `json:"helperId"`
	Status      MatchStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}

// Transaction is an immutable ledger record of a credit movement.
// FromUserID is zero for credit purchases, which have no counterparty.
type Transaction struct {
	ID          int64           `json:"id"`
	FromUserID  int64           `json:"fromUserId,omitempty"`
	ToUserID    int64           `json:"toUserId"`
	Amount      int             `json:"amount"`
	TaskType    string          `json:"taskType"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Review is an append-only rating left by one user for another after a task.
type Review struct {
	ID           int64      `json:"id"`
	FromUserID   int64      `json:"fromUserId"`
	FromUserName string     `json:"fromUserName"`
	ToUserID     int64      `json:"toUserId"`
	TaskID       int64      `json:"taskId"`
	TaskTitle    string     `json:"taskTitle"`
	Rating       int        `json:"rating"`
	Comment      string     `json:"comment,omitempty"`
	Type         ReviewType `json:"type"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// SignupRequest represents the registration payload.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	City     string `json:"city"`
}

// LoginRequest represents the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response payload.
// It contains the generated token and the authenticated user.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ErrorResponse represents a generic error response payload.
// It contains a string describing the encountered error.
type ErrorResponse struct {
	Errors string `json:"errors"`
}

// UpdateUserRequest carries the profile fields a user may change.
// Only non-nil fields are applied; the merge is shallow.
type UpdateUserRequest struct {
	Name   *string   `json:"name,omitempty"`
	Bio    *string   `json:"bio,omitempty"`
	City   *string   `json:"city,omitempty"`
	Skills *[]string `json:"skills,omitempty"`
	Avatar *string   `json:"avatar,omitempty"`
}

// PostTaskRequest carries the fields of a new offer or request posting.
type PostTaskRequest struct {
	TaskType    string   `json:"taskType"`
	Description string   `json:"description"`
	Credits     int      `json:"credits"`
	Mode        TaskMode `json:"mode"`
	Location    string   `json:"location,omitempty"`
}

// CreateMatchRequest links a posting to the caller. Exactly one of
// RequestID and OfferID is expected to be set: acting on an offer makes the
// caller the requester, acting on a request makes the caller the helper.
type CreateMatchRequest struct {
	RequestID int64 `json:"requestId,omitempty"`
	OfferID   int64 `json:"offerId,omitempty"`
}

// CreateReviewRequest carries a new review for the recipient user.
type CreateReviewRequest struct {
	ToUserID  int64      `json:"toUserId"`
	TaskID    int64      `json:"taskId"`
	TaskTitle string     `json:"taskTitle"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment,omitempty"`
	Type      ReviewType `json:"type"`
}

// PurchaseRequest carries a credit purchase. The idempotency key is a
// client-generated UUID; replays with the same key are not re-credited.
type PurchaseRequest struct {
	PlanID         string `json:"planId"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// PurchaseResponse reports the outcome of a credit purchase.
type PurchaseResponse struct {
	Credits     int  `json:"credits"`
	NewBalance  int  `json:"newBalance"`
	AlreadyDone bool `json:"alreadyProcessed"`
}

// CompleteMatchResponse reports a settled match together with any badges
// the helper earned from it.
type CompleteMatchResponse struct {
	Match     *Match  `json:"match"`
	NewBadges []Badge `json:"newBadges,omitempty"`
}

// MarketplaceResponse is the browse-tab payload: open postings from other
// users, after search and filter criteria have been applied.
type MarketplaceResponse struct {
	Offers   []Task `json:"offers"`
	Requests []Task `json:"requests"`
}

// DashboardResponse aggregates the signed-in user's headline numbers.
type DashboardResponse struct {
	TimeCredits           int `json:"timeCredits"`
	ActiveOffers          int `json:"activeOffers"`
	ActiveRequests        int `json:"activeRequests"`
	CreditsEarnedThisWeek int `json:"creditsEarnedThisWeek"`
}

// LeaderboardEntry is one row of the community leaderboard, ordered by total
// time given.
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	UserID         int64  `json:"userId"`
	Name           string `json:"name"`
	City           string `json:"city,omitempty"`
	TotalTimeGiven int    `json:"totalTimeGiven"`
	TimeCredits    int    `json:"timeCredits"`
	BadgeCount     int    `json:"badgeCount"`
}
