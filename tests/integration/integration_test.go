package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"timebank/internal/app"
	"timebank/internal/models"
	"timebank/internal/pkg/logger"
	"timebank/internal/service"
	"timebank/internal/storage"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/suite"
)

var testDatabaseURI string

func init() {
	if err := godotenv.Load("../integration/.env"); err != nil {
		log.Println("No .env file found, using default values")
	}

	testDatabaseURI = os.Getenv("TEST_DATABASE_URI")
}

type IntegrationTestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
	db     *storage.PostgreSQL
}

func (s *IntegrationTestSuite) SetupSuite() {
	if testDatabaseURI == "" {
		s.T().Skip("TEST_DATABASE_URI is not set")
	}

	var l *logger.Logger
	var err error
	if l, err = logger.CreateLogger("info"); err != nil {
		log.Fatal("Failed to create logger:", err)
	}

	s.db, err = storage.NewPostgreSQL(testDatabaseURI, l)
	s.Require().NoError(err, "Error connecting to test database")

	appInstance := app.NewApp(s.db, l)
	serviceInstance := service.NewService(appInstance, "localhost:8080", l)

	s.server = httptest.NewServer(serviceInstance.NewRouter())
	s.client = s.server.Client()
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

// signup registers a fresh user and returns the token with the profile.
func (s *IntegrationTestSuite) signup(name string) (string, *models.User) {
	signupReq := models.SignupRequest{
		Email:    fmt.Sprintf("%s-%d@example.com", name, time.Now().UnixNano()),
		Password: "password",
		Name:     name,
		City:     "Berlin",
	}
	reqBody, err := json.Marshal(signupReq)
	s.Require().NoError(err, "Error marshaling signup request")

	resp, err := s.client.Post(s.server.URL+"/api/auth/signup", "application/json", bytes.NewBuffer(reqBody))
	s.Require().NoError(err, "Error sending signup request")
	s.Require().Equal(http.StatusCreated, resp.StatusCode, "Expected status 201 for signup")

	var authResp models.AuthResponse
	err = json.NewDecoder(resp.Body).Decode(&authResp)
	resp.Body.Close()
	s.Require().NoError(err, "Error decoding signup response")
	s.Require().NotEmpty(authResp.Token, "Token should not be empty")
	s.Require().Equal(5, authResp.User.TimeCredits, "New users start with 5 credits")

	return authResp.Token, authResp.User
}

func (s *IntegrationTestSuite) doJSON(method, path, token string, payload any, out any) *http.Response {
	var body bytes.Buffer
	if payload != nil {
		s.Require().NoError(json.NewEncoder(&body).Encode(payload))
	}

	req, err := http.NewRequest(method, s.server.URL+path, &body)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	if out != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	resp.Body.Close()
	return resp
}

// TestTaskExchange walks the full exchange: the helper posts an offer, the
// requester connects, the match is accepted and completed, credits move,
// and the helper earns the first-task badge.
func (s *IntegrationTestSuite) TestTaskExchange() {
	helperToken, helper := s.signup("helper")
	requesterToken, requester := s.signup("requester")

	var offer models.Task
	resp := s.doJSON("POST", "/api/offers", helperToken, models.PostTaskRequest{
		TaskType:    "Resume Review",
		Description: "resume feedback",
		Credits:     2,
		Mode:        models.ModeOnline,
	}, &offer)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, "Expected status 201 for posting an offer")
	s.Require().Equal(models.TaskStatusOpen, offer.Status)

	var match models.Match
	resp = s.doJSON("POST", "/api/matches", requesterToken, models.CreateMatchRequest{OfferID: offer.ID}, &match)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, "Expected status 201 for creating a match")
	s.Require().Equal(models.MatchStatusPending, match.Status)
	s.Require().Equal(requester.ID, match.RequesterID)
	s.Require().Equal(helper.ID, match.HelperID)

	resp = s.doJSON("POST", fmt.Sprintf("/api/matches/%d/accept", match.ID), helperToken, nil, &match)
	s.Require().Equal(http.StatusOK, resp.StatusCode, "Expected status 200 for accepting the match")
	s.Require().Equal(models.MatchStatusAccepted, match.Status)

	var completed models.CompleteMatchResponse
	resp = s.doJSON("POST", fmt.Sprintf("/api/matches/%d/complete", match.ID), helperToken, nil, &completed)
	s.Require().Equal(http.StatusOK, resp.StatusCode, "Expected status 200 for completing the match")
	s.Require().Equal(models.MatchStatusCompleted, completed.Match.Status)

	var helperProfile, requesterProfile models.User
	resp = s.doJSON("GET", "/api/user", helperToken, nil, &helperProfile)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp = s.doJSON("GET", "/api/user", requesterToken, nil, &requesterProfile)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	s.Require().Equal(7, helperProfile.TimeCredits, "Helper should have earned 2 credits")
	s.Require().Equal(3, requesterProfile.TimeCredits, "Requester should have paid 2 credits")
	s.Require().Equal(2, helperProfile.TotalTimeGiven)
	s.Require().Equal(2, requesterProfile.TotalTimeReceived)

	badgeNames := make([]string, 0, len(helperProfile.Badges))
	for _, badge := range helperProfile.Badges {
		badgeNames = append(badgeNames, badge.Name)
	}
	s.Require().Contains(badgeNames, "Newbie", "Helper should earn the first-task badge")

	// The settlement wrote exactly one earned ledger row for the helper.
	var transactions []models.Transaction
	resp = s.doJSON("GET", "/api/transactions", helperToken, nil, &transactions)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NotEmpty(transactions)
	s.Require().Equal(models.TransactionEarned, transactions[0].Type)
	s.Require().Equal(2, transactions[0].Amount)
}

// TestExpirySweep backdates the clock the sweep runs against and checks
// that open postings past their deadline flip to expired while postings
// already in progress stay untouched.
func (s *IntegrationTestSuite) TestExpirySweep() {
	helperToken, _ := s.signup("sweep-helper")
	requesterToken, _ := s.signup("sweep-requester")

	var offer models.Task
	resp := s.doJSON("POST", "/api/offers", helperToken, models.PostTaskRequest{
		TaskType:    "Resume Review",
		Description: "left open past the deadline",
		Credits:     2,
		Mode:        models.ModeOnline,
	}, &offer)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var request models.Task
	resp = s.doJSON("POST", "/api/requests", requesterToken, models.PostTaskRequest{
		TaskType:    "Math Tutoring (1 session)",
		Description: "already being worked on",
		Credits:     3,
		Mode:        models.ModeOnline,
	}, &request)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var match models.Match
	resp = s.doJSON("POST", "/api/matches", helperToken, models.CreateMatchRequest{RequestID: request.ID}, &match)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	resp = s.doJSON("POST", fmt.Sprintf("/api/matches/%d/accept", match.ID), requesterToken, nil, &match)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	// Both postings expire seven days out; sweeping with a cutoff past
	// that deadline must only catch the one still open.
	expired, err := s.db.ExpireOverdueTasks(context.Background(), time.Now().UTC().Add(8*24*time.Hour))
	s.Require().NoError(err)
	s.Require().GreaterOrEqual(expired, int64(1))

	var helperPosts []models.Task
	resp = s.doJSON("GET", "/api/posts/my", helperToken, nil, &helperPosts)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Len(helperPosts, 1)
	s.Require().Equal(models.TaskStatusExpired, helperPosts[0].Status, "Open posting past its deadline must expire")

	var requesterPosts []models.Task
	resp = s.doJSON("GET", "/api/posts/my", requesterToken, nil, &requesterPosts)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Len(requesterPosts, 1)
	s.Require().Equal(models.TaskStatusInProgress, requesterPosts[0].Status, "In-progress posting must survive the sweep")
}

// TestSignupWelcomeLedger checks that the starting balance shows up in the
// new user's transaction history.
func (s *IntegrationTestSuite) TestSignupWelcomeLedger() {
	token, user := s.signup("newcomer")

	var transactions []models.Transaction
	resp := s.doJSON("GET", "/api/transactions", token, nil, &transactions)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Len(transactions, 1)
	s.Require().Equal(user.ID, transactions[0].ToUserID)
	s.Require().Equal(5, transactions[0].Amount)
	s.Require().Equal("Welcome Bonus", transactions[0].TaskType)
	s.Require().Equal(models.TransactionEarned, transactions[0].Type)
}

// TestPurchaseIdempotency replays a credit purchase with the same key and
// checks that the balance is credited only once.
func (s *IntegrationTestSuite) TestPurchaseIdempotency() {
	token, _ := s.signup("buyer")
	key := uuid.NewString()

	var first models.PurchaseResponse
	resp := s.doJSON("POST", "/api/credits/purchase", token, models.PurchaseRequest{
		PlanID:         "starter",
		IdempotencyKey: key,
	}, &first)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Equal(15, first.NewBalance, "5 starting + 10 purchased")
	s.Require().False(first.AlreadyDone)

	var replay models.PurchaseResponse
	resp = s.doJSON("POST", "/api/credits/purchase", token, models.PurchaseRequest{
		PlanID:         "starter",
		IdempotencyKey: key,
	}, &replay)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Equal(15, replay.NewBalance, "Replay must not credit twice")
	s.Require().True(replay.AlreadyDone)
}

// TestReviewAggregates leaves a review and checks the recipient's rating
// and review count.
func (s *IntegrationTestSuite) TestReviewAggregates() {
	reviewerToken, _ := s.signup("reviewer")
	_, recipient := s.signup("recipient")

	var review models.Review
	resp := s.doJSON("POST", "/api/reviews", reviewerToken, models.CreateReviewRequest{
		ToUserID:  recipient.ID,
		TaskTitle: "Resume Review",
		Rating:    4,
		Comment:   "helpful and fast",
		Type:      models.ReviewAsHelper,
	}, &review)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var reviews []models.Review
	resp = s.doJSON("GET", fmt.Sprintf("/api/users/%d/reviews", recipient.ID), reviewerToken, nil, &reviews)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Len(reviews, 1)
	s.Require().Equal(4, reviews[0].Rating)
}

// TestProfileShallowMerge updates one profile field and checks that the
// others survive untouched.
func (s *IntegrationTestSuite) TestProfileShallowMerge() {
	token, _ := s.signup("merger")

	skills := []string{"Go", "SQL"}
	var updated models.User
	resp := s.doJSON("PATCH", "/api/user", token, models.UpdateUserRequest{Skills: &skills}, &updated)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Equal(skills, updated.Skills)

	city := "Hamburg"
	resp = s.doJSON("PATCH", "/api/user", token, models.UpdateUserRequest{City: &city}, &updated)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Equal("Hamburg", updated.City)
	s.Require().Equal(skills, updated.Skills, "Updating the city must not erase the skills")
	s.Require().Equal(5, updated.TimeCredits, "Updating the city must not touch the balance")
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
