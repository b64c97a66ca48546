package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timebank/internal/app"
	"timebank/internal/models"
	"timebank/internal/pkg/auth"
	"timebank/internal/pkg/logger"
	"timebank/internal/pkg/security"
	"timebank/internal/storage"
	"timebank/internal/storage/mocks"
)

func newTestServer(t *testing.T) (*httptest.Server, *mocks.MockStorage) {
	t.Helper()

	l, err := logger.CreateLogger("info")
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockDB := mocks.NewMockStorage(ctrl)
	appInstance := app.NewApp(mockDB, l)
	service := NewService(appInstance, "localhost:8080", l)

	testServer := httptest.NewServer(service.NewRouter())
	t.Cleanup(testServer.Close)

	return testServer, mockDB
}

func testRequest(t *testing.T, ts *httptest.Server, method, path string, requestBody []byte, token string) (*http.Response, string) {
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestSignupHandler_Gomock(t *testing.T) {
	testServer, mockDB := newTestServer(t)

	type expectedData struct {
		expectedStatusCode int
		expectedBody       string
	}

	testCases := []struct {
		name        string
		requestBody []byte
		setupMock   func()
		expected    expectedData
	}{
		{
			name:        "Invalid JSON",
			requestBody: []byte("some body"),
			setupMock:   func() {},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"invalid character 's' looking for beginning of value\"}\n",
			},
		},
		{
			name:        "Missing name",
			requestBody: []byte(`{"email": "a@b.c", "password": "pass", "name": ""}`),
			setupMock:   func() {},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"missing email, password or name\"}\n",
			},
		},
		{
			name:        "Duplicate email (unique violation)",
			requestBody: []byte(`{"email": "taken@b.c", "password": "pass", "name": "Alice"}`),
			setupMock: func() {
				mockDB.EXPECT().CreateUser(gomock.Any(), gomock.AssignableToTypeOf(&models.User{})).
					Return(nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			expected: expectedData{
				expectedStatusCode: http.StatusConflict,
				expectedBody:       "{\"errors\":\"user with provided email already exists\"}\n",
			},
		},
		{
			name:        "Successful signup",
			requestBody: []byte(`{"email": "new@b.c", "password": "pass", "name": "Alice", "city": "Berlin"}`),
			setupMock: func() {
				mockDB.EXPECT().CreateUser(gomock.Any(), gomock.AssignableToTypeOf(&models.User{})).
					DoAndReturn(func(ctx context.Context, user *models.User) (*models.User, error) {
						created := *user
						created.ID = 42
						return &created, nil
					})
				mockDB.EXPECT().CreateTransaction(gomock.Any(), gomock.AssignableToTypeOf(&models.Transaction{})).
					DoAndReturn(func(ctx context.Context, tr *models.Transaction) (*models.Transaction, error) {
						return tr, nil
					})
			},
			expected: expectedData{
				expectedStatusCode: http.StatusCreated,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()
			resp, body := testRequest(t, testServer, http.MethodPost, "/api/auth/signup", tc.requestBody, "")
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			if tc.expected.expectedStatusCode == http.StatusCreated {
				var authResp models.AuthResponse
				err := json.Unmarshal([]byte(body), &authResp)
				require.NoError(t, err)
				assert.NotEmpty(t, authResp.Token, "token should not be empty")
				assert.Equal(t, int64(42), authResp.User.ID)
				assert.Equal(t, 5, authResp.User.TimeCredits)
			} else {
				assert.Equal(t, tc.expected.expectedBody, body)
			}
		})
	}
}

func TestLoginHandler_Gomock(t *testing.T) {
	testServer, mockDB := newTestServer(t)

	passwordHash := security.HashPassword("pass")

	type expectedData struct {
		expectedStatusCode int
		expectedBody       string
	}

	testCases := []struct {
		name        string
		requestBody []byte
		setupMock   func()
		expected    expectedData
	}{
		{
			name:        "Missing password",
			requestBody: []byte(`{"email": "a@b.c", "password": ""}`),
			setupMock:   func() {},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"missing email or password\"}\n",
			},
		},
		{
			name:        "Unknown email",
			requestBody: []byte(`{"email": "nobody@b.c", "password": "pass"}`),
			setupMock: func() {
				mockDB.EXPECT().GetUserByEmail(gomock.Any(), "nobody@b.c").
					Return(nil, sql.ErrNoRows)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusUnauthorized,
				expectedBody:       "{\"errors\":\"incorrect email or password\"}\n",
			},
		},
		{
			name:        "Incorrect password",
			requestBody: []byte(`{"email": "a@b.c", "password": "wrongpass"}`),
			setupMock: func() {
				mockDB.EXPECT().GetUserByEmail(gomock.Any(), "a@b.c").
					Return(&models.User{ID: 1, Email: "a@b.c", Password: passwordHash}, nil)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusUnauthorized,
				expectedBody:       "{\"errors\":\"incorrect email or password\"}\n",
			},
		},
		{
			name:        "Successful login",
			requestBody: []byte(`{"email": "a@b.c", "password": "pass"}`),
			setupMock: func() {
				mockDB.EXPECT().GetUserByEmail(gomock.Any(), "a@b.c").
					Return(&models.User{ID: 1, Email: "a@b.c", Password: passwordHash, TimeCredits: 5}, nil)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusOK,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()
			resp, body := testRequest(t, testServer, http.MethodPost, "/api/auth/login", tc.requestBody, "")
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)

			if tc.expected.expectedStatusCode == http.StatusOK {
				var authResp models.AuthResponse
				err := json.Unmarshal([]byte(body), &authResp)
				require.NoError(t, err)
				assert.NotEmpty(t, authResp.Token)
			} else {
				assert.Equal(t, tc.expected.expectedBody, body)
			}
		})
	}
}

func TestPostOfferHandler_Gomock(t *testing.T) {
	testServer, mockDB := newTestServer(t)

	token, err := auth.GenerateToken(1)
	require.NoError(t, err)

	type expectedData struct {
		expectedStatusCode int
		expectedBody       string
	}

	testCases := []struct {
		name        string
		token       string
		requestBody []byte
		setupMock   func()
		expected    expectedData
	}{
		{
			name:        "Unauthorized - no token",
			token:       "",
			requestBody: []byte(`{"taskType": "Resume Review", "credits": 2, "mode": "online"}`),
			setupMock:   func() {},
			expected: expectedData{
				expectedStatusCode: http.StatusUnauthorized,
				expectedBody:       "{\"errors\":\"missing auth header\"}\n",
			},
		},
		{
			name:        "Missing task type",
			token:       token,
			requestBody: []byte(`{"taskType": "", "credits": 2, "mode": "online"}`),
			setupMock:   func() {},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"missing task type or non-positive credits\"}\n",
			},
		},
		{
			name:        "Invalid mode",
			token:       token,
			requestBody: []byte(`{"taskType": "Resume Review", "credits": 2, "mode": "hybrid"}`),
			setupMock:   func() {},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"mode must be online, offline or both\"}\n",
			},
		},
		{
			name:        "Successful posting",
			token:       token,
			requestBody: []byte(`{"taskType": "Resume Review", "description": "tech resumes", "credits": 2, "mode": "online"}`),
			setupMock: func() {
				mockDB.EXPECT().GetUserByID(gomock.Any(), int64(1)).
					Return(&models.User{ID: 1, Name: "Alice", City: "Berlin"}, nil)
				mockDB.EXPECT().CreateTask(gomock.Any(), gomock.AssignableToTypeOf(&models.Task{})).
					DoAndReturn(func(ctx context.Context, task *models.Task) (*models.Task, error) {
						created := *task
						created.ID = 10
						return &created, nil
					})
			},
			expected: expectedData{
				expectedStatusCode: http.StatusCreated,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()
			resp, body := testRequest(t, testServer, http.MethodPost, "/api/offers", tc.requestBody, tc.token)
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)

			if tc.expected.expectedStatusCode == http.StatusCreated {
				var task models.Task
				err := json.Unmarshal([]byte(body), &task)
				require.NoError(t, err)
				assert.Equal(t, int64(10), task.ID)
				assert.Equal(t, models.TaskStatusOpen, task.Status)
			} else {
				assert.Equal(t, tc.expected.expectedBody, body)
			}
		})
	}
}

func TestCreateMatchHandler_Gomock(t *testing.T) {
	testServer, mockDB := newTestServer(t)

	token, err := auth.GenerateToken(1)
	require.NoError(t, err)

	type expectedData struct {
		expectedStatusCode int
		expectedBody       string
	}

	testCases := []struct {
		name        string
		requestBody []byte
		setupMock   func()
		expected    expectedData
	}{
		{
			name:        "Neither id set",
			requestBody: []byte(`{}`),
			setupMock:   func() {},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"exactly one of requestId and offerId is required\"}\n",
			},
		},
		{
			name:        "Own posting",
			requestBody: []byte(`{"offerId": 10}`),
			setupMock: func() {
				mockDB.EXPECT().ListOpenTasks(gomock.Any(), models.KindOffer).
					Return([]models.Task{{ID: 10, UserID: 1}}, nil)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"cannot connect to your own posting\"}\n",
			},
		},
		{
			name:        "Posting no longer open",
			requestBody: []byte(`{"offerId": 99}`),
			setupMock: func() {
				mockDB.EXPECT().ListOpenTasks(gomock.Any(), models.KindOffer).
					Return([]models.Task{}, nil)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"posting not found or no longer open\"}\n",
			},
		},
		{
			name:        "Successful match",
			requestBody: []byte(`{"offerId": 10}`),
			setupMock: func() {
				mockDB.EXPECT().ListOpenTasks(gomock.Any(), models.KindOffer).
					Return([]models.Task{{ID: 10, UserID: 2}}, nil)
				mockDB.EXPECT().CreateMatch(gomock.Any(), gomock.AssignableToTypeOf(&models.Match{})).
					DoAndReturn(func(ctx context.Context, match *models.Match) (*models.Match, error) {
						match.ID = 1
						match.Status = models.MatchStatusPending
						return match, nil
					})
			},
			expected: expectedData{
				expectedStatusCode: http.StatusCreated,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()
			resp, body := testRequest(t, testServer, http.MethodPost, "/api/matches", tc.requestBody, token)
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)

			if tc.expected.expectedStatusCode == http.StatusCreated {
				var match models.Match
				err := json.Unmarshal([]byte(body), &match)
				require.NoError(t, err)
				assert.Equal(t, int64(1), match.RequesterID)
				assert.Equal(t, int64(2), match.HelperID)
			} else {
				assert.Equal(t, tc.expected.expectedBody, body)
			}
		})
	}
}

func TestCompleteMatchHandler_Gomock(t *testing.T) {
	testServer, mockDB := newTestServer(t)

	token, err := auth.GenerateToken(1)
	require.NoError(t, err)

	type expectedData struct {
		expectedStatusCode int
		expectedBody       string
	}

	testCases := []struct {
		name      string
		path      string
		setupMock func()
		expected  expectedData
	}{
		{
			name:      "Invalid match id",
			path:      "/api/matches/abc/complete",
			setupMock: func() {},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"invalid id provided\"}\n",
			},
		},
		{
			name: "Match not found",
			path: "/api/matches/5/complete",
			setupMock: func() {
				mockDB.EXPECT().SettleMatch(gomock.Any(), int64(5), gomock.Any()).
					Return(nil, sql.ErrNoRows)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusNotFound,
				expectedBody:       "{\"errors\":\"match not found\"}\n",
			},
		},
		{
			name: "Already completed",
			path: "/api/matches/5/complete",
			setupMock: func() {
				mockDB.EXPECT().SettleMatch(gomock.Any(), int64(5), gomock.Any()).
					Return(nil, storage.ErrMatchNotSettleable)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusConflict,
				expectedBody:       "{\"errors\":\"match cannot be completed\"}\n",
			},
		},
		{
			name: "Insufficient credits",
			path: "/api/matches/5/complete",
			setupMock: func() {
				mockDB.EXPECT().SettleMatch(gomock.Any(), int64(5), gomock.Any()).
					Return(nil, storage.ErrInsufficientCredits)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"insufficient credits to settle the task\"}\n",
			},
		},
		{
			name: "Successful settlement",
			path: "/api/matches/5/complete",
			setupMock: func() {
				settled := &storage.Settlement{
					Match:       &models.Match{ID: 5, Status: models.MatchStatusCompleted, RequesterID: 1, HelperID: 2},
					RequesterID: 1,
					HelperID:    2,
					Amount:      3,
				}
				mockDB.EXPECT().SettleMatch(gomock.Any(), int64(5), gomock.Any()).Return(settled, nil)
				mockDB.EXPECT().GetHelperStats(gomock.Any(), int64(2)).Return(1, 3, nil)
				mockDB.EXPECT().GetUserByID(gomock.Any(), int64(2)).
					Return(&models.User{ID: 2, Name: "Bob"}, nil)
				mockDB.EXPECT().AddUserBadges(gomock.Any(), int64(2), gomock.Any()).Return(nil)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusOK,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()
			resp, body := testRequest(t, testServer, http.MethodPost, tc.path, nil, token)
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)

			if tc.expected.expectedStatusCode == http.StatusOK {
				var completed models.CompleteMatchResponse
				err := json.Unmarshal([]byte(body), &completed)
				require.NoError(t, err)
				assert.Equal(t, models.MatchStatusCompleted, completed.Match.Status)
				require.NotEmpty(t, completed.NewBadges)
				assert.Equal(t, "Newbie", completed.NewBadges[0].Name)
			} else {
				assert.Equal(t, tc.expected.expectedBody, body)
			}
		})
	}
}

func TestGetMatchHandler_Gomock(t *testing.T) {
	testServer, mockDB := newTestServer(t)

	token, err := auth.GenerateToken(1)
	require.NoError(t, err)

	type expectedData struct {
		expectedStatusCode int
		expectedBody       string
	}

	testCases := []struct {
		name      string
		path      string
		setupMock func()
		expected  expectedData
	}{
		{
			name:      "Invalid match id",
			path:      "/api/matches/abc",
			setupMock: func() {},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"invalid id provided\"}\n",
			},
		},
		{
			name: "Match not found",
			path: "/api/matches/5",
			setupMock: func() {
				mockDB.EXPECT().GetMatch(gomock.Any(), int64(5)).
					Return(nil, sql.ErrNoRows)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusNotFound,
				expectedBody:       "{\"errors\":\"match not found\"}\n",
			},
		},
		{
			name: "Not a party to the match",
			path: "/api/matches/6",
			setupMock: func() {
				mockDB.EXPECT().GetMatch(gomock.Any(), int64(6)).
					Return(&models.Match{ID: 6, OfferID: 3, RequesterID: 8, HelperID: 9,
						Status: models.MatchStatusPending}, nil)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusNotFound,
				expectedBody:       "{\"errors\":\"match not found\"}\n",
			},
		},
		{
			name: "Successful fetch",
			path: "/api/matches/7",
			setupMock: func() {
				mockDB.EXPECT().GetMatch(gomock.Any(), int64(7)).
					Return(&models.Match{ID: 7, OfferID: 3, RequesterID: 1, HelperID: 2,
						Status: models.MatchStatusAccepted}, nil)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusOK,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()
			resp, body := testRequest(t, testServer, http.MethodGet, tc.path, nil, token)
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)

			if tc.expected.expectedStatusCode == http.StatusOK {
				var match models.Match
				err := json.Unmarshal([]byte(body), &match)
				require.NoError(t, err)
				assert.Equal(t, int64(7), match.ID)
				assert.Equal(t, models.MatchStatusAccepted, match.Status)
			} else {
				assert.Equal(t, tc.expected.expectedBody, body)
			}
		})
	}
}

func TestMarketplaceHandler_Gomock(t *testing.T) {
	testServer, mockDB := newTestServer(t)

	token, err := auth.GenerateToken(1)
	require.NoError(t, err)

	mockDB.EXPECT().ListOpenTasks(gomock.Any(), models.KindOffer).
		Return([]models.Task{
			{ID: 1, UserID: 1, TaskType: "Resume Review", Mode: models.ModeOnline},
			{ID: 2, UserID: 2, TaskType: "Resume Review", Mode: models.ModeOnline},
			{ID: 3, UserID: 3, TaskType: "Basic HTML Help", Mode: models.ModeOffline},
		}, nil)
	mockDB.EXPECT().ListOpenTasks(gomock.Any(), models.KindRequest).
		Return(nil, nil)

	resp, body := testRequest(t, testServer, http.MethodGet, "/api/marketplace?q=resume&mode=online", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var marketplace models.MarketplaceResponse
	require.NoError(t, json.Unmarshal([]byte(body), &marketplace))
	// Own posting and the non-matching one are filtered out.
	require.Len(t, marketplace.Offers, 1)
	assert.Equal(t, int64(2), marketplace.Offers[0].ID)
	assert.Empty(t, marketplace.Requests)
}

func TestPurchaseHandler_Gomock(t *testing.T) {
	testServer, mockDB := newTestServer(t)

	token, err := auth.GenerateToken(1)
	require.NoError(t, err)

	type expectedData struct {
		expectedStatusCode int
		expectedBody       string
	}

	testCases := []struct {
		name        string
		requestBody []byte
		setupMock   func()
		expected    expectedData
	}{
		{
			name:        "Unknown plan",
			requestBody: []byte(`{"planId": "gold", "idempotencyKey": "0d5ad3c2-8a0a-4df1-9e92-24e1a1d7f0aa"}`),
			setupMock:   func() {},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"unknown credit plan\"}\n",
			},
		},
		{
			name:        "Invalid idempotency key",
			requestBody: []byte(`{"planId": "starter", "idempotencyKey": "not-a-uuid"}`),
			setupMock:   func() {},
			expected: expectedData{
				expectedStatusCode: http.StatusBadRequest,
				expectedBody:       "{\"errors\":\"idempotency key must be a valid UUID\"}\n",
			},
		},
		{
			name:        "Generic storage error",
			requestBody: []byte(`{"planId": "starter", "idempotencyKey": "0d5ad3c2-8a0a-4df1-9e92-24e1a1d7f0aa"}`),
			setupMock: func() {
				mockDB.EXPECT().PurchaseCredits(gomock.Any(), int64(1), "0d5ad3c2-8a0a-4df1-9e92-24e1a1d7f0aa", 10, "Starter Pack").
					Return(0, false, errors.New("purchase error"))
			},
			expected: expectedData{
				expectedStatusCode: http.StatusInternalServerError,
				expectedBody:       "{\"errors\":\"purchase error\"}\n",
			},
		},
		{
			name:        "Successful purchase",
			requestBody: []byte(`{"planId": "popular", "idempotencyKey": "0d5ad3c2-8a0a-4df1-9e92-24e1a1d7f0aa"}`),
			setupMock: func() {
				mockDB.EXPECT().PurchaseCredits(gomock.Any(), int64(1), "0d5ad3c2-8a0a-4df1-9e92-24e1a1d7f0aa", 25, "Popular Choice").
					Return(30, true, nil)
			},
			expected: expectedData{
				expectedStatusCode: http.StatusOK,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()
			resp, body := testRequest(t, testServer, http.MethodPost, "/api/credits/purchase", tc.requestBody, token)
			assert.Equal(t, tc.expected.expectedStatusCode, resp.StatusCode)

			if tc.expected.expectedStatusCode == http.StatusOK {
				var purchase models.PurchaseResponse
				err := json.Unmarshal([]byte(body), &purchase)
				require.NoError(t, err)
				assert.Equal(t, 25, purchase.Credits)
				assert.Equal(t, 30, purchase.NewBalance)
			} else {
				assert.Equal(t, tc.expected.expectedBody, body)
			}
		})
	}
}

func TestCatalogHandlers(t *testing.T) {
	testServer, _ := newTestServer(t)

	resp, body := testRequest(t, testServer, http.MethodGet, "/api/catalog/tasks", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var taskTypes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &taskTypes))
	assert.Len(t, taskTypes, 15)

	resp, body = testRequest(t, testServer, http.MethodGet, "/api/catalog/tasks?category=Programming", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var programming []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &programming))
	assert.Len(t, programming, 3)
	for _, taskType := range programming {
		assert.Equal(t, "Programming", taskType["category"])
	}

	resp, body = testRequest(t, testServer, http.MethodGet, "/api/catalog/categories", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []string
	require.NoError(t, json.Unmarshal([]byte(body), &categories))
	assert.Len(t, categories, 8)
	assert.Contains(t, categories, "Programming")

	resp, body = testRequest(t, testServer, http.MethodGet, "/api/catalog/tasks/math-tutoring", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Math Tutoring")

	resp, body = testRequest(t, testServer, http.MethodGet, "/api/catalog/tasks/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "{\"errors\":\"unknown task type\"}\n", body)

	resp, body = testRequest(t, testServer, http.MethodGet, "/api/catalog/plans", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var plans []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &plans))
	assert.Len(t, plans, 3)

	resp, body = testRequest(t, testServer, http.MethodGet, "/api/catalog/badges", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var badges []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &badges))
	assert.Len(t, badges, 8)
}
