package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kindalike/backend/internal/auth"
	"github.com/kindalike/backend/internal/models"
	"github.com/kindalike/backend/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newAuthRouter(users *fakeUserRepo, issuer *auth.TokenIssuer) *gin.Engine {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	handler := NewAuthHandler(&repository.RepositoryManager{User: users}, issuer, logger)

	router := gin.New()
	router.POST("/api/auth/signup", handler.HandleSignup)
	router.POST("/api/auth/login", handler.HandleLogin)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandleSignup_Success(t *testing.T) {
	users := newFakeUserRepo()
	issuer := auth.NewTokenIssuer("secret")
	router := newAuthRouter(users, issuer)

	w := postJSON(t, router, "/api/auth/signup", models.SignupRequest{
		Username: "alice",
		Password: "hunter22",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "alice", resp.User.Username)

	// The issued token authenticates as the new user.
	claims, err := issuer.Validate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	// Password is stored hashed, never verbatim.
	stored := users.users["alice"]
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
	assert.True(t, auth.VerifyPassword("hunter22", stored.PasswordHash))
}

func TestHandleSignup_DuplicateUsername(t *testing.T) {
	users := newFakeUserRepo()
	router := newAuthRouter(users, auth.NewTokenIssuer("secret"))

	first := postJSON(t, router, "/api/auth/signup", models.SignupRequest{Username: "alice", Password: "hunter22"})
	require.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(t, router, "/api/auth/signup", models.SignupRequest{Username: "alice", Password: "different1"})
	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.Contains(t, second.Body.String(), "Username already exists")
}

func TestHandleSignup_ValidationRejectsShortFields(t *testing.T) {
	router := newAuthRouter(newFakeUserRepo(), auth.NewTokenIssuer("secret"))

	w := postJSON(t, router, "/api/auth/signup", models.SignupRequest{Username: "al", Password: "short"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleLogin_Success(t *testing.T) {
	users := newFakeUserRepo()
	router := newAuthRouter(users, auth.NewTokenIssuer("secret"))
	postJSON(t, router, "/api/auth/signup", models.SignupRequest{Username: "alice", Password: "hunter22"})

	w := postJSON(t, router, "/api/auth/login", models.LoginRequest{Username: "alice", Password: "hunter22"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	router := newAuthRouter(users, auth.NewTokenIssuer("secret"))
	postJSON(t, router, "/api/auth/signup", models.SignupRequest{Username: "alice", Password: "hunter22"})

	w := postJSON(t, router, "/api/auth/login", models.LoginRequest{Username: "alice", Password: "wrong-pass"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
}

func TestHandleLogin_UnknownUserSameError(t *testing.T) {
	router := newAuthRouter(newFakeUserRepo(), auth.NewTokenIssuer("secret"))

	w := postJSON(t, router, "/api/auth/login", models.LoginRequest{Username: "nobody", Password: "whatever1"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
}
