package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skillnet/config"
	"skillnet/internal/repository"
	"skillnet/internal/service"
	"skillnet/pkg/db/dbtest"
	"skillnet/pkg/jwt"
	"skillnet/pkg/password"
	"skillnet/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	jwtSvc := jwt.NewJWTService(config.JWTConfig{
		Secret:       "handler-test-secret",
		ExpireTime:   time.Hour,
		Issuer:       "skillnet-test",
		DisplayClaim: "username",
	})
	users := service.NewUserService(repository.NewUserRepository(db), jwtSvc).
		WithHasher(func(p string) (string, error) { return password.HashWithCost(p, bcrypt.MinCost) })
	ledger := service.NewFriendshipService(repository.NewFriendshipRepository(db), users, nil, nil)
	skills := service.NewCompetenceService(repository.NewCompetenceRepository(db))

	routes := &Routes{
		Users:       NewUserHandler(users),
		Friendships: NewFriendshipHandler(ledger),
		Competences: NewCompetenceHandler(skills),
		Auth:        jwtSvc.AuthMiddleware(),
	}
	if limiter != nil {
		routes.LoginLimiter = limiter.Middleware()
	}
	r := gin.New()
	routes.Register(r)
	return &testServer{t: t, router: r}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *testServer) register(name string) (uint, string) {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/auth/register", "", gin.H{
		"username": name,
		"email":    name + "@example.com",
		"password": "password-" + name,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.User.ID, data.AccessToken
}

type friendshipDTO struct {
	ID       uint `json:"id"`
	UserID   uint `json:"user_id"`
	FriendID uint `json:"friend_id"`
	Accepted bool `json:"accepted"`
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)
	_, _ = s.register("alice")

	w, env := s.do(http.MethodPost, "/auth/login", "", gin.H{"usernameOrEmail": "alice", "password": "password-alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	login := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, env.Data)
	require.NotEmpty(t, login.AccessToken)

	w, _ = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "alice@example.com", "password": "password-alice"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodPost, "/auth/login", "", gin.H{"usernameOrEmail": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusUnauthorized, env.Code)

	w, _ = s.do(http.MethodPost, "/auth/login", "", gin.H{"usernameOrEmail": "ghost", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodGet, "/users/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[struct {
		Username string `json:"username"`
	}](t, env.Data)
	assert.Equal(t, "alice", me.Username)

	w, _ = s.do(http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/auth/register", "", gin.H{"username": "alice", "email": "a2@example.com", "password": "password"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newTestServer(t, ratelimit.New(config.RateLimitConfig{LoginPerSecond: 0.001, LoginBurst: 1}))

	w, _ := s.do(http.MethodPost, "/auth/login", "", gin.H{"usernameOrEmail": "x", "password": "y"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodPost, "/auth/login", "", gin.H{"usernameOrEmail": "x", "password": "y"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestFriendshipEndToEnd(t *testing.T) {
	s := newTestServer(t, nil)
	aID, aTok := s.register("alice")
	bID, bTok := s.register("bob")
	_, cTok := s.register("carol")

	// A 请求 B
	w, env := s.do(http.MethodPost, "/friendships", aTok, gin.H{"pseudo": "bob"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	f := decode[friendshipDTO](t, env.Data)
	assert.Equal(t, aID, f.UserID)
	assert.Equal(t, bID, f.FriendID)
	assert.False(t, f.Accepted)

	w, env = s.do(http.MethodGet, "/friendships/pending/count", bTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	// 非被请求方不能接受
	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/friendships/%d", f.ID), aTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// B 接受
	w, env = s.do(http.MethodPatch, fmt.Sprintf("/friendships/%d", f.ID), bTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[friendshipDTO](t, env.Data).Accepted)

	// 重复接受
	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/friendships/%d", f.ID), bTok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/friendships", bTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	friends := decode[[]friendshipDTO](t, env.Data)
	require.Len(t, friends, 1)
	mirrorID := friends[0].ID
	assert.Equal(t, aID, friends[0].FriendID)
	assert.True(t, friends[0].Accepted)

	// 第三方不能删除
	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/friendships/%d", f.ID), cTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A 删除，两条记录都消失
	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/friendships/%d", f.ID), aTok, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	for _, id := range []uint{f.ID, mirrorID} {
		w, _ = s.do(http.MethodGet, fmt.Sprintf("/friendships/%d", id), aTok, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestFriendshipErrors(t *testing.T) {
	s := newTestServer(t, nil)
	aID, aTok := s.register("alice")
	s.register("bob")

	w, _ := s.do(http.MethodPost, "/friendships", aTok, gin.H{"pseudo": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPost, "/friendships", aTok, gin.H{"friend_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPost, "/friendships", aTok, gin.H{"friend_id": aID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/friendships", aTok, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/friendships", aTok, gin.H{"pseudo": "bob"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(http.MethodPost, "/friendships", aTok, gin.H{"pseudo": "bob"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(http.MethodGet, "/friendships/abc", aTok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(http.MethodPatch, "/friendships/999", aTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodDelete, "/friendships/999", aTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, "/friendships/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCompetenceCRUD(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(http.MethodPost, "/competences", "", gin.H{"name": "Go", "description": "backend"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}](t, env.Data)
	assert.Equal(t, "Go", created.Name)

	w, _ = s.do(http.MethodPost, "/competences", "", gin.H{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/competences", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]json.RawMessage](t, env.Data), 1)

	path := fmt.Sprintf("/competences/%d", created.ID)
	w, env = s.do(http.MethodPatch, path, "", gin.H{"description": "services"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}](t, env.Data)
	assert.Equal(t, "Go", updated.Name)
	assert.Equal(t, "services", updated.Description)

	w, _ = s.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w, _ = s.do(method, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
	}
	w, _ = s.do(http.MethodPatch, path, "", gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, "/competences/zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
