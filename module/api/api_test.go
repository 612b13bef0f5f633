package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatapp/module/api"
	"chatapp/module/chat/store"
	userservice "chatapp/module/user/service"
	"chatapp/service/chat"
	jwtlib "chatapp/tools/security"
)

type apiHarness struct {
	engine *gin.Engine
	ms     *store.MemStore
	router *chat.Router
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ms := store.NewMemStore()
	reg := chat.NewRegistry()
	router := chat.NewRouter(ms, ms, reg, false)
	gw := chat.NewGateway(reg, ms, router, nil)
	jwt := jwtlib.Options{Secret: []byte("test-secret"), TTL: time.Hour}

	engine := gin.New()
	api.New(userservice.NewService(ms, jwt), ms, ms, router, jwt).RegisterRoutes(engine, gw)
	return &apiHarness{engine: engine, ms: ms, router: router}
}

func (h *apiHarness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

// signup registers and logs in, returning the token and user id.
func (h *apiHarness) signup(t *testing.T, username string) (token, id string) {
	t.Helper()
	creds := gin.H{"username": username, "password": "hunter2"}
	w := h.do(t, http.MethodPost, "/api/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(t, http.MethodPost, "/api/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	require.NotEmpty(t, out.User.ID)
	return out.Token, out.User.ID
}

func TestRegisterAndLogin(t *testing.T) {
	h := newAPIHarness(t)

	token, _ := h.signup(t, "alice")

	w := h.do(t, http.MethodPost, "/api/register", "", gin.H{"username": "alice", "password": "other"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(t, http.MethodPost, "/api/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = h.do(t, http.MethodPost, "/api/login", "", gin.H{"username": "ghost", "password": "hunter2"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "protected route without token")
	w = h.do(t, http.MethodGet, "/api/users", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String(), "only user is excluded from their own listing")
}

func TestFriendRequestLifecycle(t *testing.T) {
	h := newAPIHarness(t)
	aliceTok, aliceID := h.signup(t, "alice")
	bobTok, bobID := h.signup(t, "bob")

	w := h.do(t, http.MethodPost, "/api/friend-requests/send", aliceTok, gin.H{"recipientId": aliceID})
	assert.Equal(t, http.StatusBadRequest, w.Code, "self-befriending")

	w = h.do(t, http.MethodPost, "/api/friend-requests/send", aliceTok, gin.H{"recipientId": bobID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// duplicate while pending
	w = h.do(t, http.MethodPost, "/api/friend-requests/send", aliceTok, gin.H{"recipientId": bobID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(t, http.MethodGet, "/api/friend-requests/pending", bobTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []struct {
		ID     string `json:"id"`
		Sender struct {
			Username string `json:"username"`
		} `json:"sender"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].Sender.Username)
	reqID := pending[0].ID

	// only the addressed recipient may accept
	w = h.do(t, http.MethodPost, "/api/friend-requests/"+reqID+"/accept", aliceTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPost, "/api/friend-requests/"+reqID+"/accept", bobTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// pending -> accepted is terminal
	w = h.do(t, http.MethodPost, "/api/friend-requests/"+reqID+"/accept", bobTok, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = h.do(t, http.MethodPost, "/api/friend-requests/"+reqID+"/decline", bobTok, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(t, http.MethodGet, "/api/users/me", aliceTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Friends []struct {
			ID string `json:"id"`
		} `json:"friends"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	require.Len(t, me.Friends, 1)
	assert.Equal(t, bobID, me.Friends[0].ID)
}

func TestDeclineRequest(t *testing.T) {
	h := newAPIHarness(t)
	aliceTok, _ := h.signup(t, "alice")
	bobTok, bobID := h.signup(t, "bob")

	w := h.do(t, http.MethodPost, "/api/friend-requests/send", aliceTok, gin.H{"recipientId": bobID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = h.do(t, http.MethodGet, "/api/friend-requests/pending", bobTok, nil)
	var pending []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)

	w = h.do(t, http.MethodPost, "/api/friend-requests/"+pending[0].ID+"/decline", bobTok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// a declined pair may try again
	w = h.do(t, http.MethodPost, "/api/friend-requests/send", aliceTok, gin.H{"recipientId": bobID})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestMessageEndpoints(t *testing.T) {
	h := newAPIHarness(t)
	aliceTok, aliceID := h.signup(t, "alice")
	bobTok, bobID := h.signup(t, "bob")

	msg, err := h.router.SendMessage(context.Background(), aliceID, bobID, "hello")
	require.NoError(t, err)

	for _, tok := range []string{aliceTok, bobTok} {
		peer := bobID
		if tok == bobTok {
			peer = aliceID
		}
		w := h.do(t, http.MethodGet, "/api/messages/"+peer, tok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var msgs []struct {
			ID      string `json:"id"`
			Content string `json:"content"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgs))
		require.Len(t, msgs, 1)
		assert.Equal(t, msg.ID, msgs[0].ID)
	}

	// only the sender may edit
	w := h.do(t, http.MethodPut, "/api/messages/"+msg.ID, bobTok, gin.H{"content": "hijack"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodPut, "/api/messages/"+msg.ID, aliceTok, gin.H{"content": "hello, edited"})
	require.Equal(t, http.StatusOK, w.Code)
	var edited struct {
		Content string `json:"content"`
		Edited  bool   `json:"edited"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &edited))
	assert.Equal(t, "hello, edited", edited.Content)
	assert.True(t, edited.Edited)

	w = h.do(t, http.MethodDelete, "/api/messages/"+msg.ID, bobTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = h.do(t, http.MethodDelete, "/api/messages/"+msg.ID, aliceTok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/api/messages/"+bobID, aliceTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = h.do(t, http.MethodPut, "/api/messages/"+msg.ID, aliceTok, gin.H{"content": "too late"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveFriendEndpoint(t *testing.T) {
	h := newAPIHarness(t)
	aliceTok, aliceID := h.signup(t, "alice")
	_, bobID := h.signup(t, "bob")

	require.NoError(t, h.ms.AddFriendship(context.Background(), aliceID, bobID))
	_, err := h.router.SendMessage(context.Background(), aliceID, bobID, "bye soon")
	require.NoError(t, err)

	w := h.do(t, http.MethodPost, "/api/friends/remove", aliceTok, gin.H{"friendId": bobID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, http.MethodGet, "/api/users/me", aliceTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Friends []any `json:"friends"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Empty(t, me.Friends)

	w = h.do(t, http.MethodGet, "/api/messages/"+bobID, aliceTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = h.do(t, http.MethodPost, "/api/friends/remove", aliceTok, gin.H{"friendId": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
