package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"domino-service/internal/api"
	"domino-service/internal/config"
	"domino-service/internal/repo"
	"domino-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type createdMatch struct {
	MatchID string `json:"matchId"`
	Token   string `json:"token"`
	State   struct {
		Phase         string `json:"phase"`
		CurrentPlayer int    `json:"currentPlayer"`
		Hand          []struct {
			A int `json:"a"`
			B int `json:"b"`
		} `json:"hand"`
		LegalMoves []struct {
			TileIndex int    `json:"tileIndex"`
			Side      string `json:"side"`
		} `json:"legalMoves"`
	} `json:"state"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Database.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	cfg.Arena.MaxMatches = 20
	cfg.Arena.RetainRecords = 2
	config.GlobalConfig = cfg

	db, err := repo.OpenDB(cfg.Database)
	require.NoError(t, err)

	r := gin.New()
	api.RegisterRoutes(r, service.NewContainer(cfg, db, nil))
	return r
}

func do(t *testing.T, r http.Handler, method, path, token string, body interface{}) (int, apiResponse) {
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
	r.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func createMatch(t *testing.T, r http.Handler) createdMatch {
	t.Helper()
	status, resp := do(t, r, http.MethodPost, "/domino/v1/matches", "", gin.H{"mode": "teams", "targetPoints": 150})
	require.Equal(t, http.StatusOK, status, resp.Msg)
	var created createdMatch
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	require.NotEmpty(t, created.Token)
	return created
}

func TestPing(t *testing.T) {
	r := setupRouter(t)
	status, resp := do(t, r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"pong"}`, string(resp.Data))
}

func TestMatchEndpoints(t *testing.T) {
	r := setupRouter(t)
	created := createMatch(t, r)
	assert.Equal(t, "in_hand", created.State.Phase)
	assert.Equal(t, 0, created.State.CurrentPlayer)

	path := "/domino/v1/matches/" + created.MatchID

	status, _ := do(t, r, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	other := createMatch(t, r)
	status, _ = do(t, r, http.MethodGet, path, other.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, resp := do(t, r, http.MethodGet, path, created.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), created.MatchID)

	status, _ = do(t, r, http.MethodPost, path+"/play", created.Token, gin.H{"side": "left"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, r, http.MethodPost, path+"/play", created.Token, gin.H{"tileIndex": 42, "side": "left"})
	assert.Equal(t, http.StatusBadRequest, status)

	if len(created.State.LegalMoves) > 0 {
		status, _ = do(t, r, http.MethodPost, path+"/pass", created.Token, nil)
		assert.Equal(t, http.StatusBadRequest, status)

		mv := created.State.LegalMoves[0]
		status, resp = do(t, r, http.MethodPost, path+"/play", created.Token, gin.H{"tileIndex": mv.TileIndex, "side": mv.Side})
		require.Equal(t, http.StatusOK, status, resp.Msg)
	} else {
		status, resp = do(t, r, http.MethodPost, path+"/pass", created.Token, nil)
		require.Equal(t, http.StatusOK, status, resp.Msg)
	}

	status, resp = do(t, r, http.MethodGet, "/domino/v1/matches?page=1&size=5", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), `"total":2`)

	status, _ = do(t, r, http.MethodGet, "/domino/v1/matches?page=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, r, http.MethodDelete, path, created.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = do(t, r, http.MethodGet, path, created.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateMatchRejectsBadInput(t *testing.T) {
	r := setupRouter(t)

	status, _ := do(t, r, http.MethodPost, "/domino/v1/matches", "", gin.H{"mode": "solo"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, r, http.MethodPost, "/domino/v1/matches", "", gin.H{"opponent": "oracle"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestArenaEndpoints(t *testing.T) {
	r := setupRouter(t)

	status, resp := do(t, r, http.MethodGet, "/domino/v1/strategies", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"strategies":["greedy","random"]}`, string(resp.Data))

	status, resp = do(t, r, http.MethodPost, "/domino/v1/arena/runs", "", gin.H{
		"strategyA": "greedy", "strategyB": "random", "numMatches": 4, "targetPoints": 50, "seed": 3,
	})
	require.Equal(t, http.StatusOK, status, resp.Msg)

	var out struct {
		RunID  int64 `json:"runId"`
		Result struct {
			NumMatches int `json:"numMatches"`
			TeamAWins  int `json:"teamAWins"`
			TeamBWins  int `json:"teamBWins"`
			Matches    []struct {
				MatchIndex int `json:"matchIndex"`
			} `json:"matches"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.Equal(t, 4, out.Result.NumMatches)
	assert.Equal(t, 4, out.Result.TeamAWins+out.Result.TeamBWins)
	assert.Len(t, out.Result.Matches, 2)

	status, _ = do(t, r, http.MethodGet, fmt.Sprintf("/domino/v1/arena/runs/%d", out.RunID), "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = do(t, r, http.MethodGet, "/domino/v1/arena/runs/999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, r, http.MethodGet, "/domino/v1/arena/runs/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, r, http.MethodPost, "/domino/v1/arena/runs", "", gin.H{
		"strategyA": "greedy", "strategyB": "random", "numMatches": 21,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp = do(t, r, http.MethodGet, "/domino/v1/arena/runs", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), `"total":1`)
}

func TestMatchWebSocket(t *testing.T) {
	r := setupRouter(t)
	created := createMatch(t, r)

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/matches/" + created.MatchID + "?token=" + created.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() map[string]interface{} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg map[string]interface{}
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	assert.Equal(t, "state", read()["type"])

	require.NoError(t, conn.WriteJSON(gin.H{"type": "bogus"}))
	assert.Equal(t, "error", read()["type"])

	if len(created.State.LegalMoves) > 0 {
		mv := created.State.LegalMoves[0]
		require.NoError(t, conn.WriteJSON(gin.H{"type": "play", "data": gin.H{"tileIndex": mv.TileIndex, "side": mv.Side}}))
	} else {
		require.NoError(t, conn.WriteJSON(gin.H{"type": "pass"}))
	}
	assert.Equal(t, "state", read()["type"])

	_, _, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/matches/"+created.MatchID, nil)
	assert.Error(t, err)
}
