package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/nineball/internal/auth"
	"github.com/playmatatu/nineball/internal/config"
	"github.com/playmatatu/nineball/internal/game"
	"github.com/playmatatu/nineball/internal/models"
	"github.com/playmatatu/nineball/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testValidator(ctx context.Context, phone, token string) (*models.AdminAccount, error) {
	if phone == "256700000001" && token == "letmein" {
		return &models.AdminAccount{Phone: phone}, nil
	}
	return nil, errors.New("invalid")
}

func newTestServer(t *testing.T) (*gin.Engine, *game.MatchManager, *config.Config) {
	t.Helper()
	cfg := &config.Config{Environment: "test", JWTSecret: "secret", TickRate: 120, FrameRate: 60, SeatTokenTTLMinutes: 5}
	mm := game.NewMatchManager(nil, nil, cfg, game.DefaultProfile())
	router := gin.New()
	SetupRoutes(router, mm, ws.NewHub(), cfg, testValidator)
	return router, mm, cfg
}

func do(t *testing.T, r http.Handler, method, path string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if admin {
		req.Header.Set("X-Admin-Phone", "256700000001")
		req.Header.Set("X-Admin-Token", "letmein")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	r, _, _ := newTestServer(t)
	w := do(t, r, http.MethodGet, "/api/v1/health", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestConfigExposesTable(t *testing.T) {
	r, _, _ := newTestServer(t)
	w := do(t, r, http.MethodGet, "/api/v1/config", false)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 120, body["tick_rate"])
	table := body["table"].(map[string]any)
	assert.Len(t, table["pockets"], 6)
}

func TestCreateMatchIssuesSeatTokens(t *testing.T) {
	r, mm, cfg := newTestServer(t)
	w := do(t, r, http.MethodPost, "/api/v1/matches", false)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	id := body["match_id"].(string)
	assert.Equal(t, id, w.Header().Get("X-Match-ID"))
	_, err := mm.Get(id)
	require.NoError(t, err)

	tokens := body["seat_tokens"].(map[string]any)
	for key, seat := range map[string]int{"player1": 1, "player2": 2} {
		claims, err := auth.ParseSeatToken(cfg.JWTSecret, tokens[key].(string))
		require.NoError(t, err)
		assert.Equal(t, id, claims.MatchID)
		assert.Equal(t, seat, claims.Seat)
	}
}

func TestGetMatch(t *testing.T) {
	r, mm, _ := newTestServer(t)
	m := mm.Create()

	w := do(t, r, http.MethodGet, "/api/v1/matches/"+m.ID, false)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, m.ID, body["match_id"])
	assert.Equal(t, string(game.StatusNotStarted), body["status"])

	w = do(t, r, http.MethodGet, "/api/v1/matches/match_missing", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebSocketRequiresKnownMatchAndValidSeat(t *testing.T) {
	r, mm, cfg := newTestServer(t)
	m := mm.Create()
	other := mm.Create()

	w := do(t, r, http.MethodGet, "/api/v1/matches/match_missing/ws", false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	wrong, err := auth.IssueSeatToken(cfg.JWTSecret, other.ID, 1, time.Minute)
	require.NoError(t, err)
	w = do(t, r, http.MethodGet, "/api/v1/matches/"+m.ID+"/ws?token="+wrong, false)
	assert.Equal(t, http.StatusForbidden, w.Code, "token for another match")

	w = do(t, r, http.MethodGet, "/api/v1/matches/"+m.ID+"/ws?token=garbage", false)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRoutesRequireCredentials(t *testing.T) {
	r, mm, _ := newTestServer(t)
	mm.Create()

	w := do(t, r, http.MethodGet, "/api/v1/admin/matches", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/admin/matches", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["total"])
}

func TestAdminMatchActions(t *testing.T) {
	r, mm, _ := newTestServer(t)
	m := mm.Create()
	base := "/api/v1/admin/matches/" + m.ID

	w := do(t, r, http.MethodPost, base+"/start", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, game.StatusInProgress, m.Status())

	w = do(t, r, http.MethodPost, base+"/start", true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, base+"/pause", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, game.StatusPaused, m.Status())

	w = do(t, r, http.MethodPost, base+"/restart", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, game.StatusNotStarted, m.Status())

	w = do(t, r, http.MethodPost, base+"/explode", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/admin/matches/match_missing/pause", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDeleteMatch(t *testing.T) {
	r, mm, _ := newTestServer(t)
	m := mm.Create()

	w := do(t, r, http.MethodDelete, "/api/v1/admin/matches/"+m.ID, true)
	require.Equal(t, http.StatusOK, w.Code)
	_, err := mm.Get(m.ID)
	assert.ErrorIs(t, err, game.ErrMatchNotFound)

	w = do(t, r, http.MethodDelete, "/api/v1/admin/matches/"+m.ID, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHistoryWithoutDatabase(t *testing.T) {
	r, _, _ := newTestServer(t)
	w := do(t, r, http.MethodGet, "/api/v1/admin/history", true)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
