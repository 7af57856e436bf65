package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/adapter"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/autocomplete"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/cache"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/config"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/invalidation"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/repository"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/service"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/spell"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/synonym"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/ws"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/database"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/jwt"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/middleware"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/resilience"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/response"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/ttlcache"
)

const (
	adminToken  = "admin-token"
	viewerToken = "viewer-token"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*jwt.Claims, error) {
	switch token {
	case adminToken:
		return &jwt.Claims{UserID: "u-1", Username: "redaksi", Roles: []string{"admin"}}, nil
	case viewerToken:
		return &jwt.Claims{UserID: "u-2", Username: "warga"}, nil
	}
	return nil, jwt.ErrInvalidToken
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Meta    *response.Meta      `json:"meta"`
	Error   *response.ErrorInfo `json:"error"`
}

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	policy := resilience.Policy{Timeout: time.Second, MaxRetries: 1, Backoff: time.Millisecond}
	repo := repository.NewGormContentRepository(db)
	store := ttlcache.New()
	searchCache := cache.NewMemorySearchCache(store, "cms")
	inv := invalidation.New(store, searchCache, nil, "test")
	adapters := adapter.NewResilientSet(repo, policy)

	search := service.NewSearchService(adapters, searchCache, inv.Generation(), spell.NewDefault(), synonym.NewDefault(), service.SearchConfig{
		Autocorrect: true,
		SearchTTL:   time.Minute,
		SuggestTTL:  time.Minute,
	})
	contents := service.NewContentService(repo, adapters, inv, service.ContentConfig{
		ReadPolicy:  policy,
		WritePolicy: policy,
		ViewTimeout: time.Second,
	})
	pages := service.NewPageService(repository.NewGormPageRepository(db), store, inv, service.PageConfig{
		TTL:         time.Minute,
		ReadPolicy:  policy,
		WritePolicy: policy,
	})
	stats := service.NewStatsService(repo, store, time.Minute, time.Second)

	r := gin.New()
	NewHandler(search, contents, pages, stats, middleware.NewAuthMiddleware(stubValidator{}), "admin", func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}).RegisterRoutes(r)
	NewWSHandler(ws.NewHub(), search, config.WebSocketConfig{
		WriteWait:      time.Second,
		PongWait:       time.Minute,
		PingPeriod:     50 * time.Second,
		MaxMessageSize: 4096,
	}, autocomplete.Config{Debounce: 10 * time.Millisecond}).RegisterRoutes(r)

	return &testServer{router: r}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
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
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type itemJSON struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	ViewCount int    `json:"view_count"`
}

func (s *testServer) seed(t *testing.T) {
	t.Helper()
	for kind, title := range map[string]string{
		"berita":  "Pajak Daerah 2024",
		"artikel": "Tips Lapor Pajak",
		"layanan": "Bayar Pajak Online",
	} {
		code, env := s.do(t, http.MethodPost, "/api/v1/admin/contents/"+kind, adminToken, map[string]interface{}{
			"title":     title,
			"published": true,
		})
		require.Equal(t, http.StatusCreated, code, env.Error)
	}
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	s := newTestServer(t)
	body := map[string]interface{}{"title": "Pengumuman"}

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "nope", http.StatusUnauthorized},
		{"viewer", viewerToken, http.StatusForbidden},
		{"admin", adminToken, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := s.do(t, http.MethodPost, "/api/v1/admin/contents/berita", tt.token, body)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestSearchRoutes(t *testing.T) {
	s := newTestServer(t)
	s.seed(t)

	t.Run("search groups by kind", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/api/v1/search?q=PAJAK&limit=6", "", nil)
		require.Equal(t, http.StatusOK, code)

		resp := decode[struct {
			Query  string `json:"query"`
			Result struct {
				Items   map[string][]itemJSON `json:"items"`
				Total   int                   `json:"total"`
				HasMore bool                  `json:"has_more"`
			} `json:"result"`
		}](t, env.Data)
		assert.Equal(t, "pajak", resp.Query)
		assert.Equal(t, 3, resp.Result.Total)
		assert.False(t, resp.Result.HasMore)
		assert.Len(t, resp.Result.Items["layanan"], 1)
	})

	t.Run("search autocorrects", func(t *testing.T) {
		_, env := s.do(t, http.MethodGet, "/api/v1/search?q=pajek", "", nil)
		resp := decode[struct {
			Query      string `json:"query"`
			Correction *struct {
				HasCorrection bool `json:"has_correction"`
			} `json:"correction"`
		}](t, env.Data)
		assert.Equal(t, "pajak", resp.Query)
		require.NotNil(t, resp.Correction)
		assert.True(t, resp.Correction.HasCorrection)
	})

	t.Run("empty search", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/api/v1/search?q=+", "", nil)
		require.Equal(t, http.StatusOK, code)
		resp := decode[struct {
			Result struct {
				Total int `json:"total"`
			} `json:"result"`
		}](t, env.Data)
		assert.Zero(t, resp.Result.Total)
	})

	t.Run("suggest", func(t *testing.T) {
		_, env := s.do(t, http.MethodGet, "/api/v1/search/suggest?q=pa", "", nil)
		suggestions := decode[[]struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		}](t, env.Data)
		require.Len(t, suggestions, 3)
		assert.Equal(t, "berita", suggestions[0].Type)
		assert.Equal(t, "/berita/pajak-daerah-2024", suggestions[0].URL)
	})

	t.Run("correct and expand", func(t *testing.T) {
		_, env := s.do(t, http.MethodGet, "/api/v1/search/correct?q=berta", "", nil)
		corr := decode[struct {
			Corrected string `json:"corrected"`
		}](t, env.Data)
		assert.Equal(t, "berita", corr.Corrected)

		_, env = s.do(t, http.MethodGet, "/api/v1/search/expand?q=pajak", "", nil)
		exp := decode[struct {
			Terms []string `json:"terms"`
		}](t, env.Data)
		assert.Contains(t, exp.Terms, "retribusi")
	})
}

func TestContentRoutes(t *testing.T) {
	s := newTestServer(t)
	s.seed(t)

	t.Run("list", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/api/v1/contents/berita?limit=5", "", nil)
		require.Equal(t, http.StatusOK, code)
		require.NotNil(t, env.Meta)
		assert.Equal(t, response.Meta{Page: 1, Limit: 5, Total: 1, TotalPages: 1}, *env.Meta)
	})

	t.Run("get counts a view", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/api/v1/contents/berita/pajak-daerah-2024", "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 1, decode[itemJSON](t, env.Data).ViewCount)
	})

	t.Run("not found", func(t *testing.T) {
		code, _ := s.do(t, http.MethodGet, "/api/v1/contents/berita/tidak-ada", "", nil)
		assert.Equal(t, http.StatusNotFound, code)

		code, _ = s.do(t, http.MethodGet, "/api/v1/contents/video", "", nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/api/v1/admin/contents/berita", adminToken, map[string]interface{}{
			"title": "Pajak Daerah 2024",
		})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, "/api/v1/admin/contents/berita", adminToken, map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("update and delete", func(t *testing.T) {
		_, env := s.do(t, http.MethodGet, "/api/v1/contents/layanan/bayar-pajak-online", "", nil)
		id := decode[itemJSON](t, env.Data).ID

		code, env := s.do(t, http.MethodPut, "/api/v1/admin/contents/layanan/"+id, adminToken, map[string]interface{}{
			"title": "Bayar Pajak Daring",
		})
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Bayar Pajak Daring", decode[itemJSON](t, env.Data).Title)

		code, _ = s.do(t, http.MethodDelete, "/api/v1/admin/contents/layanan/"+id, adminToken, nil)
		assert.Equal(t, http.StatusNoContent, code)

		code, _ = s.do(t, http.MethodDelete, "/api/v1/admin/contents/layanan/"+id, adminToken, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("stats", func(t *testing.T) {
		_, env := s.do(t, http.MethodGet, "/api/v1/stats", "", nil)
		stats := decode[struct {
			Total     int  `json:"total"`
			Available bool `json:"available"`
		}](t, env.Data)
		assert.True(t, stats.Available)
		assert.GreaterOrEqual(t, stats.Total, 2)
	})
}

func TestPageRoutes(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/api/v1/pages/profil", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPut, "/api/v1/admin/pages/profil", adminToken, map[string]interface{}{
		"title": "Profil Kota",
		"body":  "Sejarah singkat",
	})
	require.Equal(t, http.StatusOK, code)

	code, env := s.do(t, http.MethodGet, "/api/v1/pages/profil", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Sejarah singkat")

	_, env = s.do(t, http.MethodGet, "/api/v1/admin/pages", adminToken, nil)
	assert.Len(t, decode[[]json.RawMessage](t, env.Data), 1)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/admin/pages/profil", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/admin/cache", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(nil, nil, nil, nil, middleware.NewAuthMiddleware(stubValidator{}), "admin", func(ctx context.Context) error {
		return errors.New("down")
	}).RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLiveSearch(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/search/live", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ws.InboundMessage{Type: ws.MsgTypePing}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.PongMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.MsgTypePong, msg.Type)
}
