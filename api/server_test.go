package api

import (
	"bufio"
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"zenthra/adapters/sse"
	"zenthra/api/openapi"
	"zenthra/ledger"
	"zenthra/models"
	"zenthra/projector"
	"zenthra/query"
)

const testIssuer = "zenthra-test"

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	gin.SetMode(gin.TestMode)
	m.Run()
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	impl       *ServerImpl
	router     *gin.Engine
	store      *ledger.MemoryStore
	projector  *projector.Projector
	clock      *testClock
	privateKey ed25519.PrivateKey
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	publicKey, privateKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	clock := &testClock{now: time.Now().UTC()}
	store := ledger.NewMemoryStore()
	l, err := ledger.New(store, ledger.WithClock(clock.Now))
	require.NoError(t, err)
	q, err := query.New(db)
	require.NoError(t, err)
	manager, err := sse.NewConnectionManager[openapi.AuctionEvent]()
	require.NoError(t, err)
	p, err := projector.New(db, projector.WithNotifiers(SSENotifier(manager)))
	require.NoError(t, err)
	verifier, err := NewTokenVerifier(AuthConfig{PublicKey: publicKey, Issuer: testIssuer})
	require.NoError(t, err)

	impl := newServerImpl(l, q, p, verifier, manager, slog.Default())
	require.NoError(t, impl.Start())
	t.Cleanup(impl.Close)

	router := gin.New()
	router.ContextWithFallback = true
	router.Use(impl.ErrorMiddleware())
	openapi.RegisterHandlersWithOptions(router, openapi.NewStrictHandler(impl, nil), impl.GinServerOptions())
	return &testServer{
		impl:       impl,
		router:     router,
		store:      store,
		projector:  p,
		clock:      clock,
		privateKey: privateKey,
	}
}

func (s *testServer) token(t *testing.T, subject string) string {
	t.Helper()
	return signToken(t, s.privateKey, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
}

func signToken(t *testing.T, key ed25519.PrivateKey, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// project 把 ledger 目前的事件投影到資料庫
func (s *testServer) project(t *testing.T) {
	t.Helper()
	_, err := s.projector.Replay(context.Background(), s.store)
	require.NoError(t, err)
}

func (s *testServer) createAuction(t *testing.T, creator string, startingBid uint64) uint64 {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auctions", s.token(t, creator), map[string]any{
		"itemName":        "Vintage Lamp",
		"itemImageUrl":    "https://example.com/lamp.png",
		"startingBid":     startingBid,
		"durationSeconds": 3600,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp openapi.CreateAuctionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, fmt.Sprintf("/auctions/%d", resp.AuctionId), w.Header().Get("Location"))
	return resp.AuctionId
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestServer_AuctionFlow(t *testing.T) {
	s := setupServer(t)
	alice, bob, carol := s.token(t, "alice"), s.token(t, "bob"), s.token(t, "carol")
	id := s.createAuction(t, "alice", 100)
	bidPath := fmt.Sprintf("/auctions/%d/bids", id)
	finalizePath := fmt.Sprintf("/auctions/%d/finalize", id)

	w := s.do(t, http.MethodPost, bidPath, bob, openapi.PlaceBidRequest{Amount: 150})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	auction := decode[openapi.Auction](t, w)
	assert.Equal(t, uint64(150), auction.CurrentHighestBid)
	assert.Equal(t, "bob", auction.HighestBidder)

	testCases := []struct {
		name   string
		path   string
		token  string
		body   any
		status int
	}{
		{"bid too low", bidPath, carol, openapi.PlaceBidRequest{Amount: 120}, http.StatusConflict},
		{"equal bid", bidPath, carol, openapi.PlaceBidRequest{Amount: 150}, http.StatusConflict},
		{"self bid", bidPath, alice, openapi.PlaceBidRequest{Amount: 500}, http.StatusForbidden},
		{"zero amount", bidPath, carol, openapi.PlaceBidRequest{Amount: 0}, http.StatusBadRequest},
		{"missing token", bidPath, "", openapi.PlaceBidRequest{Amount: 500}, http.StatusUnauthorized},
		{"unknown auction", "/auctions/999/bids", carol, openapi.PlaceBidRequest{Amount: 500}, http.StatusNotFound},
		{"bad id", "/auctions/abc/bids", carol, openapi.PlaceBidRequest{Amount: 500}, http.StatusBadRequest},
		{"bad body", bidPath, carol, "not an object", http.StatusBadRequest},
		{"finalize by bidder before end", finalizePath, bob, nil, http.StatusForbidden},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[openapi.Error](t, w).Message)
		})
	}

	w = s.do(t, http.MethodPost, finalizePath, alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	auction = decode[openapi.Auction](t, w)
	assert.True(t, auction.IsCompleted)
	assert.False(t, auction.IsActive)
	assert.Equal(t, "bob", auction.Winner)
	assert.Equal(t, uint64(150), auction.FinalPrice)
	require.NotNil(t, auction.CompletedTime)

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, finalizePath, alice, nil).Code)
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, bidPath, carol, openapi.PlaceBidRequest{Amount: 900}).Code)

	// ledger 讀取
	w = s.do(t, http.MethodGet, fmt.Sprintf("/ledger/auctions/%d/bids", id), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	bids := decode[[]openapi.Bid](t, w)
	require.Len(t, bids, 1)
	assert.Equal(t, "bob", bids[0].Bidder)

	w = s.do(t, http.MethodGet, "/ledger/users/bob/auctions?role=bidder", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uint64{id}, decode[openapi.AuctionIds](t, w).AuctionIds)
	w = s.do(t, http.MethodGet, "/ledger/users/bob/auctions?role=winner", "", nil)
	assert.Equal(t, []uint64{id}, decode[openapi.AuctionIds](t, w).AuctionIds)
	w = s.do(t, http.MethodGet, "/ledger/users/carol/auctions", "", nil)
	assert.Equal(t, []uint64{}, decode[openapi.AuctionIds](t, w).AuctionIds)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/ledger/users/bob/auctions?role=owner", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/ledger/auctions/999", "", nil).Code)

	// 投影查詢
	s.project(t)
	w = s.do(t, http.MethodGet, fmt.Sprintf("/auctions/%d", id), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	projected := decode[openapi.Auction](t, w)
	assert.Equal(t, "bob", projected.Winner)
	assert.Equal(t, uint64(1), projected.BidCount)

	w = s.do(t, http.MethodGet, "/auctions?status=completed", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[openapi.AuctionPage](t, w)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, query.DefaultLimit, page.Limit)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/auctions/%d/bids?sort=amount", id), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]openapi.Bid](t, w), 1)

	w = s.do(t, http.MethodGet, "/users/bob/dashboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dashboard := decode[openapi.Dashboard](t, w)
	assert.Empty(t, dashboard.Created)
	assert.Len(t, dashboard.Bidding, 1)
	assert.Len(t, dashboard.Won, 1)

	w = s.do(t, http.MethodGet, "/users/alice/auctions?role=creator", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]openapi.Auction](t, w), 1)
}

func TestServer_CreateAuction(t *testing.T) {
	s := setupServer(t)
	token := s.token(t, "alice")

	testCases := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"markup only name", map[string]any{"itemName": "<b></b>", "startingBid": 1, "durationSeconds": 60}, http.StatusBadRequest},
		{"zero duration", map[string]any{"itemName": "Lamp", "startingBid": 1, "durationSeconds": 0}, http.StatusBadRequest},
		{"duration overflow", map[string]any{"itemName": "Lamp", "startingBid": 1, "durationSeconds": uint64(1) << 62}, http.StatusBadRequest},
		{"negative bid", map[string]any{"itemName": "Lamp", "startingBid": -1, "durationSeconds": 60}, http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, s.do(t, http.MethodPost, "/auctions", token, tc.body).Code)
		})
	}

	w := s.do(t, http.MethodPost, "/auctions", token, map[string]any{
		"itemName":        "<i>Lamp</i>",
		"startingBid":     10,
		"durationSeconds": 60,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[openapi.CreateAuctionResponse](t, w).AuctionId

	w = s.do(t, http.MethodGet, fmt.Sprintf("/ledger/auctions/%d", id), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	auction := decode[openapi.Auction](t, w)
	assert.Equal(t, "Lamp", auction.ItemName)
	assert.Equal(t, "alice", auction.Creator)
	assert.Equal(t, auction.CreatedTime.Add(time.Minute), auction.EndTime)
	assert.True(t, auction.IsActive)
	assert.Nil(t, auction.CompletedTime)
}

func TestServer_AuctionExpired(t *testing.T) {
	s := setupServer(t)
	id := s.createAuction(t, "alice", 100)
	s.clock.Advance(time.Hour + time.Second)

	w := s.do(t, http.MethodPost, fmt.Sprintf("/auctions/%d/bids", id), s.token(t, "bob"), openapi.PlaceBidRequest{Amount: 200})
	assert.Equal(t, http.StatusGone, w.Code, w.Body.String())

	// 過期後任何人都可以結標，沒有出價時沒有得標者
	w = s.do(t, http.MethodPost, fmt.Sprintf("/auctions/%d/finalize", id), s.token(t, "carol"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	auction := decode[openapi.Auction](t, w)
	assert.Equal(t, "", auction.Winner)
	assert.Equal(t, uint64(0), auction.FinalPrice)
}

func TestServer_Unauthenticated(t *testing.T) {
	s := setupServer(t)
	_, otherKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"empty bearer", "Bearer "},
		{"garbage", "Bearer abc.def.ghi"},
		{"wrong key", "Bearer " + signToken(t, otherKey, jwt.RegisteredClaims{Subject: "alice", Issuer: testIssuer})},
		{"wrong issuer", "Bearer " + signToken(t, s.privateKey, jwt.RegisteredClaims{Subject: "alice", Issuer: "other"})},
		{"expired", "Bearer " + signToken(t, s.privateKey, jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		})},
		{"no subject", "Bearer " + signToken(t, s.privateKey, jwt.RegisteredClaims{Issuer: testIssuer})},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auctions", strings.NewReader(`{"itemName":"Lamp","startingBid":1,"durationSeconds":60}`))
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestServer_QueryValidation(t *testing.T) {
	s := setupServer(t)
	s.createAuction(t, "alice", 100)
	s.project(t)

	testCases := []struct {
		path   string
		status int
	}{
		{"/auctions?status=pending", http.StatusBadRequest},
		{"/auctions?sort=price", http.StatusBadRequest},
		{"/auctions?order=up", http.StatusBadRequest},
		{"/auctions?endsAfter=yesterday", http.StatusBadRequest},
		{"/auctions?minCurrentBid=-1", http.StatusBadRequest},
		{"/auctions?limit=-1", http.StatusBadRequest},
		{"/auctions/abc", http.StatusBadRequest},
		{"/auctions/0", http.StatusBadRequest},
		{"/auctions/99", http.StatusNotFound},
		{"/auctions/99/bids", http.StatusNotFound},
		{"/auctions/1/bids?sort=bidder", http.StatusBadRequest},
		{"/users/alice/auctions?role=owner", http.StatusBadRequest},
		{"/auctions?status=active&sort=currentBid&order=desc&limit=500", http.StatusOK},
		{"/auctions?endsAfter=2000-01-01T00:00:00Z&q=lamp", http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tc.path, "", nil)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}

	w := s.do(t, http.MethodGet, "/auctions?endsAfter=2000-01-01T00:00:00Z&q=lamp&limit=500", "", nil)
	page := decode[openapi.AuctionPage](t, w)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, query.MaxLimit, page.Limit)
}

func TestServer_Events(t *testing.T) {
	s := setupServer(t)
	id := s.createAuction(t, "alice", 100)
	s.project(t)

	httpServer := httptest.NewServer(s.router)
	defer httpServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/auctions/%d/events", httpServer.URL, id), nil)
	require.NoError(t, err)
	resp, err := httpServer.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// 回應標頭送出時已經完成訂閱
	require.NoError(t, s.impl.ledger.PlaceBid(ctx, id, 150, "bob"))
	require.NoError(t, s.impl.ledger.FinalizeAuction(ctx, id, "alice"))
	s.project(t)

	var received []openapi.AuctionEvent
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data:")
		if !ok {
			continue
		}
		var event openapi.AuctionEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(data)), &event))
		received = append(received, event)
	}
	// 結標事件後伺服器會結束串流
	require.Len(t, received, 2)
	assert.Equal(t, "BidPlaced", received[0].Kind)
	require.NotNil(t, received[0].Bid)
	assert.Equal(t, uint64(150), received[0].Bid.Amount)
	assert.Equal(t, "bob", received[0].Auction.HighestBidder)
	assert.Equal(t, "AuctionCompleted", received[1].Kind)
	assert.Equal(t, "bob", received[1].Auction.Winner)

	// 已結標的拍賣不再開放訂閱
	w := s.do(t, http.MethodGet, fmt.Sprintf("/auctions/%d/events", id), "", nil)
	assert.Equal(t, http.StatusGone, w.Code)
	w = s.do(t, http.MethodGet, "/auctions/99/events", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_EventsKeepAlive(t *testing.T) {
	s := setupServer(t)
	s.impl.keepAlive = 10 * time.Millisecond
	id := s.createAuction(t, "alice", 100)
	s.project(t)

	httpServer := httptest.NewServer(s.router)
	defer httpServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/auctions/%d/events", httpServer.URL, id), nil)
	require.NoError(t, err)
	resp, err := httpServer.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	require.True(t, scanner.Scan())
	assert.Equal(t, ": keep-alive", scanner.Text())
}

func TestServer_Rebuild(t *testing.T) {
	s := setupServer(t)
	s.impl.eventLog = s.store
	ctx := context.Background()
	id := s.createAuction(t, "alice", 100)
	require.NoError(t, s.impl.ledger.PlaceBid(ctx, id, 130, "bob"))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, fmt.Sprintf("/auctions/%d", id), "", nil).Code)

	for range 2 {
		require.NoError(t, s.impl.Rebuild(ctx))
		w := s.do(t, http.MethodGet, fmt.Sprintf("/auctions/%d", id), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		auction := decode[openapi.Auction](t, w)
		assert.Equal(t, uint64(130), auction.CurrentHighestBid)
		assert.Equal(t, uint64(1), auction.BidCount)
	}
}
