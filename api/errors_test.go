package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenthra/api/openapi"
	"zenthra/ledger"
)

func TestErrorMiddleware(t *testing.T) {
	impl := newServerImpl(nil, nil, nil, nil, nil, slog.Default())
	router := gin.New()
	router.Use(impl.ErrorMiddleware())
	router.GET("/internal", func(c *gin.Context) {
		c.Error(errors.New("dial tcp 10.0.0.1:5432: connection refused"))
		c.Status(http.StatusInternalServerError)
	})
	router.GET("/bad-body", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
		c.Error(errors.New("unexpected EOF"))
	})
	router.GET("/no-status", func(c *gin.Context) {
		c.Error(errors.New("unexpected response type"))
	})
	router.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusOK, openapi.Error{Message: "ok"})
		c.Error(errors.New("late failure"))
	})

	testCases := []struct {
		path    string
		status  int
		message string
	}{
		{"/internal", http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)},
		{"/bad-body", http.StatusBadRequest, "unexpected EOF"},
		{"/no-status", http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)},
		{"/written", http.StatusOK, "ok"},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.message, decode[openapi.Error](t, w).Message)
		})
	}
}

func TestParamErrorHandler(t *testing.T) {
	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		ParamErrorHandler(c, errors.New("Invalid format for parameter id"), http.StatusBadRequest)
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid format for parameter id", decode[openapi.Error](t, w).Message)
}

// faultyStore 讓讀取回傳指定錯誤，模擬 ledger 後端無法使用
type faultyStore struct {
	*ledger.MemoryStore
	err error
}

func (s *faultyStore) Load(context.Context, uint64) (ledger.Record, error) {
	return ledger.Record{}, s.err
}

func (s *faultyStore) Index(context.Context, ledger.IndexKind, string) ([]uint64, error) {
	return nil, s.err
}

func TestServer_LedgerFailures(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"transient store", fmt.Errorf("%w: connection reset", ledger.ErrTransientStore), http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable)},
		{"lock timeout", ledger.ErrLockTimeout, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable)},
		{"unexpected", errors.New("secret internal detail"), http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := ledger.New(&faultyStore{MemoryStore: ledger.NewMemoryStore(), err: tc.err})
			require.NoError(t, err)
			impl := newServerImpl(l, nil, nil, nil, nil, slog.Default())
			router := gin.New()
			router.Use(impl.ErrorMiddleware())
			openapi.RegisterHandlersWithOptions(router, openapi.NewStrictHandler(impl, nil), impl.GinServerOptions())

			for _, path := range []string{"/ledger/auctions/1", "/ledger/auctions/1/bids", "/ledger/users/alice/auctions"} {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				assert.Equal(t, tc.status, w.Code, path)
				assert.Equal(t, tc.message, decode[openapi.Error](t, w).Message, path)
			}
		})
	}
}

func TestSwagger(t *testing.T) {
	swagger, err := openapi.GetSwagger()
	require.NoError(t, err)
	require.NoError(t, swagger.Validate(context.Background()))

	operations := 0
	for _, item := range swagger.Paths.Map() {
		operations += len(item.Operations())
	}
	assert.Equal(t, 12, operations)

	// 只有 ledger 指令需要 bearer token
	post := swagger.Paths.Find("/auctions/{id}/bids").Post
	require.NotNil(t, post.Security)
	assert.Contains(t, (*post.Security)[0], "bearerAuth")
	get := swagger.Paths.Find("/auctions/{id}/bids").Get
	assert.True(t, get.Security == nil || len(*get.Security) == 0)
}
