package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", cache.ErrMiss
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func idempotentRouter(store cache.IdempotencyStore, calls *int, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/ledger/transactions", Idempotency(store, time.Hour), func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"call": *calls})
	})
	return r
}

func doPost(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ledger/transactions", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	r := idempotentRouter(store, &calls, http.StatusCreated)

	first := doPost(r, "key-1", `{"amount":"10"}`)
	second := doPost(r, "key-1", `{"amount":"10"}`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
}

func TestIdempotency_RejectsDifferentBody(t *testing.T) {
	store := newFakeStore()
	calls := 0
	r := idempotentRouter(store, &calls, http.StatusCreated)

	doPost(r, "key-1", `{"amount":"10"}`)
	w := doPost(r, "key-1", `{"amount":"20"}`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestIdempotency_PassesThroughWithoutKey(t *testing.T) {
	store := newFakeStore()
	calls := 0
	r := idempotentRouter(store, &calls, http.StatusCreated)

	doPost(r, "", `{}`)
	doPost(r, "", `{}`)

	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotency_DoesNotStoreServerErrors(t *testing.T) {
	store := newFakeStore()
	calls := 0
	r := idempotentRouter(store, &calls, http.StatusInternalServerError)

	doPost(r, "key-1", `{}`)
	doPost(r, "key-1", `{}`)

	assert.Equal(t, 2, calls)
	require.Empty(t, store.data)
}

func TestIdempotency_NilStore(t *testing.T) {
	calls := 0
	r := idempotentRouter(nil, &calls, http.StatusOK)

	doPost(r, "key-1", `{}`)
	doPost(r, "key-1", `{}`)

	assert.Equal(t, 2, calls)
}
