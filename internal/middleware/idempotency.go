package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/pkg/cache"
)

// IdempotencyHeader carries the client-chosen key that makes a posting safe to retry.
const IdempotencyHeader = "Idempotency-Key"

type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the stored response when a request is retried with the same
// Idempotency-Key, so that a retried posting does not create a second transaction.
// Requests without the header pass through. A nil store disables the middleware.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if store == nil || key == "" {
			c.Next()
			return
		}
		logger := GetLoggerFromCtx(c.Request.Context())

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		requestHash := hashBody(body)
		storeKey := store.IdempotencyKey(idempotencyScope(c), key)

		stored, err := store.Get(c.Request.Context(), storeKey)
		if err != nil && !errors.Is(err, cache.ErrMiss) {
			logger.Error("Failed to check idempotency key", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Idempotency store unavailable"})
			return
		}
		if stored != "" {
			var record idempotencyRecord
			if err := json.Unmarshal([]byte(stored), &record); err != nil {
				logger.Error("Failed to decode idempotency record", slog.String("error", err.Error()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Corrupt idempotency record"})
				return
			}
			if record.RequestHash != requestHash {
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Idempotency key reused with a different request body"})
				return
			}
			logger.Info("Replaying stored response", slog.String("idempotency_key", key))
			writeStoredResponse(c, record)
			return
		}

		capture := &responseCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Next()

		// Server errors are not stored so the client can retry them.
		status := capture.Status()
		if status >= http.StatusInternalServerError {
			return
		}

		record := idempotencyRecord{
			Status:      status,
			Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
			RequestHash: requestHash,
		}
		if ct := capture.Header().Get("Content-Type"); ct != "" {
			record.Headers = map[string]string{"Content-Type": ct}
		}
		payload, err := json.Marshal(record)
		if err != nil {
			logger.Error("Failed to marshal idempotency record", slog.String("error", err.Error()))
			return
		}
		if _, err := store.SetNX(c.Request.Context(), storeKey, string(payload), ttl); err != nil {
			logger.Error("Failed to persist idempotency record", slog.String("error", err.Error()))
		}
	}
}

func idempotencyScope(c *gin.Context) string {
	tenantID, _ := GetTenantIDFromContext(c)
	userID, _ := GetUserIDFromContext(c)
	return strings.Join([]string{tenantID, userID, c.Request.Method, c.Request.URL.Path}, "|")
}

func writeStoredResponse(c *gin.Context, record idempotencyRecord) {
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		c.Header("Content-Type", ct)
	}
	c.Header("Idempotent-Replayed", "true")
	c.Status(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = c.Writer.Write(decoded)
	}
	c.Abort()
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

type responseCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *responseCapture) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}
