package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkEndpoint stands in for the payment-check handler: the limiter must
// decide before any policy evaluation runs.
func checkEndpoint(t *testing.T) (http.Handler, *int, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	evaluated := 0
	rl := NewRateLimiter(client, 3, 60)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		evaluated++
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &evaluated, mr
}

func sendCheck(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/check", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_ChecksWithinBudgetReachTheEngine(t *testing.T) {
	handler, evaluated, _ := checkEndpoint(t)

	// A wallet confirming a payment retries a couple of times; all of it
	// fits in the per-minute budget.
	for i := 0; i < 3; i++ {
		rec := sendCheck(handler, "192.0.2.10:40001")
		require.Equal(t, http.StatusOK, rec.Code, "check %d", i+1)
	}
	assert.Equal(t, 3, *evaluated)
}

func TestRateLimiter_HammeringIsThrottledBeforeEvaluation(t *testing.T) {
	handler, evaluated, _ := checkEndpoint(t)

	for i := 0; i < 3; i++ {
		sendCheck(handler, "192.0.2.10:40001")
	}

	rec := sendCheck(handler, "192.0.2.10:40001")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, 3, *evaluated, "throttled check must not reach the engine")
}

func TestRateLimiter_OneNoisyClientDoesNotStarveOthers(t *testing.T) {
	handler, _, _ := checkEndpoint(t)

	for i := 0; i < 5; i++ {
		sendCheck(handler, "192.0.2.10:40001")
	}

	rec := sendCheck(handler, "198.51.100.7:40002")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_ForwardedClientAddressIsTheKey(t *testing.T) {
	handler, _, _ := checkEndpoint(t)

	// Behind the reverse proxy every request shares RemoteAddr; the first
	// X-Forwarded-For hop identifies the client.
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/check", nil)
		req.RemoteAddr = "10.0.0.1:" + strconv.Itoa(30000+i)
		req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if i < 3 {
			require.Equal(t, http.StatusOK, rec.Code, "check %d", i+1)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}
}

func TestRateLimiter_RedisOutageDoesNotBlockPayments(t *testing.T) {
	handler, evaluated, mr := checkEndpoint(t)
	mr.Close()

	// The limiter is protection against hammering, not a safety control;
	// the spend limits themselves fail closed elsewhere.
	rec := sendCheck(handler, "192.0.2.10:40001")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *evaluated)
}
