package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/AvallenSolutions/kindredcollective/pkg/httpx"
	"github.com/stretchr/testify/require"
)

// okHandler is the terminal handler behind every limited chain in this file.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// hit sends one GET through the handler from the given address and returns
// the recorder.
func hit(h http.Handler, target, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"falls back to RemoteAddr", nil, "192.168.1.1"},
		{"first hop of X-Forwarded-For wins", map[string]string{
			"X-Forwarded-For": "203.0.113.1, 192.168.1.1",
		}, "203.0.113.1"},
		{"X-Real-IP when no X-Forwarded-For", map[string]string{
			"X-Real-IP": "203.0.113.2",
		}, "203.0.113.2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tc.want, httpx.IPKeyExtractor(req))
		})
	}
}

func TestUserIDKeyExtractor(t *testing.T) {
	t.Run("reads the authenticated user id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), httpx.CtxKeyUserID, "user-123")
		require.Equal(t, "user-123", httpx.UserIDKeyExtractor(req.WithContext(ctx)))
	})

	t.Run("anonymous request yields no key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.Empty(t, httpx.UserIDKeyExtractor(req))
	})
}

func TestFormFieldKeyExtractor(t *testing.T) {
	extractor := httpx.FormFieldKeyExtractor("email")

	t.Run("query parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?email=alice@example.com", nil)
		require.Equal(t, "alice@example.com", extractor(req))
	})

	t.Run("urlencoded body", func(t *testing.T) {
		form := url.Values{"email": {"bob@example.com"}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		require.Equal(t, "bob@example.com", extractor(req))
	})

	t.Run("absent field yields no key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.Empty(t, extractor(req))
	})
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	extractor := httpx.JSONFieldKeyExtractor("email")

	jsonReq := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	t.Run("reads the field and normalises it", func(t *testing.T) {
		req := jsonReq(`{"email":" Alice@Example.com ","password":"secret"}`)
		require.Equal(t, "alice@example.com", extractor(req))
	})

	t.Run("body stays decodable for the handler", func(t *testing.T) {
		req := jsonReq(`{"email":"alice@example.com","password":"secret"}`)
		_ = extractor(req)

		var decoded struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&decoded))
		require.Equal(t, "alice@example.com", decoded.Email)
		require.Equal(t, "secret", decoded.Password)
	})

	t.Run("no key for non-JSON, missing or non-string fields", func(t *testing.T) {
		require.Empty(t, extractor(jsonReq(`not json at all`)))
		require.Empty(t, extractor(jsonReq(`{"password":"secret"}`)))
		require.Empty(t, extractor(jsonReq(`{"email":42}`)))
	})

	t.Run("nil body yields no key", func(t *testing.T) {
		req := &http.Request{Method: http.MethodPost, Body: nil}
		require.Empty(t, extractor(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	extractor := httpx.CompositeKeyExtractor(":",
		httpx.IPKeyExtractor,
		httpx.FormFieldKeyExtractor("email"),
	)

	t.Run("joins the parts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?email=alice@example.com", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1:alice@example.com", extractor(req))
	})

	t.Run("empty parts drop out instead of leaving separators", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", extractor(req))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("passes traffic under the limit", func(t *testing.T) {
		limited := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 5, Window: time.Second, Burst: 5,
		}, httpx.IPKeyExtractor)(okHandler)

		for i := range 5 {
			rec := hit(limited, "/", "192.168.1.1:12345")
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		}
	})

	t.Run("rejects the first request past the budget", func(t *testing.T) {
		limited := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 3, Window: time.Minute, Burst: 3,
		}, httpx.IPKeyExtractor)(okHandler)

		for range 3 {
			require.Equal(t, http.StatusOK, hit(limited, "/", "192.168.1.1:12345").Code)
		}

		rec := hit(limited, "/", "192.168.1.1:12345")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))

		// The rejection is a normal envelope, not a bare status.
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), `"success":false`)
		require.Contains(t, string(body), "Too many requests")
	})

	t.Run("buckets are per key", func(t *testing.T) {
		limited := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 2, Window: time.Minute, Burst: 2,
		}, httpx.IPKeyExtractor)(okHandler)

		for range 2 {
			require.Equal(t, http.StatusOK, hit(limited, "/", "192.168.1.1:12345").Code)
		}
		require.Equal(t, http.StatusTooManyRequests, hit(limited, "/", "192.168.1.1:12345").Code)

		// A neighbour's exhausted bucket is not this client's problem.
		require.Equal(t, http.StatusOK, hit(limited, "/", "192.168.1.2:12345").Code)
	})

	t.Run("keyless requests pass through", func(t *testing.T) {
		noKey := func(r *http.Request) string { return "" }
		limited := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 1, Window: time.Minute, Burst: 1,
		}, noKey)(okHandler)

		for range 3 {
			require.Equal(t, http.StatusOK, hit(limited, "/", "192.168.1.1:12345").Code)
		}
	})
}

func TestRateLimitByIPAndFormField(t *testing.T) {
	limited := httpx.RateLimitByIPAndFormField(httpx.RateLimitConfig{
		RequestsPerWindow: 2, Window: time.Minute, Burst: 2,
	}, "email")(okHandler)

	for range 2 {
		require.Equal(t, http.StatusOK,
			hit(limited, "/?email=alice@example.com", "192.168.1.1:12345").Code)
	}

	require.Equal(t, http.StatusTooManyRequests,
		hit(limited, "/?email=alice@example.com", "192.168.1.1:12345").Code)

	// Same IP trying a different account gets its own bucket.
	require.Equal(t, http.StatusOK,
		hit(limited, "/?email=bob@example.com", "192.168.1.1:12345").Code)
}

func TestRateLimitByIPAndJSONField(t *testing.T) {
	limited := httpx.RateLimitByIPAndJSONField(httpx.RateLimitConfig{
		RequestsPerWindow: 2, Window: time.Minute, Burst: 2,
	}, "email")(okHandler)

	post := func(email string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"email": email, "password": "pw"})
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec
	}

	for range 2 {
		require.Equal(t, http.StatusOK, post("alice@example.com").Code)
	}

	// The key really is IP+email, not IP alone: alice is cut off while bob,
	// from the very same address, still gets through.
	require.Equal(t, http.StatusTooManyRequests, post("alice@example.com").Code)
	require.Equal(t, http.StatusOK, post("bob@example.com").Code)
}

func TestRateLimitProfiles(t *testing.T) {
	profiles := map[string]httpx.RateLimitConfig{
		"strict":   httpx.StrictLimit,
		"moderate": httpx.ModerateLimit,
		"lenient":  httpx.LenientLimit,
	}

	for name, config := range profiles {
		t.Run(name, func(t *testing.T) {
			require.Positive(t, config.RequestsPerWindow)
			require.Positive(t, config.Window)
			require.Positive(t, config.Burst)
		})
	}

	// The profile names only mean something if their budgets are ordered.
	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	defaults := httpx.RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		Burst:             10,
	}

	setEnv := func(t *testing.T, requests, windowSec, burst string) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", requests)
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", windowSec)
		t.Setenv("RATELIMIT_TEST_BURST", burst)
	}

	t.Run("unset environment keeps the defaults", func(t *testing.T) {
		require.Equal(t, defaults, httpx.ParseRateLimitFromEnv("TEST", defaults))
	})

	t.Run("every parameter can be overridden", func(t *testing.T) {
		setEnv(t, "200", "30", "250")

		config := httpx.ParseRateLimitFromEnv("TEST", defaults)
		require.Equal(t, 200, config.RequestsPerWindow)
		require.Equal(t, 30*time.Second, config.Window)
		require.Equal(t, 250, config.Burst)
	})

	t.Run("garbage values fall back to the defaults", func(t *testing.T) {
		setEnv(t, "invalid", "-10", "not-a-number")
		require.Equal(t, defaults, httpx.ParseRateLimitFromEnv("TEST", defaults))
	})

	t.Run("zero is not a budget", func(t *testing.T) {
		setEnv(t, "0", "0", "0")
		require.Equal(t, defaults, httpx.ParseRateLimitFromEnv("TEST", defaults))
	})
}
