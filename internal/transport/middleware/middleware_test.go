package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
	"github.com/frahmantamala/admin-dashboard/internal/transport/middleware"
	"github.com/go-chi/chi"
	"github.com/go-redis/redis/v8"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = Describe("RequestID", func() {
	It("generates a trace id and exposes it on the context and response", func() {
		var seen string
		h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = middleware.TraceID(r.Context())
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(seen).NotTo(BeEmpty())
		Expect(w.Header().Get(middleware.TraceIDHeader)).To(Equal(seen))
	})

	It("keeps an incoming trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.TraceIDHeader, "abc-123")
		w := httptest.NewRecorder()
		middleware.RequestID(ok).ServeHTTP(w, req)
		Expect(w.Header().Get(middleware.TraceIDHeader)).To(Equal("abc-123"))
	})
})

var _ = Describe("CORS", func() {
	It("echoes allowed origins and answers preflight", func() {
		h := middleware.CORS([]string{"https://app.acme.io"})(ok)

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/reports", nil)
		req.Header.Set("Origin", "https://app.acme.io")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://app.acme.io"))
		Expect(w.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring("Authorization"))
	})

	It("does not grant unknown origins", func() {
		h := middleware.CORS([]string{"https://app.acme.io"})(ok)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("supports a wildcard", func() {
		h := middleware.CORS([]string{"*"})(ok)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:5173"))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("turns a panic into a generic 500", func() {
		h := middleware.RecoveryMiddleware(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("database password is hunter2")
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).NotTo(ContainSubstring("hunter2"))

		var resp transport.ErrorResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Error).To(Equal(string(internal.ErrCodeInternal)))
	})
})

var _ = Describe("Timeout", func() {
	It("puts a deadline on the request context", func() {
		var deadline time.Time
		var hasDeadline bool
		h := middleware.Timeout(2 * time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deadline, hasDeadline = r.Context().Deadline()
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(hasDeadline).To(BeTrue())
		Expect(time.Until(deadline)).To(BeNumerically("<=", 2*time.Second))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("filters credentials from logged bodies and still forwards the full body", func() {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		var forwarded string
		h := middleware.LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			forwarded = string(b)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"token":"eyJhbGciOi","user":{"email":"a@acme.io"}}`))
		}))

		body := `{"email":"a@acme.io","password":"hunter22"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer secret-token")
		h.ServeHTTP(httptest.NewRecorder(), req)

		Expect(forwarded).To(Equal(body))
		logged := buf.String()
		Expect(logged).NotTo(ContainSubstring("hunter22"))
		Expect(logged).NotTo(ContainSubstring("eyJhbGciOi"))
		Expect(logged).NotTo(ContainSubstring("secret-token"))
		Expect(logged).To(ContainSubstring("a@acme.io"))
	})

	It("does not read non-JSON bodies", func() {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		h := middleware.LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			Expect(b).To(Equal([]byte("%PDF-1.4 raw")))
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/upload", strings.NewReader("%PDF-1.4 raw"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		h.ServeHTTP(httptest.NewRecorder(), req)
		Expect(buf.String()).NotTo(ContainSubstring("PDF-1.4"))
	})
})

var _ = Describe("HTTPMetrics", func() {
	It("labels requests with the route pattern", func() {
		registry := prometheus.NewRegistry()
		metrics := middleware.NewHTTPMetrics(registry)

		router := chi.NewRouter()
		router.Use(metrics.Instrument)
		router.Get("/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		router.Handle("/metrics", metrics.Handler())

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/reports/42", nil))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/reports/43", nil))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`http_requests_total{method="GET",route="/reports/{id}",status="404"} 2`))
		Expect(w.Body.String()).NotTo(ContainSubstring("/reports/42"))
	})
})

var _ = Describe("RateLimit", func() {
	serve := func(h http.Handler, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = ip + ":52100"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	Context("with the in-process limiter", func() {
		It("allows the burst then answers 429 with Retry-After", func() {
			h := middleware.RateLimit(middleware.NewLocalLimiter(6, 2, 100), quietLogger())(ok)

			Expect(serve(h, "10.0.0.1").Code).To(Equal(http.StatusOK))
			Expect(serve(h, "10.0.0.1").Code).To(Equal(http.StatusOK))

			w := serve(h, "10.0.0.1")
			Expect(w.Code).To(Equal(http.StatusTooManyRequests))
			Expect(w.Header().Get("Retry-After")).NotTo(BeEmpty())

			var resp transport.ErrorResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Error).To(Equal(string(internal.ErrCodeTooManyRequests)))
		})

		It("keeps separate buckets per client", func() {
			h := middleware.RateLimit(middleware.NewLocalLimiter(1, 1, 100), quietLogger())(ok)

			Expect(serve(h, "10.0.0.1").Code).To(Equal(http.StatusOK))
			Expect(serve(h, "10.0.0.1").Code).To(Equal(http.StatusTooManyRequests))
			Expect(serve(h, "10.0.0.2").Code).To(Equal(http.StatusOK))
		})
	})

	Context("with the redis limiter", func() {
		var (
			mr     *miniredis.Miniredis
			client *redis.Client
		)

		BeforeEach(func() {
			mr = miniredis.RunT(GinkgoT())
			client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		})

		AfterEach(func() {
			client.Close()
		})

		It("counts requests in a shared window", func() {
			limiter := middleware.NewRedisLimiter(client, 3)
			ctx := context.Background()

			for i := 0; i < 3; i++ {
				allowed, _, err := limiter.Allow(ctx, "10.0.0.1")
				Expect(err).NotTo(HaveOccurred())
				Expect(allowed).To(BeTrue())
			}

			allowed, retryAfter, err := limiter.Allow(ctx, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeFalse())
			Expect(retryAfter).To(BeNumerically(">", 0))
			Expect(retryAfter).To(BeNumerically("<=", time.Minute))

			allowed, _, err = limiter.Allow(ctx, "10.0.0.2")
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeTrue())
		})

		It("expires the window keys", func() {
			limiter := middleware.NewRedisLimiter(client, 3)
			_, _, err := limiter.Allow(context.Background(), "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			keys := mr.Keys()
			Expect(keys).To(HaveLen(1))
			Expect(mr.TTL(keys[0])).To(Equal(time.Minute))
		})

		It("fails open when redis is down", func() {
			h := middleware.RateLimit(middleware.NewRedisLimiter(client, 1), quietLogger())(ok)
			mr.Close()

			Expect(serve(h, "10.0.0.1").Code).To(Equal(http.StatusOK))
			Expect(serve(h, "10.0.0.1").Code).To(Equal(http.StatusOK))
		})
	})
})
