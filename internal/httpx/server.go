package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-grocery-store/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Checker reports whether the store behind a route is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

func NewRouter(log logrus.FieldLogger, timeout time.Duration) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log, NoColor: true}))
	r.Use(middleware.Recoverer, CORS)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// CORS lets the browser front end call every route.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

// RequireDB answers 503 without reaching the handler when db is down.
func RequireDB(db Checker, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := db.Check(r.Context()); err != nil {
				writeError(w, r, log, err, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError answers with the status of err's kind. Causes are logged and
// never sent to the client; internal errors carry fallback as their message.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error, fallback string) {
	e := apperr.As(err)
	msg := e.Message
	switch e.Kind {
	case apperr.KindInternal, apperr.KindUnavailable:
		log.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"route":      r.URL.Path,
			"kind":       e.Kind.String(),
		}).WithError(err).Error("request failed")
		if e.Kind == apperr.KindInternal && fallback != "" {
			msg = fallback
		}
	}
	writeJSON(w, e.Kind.Status(), errorResponse{Error: msg, Field: e.Field})
}
