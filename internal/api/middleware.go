package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
)

// statusRecorder guarda o status escrito pelo handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// accessLog registra método, caminho, status e duração de cada requisição.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		entry := appLogger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"bytes":       rec.bytes,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote":      r.RemoteAddr,
		})
		switch {
		case rec.status >= 500:
			entry.Error("requisição HTTP")
		case rec.status >= 400:
			entry.Warn("requisição HTTP")
		default:
			entry.Info("requisição HTTP")
		}
	})
}

// recoverPanic transforma um panic do handler em 500.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				appLogger.Errorf("Panic em %s %s: %v\n%s", r.Method, r.URL.Path, p, debug.Stack())
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Erro interno. Tente novamente mais tarde."})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
