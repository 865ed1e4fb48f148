package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
)

// Middleware exige um token Bearer válido e injeta o subject no contexto da requisição.
// Requisições OPTIONS (preflight de CORS) passam direto.
func (m *TokenManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			unauthorized(w, "Token ausente")
			return
		}
		claims, err := m.ValidarToken(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
		if err != nil {
			appLogger.Debugf("Token rejeitado em %s %s: %v", r.Method, r.URL.Path, err)
			unauthorized(w, "Token inválido")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.Subject)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="corretora"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
