package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	appErrors "github.com/Dukorsa/APP_CORRETORA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CORRETORA_GO/internal/core/logger"
)

const maxBodyBytes = 1 << 20

// errorBody é o corpo JSON de toda resposta de erro.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLogger.Warnf("Falha ao escrever resposta JSON: %v", err)
	}
}

// statusFor traduz os erros sentinela para o status HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, appErrors.ErrUnauthorized), errors.Is(err, appErrors.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, appErrors.ErrValidation), errors.Is(err, appErrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, appErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, appErrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, appErrors.ErrLookupUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError escreve {"error": ...}. Erros 5xx não expõem detalhes internos.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var ve *appErrors.ValidationError
	if errors.As(err, &ve) {
		body.Error = ve.Message
		body.Fields = ve.Fields
	}

	switch {
	case status >= 500:
		appLogger.Errorf("Erro em %s %s: %v", r.Method, r.URL.Path, err)
		if status == http.StatusInternalServerError {
			body.Error = "Erro interno. Tente novamente mais tarde."
		}
	case status != http.StatusUnauthorized:
		appLogger.Debugf("Requisição rejeitada %s %s (%d): %v", r.Method, r.URL.Path, status, err)
	}
	writeJSON(w, status, body)
}

// decodeJSON lê o corpo em dst. Corpo vazio é aceito quando allowEmpty.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: JSON inválido: %v", appErrors.ErrInvalidInput, err)
	}
	return nil
}
