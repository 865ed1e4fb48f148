package auth

import "context"

type ctxKey string

const ctxUserID ctxKey = "usuarioID"

// WithUserID devolve um contexto carregando o usuário autenticado.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// UserIDFromContext devolve o usuário autenticado, ou "" se não houver.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxUserID).(string)
	return v
}
