package rest

import (
	"net/http"
	"strings"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/port"
)

// AuthMiddleware проверяет Bearer-токен и кладет claims в контекст.
// SSE-клиенты (EventSource) не умеют ставить заголовки, поэтому токен можно передать в ?access_token=.
func AuthMiddleware(validator port.TokenValidatorPort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := contextkeys.LoggerFromContext(r.Context())

			token := bearerToken(r)
			if token == "" {
				WriteJSONError(w, http.StatusUnauthorized, "Authorization token is missing")
				return
			}

			claims, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				logger.Warn("Token validation failed", port.Fields{"error": err.Error()})
				WriteJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := contextkeys.ContextWithClaims(r.Context(), claims)
			ctx = contextkeys.ContextWithLogger(ctx, logger.WithFields(port.Fields{
				"user_id": claims.UserID.String(),
				"role":    claims.Role,
			}))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}

// RequireRole пропускает только пользователей с одной из ролей
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := contextkeys.ClaimsFromContext(r.Context())
			if claims == nil {
				WriteJSONError(w, http.StatusUnauthorized, "User is not authenticated")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteJSONError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
