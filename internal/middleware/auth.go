package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"taskManagement/internal/logger"
	"taskManagement/internal/security"

	"go.uber.org/zap"
)

// TimezoneHeader - часовой пояс браузера пользователя (IANA, например Europe/Helsinki)
const TimezoneHeader = "X-Timezone"

// writeError отвечает JSON ошибкой, для 401 добавляет WWW-Authenticate
func writeError(w http.ResponseWriter, r *http.Request, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="tasks"`)
	}
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error":      errCode,
		"message":    message,
		"request_id": GetRequestID(r.Context()),
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate проверяет bearer токен и кладёт пользователя в контекст запроса
func Authenticate(verifier security.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestId := GetRequestID(r.Context())

			raw := bearerToken(r)
			if raw == "" {
				logger.Warn("HTTP: Запрос без токена",
					zap.String("request_id", requestId),
					zap.String("path", r.URL.Path),
					zap.String("client_ip", r.RemoteAddr))
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "требуется bearer токен")
				return
			}

			claims, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				logger.Warn("HTTP: Токен отклонён",
					zap.String("request_id", requestId),
					zap.Error(err),
					zap.String("client_ip", r.RemoteAddr))
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "недействительный токен")
				return
			}

			principal, err := security.NewPrincipal(claims, r.Header.Get(TimezoneHeader))
			if err != nil {
				logger.Warn("HTTP: Неполные данные пользователя в токене",
					zap.String("request_id", requestId),
					zap.Error(err))
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "недействительный токен")
				return
			}

			logger.Debug("HTTP: Пользователь аутентифицирован",
				zap.String("request_id", requestId),
				zap.String("subject", principal.Subject()),
				zap.String("zone", principal.Zone.String()))

			next.ServeHTTP(w, r.WithContext(security.WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAuthority пропускает только пользователей с указанным authority
func RequireAuthority(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := security.PrincipalFrom(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "требуется аутентификация")
				return
			}
			if !principal.HasAuthority(name) {
				logger.Warn("HTTP: Недостаточно прав",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("subject", principal.Subject()),
					zap.String("required", name))
				writeError(w, r, http.StatusForbidden, "forbidden", "недостаточно прав")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
