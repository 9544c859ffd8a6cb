package handlers

import (
	"errors"
	"net/http"
	"taskManagement/internal/logger"
	"taskManagement/internal/models/user"
	"taskManagement/internal/security/keycloak"
	"taskManagement/internal/service"

	"go.uber.org/zap"
)

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

// handleServiceError отвечает на любую ошибку сервиса или поиска пользователей
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if handleBusinessError(w, err) {
		return
	}

	switch {
	case errors.Is(err, keycloak.ErrClosed):
		logger.Warn("HTTP: Keycloak недоступен",
			zap.String("operation", operation),
			zap.Error(err))
		responseWithError(w, http.StatusServiceUnavailable, "сервис пользователей недоступен")
	case errors.Is(err, keycloak.ErrLookupFailed), errors.Is(err, user.ErrMalformed):
		logger.Error("HTTP: Ошибка Keycloak", err,
			zap.String("operation", operation),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadGateway, "не удалось получить данные пользователей")
	default:
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", operation),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeVersionConflict:
		return http.StatusConflict
	case service.CodeAccessDenied:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}
