package handlers

import (
	"net/http"
	"strings"
	"taskManagement/internal/handlers/dto"
	"taskManagement/internal/logger"
	"taskManagement/internal/models/page"
	"taskManagement/internal/security"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	Users UserDirectory
}

func NewUserHandler(users UserDirectory) *UserHandler {
	return &UserHandler{Users: users}
}

// Me возвращает данные текущего пользователя для меню
func (s *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	principal, ok := security.PrincipalFrom(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "требуется аутентификация")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("user", dto.MeResponse{
		UserResponse: dto.FromUser(principal.Info),
		TimeZone:     principal.Zone.String(),
		Authorities:  security.AuthorityNames(principal.Authorities),
	}))
}

func (s *UserHandler) FindUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	limit, err := queryInt(r, "limit", page.DefaultSize)
	if err != nil {
		validationFailed(w, r, "limit", err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		validationFailed(w, r, "offset", err)
		return
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	users, err := s.Users.FindUsers(r.Context(), search, limit, offset)
	if err != nil {
		handleServiceError(w, r, err, "find_users")
		return
	}

	logger.Info("HTTP_OUT: Пользователи получены",
		zap.Int("count", len(users)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("users", dto.FromUserList(users)),
		toPayload("offset", offset),
		toPayload("limit", limit))
}

func (s *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		responseWithError(w, http.StatusBadRequest, "id не может быть пустым")
		return
	}

	info, found, err := s.Users.FindUserInfo(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "find_user")
		return
	}
	if !found {
		logger.Info("HTTP: Пользователь не найден", zap.String("user_id", id))
		responseWithError(w, http.StatusNotFound, "пользователь не найден")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("user", dto.FromUser(info)))
}
