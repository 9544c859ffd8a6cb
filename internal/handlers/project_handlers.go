package handlers

import (
	"encoding/json"
	"net/http"
	"taskManagement/internal/handlers/dto"
	"taskManagement/internal/logger"
	"time"

	"go.uber.org/zap"
)

type ProjectHandler struct {
	ProjectService ProjectService
}

func NewProjectHandler(projectService ProjectService) *ProjectHandler {
	return &ProjectHandler{ProjectService: projectService}
}

func (s *ProjectHandler) PostProject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	p, err := s.ProjectService.CreateProject(r.Context(), request.Name)
	if err != nil {
		handleServiceError(w, r, err, "create_project")
		return
	}

	logger.Info("HTTP_OUT: Проект создан",
		zap.String("project_id", p.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("project", dto.FromProject(p)))
}

func (s *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	req, err := parsePage(r)
	if err != nil {
		validationFailed(w, r, "page", err)
		return
	}

	projects, err := s.ProjectService.ListProjects(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err, "list_projects")
		return
	}

	logger.Info("HTTP_OUT: Проекты получены",
		zap.Int("count", len(projects)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("projects", dto.FromProjectList(projects)),
		toPayload("offset", req.Offset),
		toPayload("limit", req.Limit))
}

func (s *ProjectHandler) GetProjectByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r, "id")
	if err != nil {
		validationFailed(w, r, "id", err)
		return
	}

	p, err := s.ProjectService.GetProject(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_project")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("project", dto.FromProject(p)))
}
