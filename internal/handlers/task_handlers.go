package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"taskManagement/internal/handlers/dto"
	"taskManagement/internal/logger"
	"taskManagement/internal/models/task"
	"time"

	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
	Users       UserDirectory
}

func NewTaskHandler(taskService TaskService, users UserDirectory) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
		Users:       users,
	}
}

func validationFailed(w http.ResponseWriter, r *http.Request, field string, err error) {
	logger.Warn("HTTP: Ошибка валидации",
		zap.String("field", field),
		zap.Error(err),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusBadRequest, err.Error())
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Сервис нездоров", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("time", time.Now().UTC()))
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("time", time.Now().UTC()))
}

func dueOption(date, timeOfDay *string) (task.TaskOption, string, error) {
	d, err := dto.ParseDate(date)
	if err != nil {
		return nil, "due_date", err
	}
	at, err := dto.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return nil, "due_time", err
	}
	return task.WithDue(d, at), "", nil
}

func statusOption(value string) (task.TaskOption, error) {
	if value == "" {
		return nil, nil
	}
	st, err := task.ParseStatus(strings.ToUpper(value))
	if err != nil {
		return nil, err
	}
	return task.WithStatus(st), nil
}

func priorityOption(value string) (task.TaskOption, error) {
	if value == "" {
		return nil, nil
	}
	p, err := task.ParsePriority(strings.ToUpper(value))
	if err != nil {
		return nil, err
	}
	return task.WithPriority(p), nil
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
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

	projectID, err := parseID(r, "id")
	if err != nil {
		validationFailed(w, r, "id", err)
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	due, field, err := dueOption(request.DueDate, request.DueTime)
	if err != nil {
		validationFailed(w, r, field, err)
		return
	}
	status, err := statusOption(request.Status)
	if err != nil {
		validationFailed(w, r, "status", err)
		return
	}
	priority, err := priorityOption(request.Priority)
	if err != nil {
		validationFailed(w, r, "priority", err)
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задач")
	created, err := s.TaskService.CreateTask(r.Context(), projectID,
		task.WithDescription(request.Description),
		due,
		status,
		priority,
		task.WithAssignees(request.Assignees))
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created)))
}

func (s *TaskHandler) GetProjectTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	projectID, err := parseID(r, "id")
	if err != nil {
		validationFailed(w, r, "id", err)
		return
	}

	req, err := parsePage(r)
	if err != nil {
		validationFailed(w, r, "page", err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		validationFailed(w, r, "filter", err)
		return
	}

	logger.Info("HTTP: Вызов сервиса для поиска задач")

	tasks, err := s.TaskService.FindTasks(r.Context(), projectID, filter, req)
	if err != nil {
		handleServiceError(w, r, err, "find_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", dto.FromTaskList(tasks)),
		toPayload("offset", req.Offset),
		toPayload("limit", req.Limit))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r, "id")
	if err != nil {
		validationFailed(w, r, "id", err)
		return
	}

	logger.Info("HTTP: Вызов сервиса для получения задачи")

	t, err := s.TaskService.GetTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	resp := dto.FromTask(t)
	if r.URL.Query().Get("expand") == "assignees" {
		people, err := s.assigneeNames(r, t.Assignees)
		if err != nil {
			handleServiceError(w, r, err, "expand_assignees")
			return
		}
		resp.People = people
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.String("task_id", t.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", resp))
}

// assigneeNames подставляет имена исполнителей; неизвестные показываются как N/A
func (s *TaskHandler) assigneeNames(r *http.Request, assignees []string) ([]dto.AssigneeResponse, error) {
	people := make([]dto.AssigneeResponse, 0, len(assignees))
	for _, id := range assignees {
		name := dto.UnknownUser
		info, found, err := s.Users.FindUserInfo(r.Context(), id)
		if err != nil {
			return nil, err
		}
		if found {
			name = info.FullName()
		}
		people = append(people, dto.AssigneeResponse{ID: id, Name: name})
	}
	return people, nil
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r, "id")
	if err != nil {
		validationFailed(w, r, "id", err)
		return
	}

	var request dto.UpdateTaskRequest

	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	var options []task.TaskOption
	if request.Description != nil {
		options = append(options, task.WithDescription(*request.Description))
	}
	if request.DueDate != nil || request.DueTime != nil {
		due, field, err := dueOption(request.DueDate, request.DueTime)
		if err != nil {
			validationFailed(w, r, field, err)
			return
		}
		options = append(options, due)
	}
	if request.Status != nil {
		status, err := statusOption(*request.Status)
		if err != nil {
			validationFailed(w, r, "status", err)
			return
		}
		options = append(options, status)
	}
	if request.Priority != nil {
		priority, err := priorityOption(*request.Priority)
		if err != nil {
			validationFailed(w, r, "priority", err)
			return
		}
		options = append(options, priority)
	}
	if request.Assignees != nil {
		assignees := *request.Assignees
		if assignees == nil {
			assignees = []string{}
		}
		options = append(options, task.WithAssignees(assignees))
	}

	logger.Info("HTTP: запрос к сервису обновления данных")

	updated, err := s.TaskService.UpdateTask(r.Context(), id, request.Version, options...)
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", updated.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated)))
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r, "id")
	if err != nil {
		validationFailed(w, r, "id", err)
		return
	}

	logger.Info("HTTP: Обращение к сервису для удаления задачи")

	if err := s.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	responseNoContent(w)
}
