package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"taskManagement/internal/models/page"
	"taskManagement/internal/models/task"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

func parseID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, fmt.Errorf("не удалось получить %s: %w", param, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, errors.New("id не может быть пустым")
	}
	return id, nil
}

// queryInt возвращает def, если параметр не передан
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("неверное значение %s: %w", name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("неверное значение %s: отрицательное число", name)
	}
	return v, nil
}

func parsePage(r *http.Request) (page.Request, error) {
	number, err := queryInt(r, "page", 1)
	if err != nil {
		return page.Request{}, err
	}
	size, err := queryInt(r, "limit", page.DefaultSize)
	if err != nil {
		return page.Request{}, err
	}
	if number == 0 || size == 0 {
		return page.Request{}, errors.New("page и limit должны быть больше нуля")
	}
	return page.Of(number, size), nil
}

// multiValue собирает повторяющийся параметр, значения могут быть перечислены через запятую
func multiValue(r *http.Request, name string) []string {
	var values []string
	for _, raw := range r.URL.Query()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, strings.ToUpper(v))
			}
		}
	}
	return values
}

func parseFilter(r *http.Request) (*task.Filter, error) {
	filter := &task.Filter{SearchTerm: strings.TrimSpace(r.URL.Query().Get("search"))}

	for _, v := range multiValue(r, "status") {
		s, err := task.ParseStatus(v)
		if err != nil {
			return nil, err
		}
		filter.IncludeStatus(s)
	}
	for _, v := range multiValue(r, "priority") {
		p, err := task.ParsePriority(v)
		if err != nil {
			return nil, err
		}
		filter.IncludePriority(p)
	}
	return filter, nil
}
