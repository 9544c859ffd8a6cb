package middleware

import (
	"context"
	"net/http"
	"taskManagement/internal/logger"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestID принимает X-Request-ID клиента или выдаёт новый и возвращает его в ответе
func RequestID(next http.Handler) http.Handler {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(chimw.RequestIDHeader, chimw.GetReqID(r.Context()))
		next.ServeHTTP(w, r)
	})
	return chimw.RequestID(echo)
}

func GetRequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// wrapWriter запоминает статус и размер ответа; повторная обёртка не создаётся
func wrapWriter(w http.ResponseWriter, r *http.Request) chimw.WrapResponseWriter {
	if ww, ok := w.(chimw.WrapResponseWriter); ok {
		return ww
	}
	return chimw.NewWrapResponseWriter(w, r.ProtoMajor)
}

func statusOf(ww chimw.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}

// routePattern - шаблон маршрута chi вместо пути с идентификаторами
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Logging пишет одну строку на запрос, уровень зависит от статуса ответа
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := wrapWriter(w, r)
		next.ServeHTTP(ww, r)

		status := statusOf(ww)
		level := zapcore.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = zapcore.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zapcore.WarnLevel
		case r.URL.Path == "/health":
			level = zapcore.DebugLevel
		}

		logger.Log(level, "HTTP: Запрос обработан",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("route", routePattern(r)),
			zap.String("path", r.URL.Path),
			zap.String("client_ip", r.RemoteAddr),
			zap.String("timezone", r.Header.Get(TimezoneHeader)),
			zap.Int("status", status),
			zap.Int("bytes_written", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
