package logger

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

func New(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zapcfg := zap.NewProductionConfig()
	zapcfg.Level = lvl
	return zapcfg.Build()
}

// RequestLog is chi-compatible middleware logging each request through zap.
func RequestLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wl := &responseWriterLogger{ResponseWriter: w, statusCode: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(wl, r)

			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wl.statusCode),
				zap.Int("bytes", wl.length),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type responseWriterLogger struct {
	http.ResponseWriter
	statusCode int
	length     int
}

func (wl *responseWriterLogger) WriteHeader(code int) {
	wl.statusCode = code
	wl.ResponseWriter.WriteHeader(code)
}

func (wl *responseWriterLogger) Write(b []byte) (int, error) {
	n, err := wl.ResponseWriter.Write(b)
	wl.length += n
	return n, err
}
