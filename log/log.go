package log

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type Config struct {
	Level     int  `mapstructure:"level"`
	AddSource bool `mapstructure:"add_source"`
}

// Setup installs a JSON slog logger as the process default.
func Setup(c *Config) *slog.Logger {
	l := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: c.AddSource,
		Level:     slog.Level(c.Level),
	}))
	slog.SetDefault(l)
	return l
}

// RequestLogger logs one line per HTTP request through the default slog logger.
// It expects middleware.RequestID to run before it.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			lvl := slog.LevelInfo
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				lvl = slog.LevelError
			case ww.Status() >= http.StatusBadRequest:
				lvl = slog.LevelWarn
			}
			slog.Default().Log(r.Context(), lvl, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("remote", r.RemoteAddr),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
