package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"
)

type wrappedWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *wrappedWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// silentPrefixes are high-frequency polling endpoints that are only logged on
// errors (status >= 400). Job status is polled every couple of seconds while
// a transcription runs.
var silentPrefixes = []string{
	"/api/health",
	"/api/jobs/",
}

func isSilent(path string) bool {
	for _, p := range silentPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &wrappedWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		if r.Method == http.MethodGet && isSilent(r.URL.Path) && wrapped.statusCode < 400 {
			return
		}
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
	})
}
