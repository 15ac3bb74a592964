package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl marks successful GET and HEAD responses as publicly cacheable
// for maxAge seconds, including shared caches. Error responses are sent with
// no-store. A Cache-Control header set by the handler is left alone.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d, s-maxage=%d", maxAge, maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(&cacheWriter{ResponseWriter: w, value: value}, r)
		})
	}
}

// cacheWriter decides the Cache-Control header once the status is known.
type cacheWriter struct {
	http.ResponseWriter
	value       string
	wroteHeader bool
}

func (cw *cacheWriter) WriteHeader(code int) {
	if !cw.wroteHeader {
		cw.wroteHeader = true
		h := cw.Header()
		if h.Get("Cache-Control") == "" {
			if code < http.StatusMultipleChoices {
				h.Set("Cache-Control", cw.value)
			} else {
				h.Set("Cache-Control", "no-store")
			}
		}
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *cacheWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	return cw.ResponseWriter.Write(b)
}

func (cw *cacheWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
