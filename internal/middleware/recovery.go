package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// MsgInternalError is the message of the 500 envelope written after a panic.
const MsgInternalError = "Internal server error"

// Recoverer turns a handler panic into the auth API's JSON 500 envelope and
// logs it with the request ID, route and stack. When the handler already
// started its response, the status cannot change and only the log is written.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &headerTracker{ResponseWriter: w}

			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				// The server aborts the connection silently for this one.
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("panic", fmt.Sprint(rvr)),
					slog.Bool("response_started", tw.wroteHeader),
					slog.String("stack", string(debug.Stack())),
				)

				if !tw.wroteHeader {
					writeJSONError(w, http.StatusInternalServerError, MsgInternalError)
				}
			}()

			next.ServeHTTP(tw, r)
		})
	}
}

// headerTracker records whether the wrapped handler has sent its status line.
type headerTracker struct {
	http.ResponseWriter
	wroteHeader bool
}

func (t *headerTracker) WriteHeader(code int) {
	t.wroteHeader = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *headerTracker) Write(b []byte) (int, error) {
	t.wroteHeader = true
	return t.ResponseWriter.Write(b)
}

func (t *headerTracker) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}
