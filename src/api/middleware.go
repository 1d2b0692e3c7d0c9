package api

import (
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// requestIDMiddleware tags every request with a fresh id, echoed back in
// X-Request-Id and attached to the request log line.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		w.Header().Set("X-Request-Id", requestID)
		log.WithField("request_id", requestID).Debugf("%s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r)
	})
}
