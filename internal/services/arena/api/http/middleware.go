package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/louisbranch/stakepot/internal/platform/requestctx"
	"github.com/louisbranch/stakepot/internal/services/arena/auth"
	"github.com/louisbranch/stakepot/internal/services/arena/engine"
)

// requireGrant authenticates the request's access grant and threads the
// caller identity through the request context. The engine makes its own
// capability decision per operation; this middleware only establishes
// who is calling.
func (a *api) requireGrant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.Verify(grantFromRequest(r), a.grants)
		if err != nil {
			writeError(w, r, err)
			return
		}
		caller := requestctx.Caller{
			Subject: claims.Subject,
			Admin:   claims.Role == auth.RoleAdmin,
		}
		next.ServeHTTP(w, r.WithContext(requestctx.WithCaller(r.Context(), caller)))
	})
}

// grantFromRequest extracts the access grant from the Authorization
// header, falling back to the grant query parameter for websocket
// clients that cannot set headers.
func grantFromRequest(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" {
		const prefix = "Bearer "
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			return strings.TrimSpace(header[len(prefix):])
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("grant"))
}

// callerIdentity maps the request context caller to an engine identity.
func callerIdentity(r *http.Request) engine.Identity {
	caller, _ := requestctx.CallerFromContext(r.Context())
	return engine.Identity{Subject: caller.Subject, Admin: caller.Admin}
}

// requestLogger emits one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("http: request")
	})
}
