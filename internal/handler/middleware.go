package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/nikolayk812/marketgo/internal/domain"
)

type ctxKey int

const sessionUserKey ctxKey = iota

// protectSession resolves the bearer token to an active user and attaches
// the session to the request context.
func (h *Handler) protectSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			h.respondError(w, apperr.New(apperr.KindUnauthenticated, "you are not logged in"))
			return
		}

		userID, err := h.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			h.respondError(w, err)
			return
		}

		user, err := h.userRepo.GetUser(r.Context(), userID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				err = apperr.New(apperr.KindUnauthenticated, "the owner of the session is no longer active")
			}
			h.respondError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionUserKey, user.Session())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionUserFrom(r *http.Request) (domain.SessionUser, bool) {
	user, ok := r.Context().Value(sessionUserKey).(domain.SessionUser)
	return user, ok
}

// session fetches the request's user. Routes behind protectSession always
// carry one, a missing user is surfaced as unauthenticated.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (domain.SessionUser, bool) {
	user, ok := sessionUserFrom(r)
	if !ok {
		h.respondError(w, apperr.New(apperr.KindUnauthenticated, "you are not logged in"))
	}
	return user, ok
}
