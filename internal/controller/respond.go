package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/middleware"
)

// maxBodyBytes bounds JSON and CSV request bodies.
const maxBodyBytes = 10 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr maps service errors onto status codes. Anything unrecognised is
// logged and reported as a bare 500.
func respondErr(w http.ResponseWriter, log *zap.Logger, r *http.Request, err error) {
	switch {
	case appErrors.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case appErrors.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErrors.ErrAlreadySending), errors.Is(err, appErrors.ErrDuplicateLead):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, appErrors.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		if log != nil {
			log.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return false
	}
	return true
}

// tenant returns the authenticated tenant, writing a 401 when there is none.
func tenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := middleware.TenantID(r.Context())
	if id == "" {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
