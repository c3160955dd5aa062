package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tasktracker/internal/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
}

type fieldErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var domain *apperr.Error
	if errors.As(err, &domain) {
		switch domain.Code {
		case apperr.CodeValidation, apperr.CodeEmailTaken:
			fields := domain.Fields
			if len(fields) == 0 {
				fields = map[string]string{"detail": domain.Message}
			}
			writeJSON(w, http.StatusBadRequest, fieldErrorResponse{Errors: fields})
		case apperr.CodeUnauthorized:
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: domain.Message})
		case apperr.CodeNotFound:
			writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.Message})
		default:
			log.Printf("[error] %s: %v", domain.Code, err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		}
		return
	}

	log.Printf("[error] %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
