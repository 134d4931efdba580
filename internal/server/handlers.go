package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/duonguwu/ai-challenge/internal/models"
)

func (s *Server) handleSearchText(w http.ResponseWriter, r *http.Request) {
	var req models.TextSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("text search request",
		zap.Int("queries", len(req.QueryTexts)), zap.Int("limit", req.Limit))
	response, err := s.engine.SearchText(r.Context(), &req)
	if err != nil {
		if isValidationError(err) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("text search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleSearchImage(w http.ResponseWriter, r *http.Request) {
	var req models.ImageSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	response, err := s.engine.SearchImage(r.Context(), &req)
	if err != nil {
		if isValidationError(err) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("image search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleCollectionInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.CollectionInfo(r.Context())
	if err != nil {
		s.logger.Error("collection info failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "vector_store": "ok"}
	code := http.StatusOK
	if err := s.store.Health(r.Context()); err != nil {
		status["status"] = "degraded"
		status["vector_store"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	s.respondJSON(w, code, status)
}

func isValidationError(err error) bool {
	var ve *models.ValidationError
	return errors.As(err, &ve)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
