package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/conv"
	"github.com/sandevgo/jarvis/pkg/log"
)

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Reply  string `json:"reply"`
	Speech string `json:"speech"`
}

type sessionResponse struct {
	ID       string         `json:"id"`
	Messages []core.Message `json:"messages"`
}

type documentRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

type documentResponse struct {
	Chunks int `json:"chunks"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req messageRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, errors.New("text is required"))
		return
	}

	reply, err := s.agent.Run(r.Context(), id, req.Text)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("session", id).Msg("agent run failed")
		status := http.StatusInternalServerError
		if core.IsModelError(err) {
			status = http.StatusBadGateway
		}
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Reply:  reply,
		Speech: conv.MarkdownToSpeech(reply),
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	msgs, err := s.sessions.Messages(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if len(msgs) == 0 {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Messages: msgs})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Reset(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, errors.New("text is required"))
		return
	}
	if req.Source == "" {
		req.Source = "document"
	}

	n, err := s.memory.BulkIngest(r.Context(), req.Text, req.Source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentResponse{Chunks: n})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
