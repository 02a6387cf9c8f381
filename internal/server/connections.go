package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sqlchat/internal/conn"
	"sqlchat/internal/database"
	"sqlchat/internal/errs"
)

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, struct {
		Success     bool        `json:"success"`
		Connections []conn.Info `json:"connections"`
	}{true, s.reg.AllInfo()})
}

func (s *Server) handleActiveConnection(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, struct {
		Success    bool      `json:"success"`
		Connection conn.Info `json:"connection"`
	}{true, s.reg.ActiveInfo()})
}

func (s *Server) handleSwitchConnection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "name is required"))
		return
	}

	if err := s.reg.Connect(r.Context(), req.Name); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: fmt.Sprintf("switched to database connection: %s", req.Name),
	})
}

func (s *Server) handleAddConnection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name             string `json:"name"`
		DisplayName      string `json:"display_name"`
		Description      string `json:"description"`
		Type             string `json:"type"`
		ConnectionString string `json:"connection_string"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	desc := conn.Descriptor{
		Name:             req.Name,
		DisplayName:      req.DisplayName,
		Description:      req.Description,
		Engine:           database.Engine(req.Type),
		ConnectionString: req.ConnectionString,
	}

	if err := s.reg.Add(r.Context(), desc); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: fmt.Sprintf("added database connection: %s", req.Name),
	})
}

func (s *Server) handleRemoveConnection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.reg.Remove(r.Context(), name); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: fmt.Sprintf("removed database connection: %s", name),
	})
}
