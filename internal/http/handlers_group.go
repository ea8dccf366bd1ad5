package http

import (
	"encoding/json"
	"net/http"

	"divvy/internal/core"
)

type groupPayload struct {
	Title   string   `json:"title"`
	Members []string `json:"members"`
}

type groupResponse struct {
	Title        string   `json:"title"`
	Members      []string `json:"members"`
	DisplayColor string   `json:"display_color"`
}

func toGroupResponse(g core.Group) groupResponse {
	members := make([]string, len(g.Members))
	for i, m := range g.Members {
		members[i] = string(m)
	}
	return groupResponse{
		Title:        g.Title,
		Members:      members,
		DisplayColor: g.DisplayColor,
	}
}

func toMembers(names []string) []core.Member {
	members := make([]core.Member, len(names))
	for i, n := range names {
		members[i] = core.Member(n)
	}
	return members
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups := s.ledger.Groups()
	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroupResponse(g)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var payload groupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	g, err := s.ledger.CreateGroup(r.Context(), payload.Title, toMembers(payload.Members), randomDisplayColor())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(g))
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	oldTitle := r.PathValue("title")

	var payload groupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	g, err := s.ledger.UpdateGroup(r.Context(), oldTitle, payload.Title, toMembers(payload.Members))
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateGroup(oldTitle)
	s.invalidateGroup(g.Title)
	writeJSON(w, http.StatusOK, toGroupResponse(g))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")

	if err := s.ledger.DeleteGroup(r.Context(), title); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateGroup(title)
	w.WriteHeader(http.StatusNoContent)
}
