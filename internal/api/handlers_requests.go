package api

import (
	"net/http"
	"strings"

	"shareit/internal/domain"
)

func (s *HTTPServer) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	requests, err := s.svc.Requests.ListByRequestor(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

func (s *HTTPServer) handleListAllRequests(w http.ResponseWriter, r *http.Request) {
	if _, err := callerID(r); err != nil {
		writeError(w, err)
		return
	}
	requests, err := s.svc.Requests.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	if _, err := callerID(r); err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := s.svc.Requests.GetWithItems(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestWithItemsDTO(req))
}

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body requestBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		writeError(w, domain.Validation("description must not be blank"))
		return
	}
	req, err := s.svc.Requests.CreateRequest(r.Context(), caller, body.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}
