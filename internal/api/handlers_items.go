package api

import (
	"net/http"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"
)

func (s *HTTPServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := s.svc.Items.ListByOwner(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemsWithComments(items))
}

func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := s.svc.Items.Search(r.Context(), caller, r.URL.Query().Get("text"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemsWithComments(items))
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	if _, err := callerID(r); err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	detail, err := s.svc.Items.GetDetail(r.Context(), id, true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDetailDTO(detail))
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body itemBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := body.validateCreate(); err != nil {
		writeError(w, err)
		return
	}
	item, err := s.svc.Items.CreateItem(r.Context(), caller, &models.Item{
		Name:        *body.Name,
		Description: *body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemDTO(item))
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body itemBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := body.validateUpdate(); err != nil {
		writeError(w, err)
		return
	}
	item, err := s.svc.Items.UpdateItem(r.Context(), caller, id, models.ItemPatch{
		Name:        body.Name,
		Description: body.Description,
		Available:   body.Available,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(item))
}

func (s *HTTPServer) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body commentBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, domain.Validation("text must not be blank"))
		return
	}
	comment, err := s.svc.Comments.CreateComment(r.Context(), id, caller, body.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentDTO(comment))
}
