package api

import (
	"bytes"
	"fmt"
	"net/http"

	"shareit/internal/export"
	"shareit/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *HTTPServer) handleListBookings(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		filter, err := parseState(r.URL.Query().Get("state"))
		if err != nil {
			writeError(w, err)
			return
		}
		bookings, err := s.svc.Bookings.ListForUser(r.Context(), caller, role, filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingDTOs(bookings))
	}
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	filter, err := parseState(r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, err)
		return
	}
	bookings, err := s.svc.Bookings.ListForUser(r.Context(), caller, models.RoleOwner, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	title := fmt.Sprintf("Bookings of owner %d (%s), %s", caller, filter, s.now().Format(models.DateTimeLayout))
	if err := export.WriteBookings(&buf, title, bookings); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings_%d_%s.xlsx"`, caller, s.now().Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
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
	booking, err := s.svc.Bookings.GetForUser(r.Context(), id, caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(booking))
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body bookingBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := body.validate(s.now()); err != nil {
		writeError(w, err)
		return
	}
	booking, err := s.svc.Bookings.CreateBooking(r.Context(), caller, body.ItemID, body.Start.Time(), body.End.Time())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingDTO(booking))
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
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
	approved, err := parseApproved(r.URL.Query().Get("approved"))
	if err != nil {
		writeError(w, err)
		return
	}
	booking, err := s.svc.Bookings.Approve(r.Context(), id, caller, approved)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(booking))
}
