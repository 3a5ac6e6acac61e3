package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"shareit/internal/domain"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var (
	errUnauthenticated = errors.New("missing or invalid api key")
	errRateLimited     = errors.New("rate limit exceeded")
)

func httpStatus(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindDataNotAvailable, domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindDuplicateEmail:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func grpcCode(kind domain.Kind) codes.Code {
	switch kind {
	case domain.KindNotFound:
		return codes.NotFound
	case domain.KindForbidden:
		return codes.PermissionDenied
	case domain.KindDataNotAvailable:
		return codes.FailedPrecondition
	case domain.KindValidation:
		return codes.InvalidArgument
	case domain.KindDuplicateEmail:
		return codes.AlreadyExists
	default:
		return codes.Internal
	}
}

// toStatus converts a service error into a gRPC status error.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	kind := domain.KindOf(err)
	if kind == domain.KindUnknown {
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(grpcCode(kind), err.Error())
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders err with the status of its domain kind.
func writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	message := err.Error()
	if kind == domain.KindUnknown {
		message = "internal server error"
	}
	writeJSON(w, httpStatus(kind), errorResponse{Error: kind.String(), Message: message})
}

func writeStatus(w http.ResponseWriter, statusCode int, kind, message string) {
	writeJSON(w, statusCode, errorResponse{Error: kind, Message: message})
}
