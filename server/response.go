package server

import (
	"encoding/json"
	"net/http"

	"solotto/domain/services"

	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError translates a service error code to an HTTP status. Unknown
// errors are treated as internal and their detail is not leaked.
func writeError(w http.ResponseWriter, err error) {
	code := services.CodeOf(err)
	status := statusForCode(code)

	var resp errorResponse
	resp.Error.Code = string(code)
	if status < http.StatusInternalServerError {
		resp.Error.Message = err.Error()
	} else {
		resp.Error.Message = "internal error"
		log.WithError(err).Error("Request failed")
	}

	writeJSON(w, status, resp)
}

func statusForCode(code services.ErrorCode) int {
	switch code {
	case services.CodeValidation,
		services.CodeInvalidDraw,
		services.CodeNoValidTransfer,
		services.CodeInsufficientPayment,
		services.CodeSenderMismatch,
		services.CodeSelfReferral,
		services.CodeBonusLimitReached,
		services.CodeOnChainFailure:
		return http.StatusBadRequest
	case services.CodeTransactionNotFound:
		return http.StatusNotFound
	case services.CodeDuplicateTransaction:
		return http.StatusConflict
	case services.CodeAuthorization:
		return http.StatusForbidden
	case services.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	var resp errorResponse
	resp.Error.Code = string(services.CodeValidation)
	resp.Error.Message = message
	writeJSON(w, http.StatusBadRequest, resp)
}
