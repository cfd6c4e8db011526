package slip

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// maxBodyBytes caps the request body at 20MB. Base64 inflates images by
// 4/3, so this admits images up to roughly 15MB.
const maxBodyBytes = 20 << 20

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// parseSlipRequest is the request body for POST /parse-slip
type parseSlipRequest struct {
	Base64Image string `json:"base64Image"`
}

// handleParseSlip handles slip extraction requests
func (s *Server) handleParseSlip(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req parseSlipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "Request body is too large. Maximum size is 20MB.",
			})
			return
		}
		// A body that cannot be decoded carries no image; the service
		// answers it with the standard Missing image error
		req.Base64Image = ""
	}

	result, err := s.service.ParseSlip(req.Base64Image)
	if err != nil {
		var slipErr *Error
		if errors.As(err, &slipErr) {
			writeJSON(w, slipErr.HTTPStatus, slipErr)
			return
		}
		slog.Error("Error parsing slip", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Internal server error",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleHealth reports service liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleIndex serves the documentation and demo page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}
