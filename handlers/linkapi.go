package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"warnbot/models"
	"warnbot/services"
)

// LinkAPIHandler exposes the link confirmation operation to the game server.
// It is the only HTTP surface of the system: the game server posts the code a
// player typed in-game together with their Steam identity.
type LinkAPIHandler struct {
	linksService services.LinksService
	apiSecret    string
}

func NewLinkAPIHandler(linksService services.LinksService, apiSecret string) *LinkAPIHandler {
	return &LinkAPIHandler{
		linksService: linksService,
		apiSecret:    apiSecret,
	}
}

// SetupEndpoints registers the link API routes on the router.
func (h *LinkAPIHandler) SetupEndpoints(router *mux.Router) {
	router.HandleFunc("/api/confirm-link", h.HandleConfirmLink).Methods("POST")
	router.HandleFunc("/api/health", h.HandleHealth).Methods("GET")
}

type confirmLinkRequest struct {
	Secret  string `json:"secret"`
	Code    string `json:"code"`
	SteamID string `json:"steamId"`
}

func (h *LinkAPIHandler) HandleConfirmLink(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔗 Confirm-link request received from %s", r.RemoteAddr)

	var req confirmLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Failed to decode confirm-link body: %v", err)
		h.writeJSONResponse(w, http.StatusBadRequest, map[string]any{"error": "invalid_payload"})
		return
	}

	// An unset secret must not degrade into an open endpoint.
	if h.apiSecret == "" || subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.apiSecret)) != 1 {
		log.Printf("❌ Confirm-link secret mismatch from %s", r.RemoteAddr)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	code := strings.TrimSpace(req.Code)
	steamID := strings.TrimSpace(req.SteamID)
	if code == "" || steamID == "" {
		h.writeJSONResponse(w, http.StatusBadRequest, map[string]any{"error": "invalid_payload"})
		return
	}

	outcome, err := h.linksService.ConfirmLink(r.Context(), code, steamID)
	if err != nil {
		// The only error source here is the store.
		log.Printf("❌ Confirm-link store failure: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	log.Printf("🔗 Confirm-link result: %s", outcome)

	switch outcome {
	case models.ConfirmSuccess:
		h.writeJSONResponse(w, http.StatusOK, map[string]any{"success": true})
	case models.ConfirmExpired:
		h.writeJSONResponse(w, http.StatusBadRequest, map[string]any{"error": "expired"})
	case models.ConfirmNotFound:
		h.writeJSONResponse(w, http.StatusBadRequest, map[string]any{"error": "invalid"})
	case models.ConfirmMismatch:
		h.writeJSONResponse(w, http.StatusBadRequest, map[string]any{"error": "steam_mismatch"})
	default:
		h.writeJSONResponse(w, http.StatusBadRequest, map[string]any{"error": "unknown"})
	}
}

func (h *LinkAPIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *LinkAPIHandler) writeJSONResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("❌ Failed to write JSON response: %v", err)
	}
}
