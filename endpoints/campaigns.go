package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/EasterCompany/dex-runway-service/types"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes bounds request bodies, which carry a base64 image.
const DefaultMaxBodyBytes = 20 << 20

// CampaignService is the behavior the campaign endpoints expose.
type CampaignService interface {
	CreateCampaign(ctx context.Context, req types.GenerateRunwayRequest) (string, error)
	GetCampaign(ctx context.Context, id string) (*types.Campaign, error)
	GenerateFinalLook(ctx context.Context, id string) (string, error)
}

// CampaignHandlers serves the campaign routes.
type CampaignHandlers struct {
	service      CampaignService
	maxBodyBytes int64
	logger       *zap.Logger
}

func NewCampaignHandlers(service CampaignService, maxBodyBytes int64, logger *zap.Logger) *CampaignHandlers {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignHandlers{service: service, maxBodyBytes: maxBodyBytes, logger: logger.Named("endpoints")}
}

// Create handles POST /campaigns.
func (h *CampaignHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRunwayRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	id, err := h.service.CreateCampaign(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.GenerateRunwayResponse{CampaignID: id})
}

// Get handles GET /campaigns/{id}.
func (h *CampaignHandlers) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCampaign(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// FinalLook handles POST /campaigns/{id}/final-look. The body is optional, but a
// campaign_id in it must match the path.
func (h *CampaignHandlers) FinalLook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req types.FinalLookRequest
	if err := h.decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, err)
		return
	}
	if req.CampaignID != "" && req.CampaignID != id {
		h.writeError(w, fmt.Errorf("%w: campaign_id %q does not match path", types.ErrInvalidInput, req.CampaignID))
		return
	}

	h.finalLook(w, r, id)
}

// LegacyFinalLook handles POST /api/generate-final-look, which takes the id from the body.
func (h *CampaignHandlers) LegacyFinalLook(w http.ResponseWriter, r *http.Request) {
	var req types.FinalLookRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.CampaignID) == "" {
		h.writeError(w, fmt.Errorf("%w: campaign_id is required", types.ErrInvalidInput))
		return
	}

	h.finalLook(w, r, req.CampaignID)
}

func (h *CampaignHandlers) finalLook(w http.ResponseWriter, r *http.Request, id string) {
	image, err := h.service.GenerateFinalLook(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FinalLookResponse{Image: image})
}

func (h *CampaignHandlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", types.ErrInvalidInput, tooLarge.Limit)
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body: %w", types.ErrInvalidInput, err)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", types.ErrInvalidInput, err)
	}
	return nil
}

func (h *CampaignHandlers) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Error(err))
	}
	writeJSON(w, status, types.ErrorResponse{Error: types.ErrorKind(err), Detail: err.Error()})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
