// Package handler exposes the oracle over HTTP
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sljivkov/feedoracle/domain"
	"github.com/sljivkov/feedoracle/metrics"
	"github.com/sljivkov/feedoracle/oracle"
)

const maxBodyBytes = 1 << 20

// MaxRequestTTL bounds how far in the future a signed request's deadline may be
const MaxRequestTTL = 5 * time.Minute

// Oracle is the adapter surface served over HTTP
type Oracle interface {
	GetPrice(ctx context.Context, asset common.Address) (*big.Int, error)
	Registry() common.Address
	Owner() common.Address
	TimeGap(asset common.Address) (time.Duration, bool, error)
	Remapping(asset common.Address) (common.Address, error)

	SetFeedRegistry(caller, registry common.Address) error
	SetTimeGaps(caller common.Address, assets []common.Address, gaps []time.Duration) error
	SetTokenRemappings(caller common.Address, assets, remaps []common.Address) error
	TransferOwnership(caller, newOwner common.Address) error
}

// Handler serves the oracle's read and admin endpoints
type Handler struct {
	oracle Oracle
	log    *zap.Logger
	now    func() time.Time
}

// New creates a Handler
func New(o Oracle, log *zap.Logger) *Handler {
	return &Handler{
		oracle: o,
		log:    log,
		now:    time.Now,
	}
}

// Routes returns the HTTP router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/prices/{asset}", h.getPrice)
	r.Get("/registry", h.getRegistry)
	r.Get("/owner", h.getOwner)
	r.Get("/time-gaps/{asset}", h.getTimeGap)
	r.Get("/remappings/{asset}", h.getRemapping)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/registry", h.setRegistry)
		r.Post("/time-gaps", h.setTimeGaps)
		r.Post("/remappings", h.setRemappings)
		r.Post("/owner", h.transferOwnership)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"registry": h.oracle.Registry().Hex(),
	})
}

func (h *Handler) getPrice(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.assetParam(w, r)
	if !ok {
		return
	}

	price, err := h.oracle.GetPrice(r.Context(), asset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	target, err := h.oracle.Remapping(asset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	formatted := new(big.Rat).SetFrac(price, new(big.Int).Exp(big.NewInt(10), big.NewInt(oracle.PriceDecimals), nil))

	h.writeJSON(w, http.StatusOK, PriceResponse{
		Asset:     asset,
		Target:    target,
		Price:     price.String(),
		Formatted: formatted.FloatString(oracle.PriceDecimals),
	})
}

func (h *Handler) getRegistry(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, AddressResponse{Address: h.oracle.Registry()})
}

func (h *Handler) getOwner(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, AddressResponse{Address: h.oracle.Owner()})
}

func (h *Handler) getTimeGap(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.assetParam(w, r)
	if !ok {
		return
	}

	gap, configured, err := h.oracle.TimeGap(asset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, TimeGapResponse{
		Asset:      asset,
		Configured: configured,
		Seconds:    uint64(gap / time.Second),
	})
}

func (h *Handler) getRemapping(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.assetParam(w, r)
	if !ok {
		return
	}

	target, err := h.oracle.Remapping(asset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, RemappingResponse{Asset: asset, Target: target})
}

func (h *Handler) setRegistry(w http.ResponseWriter, r *http.Request) {
	var req RegistryRequest
	caller, ok := h.readSigned(w, r, &req, &req.Deadline)
	if !ok {
		return
	}

	if err := h.oracle.SetFeedRegistry(caller, req.Registry); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, AddressResponse{Address: h.oracle.Registry()})
}

func (h *Handler) setTimeGaps(w http.ResponseWriter, r *http.Request) {
	var req TimeGapsRequest
	caller, ok := h.readSigned(w, r, &req, &req.Deadline)
	if !ok {
		return
	}

	gaps := make([]time.Duration, len(req.Gaps))
	for i, seconds := range req.Gaps {
		if seconds > uint64(oracle.MaxTimeGap/time.Second) {
			h.writeError(w, gapTooLarge(seconds))
			return
		}
		gaps[i] = time.Duration(seconds) * time.Second
	}

	if err := h.oracle.SetTimeGaps(caller, req.Assets, gaps); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setRemappings(w http.ResponseWriter, r *http.Request) {
	var req RemappingsRequest
	caller, ok := h.readSigned(w, r, &req, &req.Deadline)
	if !ok {
		return
	}

	if err := h.oracle.SetTokenRemappings(caller, req.Assets, req.Remaps); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transferOwnership(w http.ResponseWriter, r *http.Request) {
	var req OwnerRequest
	caller, ok := h.readSigned(w, r, &req, &req.Deadline)
	if !ok {
		return
	}

	if err := h.oracle.TransferOwnership(caller, req.Owner); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, AddressResponse{Address: h.oracle.Owner()})
}

// readSigned decodes a signed admin request into dst and returns its signer
func (h *Handler) readSigned(w http.ResponseWriter, r *http.Request, dst any, deadline *int64) (common.Address, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "failed to read body"})
		return common.Address{}, false
	}

	caller, err := RecoverSigner(body, r.Header.Get(SignatureHeader))
	if err != nil {
		h.writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		return common.Address{}, false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return common.Address{}, false
	}

	current := h.now()
	if *deadline < current.Unix() {
		h.writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "request expired"})
		return common.Address{}, false
	}
	if *deadline > current.Add(MaxRequestTTL).Unix() {
		h.writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "request deadline too far ahead"})
		return common.Address{}, false
	}

	return caller, true
}

func (h *Handler) assetParam(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	raw := chi.URLParam(r, "asset")
	if !common.IsHexAddress(raw) {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid asset address: %s", raw)})
		return common.Address{}, false
	}

	return common.HexToAddress(raw), true
}

// gapTooLarge reports an over-ceiling gap given in seconds, including values
// a time.Duration cannot hold
func gapTooLarge(seconds uint64) error {
	if seconds <= uint64(math.MaxInt64/int64(time.Second)) {
		return &oracle.GapTooLargeError{Gap: time.Duration(seconds) * time.Second}
	}

	return fmt.Errorf("%w: %ds exceeds %s", oracle.ErrGapTooLarge, seconds, oracle.MaxTimeGap)
}

// statusFor maps oracle and registry errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, oracle.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, oracle.ErrInvalidRegistry),
		errors.Is(err, oracle.ErrInvalidOwner),
		errors.Is(err, oracle.ErrArrayLengthMismatch),
		errors.Is(err, oracle.ErrInvalidAsset),
		errors.Is(err, oracle.ErrInvalidGap),
		errors.Is(err, oracle.ErrGapTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, oracle.ErrNoMaxDelay),
		errors.Is(err, domain.ErrFeedNotFound):
		return http.StatusNotFound
	case errors.Is(err, oracle.ErrPriceOutdated):
		return http.StatusServiceUnavailable
	case errors.Is(err, oracle.ErrInvalidAnswer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}

	h.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("failed to encode response", zap.Error(err))
	}
}
