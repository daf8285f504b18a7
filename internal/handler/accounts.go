package handler

import (
	"net/http"

	"github.com/osse101/RaceBot_Go/internal/activitylog"
	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/gacha"
	"github.com/osse101/RaceBot_Go/internal/settlement"
)

// BalanceResponse reports an account's currency
type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

// UseKeyRequest opens one key of the given tier
type UseKeyRequest struct {
	KeyType string `json:"key_type" validate:"required,keytier"`
}

// BuyKeyRequest buys one key of the given tier
type BuyKeyRequest struct {
	KeyType string `json:"key_type" validate:"required,keytier"`
}

// UseKeyResponse wraps the opening with a chat-ready message
type UseKeyResponse struct {
	Message string            `json:"message,omitempty"`
	Opening *gacha.KeyOpening `json:"opening"`
}

// AccountHandler serves per-account reads and key usage
type AccountHandler struct {
	settlement settlement.Service
	keys       gacha.Service
	activity   activitylog.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(settlementSvc settlement.Service, keys gacha.Service, activity activitylog.Service) *AccountHandler {
	return &AccountHandler{
		settlement: settlementSvc,
		keys:       keys,
		activity:   activity,
	}
}

// HandleGetBalance handles GET /accounts/{id}/balance
func (h *AccountHandler) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := getPathParam(w, r, "id")
	if !ok {
		return
	}

	balance, err := h.settlement.GetBalance(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, ErrMsgGetBalanceFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, BalanceResponse{UserID: userID, Balance: balance})
}

// HandleListKeys handles GET /accounts/{id}/keys
func (h *AccountHandler) HandleListKeys(w http.ResponseWriter, r *http.Request) {
	userID, ok := getPathParam(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.keys.ListKeys(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, ErrMsgGetKeysFailed, err)
		return
	}
	if entries == nil {
		entries = []domain.KeyInventoryEntry{}
	}
	respondJSON(w, http.StatusOK, DataResponse{Data: entries})
}

// HandleUseKey handles POST /accounts/{id}/keys/use
func (h *AccountHandler) HandleUseKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := getPathParam(w, r, "id")
	if !ok {
		return
	}
	var req UseKeyRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Use key"); err != nil {
		return
	}

	tier, err := domain.ParseKeyTier(req.KeyType)
	if err != nil {
		respondServiceError(w, r, ErrMsgUseKeyFailed, err)
		return
	}

	opening, err := h.keys.UseKey(r.Context(), userID, tier)
	if err != nil {
		respondServiceError(w, r, ErrMsgUseKeyFailed, err)
		return
	}

	resp := UseKeyResponse{Opening: opening}
	if !opening.Opened {
		resp.Message = MsgNoKeyOwned
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleBuyKey handles POST /accounts/{id}/keys/buy
func (h *AccountHandler) HandleBuyKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := getPathParam(w, r, "id")
	if !ok {
		return
	}
	var req BuyKeyRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Buy key"); err != nil {
		return
	}

	tier, err := domain.ParseKeyTier(req.KeyType)
	if err != nil {
		respondServiceError(w, r, ErrMsgBuyKeyFailed, err)
		return
	}

	purchase, err := h.keys.BuyKey(r.Context(), userID, tier)
	if err != nil {
		respondServiceError(w, r, ErrMsgBuyKeyFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, purchase)
}

// HandleGetActivity handles GET /accounts/{id}/activity
func (h *AccountHandler) HandleGetActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := getPathParam(w, r, "id")
	if !ok {
		return
	}
	limit, ok := getLimitParam(w, r)
	if !ok {
		return
	}

	entries, err := h.activity.ListActivity(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, r, ErrMsgGetActivityFailed, err)
		return
	}
	if entries == nil {
		entries = []domain.ActivityLog{}
	}
	respondJSON(w, http.StatusOK, DataResponse{Data: entries})
}
