package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/logger"
	"github.com/osse101/RaceBot_Go/internal/racing"
)

// CarStatsRequest is a car's stat block as sent by the bot
type CarStatsRequest struct {
	Speed        int `json:"speed" validate:"gte=0,lte=1000"`
	Acceleration int `json:"acceleration" validate:"gte=0,lte=1000"`
	Handling     int `json:"handling" validate:"gte=0,lte=1000"`
	Boost        int `json:"boost" validate:"gte=0,lte=1000"`
}

func (c CarStatsRequest) stats() domain.CarStats {
	return domain.CarStats{
		Speed:        c.Speed,
		Acceleration: c.Acceleration,
		Handling:     c.Handling,
		Boost:        c.Boost,
	}
}

func trackOf(s string) domain.TrackType {
	return domain.TrackType(strings.ToLower(strings.TrimSpace(s)))
}

// SoloRaceRequest starts a race against an AI opponent
type SoloRaceRequest struct {
	UserID string          `json:"user_id" validate:"required,max=100"`
	Track  string          `json:"track" validate:"required,track"`
	Bet    int64           `json:"bet" validate:"required,gte=1"`
	Car    CarStatsRequest `json:"car"`
}

// RaceChallengeRequest offers a PvP race
type RaceChallengeRequest struct {
	ChallengerID string          `json:"challenger_id" validate:"required,max=100"`
	OpponentID   string          `json:"opponent_id" validate:"required,max=100,nefield=ChallengerID"`
	Track        string          `json:"track" validate:"required,track"`
	Bet          int64           `json:"bet" validate:"required,gte=1"`
	Car          CarStatsRequest `json:"car"`
}

// RaceChallengeResponse confirms a pending challenge
type RaceChallengeResponse struct {
	Message     string    `json:"message"`
	ChallengeID string    `json:"challenge_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AcceptChallengeRequest answers a challenge with the opponent's car
type AcceptChallengeRequest struct {
	UserID string          `json:"user_id" validate:"required,max=100"`
	Car    CarStatsRequest `json:"car"`
}

// DeclineChallengeRequest withdraws or refuses a challenge
type DeclineChallengeRequest struct {
	UserID string `json:"user_id" validate:"required,max=100"`
}

// ShowdownRequest compares two cars without a stake
type ShowdownRequest struct {
	UserID        string          `json:"user_id" validate:"required,max=100"`
	OpponentID    string          `json:"opponent_id,omitempty" validate:"max=100"`
	Track         string          `json:"track" validate:"required,track"`
	ChallengerCar CarStatsRequest `json:"challenger_car"`
	OpponentCar   CarStatsRequest `json:"opponent_car"`
}

// RaceHandler serves the race endpoints
type RaceHandler struct {
	service racing.Service
}

// NewRaceHandler creates a new race handler
func NewRaceHandler(service racing.Service) *RaceHandler {
	return &RaceHandler{service: service}
}

// HandleSolo handles POST /races/solo
func (h *RaceHandler) HandleSolo(w http.ResponseWriter, r *http.Request) {
	var req SoloRaceRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Solo race"); err != nil {
		return
	}

	outcome, err := h.service.RunSolo(r.Context(), racing.SoloRaceRequest{
		UserID: req.UserID,
		Track:  trackOf(req.Track),
		Bet:    req.Bet,
		Car:    req.Car.stats(),
	})
	if err != nil {
		respondServiceError(w, r, ErrMsgRaceFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// HandleChallenge handles POST /races/challenges
func (h *RaceHandler) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	var req RaceChallengeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Race challenge"); err != nil {
		return
	}

	c, err := h.service.Challenge(r.Context(), racing.ChallengeRequest{
		ChallengerID: req.ChallengerID,
		OpponentID:   req.OpponentID,
		Track:        trackOf(req.Track),
		Bet:          req.Bet,
		Car:          req.Car.stats(),
	})
	if err != nil {
		respondServiceError(w, r, ErrMsgRaceFailed, err)
		return
	}
	respondJSON(w, http.StatusCreated, RaceChallengeResponse{
		Message:     MsgChallengeSent,
		ChallengeID: c.ID.String(),
		ExpiresAt:   c.ExpiresAt,
	})
}

// HandleAccept handles POST /races/challenges/{id}/accept
func (h *RaceHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	id, ok := getUUIDParam(w, r, "id", ErrMsgInvalidChallenge)
	if !ok {
		return
	}
	var req AcceptChallengeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Accept challenge"); err != nil {
		return
	}

	outcome, err := h.service.Accept(r.Context(), id, req.UserID, req.Car.stats())
	if err != nil {
		respondServiceError(w, r, ErrMsgRaceFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// HandleDecline handles POST /races/challenges/{id}/decline
func (h *RaceHandler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	id, ok := getUUIDParam(w, r, "id", ErrMsgInvalidChallenge)
	if !ok {
		return
	}
	var req DeclineChallengeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Decline challenge"); err != nil {
		return
	}

	if err := h.service.Decline(r.Context(), id, req.UserID); err != nil {
		respondServiceError(w, r, ErrMsgRaceFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgChallengeDeclined})
}

// HandleShowdown handles POST /races/showdown
func (h *RaceHandler) HandleShowdown(w http.ResponseWriter, r *http.Request) {
	var req ShowdownRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Showdown"); err != nil {
		return
	}

	outcome, err := h.service.Showdown(r.Context(), racing.ShowdownRequest{
		ChallengerID:  req.UserID,
		OpponentID:    req.OpponentID,
		Track:         trackOf(req.Track),
		ChallengerCar: req.ChallengerCar.stats(),
		OpponentCar:   req.OpponentCar.stats(),
	})
	if err != nil {
		respondServiceError(w, r, ErrMsgRaceFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// HandleGetRace handles GET /races/{id}
func (h *RaceHandler) HandleGetRace(w http.ResponseWriter, r *http.Request) {
	id, ok := getUUIDParam(w, r, "id", ErrMsgInvalidRaceID)
	if !ok {
		return
	}

	race, err := h.service.GetRace(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, ErrMsgGetRaceFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, race)
}

// HandleRecentRaces handles GET /accounts/{id}/races
func (h *RaceHandler) HandleRecentRaces(w http.ResponseWriter, r *http.Request) {
	userID, ok := getPathParam(w, r, "id")
	if !ok {
		return
	}
	limit, ok := getLimitParam(w, r)
	if !ok {
		return
	}

	races, err := h.service.GetRecentRaces(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, r, ErrMsgGetRaceFailed, err)
		return
	}
	logger.FromContext(r.Context()).Debug("Recent races listed", "user_id", userID, "count", len(races))
	respondJSON(w, http.StatusOK, DataResponse{Data: races})
}
