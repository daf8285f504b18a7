package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RaceBot_Go/internal/challenge"
	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/racing"
	"github.com/osse101/RaceBot_Go/mocks"
)

func raceRouter(h *RaceHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/races/solo", h.HandleSolo)
	r.Post("/races/challenges", h.HandleChallenge)
	r.Post("/races/challenges/{id}/accept", h.HandleAccept)
	r.Post("/races/challenges/{id}/decline", h.HandleDecline)
	r.Post("/races/showdown", h.HandleShowdown)
	r.Get("/races/{id}", h.HandleGetRace)
	r.Get("/accounts/{id}/races", h.HandleRecentRaces)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func settledOutcome(kind domain.RaceKind) *racing.RaceOutcome {
	race := domain.NewRace(kind, domain.TrackDrift, "alice", "", 100)
	race.Status = domain.RaceStatusSettled
	race.Result = &domain.RaceResult{Track: domain.TrackDrift, Winner: domain.SideChallenger, Margin: domain.MarginSmall}
	return &racing.RaceOutcome{Race: race, Ledger: []domain.LedgerEntry{}}
}

func TestHandleSolo(t *testing.T) {
	car := CarStatsRequest{Speed: 70, Acceleration: 60, Handling: 50, Boost: 40}

	tests := []struct {
		name           string
		body           interface{}
		setupMocks     func(*mocks.MockRacingService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Invalid JSON",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequest,
		},
		{
			name:           "Unknown track rejected by validator",
			body:           SoloRaceRequest{UserID: "alice", Track: "moon", Bet: 10, Car: car},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"track":"Invalid track"`,
		},
		{
			name:           "Missing bet",
			body:           SoloRaceRequest{UserID: "alice", Track: "drift", Car: car},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"bet":"This field is required"`,
		},
		{
			name: "Insufficient balance",
			body: SoloRaceRequest{UserID: "alice", Track: "Drift", Bet: 5000, Car: car},
			setupMocks: func(m *mocks.MockRacingService) {
				m.On("RunSolo", mock.Anything, racing.SoloRaceRequest{
					UserID: "alice", Track: domain.TrackDrift, Bet: 5000,
					Car: domain.CarStats{Speed: 70, Acceleration: 60, Handling: 50, Boost: 40},
				}).Return(nil, &domain.InsufficientBalanceError{AccountID: "alice", Balance: 10, Required: 5000})
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"reason":"insufficient balance"`,
		},
		{
			name: "Unexpected failure",
			body: SoloRaceRequest{UserID: "alice", Track: "street", Bet: 10, Car: car},
			setupMocks: func(m *mocks.MockRacingService) {
				m.On("RunSolo", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   ErrMsgGenericServerError,
		},
		{
			name: "Success",
			body: SoloRaceRequest{UserID: "alice", Track: "drift", Bet: 100, Car: car},
			setupMocks: func(m *mocks.MockRacingService) {
				m.On("RunSolo", mock.Anything, mock.Anything).Return(settledOutcome(domain.RaceKindSolo), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"margin":"by a small margin"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockRacingService(t)
			if tt.setupMocks != nil {
				tt.setupMocks(svc)
			}
			rec := doJSON(t, raceRouter(NewRaceHandler(svc)), http.MethodPost, "/races/solo", tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestHandleChallenge(t *testing.T) {
	t.Run("Self challenge rejected by validator", func(t *testing.T) {
		svc := mocks.NewMockRacingService(t)
		rec := doJSON(t, raceRouter(NewRaceHandler(svc)), http.MethodPost, "/races/challenges",
			RaceChallengeRequest{ChallengerID: "alice", OpponentID: "alice", Track: "drag", Bet: 10})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"opponentid"`)
	})

	t.Run("Conflict", func(t *testing.T) {
		svc := mocks.NewMockRacingService(t)
		svc.On("Challenge", mock.Anything, mock.Anything).Return(nil, domain.ErrChallengeConflict)

		rec := doJSON(t, raceRouter(NewRaceHandler(svc)), http.MethodPost, "/races/challenges",
			RaceChallengeRequest{ChallengerID: "alice", OpponentID: "bob", Track: "drag", Bet: 10})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Created", func(t *testing.T) {
		svc := mocks.NewMockRacingService(t)
		id := uuid.MustParse("00000000-0000-0000-0000-000000000007")
		svc.On("Challenge", mock.Anything, racing.ChallengeRequest{
			ChallengerID: "alice", OpponentID: "bob", Track: domain.TrackDrag, Bet: 10,
		}).Return(&challenge.Challenge{ID: id, ExpiresAt: time.Now().Add(time.Minute)}, nil)

		rec := doJSON(t, raceRouter(NewRaceHandler(svc)), http.MethodPost, "/races/challenges",
			RaceChallengeRequest{ChallengerID: "alice", OpponentID: "bob", Track: "drag", Bet: 10})
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"challenge_id":"00000000-0000-0000-0000-000000000007"`)
	})
}

func TestHandleAccept(t *testing.T) {
	id := uuid.New()
	car := CarStatsRequest{Speed: 10, Acceleration: 10, Handling: 10, Boost: 10}

	tests := []struct {
		name           string
		path           string
		err            error
		expectedStatus int
	}{
		{"Invalid ID", "/races/challenges/nope/accept", nil, http.StatusBadRequest},
		{"Not found", "/races/challenges/" + id.String() + "/accept", domain.ErrChallengeNotFound, http.StatusNotFound},
		{"Expired", "/races/challenges/" + id.String() + "/accept", domain.ErrChallengeExpired, http.StatusGone},
		{"Wrong account", "/races/challenges/" + id.String() + "/accept", domain.ErrNotChallengeTarget, http.StatusForbidden},
		{"Success", "/races/challenges/" + id.String() + "/accept", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockRacingService(t)
			if tt.name != "Invalid ID" {
				var outcome *racing.RaceOutcome
				if tt.err == nil {
					outcome = settledOutcome(domain.RaceKindPvP)
				}
				svc.On("Accept", mock.Anything, id, "bob", car.stats()).Return(outcome, tt.err)
			}

			rec := doJSON(t, raceRouter(NewRaceHandler(svc)), http.MethodPost, tt.path, AcceptChallengeRequest{UserID: "bob", Car: car})
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestHandleDecline(t *testing.T) {
	id := uuid.New()
	svc := mocks.NewMockRacingService(t)
	svc.On("Decline", mock.Anything, id, "bob").Return(nil)

	rec := doJSON(t, raceRouter(NewRaceHandler(svc)), http.MethodPost, "/races/challenges/"+id.String()+"/decline", DeclineChallengeRequest{UserID: "bob"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgChallengeDeclined)
}

func TestHandleShowdown(t *testing.T) {
	svc := mocks.NewMockRacingService(t)
	svc.On("Showdown", mock.Anything, racing.ShowdownRequest{
		ChallengerID:  "alice",
		Track:         domain.TrackOffroad,
		ChallengerCar: domain.CarStats{Speed: 1},
		OpponentCar:   domain.CarStats{Boost: 2},
	}).Return(settledOutcome(domain.RaceKindShowdown), nil)

	rec := doJSON(t, raceRouter(NewRaceHandler(svc)), http.MethodPost, "/races/showdown", ShowdownRequest{
		UserID:        "alice",
		Track:         "OFFROAD",
		ChallengerCar: CarStatsRequest{Speed: 1},
		OpponentCar:   CarStatsRequest{Boost: 2},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleGetRace(t *testing.T) {
	t.Run("Not found", func(t *testing.T) {
		svc := mocks.NewMockRacingService(t)
		id := uuid.New()
		svc.On("GetRace", mock.Anything, id).Return(nil, domain.ErrRaceNotFound)

		rec := doJSON(t, raceRouter(NewRaceHandler(svc)), http.MethodGet, "/races/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"reason":"race not found"`)
	})

	t.Run("Found", func(t *testing.T) {
		svc := mocks.NewMockRacingService(t)
		outcome := settledOutcome(domain.RaceKindSolo)
		svc.On("GetRace", mock.Anything, outcome.Race.ID).Return(outcome.Race, nil)

		rec := doJSON(t, raceRouter(NewRaceHandler(svc)), http.MethodGet, "/races/"+outcome.Race.ID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.Race
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, outcome.Race.ID, got.ID)
		assert.Equal(t, domain.RaceStatusSettled, got.Status)
	})
}

func TestHandleRecentRaces(t *testing.T) {
	svc := mocks.NewMockRacingService(t)
	svc.On("GetRecentRaces", mock.Anything, "alice", 5).Return([]domain.Race{}, nil)
	router := raceRouter(NewRaceHandler(svc))

	rec := doJSON(t, router, http.MethodGet, "/accounts/alice/races?limit=5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/accounts/alice/races?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrMsgInvalidLimit)
}
