package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/gacha"
	"github.com/osse101/RaceBot_Go/mocks"
)

type accountMocks struct {
	settlement *mocks.MockSettlementService
	keys       *mocks.MockGachaService
	activity   *mocks.MockActivityService
}

func accountRouter(t *testing.T) (chi.Router, accountMocks) {
	m := accountMocks{
		settlement: mocks.NewMockSettlementService(t),
		keys:       mocks.NewMockGachaService(t),
		activity:   mocks.NewMockActivityService(t),
	}
	h := NewAccountHandler(m.settlement, m.keys, m.activity)

	r := chi.NewRouter()
	r.Get("/accounts/{id}/balance", h.HandleGetBalance)
	r.Get("/accounts/{id}/keys", h.HandleListKeys)
	r.Post("/accounts/{id}/keys/use", h.HandleUseKey)
	r.Post("/accounts/{id}/keys/buy", h.HandleBuyKey)
	r.Get("/accounts/{id}/activity", h.HandleGetActivity)
	return r, m
}

func TestHandleGetBalance(t *testing.T) {
	router, m := accountRouter(t)
	m.settlement.On("GetBalance", mock.Anything, "alice").Return(int64(1250), nil)

	rec := doJSON(t, router, http.MethodGet, "/accounts/alice/balance", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":"alice","balance":1250}`, rec.Body.String())
}

func TestHandleListKeys(t *testing.T) {
	t.Run("Empty inventory is an empty list", func(t *testing.T) {
		router, m := accountRouter(t)
		m.keys.On("ListKeys", mock.Anything, "alice").Return(nil, nil)

		rec := doJSON(t, router, http.MethodGet, "/accounts/alice/keys", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
	})

	t.Run("Store failure", func(t *testing.T) {
		router, m := accountRouter(t)
		m.keys.On("ListKeys", mock.Anything, "alice").Return(nil, errors.New("boom"))

		rec := doJSON(t, router, http.MethodGet, "/accounts/alice/keys", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandleUseKey(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMocks     func(*mocks.MockGachaService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Unknown tier",
			body:           UseKeyRequest{KeyType: "golden"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"keytype":"Invalid key type"`,
		},
		{
			name: "None owned",
			body: UseKeyRequest{KeyType: "premium"},
			setupMocks: func(m *mocks.MockGachaService) {
				m.On("UseKey", mock.Anything, "alice", domain.KeyPremium).
					Return(&gacha.KeyOpening{UserID: "alice", Tier: domain.KeyPremium}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   MsgNoKeyOwned,
		},
		{
			name: "Opened",
			body: UseKeyRequest{KeyType: "MYTHIC"},
			setupMocks: func(m *mocks.MockGachaService) {
				m.On("UseKey", mock.Anything, "alice", domain.KeyMythic).
					Return(&gacha.KeyOpening{UserID: "alice", Tier: domain.KeyMythic, Opened: true, Rarity: domain.RarityEpic}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"rarity":"EPIC"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := accountRouter(t)
			if tt.setupMocks != nil {
				tt.setupMocks(m.keys)
			}
			rec := doJSON(t, router, http.MethodPost, "/accounts/alice/keys/use", tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestHandleBuyKey(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMocks     func(*mocks.MockGachaService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Unknown tier",
			body:           BuyKeyRequest{KeyType: "golden"},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"keytype":"Invalid key type"`,
		},
		{
			name: "Not enough money",
			body: BuyKeyRequest{KeyType: "legendary"},
			setupMocks: func(m *mocks.MockGachaService) {
				m.On("BuyKey", mock.Anything, "alice", domain.KeyLegendary).
					Return(nil, &domain.InsufficientBalanceError{AccountID: "alice", Balance: 1000, Required: 35000})
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgNotEnoughMoneyError,
		},
		{
			name: "Bought",
			body: BuyKeyRequest{KeyType: "standard"},
			setupMocks: func(m *mocks.MockGachaService) {
				m.On("BuyKey", mock.Anything, "alice", domain.KeyStandard).
					Return(&gacha.KeyPurchase{UserID: "alice", Tier: domain.KeyStandard, Price: 5000, Balance: 1000, Quantity: 1}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"price":5000`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := accountRouter(t)
			if tt.setupMocks != nil {
				tt.setupMocks(m.keys)
			}
			rec := doJSON(t, router, http.MethodPost, "/accounts/alice/keys/buy", tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestHandleGetActivity(t *testing.T) {
	router, m := accountRouter(t)
	m.activity.On("ListActivity", mock.Anything, "alice", 0).Return([]domain.ActivityLog{
		{Type: domain.ActivitySoloRaceCompleted, UserID: "alice"},
	}, nil)

	rec := doJSON(t, router, http.MethodGet, "/accounts/alice/activity", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ActivitySoloRaceCompleted)

	rec = doJSON(t, router, http.MethodGet, "/accounts/alice/activity?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
