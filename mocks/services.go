// Package mocks provides testify mocks for the service interfaces consumed by
// the HTTP layer.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/RaceBot_Go/internal/challenge"
	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/event"
	"github.com/osse101/RaceBot_Go/internal/gacha"
	"github.com/osse101/RaceBot_Go/internal/racing"
)

// MockRacingService is a mock implementation of racing.Service
type MockRacingService struct {
	mock.Mock
}

func (m *MockRacingService) RunSolo(ctx context.Context, req racing.SoloRaceRequest) (*racing.RaceOutcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*racing.RaceOutcome), args.Error(1)
}

func (m *MockRacingService) Challenge(ctx context.Context, req racing.ChallengeRequest) (*challenge.Challenge, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*challenge.Challenge), args.Error(1)
}

func (m *MockRacingService) Accept(ctx context.Context, challengeID uuid.UUID, accepterID string, car domain.CarStats) (*racing.RaceOutcome, error) {
	args := m.Called(ctx, challengeID, accepterID, car)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*racing.RaceOutcome), args.Error(1)
}

func (m *MockRacingService) Decline(ctx context.Context, challengeID uuid.UUID, userID string) error {
	args := m.Called(ctx, challengeID, userID)
	return args.Error(0)
}

func (m *MockRacingService) Showdown(ctx context.Context, req racing.ShowdownRequest) (*racing.RaceOutcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*racing.RaceOutcome), args.Error(1)
}

func (m *MockRacingService) GetRace(ctx context.Context, id uuid.UUID) (*domain.Race, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Race), args.Error(1)
}

func (m *MockRacingService) GetRecentRaces(ctx context.Context, userID string, limit int) ([]domain.Race, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Race), args.Error(1)
}

func (m *MockRacingService) ReconcileUnsettled(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

// MockSettlementService is a mock implementation of settlement.Service
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) ValidateBet(ctx context.Context, accountID string, bet int64) error {
	args := m.Called(ctx, accountID, bet)
	return args.Error(0)
}

func (m *MockSettlementService) PlaceBets(ctx context.Context, race *domain.Race) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, race)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockSettlementService) Settle(ctx context.Context, race *domain.Race) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, race)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockSettlementService) GetBalance(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

// MockGachaService is a mock implementation of gacha.Service
type MockGachaService struct {
	mock.Mock
}

func (m *MockGachaService) UseKey(ctx context.Context, userID string, tier domain.KeyTier) (*gacha.KeyOpening, error) {
	args := m.Called(ctx, userID, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gacha.KeyOpening), args.Error(1)
}

func (m *MockGachaService) BuyKey(ctx context.Context, userID string, tier domain.KeyTier) (*gacha.KeyPurchase, error) {
	args := m.Called(ctx, userID, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gacha.KeyPurchase), args.Error(1)
}

func (m *MockGachaService) ListKeys(ctx context.Context, userID string) ([]domain.KeyInventoryEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KeyInventoryEntry), args.Error(1)
}

// MockActivityService is a mock implementation of activitylog.Service
type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Subscribe(bus event.Bus) error {
	args := m.Called(bus)
	return args.Error(0)
}

func (m *MockActivityService) ListActivity(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActivityLog), args.Error(1)
}

func (m *MockActivityService) CleanupOldActivity(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// NewMockRacingService creates a mock that asserts its expectations on cleanup
func NewMockRacingService(t testingT) *MockRacingService {
	m := &MockRacingService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// NewMockSettlementService creates a mock that asserts its expectations on cleanup
func NewMockSettlementService(t testingT) *MockSettlementService {
	m := &MockSettlementService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// NewMockGachaService creates a mock that asserts its expectations on cleanup
func NewMockGachaService(t testingT) *MockGachaService {
	m := &MockGachaService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// NewMockActivityService creates a mock that asserts its expectations on cleanup
func NewMockActivityService(t testingT) *MockActivityService {
	m := &MockActivityService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
