package gacha

import (
	"context"
	"fmt"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/logger"
	"github.com/osse101/RaceBot_Go/internal/metrics"
	"github.com/osse101/RaceBot_Go/internal/repository"
	"github.com/osse101/RaceBot_Go/internal/weighted"
)

// KeyOpening is the outcome of using a key
type KeyOpening struct {
	UserID    string         `json:"user_id"`
	Tier      domain.KeyTier `json:"key_type"`
	Opened    bool           `json:"opened"`
	Rarity    domain.Rarity  `json:"rarity,omitempty"`
	Remaining int            `json:"remaining"`
}

// KeyPurchase is the outcome of buying a key
type KeyPurchase struct {
	UserID   string         `json:"user_id"`
	Tier     domain.KeyTier `json:"key_type"`
	Price    int64          `json:"price"`
	Balance  int64          `json:"balance"`
	Quantity int            `json:"quantity"`
}

// Service defines the interface for key inventory operations
type Service interface {
	BuyKey(ctx context.Context, userID string, tier domain.KeyTier) (*KeyPurchase, error)
	UseKey(ctx context.Context, userID string, tier domain.KeyTier) (*KeyOpening, error)
	ListKeys(ctx context.Context, userID string) ([]domain.KeyInventoryEntry, error)
}

type service struct {
	repo repository.Keys
	rnd  weighted.Rand // Injectable for testing
}

// NewService creates a new key service
func NewService(repo repository.Keys) Service {
	return &service{
		repo: repo,
		rnd:  weighted.Default,
	}
}

// UseKey consumes one key and rolls a key-adjusted rarity. An empty stack
// is not an error: the opening reports Opened=false and nothing is written.
func (s *service) UseKey(ctx context.Context, userID string, tier domain.KeyTier) (*KeyOpening, error) {
	log := logger.FromContext(ctx)

	if _, err := KeyPrice(tier); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	consumed, err := tx.ConsumeKey(ctx, userID, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to consume key: %w", err)
	}
	if !consumed {
		log.Info("Key use skipped, none owned", "user_id", userID, "key_type", tier)
		return &KeyOpening{UserID: userID, Tier: tier}, nil
	}

	rarity, err := RollRarityWithKey(s.rnd, tier)
	if err != nil {
		return nil, err
	}

	entry, err := tx.GetOrCreateKeyEntry(ctx, userID, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to read key entry: %w", err)
	}

	if err := tx.RecordActivity(ctx, domain.ActivityLog{
		Type:   domain.ActivityKeyUsed,
		UserID: userID,
		Details: map[string]interface{}{
			"keyType": string(tier),
			"rarity":  string(rarity),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.KeysOpened.WithLabelValues(string(tier), string(rarity)).Inc()
	log.Info("Key opened", "user_id", userID, "key_type", tier, "rarity", rarity)

	return &KeyOpening{
		UserID:    userID,
		Tier:      tier,
		Opened:    true,
		Rarity:    rarity,
		Remaining: entry.Quantity,
	}, nil
}

// BuyKey debits the tier's price and credits one key in a single
// transaction. An account that cannot cover the price gets an
// InsufficientBalanceError and nothing is written.
func (s *service) BuyKey(ctx context.Context, userID string, tier domain.KeyTier) (*KeyPurchase, error) {
	log := logger.FromContext(ctx)

	price, err := KeyPrice(tier)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginPurchaseTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	balance, err := tx.GetBalanceForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock balance: %w", err)
	}
	if balance < price {
		return nil, &domain.InsufficientBalanceError{AccountID: userID, Balance: balance, Required: price}
	}

	balance, err = tx.AdjustBalance(ctx, userID, -price)
	if err != nil {
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	if err := tx.RecordTransaction(ctx, domain.Transaction{
		UserID:      userID,
		Type:        domain.LedgerKeyPurchase,
		Amount:      -price,
		Description: fmt.Sprintf("Purchased %s key", tier),
	}); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	entry, err := tx.GetOrCreateKeyEntry(ctx, userID, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to read key entry: %w", err)
	}
	entry, err = tx.IncrementKeyEntry(ctx, entry.ID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to credit key: %w", err)
	}

	if err := tx.RecordActivity(ctx, domain.ActivityLog{
		Type:   domain.ActivityKeyPurchased,
		UserID: userID,
		Details: map[string]interface{}{
			"keyType": string(tier),
			"price":   price,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.KeysPurchased.WithLabelValues(string(tier)).Inc()
	log.Info("Key purchased", "user_id", userID, "key_type", tier, "price", price, "balance", balance)

	return &KeyPurchase{
		UserID:   userID,
		Tier:     tier,
		Price:    price,
		Balance:  balance,
		Quantity: entry.Quantity,
	}, nil
}

// ListKeys returns every key stack the user owns
func (s *service) ListKeys(ctx context.Context, userID string) ([]domain.KeyInventoryEntry, error) {
	entries, err := s.repo.GetKeys(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return entries, nil
}
