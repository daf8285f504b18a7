package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/repository"
)

const raceColumns = `id, kind, track, challenger_id, COALESCE(opponent_id, ''), challenger_car,
	opponent_car, bet, status, result, created_at, settled_at`

// RaceRepository implements repository.Races for PostgreSQL
type RaceRepository struct {
	db *pgxpool.Pool
}

// NewRaceRepository creates a new race record repository
func NewRaceRepository(db *pgxpool.Pool) *RaceRepository {
	return &RaceRepository{db: db}
}

// CreateRace inserts a new race record
func (r *RaceRepository) CreateRace(ctx context.Context, race *domain.Race) error {
	challengerCar, opponentCar, result, err := marshalRace(race)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO races (id, kind, track, challenger_id, opponent_id, challenger_car,
			opponent_car, bet, status, result, created_at, settled_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12)
	`, race.ID, string(race.Kind), string(race.Track), race.ChallengerID, race.OpponentID,
		challengerCar, opponentCar, race.Bet, string(race.Status), result, race.CreatedAt, race.SettledAt)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertRace, err)
	}
	return nil
}

// UpdateRace stores the cars, status and result of an existing race
func (r *RaceRepository) UpdateRace(ctx context.Context, race *domain.Race) error {
	challengerCar, opponentCar, result, err := marshalRace(race)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE races
		SET challenger_car = $2, opponent_car = $3, status = $4, result = $5, settled_at = $6
		WHERE id = $1
	`, race.ID, challengerCar, opponentCar, string(race.Status), result, race.SettledAt)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateRace, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRaceNotFound, race.ID)
	}
	return nil
}

// GetRace returns a race by ID
func (r *RaceRepository) GetRace(ctx context.Context, id uuid.UUID) (*domain.Race, error) {
	rows, err := r.db.Query(ctx, `SELECT `+raceColumns+` FROM races WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryRace, err)
	}
	race, err := pgx.CollectExactlyOneRow(rows, scanRace)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRaceNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanRace, err)
	}
	return &race, nil
}

// GetRecentRaces returns the latest races a user took part in, newest first
func (r *RaceRepository) GetRecentRaces(ctx context.Context, userID string, limit int) ([]domain.Race, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+raceColumns+`
		FROM races
		WHERE challenger_id = $1 OR opponent_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryRaces, err)
	}
	races, err := pgx.CollectRows(rows, scanRace)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanRaces, err)
	}
	return races, nil
}

// ListUnsettledRaces returns staked races left Resolved after their bets were
// taken, oldest first. A race whose payout was claimed but whose status was not
// saved is included too; settling it again is rejected as already settled.
func (r *RaceRepository) ListUnsettledRaces(ctx context.Context, cutoff time.Time, limit int) ([]domain.Race, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+raceColumns+`
		FROM races
		WHERE status = $1
		  AND kind <> $2
		  AND result IS NOT NULL
		  AND created_at < $3
		  AND EXISTS (
			SELECT 1 FROM race_settlements s
			WHERE s.race_id = races.id AND s.phase = $4
		  )
		ORDER BY created_at ASC
		LIMIT $5
	`, string(domain.RaceStatusResolved), string(domain.RaceKindShowdown), cutoff, repository.PhaseBets, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryUnsettledRaces, err)
	}
	races, err := pgx.CollectRows(rows, scanRace)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanRaces, err)
	}
	return races, nil
}

func marshalRace(race *domain.Race) (challengerCar, opponentCar, result []byte, err error) {
	if challengerCar, err = json.Marshal(race.ChallengerCar); err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", ErrMsgFailedToMarshalChallengerCar, err)
	}
	if opponentCar, err = json.Marshal(race.OpponentCar); err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", ErrMsgFailedToMarshalOpponentCar, err)
	}
	if race.Result != nil {
		if result, err = json.Marshal(race.Result); err != nil {
			return nil, nil, nil, fmt.Errorf("%s: %w", ErrMsgFailedToMarshalRaceResult, err)
		}
	}
	return challengerCar, opponentCar, result, nil
}

func scanRace(row pgx.CollectableRow) (domain.Race, error) {
	var (
		race                       domain.Race
		kind, track, status        string
		challengerCar, opponentCar []byte
		result                     []byte
		settledAt                  *time.Time
	)
	err := row.Scan(&race.ID, &kind, &track, &race.ChallengerID, &race.OpponentID,
		&challengerCar, &opponentCar, &race.Bet, &status, &result, &race.CreatedAt, &settledAt)
	if err != nil {
		return race, err
	}

	race.Kind = domain.RaceKind(kind)
	race.Track = domain.TrackType(track)
	race.Status = domain.RaceStatus(status)
	race.SettledAt = settledAt

	if err := json.Unmarshal(challengerCar, &race.ChallengerCar); err != nil {
		return race, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeChallengerCar, err)
	}
	if err := json.Unmarshal(opponentCar, &race.OpponentCar); err != nil {
		return race, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeOpponentCar, err)
	}
	if len(result) > 0 {
		race.Result = &domain.RaceResult{}
		if err := json.Unmarshal(result, race.Result); err != nil {
			return race, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeRaceResult, err)
		}
	}
	return race, nil
}
