// Package race resolves a race between two cars on a track.
//
// The engine holds no mutable state. Each call scores both participants with the
// same track weights and independent draws, picks a winner, grades the margin and
// annotates the result with cosmetic events drawn from a separate random stream.
package race

import (
	"math"
	"sort"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/scoring"
	"github.com/osse101/RaceBot_Go/internal/weighted"
)

// Margin tier upper bounds, as a percentage of the mean score
const (
	MarginHairThreshold        = 5.0
	MarginSmallThreshold       = 15.0
	MarginComfortableThreshold = 30.0
)

// Config selects the perturbation, comparison mode and event count for a race family
type Config struct {
	Perturbation scoring.Perturbation
	Mode         domain.ResolutionMode
	MinEvents    int
	MaxEvents    int
}

// Race families
var (
	// TimedRace is used for staked PvP and solo races
	TimedRace = Config{
		Perturbation: scoring.HeadToHead,
		Mode:         domain.ModeTimed,
		MinEvents:    3,
		MaxEvents:    5,
	}
	// ShowdownRace is the no-bet car comparison
	ShowdownRace = Config{
		Perturbation: scoring.Showdown,
		Mode:         domain.ModeScore,
		MinEvents:    2,
		MaxEvents:    3,
	}
)

// Engine resolves races. It is safe for concurrent use when its random
// sources are; weighted.Default is.
type Engine struct {
	scoreRnd weighted.Rand
	eventRnd weighted.Rand
}

// NewEngine creates an engine backed by the process-wide random source
func NewEngine() *Engine {
	return &Engine{
		scoreRnd: weighted.Default,
		eventRnd: weighted.Default,
	}
}

// NewEngineWithRand creates an engine with separate scoring and event streams
func NewEngineWithRand(scoreRnd, eventRnd weighted.Rand) *Engine {
	return &Engine{
		scoreRnd: scoreRnd,
		eventRnd: eventRnd,
	}
}

// Resolve scores both cars and returns the immutable result. The challenger wins exact ties.
func (e *Engine) Resolve(challenger, opponent domain.CarStats, track domain.TrackType, cfg Config) (*domain.RaceResult, error) {
	if !track.Valid() {
		return nil, &domain.UnknownTrackTypeError{Value: string(track)}
	}
	perturb := cfg.Perturbation
	if perturb == nil {
		perturb = scoring.None{}
	}

	cBase, err := scoring.Score(challenger, track)
	if err != nil {
		return nil, err
	}
	oBase, err := scoring.Score(opponent, track)
	if err != nil {
		return nil, err
	}

	result := &domain.RaceResult{
		Track:           track,
		Mode:            cfg.Mode,
		ChallengerScore: perturb.Apply(cBase, e.scoreRnd),
		OpponentScore:   perturb.Apply(oBase, e.scoreRnd),
	}

	switch cfg.Mode {
	case domain.ModeTimed:
		result.ChallengerTime = scoring.FinishTime(result.ChallengerScore)
		result.OpponentTime = scoring.FinishTime(result.OpponentScore)
		result.TimeDifference = math.Abs(result.ChallengerTime - result.OpponentTime)
		result.Winner = pickWinner(result.ChallengerTime <= result.OpponentTime)
	default:
		result.Mode = domain.ModeScore
		result.Winner = pickWinner(result.ChallengerScore >= result.OpponentScore)
	}

	result.MarginPercent = MarginPercent(result.ChallengerScore, result.OpponentScore)
	result.Margin = DescribeMargin(result.MarginPercent)
	result.Events = e.generateEvents(cfg.MinEvents, cfg.MaxEvents)

	return result, nil
}

func pickWinner(challengerWins bool) domain.Side {
	if challengerWins {
		return domain.SideChallenger
	}
	return domain.SideOpponent
}

// MarginPercent is the absolute score difference relative to the mean score
func MarginPercent(a, b float64) float64 {
	mean := (a + b) / 2
	if mean == 0 {
		return 0
	}
	return math.Abs(a-b) / math.Abs(mean) * 100
}

// DescribeMargin buckets a margin percentage
func DescribeMargin(pct float64) domain.MarginDescriptor {
	switch {
	case pct < MarginHairThreshold:
		return domain.MarginByAHair
	case pct < MarginSmallThreshold:
		return domain.MarginSmall
	case pct < MarginComfortableThreshold:
		return domain.MarginComfortably
	default:
		return domain.MarginByALandslide
	}
}

func (e *Engine) generateEvents(minEvents, maxEvents int) []domain.RaceEvent {
	if maxEvents <= 0 {
		return []domain.RaceEvent{}
	}
	n := weighted.IntRange(e.eventRnd, minEvents, maxEvents)
	events := make([]domain.RaceEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, randomEvent(e.eventRnd))
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
	return events
}
