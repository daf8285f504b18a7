package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrackType(t *testing.T) {
	tests := []struct {
		in   string
		want TrackType
	}{
		{"street", TrackStreet},
		{"Circuit", TrackCircuit},
		{" DRAG ", TrackDrag},
		{"offroad", TrackOffroad},
		{"drift", TrackDrift},
	}
	for _, tt := range tests {
		got, err := ParseTrackType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseTrackType_Unknown(t *testing.T) {
	_, err := ParseTrackType("moon")
	require.Error(t, err)

	var trackErr *UnknownTrackTypeError
	require.True(t, errors.As(err, &trackErr))
	assert.Equal(t, "moon", trackErr.Value)
	assert.ErrorIs(t, err, ErrUnknownTrackType)
	assert.Equal(t, ErrMsgUnknownTrackType, Reason(err))
}

func TestTrackType_DisplayName(t *testing.T) {
	assert.Equal(t, "Offroad", TrackOffroad.DisplayName())
	assert.Equal(t, "Street", TrackStreet.DisplayName())
}

func TestCarStats_Clamped(t *testing.T) {
	s := CarStats{Speed: -5, Acceleration: 40, Handling: -1, Boost: 0}
	assert.Equal(t, CarStats{Speed: 0, Acceleration: 40, Handling: 0, Boost: 0}, s.Clamped())
}

func TestRace_Advance(t *testing.T) {
	race := NewRace(RaceKindSolo, TrackDrift, "u1", "", 100)
	assert.Equal(t, RaceStatusCreated, race.Status)

	assert.ErrorIs(t, race.Advance(RaceStatusResolved), ErrInvalidRaceTransition)

	require.NoError(t, race.Advance(RaceStatusScored))
	require.NoError(t, race.Advance(RaceStatusResolved))
	require.NoError(t, race.Advance(RaceStatusSettled))

	assert.ErrorIs(t, race.Advance(RaceStatusSettled), ErrInvalidRaceTransition)
}

func TestRace_WinnerID(t *testing.T) {
	race := NewRace(RaceKindPvP, TrackStreet, "alice", "bob", 50)
	assert.Empty(t, race.WinnerID())

	race.Result = &RaceResult{Winner: SideOpponent}
	assert.Equal(t, "bob", race.WinnerID())

	race.Result = &RaceResult{Winner: SideChallenger}
	assert.Equal(t, "alice", race.WinnerID())
}

func TestReason(t *testing.T) {
	err := &InsufficientBalanceError{AccountID: "u1", Balance: 10, Required: 50}
	assert.Equal(t, "insufficient balance", Reason(err))
	assert.Equal(t, ErrMsgInvalidBet, Reason(ErrInvalidBet))
	assert.Equal(t, ErrMsgAlreadySettled, Reason(&AlreadySettledError{}))
	assert.Empty(t, Reason(errors.New("boom")))
	assert.Empty(t, Reason(nil))
}

func TestParseKeyTier(t *testing.T) {
	tier, err := ParseKeyTier("premium")
	require.NoError(t, err)
	assert.Equal(t, KeyPremium, tier)

	_, err = ParseKeyTier("golden")
	assert.ErrorIs(t, err, ErrUnknownKeyTier)
}
