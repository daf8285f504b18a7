package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/event"
)

func TestEventMetricsCollector(t *testing.T) {
	bus := event.NewMemoryBus()
	NewEventMetricsCollector().Register(bus)
	ctx := context.Background()

	race := domain.NewRace(domain.RaceKindSolo, domain.TrackOffroad, "alice", "", 50)
	race.Result = &domain.RaceResult{Winner: domain.SideChallenger}

	completed := RacesCompleted.WithLabelValues("solo", "offroad", "challenger")
	expired := ChallengesExpired
	dropped := KeysDropped.WithLabelValues("MYTHIC", "RACE_WIN")
	beforeCompleted := testutil.ToFloat64(completed)
	beforeExpired := testutil.ToFloat64(expired)
	beforeDropped := testutil.ToFloat64(dropped)

	require.NoError(t, bus.Publish(ctx, event.NewRaceCompletedEvent(race)))
	require.NoError(t, bus.Publish(ctx, event.NewChallengeExpiredEvent("c1", "alice", "bob", domain.TrackDrag, 10)))
	require.NoError(t, bus.Publish(ctx, event.NewKeyDroppedEvent(domain.KeyDrop{
		UserID: "alice",
		Tier:   domain.KeyMythic,
		Source: domain.DropSourceRaceWin,
		Track:  domain.TrackDrag,
	})))

	assert.Equal(t, beforeCompleted+1, testutil.ToFloat64(completed))
	assert.Equal(t, beforeExpired+1, testutil.ToFloat64(expired))
	assert.Equal(t, beforeDropped+1, testutil.ToFloat64(dropped))
}

func TestEventMetricsCollector_BadPayload(t *testing.T) {
	c := NewEventMetricsCollector()
	err := c.HandleEvent(context.Background(), event.Event{Type: event.KeyDropped, Payload: "not a payload"})
	assert.NoError(t, err)
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/v1/races/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/races/{id}", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/races/abc", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Equal(t, 0.0, testutil.ToFloat64(HTTPRequestsInFlight))
}
