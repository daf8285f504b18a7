package race

import (
	"fmt"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/weighted"
)

// Event timestamps fall within this window of the race, in seconds
const (
	EventWindowStart = 5
	EventWindowEnd   = 55
)

var eventTemplates = map[domain.RaceEventType][]string{
	domain.RaceEventOvertake: {
		"%s executes a perfect overtake!",
		"%s finds an opening and passes!",
		"%s makes a bold move to take the lead!",
	},
	domain.RaceEventBoost: {
		"%s hits the nitrous for a speed boost!",
		"%s activates boost at the perfect moment!",
		"%s accelerates with a sudden burst of speed!",
	},
	domain.RaceEventDrift: {
		"%s pulls off an impressive drift through the corner!",
		"%s slides through the turn with precision!",
		"Perfect drift by %s!",
	},
	domain.RaceEventShortcut: {
		"%s takes a risky shortcut!",
		"%s finds a hidden path to gain time!",
		"%s cuts through an alley to make up ground!",
	},
	domain.RaceEventError: {
		"%s nearly loses control on a tight corner!",
		"%s narrowly avoids hitting the barrier!",
		"%s makes a small driving error but recovers!",
	},
}

var driverNames = map[domain.Side]string{
	domain.SideChallenger: "Challenger",
	domain.SideOpponent:   "Opponent",
}

var drivers = []domain.Side{domain.SideChallenger, domain.SideOpponent}

func randomEvent(rnd weighted.Rand) domain.RaceEvent {
	timestamp := weighted.IntRange(rnd, EventWindowStart, EventWindowEnd)
	eventType := domain.AllRaceEventTypes[weighted.Intn(rnd, len(domain.AllRaceEventTypes))]
	driver := drivers[weighted.Intn(rnd, len(drivers))]
	templates := eventTemplates[eventType]
	template := templates[weighted.Intn(rnd, len(templates))]

	return domain.RaceEvent{
		Timestamp:   float64(timestamp),
		Type:        eventType,
		Driver:      driver,
		Description: fmt.Sprintf(template, driverNames[driver]),
	}
}
