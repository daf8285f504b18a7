package race

import (
	"testing"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/weighted"
)

func BenchmarkResolve(b *testing.B) {
	e := NewEngineWithRand(weighted.Seeded(1), weighted.Seeded(2))
	for _, bc := range []struct {
		name string
		cfg  Config
	}{
		{"Timed", TimedRace},
		{"Showdown", ShowdownRace},
	} {
		b.Run(bc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := e.Resolve(fastCar, handlingCar, domain.TrackCircuit, bc.cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkGenerateOpponent(b *testing.B) {
	rnd := weighted.Seeded(7)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = GenerateOpponent(rnd, fastCar)
	}
}
