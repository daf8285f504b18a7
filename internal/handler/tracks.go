package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/scoring"
)

// statParams are the query parameters a rating request reads, in CarStats order
var statParams = []string{"speed", "acceleration", "handling", "boost"}

// TrackInfo describes one track and its stat weights
type TrackInfo struct {
	Track   domain.TrackType `json:"track"`
	Name    string           `json:"name"`
	Weights scoring.Weights  `json:"weights"`
}

// HandleListTracks handles GET /tracks
func HandleListTracks() http.HandlerFunc {
	tracks := make([]TrackInfo, 0, len(domain.AllTrackTypes))
	for _, t := range domain.AllTrackTypes {
		weights, _ := scoring.WeightsFor(t)
		tracks = append(tracks, TrackInfo{Track: t, Name: t.DisplayName(), Weights: weights})
	}
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, DataResponse{Data: tracks})
	}
}

// HandleGetTrackRating handles GET /tracks/{track}/rating?speed=&acceleration=&handling=&boost=
func HandleGetTrackRating() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := getPathParam(w, r, "track")
		if !ok {
			return
		}
		track, err := domain.ParseTrackType(raw)
		if err != nil {
			respondServiceError(w, r, ErrMsgInvalidRequestSummary, err)
			return
		}

		values := make([]int, len(statParams))
		for i, name := range statParams {
			v, err := strconv.Atoi(GetOptionalQueryParam(r, name, "0"))
			if err != nil || v < 0 {
				respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidStat, name))
				return
			}
			values[i] = v
		}

		rating, err := scoring.Rate(domain.CarStats{
			Speed:        values[0],
			Acceleration: values[1],
			Handling:     values[2],
			Boost:        values[3],
		}, track)
		if err != nil {
			respondServiceError(w, r, ErrMsgInvalidRequestSummary, err)
			return
		}
		respondJSON(w, http.StatusOK, rating)
	}
}
