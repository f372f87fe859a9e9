// Package places resolves user-typed locations to coordinates for nearby
// searches. It knows a handful of São Paulo neighborhoods and accepts raw
// "lat,lng" pairs.
package places

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taiglo/internal/client/models"
	"github.com/dmitrijs2005/taiglo/internal/common"
)

// Default is the city centre, used when no location is given.
var Default = models.Coordinates{Latitude: -23.5505, Longitude: -46.6333}

type place struct {
	key    string
	coords models.Coordinates
}

// Checked in this order; the first match wins.
var neighborhoods = []place{
	{"vila madalena", models.Coordinates{Latitude: -23.5618, Longitude: -46.6918}},
	{"pinheiros", models.Coordinates{Latitude: -23.5634, Longitude: -46.6823}},
	{"jardins", models.Coordinates{Latitude: -23.5678, Longitude: -46.6701}},
	{"centro", models.Coordinates{Latitude: -23.5456, Longitude: -46.6389}},
	{"ibirapuera", models.Coordinates{Latitude: -23.5873, Longitude: -46.6575}},
}

// Names lists the known neighborhoods.
func Names() []string {
	out := make([]string, len(neighborhoods))
	for i, p := range neighborhoods {
		out[i] = p.key
	}
	return out
}

// Lookup finds a neighborhood whose name contains query, or is contained in
// it, ignoring case.
func Lookup(query string) (models.Coordinates, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return models.Coordinates{}, false
	}
	for _, p := range neighborhoods {
		if strings.Contains(q, p.key) || strings.Contains(p.key, q) {
			return p.coords, true
		}
	}
	return models.Coordinates{}, false
}

// Parse accepts "lat,lng" or a neighborhood name. An empty arg yields
// Default.
func Parse(arg string) (models.Coordinates, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Default, nil
	}

	if latS, lngS, found := strings.Cut(arg, ","); found {
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(latS), 64)
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(lngS), 64)
		if errLat == nil && errLng == nil {
			if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
				return models.Coordinates{}, fmt.Errorf("%w: %s", common.ErrInvalidCoordinate, arg)
			}
			return models.Coordinates{Latitude: lat, Longitude: lng}, nil
		}
	}

	if c, ok := Lookup(arg); ok {
		return c, nil
	}
	return models.Coordinates{}, fmt.Errorf("%w: unknown place %q", common.ErrInvalidCoordinate, arg)
}
