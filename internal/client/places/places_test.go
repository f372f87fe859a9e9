package places

import (
	"testing"

	"github.com/dmitrijs2005/taiglo/internal/client/models"
	"github.com/dmitrijs2005/taiglo/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"Vila Madalena SP", "vila madalena", true},
		{"pinh", "pinheiros", true},
		{"  JARDINS ", "jardins", true},
		{"Parque Ibirapuera", "ibirapuera", true},
		{"Mooca", "", false},
		{"", "", false},
	}

	byName := map[string]models.Coordinates{}
	for _, p := range neighborhoods {
		byName[p.key] = p.coords
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, ok := Lookup(tt.query)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, byName[tt.want], got)
			}
		})
	}
}

func TestLookup_FirstMatchWins(t *testing.T) {
	// "a" is contained in several names; the first key in order is used.
	got, ok := Lookup("a")
	require.True(t, ok)
	assert.Equal(t, neighborhoods[0].coords, got)
}

func TestParse(t *testing.T) {
	c, err := Parse("-23.56, -46.69")
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Latitude: -23.56, Longitude: -46.69}, c)

	c, err = Parse("")
	require.NoError(t, err)
	assert.Equal(t, Default, c)

	c, err = Parse("Centro")
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Latitude: -23.5456, Longitude: -46.6389}, c)

	_, err = Parse("91,0")
	assert.ErrorIs(t, err, common.ErrInvalidCoordinate)

	_, err = Parse("Mooca")
	assert.ErrorIs(t, err, common.ErrInvalidCoordinate)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"vila madalena", "pinheiros", "jardins", "centro", "ibirapuera"}, Names())
}
