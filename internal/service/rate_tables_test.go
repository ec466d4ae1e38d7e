package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundstake.io/soundstake/internal/domain"
)

func TestDefaultRateTables_Valid(t *testing.T) {
	tables := DefaultRateTables()
	require.NoError(t, tables.Validate())

	assertDecimal(t, "0.0028", decimalFromRate(tables.CountryRate("Germany").Spotify))
	assertDecimal(t, "0.002", decimalFromRate(tables.CountryRate("Narnia").Spotify))
	assertDecimal(t, "1.4", tables.GenreMultiplier(" Hip-Hop "))
	assertDecimal(t, "1", tables.GenreMultiplier("polka"))
	assertDecimal(t, "2.5", tables.DurationMultiplier(domain.DurationForever))
	assert.Equal(t, 60, tables.Months(domain.Duration5Years))
	assert.Equal(t, 12, tables.Months("unknown"))
	assertDecimal(t, "0.004", tables.PlatformRate(domain.PlatformAppleMusic))
	assertDecimal(t, "27", tables.FallbackROI("hip-hop", domain.Duration2Years))
}

func TestLoadRateTables_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
genre_multipliers:
  pop: 2.0
  k-pop: 1.6
country_rates:
  Norway:
    spotify: 0.004
    youtube: 0.0025
duration_months:
  lifetime: 240
`), 0o600))

	tables, err := LoadRateTables(path)
	require.NoError(t, err)

	assertDecimal(t, "2", tables.GenreMultiplier("pop"))
	assertDecimal(t, "1.6", tables.GenreMultiplier("k-pop"))
	// untouched entries keep their defaults
	assertDecimal(t, "1.1", tables.GenreMultiplier("rock"))
	assertDecimal(t, "0.004", decimalFromRate(tables.CountryRate("Norway").Spotify))
	assertDecimal(t, "0.003", decimalFromRate(tables.CountryRate("US").Spotify))
	assert.Equal(t, 240, tables.Months(domain.DurationForever))
	assert.InDelta(t, 0.25, tables.Split.Investor, 1e-9)
}

func TestLoadRateTables_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRateTables(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	badSplit := filepath.Join(dir, "split.yaml")
	require.NoError(t, os.WriteFile(badSplit, []byte("split: {artist: 0.6, investor: 0.3, platform: 0.2}\n"), 0o600))
	_, err = LoadRateTables(badSplit)
	require.Error(t, err)

	garbage := filepath.Join(dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("genre_multipliers: [1, 2"), 0o600))
	_, err = LoadRateTables(garbage)
	require.Error(t, err)
}

func TestLoadRateTables_EmptyPathIsDefault(t *testing.T) {
	tables, err := LoadRateTables("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRateTables(), tables)
}
