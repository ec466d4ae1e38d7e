package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"soundstake.io/soundstake/internal/domain"
)

// DefaultCountry is used when a platform account reports no country.
const DefaultCountry = "default"

// CountryRates are per-stream payout rates for one country.
type CountryRates struct {
	Spotify float64 `yaml:"spotify"`
	YouTube float64 `yaml:"youtube"`
}

// SplitShares divides gross revenue. The three shares sum to 1.
type SplitShares struct {
	Artist   float64 `yaml:"artist"`
	Investor float64 `yaml:"investor"`
	Platform float64 `yaml:"platform"`
}

// ROIBounds is the accepted range of a computed ROI percentage.
type ROIBounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// RateTables holds every lookup table the performance and ROI math depends on.
// A RateTables value is built once at startup and never mutated afterwards.
type RateTables struct {
	PlatformRates               map[domain.Platform]float64         `yaml:"platform_rates"`
	CountryRates                map[string]CountryRates             `yaml:"country_rates"`
	GenreMultipliers            map[string]float64                  `yaml:"genre_multipliers"`
	DurationMultipliers         map[domain.CampaignDuration]float64 `yaml:"duration_multipliers"`
	DurationMonths              map[domain.CampaignDuration]int     `yaml:"duration_months"`
	FallbackGenreBase           map[string]float64                  `yaml:"fallback_genre_base"`
	FallbackDurationMultipliers map[domain.CampaignDuration]float64 `yaml:"fallback_duration_multipliers"`
	Split                       SplitShares                         `yaml:"split"`
	Bounds                      ROIBounds                           `yaml:"bounds"`
}

// DefaultRateTables returns the built-in industry averages.
func DefaultRateTables() *RateTables {
	return &RateTables{
		PlatformRates: map[domain.Platform]float64{
			domain.PlatformSpotify:     0.003,
			domain.PlatformYouTube:     0.002,
			domain.PlatformDeezer:      0.0025,
			domain.PlatformAppleMusic:  0.004,
			domain.PlatformAmazonMusic: 0.003,
		},
		CountryRates: map[string]CountryRates{
			"US":           {Spotify: 0.003, YouTube: 0.002},
			"UK":           {Spotify: 0.0025, YouTube: 0.0018},
			"Germany":      {Spotify: 0.0028, YouTube: 0.0019},
			"France":       {Spotify: 0.0022, YouTube: 0.0016},
			"Canada":       {Spotify: 0.0026, YouTube: 0.0017},
			"Australia":    {Spotify: 0.0024, YouTube: 0.0016},
			"India":        {Spotify: 0.0008, YouTube: 0.0003},
			"Brazil":       {Spotify: 0.0012, YouTube: 0.0005},
			"Japan":        {Spotify: 0.0032, YouTube: 0.0021},
			"South Korea":  {Spotify: 0.0029, YouTube: 0.0018},
			DefaultCountry: {Spotify: 0.002, YouTube: 0.001},
		},
		GenreMultipliers: map[string]float64{
			"pop":        1.3,
			"hip-hop":    1.4,
			"electronic": 1.2,
			"rock":       1.1,
			"r&b":        1.2,
			"country":    1.0,
			"indie":      1.0,
			"jazz":       0.8,
			"classical":  0.7,
			"folk":       0.9,
		},
		DurationMultipliers: map[domain.CampaignDuration]float64{
			domain.Duration6Months: 0.8,
			domain.Duration1Year:   1.0,
			domain.Duration2Years:  1.3,
			domain.Duration5Years:  1.8,
			domain.DurationForever: 2.5,
		},
		DurationMonths: map[domain.CampaignDuration]int{
			domain.Duration6Months: 6,
			domain.Duration1Year:   12,
			domain.Duration2Years:  24,
			domain.Duration5Years:  60,
			domain.DurationForever: 120,
		},
		FallbackGenreBase: map[string]float64{
			"pop":        12,
			"hip-hop":    15,
			"electronic": 10,
			"rock":       8,
			"r&b":        11,
			"country":    9,
			"indie":      7,
			"jazz":       5,
			"classical":  4,
			"folk":       6,
		},
		FallbackDurationMultipliers: map[domain.CampaignDuration]float64{
			domain.Duration6Months: 0.5,
			domain.Duration1Year:   1,
			domain.Duration2Years:  1.8,
			domain.Duration5Years:  3.5,
			domain.DurationForever: 5,
		},
		Split:  SplitShares{Artist: 0.70, Investor: 0.25, Platform: 0.05},
		Bounds: ROIBounds{Min: -50, Max: 500},
	}
}

// LoadRateTables overlays the YAML file at path on the defaults.
// An empty path returns the defaults unchanged.
func LoadRateTables(path string) (*RateTables, error) {
	tables := DefaultRateTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate tables %s: %w", path, err)
	}

	var override RateTables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse rate tables %s: %w", path, err)
	}
	tables.merge(&override)

	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("rate tables %s: %w", path, err)
	}
	return tables, nil
}

func (t *RateTables) merge(o *RateTables) {
	mergeMap(t.PlatformRates, o.PlatformRates)
	mergeMap(t.CountryRates, o.CountryRates)
	mergeMap(t.GenreMultipliers, o.GenreMultipliers)
	mergeMap(t.DurationMultipliers, o.DurationMultipliers)
	mergeMap(t.DurationMonths, o.DurationMonths)
	mergeMap(t.FallbackGenreBase, o.FallbackGenreBase)
	mergeMap(t.FallbackDurationMultipliers, o.FallbackDurationMultipliers)
	if o.Split != (SplitShares{}) {
		t.Split = o.Split
	}
	if o.Bounds != (ROIBounds{}) {
		t.Bounds = o.Bounds
	}
}

func mergeMap[K comparable, V any](dst, src map[K]V) {
	for k, v := range src {
		dst[k] = v
	}
}

// Validate rejects tables that would break the split or bound invariants.
func (t *RateTables) Validate() error {
	sum := decimal.NewFromFloat(t.Split.Artist).
		Add(decimal.NewFromFloat(t.Split.Investor)).
		Add(decimal.NewFromFloat(t.Split.Platform))
	if !sum.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("revenue split must sum to 1, got %s", sum)
	}
	if t.Bounds.Min >= t.Bounds.Max {
		return fmt.Errorf("roi bounds min %v must be below max %v", t.Bounds.Min, t.Bounds.Max)
	}
	if _, ok := t.CountryRates[DefaultCountry]; !ok {
		return fmt.Errorf("country_rates must contain a %q entry", DefaultCountry)
	}
	for d, m := range t.DurationMonths {
		if m <= 0 {
			return fmt.Errorf("duration_months[%s] must be positive", d)
		}
	}
	return nil
}

// CountryRate returns the per-stream rates for country, falling back to the default row.
func (t *RateTables) CountryRate(country string) CountryRates {
	if r, ok := t.CountryRates[country]; ok {
		return r
	}
	return t.CountryRates[DefaultCountry]
}

// PlatformRate returns the gross per-unit rate used for projections.
func (t *RateTables) PlatformRate(p domain.Platform) decimal.Decimal {
	return decimal.NewFromFloat(t.PlatformRates[p])
}

// GenreMultiplier defaults to 1.0 for unknown genres.
func (t *RateTables) GenreMultiplier(genre string) decimal.Decimal {
	return lookupOr(t.GenreMultipliers, normalizeGenre(genre), 1.0)
}

// DurationMultiplier defaults to 1.0 for unknown durations.
func (t *RateTables) DurationMultiplier(d domain.CampaignDuration) decimal.Decimal {
	return lookupOr(t.DurationMultipliers, d, 1.0)
}

// Months defaults to 12 for unknown durations.
func (t *RateTables) Months(d domain.CampaignDuration) int {
	if m, ok := t.DurationMonths[d]; ok {
		return m
	}
	return 12
}

// FallbackROI is the genre/duration estimate used when the computed ROI is out of bounds.
func (t *RateTables) FallbackROI(genre string, d domain.CampaignDuration) decimal.Decimal {
	base := lookupOr(t.FallbackGenreBase, normalizeGenre(genre), 8)
	mult := lookupOr(t.FallbackDurationMultipliers, d, 1)
	return domain.Round1(base.Mul(mult))
}

func lookupOr[K comparable](m map[K]float64, key K, def float64) decimal.Decimal {
	if v, ok := m[key]; ok {
		return decimal.NewFromFloat(v)
	}
	return decimal.NewFromFloat(def)
}

func normalizeGenre(genre string) string {
	return strings.ToLower(strings.TrimSpace(genre))
}
