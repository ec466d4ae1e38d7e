package service

import (
	"time"

	"github.com/shopspring/decimal"

	"soundstake.io/soundstake/internal/domain"
)

const (
	roiMethodology = "ROI calculated using: (1) Historical streaming performance data, " +
		"(2) Current platform metrics from verification, (3) Genre-specific performance multipliers, " +
		"(4) Industry-standard revenue per stream rates, (5) 70/25/5 revenue split model"
	roiDisclaimer      = "ROI calculated based on historical performance data and industry averages. Actual results may vary."
	investorDisclaimer = "Projections based on historical data and industry averages. Not guaranteed."

	confidenceBase = 50
	confidenceCap  = 85

	// fallbackAnnualReturn backs expectedReturn on campaigns without an ROI snapshot.
	fallbackAnnualReturn = 0.15
)

// ROIProjectionEngine turns performance history and verification metadata into
// an advertised return. It is pure: all inputs are arguments or injected tables.
type ROIProjectionEngine struct {
	tables *RateTables
	now    func() time.Time
}

// NewROIProjectionEngine creates an engine bound to tables.
func NewROIProjectionEngine(tables *RateTables) *ROIProjectionEngine {
	if tables == nil {
		tables = DefaultRateTables()
	}
	return &ROIProjectionEngine{tables: tables, now: func() time.Time { return time.Now().UTC() }}
}

// Tables returns the engine's rate tables.
func (e *ROIProjectionEngine) Tables() *RateTables { return e.tables }

// baselineMetrics are the per-platform figures read off a verification.
// Unmatched platforms stay zero and still go through the estimators, so an
// unverified song is projected from the estimators' floors.
type baselineMetrics struct {
	popularity  int
	subscribers int64
	rank        int64
}

func baselineFromVerification(ver domain.VerificationSummary) baselineMetrics {
	var b baselineMetrics
	if ver.Spotify.Found {
		b.popularity = ver.Spotify.Popularity
	}
	if ver.YouTube.Found {
		b.subscribers = ver.YouTube.Subscribers
	}
	if ver.Deezer.Found {
		b.rank = ver.Deezer.Rank
	}
	return b
}

// historicalOr prefers a non-zero historical figure over the estimate.
func historicalOr(historical int64, estimate decimal.Decimal) decimal.Decimal {
	if historical > 0 {
		return decimal.NewFromInt(historical)
	}
	return estimate
}

// estimateFromPopularity maps Spotify's 0-100 popularity to monthly streams.
func estimateFromPopularity(popularity int) int64 {
	switch {
	case popularity >= 80:
		return 50000
	case popularity >= 60:
		return 25000
	case popularity >= 40:
		return 10000
	case popularity >= 20:
		return 5000
	default:
		return 1000
	}
}

// estimateFromSubscribers maps channel size to monthly views via an engagement ratio.
func estimateFromSubscribers(subscribers int64) decimal.Decimal {
	subs := decimal.NewFromInt(subscribers)
	switch {
	case subscribers >= 100000:
		return subs.Mul(decimal.NewFromFloat(0.5))
	case subscribers >= 10000:
		return subs.Mul(decimal.NewFromFloat(0.3))
	case subscribers >= 1000:
		return subs.Mul(decimal.NewFromFloat(0.2))
	default:
		return domain.MaxDecimal(subs.Mul(decimal.NewFromFloat(0.1)), decimal.NewFromInt(500))
	}
}

func estimateFromRank(rank int64) int64 {
	switch {
	case rank >= 500000:
		return 20000
	case rank >= 100000:
		return 10000
	case rank >= 50000:
		return 5000
	case rank >= 10000:
		return 2000
	default:
		return 500
	}
}

// CalculateAutomaticROI projects gross revenue over the campaign horizon and
// derives the investor ROI. The result always lies within the table bounds.
func (e *ROIProjectionEngine) CalculateAutomaticROI(
	inputs domain.CampaignInputs,
	snap domain.PerformanceSnapshot,
	ver domain.VerificationSummary,
) domain.ROIProjection {
	t := e.tables
	baseline := baselineFromVerification(ver)

	growth := t.GenreMultiplier(inputs.Genre).
		Mul(t.DurationMultiplier(inputs.Duration)).
		Mul(decimal.NewFromInt(int64(t.Months(inputs.Duration))))

	type platformBase struct {
		platform domain.Platform
		base     decimal.Decimal
	}
	bases := []platformBase{
		{domain.PlatformSpotify, historicalOr(snap.Spotify.Streams, decimal.NewFromInt(estimateFromPopularity(baseline.popularity)))},
		{domain.PlatformYouTube, historicalOr(snap.YouTube.Views, estimateFromSubscribers(baseline.subscribers))},
		{domain.PlatformDeezer, decimal.NewFromInt(estimateFromRank(baseline.rank))},
	}

	total := decimal.Zero
	projections := make([]domain.PlatformProjection, 0, len(bases))
	for _, b := range bases {
		units := b.base.Mul(growth).Round(0)
		revenue := units.Mul(t.PlatformRate(b.platform))
		total = total.Add(revenue)
		projections = append(projections, domain.PlatformProjection{
			Platform:       b.platform,
			MonthlyBase:    b.base,
			ProjectedUnits: units.IntPart(),
			Revenue:        domain.Round2(revenue),
		})
	}
	total = domain.Round2(total)

	split := e.Split(total)
	roi, fallback := e.boundedROI(inputs, split.InvestorShare)

	return domain.ROIProjection{
		Projections:           projections,
		TotalGrossRevenue:     total,
		Split:                 split,
		ExpectedROIPercentage: roi,
		IsFallback:            fallback,
		Confidence:            Confidence(snap, ver),
		Methodology:           roiMethodology,
		Disclaimer:            roiDisclaimer,
		DataSources: domain.DataSources{
			Historical:   snap.HasData,
			Verification: ver.Spotify.Found || ver.YouTube.Found || ver.Deezer.Found,
		},
		CalculatedAt: e.now(),
	}
}

// Split divides total per the table shares, each rounded to cents.
func (e *ROIProjectionEngine) Split(total decimal.Decimal) domain.RevenueSplit {
	s := e.tables.Split
	return domain.RevenueSplit{
		ArtistShare:   domain.Round2(total.Mul(decimal.NewFromFloat(s.Artist))),
		InvestorShare: domain.Round2(total.Mul(decimal.NewFromFloat(s.Investor))),
		PlatformFee:   domain.Round2(total.Mul(decimal.NewFromFloat(s.Platform))),
	}
}

func (e *ROIProjectionEngine) boundedROI(inputs domain.CampaignInputs, investorShare decimal.Decimal) (decimal.Decimal, bool) {
	minROI := decimal.NewFromFloat(e.tables.Bounds.Min)
	maxROI := decimal.NewFromFloat(e.tables.Bounds.Max)

	roi := decimal.Zero
	if inputs.FundingGoal.IsPositive() {
		roi = domain.Round1(investorShare.Div(inputs.FundingGoal).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100)))
	}

	fallback := false
	if roi.LessThan(minROI) || roi.GreaterThan(maxROI) {
		roi = e.tables.FallbackROI(inputs.Genre, inputs.Duration)
		fallback = true
	}

	// Overridden tables may produce a fallback outside the bounds.
	if roi.LessThan(minROI) {
		roi = minROI
	}
	if roi.GreaterThan(maxROI) {
		roi = maxROI
	}
	return roi, fallback
}

// Confidence scores how much real data backs a projection, 50..85. Streams
// and revenue come from history; presence comes from the verified song.
func Confidence(snap domain.PerformanceSnapshot, ver domain.VerificationSummary) int {
	baseline := baselineFromVerification(ver)

	c := confidenceBase
	if snap.Spotify.HasData && snap.Spotify.Streams > 0 {
		c += 15
	}
	if snap.YouTube.HasData && snap.YouTube.Views > 0 {
		c += 15
	}
	if snap.MonthlyRevenue.IsPositive() {
		c += 10
	}
	if baseline.popularity > 0 {
		c += 5
	}
	if baseline.subscribers > 1000 {
		c += 5
	}
	if c > confidenceCap {
		c = confidenceCap
	}
	return c
}

// CalculateInvestorAutomaticROI previews what amount buys out of the investor pool.
func (e *ROIProjectionEngine) CalculateInvestorAutomaticROI(
	amount, fundingGoal, investorShare decimal.Decimal,
	confidence int,
) domain.InvestorROIPreview {
	preview := domain.InvestorROIPreview{
		InvestmentAmount:    amount,
		OwnershipPercentage: decimal.Zero,
		ProjectedReturn:     decimal.Zero,
		ProjectedProfit:     decimal.Zero,
		ROIPercentage:       decimal.Zero,
		Confidence:          confidence,
		Disclaimer:          investorDisclaimer,
	}

	if fundingGoal.IsPositive() {
		preview.OwnershipPercentage = domain.Round2(domain.Percentage(amount, fundingGoal))
		preview.ProjectedReturn = domain.Round2(investorShare.Mul(amount).Div(fundingGoal))
	}
	preview.ProjectedProfit = preview.ProjectedReturn.Sub(amount)
	if amount.IsPositive() {
		preview.ROIPercentage = domain.Round2(domain.Percentage(preview.ProjectedProfit, amount))
	}
	preview.RiskLevel = RiskLevelFor(confidence, preview.ROIPercentage)
	return preview
}

// RiskLevelFor labels a projection by confidence and sign of the ROI.
func RiskLevelFor(confidence int, roi decimal.Decimal) domain.RiskLevel {
	switch {
	case confidence >= 75 && roi.IsPositive():
		return domain.RiskLow
	case confidence >= 60 && roi.IsPositive():
		return domain.RiskMedium
	case confidence >= 40:
		return domain.RiskMediumHigh
	default:
		return domain.RiskHigh
	}
}

// InvestorReturnFromROI applies an ROI percentage to an amount.
func InvestorReturnFromROI(amount, roiPercentage decimal.Decimal) domain.InvestorReturn {
	profit := domain.Round2(amount.Mul(roiPercentage).Div(decimal.NewFromInt(100)))
	return domain.InvestorReturn{
		ProjectedProfit: profit,
		TotalReturn:     amount.Add(profit),
	}
}

// FallbackExpectedReturn is amount*(1+0.15*years), used when a campaign has no ROI.
func FallbackExpectedReturn(amount decimal.Decimal, months int) decimal.Decimal {
	growth := decimal.NewFromFloat(fallbackAnnualReturn).Mul(domain.DurationYears(months))
	return domain.Round2(amount.Mul(decimal.NewFromInt(1).Add(growth)))
}
