package service

import (
	"fmt"

	"soundstake.io/soundstake/internal/domain"
	apperrors "soundstake.io/soundstake/internal/pkg/errors"
)

// Metadata verification thresholds.
const (
	MinSpotifyMatch         = 80
	MinVerifiedConfidence   = 85
	MinAcceptableConfidence = 70
)

// AssessVerification decides whether a verification summary is good enough to
// list a campaign. It returns the summary with IsVerified set.
//
// Spotify is required. A campaign is verified when Spotify title and artist
// both match at MinSpotifyMatch or better and overall confidence reaches
// MinVerifiedConfidence. Anything below MinAcceptableConfidence is rejected.
func AssessVerification(summary domain.VerificationSummary) (domain.VerificationSummary, error) {
	if !summary.Spotify.Found {
		return summary, apperrors.Validation(apperrors.CodeMetadataNotVerified,
			"song could not be found on Spotify")
	}
	if summary.OverallConfidence < MinAcceptableConfidence {
		return summary, apperrors.Validation(apperrors.CodeMetadataNotVerified,
			fmt.Sprintf("song metadata confidence %d%% is below the required %d%%",
				summary.OverallConfidence, MinAcceptableConfidence)).
			WithParams(map[string]interface{}{
				"overall_confidence": summary.OverallConfidence,
				"warnings":           summary.Warnings,
			})
	}

	summary.IsVerified = summary.Spotify.TitleMatch >= MinSpotifyMatch &&
		summary.Spotify.ArtistMatch >= MinSpotifyMatch &&
		summary.OverallConfidence >= MinVerifiedConfidence
	if !summary.IsVerified {
		summary.Warnings = append(summary.Warnings, "metadata match requires manual review")
	}
	return summary, nil
}

// OverallConfidence averages the confidence of every platform that matched.
func OverallConfidence(matches ...domain.PlatformMatch) int {
	var sum, n int
	for _, m := range matches {
		if !m.Found {
			continue
		}
		sum += m.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / n
}
