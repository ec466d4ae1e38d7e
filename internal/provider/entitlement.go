package provider

import "context"

// StaticEntitlement grants entitlement from a fixed allow-list.
// An empty list entitles every artist, which is the development default.
type StaticEntitlement struct {
	allowed map[string]struct{}
}

// NewStaticEntitlement creates an entitlement gate for artistIDs.
func NewStaticEntitlement(artistIDs []string) *StaticEntitlement {
	allowed := make(map[string]struct{}, len(artistIDs))
	for _, id := range artistIDs {
		if id != "" {
			allowed[id] = struct{}{}
		}
	}
	return &StaticEntitlement{allowed: allowed}
}

// HasActiveEntitlement implements SubscriptionEntitlement.
func (e *StaticEntitlement) HasActiveEntitlement(_ context.Context, artistID string) (bool, error) {
	if len(e.allowed) == 0 {
		return artistID != "", nil
	}
	_, ok := e.allowed[artistID]
	return ok, nil
}
