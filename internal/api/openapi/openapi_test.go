package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)

	for _, path := range []string{
		"/campaigns",
		"/campaigns/{id}",
		"/campaigns/{id}/funding",
		"/campaigns/{id}/roi/preview",
		"/campaigns/{id}/contributions",
		"/campaigns/{id}/investments",
		"/webhooks/payments",
		"/campaigns/{id}/unlock-requests",
		"/campaigns/{id}/unlock-status",
		"/campaigns/{id}/milestones/{milestoneId}/proofs",
		"/artists/me/payout-destination",
		"/admin/campaigns/{id}/review",
		"/admin/unlock-requests",
		"/admin/unlock-requests/{id}/decision",
		"/admin/milestone-proofs/{id}/decision",
		"/admin/campaigns/{id}/revenue",
		"/health/live",
		"/health/ready",
	} {
		assert.NotNil(t, doc.Paths.Find(path), "missing path %s", path)
	}
}

func TestLoad_Cached(t *testing.T) {
	a, err := Load()
	require.NoError(t, err)
	b, err := Load()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.NotEmpty(t, Raw())
}
