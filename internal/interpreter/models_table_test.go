package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-ai/velora/internal/models"
)

// For a fixed capability and complexity, moving up a tier must never route
// to a weaker model class.
func TestModelClassNeverDowngradesAcrossTiers(t *testing.T) {
	tiers := []models.Tier{models.TierFree, models.TierStarter, models.TierPro, models.TierPremium}
	complexities := []models.Complexity{models.ComplexitySimple, models.ComplexityMedium, models.ComplexityComplex}

	for _, capability := range models.AllCapabilities {
		for _, complexity := range complexities {
			prev := 0
			for _, tier := range tiers {
				id := SelectModel(capability, complexity, tier)
				require.NotEmpty(t, id, "%s/%s/%s resolved to nothing", capability, complexity, tier)
				rank, ok := modelClassRank[id]
				require.True(t, ok, "model %q has no class rank", id)
				assert.GreaterOrEqual(t, rank, prev,
					"%s/%s downgraded from class %d to %d at tier %s", capability, complexity, prev, rank, tier)
				prev = rank
			}
		}
	}
}

func TestSelectModelSharedTables(t *testing.T) {
	// Image edits ride the image table; slide outlines ride the chat table.
	assert.Equal(t,
		SelectModel(models.CapabilityImage, models.ComplexityComplex, models.TierPro),
		SelectModel(models.CapabilityImageEdit, models.ComplexityComplex, models.TierPro))
	assert.Equal(t,
		SelectModel(models.CapabilityChat, models.ComplexityMedium, models.TierStarter),
		SelectModel(models.CapabilityPPT, models.ComplexityMedium, models.TierStarter))
}

func TestSelectModelFallsBackToCapabilityDefault(t *testing.T) {
	// Video has no Free-tier row; the tier gate normally prevents this
	// lookup, but the resolver must still return something sane.
	assert.Equal(t, "gen3-fast", SelectModel(models.CapabilityVideo, models.ComplexityMedium, models.TierFree))
	assert.Equal(t, "lyra-v1", SelectModel(models.CapabilityMusic, models.ComplexitySimple, models.TierFree))
}
