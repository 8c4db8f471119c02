package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmybike/catalog-cli/internal/model"
)

func recordWithExternalID(id, name, externalID string) model.Record {
	return model.Record{
		ID:   id,
		Name: name,
		Specs: model.Specs{
			"provenance": map[string]any{"external_id": externalID},
		},
	}
}

func TestMatchRecord_Precedence(t *testing.T) {
	existing := []model.Record{
		recordWithExternalID("r1", "Apache RTR 160", "veh-apache-160"),
		{ID: "r2", Name: "Jupiter 125"},
		{ID: "r3", Name: "Raider-125"},
	}

	t.Run("external id wins over name", func(t *testing.T) {
		// The external id points at r1 even though the name matches r2.
		m := MatchRecord(existing, "veh-apache-160", "Jupiter 125")
		require.NotNil(t, m)
		assert.Equal(t, "r1", m.ID)
	})

	t.Run("exact lowercase name", func(t *testing.T) {
		m := MatchRecord(existing, "unknown-ext", "JUPITER 125")
		require.NotNil(t, m)
		assert.Equal(t, "r2", m.ID)
	})

	t.Run("normalized name fallback", func(t *testing.T) {
		m := MatchRecord(existing, "", "raider 125")
		require.NotNil(t, m)
		assert.Equal(t, "r3", m.ID)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, MatchRecord(existing, "", "Ntorq 125"))
	})
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "apachertr160", normalizeName("Apache RTR-160"))
	assert.Equal(t, "apachertr160", normalizeName("apache rtr 160"))
}

func TestFindByID(t *testing.T) {
	existing := []model.Record{{ID: "a"}, {ID: "b"}}
	require.NotNil(t, findByID(existing, "b"))
	assert.Nil(t, findByID(existing, "c"))
	assert.Nil(t, findByID(existing, ""))
}
