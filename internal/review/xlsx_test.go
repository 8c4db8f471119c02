package review

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/bookmybike/catalog-cli/internal/model"
)

func testPlan() *model.SyncPlan {
	return &model.SyncPlan{
		BrandID: "brand-1",
		Mode:    model.ModeItem,
		Items: []model.SyncItem{{
			Type:     model.ItemProduct,
			Name:     "Apache RTR 160",
			Action:   model.ActionUpdate,
			MatchKey: "PRODUCT|veh-apache",
			Diffs: []model.FieldDiff{
				{Field: "kerb_weight", Current: 150.0, Incoming: 152.0, Action: model.DiffAccept},
				{Field: "notes", Current: "curated", Incoming: "scraped", Action: model.DiffReject},
			},
			Children: []model.SyncItem{{
				Type:   model.ItemVariant,
				Name:   "Disc",
				Action: model.ActionCreate,
				Children: []model.SyncItem{{
					Type:   model.ItemUnit,
					Name:   "Racing Red",
					Action: model.ActionCreate,
					Assets: []model.SyncAsset{{URL: "https://www.tvsmotor.com/media/red.webp", Action: model.AssetDownload}},
				}},
			}},
		}},
		Stats: model.PlanStats{Creates: 2, Updates: 1, AssetsToDownload: 1},
	}
}

func TestWritePlanXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, WritePlanXLSX(testPlan(), path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]

	// Header, three item rows, summary row.
	require.Len(t, sheet.Rows, 5)
	assert.Equal(t, "Level", sheet.Rows[0].Cells[0].String())

	family := sheet.Rows[1]
	assert.Equal(t, "PRODUCT", family.Cells[0].String())
	assert.Equal(t, "UPDATE", family.Cells[2].String())
	assert.Equal(t, "1", family.Cells[5].String())
	assert.Equal(t, "1", family.Cells[6].String())
	assert.Contains(t, family.Cells[7].String(), "kerb_weight: 150 -> 152")
	assert.Contains(t, family.Cells[7].String(), "(protected)")

	color := sheet.Rows[3]
	assert.Equal(t, "UNIT", color.Cells[0].String())
	assert.Equal(t, "1", color.Cells[8].String())

	assert.Contains(t, sheet.Rows[4].Cells[0].String(), "2 create, 1 update")
}
