// Package review renders sync plans into a spreadsheet so a human can check
// the proposed changes before execution.
package review

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/bookmybike/catalog-cli/internal/model"
)

var planHeader = []string{
	"Level", "Name", "Action", "Match Key", "Existing ID", "Accepted", "Rejected", "Changes", "Assets",
}

// WritePlanXLSX flattens a plan into one sheet, depth first so children sit
// directly under their parent.
func WritePlanXLSX(plan *model.SyncPlan, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sync Plan")
	if err != nil {
		return eris.Wrap(err, "review: adding sheet")
	}

	header := sheet.AddRow()
	for _, h := range planHeader {
		header.AddCell().Value = h
	}

	for _, item := range plan.Items {
		writeItemRows(sheet, item, 0)
	}

	summary := sheet.AddRow()
	summary.AddCell().Value = fmt.Sprintf("Totals: %d create, %d update, %d skip, %d assets",
		plan.Stats.Creates, plan.Stats.Updates, plan.Stats.Skips, plan.Stats.AssetsToDownload)

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "review: saving %s", path)
	}
	return nil
}

func writeItemRows(sheet *xlsx.Sheet, item model.SyncItem, depth int) {
	row := sheet.AddRow()
	row.AddCell().Value = string(item.Type)
	row.AddCell().Value = strings.Repeat("    ", depth) + item.Name
	row.AddCell().Value = string(item.Action)
	row.AddCell().Value = item.MatchKey
	row.AddCell().Value = item.ExistingID
	row.AddCell().Value = fmt.Sprint(item.AcceptedDiffs())
	row.AddCell().Value = fmt.Sprint(len(item.Diffs) - item.AcceptedDiffs())
	row.AddCell().Value = diffSummary(item.Diffs)
	row.AddCell().Value = fmt.Sprint(len(item.Assets))

	for _, child := range item.Children {
		writeItemRows(sheet, child, depth+1)
	}
}

// diffSummary renders diffs as "field: old -> new", rejected ones suffixed.
func diffSummary(diffs []model.FieldDiff) string {
	parts := make([]string, 0, len(diffs))
	for _, d := range diffs {
		s := fmt.Sprintf("%s: %v -> %v", d.Field, d.Current, d.Incoming)
		if d.Action == model.DiffReject {
			s += " (protected)"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}
