package reconcile

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bookmybike/catalog-cli/internal/model"
	"github.com/bookmybike/catalog-cli/internal/store"
)

// Planner builds sync plans by reconciling extracted trees against stored
// records. It only reads.
type Planner struct {
	store  store.Store
	policy Policy
}

// NewPlanner creates a planner with the default protection policy.
func NewPlanner(st store.Store) *Planner {
	return &Planner{store: st, policy: DefaultPolicy()}
}

// NewPlannerWithPolicy creates a planner with a custom protection policy.
func NewPlannerWithPolicy(st store.Store, policy Policy) *Planner {
	return &Planner{store: st, policy: policy}
}

// matchKeyOf is the stable identity of an entity within a plan, used to
// address reviewer match overrides.
func matchKeyOf(externalID, name string) string {
	if externalID != "" {
		return externalID
	}
	return strings.ToLower(name)
}

// Build reconciles extracted models for one brand into a SyncPlan.
//
// DISCOVERY mode decides CREATE vs SKIP at the model level only, with no
// diffs and no children. ITEM mode recurses model, variant, and color and
// records field-level diffs at every node. Overrides map match keys to
// existing record ids and take precedence over all automatic matching.
func (p *Planner) Build(ctx context.Context, models []model.ExtractedModel, brandID string, overrides map[string]string, mode model.PlanMode) (*model.SyncPlan, error) {
	if mode == "" {
		mode = model.ModeItem
	}

	existingModels, err := p.store.ListModels(ctx, brandID)
	if err != nil {
		return nil, eris.Wrap(err, "reconcile: listing models")
	}

	plan := &model.SyncPlan{BrandID: brandID, Mode: mode, Items: []model.SyncItem{}}

	for _, m := range models {
		familyKey := matchKeyOf(m.Provenance.ExternalID, m.Name)
		familyMatchKey := "PRODUCT|" + familyKey

		if mode == model.ModeDiscovery {
			existing := MatchRecord(existingModels, m.Provenance.ExternalID, m.Name)
			item := model.SyncItem{
				Type:       model.ItemProduct,
				Name:       m.Name,
				Action:     model.ActionCreate,
				Diffs:      []model.FieldDiff{},
				Provenance: m.Provenance,
				MatchKey:   familyMatchKey,
				Children:   []model.SyncItem{},
			}
			if existing != nil {
				item.Action = model.ActionSkip
				item.ExistingID = existing.ID
				item.ExistingSpecs = existing.Specs
			}
			plan.Items = append(plan.Items, item)
			continue
		}

		modelSpecs, variantLevelSpecs := SegregateSpecs(m.Specs)

		existing := findByID(existingModels, overrides[familyMatchKey])
		if existing == nil {
			existing = MatchRecord(existingModels, m.Provenance.ExternalID, m.Name)
		}

		var existingSpecs model.Specs
		existingID := ""
		if existing != nil {
			existingSpecs = existing.Specs
			existingID = existing.ID
		}
		diffs := ComputeDiffs(existingSpecs, modelSpecs, p.policy)

		var existingVariants []model.Record
		if existing != nil {
			existingVariants, err = p.store.ListVariants(ctx, existing.ID)
			if err != nil {
				return nil, eris.Wrapf(err, "reconcile: listing variants of %s", existing.ID)
			}
		}

		children := make([]model.SyncItem, 0, len(m.Variants))
		for _, v := range m.Variants {
			child, err := p.buildVariantItem(ctx, v, familyKey, existingID, existingVariants, variantLevelSpecs, overrides)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}

		plan.Items = append(plan.Items, model.SyncItem{
			Type:          model.ItemProduct,
			Name:          m.Name,
			Action:        decideAction(existing != nil, diffs),
			ExistingID:    existingID,
			ExistingSpecs: existingSpecs,
			Diffs:         diffs,
			Provenance:    m.Provenance,
			MatchKey:      familyMatchKey,
			Children:      children,
		})
	}

	calcStats(plan.Items, &plan.Stats)
	zap.L().Info("reconcile: plan built",
		zap.String("brand_id", brandID),
		zap.String("mode", string(mode)),
		zap.Int("creates", plan.Stats.Creates),
		zap.Int("updates", plan.Stats.Updates),
		zap.Int("skips", plan.Stats.Skips),
		zap.Int("assets", plan.Stats.AssetsToDownload),
	)
	return plan, nil
}

func (p *Planner) buildVariantItem(ctx context.Context, v model.ExtractedVariant, familyKey, parentID string, existingVariants []model.Record, variantLevelSpecs model.Specs, overrides map[string]string) (model.SyncItem, error) {
	variantKey := matchKeyOf(v.Provenance.ExternalID, v.Name)
	variantMatchKey := "VARIANT|" + familyKey + "|" + variantKey

	existing := findByID(existingVariants, overrides[variantMatchKey])
	if existing == nil {
		existing = MatchRecord(existingVariants, v.Provenance.ExternalID, v.Name)
	}

	// Variant specs: the model's variant-level leftovers, overlaid with the
	// variant's own specs, plus the extracted price.
	combined := variantLevelSpecs.Clone()
	for k, val := range v.Specs {
		combined[k] = val
	}
	if v.HasPrice {
		combined["price"] = v.Price
	}

	var existingSpecs model.Specs
	existingID := ""
	if existing != nil {
		existingSpecs = existing.Specs
		existingID = existing.ID
	}
	diffs := ComputeDiffs(existingSpecs, combined, p.policy)

	var existingColors []model.Record
	if existing != nil {
		var err error
		existingColors, err = p.store.ListColors(ctx, existing.ID)
		if err != nil {
			return model.SyncItem{}, eris.Wrapf(err, "reconcile: listing colors of %s", existing.ID)
		}
	}

	children := make([]model.SyncItem, 0, len(v.Colors))
	for _, c := range v.Colors {
		children = append(children, p.buildColorItem(c, familyKey, variantKey, existingID, existingColors, overrides))
	}

	return model.SyncItem{
		Type:             model.ItemVariant,
		Name:             v.Name,
		Action:           decideAction(existing != nil, diffs),
		ExistingID:       existingID,
		ExistingSpecs:    existingSpecs,
		Diffs:            diffs,
		Provenance:       v.Provenance,
		MatchKey:         variantMatchKey,
		ParentExistingID: parentID,
		Children:         children,
	}, nil
}

func (p *Planner) buildColorItem(c model.ExtractedColor, familyKey, variantKey, parentID string, existingColors []model.Record, overrides map[string]string) model.SyncItem {
	colorKey := matchKeyOf(c.Provenance.ExternalID, c.Name)
	colorMatchKey := "UNIT|" + familyKey + "|" + variantKey + "|" + colorKey

	existing := findByID(existingColors, overrides[colorMatchKey])
	if existing == nil {
		existing = MatchRecord(existingColors, c.Provenance.ExternalID, c.Name)
	}

	incoming := model.Specs{}
	if c.HexPrimary != "" {
		incoming["hex_primary"] = c.HexPrimary
	}
	if c.HexSecondary != "" {
		incoming["hex_secondary"] = c.HexSecondary
	}
	if c.Finish != "" {
		incoming["finish"] = c.Finish
	}

	var existingSpecs model.Specs
	existingID := ""
	if existing != nil {
		existingSpecs = existing.Specs
		existingID = existing.ID
	}
	diffs := ComputeDiffs(existingSpecs, incoming, p.policy)

	assets := make([]model.SyncAsset, 0, len(c.MediaURLs))
	for _, u := range c.MediaURLs {
		assets = append(assets, model.SyncAsset{URL: u, Action: model.AssetDownload})
	}

	return model.SyncItem{
		Type:             model.ItemUnit,
		Name:             c.Name,
		Action:           decideAction(existing != nil, diffs),
		ExistingID:       existingID,
		ExistingSpecs:    existingSpecs,
		Diffs:            diffs,
		Provenance:       c.Provenance,
		MatchKey:         colorMatchKey,
		ParentExistingID: parentID,
		Assets:           assets,
	}
}

// decideAction: unmatched entities are created; matched entities update only
// when at least one diff is accepted, otherwise they are skipped.
func decideAction(matched bool, diffs []model.FieldDiff) model.SyncAction {
	if !matched {
		return model.ActionCreate
	}
	for _, d := range diffs {
		if d.Action == model.DiffAccept {
			return model.ActionUpdate
		}
	}
	return model.ActionSkip
}

func calcStats(items []model.SyncItem, stats *model.PlanStats) {
	for _, item := range items {
		switch item.Action {
		case model.ActionCreate:
			stats.Creates++
		case model.ActionUpdate:
			stats.Updates++
		case model.ActionSkip:
			stats.Skips++
		}
		for _, a := range item.Assets {
			if a.Action == model.AssetDownload {
				stats.AssetsToDownload++
			}
		}
		calcStats(item.Children, stats)
	}
}

func countAllDescendants(items []model.SyncItem) int {
	n := 0
	for _, item := range items {
		n++
		n += countAllDescendants(item.Children)
	}
	return n
}
