package reconcile

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bookmybike/catalog-cli/internal/assets"
	"github.com/bookmybike/catalog-cli/internal/model"
	"github.com/bookmybike/catalog-cli/internal/store"
)

// dryRunID stands in for ids of records a dry run would have created, so
// child traversal and counting behave identically with and without commits.
const dryRunID = "dry-run"

// BatchDownloader fetches a batch of assets. *assets.Downloader implements
// it; tests substitute a stub.
type BatchDownloader interface {
	Batch(ctx context.Context, requests []assets.DownloadRequest, existingHashes map[string]bool) assets.BatchResult
}

// Executor applies a reviewed sync plan. It is the only component that
// writes to the store, and with dryRun=true it writes nothing at all while
// still reporting the counts a real run would produce.
type Executor struct {
	store      store.Store
	downloader BatchDownloader
}

// NewExecutor creates an executor. downloader may be nil when asset
// downloading is disabled; asset work is then counted but not performed.
func NewExecutor(st store.Store, downloader BatchDownloader) *Executor {
	return &Executor{store: st, downloader: downloader}
}

// Execute walks the plan parent-before-child. One node's failure is
// recorded and isolates only its own subtree; siblings still proceed.
// Success is false whenever any error was recorded.
func (e *Executor) Execute(ctx context.Context, plan *model.SyncPlan, dryRun bool) *model.SyncResult {
	result := &model.SyncResult{
		Success:    true,
		Errors:     []string{},
		CreatedIDs: []model.CreatedRef{},
	}

	var existingHashes map[string]bool
	if !dryRun {
		hashes, err := e.store.AssetHashes(ctx)
		if err != nil {
			result.Errors = append(result.Errors, "asset hashes: "+err.Error())
		} else {
			existingHashes = hashes
		}
	}

	for _, family := range plan.Items {
		e.syncItem(ctx, family, plan, "", result, dryRun, family.Name, existingHashes)
	}

	if len(result.Errors) > 0 {
		result.Success = false
	}
	zap.L().Info("reconcile: plan executed",
		zap.Bool("dry_run", dryRun),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result
}

// syncItem handles one plan node. parentID is empty for top-level products
// and the (possibly just-created) parent record id below that.
func (e *Executor) syncItem(ctx context.Context, item model.SyncItem, plan *model.SyncPlan, parentID string, result *model.SyncResult, dryRun bool, familyName string, hashes map[string]bool) {
	if item.Action == model.ActionSkip {
		result.Skipped += 1 + countAllDescendants(item.Children)
		return
	}

	itemID := item.ExistingID
	switch item.Action {
	case model.ActionCreate:
		if dryRun {
			result.Created++
			result.CreatedIDs = append(result.CreatedIDs, model.CreatedRef{Name: item.Name, ID: dryRunID, Type: item.Type})
		} else {
			id, err := e.createRecord(ctx, item, plan.BrandID, parentID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s %q: %s", item.Type, item.Name, err.Error()))
				return
			}
			itemID = id
			result.Created++
			result.CreatedIDs = append(result.CreatedIDs, model.CreatedRef{Name: item.Name, ID: id, Type: item.Type})
		}
	case model.ActionUpdate:
		if itemID == "" {
			break
		}
		if !dryRun {
			specs := MergeSpecs(item.ExistingSpecs, item.Diffs, item.Provenance)
			if err := e.updateRecord(ctx, item.Type, itemID, specs); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s update %q: %s", item.Type, item.Name, err.Error()))
			}
		}
		result.Updated++
	}

	if itemID == "" && !dryRun {
		return
	}
	if itemID == "" {
		itemID = dryRunID
	}

	if len(item.Assets) > 0 {
		e.syncItemAssets(ctx, item, itemID, result, dryRun, familyName, hashes)
	}
	for _, child := range item.Children {
		e.syncItem(ctx, child, plan, itemID, result, dryRun, familyName, hashes)
	}
}

func (e *Executor) createRecord(ctx context.Context, item model.SyncItem, brandID, parentID string) (string, error) {
	specs := MergeSpecs(model.Specs{}, item.Diffs, item.Provenance)
	rec := model.Record{
		Name:  item.Name,
		Slug:  GenerateSlug(item.Provenance.BrandSlug, item.Name),
		Specs: specs,
	}
	switch item.Type {
	case model.ItemVariant:
		return e.store.InsertVariant(ctx, parentID, brandID, rec)
	case model.ItemUnit:
		return e.store.InsertColor(ctx, parentID, brandID, rec)
	default:
		return e.store.InsertModel(ctx, brandID, rec)
	}
}

func (e *Executor) updateRecord(ctx context.Context, itemType model.ItemType, id string, specs model.Specs) error {
	switch itemType {
	case model.ItemVariant:
		return e.store.UpdateVariantSpecs(ctx, id, specs)
	case model.ItemUnit:
		return e.store.UpdateColorSpecs(ctx, id, specs)
	default:
		return e.store.UpdateModelSpecs(ctx, id, specs)
	}
}

func (e *Executor) syncItemAssets(ctx context.Context, item model.SyncItem, itemID string, result *model.SyncResult, dryRun bool, familyName string, hashes map[string]bool) {
	var requests []assets.DownloadRequest
	for i, a := range item.Assets {
		if a.Action != model.AssetDownload {
			continue
		}
		modelSlug := familyName
		if modelSlug == "" {
			modelSlug = item.Name
		}
		colorSlug := ""
		if item.Type != model.ItemProduct {
			colorSlug = item.Name
		}
		requests = append(requests, assets.DownloadRequest{
			URL: a.URL,
			TargetPath: assets.GenerateAssetPath(assets.PathParams{
				BrandSlug: item.Provenance.BrandSlug,
				ModelSlug: modelSlug,
				ColorSlug: colorSlug,
				Filename:  fmt.Sprintf("%d.%s", i+1, assets.NormalizeExtension(a.URL)),
			}),
		})
	}
	if len(requests) == 0 {
		return
	}

	if dryRun || e.downloader == nil {
		result.AssetsDownloaded += len(requests)
		return
	}

	batch := e.downloader.Batch(ctx, requests, hashes)
	result.AssetsDownloaded += batch.Completed + batch.Skipped
	if itemID != dryRunID {
		e.linkAssets(ctx, itemID, batch.Results, result)
	}
}

// linkAssets attaches completed downloads to the record. Dedupe-skipped
// results still link: the bytes already exist, the association may not.
func (e *Executor) linkAssets(ctx context.Context, itemID string, downloads []assets.DownloadResult, result *model.SyncResult) {
	linked := 0
	for _, d := range downloads {
		if d.Status != assets.StatusDownloaded && d.Status != assets.StatusDedupeSkip {
			continue
		}
		link := model.AssetLink{
			ItemID:      itemID,
			Type:        assetTypeOf(d.ContentType),
			URL:         d.LocalPath,
			SHA256:      d.SHA256,
			ContentType: d.ContentType,
			FileSize:    d.FileSize,
			IsPrimary:   linked == 0,
			Position:    linked,
			SourceURL:   d.URL,
		}
		if err := e.store.UpsertAsset(ctx, link); err != nil {
			result.Errors = append(result.Errors, "asset "+d.LocalPath+": "+err.Error())
			continue
		}
		linked++
	}
	result.AssetsLinked += linked
}

func assetTypeOf(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "video/"):
		return "VIDEO"
	case contentType == "application/pdf":
		return "PDF"
	default:
		return "IMAGE"
	}
}
