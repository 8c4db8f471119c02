package model

// SyncAction is the reconciliation decision for one plan node.
type SyncAction string

const (
	ActionCreate SyncAction = "CREATE"
	ActionUpdate SyncAction = "UPDATE"
	ActionSkip   SyncAction = "SKIP"
)

// ItemType identifies the level of a plan node in the product tree.
type ItemType string

const (
	ItemProduct ItemType = "PRODUCT"
	ItemVariant ItemType = "VARIANT"
	ItemUnit    ItemType = "UNIT"
)

// DiffAction says whether a proposed field change may be applied.
type DiffAction string

const (
	DiffAccept DiffAction = "accept"
	DiffReject DiffAction = "reject"
)

// FieldDiff is one attribute's proposed change. Action is decided purely by
// protected-field policy, never by content.
type FieldDiff struct {
	Field    string     `json:"field"`
	Current  any        `json:"current"`
	Incoming any        `json:"incoming"`
	Action   DiffAction `json:"action"`
}

// AssetAction says how an asset URL should be handled during execution.
type AssetAction string

const (
	AssetDownload     AssetAction = "download"
	AssetLinkExisting AssetAction = "link_existing"
	AssetSkip         AssetAction = "skip"
)

// SyncAsset is one remote media URL attached to a plan node.
type SyncAsset struct {
	URL         string      `json:"url"`
	LocalPath   string      `json:"localPath,omitempty"`
	SHA256      string      `json:"sha256,omitempty"`
	FileSize    int64       `json:"fileSize,omitempty"`
	ContentType string      `json:"contentType,omitempty"`
	Action      AssetAction `json:"action"`
}

// SyncItem is one node of the hierarchical change plan. Action is CREATE iff
// no matching existing record was found, UPDATE iff matched with at least one
// accepted diff, SKIP otherwise.
type SyncItem struct {
	Type             ItemType    `json:"type"`
	Name             string      `json:"name"`
	Action           SyncAction  `json:"action"`
	ExistingID       string      `json:"existing_id,omitempty"`
	ExistingSpecs    Specs       `json:"existing_specs,omitempty"`
	Diffs            []FieldDiff `json:"diffs"`
	Provenance       Provenance  `json:"provenance"`
	MatchKey         string      `json:"match_key,omitempty"`
	ParentExistingID string      `json:"parent_existing_id,omitempty"`
	Children         []SyncItem  `json:"children,omitempty"`
	Assets           []SyncAsset `json:"assets,omitempty"`
}

// AcceptedDiffs counts diffs the policy allows to be applied.
func (i SyncItem) AcceptedDiffs() int {
	n := 0
	for _, d := range i.Diffs {
		if d.Action == DiffAccept {
			n++
		}
	}
	return n
}

// PlanMode selects how deep plan building goes.
type PlanMode string

const (
	// ModeDiscovery decides CREATE vs SKIP at the model level only, with no
	// diffs and no children. Used for "what's new" scans of listing pages.
	ModeDiscovery PlanMode = "DISCOVERY"
	// ModeItem performs full recursive model/variant/color reconciliation.
	ModeItem PlanMode = "ITEM"
)

// PlanStats summarizes a plan for review.
type PlanStats struct {
	Creates          int `json:"creates"`
	Updates          int `json:"updates"`
	Skips            int `json:"skips"`
	AssetsToDownload int `json:"assets_to_download"`
}

// SyncPlan is the reviewed unit of work consumed exactly once by the
// executor. It is not designed to be replayed after storage has changed.
type SyncPlan struct {
	BrandID string     `json:"brand_id"`
	Mode    PlanMode   `json:"mode"`
	Items   []SyncItem `json:"items"`
	Stats   PlanStats  `json:"stats"`
}

// CreatedRef identifies a record created during plan execution.
type CreatedRef struct {
	Name string   `json:"name"`
	ID   string   `json:"id"`
	Type ItemType `json:"type"`
}

// SyncResult is the outcome of one executor run. Success is false whenever
// Errors is non-empty, even if most items succeeded.
type SyncResult struct {
	Success          bool         `json:"success"`
	Created          int          `json:"created"`
	Updated          int          `json:"updated"`
	Skipped          int          `json:"skipped"`
	AssetsDownloaded int          `json:"assets_downloaded"`
	AssetsLinked     int          `json:"assets_linked"`
	Errors           []string     `json:"errors"`
	CreatedIDs       []CreatedRef `json:"created_ids"`
}

// AssetLink records a completed download to be attached to a record. The
// store upserts on (ItemID, SHA256) so re-linking is a no-op.
type AssetLink struct {
	ItemID      string `json:"item_id"`
	Type        string `json:"type"` // IMAGE, VIDEO, PDF
	URL         string `json:"url"`  // local path under the media root
	SHA256      string `json:"sha256"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
	IsPrimary   bool   `json:"is_primary"`
	Position    int    `json:"position"`
	SourceURL   string `json:"source_url"`
}
