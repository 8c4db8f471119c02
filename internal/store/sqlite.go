package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/bookmybike/catalog-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS cat_models (
	id         TEXT PRIMARY KEY,
	brand_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'INACTIVE',
	specs      TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS cat_variants_vehicle (
	id         TEXT PRIMARY KEY,
	model_id   TEXT NOT NULL REFERENCES cat_models(id),
	brand_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'INACTIVE',
	specs      TEXT NOT NULL DEFAULT '{}',
	position   INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS cat_skus (
	id                 TEXT PRIMARY KEY,
	vehicle_variant_id TEXT NOT NULL REFERENCES cat_variants_vehicle(id),
	brand_id           TEXT NOT NULL,
	name               TEXT NOT NULL,
	slug               TEXT NOT NULL,
	status             TEXT NOT NULL DEFAULT 'INACTIVE',
	hex_primary        TEXT,
	hex_secondary      TEXT,
	specs              TEXT NOT NULL DEFAULT '{}',
	position           INTEGER NOT NULL DEFAULT 0,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS cat_assets (
	id            TEXT PRIMARY KEY,
	item_id       TEXT NOT NULL,
	type          TEXT NOT NULL,
	url           TEXT NOT NULL,
	sha256        TEXT NOT NULL,
	content_type  TEXT,
	file_size     INTEGER,
	is_primary    INTEGER NOT NULL DEFAULT 0,
	position      INTEGER NOT NULL DEFAULT 0,
	source_url    TEXT,
	downloaded_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (item_id, sha256)
);

CREATE TABLE IF NOT EXISTS cat_item_ingestion_sources (
	owner_id   TEXT PRIMARY KEY,
	sources    TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_cat_models_brand ON cat_models(brand_id);
CREATE INDEX IF NOT EXISTS idx_cat_variants_model ON cat_variants_vehicle(model_id);
CREATE INDEX IF NOT EXISTS idx_cat_skus_variant ON cat_skus(vehicle_variant_id);
CREATE INDEX IF NOT EXISTS idx_cat_assets_item ON cat_assets(item_id);
CREATE INDEX IF NOT EXISTS idx_cat_assets_sha ON cat_assets(sha256);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func marshalSpecs(specs model.Specs) (string, error) {
	if specs == nil {
		specs = model.Specs{}
	}
	b, err := json.Marshal(specs)
	if err != nil {
		return "", eris.Wrap(err, "store: marshal specs")
	}
	return string(b), nil
}

func scanRecordRows(rows *sql.Rows) ([]model.Record, error) {
	var records []model.Record
	for rows.Next() {
		var rec model.Record
		var specsJSON string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Slug, &rec.Status, &specsJSON); err != nil {
			return nil, eris.Wrap(err, "store: scan record")
		}
		if err := json.Unmarshal([]byte(specsJSON), &rec.Specs); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal specs for %s", rec.ID)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) ListModels(ctx context.Context, brandID string) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, status, specs FROM cat_models WHERE brand_id = ? ORDER BY name`,
		brandID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list models")
	}
	defer rows.Close()
	return scanRecordRows(rows)
}

func (s *SQLiteStore) ListVariants(ctx context.Context, modelID string) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, status, specs FROM cat_variants_vehicle WHERE model_id = ? ORDER BY position, name`,
		modelID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list variants")
	}
	defer rows.Close()
	return scanRecordRows(rows)
}

func (s *SQLiteStore) ListColors(ctx context.Context, variantID string) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, status, specs FROM cat_skus WHERE vehicle_variant_id = ? ORDER BY position, name`,
		variantID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list colors")
	}
	defer rows.Close()
	return scanRecordRows(rows)
}

func (s *SQLiteStore) InsertModel(ctx context.Context, brandID string, rec model.Record) (string, error) {
	id := uuid.New().String()
	specsJSON, err := marshalSpecs(rec.Specs)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cat_models (id, brand_id, name, slug, status, specs) VALUES (?, ?, ?, ?, ?, ?)`,
		id, brandID, rec.Name, rec.Slug, StatusInactive, specsJSON,
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert model %s", rec.Name)
	}
	return id, nil
}

func (s *SQLiteStore) InsertVariant(ctx context.Context, modelID, brandID string, rec model.Record) (string, error) {
	id := uuid.New().String()
	specsJSON, err := marshalSpecs(rec.Specs)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cat_variants_vehicle (id, model_id, brand_id, name, slug, status, specs) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, modelID, brandID, rec.Name, rec.Slug, StatusInactive, specsJSON,
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert variant %s", rec.Name)
	}
	return id, nil
}

func (s *SQLiteStore) InsertColor(ctx context.Context, variantID, brandID string, rec model.Record) (string, error) {
	id := uuid.New().String()
	specsJSON, err := marshalSpecs(rec.Specs)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cat_skus (id, vehicle_variant_id, brand_id, name, slug, status, hex_primary, hex_secondary, specs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, variantID, brandID, rec.Name, rec.Slug, StatusInactive,
		specString(rec.Specs, "hex_primary"), specString(rec.Specs, "hex_secondary"), specsJSON,
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert color %s", rec.Name)
	}
	return id, nil
}

func specString(specs model.Specs, key string) string {
	if specs == nil {
		return ""
	}
	v, _ := specs[key].(string)
	return v
}

func (s *SQLiteStore) updateSpecs(ctx context.Context, table, id string, specs model.Specs) error {
	specsJSON, err := marshalSpecs(specs)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET specs = ?, updated_at = ? WHERE id = ?`,
		specsJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update %s specs %s", table, id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s not found: %s", table, id)
	}
	return nil
}

func (s *SQLiteStore) UpdateModelSpecs(ctx context.Context, id string, specs model.Specs) error {
	return s.updateSpecs(ctx, "cat_models", id, specs)
}

func (s *SQLiteStore) UpdateVariantSpecs(ctx context.Context, id string, specs model.Specs) error {
	return s.updateSpecs(ctx, "cat_variants_vehicle", id, specs)
}

func (s *SQLiteStore) UpdateColorSpecs(ctx context.Context, id string, specs model.Specs) error {
	return s.updateSpecs(ctx, "cat_skus", id, specs)
}

func (s *SQLiteStore) AssetHashes(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT sha256 FROM cat_assets WHERE sha256 != ''`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: asset hashes")
	}
	defer rows.Close()

	hashes := make(map[string]bool)
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan hash")
		}
		hashes[h] = true
	}
	return hashes, rows.Err()
}

func (s *SQLiteStore) UpsertAsset(ctx context.Context, link model.AssetLink) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cat_assets (id, item_id, type, url, sha256, content_type, file_size, is_primary, position, source_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (item_id, sha256) DO UPDATE SET
			url = excluded.url,
			content_type = excluded.content_type,
			file_size = excluded.file_size,
			source_url = excluded.source_url`,
		uuid.New().String(), link.ItemID, link.Type, link.URL, link.SHA256,
		link.ContentType, link.FileSize, link.IsPrimary, link.Position, link.SourceURL,
	)
	return eris.Wrapf(err, "sqlite: upsert asset %s", link.URL)
}

func (s *SQLiteStore) SaveSources(ctx context.Context, ownerID string, sources []model.SourceSnapshot) error {
	b, err := json.Marshal(sources)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal sources")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cat_item_ingestion_sources (owner_id, sources, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (owner_id) DO UPDATE SET sources = excluded.sources, updated_at = excluded.updated_at`,
		ownerID, string(b), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save sources %s", ownerID)
}

func (s *SQLiteStore) GetSources(ctx context.Context, ownerID string) ([]model.SourceSnapshot, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT sources FROM cat_item_ingestion_sources WHERE owner_id = ?`, ownerID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get sources %s", ownerID)
	}
	var sources []model.SourceSnapshot
	if err := json.Unmarshal([]byte(raw), &sources); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal sources %s", ownerID)
	}
	return sources, nil
}

func (s *SQLiteStore) DeleteSources(ctx context.Context, ownerID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cat_item_ingestion_sources WHERE owner_id = ?`, ownerID,
	)
	return eris.Wrapf(err, "sqlite: delete sources %s", ownerID)
}
