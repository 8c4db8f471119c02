package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/bookmybike/catalog-cli/internal/db"
	"github.com/bookmybike/catalog-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot reconciliation reads.
var preparedStatements = map[string]string{
	"list_models":   `SELECT id, name, slug, status, specs FROM cat_models WHERE brand_id = $1 ORDER BY name`,
	"list_variants": `SELECT id, name, slug, status, specs FROM cat_variants_vehicle WHERE model_id = $1 ORDER BY position, name`,
	"list_colors":   `SELECT id, name, slug, status, specs FROM cat_skus WHERE vehicle_variant_id = $1 ORDER BY position, name`,
	"asset_hashes":  `SELECT DISTINCT sha256 FROM cat_assets WHERE sha256 <> ''`,
	"get_sources":   `SELECT sources FROM cat_item_ingestion_sources WHERE owner_id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS cat_models (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	brand_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'INACTIVE',
	specs      JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cat_variants_vehicle (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	model_id   TEXT NOT NULL REFERENCES cat_models(id),
	brand_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'INACTIVE',
	specs      JSONB NOT NULL DEFAULT '{}',
	position   INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cat_skus (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	vehicle_variant_id TEXT NOT NULL REFERENCES cat_variants_vehicle(id),
	brand_id           TEXT NOT NULL,
	name               TEXT NOT NULL,
	slug               TEXT NOT NULL,
	status             TEXT NOT NULL DEFAULT 'INACTIVE',
	hex_primary        TEXT,
	hex_secondary      TEXT,
	specs              JSONB NOT NULL DEFAULT '{}',
	position           INTEGER NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cat_assets (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	item_id       TEXT NOT NULL,
	type          TEXT NOT NULL,
	url           TEXT NOT NULL,
	sha256        TEXT NOT NULL,
	content_type  TEXT,
	file_size     BIGINT,
	is_primary    BOOLEAN NOT NULL DEFAULT false,
	position      INTEGER NOT NULL DEFAULT 0,
	source_url    TEXT,
	downloaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (item_id, sha256)
);

CREATE TABLE IF NOT EXISTS cat_item_ingestion_sources (
	owner_id   TEXT PRIMARY KEY,
	sources    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cat_models_brand ON cat_models(brand_id);
CREATE INDEX IF NOT EXISTS idx_cat_variants_model ON cat_variants_vehicle(model_id);
CREATE INDEX IF NOT EXISTS idx_cat_skus_variant ON cat_skus(vehicle_variant_id);
CREATE INDEX IF NOT EXISTS idx_cat_assets_item ON cat_assets(item_id);
CREATE INDEX IF NOT EXISTS idx_cat_assets_sha ON cat_assets(sha256);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) listRecords(ctx context.Context, query, parentID, action string) ([]model.Record, error) {
	rows, err := s.pool.Query(ctx, query, parentID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: %s", action)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var rec model.Record
		var specsJSON []byte
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Slug, &rec.Status, &specsJSON); err != nil {
			return nil, eris.Wrapf(err, "postgres: %s scan", action)
		}
		if err := json.Unmarshal(specsJSON, &rec.Specs); err != nil {
			return nil, eris.Wrapf(err, "postgres: %s specs %s", action, rec.ID)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) ListModels(ctx context.Context, brandID string) ([]model.Record, error) {
	return s.listRecords(ctx,
		`SELECT id, name, slug, status, specs FROM cat_models WHERE brand_id = $1 ORDER BY name`,
		brandID, "list models")
}

func (s *PostgresStore) ListVariants(ctx context.Context, modelID string) ([]model.Record, error) {
	return s.listRecords(ctx,
		`SELECT id, name, slug, status, specs FROM cat_variants_vehicle WHERE model_id = $1 ORDER BY position, name`,
		modelID, "list variants")
}

func (s *PostgresStore) ListColors(ctx context.Context, variantID string) ([]model.Record, error) {
	return s.listRecords(ctx,
		`SELECT id, name, slug, status, specs FROM cat_skus WHERE vehicle_variant_id = $1 ORDER BY position, name`,
		variantID, "list colors")
}

func (s *PostgresStore) InsertModel(ctx context.Context, brandID string, rec model.Record) (string, error) {
	id := uuid.New().String()
	specsJSON, err := json.Marshal(rec.Specs)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal specs")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO cat_models (id, brand_id, name, slug, status, specs) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, brandID, rec.Name, rec.Slug, StatusInactive, specsJSON,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert model %s", rec.Name)
	}
	return id, nil
}

func (s *PostgresStore) InsertVariant(ctx context.Context, modelID, brandID string, rec model.Record) (string, error) {
	id := uuid.New().String()
	specsJSON, err := json.Marshal(rec.Specs)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal specs")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO cat_variants_vehicle (id, model_id, brand_id, name, slug, status, specs) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, modelID, brandID, rec.Name, rec.Slug, StatusInactive, specsJSON,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert variant %s", rec.Name)
	}
	return id, nil
}

func (s *PostgresStore) InsertColor(ctx context.Context, variantID, brandID string, rec model.Record) (string, error) {
	id := uuid.New().String()
	specsJSON, err := json.Marshal(rec.Specs)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal specs")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO cat_skus (id, vehicle_variant_id, brand_id, name, slug, status, hex_primary, hex_secondary, specs)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, variantID, brandID, rec.Name, rec.Slug, StatusInactive,
		specString(rec.Specs, "hex_primary"), specString(rec.Specs, "hex_secondary"), specsJSON,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert color %s", rec.Name)
	}
	return id, nil
}

func (s *PostgresStore) updateSpecs(ctx context.Context, table, id string, specs model.Specs) error {
	specsJSON, err := json.Marshal(specs)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal specs")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE `+table+` SET specs = $1, updated_at = now() WHERE id = $2`,
		specsJSON, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update %s specs %s", table, id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: %s not found: %s", table, id)
	}
	return nil
}

func (s *PostgresStore) UpdateModelSpecs(ctx context.Context, id string, specs model.Specs) error {
	return s.updateSpecs(ctx, "cat_models", id, specs)
}

func (s *PostgresStore) UpdateVariantSpecs(ctx context.Context, id string, specs model.Specs) error {
	return s.updateSpecs(ctx, "cat_variants_vehicle", id, specs)
}

func (s *PostgresStore) UpdateColorSpecs(ctx context.Context, id string, specs model.Specs) error {
	return s.updateSpecs(ctx, "cat_skus", id, specs)
}

func (s *PostgresStore) AssetHashes(ctx context.Context) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT sha256 FROM cat_assets WHERE sha256 <> ''`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: asset hashes")
	}
	defer rows.Close()

	hashes := make(map[string]bool)
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, eris.Wrap(err, "postgres: scan hash")
		}
		hashes[h] = true
	}
	return hashes, rows.Err()
}

func (s *PostgresStore) UpsertAsset(ctx context.Context, link model.AssetLink) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cat_assets (id, item_id, type, url, sha256, content_type, file_size, is_primary, position, source_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (item_id, sha256) DO UPDATE SET
			url = excluded.url,
			content_type = excluded.content_type,
			file_size = excluded.file_size,
			source_url = excluded.source_url`,
		uuid.New().String(), link.ItemID, link.Type, link.URL, link.SHA256,
		link.ContentType, link.FileSize, link.IsPrimary, link.Position, link.SourceURL,
	)
	return eris.Wrapf(err, "postgres: upsert asset %s", link.URL)
}

func (s *PostgresStore) SaveSources(ctx context.Context, ownerID string, sources []model.SourceSnapshot) error {
	b, err := json.Marshal(sources)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal sources")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO cat_item_ingestion_sources (owner_id, sources, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (owner_id) DO UPDATE SET sources = excluded.sources, updated_at = now()`,
		ownerID, b,
	)
	return eris.Wrapf(err, "postgres: save sources %s", ownerID)
}

func (s *PostgresStore) GetSources(ctx context.Context, ownerID string) ([]model.SourceSnapshot, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT sources FROM cat_item_ingestion_sources WHERE owner_id = $1`, ownerID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get sources %s", ownerID)
	}
	var sources []model.SourceSnapshot
	if err := json.Unmarshal(raw, &sources); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal sources %s", ownerID)
	}
	return sources, nil
}

func (s *PostgresStore) DeleteSources(ctx context.Context, ownerID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM cat_item_ingestion_sources WHERE owner_id = $1`, ownerID,
	)
	return eris.Wrapf(err, "postgres: delete sources %s", ownerID)
}
