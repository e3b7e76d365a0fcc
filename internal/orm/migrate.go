package orm

import (
	"fmt"

	"gorm.io/gorm"
)

// EnsureSchema creates the application schema if it does not exist.
func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}

// migrationStatements is the idempotent DDL for every table the DataHub core
// owns. The staging table mirrors the upstream CSV column contract exactly;
// the canonical table adds the derived columns (normalized condo flag, search
// text, parent flag, both geometry columns, timestamps).
var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE EXTENSION IF NOT EXISTS unaccent`,

	`CREATE TABLE IF NOT EXISTS neurastate.property_point_view_staging (
		x double precision,
		y double precision,
		objectid bigint,
		folio text,
		ttrrss text,
		x_coord double precision,
		y_coord double precision,
		true_site_addr text,
		true_site_unit text,
		true_site_city text,
		true_site_zip_code text,
		true_mailing_addr1 text,
		true_mailing_addr2 text,
		true_mailing_addr3 text,
		true_mailing_city text,
		true_mailing_state text,
		true_mailing_zip_code text,
		true_mailing_country text,
		true_owner1 text,
		true_owner2 text,
		true_owner3 text,
		condo_flag text,
		parent_folio text,
		dor_code_cur text,
		dor_desc text,
		subdivision text,
		bedroom_count numeric,
		bathroom_count numeric,
		half_bathroom_count numeric,
		floor_count numeric,
		unit_count numeric,
		building_actual_area numeric,
		building_heated_area numeric,
		lot_size numeric,
		year_built integer,
		assessment_year_cur integer,
		assessed_val_cur numeric,
		dos_1 date,
		price_1 numeric,
		legal text,
		pid bigint,
		dateofsale_utc timestamptz
	)`,

	`CREATE TABLE IF NOT EXISTS neurastate.property_point_view (
		objectid bigint PRIMARY KEY,
		x double precision,
		y double precision,
		folio text,
		ttrrss text,
		x_coord double precision,
		y_coord double precision,
		true_site_addr text,
		true_site_unit text,
		true_site_city text,
		true_site_zip_code text,
		true_mailing_addr1 text,
		true_mailing_addr2 text,
		true_mailing_addr3 text,
		true_mailing_city text,
		true_mailing_state text,
		true_mailing_zip_code text,
		true_mailing_country text,
		true_owner1 text,
		true_owner2 text,
		true_owner3 text,
		condo_flag boolean,
		parent_folio text,
		dor_code_cur text,
		dor_desc text,
		subdivision text,
		bedroom_count numeric,
		bathroom_count numeric,
		half_bathroom_count numeric,
		floor_count numeric,
		unit_count numeric,
		building_actual_area numeric,
		building_heated_area numeric,
		lot_size numeric,
		year_built integer,
		assessment_year_cur integer,
		assessed_val_cur numeric,
		dos_1 date,
		price_1 numeric,
		legal text,
		pid bigint,
		dateofsale_utc timestamptz,
		search_all text,
		is_parent_folio boolean DEFAULT false,
		geom_raw geometry(Point, 2236),
		geom geometry(Point, 4326),
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS neurastate.property_meta (
		object_id bigint PRIMARY KEY,
		folio text,
		children_count integer NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS neurastate.settings (
		id serial PRIMARY KEY,
		dataset_point_of_view_url text,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_property_point_view_geom
		ON neurastate.property_point_view USING gist (geom)`,
	`CREATE INDEX IF NOT EXISTS idx_property_point_view_folio
		ON neurastate.property_point_view (folio)`,
	`CREATE INDEX IF NOT EXISTS idx_property_point_view_parent_folio
		ON neurastate.property_point_view (parent_folio)`,
	`CREATE INDEX IF NOT EXISTS idx_property_point_view_is_parent_folio
		ON neurastate.property_point_view (is_parent_folio)`,
}

// Migrate brings the schema up to date. Every statement is idempotent, so
// re-running the migration against an existing database is safe.
func Migrate(d *gorm.DB, schema string) error {
	if err := EnsureSchema(d, schema); err != nil {
		return fmt.Errorf("failed to ensure schema %q: %w", schema, err)
	}

	for _, stmt := range migrationStatements {
		if err := d.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration statement failed: %w", err)
		}
	}

	return nil
}
