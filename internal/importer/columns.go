package importer

import (
	"fmt"
	"strings"
)

const (
	stagingTable   = "neurastate.property_point_view_staging"
	canonicalTable = "neurastate.property_point_view"
)

// csvColumns is the upstream CSV contract: the header row must carry exactly
// these columns in this order. The order is a contract with the data
// provider; a mismatched header produces malformed rows rather than a clean
// error, so this list must not be reordered casually.
var csvColumns = []string{
	"x",
	"y",
	"objectid",
	"folio",
	"ttrrss",
	"x_coord",
	"y_coord",
	"true_site_addr",
	"true_site_unit",
	"true_site_city",
	"true_site_zip_code",
	"true_mailing_addr1",
	"true_mailing_addr2",
	"true_mailing_addr3",
	"true_mailing_city",
	"true_mailing_state",
	"true_mailing_zip_code",
	"true_mailing_country",
	"true_owner1",
	"true_owner2",
	"true_owner3",
	"condo_flag",
	"parent_folio",
	"dor_code_cur",
	"dor_desc",
	"subdivision",
	"bedroom_count",
	"bathroom_count",
	"half_bathroom_count",
	"floor_count",
	"unit_count",
	"building_actual_area",
	"building_heated_area",
	"lot_size",
	"year_built",
	"assessment_year_cur",
	"assessed_val_cur",
	"dos_1",
	"price_1",
	"legal",
	"pid",
	"dateofsale_utc",
}

// copySQL is the server-side bulk copy statement for the staging table.
func copySQL() string {
	return fmt.Sprintf(
		"COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER true)",
		stagingTable,
		strings.Join(csvColumns, ", "),
	)
}

// searchAllExpr derives the full-text search blob during the merge:
// folio, site address/unit/city, the three owner fields, the property-type
// description and the subdivision, space-joined with nulls as empty strings,
// lower-cased and diacritic-stripped.
const searchAllExpr = `lower(unaccent(concat_ws(' ',
	coalesce(folio, ''),
	coalesce(true_site_addr, ''),
	coalesce(true_site_unit, ''),
	coalesce(true_site_city, ''),
	coalesce(true_owner1, ''),
	coalesce(true_owner2, ''),
	coalesce(true_owner3, ''),
	coalesce(dor_desc, ''),
	coalesce(subdivision, ''))))`

// condoFlagExpr normalizes the raw staging flag into a strict boolean.
// 'y' in any casing means condo; everything else, including NULL, does not.
// The normalization is lossy and one-way: the staging string is discarded.
const condoFlagExpr = `(lower(trim(coalesce(condo_flag, ''))) = 'y')`

// mergeSQL builds the single set-based insert-select that merges every
// staged row into the canonical table. On an objectid collision every
// mutable column is overwritten and updated_at refreshed; created_at is set
// only on first insert.
func mergeSQL() string {
	insertCols := make([]string, 0, len(csvColumns)+3)
	selectExprs := make([]string, 0, len(csvColumns)+3)
	updateSets := make([]string, 0, len(csvColumns)+2)

	for _, col := range csvColumns {
		insertCols = append(insertCols, col)

		switch col {
		case "condo_flag":
			selectExprs = append(selectExprs, condoFlagExpr)
		default:
			selectExprs = append(selectExprs, col)
		}

		// objectid is the conflict key; it never appears in the update set.
		if col != "objectid" {
			updateSets = append(updateSets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}

	insertCols = append(insertCols, "search_all", "created_at", "updated_at")
	selectExprs = append(selectExprs, searchAllExpr, "NOW()", "NOW()")
	updateSets = append(updateSets,
		"search_all = EXCLUDED.search_all",
		"updated_at = NOW()",
	)

	return fmt.Sprintf(
		"INSERT INTO %s (%s)\nSELECT %s\nFROM %s\nON CONFLICT (objectid) DO UPDATE SET %s",
		canonicalTable,
		strings.Join(insertCols, ", "),
		strings.Join(selectExprs, ", "),
		stagingTable,
		strings.Join(updateSets, ", "),
	)
}

// Geometry derivation passes. Both are idempotent set-based updates; rows
// with missing source coordinates are skipped and keep null geometry. That
// silent partial application is the intended policy, not an error.
const (
	deriveRawGeometrySQL = `
		UPDATE neurastate.property_point_view
		SET geom_raw = ST_SetSRID(ST_MakePoint(x_coord, y_coord), 2236)
		WHERE x_coord IS NOT NULL AND y_coord IS NOT NULL`

	deriveGeometrySQL = `
		UPDATE neurastate.property_point_view
		SET geom = ST_Transform(geom_raw, 4326)
		WHERE geom_raw IS NOT NULL`
)
