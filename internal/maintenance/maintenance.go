package maintenance

import (
	"context"
	"fmt"

	"github.com/neurastate/datahub/internal/config"
	"github.com/neurastate/datahub/internal/database"
	"github.com/neurastate/datahub/internal/logger"
)

const (
	propertyTable = "neurastate.property_point_view"
	metaTable     = "neurastate.property_meta"
)

// ParentFolioResult reports one update-parent-folios run.
type ParentFolioResult struct {
	TotalUpdated    int64 `json:"totalUpdated"`
	ParentsFound    int64 `json:"parentsFound"`
	NonParentsFound int64 `json:"nonParentsFound"`
}

// MetaResult reports one update-meta run.
type MetaResult struct {
	TotalUpserted         int64 `json:"totalUpserted"`
	TotalParentsProcessed int64 `json:"totalParentsProcessed"`
}

// Runner is the task surface the report layer drives. Service is the real
// implementation; tests substitute fakes.
type Runner interface {
	UpdateParentFolioFlags(ctx context.Context) (*ParentFolioResult, error)
	UpdateMeta(ctx context.Context) (*MetaResult, error)
}

// Service runs the idempotent batch maintenance passes over the canonical
// property table. Each task opens its own dedicated connection and closes it
// on every path.
type Service struct {
	dbCfg config.DatabaseConfig
	log   *logger.Logger
}

// NewService creates a maintenance service.
func NewService(dbCfg config.DatabaseConfig, log *logger.Logger) *Service {
	return &Service{dbCfg: dbCfg, log: log}
}

// UpdateParentFolioFlags marks every property whose folio is referenced as a
// parent_folio by at least one other row. The flag is monotonic: this task
// sets it, never clears it, so a property that stops having children keeps
// the flag until corrected manually. Only rows not already flagged are
// touched, which keeps re-runs cheap.
func (s *Service) UpdateParentFolioFlags(ctx context.Context) (*ParentFolioResult, error) {
	s.log.Info("Starting parent folio flag update", nil)

	conn, err := database.ConnectDirect(ctx, s.dbCfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	tag, err := conn.Exec(ctx, `
		UPDATE `+propertyTable+` p
		SET is_parent_folio = true
		FROM (
			SELECT DISTINCT parent_folio
			FROM `+propertyTable+`
			WHERE parent_folio IS NOT NULL
			  AND parent_folio <> ''
		) c
		WHERE p.folio = c.parent_folio
		  AND (NOT p.is_parent_folio OR p.is_parent_folio IS NULL)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to mark parent folios: %w", err)
	}

	result := &ParentFolioResult{TotalUpdated: tag.RowsAffected()}

	// Full recount for reporting.
	err = conn.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE is_parent_folio = true),
			COUNT(*) FILTER (WHERE is_parent_folio = false OR is_parent_folio IS NULL)
		FROM `+propertyTable+`
	`).Scan(&result.ParentsFound, &result.NonParentsFound)
	if err != nil {
		return nil, fmt.Errorf("failed to count parent folios: %w", err)
	}

	s.log.Info("Parent folio flag update completed", map[string]interface{}{
		"rows_updated": result.TotalUpdated,
		"parents":      result.ParentsFound,
		"non_parents":  result.NonParentsFound,
	})

	return result, nil
}

// UpdateMeta computes per-parent child counts and upserts them into the
// property metadata table. For correctness it depends on
// UpdateParentFolioFlags having run first; the ordering lives in RunAll and
// in the CLI help text rather than a programmatic check. Stale metadata rows
// for properties that stopped being parents are not removed.
func (s *Service) UpdateMeta(ctx context.Context) (*MetaResult, error) {
	s.log.Info("Starting property meta update", nil)

	conn, err := database.ConnectDirect(ctx, s.dbCfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	// Count children per parent folio, excluding self-references by
	// identifier, and upsert keyed on object_id.
	tag, err := conn.Exec(ctx, `
		INSERT INTO `+metaTable+` (object_id, folio, children_count)
		SELECT
			p.objectid,
			p.folio,
			COUNT(c.objectid) AS children_count
		FROM `+propertyTable+` p
		INNER JOIN `+propertyTable+` c
			ON c.parent_folio = p.folio
			AND c.parent_folio IS NOT NULL
			AND c.parent_folio <> ''
			AND c.objectid != p.objectid
		WHERE p.is_parent_folio = true
		GROUP BY p.objectid, p.folio
		ON CONFLICT (object_id)
		DO UPDATE SET
			children_count = EXCLUDED.children_count,
			folio = EXCLUDED.folio
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert property meta: %w", err)
	}

	result := &MetaResult{TotalUpserted: tag.RowsAffected()}

	err = conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM `+propertyTable+` WHERE is_parent_folio = true`,
	).Scan(&result.TotalParentsProcessed)
	if err != nil {
		return nil, fmt.Errorf("failed to count parent properties: %w", err)
	}

	s.log.Info("Property meta update completed", map[string]interface{}{
		"rows_upserted": result.TotalUpserted,
		"parents":       result.TotalParentsProcessed,
	})

	return result, nil
}
