package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/neurastate/datahub/internal/config"
	"github.com/neurastate/datahub/internal/database"
	"github.com/neurastate/datahub/internal/logger"
	"github.com/neurastate/datahub/internal/settings"
)

// DefaultImportURL is the fallback source when neither an explicit override
// nor a persisted setting provides one.
const DefaultImportURL = "https://example.com/neurastate/property_point_view.csv"

// Result reports what one import run did.
type Result struct {
	SourceURL       string `json:"sourceUrl"`
	BytesStreamed   int64  `json:"bytesStreamed"`
	RowsMerged      int64  `json:"rowsMerged"`
	RawGeometryRows int64  `json:"rawGeometryRows"`
	GeometryRows    int64  `json:"geometryRows"`
	TotalRows       int64  `json:"totalRows"`
}

// Service runs the bulk CSV import pipeline: download, stage via COPY, merge
// into the canonical table, then derive geometry. Bulk work happens on a
// dedicated connection, never the query pool.
type Service struct {
	dbCfg     config.DatabaseConfig
	importCfg config.ImportConfig
	settings  settings.Repository
	client    *http.Client
	log       *logger.Logger
}

// NewService creates an import service. The settings repository may be nil,
// in which case URL resolution skips the persisted-setting step.
func NewService(dbCfg config.DatabaseConfig, importCfg config.ImportConfig, settingsRepo settings.Repository, log *logger.Logger) *Service {
	return &Service{
		dbCfg:     dbCfg,
		importCfg: importCfg,
		settings:  settingsRepo,
		client:    http.DefaultClient,
		log:       log,
	}
}

// Run executes the full import pipeline and returns the run report.
// Every import is a full replace at the staging level: the staging table is
// truncated unconditionally before the copy. Failures anywhere abort the run;
// the dedicated connection is closed on all paths.
func (s *Service) Run(ctx context.Context, urlOverride string) (*Result, error) {
	importURL, err := s.resolveImportURL(urlOverride)
	if err != nil {
		return nil, err
	}

	s.log.Info("Starting property point view import", map[string]interface{}{
		"url": importURL,
	})

	body, err := s.fetchCSV(ctx, importURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	conn, err := database.ConnectDirect(ctx, s.dbCfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	result := &Result{SourceURL: importURL}

	// Stage: truncate, then stream the CSV straight into the staging table.
	if _, err := conn.Exec(ctx, "TRUNCATE TABLE "+stagingTable); err != nil {
		return nil, fmt.Errorf("failed to truncate staging table: %w", err)
	}

	reader := newCountingReader(body)
	if _, err := conn.PgConn().CopyFrom(ctx, reader, copySQL()); err != nil {
		return nil, fmt.Errorf("copy into staging table failed after %d bytes: %w", reader.Count(), err)
	}
	result.BytesStreamed = reader.Count()

	s.log.Info("Staging copy completed", map[string]interface{}{
		"bytes": result.BytesStreamed,
	})

	// Merge: one set-based upsert from staging into the canonical table.
	mergeTag, err := conn.Exec(ctx, mergeSQL())
	if err != nil {
		return nil, fmt.Errorf("merge from staging failed: %w", err)
	}
	result.RowsMerged = mergeTag.RowsAffected()

	// Derive geometry: raw planar point first, then the WGS84 transform.
	rawTag, err := conn.Exec(ctx, deriveRawGeometrySQL)
	if err != nil {
		return nil, fmt.Errorf("raw geometry derivation failed: %w", err)
	}
	result.RawGeometryRows = rawTag.RowsAffected()

	geomTag, err := conn.Exec(ctx, deriveGeometrySQL)
	if err != nil {
		return nil, fmt.Errorf("geometry transform failed: %w", err)
	}
	result.GeometryRows = geomTag.RowsAffected()

	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM "+canonicalTable).Scan(&result.TotalRows); err != nil {
		return nil, fmt.Errorf("failed to count canonical rows: %w", err)
	}

	s.log.Info("Import completed", map[string]interface{}{
		"rows_merged":   result.RowsMerged,
		"geometry_rows": result.GeometryRows,
		"total_rows":    result.TotalRows,
	})

	return result, nil
}

// resolveImportURL picks the CSV source: explicit argument first, then the
// configured override, then the persisted setting, then the default constant.
func (s *Service) resolveImportURL(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if s.importCfg.SourceURL != "" {
		return s.importCfg.SourceURL, nil
	}

	if s.settings != nil {
		record, err := s.settings.GetFirst()
		if err != nil {
			return "", fmt.Errorf("failed to resolve import URL from settings: %w", err)
		}
		if record != nil && record.DatasetPointOfViewURL != nil && *record.DatasetPointOfViewURL != "" {
			return *record.DatasetPointOfViewURL, nil
		}
	}

	return DefaultImportURL, nil
}

// fetchCSV downloads the source CSV and returns its body as a live stream.
// The body is consumed directly by the COPY channel, so database
// backpressure propagates to the download.
func (s *Service) fetchCSV(ctx context.Context, importURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, importURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build CSV request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download CSV: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download CSV: status %d", resp.StatusCode)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, fmt.Errorf("failed to download CSV: response has no body")
	}

	return resp.Body, nil
}

// countingReader adapts the download stream into the byte source the copy
// channel consumes, tracking bytes for observability along the way.
type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func newCountingReader(r io.Reader) *countingReader {
	return &countingReader{r: r}
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// Count returns the number of bytes read so far.
func (c *countingReader) Count() int64 {
	return c.n.Load()
}
