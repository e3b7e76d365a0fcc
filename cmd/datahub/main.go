package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/neurastate/datahub/internal/config"
	"github.com/neurastate/datahub/internal/importer"
	"github.com/neurastate/datahub/internal/logger"
	"github.com/neurastate/datahub/internal/maintenance"
	"github.com/neurastate/datahub/internal/orm"
	"github.com/neurastate/datahub/internal/settings"
	"github.com/urfave/cli/v2"
)

func main() {
	// Local development convenience; a missing .env is not an error
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "datahub",
		Usage: "Operator tasks for the Neurastate property data platform",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Create the schema, tables, and indexes if they do not exist",
				Action: func(c *cli.Context) error {
					cfg, log, err := bootstrap()
					if err != nil {
						return err
					}

					db, err := orm.Connect(cfg.Database)
					if err != nil {
						return fmt.Errorf("failed to connect to database: %w", err)
					}

					if err := orm.Migrate(db, cfg.Database.Schema); err != nil {
						return fmt.Errorf("migration failed: %w", err)
					}

					log.Info("Migration complete", map[string]interface{}{
						"schema": cfg.Database.Schema,
					})
					return nil
				},
			},
			{
				Name:  "import-property-point-view",
				Usage: "Stream the property CSV into staging and merge it into the canonical table",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Override the CSV source URL for this run",
					},
				},
				Action: importAction,
			},
			{
				Name:   "data-maintenance",
				Usage:  "Run all maintenance tasks in order (parent folio flags, then metadata)",
				Action: maintenanceAction(maintenance.TaskRunAll),
			},
			{
				Name:   "data-maintenance:run-all",
				Usage:  "Run all maintenance tasks in order (parent folio flags, then metadata)",
				Action: maintenanceAction(maintenance.TaskRunAll),
			},
			{
				Name:   "data-maintenance:update-parent-folios",
				Usage:  "Flag properties that other rows reference as their parent folio",
				Action: maintenanceAction(maintenance.TaskUpdateParentFolios),
			},
			{
				Name:   "data-maintenance:update-meta",
				Usage:  "Refresh per-parent children counts in the metadata table",
				Action: maintenanceAction(maintenance.TaskUpdateMeta),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the logger shared by all commands.
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, logger.New(cfg.Server.Env), nil
}

func importAction(c *cli.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	// The settings table can supply the source URL when neither the flag
	// nor IMPORT_URL is set. A connection failure here is fatal: the same
	// database is needed for the import itself.
	db, err := orm.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	svc := importer.NewService(cfg.Database, cfg.Import, settings.NewRepository(db), log)

	result, err := svc.Run(c.Context, c.String("url"))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	return printJSON(result)
}

// maintenanceAction adapts a maintenance task name into a CLI action.
// The report is printed even on failure so operators can see partial
// progress; the non-zero exit comes from the returned error.
func maintenanceAction(task maintenance.Task) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}

		svc := maintenance.NewService(cfg.Database, log)
		report := maintenance.Execute(c.Context, svc, task, log)

		if err := printJSON(report); err != nil {
			return err
		}
		if !report.Success {
			return fmt.Errorf("maintenance task %q failed: %s", task, report.Error)
		}
		return nil
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
