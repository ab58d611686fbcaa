package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/poiesic/datamill"
	"github.com/poiesic/datamill/audit"
	"github.com/poiesic/datamill/config"
	"github.com/poiesic/datamill/core"
	"github.com/poiesic/datamill/dataset"
	"github.com/poiesic/datamill/internal/fsutil"
	"github.com/urfave/cli/v2"
)

func datasetCommand() *cli.Command {
	return &cli.Command{
		Name:  "dataset",
		Usage: "Build, verify, and catalog dataset versions",
		Subcommands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Build dataset versions from one or more dataset configs",
				ArgsUsage: "<config.yaml>...",
				Action:    buildCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of configs built concurrently",
					},
				},
			},
			{
				Name:      "verify",
				Usage:     "Recompute a version's hash and compare it with its metadata",
				ArgsUsage: "<version>",
				Action:    verifyCommand,
			},
			{
				Name:   "list",
				Usage:  "List cataloged dataset versions",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "hash",
						Usage: "Only list versions with this content hash",
					},
				},
			},
			{
				Name:   "audit",
				Usage:  "Verify every dataset version and reconcile the catalog",
				Action: auditCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "resync",
						Usage: "Add or refresh catalog records of verified versions",
					},
					&cli.BoolFlag{
						Name:  "prune",
						Usage: "Delete catalog records whose version directory is gone",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of versions verified between cancellation checks",
						Value: audit.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N versions",
						Value: 10,
					},
				},
			},
		},
	}
}

func buildCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("%w: dataset build needs at least one config path", core.ErrValidation)
	}

	var extra []config.SettingsOption
	if c.IsSet("workers") {
		extra = append(extra, config.WithWorkers(c.Int("workers")))
	}
	ws, err := openWorkspace(c, extra)
	if err != nil {
		return err
	}
	defer ws.Close()

	pipeline, err := ws.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	results, err := pipeline.BuildAll(c.Context, c.Args().Slice()...)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(c.App.Writer, "FAILED %s: %v\n", r.ConfigPath, r.Err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "built %s -> %s (%d of %d samples kept, hash %s)\n",
			r.VersionName, r.Dir, r.NumSamples, r.NumLoaded, r.Hash)
	}
	return err
}

func verifyCommand(c *cli.Context) error {
	name := c.Args().First()
	if err := core.ValidateVersionName(name); err != nil {
		return err
	}

	ws, err := openWorkspace(c, nil, datamill.WithoutCatalog())
	if err != nil {
		return err
	}
	defer ws.Close()

	report, err := dataset.Verify(filepath.Join(ws.Paths().Datasets, name))
	if err != nil {
		return err
	}
	if err := writeJSON(c, report); err != nil {
		return err
	}
	return report.Err()
}

func listCommand(c *cli.Context) error {
	ws, err := openWorkspace(c, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	catalog := ws.Catalog()
	var records []*core.DatasetRecord
	if hash := c.String("hash"); hash != "" {
		records, err = catalog.FindByHash(c.Context, hash)
	} else {
		records, err = catalog.ListDatasetRecords(c.Context)
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSAMPLES\tHASH\tSOURCE\tCREATED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			r.Name, r.NumSamples, shortHash(r.Hash), r.Source, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func auditCommand(c *cli.Context) error {
	ws, err := openWorkspace(c, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	auditor := ws.NewAuditor(
		audit.WithResync(c.Bool("resync")),
		audit.WithPrune(c.Bool("prune")),
		audit.WithBatchSize(c.Int("batch-size")),
		audit.WithProgress(c.App.ErrWriter, c.Int("report-interval")),
	)
	summary, err := auditor.Run(c.Context)
	if err != nil {
		return err
	}

	for _, r := range summary.Results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(c.App.Writer, "FAILED %s: %v\n", r.Version, r.Err)
		case r.Cataloged:
			fmt.Fprintf(c.App.Writer, "ok %s (cataloged)\n", r.Version)
		default:
			fmt.Fprintf(c.App.Writer, "ok %s\n", r.Version)
		}
	}
	for _, name := range summary.Orphaned {
		state := "orphaned"
		if summary.Pruned {
			state = "pruned"
		}
		fmt.Fprintf(c.App.Writer, "%s %s\n", state, name)
	}
	return summary.Err()
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func writeJSON(c *cli.Context, v any) error {
	data, err := fsutil.MarshalJSON(v)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(data)
	return err
}
