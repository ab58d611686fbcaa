package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/poiesic/datamill"
	"github.com/poiesic/datamill/evaluation"
	"github.com/urfave/cli/v2"
)

func modelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "Inspect the model registry",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List registered models",
				Action: modelsListCommand,
			},
			{
				Name:      "show",
				Usage:     "Show the first registered entry of a model version",
				ArgsUsage: "<model-version>",
				Action:    modelsShowCommand,
			},
		},
	}
}

func trainCommand(c *cli.Context) error {
	ws, err := openWorkspace(c, nil, datamill.WithoutCatalog())
	if err != nil {
		return err
	}
	defer ws.Close()

	dir, err := ws.NewTrainer().Train(c.Context, c.String("config"), c.String("model-version"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "trained %s -> %s\n", c.String("model-version"), dir)
	return nil
}

func evaluateCommand(c *cli.Context) error {
	ws, err := openWorkspace(c, nil, datamill.WithoutCatalog())
	if err != nil {
		return err
	}
	defer ws.Close()

	dir, err := ws.NewEvaluator().Evaluate(c.Context, c.String("model-version"))
	if err != nil {
		return err
	}
	result, err := evaluation.LoadEvaluation(dir)
	if err != nil {
		return err
	}
	return writeJSON(c, result)
}

func runCommand(c *cli.Context) error {
	ws, err := openWorkspace(c, nil, datamill.WithoutCatalog())
	if err != nil {
		return err
	}
	defer ws.Close()

	pipeline, err := ws.NewTrainingPipeline()
	if err != nil {
		return err
	}
	result, err := pipeline.Run(c.Context, c.String("config"), c.String("model-version"))
	if err != nil {
		return err
	}
	return writeJSON(c, result)
}

func modelsListCommand(c *cli.Context) error {
	ws, err := openWorkspace(c, nil, datamill.WithoutCatalog())
	if err != nil {
		return err
	}
	defer ws.Close()

	models, err := ws.Registry().List()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tBASE\tDATASET\tSAMPLES\tTRAINED")
	for _, m := range models {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			m.ModelVersion, m.BaseModel, m.DatasetVersion, m.NumTrainingSamples, m.TrainedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func modelsShowCommand(c *cli.Context) error {
	ws, err := openWorkspace(c, nil, datamill.WithoutCatalog())
	if err != nil {
		return err
	}
	defer ws.Close()

	model, err := ws.Registry().Get(c.Args().First())
	if err != nil {
		return err
	}
	return writeJSON(c, model)
}
