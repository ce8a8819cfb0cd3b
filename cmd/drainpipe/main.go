//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Stormworks Group
//
// This file is part of Drainpipe.
//
// Drainpipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Drainpipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Drainpipe. If not, see https://www.gnu.org/licenses/.

// Command drainpipe runs the Stormworks reporting pipelines from the
// terminal. The process exit code reflects the run: 0 when every task
// succeeded, 2 when some tasks succeeded, 1 when none did.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stormworks/drainpipe/config"
	"github.com/stormworks/drainpipe/dag"
	"github.com/stormworks/drainpipe/pipelines"
	"github.com/stormworks/drainpipe/warehouse"
)

var (
	configPath string
	reportPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "drainpipe",
		Short:         "Stormworks reporting pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (YAML)")
	root.PersistentFlags().StringVar(&reportPath, "report", "", "write the run report as JSON to this path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		runCommand(pipelines.PipelineFull, "run", "Run the full pipeline: extract, load raw, transform, load analytics"),
		runCommand(pipelines.PipelineExtract, "extract", "Extract from every source and load raw tables"),
		runCommand(pipelines.PipelineTransform, "transform", "Rebuild analytics tables from staged raw data"),
		tasksCommand(),
		exportCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "drainpipe:", err)
		os.Exit(dag.ExitFailed)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(configPath)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runCommand(pipeline, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := pipelines.New(pipeline)
			if err != nil {
				return err
			}

			engine := dag.NewEngine(dag.WithLogger(newLogger()))
			report, err := engine.Execute(cmd.Context(), p, cfg)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), report.Summary())
			if reportPath != "" {
				if err := writeReport(reportPath, report); err != nil {
					return err
				}
			}
			os.Exit(report.ExitCode())
			return nil
		},
	}
}

func writeReport(path string, report *dag.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// tasksCommand prints the execution order of a pipeline without running it.
func tasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "tasks [pipeline]",
		Short:     "Print a pipeline's tasks in execution order",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{pipelines.PipelineFull, pipelines.PipelineExtract, pipelines.PipelineTransform},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := pipelines.PipelineFull
			if len(args) == 1 {
				name = args[0]
			}
			p, err := pipelines.New(name)
			if err != nil {
				return err
			}
			order, err := p.ExecutionOrder()
			if err != nil {
				return err
			}
			for i, taskName := range order {
				task, _ := p.Task(taskName)
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %-24s %s\n", i+1, taskName, task.Description())
			}
			return nil
		},
	}
}

// exportCommand dumps one warehouse table to a Parquet file for sharing
// with tools that do not speak the warehouse.
func exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <table> <file.parquet>",
		Short: "Export a warehouse table to a Parquet file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := warehouse.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			table, err := store.GetTable(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := warehouse.ExportParquet(args[1], table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d records to %s\n", len(table), args[1])
			return nil
		},
	}
}
