package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"refactorgen/internal/analysis"
	"refactorgen/internal/config"
	"refactorgen/internal/llm"
	"refactorgen/internal/pipeline"
	"refactorgen/internal/report"
	t "refactorgen/internal/types"
)

// app holds what every subcommand needs after flags are resolved.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	out    *report.Printer
	status io.Writer
	store  analysis.Store
}

func newApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Root().PersistentFlags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if v, _ := flags.GetString("provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v, _ := flags.GetString("model"); v != "" {
		cfg.LLM.Model = v
	}

	colorFlag, _ := flags.GetString("color")
	var useColor bool
	switch colorFlag {
	case "on":
		useColor = true
	case "off":
	case "auto":
		f, ok := cmd.OutOrStdout().(*os.File)
		useColor = ok && isTerminal(f)
	default:
		return nil, fmt.Errorf("unknown color mode: %s (want auto|on|off)", colorFlag)
	}

	logger := log.New(cmd.ErrOrStderr(), "refactorgen: ", log.LstdFlags)
	return &app{
		cfg:    cfg,
		logger: logger,
		out:    report.NewPrinter(cmd.OutOrStdout(), useColor),
		status: cmd.ErrOrStderr(),
		store:  analysis.NewFromConfig(cfg.Store, logger),
	}, nil
}

func (a *app) statusf(format string, args ...any) {
	fmt.Fprintf(a.status, format+"\n", args...)
}

func (a *app) gateway(cmd *cobra.Command) (*llm.Gateway, error) {
	return llm.New(cmd.Context(), a.cfg.LLM, a.logger)
}

// analyze parses path and attaches its responsibility clusters.
func (a *app) analyze(cmd *cobra.Command, gw *llm.Gateway, path string) (*t.StructuralModel, error) {
	parser := &pipeline.ModelParser{LLM: gw, Language: a.cfg.Pipeline.Language}
	model, err := parser.Parse(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	analyzer := &pipeline.ResponsibilityAnalyzer{LLM: gw, Language: a.cfg.Pipeline.Language}
	clusters, err := analyzer.Analyze(cmd.Context(), model)
	if err != nil {
		return nil, err
	}
	model.ResponsibilityClusters = clusters
	return model, nil
}
