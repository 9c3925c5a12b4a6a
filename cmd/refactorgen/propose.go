package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"refactorgen/internal/apperr"
	"refactorgen/internal/artifact"
	"refactorgen/internal/pipeline"
	"refactorgen/internal/report"
	t "refactorgen/internal/types"
)

func newProposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propose (-p FILE | -a ANALYSIS)",
		Short: "Generate a refactoring proposal and write the new modules",
		Args:  cobra.NoArgs,
		RunE:  runPropose,
	}
	cmd.Flags().StringP("file", "p", "", "path to the module to refactor")
	cmd.Flags().StringP("analysis", "a", "", "key (file path for the file store) of a saved analysis")
	cmd.Flags().StringP("output-dir", "d", "", "directory for the generated modules (default refactored_<module>)")
	cmd.Flags().StringP("format", "o", report.FormatText, "output format (text|json)")
	cmd.Flags().Float64("threshold", pipeline.DefaultThreshold, "minimum cluster confidence in [0,1]")
	cmd.Flags().Int("jobs", 0, "concurrent generation requests (default from config)")
	cmd.Flags().Bool("publish", false, "upload the written modules to the configured S3 bucket")
	return cmd
}

// proposeSource checks that exactly one of file and analysis is set.
func proposeSource(file, analysisKey string) error {
	switch {
	case file != "" && analysisKey != "":
		return apperr.New(apperr.KindValidation, "propose", "cannot provide both file and analysis, choose one or the other")
	case file == "" && analysisKey == "":
		return apperr.New(apperr.KindValidation, "propose", "must provide either a file to analyze or a saved analysis")
	}
	return nil
}

func runPropose(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	file, _ := flags.GetString("file")
	analysisKey, _ := flags.GetString("analysis")
	outDir, _ := flags.GetString("output-dir")
	format, _ := flags.GetString("format")
	publish, _ := flags.GetBool("publish")
	if err := proposeSource(file, analysisKey); err != nil {
		return err
	}
	if err := report.CheckFormat(format); err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if flags.Changed("threshold") {
		a.cfg.Pipeline.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("jobs") {
		a.cfg.Pipeline.Jobs, _ = flags.GetInt("jobs")
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	if publish && !a.cfg.Publish.Enabled() {
		return apperr.New(apperr.KindValidation, "propose", "--publish needs ARTIFACT_S3_ENDPOINT and ARTIFACT_S3_BUCKET")
	}

	gw, err := a.gateway(cmd)
	if err != nil {
		return err
	}
	defer gw.Close()

	var model *t.StructuralModel
	if file != "" {
		a.statusf("Analyzing module: %s", file)
		model, err = a.analyze(cmd, gw, file)
	} else {
		a.statusf("Loading analysis from: %s", analysisKey)
		model, err = a.store.Load(cmd.Context(), analysisKey)
	}
	if err != nil {
		return err
	}
	a.statusf("Analysis complete. Found %d responsibility clusters.", len(model.ResponsibilityClusters))

	a.statusf("Generating refactoring proposal...")
	synth := &pipeline.Synthesizer{
		LLM:       gw,
		Namespace: a.cfg.Layout,
		Language:  a.cfg.Pipeline.Language,
		Jobs:      a.cfg.Pipeline.Jobs,
		Logger:    a.logger,
	}
	proposal, err := pipeline.NewProposer(synth, a.cfg.Pipeline.Threshold, a.logger).Propose(cmd.Context(), model)
	if err != nil {
		return err
	}
	if err := a.out.Proposal(proposal, format); err != nil {
		return err
	}

	// Keep stdout a single JSON document in json mode.
	side := a.out
	if format == report.FormatJSON {
		side = report.NewPrinter(a.status, false)
	}
	side.Validation(pipeline.Validate(proposal, a.cfg.Layout))

	baseDir := outDir
	if baseDir == "" {
		baseDir = artifact.DefaultBaseDir(model.Name)
	}
	w := &artifact.Writer{Namespace: a.cfg.Layout, Logger: a.logger}
	written, err := w.Write(proposal, baseDir)
	side.Written(baseDir, written)
	if err != nil {
		return err
	}

	if publish {
		return a.publish(cmd, side, model.Name, baseDir, written)
	}
	return nil
}

func (a *app) publish(cmd *cobra.Command, out *report.Printer, module, baseDir string, written []string) error {
	s3, err := artifact.NewS3Store(a.cfg.Publish)
	if err != nil {
		return err
	}
	runID := artifact.RunID(module, time.Now())
	pub := &artifact.Publisher{Store: s3, Logger: a.logger}
	keys, err := pub.Publish(cmd.Context(), runID, baseDir, written)
	if err != nil {
		return err
	}
	urls := make(map[string]string, len(keys))
	for _, k := range keys {
		u, err := s3.URL(cmd.Context(), runID, strings.TrimPrefix(k, runID+"/"))
		if err != nil {
			a.logger.Printf("publish: no link for %s: %v", k, err)
			continue
		}
		urls[k] = u
	}
	out.Published(runID, keys, urls)
	return nil
}
