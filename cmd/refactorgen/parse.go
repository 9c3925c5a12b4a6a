package main

import (
	"github.com/spf13/cobra"

	"refactorgen/internal/apperr"
	"refactorgen/internal/report"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse -p FILE",
		Short: "Parse and analyze a module",
		Args:  cobra.NoArgs,
		RunE:  runParse,
	}
	cmd.Flags().StringP("file", "p", "", "path to the module to analyze")
	cmd.Flags().StringP("format", "o", report.FormatText, "output format (text|json)")
	cmd.Flags().StringP("save", "s", "", "save the analysis under this key (a file path for the file store)")
	return cmd
}

func runParse(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("file")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetString("save")
	if file == "" {
		return apperr.New(apperr.KindValidation, "parse", "--file is required")
	}
	if err := report.CheckFormat(format); err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	gw, err := a.gateway(cmd)
	if err != nil {
		return err
	}
	defer gw.Close()

	model, err := a.analyze(cmd, gw, file)
	if err != nil {
		return err
	}
	if err := a.out.Analysis(model, format); err != nil {
		return err
	}
	if save != "" {
		if err := a.store.Save(cmd.Context(), save, model); err != nil {
			return err
		}
		a.statusf("Analysis saved to: %s", save)
	}
	return nil
}
