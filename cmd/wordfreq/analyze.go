package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperifyio/wordfreq/internal/app"
)

func newAnalyzeCmd(ro *rootOptions) *cobra.Command {
	var (
		out       string
		printText bool
		pf        *pipelineFlags
	)
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Chart the most frequent words of one page",
		Long: `Fetch the page at <url>, print the ranked word table to stdout and write
the chart. The text backend writes to stdout unless --out is given; other
backends default to wordfreq-<chart>.<ext> in the working directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, ro, pf)
			if err != nil {
				return err
			}
			cfg.URL = args[0]
			cfg.OutputPath = out
			cfg.PrintText = printText

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	pf = addPipelineFlags(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the chart here; - means stdout")
	cmd.Flags().BoolVar(&printText, "print-text", false, "Print the cleaned page text before the table")
	return cmd
}
