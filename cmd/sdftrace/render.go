package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/sdftrace/pkg/session"
)

var (
	renderOutput string
	renderView   viewFlags
)

var renderCmd = &cobra.Command{
	Use:   "render [scene]",
	Short: "Render a scene file to PNG",
	Long:  "Evaluate a Lisp scene and sphere-trace it into a greyscale PNG image.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "out.png", "Output PNG file")
	renderView.register(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := renderView.apply(cmd, &cfg); err != nil {
		return err
	}

	s, err := session.New(cfg)
	if err != nil {
		return err
	}
	if err := evaluateFile(s, args[0], cmd.ErrOrStderr()); err != nil {
		return err
	}
	if err := writePNG(s, renderOutput); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", renderOutput, cfg.Width, cfg.Height)
	return nil
}
