package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/sdftrace/pkg/scene"
)

var funcsCmd = &cobra.Command{
	Use:   "funcs",
	Short: "List the scene functions and their defaults",
	Args:  cobra.NoArgs,
	Run:   runFuncs,
}

func init() {
	rootCmd.AddCommand(funcsCmd)
}

func runFuncs(cmd *cobra.Command, args []string) {
	reg := scene.Default()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, name := range reg.Names() {
		f, _ := reg.Lookup(name)
		fmt.Fprintf(w, "%s\t%s\n", f.Signature(), f.Doc)
	}
	for _, name := range reg.Constants() {
		v, _ := reg.Const(name)
		fmt.Fprintf(w, "%s\t= %s\n", name, v)
	}
	w.Flush()
}
