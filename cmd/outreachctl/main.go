// Command outreachctl runs the outreach operations locally against
// in-memory stores: lead generation, content rendering, financing quotes,
// payments and campaign simulations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var catalogPath string

	root := &cobra.Command{
		Use:           "outreachctl",
		Short:         "SolidITMinds outreach operator tool",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "YAML program/template catalog (default: embedded)")

	env := &appEnv{catalogPath: &catalogPath}
	root.AddCommand(leadsCmd(env))
	root.AddCommand(contentCmd(env))
	root.AddCommand(financingCmd(env))
	root.AddCommand(paymentCmd(env))
	root.AddCommand(campaignCmd(env))
	return root
}
