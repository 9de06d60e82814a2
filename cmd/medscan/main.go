package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:           "medscan",
		Short:         "Extract patient details, lab values, diseases and allergies from medical report text",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(extractCmd(&opts))
	root.AddCommand(serveCmd(&opts))
	root.AddCommand(diseasesCmd(&opts))
	root.AddCommand(vocabCmd())

	return root
}
