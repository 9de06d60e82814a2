package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/medscan/pkg/vocabulary"
)

func diseasesCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diseases",
		Short: "List the diseases that can be detected",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(global)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range a.pipeline.SupportedDiseases() {
				fmt.Fprintln(out, d)
			}
			return nil
		},
	}
}

func vocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Inspect disease and allergy vocabularies",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Validate a vocabulary file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := vocabulary.LoadFile(args[0])
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s: %d diseases, %d allergy terms\n",
				args[0], len(v.Diseases()), len(v.Allergies()))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print the built-in vocabulary as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := vocabulary.Default().Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	return cmd
}
