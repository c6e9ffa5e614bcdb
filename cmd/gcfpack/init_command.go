package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gcfpack/internal/meta"
)

func newInitCommand() *cobra.Command {
	var outputPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an example description file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = "gcf.json"
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("description file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check description path: %w", err)
				}
			}

			if err := meta.WriteSample(target); err != nil {
				return fmt.Errorf("write sample description: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote example description to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "gcf.json", "Output file name")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing file")

	return cmd
}
