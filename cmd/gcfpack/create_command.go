package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gcfpack/internal/packer"
	"gcfpack/internal/preflight"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var descriptionPath string
	var outputPath string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a GCF container from a description",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			p := packer.New(logger, packer.WithFreeSpaceCheck(cfg.Pack.FreeSpaceCheck))
			out := cmd.OutOrStdout()

			if dryRun {
				desc, _, err := p.LoadDescription(descriptionPath)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "Description is valid.")
				fmt.Fprintln(out, renderResources(desc))
				return nil
			}

			if strings.TrimSpace(outputPath) == "" {
				return errors.New("--output is required unless --dry-run is set")
			}

			absOutput, err := filepath.Abs(outputPath)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if result := preflight.CheckDirectoryAccess("Output directory", filepath.Dir(absOutput)); !result.Passed {
				return fmt.Errorf("output directory not usable: %s", result.Detail)
			}

			result, err := p.Pack(cmd.Context(), descriptionPath, absOutput)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Packed %d resources into %s (%d bytes in %s)\n",
				result.ResourceCount, absOutput, result.ContainerBytes, result.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&descriptionPath, "description", "i", "", "JSON description file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output GCF file")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Validate the description without creating a container")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}
