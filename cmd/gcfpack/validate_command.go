package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gcfpack/internal/packer"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var descriptionPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a description file without creating a container",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			p := packer.New(logger)
			desc, _, err := p.LoadDescription(descriptionPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Description is valid.")
			fmt.Fprintln(out, renderResources(desc))
			return nil
		},
	}

	cmd.Flags().StringVarP(&descriptionPath, "description", "i", "", "JSON description file")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}
