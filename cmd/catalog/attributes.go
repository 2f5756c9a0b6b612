package main

import (
	"github.com/asakaida/unicatalog/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

func newAttributesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attributes",
		Short: "Inspect and seed the attribute dictionary",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all attributes by name",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				attrs, err := catalog.GetAllAttributes(cmd.Context())
				if err != nil {
					return err
				}
				return printAttributes(cmd.OutOrStdout(), attrs)
			},
		},
		&cobra.Command{
			Use:   "seed <file.yaml>",
			Short: "Declare attributes from a YAML file",
			Long: `Declare attributes from a YAML file of the form

  attributes:
    - name: credits
      data_type: number
      description: Credit hours awarded on completion

Existing attributes keep their stored data type.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				defs, err := config.LoadAttributeDefinitions(args[0])
				if err != nil {
					return err
				}
				attrs, err := catalog.RegisterAttributes(cmd.Context(), defs)
				if err != nil {
					return err
				}
				return printAttributes(cmd.OutOrStdout(), attrs)
			},
		},
	)
	return cmd
}
