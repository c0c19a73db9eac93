package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Validate and print the effective factor weights",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, err := getConfig()
		if err != nil {
			return err
		}

		weights, err := weightsFromFlags(cmd, config)
		if err != nil {
			return err
		}

		pretty, err := json.MarshalIndent(weights, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\nsum: %.4f\n", pretty, weights.Sum())
		return err
	},
}

func init() {
	rootCmd.AddCommand(weightsCmd)

	weightsCmd.Flags().StringArrayP("weight", "w", nil, "override a factor weight, e.g. --weight education=0.1")
	weightsCmd.Flags().Bool("normalize", false, "normalize weights instead of rejecting an invalid sum")
}
