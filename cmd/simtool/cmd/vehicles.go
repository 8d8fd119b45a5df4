package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(vehiclesCmd)
}

var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "list the vehicle types the firmware supports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		vehicles, err := c.SupportedVehicles(cmd.Context())
		if err != nil {
			return err
		}
		for _, v := range vehicles {
			fmt.Println(v)
		}
		return nil
	},
}
