package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pingCmd)
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "check that the simulator is alive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		start := time.Now()
		if err := c.Ping(cmd.Context()); err != nil {
			return err
		}
		log.Println("pong in", time.Since(start).String())
		return nil
	},
}
