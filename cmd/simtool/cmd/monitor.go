package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/simfors/cansim"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func init() {
	rootCmd.AddCommand(monitorCmd)
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "stream status updates and errors from the simulator",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("Entering monitoring mode, ctrl-c to stop")
		c, err := connect(cmd)
		if err != nil {
			return err
		}

		c.SetOnStatus(func(s *cansim.Status) {
			fmt.Printf("%s | %s\n", time.Now().Format("15:04:05"), s.ColorString())
		})
		c.SetOnError(func(msg string) {
			log.Println("simulator error:", msg)
		})

		g, gctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-c.Done():
					// drain whatever the dying session still queued
					for {
						select {
						case ev := <-c.Events():
							log.Println(ev.String())
						default:
							return nil
						}
					}
				case ev := <-c.Events():
					log.Println(ev.String())
				}
			}
		})
		g.Go(func() error {
			select {
			case <-gctx.Done():
			case <-c.Done():
				// transport failure, the session is already on its
				// way down
			}
			return c.Close()
		})
		return g.Wait()
	},
}
