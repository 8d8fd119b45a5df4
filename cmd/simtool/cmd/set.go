package cmd

import (
	"log"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/simfors/cansim"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "set vehicle, gear, speed or CAN transmission state",
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.AddCommand(setVehicleCmd)
	setCmd.AddCommand(setGearCmd)
	setCmd.AddCommand(setSpeedCmd)
	setCmd.AddCommand(setCANCmd)
}

var setVehicleCmd = &cobra.Command{
	Use:   "vehicle [type]",
	Short: "select the simulated vehicle type",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var vehicle string
		if len(args) == 1 {
			vehicle = args[0]
		} else {
			var items []string
			for _, v := range cansim.VehicleTypes() {
				items = append(items, string(v))
			}
			vehicle = selectString("Vehicle", items)
		}
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.SetVehicle(cmd.Context(), cansim.VehicleType(vehicle)); err != nil {
			return err
		}
		log.Println("vehicle set to", vehicle)
		return nil
	},
}

var setGearCmd = &cobra.Command{
	Use:   "gear [position]",
	Short: "move the simulated gear selector",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var gear string
		if len(args) == 1 {
			gear = args[0]
		} else {
			var items []string
			for _, g := range cansim.Gears() {
				items = append(items, string(g))
			}
			gear = selectString("Gear", items)
		}
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.SetGear(cmd.Context(), cansim.Gear(gear)); err != nil {
			return err
		}
		log.Println("gear set to", gear)
		return nil
	},
}

var setSpeedCmd = &cobra.Command{
	Use:   "speed <km/h>",
	Short: "set the simulated speed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kmh, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.SetSpeed(cmd.Context(), kmh); err != nil {
			return err
		}
		log.Printf("speed set to %d km/h\n", kmh)
		return nil
	},
}

var setCANCmd = &cobra.Command{
	Use:   "can <on|off>",
	Short: "start or stop CAN transmission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		active := args[0] == "on"
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.SetCANActive(cmd.Context(), active); err != nil {
			return err
		}
		log.Println("CAN transmission:", args[0])
		return nil
	},
}

func selectString(label string, items []string) string {
	prompt := promptui.Select{
		Label:    label,
		HideHelp: true,
		Items:    items,
	}
	_, result, err := prompt.Run()
	if err != nil {
		log.Fatalf("Prompt failed %v\n", err)
	}
	return result
}
