package cmd

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/avast/retry-go"
	"github.com/simfors/cansim"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "simtool",
	Short:        "ESP32 CAN simulator control tool",
	Long:         `Drive the ESP32 CAN-bus simulator over serial or WiFi: set vehicle, gear and speed, watch status updates.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

const (
	flagPort      = "port"
	flagBaudrate  = "baudrate"
	flagTransport = "transport"
	flagAddress   = "address"
	flagDebug     = "debug"
)

func init() {
	log.SetFlags(log.Lshortfile | log.LstdFlags)

	pf := rootCmd.PersistentFlags()
	pf.StringP(flagPort, "p", "*", "com-port, * = print available")
	pf.IntP(flagBaudrate, "b", cansim.DefaultBaudrate, "baudrate")
	pf.StringP(flagTransport, "t", "serial", "transport to use (serial, tcp)")
	pf.StringP(flagAddress, "a", "", "host:port for the tcp transport")
	pf.BoolP(flagDebug, "d", false, "debug mode")
}

// connect builds a client from the persistent flags and establishes
// the session, retrying a couple of times since the simulator needs a
// moment after a replug before the port answers.
func connect(cmd *cobra.Command) (*cansim.Client, error) {
	ctx := cmd.Context()

	transportName, _ := cmd.Flags().GetString(flagTransport)
	port, _ := cmd.Flags().GetString(flagPort)
	baudrate, _ := cmd.Flags().GetInt(flagBaudrate)
	address, _ := cmd.Flags().GetString(flagAddress)
	debug, _ := cmd.Flags().GetBool(flagDebug)

	if transportName == "serial" {
		resolved, err := cansim.ResolvePort(port)
		if err != nil {
			return nil, err
		}
		port = resolved
	}

	cfg := &cansim.Config{
		Port:         port,
		PortBaudrate: baudrate,
		Address:      address,
		Debug:        debug,
		OnMessage: func(msg string) {
			log.Println("sim: " + msg)
		},
	}

	transport, err := cansim.NewTransport(transportName, cfg)
	if err != nil {
		return nil, err
	}

	c := cansim.New(transport, cfg)
	err = retry.Do(
		func() error {
			return c.Connect(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("connect #%d: %s\n", n, err.Error())
		}),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
