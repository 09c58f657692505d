package flood

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/statsd-instrument/instrument/flooder/pkg/flood"
)

// floodCmd represents the base command when called without any subcommands
var floodCmd = &cobra.Command{
	Use:   "flood",
	Short: "Sends a lot of statsd points.",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		logger := logrus.StandardLogger()
		if v.GetBool(flood.ParamVerbose) {
			logger.SetLevel(logrus.DebugLevel)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		report, err := flood.Flood(ctx, flood.ConfigFromViper(v), logger)
		if err != nil {
			return err
		}
		return jsoniter.NewEncoder(cmd.OutOrStdout()).Encode(report)
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Prints the samples of a statsb store as JSON lines.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		n, err := flood.Dump(f, cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		logrus.Debugf("Dumped %d records", n)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := floodCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flood.AddFlags(floodCmd.Flags())
	floodCmd.AddCommand(dumpCmd)
}
