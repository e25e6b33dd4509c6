package run

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	puppis "github.com/puppis-io/puppis"
	"github.com/puppis-io/puppis/pkg/configuration"
	"github.com/puppis-io/puppis/utils/log"
)

var config struct {
	httpAddr string
	logLevel string
	umount   bool
}

var rootCmd = &cobra.Command{
	Use:     "puppis",
	Version: puppis.Version,
	Short:   "Block device stack teardown",
	Long: `puppis dismantles layered storage stacks (device mapper, software
raid, bcache) from block devices before they are provisioned again.

The holder tree under /sys is walked bottom up, every virtual layer is
shut down before the devices it sits on.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if config.logLevel != "" {
			return log.SetLevel(config.logLevel)
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear <device>...",
	Short: "Dismantle everything stacked on the given devices",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if cmd.Flags().Changed("umount") {
			configuration.GlobalConfig.Set("umountBeforeClear", config.umount)
		}
		return runClear(args)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [device]",
	Short: "Show the holder stack of one device or of every device",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runStatus(args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve clear and status over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return subMain()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&config.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	clearCmd.Flags().BoolVar(&config.umount, "umount", true, "Unmount filesystems backed by the devices before clearing")
	serveCmd.Flags().StringVar(&config.httpAddr, "http-addr", puppis.DefaultListenAddr, "Listen address for the http server")
	rootCmd.AddCommand(clearCmd, statusCmd, serveCmd)
}
