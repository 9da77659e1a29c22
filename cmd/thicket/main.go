package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose     bool
	configPath  string
	metricsAddr string
	log         zerolog.Logger
	registry    *prometheus.Registry
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	config := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:   "thicket",
		Short: "thicket is a tool to grow decision trees and forests",
		Long:  `A tool to grow classification trees and random forests from your data and test them`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.log = newLogger(config.verbose)
			if config.metricsAddr != "" {
				config.serveMetrics()
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log debug information to STDERR")
	rootCmd.PersistentFlags().StringVarP(&(config.configPath), "config", "c", "", "path to a YML file with the training configuration; flags set explicitly override it")
	rootCmd.PersistentFlags().StringVar(&(config.metricsAddr), "metrics-addr", "", "address on which to serve Prometheus metrics while training, e.g. :9090 (disabled by default)")
	rootCmd.AddCommand(versionCmd(), treeCmd(config), forestCmd(config))
	return rootCmd
}

func (rcc *rootCmdConfig) serveMetrics() {
	rcc.registry = prometheus.NewRegistry()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rcc.registry, promhttp.HandlerOpts{}))
	go func() {
		rcc.log.Info().Str("addr", rcc.metricsAddr).Msg("serving metrics")
		err := http.ListenAndServe(rcc.metricsAddr, mux)
		if err != nil {
			rcc.log.Error().Err(err).Msg("serving metrics")
		}
	}()
}
