// Command rule-engine classifies a file of URLs against a rule
// specification: rule-engine [flags] <rules-file> <urls-file>.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/edgecomet/ruleengine/internal/batch"
	"github.com/edgecomet/ruleengine/internal/common/configtypes"
	"github.com/edgecomet/ruleengine/internal/common/logger"
	"github.com/edgecomet/ruleengine/internal/common/metricsserver"
	"github.com/edgecomet/ruleengine/internal/loader"
	"github.com/edgecomet/ruleengine/internal/metrics"
	"github.com/edgecomet/ruleengine/internal/ruleengine"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flagSet := flag.NewFlagSet("rule-engine", flag.ContinueOnError)
	workers := flagSet.Int("workers", 4, "number of concurrent workers classifying URLs")
	metricsListen := flagSet.String("metrics-listen", "", "address to serve Prometheus metrics on, e.g. :9090 (disabled if empty)")
	logLevel := flagSet.String("log-level", "", "console log level (debug, info, warn, error); defaults to debug")

	if err := flagSet.Parse(args); err != nil {
		return 1
	}

	positional := flagSet.Args()
	if len(positional) != 2 {
		fmt.Fprintln(os.Stderr, "usage: rule-engine [flags] <rules-file> <urls-file>")
		flagSet.PrintDefaults()
		return 1
	}
	rulesPath, urlsPath := positional[0], positional[1]

	zapLogger, err := newLogger(*logLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	rules, err := loader.LoadFile(rulesPath)
	if err != nil {
		zapLogger.Error("failed to load rule specification", zap.Error(err))
		return 1
	}
	zapLogger.Info("loaded rule specification", zap.Int("rule_count", len(rules)), zap.String("path", rulesPath))

	urls, err := batch.ReadURLs(urlsPath)
	if err != nil {
		zapLogger.Error("failed to read URL file", zap.Error(err))
		return 1
	}

	engine := ruleengine.New(rules)

	var collector *metrics.Collector
	if *metricsListen != "" {
		collector = metrics.NewCollector(zapLogger)
		if _, err := metricsserver.StartMetricsServer(true, *metricsListen, "/metrics", collector, zapLogger); err != nil {
			zapLogger.Error("failed to start metrics server", zap.Error(err))
			return 1
		}
	}

	results, err := batch.Run(context.Background(), engine, collector, urls, *workers, zapLogger)
	if err != nil {
		zapLogger.Error("batch run failed", zap.Error(err))
		return 1
	}

	w := os.Stdout
	for _, line := range results {
		fmt.Fprintf(w, "%s -> %s\n", line.URL, line.Result)
	}

	return 0
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		return logger.NewDefault()
	}
	return logger.New(consoleOnlyConfig(level))
}

// consoleOnlyConfig builds a console-only log configuration at the given
// level, used when -log-level is passed explicitly on the command line.
func consoleOnlyConfig(level string) configtypes.LogConfig {
	return configtypes.LogConfig{
		Level: level,
		Console: configtypes.ConsoleLogConfig{
			Enabled: true,
			Format:  configtypes.LogFormatConsole,
		},
	}
}
