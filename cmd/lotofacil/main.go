// Package main provides the CLI entrypoint for lotofacil.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kydenul/lotofacil"
)

// app holds what every subcommand shares once the root command has run
type app struct {
	configFile  string
	historyFile string
	metricsFile string
	verbose     bool
	jsonOutput  bool

	zap    *zap.Logger
	logger *lotofacil.ZapLogger
	config *lotofacil.Config
	engine *lotofacil.StrategyEngine
	store  *lotofacil.RedisStore
}

func main() {
	a := &app{}
	rootCmd := newRootCmd(a)
	err := rootCmd.Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "lotofacil",
		Short:             "Lotofácil game generation and analysis",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: search ./config.yaml, /etc/lotofacil, $HOME/.lotofacil)")
	flags.StringVar(&a.historyFile, "history", "", "results spreadsheet (.xlsx); the Redis snapshot is used when empty")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file on exit")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&a.jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(newCombosCmd(a))
	rootCmd.AddCommand(newBalancedCmd(a))
	rootCmd.AddCommand(newFixedCmd(a))
	rootCmd.AddCommand(newClosureCmd(a))
	rootCmd.AddCommand(newSpreadCmd(a))
	rootCmd.AddCommand(newFrequencyCmd(a))
	rootCmd.AddCommand(newCycleCmd(a))
	rootCmd.AddCommand(newCycleClosureCmd(a))
	rootCmd.AddCommand(newProbabilityCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newLatestCmd(a))
	rootCmd.AddCommand(newBetsCmd(a))

	return rootCmd
}

func (a *app) setup(_ *cobra.Command, _ []string) error {
	var err error
	if a.verbose {
		a.zap, err = zap.NewDevelopment()
	} else {
		a.zap, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = lotofacil.NewZapLogger(a.zap)

	cm := lotofacil.NewConfigManager()
	cm.SetLogger(a.logger)
	if a.configFile != "" {
		cm.SetConfigFile(a.configFile)
	}
	if a.config, err = cm.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a.engine = lotofacil.NewStrategyEngineWithConfigAndLogger(cm, a.logger)
	return nil
}

func (a *app) close() {
	if a.metricsFile != "" && a.engine != nil {
		if err := a.writeMetrics(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write metrics: %v\n", err)
		}
	}
	if a.logger != nil {
		// stderr sync fails on some terminals; nothing useful to do about it
		_ = a.logger.Sync()
	}
}

// writeMetrics dumps the run statistics for the node exporter textfile collector
func (a *app) writeMetrics() error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(lotofacil.NewMetricsCollector("", a.engine.Monitor())); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(a.metricsFile, reg)
}

// redisStore connects lazily so that commands working on a spreadsheet never
// need Redis.
func (a *app) redisStore() *lotofacil.RedisStore {
	if a.store == nil {
		client := lotofacil.NewRedisClientFromConfig(a.config.Redis)
		a.store = lotofacil.NewRedisStoreWithConfig(client, a.config.Redis, a.logger)
		a.store.SetMonitor(a.engine.Monitor())
	}
	return a.store
}

func (a *app) loadHistory(ctx context.Context) ([]lotofacil.Draw, error) {
	if a.historyFile == "" {
		return a.redisStore().LoadHistory(ctx)
	}
	f, err := os.Open(a.historyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()
	return lotofacil.ImportDrawsXLSX(f)
}

func (a *app) printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (a *app) printResult(cmd *cobra.Command, result *lotofacil.StrategyResult) error {
	if a.jsonOutput {
		return a.printJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	for i, g := range result.Games {
		fmt.Fprintf(out, "%4d  %s\n", i+1, formatNumbers(g))
	}
	meta := result.Metadata
	fmt.Fprintf(out, "\n%s: %d game(s)\n", meta.Strategy, meta.GamesGenerated)
	if meta.Coverage != nil {
		fmt.Fprintf(out, "coverage: %d/%d (%.2f%%)\n", meta.CoveredSubsets, meta.TotalSubsets, *meta.Coverage*100)
	}
	if meta.Notes != "" {
		fmt.Fprintln(out, meta.Notes)
	}
	return nil
}

func formatNumbers(numbers []lotofacil.Number) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = fmt.Sprintf("%02d", int(n))
	}
	return strings.Join(parts, " ")
}

// parseNumbers accepts "1,2,3" or "01 02 03"
func parseNumbers(s string) ([]lotofacil.Number, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	out := make([]lotofacil.Number, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		n := lotofacil.Number(v)
		if !n.Valid() {
			return nil, fmt.Errorf("number %d is outside 1..25", v)
		}
		out = append(out, n)
	}
	return out, nil
}
