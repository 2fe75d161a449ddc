package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"chainlist-rpcs/internal/adapter/rpc"
	"chainlist-rpcs/internal/adapter/storage/chainlist"
	"chainlist-rpcs/internal/adapter/storage/endpointfile"
	"chainlist-rpcs/internal/adapter/storage/memory"
	"chainlist-rpcs/internal/application"
	"chainlist-rpcs/internal/application/port"
	"chainlist-rpcs/internal/config"
	"chainlist-rpcs/internal/domain/entity"
	domainService "chainlist-rpcs/internal/domain/service"
	"chainlist-rpcs/internal/logger"
)

var errNoWorkingRPCs = errors.New("no working RPCs")

// probeOptions are the parsed probe flags.
type probeOptions struct {
	file        string
	timeout     time.Duration
	hasTimeout  bool
	workingOnly bool
	noColor     bool
	failIfNone  bool
}

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe [chainIdOrShortName]",
		Short: "Probe the RPC endpoints of a chain or of an endpoint file",
		Long: `Probe every RPC endpoint of a chain, or of a YAML endpoint file, and print the report.

The report is JSON with allRpcs, workingRpcs and notWorkingRpcs. A latency summary of the
working endpoints goes to stderr.

Example:
  rpcprobe probe eth
  rpcprobe probe 8453 --timeout 500ms --working-only
  rpcprobe probe --file endpoints.yaml --fail-if-none`,
		Args: cobra.MaximumNArgs(1),
		RunE: runProbe,
	}

	cmd.Flags().StringP("file", "f", "", "YAML file listing endpoints to probe instead of a chain")
	cmd.Flags().Duration("timeout", 0, "per-probe timeout (default from config, 0 disables)")
	cmd.Flags().Bool("working-only", false, "print only the working endpoints")
	cmd.Flags().Bool("no-color", false, "disable colored JSON output")
	cmd.Flags().Bool("fail-if-none", false, "exit non-zero when no endpoint works")
	return cmd
}

func parseProbeOptions(cmd *cobra.Command, args []string) (probeOptions, error) {
	var opts probeOptions
	opts.file, _ = cmd.Flags().GetString("file")
	opts.timeout, _ = cmd.Flags().GetDuration("timeout")
	opts.hasTimeout = cmd.Flags().Changed("timeout")
	opts.workingOnly, _ = cmd.Flags().GetBool("working-only")
	opts.noColor, _ = cmd.Flags().GetBool("no-color")
	opts.failIfNone, _ = cmd.Flags().GetBool("fail-if-none")

	switch {
	case opts.file == "" && len(args) == 0:
		return opts, errors.New("give a chain id or short name, or --file")
	case opts.file != "" && len(args) > 0:
		return opts, errors.New("a chain and --file cannot be combined")
	case opts.hasTimeout && opts.timeout < 0:
		return opts, fmt.Errorf("--timeout must not be negative, got %v", opts.timeout)
	}
	return opts, nil
}

func runProbe(cmd *cobra.Command, args []string) error {
	opts, err := parseProbeOptions(cmd, args)
	if err != nil {
		return err
	}

	cfgDir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgDir)
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	cliLogger, err := newCLILogger(cfg.Logger, verbose)
	if err != nil {
		return err
	}
	defer cliLogger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service := newService(ctx, *cfg, cliLogger)

	var report entity.ProbeReport
	var label string
	if opts.file != "" {
		file, err := endpointfile.Load(opts.file)
		if err != nil {
			return err
		}
		timeout := cfg.Checker.GetTimeout()
		if file.Timeout > 0 {
			timeout = file.Timeout
		}
		if opts.hasTimeout {
			timeout = opts.timeout
		}
		label = file.Name
		report = service.ProbeEndpoints(ctx, file.Endpoints, timeout)
	} else {
		label = args[0]
		timeout := cfg.Checker.GetTimeout()
		if opts.hasTimeout {
			timeout = opts.timeout
		}
		report, err = service.ProbeChainWithTimeout(ctx, args[0], timeout)
		if err != nil {
			return err
		}
	}

	if err := writeReport(cmd.OutOrStdout(), report, opts); err != nil {
		return err
	}
	writeSummary(cmd.ErrOrStderr(), label, application.NewReportStats(report))

	if opts.failIfNone && len(report.Working) == 0 {
		return errNoWorkingRPCs
	}
	return nil
}

// newService wires the probing stack the same way the API server does, minus caching across runs.
func newService(ctx context.Context, cfg config.Config, log *zap.Logger) port.ChainService {
	cfg.Chainlist.RefreshInterval = 0

	aggregator := application.NewAggregator(
		map[entity.Transport]domainService.TransportProber{
			entity.TransportHTTP:      rpc.NewHTTPProber(log),
			entity.TransportWebSocket: rpc.NewWSProber(log),
		},
		rpc.NewNormalizer(),
		log,
		application.WithMaxConcurrency(cfg.Checker.MaxConcurrency),
	)
	return application.NewChainService(
		ctx,
		chainlist.NewRepository(cfg.Chainlist, log),
		memory.NewCacheRepository(cfg, log),
		aggregator,
		log,
		cfg,
	)
}

func newCLILogger(cfg config.LoggerConfig, verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	cfg.Level = "debug"
	cfg.Encoding = "console"
	cfg.Output = "stderr"
	return logger.NewLogger(cfg)
}

func writeReport(w io.Writer, report entity.ProbeReport, opts probeOptions) error {
	var body any = report
	if opts.workingOnly {
		body = report.Working
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	out := pretty.Pretty(raw)
	if !opts.noColor {
		out = pretty.Color(out, pretty.TerminalStyle)
	}
	_, err = w.Write(out)
	return err
}

func writeSummary(w io.Writer, label string, stats application.ReportStats) {
	if label != "" {
		fmt.Fprintf(w, "%s: ", label)
	}
	fmt.Fprintf(w, "%d/%d working", stats.Working, stats.Total)
	if stats.Measured > 0 {
		fmt.Fprintf(w, ", latency min %.0fms p50 %.0fms p90 %.0fms, highest block %d",
			stats.MinMs, stats.MedianMs, stats.P90Ms, stats.MaxHeight)
	}
	fmt.Fprintln(w)
}
