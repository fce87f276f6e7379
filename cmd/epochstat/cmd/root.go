package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"emperror.dev/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/voluzi/epochstat/internal/environ"
	"github.com/voluzi/epochstat/pkg/oracle"
	"github.com/voluzi/epochstat/pkg/procstat"
	"github.com/voluzi/epochstat/pkg/report"
	"github.com/voluzi/epochstat/pkg/sampler"
	"github.com/voluzi/epochstat/pkg/statscollector"
)

const (
	OracleCommand = "command"
	OracleRPC     = "rpc"
)

// ErrProcessNotAlive is returned when the target process is not running at start.
const ErrProcessNotAlive = errors.Sentinel("process is not alive")

const notAliveMessage = "Specified process is not alive!"

type flags struct {
	logLevel      string
	oracle        string
	oracleCommand string
	rpcURL        string
	mode          string
	groupBy       string
	output        string
	reportPeriod  time.Duration
	procPath      string
	throttle      bool
}

// NewRootCmd builds the epochstat command.
func NewRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "epochstat <pid> [sampling-interval-ms]",
		Short: "Samples per-thread accounting stats of a process until the next epoch",
		Long: `epochstat samples user time, system time, io wait time and page faults of every
thread of a process and averages them per thread name. Sampling stops a tenth of
an epoch after the end of the epoch that was running when it started.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logLvl, err := log.ParseLevel(f.logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			log.SetLevel(logLvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level",
		environ.GetString("LOG_LEVEL", "info"),
		"Log level. One of trace, debug, info, warn, error, fatal, panic.",
	)
	rootCmd.Flags().StringVar(&f.oracle, "oracle",
		environ.GetString("ORACLE", OracleCommand),
		"Where to get the current slot from. One of command, rpc.",
	)
	rootCmd.Flags().StringVar(&f.oracleCommand, "oracle-command",
		environ.GetString("ORACLE_COMMAND", oracle.DefaultCommand+" "+oracle.DefaultArg),
		"Command printing the current slot",
	)
	rootCmd.Flags().StringVar(&f.rpcURL, "rpc-url",
		environ.GetString("RPC_URL", oracle.DefaultRPCURL),
		"JSON-RPC endpoint queried with getSlot when --oracle=rpc",
	)
	rootCmd.Flags().StringVar(&f.mode, "mode",
		environ.GetString("MODE", string(statscollector.ModeCumulative)),
		"What is averaged. One of cumulative (raw kernel counters), delta (difference between samples).",
	)
	rootCmd.Flags().StringVar(&f.groupBy, "group-by",
		environ.GetString("GROUP_BY", string(statscollector.GroupByName)),
		"Registry key. One of name, thread.",
	)
	rootCmd.Flags().StringVar(&f.output, "output",
		environ.GetString("OUTPUT", string(report.FormatText)),
		"Output format. One of text, json, yaml, toml, prom.",
	)
	rootCmd.Flags().DurationVar(&f.reportPeriod, "report-period",
		environ.GetDuration("REPORT_PERIOD", time.Second),
		"Period for progress reporting",
	)
	rootCmd.Flags().StringVar(&f.procPath, "proc-path",
		environ.GetString("PROC_PATH", environ.GetString(procstat.HostProcEnv, "/proc")),
		"Mount point of the proc filesystem",
	)
	rootCmd.Flags().BoolVar(&f.throttle, "throttle",
		environ.GetBool("THROTTLE", true),
		"Wait the sampling interval between iterations",
	)

	return rootCmd
}

func run(cmd *cobra.Command, f *flags, args []string) error {
	pid, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid pid %q: %w", args[0], err)
	}

	interval := sampler.DefaultInterval
	if len(args) > 1 {
		ms, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid sampling interval %q: %w", args[1], err)
		}
		interval = time.Duration(ms) * time.Millisecond
	}

	mode, err := statscollector.ParseMode(f.mode)
	if err != nil {
		return err
	}
	groupBy, err := statscollector.ParseGroupBy(f.groupBy)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(f.output)
	if err != nil {
		return err
	}
	o, err := newOracle(f)
	if err != nil {
		return err
	}

	// gopsutil only looks at HOST_PROC
	if err := os.Setenv(procstat.HostProcEnv, f.procPath); err != nil {
		return err
	}

	ctx := cmd.Context()
	alive, err := procstat.Alive(ctx, int(pid))
	if err != nil {
		return err
	}
	if !alive {
		return ErrProcessNotAlive
	}

	source, err := procstat.NewProcSource(int(pid), procstat.WithProcPath(f.procPath))
	if err != nil {
		return err
	}

	opts := []sampler.Option{
		sampler.WithObserver(report.NewLogObserver(f.reportPeriod)),
		sampler.WithCollectorOptions(
			statscollector.WithMode(mode),
			statscollector.WithGroupBy(groupBy),
		),
	}
	if f.throttle {
		opts = append(opts, sampler.WithInterval(interval))
	}

	start := time.Now()
	result, err := sampler.New(o, source, opts...).Run(ctx)
	if err != nil {
		return err
	}
	log.WithFields(map[string]interface{}{
		"time-elapsed": time.Since(start),
		"iterations":   result.Iterations,
		"entries":      result.Collector.Len(),
	}).Info("sampling finished")

	return report.Write(cmd.OutOrStdout(), result.Collector, format)
}

func newOracle(f *flags) (oracle.Oracle, error) {
	switch f.oracle {
	case OracleCommand:
		return oracle.ParseCommand(f.oracleCommand)
	case OracleRPC:
		return oracle.NewRPCOracle(f.rpcURL), nil
	default:
		return nil, fmt.Errorf("unsupported oracle: %s", f.oracle)
	}
}

// ExitCode reports err the way the command line expects and returns the
// process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrProcessNotAlive) {
		fmt.Println(notAliveMessage)
		return 1
	}

	fields := log.Fields{}
	details := errors.GetDetails(err)
	for i := 0; i+1 < len(details); i += 2 {
		fields[fmt.Sprint(details[i])] = details[i+1]
	}
	log.WithFields(fields).Error(err)
	return 1
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := ExitCode(NewRootCmd().ExecuteContext(ctx))
	stop()
	os.Exit(code)
}
