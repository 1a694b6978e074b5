package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hejijunhao/fwdigest/internal/catalog"
	"github.com/hejijunhao/fwdigest/internal/config"
	"github.com/hejijunhao/fwdigest/internal/connector"
	"github.com/hejijunhao/fwdigest/internal/decode"
	"github.com/hejijunhao/fwdigest/internal/logging"
	"github.com/hejijunhao/fwdigest/internal/metrics"
	"github.com/hejijunhao/fwdigest/internal/model"
	"github.com/hejijunhao/fwdigest/internal/notify"
	notifynats "github.com/hejijunhao/fwdigest/internal/notify/nats"
	notifysmtp "github.com/hejijunhao/fwdigest/internal/notify/smtp"
	"github.com/hejijunhao/fwdigest/internal/output/file"
	"github.com/hejijunhao/fwdigest/internal/output/multi"
	"github.com/hejijunhao/fwdigest/internal/output/stdout"
	"github.com/hejijunhao/fwdigest/internal/output/summary"
	"github.com/hejijunhao/fwdigest/internal/output/webhook"
	"github.com/hejijunhao/fwdigest/internal/pipeline"

	// Register connector implementations.
	_ "github.com/hejijunhao/fwdigest/internal/connector/ngfw"
)

type runFlags struct {
	delta       time.Duration
	outputDir   string
	insertOnly  bool
	noNotify    bool
	json        bool
	metricsFile string
	quiet       bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, decode and digest the logs of every configured firewall",
		Long: `Fetch the threat and event logs of every configured firewall for the
last --delta, write one artifact per category into --output-dir and send the
digest to the configured notifiers.

Examples:
  fwdigest run -c /etc/fwdigest/config.yaml
  fwdigest run --delta 1h --no-notify --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, &cfg, root, flags)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration:\n%w", err)
			}
			logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, flags)
		},
	}

	f := cmd.Flags()
	f.DurationVar(&flags.delta, "delta", 0, "length of the time window ending now (default from config, 24h)")
	f.StringVar(&flags.outputDir, "output-dir", "", "directory for the dated artifacts")
	f.BoolVar(&flags.insertOnly, "insert-only", true, "ask firewalls to pre-filter event logs to inserts")
	f.BoolVar(&flags.noNotify, "no-notify", false, "write artifacts without sending the digest")
	f.BoolVar(&flags.json, "json", false, "also write every outcome as NDJSON to stdout")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write prometheus metrics to this textfile")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "suppress the run summary on stderr")
	return cmd
}

// applyRunFlags lets explicitly set flags win over file and env values.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, root *rootFlags, flags runFlags) {
	if root.logLevel != "" {
		cfg.LogLevel = root.logLevel
	}
	changed := cmd.Flags().Changed
	if changed("delta") {
		cfg.Delta = flags.delta
	}
	if changed("output-dir") {
		cfg.OutputDir = flags.outputDir
	}
	if changed("insert-only") {
		cfg.InsertOnly = flags.insertOnly
	}
	if changed("metrics-file") {
		cfg.MetricsFile = flags.metricsFile
	}
	if flags.json {
		// Keep stdout clean for NDJSON.
		cfg.LogFormat = "json"
	}
}

func run(ctx context.Context, cfg config.Config, flags runFlags) error {
	cat := catalog.Empty()
	if cfg.Catalog != "" {
		loaded, err := catalog.Load(cfg.Catalog)
		if err != nil {
			return err
		}
		cat = loaded
		slog.Info("loaded event catalog", "path", cfg.Catalog, "events", cat.Len())
	}

	conns, err := connector.Build(cfg.Endpoints())
	if err != nil {
		return err
	}
	defer closeConnectors(conns)

	fileOut, err := file.New(cfg.OutputDir, time.Now())
	if err != nil {
		return err
	}
	outputs := multi.New().Add("file", fileOut)
	if !flags.quiet {
		outputs.Add("summary", summary.New())
	}
	if flags.json {
		outputs.Add("stdout", stdout.New(false))
	}
	if cfg.Webhook != nil {
		outputs.Add("webhook", webhook.New(cfg.Webhook.URL, webhook.WithHeaders(cfg.Webhook.Headers)))
	}

	m := metrics.New()
	p := pipeline.New(conns, decode.New(cat), outputs,
		pipeline.WithInsertOnly(cfg.InsertOnly),
		pipeline.WithMetrics(m),
	)
	defer p.Close()

	report, runErr := p.Run(ctx, cfg.Delta)
	errs := []error{runErr}
	logReport(report)

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			errs = append(errs, err)
		}
	}

	if !flags.noNotify {
		errs = append(errs, deliver(ctx, cfg, report, fileOut.Artifacts()))
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, cfg config.Config, report model.Report, artifacts []string) error {
	notifiers, err := buildNotifiers(cfg)
	if err != nil {
		return err
	}
	if len(notifiers) == 0 {
		slog.Info("no notifiers configured")
		return nil
	}
	defer notify.CloseAll(notifiers...)

	digest, err := notify.NewDigest(report, artifacts)
	if err != nil {
		return err
	}
	if err := notify.SendAll(ctx, digest, notifiers...); err != nil {
		slog.Error("digest delivery failed", "error", err)
		return err
	}
	return nil
}

func buildNotifiers(cfg config.Config) ([]notify.Notifier, error) {
	var out []notify.Notifier
	if e := cfg.Email; e != nil {
		n, err := notifysmtp.New(notifysmtp.Config{
			Host:     e.Host,
			Port:     e.Port,
			Username: e.Username,
			Password: e.Password,
			From:     e.From,
			To:       e.To,
			StartTLS: e.StartTLS,

			TLSPolicy:          e.TLSPolicy,
			InsecureSkipVerify: e.InsecureSkipVerify,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if cfg.NATS != nil {
		pub, err := notifynats.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			notify.CloseAll(out...)
			return nil, err
		}
		out = append(out, pub)
	}
	return out, nil
}

func logReport(report model.Report) {
	for _, b := range report.Batches {
		slog.Info("batch complete", "run_id", report.RunID, "category", b.Category.String(),
			"appliances", len(b.Outcomes), "failed", b.Failed())
	}
}

func closeConnectors(conns []connector.Connector) {
	for _, c := range conns {
		if err := c.Close(); err != nil {
			slog.Warn("close connector", "appliance", c.Name(), "error", err)
		}
	}
}
