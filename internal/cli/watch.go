package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/emizp/IFCAtom/internal/registry"
	"github.com/emizp/IFCAtom/internal/session"
	"github.com/emizp/IFCAtom/internal/view"
	"github.com/emizp/IFCAtom/pkg/log"
)

type WatchOptions struct {
	GlobalOptions

	MetricsAddress string
}

func DefaultWatchOptions() *WatchOptions {
	return &WatchOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdWatch() *cobra.Command {
	o := DefaultWatchOptions()
	cmd := &cobra.Command{
		Use:          "watch",
		Short:        "Resume polling and follow the jobs until they all settle.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *WatchOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.MetricsAddress, "metrics-address", o.MetricsAddress, "Expose poller metrics on this address while watching")
}

func (o *WatchOptions) Run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, cfg, err := o.Session(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	metricsAddress := o.MetricsAddress
	if metricsAddress == "" {
		metricsAddress = cfg.MetricsAddress
	}
	if metricsAddress != "" {
		shutdown := startMetricsServer(metricsAddress)
		defer shutdown()
	}

	resumed := sess.Resume()
	if resumed == 0 {
		fmt.Println("All jobs have settled.")
		return view.RenderJobs(os.Stdout, sess.Registry().List())
	}
	fmt.Printf("Watching %d job(s)...\n", resumed)

	if err := watchUntilSettled(ctx, sess); err != nil {
		return err
	}
	return view.RenderJobs(os.Stdout, sess.Registry().List())
}

// watchUntilSettled prints one line per status change until every job
// reached a terminal state or the context is cancelled.
func watchUntilSettled(ctx context.Context, sess *session.Session) error {
	changes := make(chan registry.Job, 64)
	sess.Registry().OnJobChange(func(job registry.Job) {
		select {
		case changes <- job:
		default:
		}
	})

	// The ticker is a safety net for a change notification dropped on
	// a full channel right before the last job settled.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		if sess.AllSettled() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-changes:
			fmt.Printf("%s\t%s\t%s\n", job.Id, job.Filename, job.Status)
		case <-ticker.C:
		}
	}
}

func startMetricsServer(address string) func() {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(log.Logger(zap.L(), "metrics"))
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{Addr: address, Handler: router}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Named("metrics").Errorf("metrics server failed: %v", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
}
