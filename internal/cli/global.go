package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/emizp/IFCAtom/internal/client"
	"github.com/emizp/IFCAtom/internal/config"
	"github.com/emizp/IFCAtom/internal/poller"
	"github.com/emizp/IFCAtom/internal/registry"
	"github.com/emizp/IFCAtom/internal/session"
	"github.com/emizp/IFCAtom/internal/store"
)

type GlobalOptions struct {
	ConfigFilePath string
	ServerUrl      string
	DataDir        string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigFilePath, "config", o.ConfigFilePath, "Path to a YAML config file")
	fs.StringVarP(&o.ServerUrl, "server-url", "u", o.ServerUrl, "Address of the processing pipeline")
	fs.StringVar(&o.DataDir, "data-dir", o.DataDir, "Directory holding the session database and downloaded artifacts")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	return nil
}

// Config builds the effective configuration: defaults, environment,
// optional config file, then command-line overrides.
func (o *GlobalOptions) Config() (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	if o.ConfigFilePath != "" {
		if err := cfg.ParseConfigFile(o.ConfigFilePath); err != nil {
			return nil, err
		}
	}
	if o.ServerUrl != "" {
		cfg.ServiceUrl = o.ServerUrl
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Session wires a full tracking session from the configuration and
// loads the jobs persisted by previous commands.
func (o *GlobalOptions) Session(ctx context.Context) (*session.Session, *config.Config, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, nil, err
	}

	db, err := store.InitDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening session store: %w", err)
	}
	st := store.NewStore(db)
	if err := st.InitialMigration(); err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("migrating session store: %w", err)
	}

	pipeline := client.NewPipeline(cfg.ServiceUrl, client.NewHTTPClient())
	reg := registry.NewRegistry()
	pol := poller.NewPoller(reg, pipeline, cfg.PollInterval.Duration, cfg.RequestTimeout.Duration)

	sess := session.New(reg, pol, pipeline, st)
	if err := sess.Load(ctx); err != nil {
		_ = sess.Close()
		return nil, nil, err
	}
	return sess, cfg, nil
}
