package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/emizp/IFCAtom/internal/view"
)

type GraphOptions struct {
	GlobalOptions

	Download bool
}

func DefaultGraphOptions() *GraphOptions {
	return &GraphOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdGraph() *cobra.Command {
	o := DefaultGraphOptions()
	cmd := &cobra.Command{
		Use:          "graph",
		Short:        "Generate the relationship graph of the single selected completed job.",
		Example:      "graph --download",
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

func (o *GraphOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.BoolVar(&o.Download, "download", o.Download, "Also download the graph image into the data dir")
}

func (o *GraphOptions) Run(ctx context.Context, args []string) error {
	sess, cfg, err := o.Session(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	outcome, err := sess.GenerateGraph(ctx)
	if err != nil {
		return fmt.Errorf("generating graph: %w", err)
	}

	if o.Download && outcome.ImagePath != "" {
		dir := filepath.Join(cfg.DataDir, "graphs")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		path := filepath.Join(dir, filepath.Base(outcome.ImagePath))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := sess.FetchArtifact(ctx, outcome.ImagePath, f); err != nil {
			return fmt.Errorf("downloading graph image: %w", err)
		}
		fmt.Printf("Graph image written to %s.\n", path)
	}

	return view.RenderGraph(os.Stdout, outcome)
}
