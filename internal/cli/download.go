package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type DownloadOptions struct {
	GlobalOptions

	Dir string
}

func DefaultDownloadOptions() *DownloadOptions {
	return &DownloadOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdDownload() *cobra.Command {
	o := DefaultDownloadOptions()
	cmd := &cobra.Command{
		Use:          "download",
		Short:        "Download the generated artifacts of the selected completed jobs.",
		Example:      "download --dir ./artifacts",
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

func (o *DownloadOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.Dir, "dir", o.Dir, "Target directory (defaults to the data dir)")
}

func (o *DownloadOptions) Run(ctx context.Context, args []string) error {
	sess, cfg, err := o.Session(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	dir := o.Dir
	if dir == "" {
		dir = filepath.Join(cfg.DataDir, "artifacts")
	}

	paths, err := sess.DownloadArtifacts(ctx, dir)
	if err != nil {
		return fmt.Errorf("downloading artifacts: %w", err)
	}
	for _, path := range paths {
		fmt.Printf("Downloaded %s.\n", path)
	}
	return nil
}
