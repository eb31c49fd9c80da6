package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/emizp/IFCAtom/internal/view"
)

type ChartOptions struct {
	GlobalOptions

	Page int
	Dir  string
}

func DefaultChartOptions() *ChartOptions {
	return &ChartOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Page:          1,
	}
}

func NewCmdChart() *cobra.Command {
	o := DefaultChartOptions()
	cmd := &cobra.Command{
		Use:          "chart",
		Short:        "Generate the quantity charts of the selected completed jobs.",
		Example:      "chart\nchart --page 2 --dir ./charts",
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

func (o *ChartOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.IntVar(&o.Page, "page", o.Page, "Chart to show, counted from 1")
	fs.StringVar(&o.Dir, "dir", o.Dir, "Write the chart images into this directory (defaults to the data dir)")
}

func (o *ChartOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Page < 1 {
		return fmt.Errorf("page is counted from 1")
	}
	return nil
}

func (o *ChartOptions) Run(ctx context.Context, args []string) error {
	sess, cfg, err := o.Session(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	pager, err := sess.GenerateCharts(ctx)
	if err != nil {
		return fmt.Errorf("generating charts: %w", err)
	}

	dir := o.Dir
	if dir == "" {
		dir = filepath.Join(cfg.DataDir, "charts")
	}
	written, err := writeChartImages(pager, dir)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Printf("Chart image written to %s.\n", path)
	}

	frame := pager.Show(o.Page - 1)
	return view.RenderFrame(os.Stdout, frame)
}

// writeChartImages decodes each entry's data URI into a PNG file named
// after the job it belongs to.
func writeChartImages(pager *view.ChartPager, dir string) ([]string, error) {
	charts := pager.Charts()
	if len(charts) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	paths := make([]string, 0, len(charts))
	for _, entry := range charts {
		data, err := decodeDataURI(entry.ChartImage)
		if err != nil {
			return nil, fmt.Errorf("decoding chart of %s: %w", entry.FileId, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("chart_%s.png", entry.FileId))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	_, encoded, found := strings.Cut(uri, ";base64,")
	if !found {
		return nil, fmt.Errorf("not a base64 data URI")
	}
	return base64.StdEncoding.DecodeString(encoded)
}
