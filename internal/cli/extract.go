package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/emizp/IFCAtom/internal/view"
)

type ExtractOptions struct {
	GlobalOptions

	Filter string
	Output string
}

func DefaultExtractOptions() *ExtractOptions {
	return &ExtractOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdExtract() *cobra.Command {
	o := DefaultExtractOptions()
	cmd := &cobra.Command{
		Use:          "extract",
		Short:        "Extract the element data of the selected completed jobs into one table.",
		Example:      "extract\nextract --filter Name=Wall\nextract --output elements.xlsx",
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

func (o *ExtractOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.Filter, "filter", o.Filter, "Only show rows whose COLUMN contains TERM, as COLUMN=TERM")
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Also write the full dataset to this .csv or .xlsx file")
}

func (o *ExtractOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Filter != "" && !strings.Contains(o.Filter, "=") {
		return fmt.Errorf("filter must have the form COLUMN=TERM")
	}
	return nil
}

func (o *ExtractOptions) Run(ctx context.Context, args []string) error {
	sess, _, err := o.Session(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	ds, err := sess.ExtractData(ctx)
	if err != nil {
		return fmt.Errorf("extracting data: %w", err)
	}

	if o.Output != "" {
		if err := sess.ExportDataset(o.Output); err != nil {
			return fmt.Errorf("exporting dataset: %w", err)
		}
		fmt.Printf("Dataset written to %s.\n", o.Output)
	}

	shown := ds
	if o.Filter != "" {
		column, term, _ := strings.Cut(o.Filter, "=")
		if !ds.HasColumn(column) {
			return fmt.Errorf("unknown filter column %q", column)
		}
		shown = ds.Filter(column, term)
	}
	return view.RenderTable(os.Stdout, shown)
}
