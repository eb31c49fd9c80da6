package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/emizp/IFCAtom/internal/registry"
	"github.com/emizp/IFCAtom/internal/view"
)

type SelectOptions struct {
	GlobalOptions

	Category string
}

func DefaultSelectOptions() *SelectOptions {
	return &SelectOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdSelect() *cobra.Command {
	o := DefaultSelectOptions()
	cmd := &cobra.Command{
		Use:          "select (all | none | ID...)",
		Short:        "Choose which jobs the extract, chart and graph actions operate on.",
		Example:      "select all\nselect none\nselect job-1 job-2\nselect --category structural",
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

func (o *SelectOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.Category, "category", o.Category, fmt.Sprintf("Select exactly the jobs with this category. One of: (%s).", strings.Join(registry.Categories(), ", ")))
}

func (o *SelectOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Category != "" {
		if len(args) > 0 {
			return fmt.Errorf("--category cannot be combined with explicit ids")
		}
		if _, ok := registry.CanonicalizeCategory(o.Category); !ok {
			return fmt.Errorf("unknown category %q, must be one of %s", o.Category, strings.Join(registry.Categories(), ", "))
		}
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("specify all, none, one or more job ids, or --category")
	}
	return nil
}

func (o *SelectOptions) Run(ctx context.Context, args []string) error {
	sess, _, err := o.Session(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	reg := sess.Registry()
	switch {
	case o.Category != "":
		category, _ := registry.CanonicalizeCategory(o.Category)
		reg.SelectCategory(category)
	case len(args) == 1 && args[0] == "all":
		reg.SelectAll()
	case len(args) == 1 && args[0] == "none":
		reg.DeselectAll()
	default:
		for _, id := range args {
			if _, err := reg.SetSelected(id, true); err != nil {
				return fmt.Errorf("selecting job %s: %w", id, err)
			}
		}
	}

	return view.RenderJobs(os.Stdout, reg.List())
}
