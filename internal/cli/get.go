package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"

	"github.com/emizp/IFCAtom/internal/registry"
	"github.com/emizp/IFCAtom/internal/view"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
)

var (
	legalOutputTypes = []string{jsonFormat, yamlFormat}
)

type GetOptions struct {
	GlobalOptions

	Output string
}

func DefaultGetOptions() *GetOptions {
	return &GetOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdGet() *cobra.Command {
	o := DefaultGetOptions()
	cmd := &cobra.Command{
		Use:          "get [ID]",
		Short:        "Display the tracked jobs, or one job by id.",
		Args:         cobra.MaximumNArgs(1),
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

func (o *GetOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
}

func (o *GetOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(o.Output) > 0 && !funk.Contains(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

func (o *GetOptions) Run(ctx context.Context, args []string) error {
	sess, _, err := o.Session(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	var jobs []registry.Job
	if len(args) == 1 {
		job, err := sess.Registry().Get(args[0])
		if err != nil {
			return fmt.Errorf("reading job %s: %w", args[0], err)
		}
		jobs = []registry.Job{job}
	} else {
		jobs = sess.Registry().List()
	}

	switch o.Output {
	case jsonFormat:
		return printJSON(jobs)
	case yamlFormat:
		return printYAML(jobs)
	default:
		return view.RenderJobs(os.Stdout, jobs)
	}
}

func printYAML(v any) error {
	marshalled, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Print(string(marshalled))
	return nil
}
