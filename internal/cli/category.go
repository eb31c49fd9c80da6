package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emizp/IFCAtom/internal/registry"
)

type CategoryOptions struct {
	GlobalOptions
}

func DefaultCategoryOptions() *CategoryOptions {
	return &CategoryOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdCategory() *cobra.Command {
	o := DefaultCategoryOptions()
	cmd := &cobra.Command{
		Use:          "category ID CATEGORY",
		Short:        "Assign a discipline category to a job.",
		Example:      "category job-1 structural",
		Args:         cobra.ExactArgs(2),
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

func (o *CategoryOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if _, ok := registry.CanonicalizeCategory(args[1]); !ok {
		return fmt.Errorf("unknown category %q, must be one of %s", args[1], strings.Join(registry.Categories(), ", "))
	}
	return nil
}

func (o *CategoryOptions) Run(ctx context.Context, args []string) error {
	sess, _, err := o.Session(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	category, _ := registry.CanonicalizeCategory(args[1])
	job, err := sess.Registry().SetCategory(args[0], category)
	if err != nil {
		return fmt.Errorf("assigning category to job %s: %w", args[0], err)
	}
	fmt.Printf("Job %s is now %s.\n", job.Id, job.Category)
	return nil
}
