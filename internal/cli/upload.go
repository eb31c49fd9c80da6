package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/emizp/IFCAtom/internal/client"
	"github.com/emizp/IFCAtom/internal/view"
)

type UploadOptions struct {
	GlobalOptions

	Wait bool
}

func DefaultUploadOptions() *UploadOptions {
	return &UploadOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdUpload() *cobra.Command {
	o := DefaultUploadOptions()
	cmd := &cobra.Command{
		Use:          "upload FILE [FILE...]",
		Short:        "Submit IFC files for processing and track their jobs.",
		Example:      "upload model_a.ifc model_b.ifc --wait",
		Args:         cobra.MinimumNArgs(1),
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

func (o *UploadOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.BoolVarP(&o.Wait, "wait", "w", o.Wait, "Keep polling until every submitted job settles")
}

func (o *UploadOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	for _, path := range args {
		if !strings.EqualFold(filepath.Ext(path), ".ifc") {
			return fmt.Errorf("%s: only .ifc files are accepted", path)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (o *UploadOptions) Run(ctx context.Context, args []string) error {
	sess, _, err := o.Session(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	files := make([]client.UploadFile, 0, len(args))
	handles := make([]*os.File, 0, len(args))
	defer func() {
		for _, f := range handles {
			_ = f.Close()
		}
	}()
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		handles = append(handles, f)
		files = append(files, client.UploadFile{Filename: filepath.Base(path), Content: f})
	}

	jobs, err := sess.SubmitBatch(ctx, files)
	if err != nil {
		return fmt.Errorf("uploading batch: %w", err)
	}
	fmt.Printf("Submitted %d file(s).\n", len(jobs))

	if o.Wait {
		if err := watchUntilSettled(ctx, sess); err != nil {
			return err
		}
	}
	return view.RenderJobs(os.Stdout, sess.Registry().List())
}
