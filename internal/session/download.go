package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// downloadWorkers bounds how many artifact fetches run at once.
const downloadWorkers = 4

// DownloadArtifacts fetches the generated artifacts of every selected
// completed job into dir and returns the written paths. One job's
// failed download is logged and skipped; it does not fail the batch.
func (s *Session) DownloadArtifacts(ctx context.Context, dir string) ([]string, error) {
	var refs []string
	for _, job := range s.registry.SelectedCompleted() {
		if job.Result == nil {
			continue
		}
		if job.Result.CsvPath != "" {
			refs = append(refs, job.Result.CsvPath)
		}
		if job.Result.JsonPath != "" {
			refs = append(refs, job.Result.JsonPath)
		}
	}
	if len(refs) == 0 {
		return nil, &ValidationError{Message: msgNothingToDownload}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	paths := make([]string, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadWorkers)
	for i, ref := range refs {
		g.Go(func() error {
			path, err := s.downloadArtifact(ctx, ref, dir)
			if err != nil {
				zap.S().Named("session").Errorf("failed to download %s: %v", ref, err)
				return nil
			}
			paths[i] = path
			return nil
		})
	}
	_ = g.Wait()

	written := make([]string, 0, len(paths))
	for _, path := range paths {
		if path != "" {
			written = append(written, path)
		}
	}
	return written, nil
}

func (s *Session) downloadArtifact(ctx context.Context, ref string, dir string) (string, error) {
	path := filepath.Join(dir, filepath.Base(ref))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := s.pipeline.FetchArtifact(ctx, ref, f); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
