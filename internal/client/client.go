package client

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
)

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Filename string
	Content  io.Reader
}

// Pipeline is the client interface to the processing pipeline.
type Pipeline interface {
	// UploadFiles submits a batch of files in one multipart request.
	UploadFiles(ctx context.Context, files []UploadFile) (*api.UploadResponse, error)
	// GetStatus polls the lifecycle state of one job. A definitive 404 is
	// returned as *NotFoundError.
	GetStatus(ctx context.Context, id string) (*api.StatusResponse, error)
	ExtractData(ctx context.Context, fileIds []string) (*api.ExtractDataResponse, error)
	GenerateChart(ctx context.Context, fileIds []string) (*api.GenerateChartResponse, error)
	GenerateGraph(ctx context.Context, fileId string) (*api.GenerateGraphResponse, error)
	// ArtifactURL maps an artifact reference returned by the pipeline to its
	// retrieval URL.
	ArtifactURL(refPath string) string
	// FetchArtifact downloads the artifact behind refPath into dst.
	FetchArtifact(ctx context.Context, refPath string, dst io.Writer) error
}

// NewHTTPClient returns the http.Client used for all pipeline requests.
// Per-request deadlines come from the caller's context.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     false,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
