package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
)

const (
	// uploadFieldName is the multipart form field the pipeline expects the
	// files under.
	uploadFieldName = "ifcFiles"

	uploadPath        = "/api/upload"
	statusPath        = "/api/status"
	extractDataPath   = "/api/extract_data"
	generateChartPath = "/api/generate_chart"
	generateGraphPath = "/api/generate_graph"
	contentPath       = "/generated_content"

	// storageRootPrefix is carried by artifact references returned from the
	// pipeline; it is not part of the retrieval URL.
	storageRootPrefix = "static/"
)

var _ Pipeline = (*pipeline)(nil)

type pipeline struct {
	serverUrl string
	client    *http.Client
}

func NewPipeline(serverUrl string, client *http.Client) Pipeline {
	return &pipeline{
		serverUrl: strings.TrimRight(serverUrl, "/"),
		client:    client,
	}
}

func (p *pipeline) UploadFiles(ctx context.Context, files []UploadFile) (*api.UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range files {
		part, err := mw.CreateFormFile(uploadFieldName, f.Filename)
		if err != nil {
			return nil, fmt.Errorf("creating form file: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("copying %s into multipart: %w", f.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverUrl+uploadPath, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, p.asAPIError(resp)
	}

	uploadResponse := &api.UploadResponse{}
	if err := json.NewDecoder(resp.Body).Decode(uploadResponse); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	return uploadResponse, nil
}

func (p *pipeline) GetStatus(ctx context.Context, id string) (*api.StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s/%s", p.serverUrl, statusPath, id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{Message: p.errorMessage(resp)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, p.asAPIError(resp)
	}

	statusResponse := &api.StatusResponse{}
	if err := json.NewDecoder(resp.Body).Decode(statusResponse); err != nil {
		return nil, fmt.Errorf("decoding status response: %w", err)
	}
	return statusResponse, nil
}

func (p *pipeline) ExtractData(ctx context.Context, fileIds []string) (*api.ExtractDataResponse, error) {
	extractResponse := &api.ExtractDataResponse{}
	if err := p.postJSON(ctx, extractDataPath, api.ExtractDataRequest{FileIds: fileIds}, extractResponse); err != nil {
		return nil, err
	}
	return extractResponse, nil
}

func (p *pipeline) GenerateChart(ctx context.Context, fileIds []string) (*api.GenerateChartResponse, error) {
	chartResponse := &api.GenerateChartResponse{}
	if err := p.postJSON(ctx, generateChartPath, api.GenerateChartRequest{FileIds: fileIds}, chartResponse); err != nil {
		return nil, err
	}
	return chartResponse, nil
}

func (p *pipeline) GenerateGraph(ctx context.Context, fileId string) (*api.GenerateGraphResponse, error) {
	graphResponse := &api.GenerateGraphResponse{}
	if err := p.postJSON(ctx, generateGraphPath, api.GenerateGraphRequest{FileId: fileId}, graphResponse); err != nil {
		return nil, err
	}
	return graphResponse, nil
}

// ArtifactURL accepts the reference forms the pipeline hands out: a storage
// path ("static/parsed_data/x.csv"), a ready retrieval path
// ("/generated_content/graphs/g.png") or a bare relative path. All resolve
// to the same URL.
func (p *pipeline) ArtifactURL(refPath string) string {
	cleaned := strings.TrimPrefix(refPath, "/")
	cleaned = strings.TrimPrefix(cleaned, strings.TrimPrefix(contentPath, "/")+"/")
	cleaned = strings.TrimPrefix(cleaned, storageRootPrefix)
	return fmt.Sprintf("%s%s/%s", p.serverUrl, contentPath, cleaned)
}

func (p *pipeline) FetchArtifact(ctx context.Context, refPath string, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ArtifactURL(refPath), nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Message: p.errorMessage(resp)}
	}
	if resp.StatusCode != http.StatusOK {
		return p.asAPIError(resp)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("downloading %s: %w", refPath, err)
	}
	return nil
}

func (p *pipeline) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverUrl+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Message: p.errorMessage(resp)}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return p.asAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (p *pipeline) asAPIError(resp *http.Response) error {
	return &APIError{StatusCode: resp.StatusCode, Message: p.errorMessage(resp)}
}

// errorMessage extracts the backend's own {error} wording. It falls back to
// the HTTP status text when the body carries none.
func (p *pipeline) errorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.Status
	}
	errorResponse := api.ErrorResponse{}
	if err := json.Unmarshal(body, &errorResponse); err != nil || errorResponse.Error == "" {
		return resp.Status
	}
	return errorResponse.Error
}
