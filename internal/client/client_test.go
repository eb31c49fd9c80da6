package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
)

func TestUploadFilesBuildsMultipartBatch(t *testing.T) {
	var gotFilenames []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(32<<20))

		headers := r.MultipartForm.File["ifcFiles"]
		for _, header := range headers {
			gotFilenames = append(gotFilenames, header.Filename)
		}
		_, _ = w.Write([]byte(`{"message": "files accepted", "files": [
			{"id": "a", "filename": "one.ifc", "status": "processing"},
			{"id": "b", "filename": "two.ifc", "status": "processing"}
		]}`))
	}))
	defer server.Close()

	p := NewPipeline(server.URL, server.Client())
	response, err := p.UploadFiles(context.Background(), []UploadFile{
		{Filename: "one.ifc", Content: strings.NewReader("ISO-10303-21;")},
		{Filename: "two.ifc", Content: strings.NewReader("ISO-10303-21;")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"one.ifc", "two.ifc"}, gotFilenames)
	require.Len(t, response.Files, 2)
	assert.Equal(t, api.JobStatusProcessing, response.Files[0].Status)
}

func TestGetStatusNotFoundKeepsBackendWording(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "file not found"}`))
	}))
	defer server.Close()

	p := NewPipeline(server.URL, server.Client())
	_, err := p.GetStatus(context.Background(), "missing")

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "file not found", notFound.Message)
}

func TestErrorBodySurfacedVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "IFC schema IFC2X2 is not supported"}`))
	}))
	defer server.Close()

	p := NewPipeline(server.URL, server.Client())
	_, err := p.ExtractData(context.Background(), []string{"a"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "IFC schema IFC2X2 is not supported", apiErr.Message)
}

func TestErrorBodyFallsBackToStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	p := NewPipeline(server.URL, server.Client())
	_, err := p.GenerateChart(context.Background(), []string{"a"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Message, "502")
}

func TestArtifactURL(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "storage root prefix is stripped",
			ref:  "static/parsed_data/model.csv",
			want: "/generated_content/parsed_data/model.csv",
		},
		{
			name: "ready retrieval path is kept",
			ref:  "/generated_content/graphs/model.png",
			want: "/generated_content/graphs/model.png",
		},
		{
			name: "bare relative path",
			ref:  "parsed_data/model.json",
			want: "/generated_content/parsed_data/model.json",
		},
	}

	p := NewPipeline("http://pipeline.local", http.DefaultClient)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "http://pipeline.local"+tt.want, p.ArtifactURL(tt.ref))
		})
	}
}

func TestFetchArtifactStreamsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/generated_content/parsed_data/model.csv", r.URL.Path)
		_, _ = w.Write([]byte("col_a,col_b\n1,2\n"))
	}))
	defer server.Close()

	p := NewPipeline(server.URL, server.Client())
	var buf bytes.Buffer
	require.NoError(t, p.FetchArtifact(context.Background(), "static/parsed_data/model.csv", &buf))
	assert.Equal(t, "col_a,col_b\n1,2\n", buf.String())
}
