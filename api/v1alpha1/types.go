package v1alpha1

import "encoding/json"

// FileInfo describes one file accepted by the pipeline at upload time.
// Schema and Software may be incomplete here and refined by later status
// polls.
type FileInfo struct {
	Id       string    `json:"id"`
	Filename string    `json:"filename"`
	Schema   string    `json:"schema,omitempty"`
	Software string    `json:"software,omitempty"`
	Status   JobStatus `json:"status"`
}

type UploadResponse struct {
	Message string     `json:"message,omitempty"`
	Files   []FileInfo `json:"files"`
}

// ResultPaths references the artifacts generated for a completed job. The
// paths are pipeline storage references, not retrieval URLs.
type ResultPaths struct {
	CsvPath  string `json:"csvPath,omitempty"`
	JsonPath string `json:"jsonPath,omitempty"`
}

type StatusResponse struct {
	Status   JobStatus    `json:"status"`
	Error    string       `json:"error,omitempty"`
	Schema   string       `json:"schema,omitempty"`
	Software string       `json:"software,omitempty"`
	Result   *ResultPaths `json:"result,omitempty"`
}

type ExtractDataRequest struct {
	FileIds []string `json:"fileIds"`
}

// ExtractDataResponse carries the flat dataset rows. Rows are kept raw so
// the first row's column order can be recovered by the dataset builder.
type ExtractDataResponse struct {
	Message string            `json:"message,omitempty"`
	Data    []json.RawMessage `json:"data"`
}

type GenerateChartRequest struct {
	FileIds []string `json:"fileIds"`
}

// ChartEntry is one chart of a generated batch. ChartImage is a
// data:image/png;base64 URI.
type ChartEntry struct {
	FileId     string `json:"fileId"`
	Filename   string `json:"filename"`
	ChartImage string `json:"chartImage"`
}

type GenerateChartResponse struct {
	Message string       `json:"message,omitempty"`
	Charts  []ChartEntry `json:"charts"`
}

type GenerateGraphRequest struct {
	FileId string `json:"fileId"`
}

type GenerateGraphResponse struct {
	Message   string `json:"message,omitempty"`
	GraphPath string `json:"graphPath,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
