package session

// ValidationError is a local rejection of an action. No request was
// issued; the message is meant for the user, not the log.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

const (
	msgNoCompletedSelection = "no completed files are selected"
	msgGraphNeedsExactlyOne = "graph generation needs exactly one completed file selected"
	msgNoDatasetToExport    = "no extracted data to export"
	msgNothingToDownload    = "no completed files with artifacts are selected"
	msgEmptyUploadBatch     = "no files to upload"
	msgUnknownExportFormat  = "export format must be .csv or .xlsx"
)
