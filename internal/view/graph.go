package view

import (
	"fmt"
	"io"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
)

const noGraphPlaceholder = "No graph was generated."

// GraphOutcome carries exactly one of an image reference, an
// informational message, or an error.
type GraphOutcome struct {
	ImagePath string
	Message   string
	Err       string
}

// NewGraphOutcome classifies a graph response. A returned path wins
// over the accompanying message so the caller shows the graph rather
// than the success text, and an empty response falls back to a fixed
// placeholder.
func NewGraphOutcome(response *api.GenerateGraphResponse) GraphOutcome {
	switch {
	case response == nil:
		return GraphOutcome{Message: noGraphPlaceholder}
	case response.GraphPath != "":
		return GraphOutcome{ImagePath: response.GraphPath}
	case response.Message != "":
		return GraphOutcome{Message: response.Message}
	default:
		return GraphOutcome{Message: noGraphPlaceholder}
	}
}

// GraphError wraps a failure reported by the pipeline.
func GraphError(message string) GraphOutcome {
	return GraphOutcome{Err: message}
}

// RenderGraph writes the single line the outcome calls for.
func RenderGraph(w io.Writer, outcome GraphOutcome) error {
	switch {
	case outcome.Err != "":
		_, err := fmt.Fprintf(w, "Error: %s\n", outcome.Err)
		return err
	case outcome.ImagePath != "":
		_, err := fmt.Fprintf(w, "Graph image: %s\n", outcome.ImagePath)
		return err
	default:
		_, err := fmt.Fprintln(w, outcome.Message)
		return err
	}
}
