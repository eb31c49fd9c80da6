package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
	"github.com/emizp/IFCAtom/internal/dataset"
	"github.com/emizp/IFCAtom/internal/registry"
)

func chartBatch(n int) []api.ChartEntry {
	charts := make([]api.ChartEntry, 0, n)
	for i := 0; i < n; i++ {
		charts = append(charts, api.ChartEntry{
			FileId:     string(rune('a' + i)),
			Filename:   "model_" + string(rune('a'+i)) + ".ifc",
			ChartImage: "data:image/png;base64,AAA=",
		})
	}
	return charts
}

func TestChartPagerNavigation(t *testing.T) {
	pager := NewChartPager()
	pager.SetCharts(chartBatch(3))

	frame := pager.Show(0)
	require.Equal(t, "Chart 1 of 3: model_a.ifc", frame.Caption)
	require.False(t, frame.PrevEnabled)
	require.True(t, frame.NextEnabled)

	pager.Next()
	frame = pager.Next()
	require.Equal(t, 2, pager.Index())
	require.True(t, frame.PrevEnabled)
	require.False(t, frame.NextEnabled)

	// Clamped at the end, another step is a no-op.
	frame = pager.Next()
	require.Equal(t, 2, pager.Index())
	require.Equal(t, "Chart 3 of 3: model_c.ifc", frame.Caption)

	frame = pager.Previous()
	require.Equal(t, 1, pager.Index())
	require.True(t, frame.PrevEnabled)
	require.True(t, frame.NextEnabled)
}

func TestChartPagerShowClamps(t *testing.T) {
	pager := NewChartPager()
	pager.SetCharts(chartBatch(2))

	frame := pager.Show(-3)
	require.Equal(t, 0, pager.Index())
	require.Equal(t, "Chart 1 of 2: model_a.ifc", frame.Caption)

	frame = pager.Show(99)
	require.Equal(t, 1, pager.Index())
	require.Equal(t, "Chart 2 of 2: model_b.ifc", frame.Caption)
}

func TestChartPagerReplaceResetsIndex(t *testing.T) {
	pager := NewChartPager()
	pager.SetCharts(chartBatch(3))
	pager.Show(2)

	pager.SetCharts(chartBatch(2))
	require.Equal(t, 0, pager.Index())
	require.Equal(t, "Chart 1 of 2: model_a.ifc", pager.Current().Caption)
}

func TestChartPagerEmpty(t *testing.T) {
	pager := NewChartPager()

	frame := pager.Current()
	require.Equal(t, "No charts to display.", frame.Placeholder)
	require.Empty(t, frame.Caption)
	require.False(t, frame.PrevEnabled)
	require.False(t, frame.NextEnabled)

	frame = pager.Next()
	require.Equal(t, 0, pager.Index())
	require.Equal(t, "No charts to display.", frame.Placeholder)
}

func TestRenderTable(t *testing.T) {
	ds, err := dataset.New([]json.RawMessage{
		json.RawMessage(`{"a":1,"b":2}`),
		json.RawMessage(`{"a":3,"b":null}`),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, ds))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, []string{"a", "b"}, strings.Fields(lines[0]))
	require.Equal(t, []string{"1", "2"}, strings.Fields(lines[1]))
	// The null cell renders empty, never as the literal word.
	require.Equal(t, []string{"3"}, strings.Fields(lines[2]))
	require.NotContains(t, buf.String(), "null")
}

func TestRenderTableEmpty(t *testing.T) {
	ds, err := dataset.New(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, ds))
	require.Equal(t, "No data extracted.\n", buf.String())
}

func TestNewGraphOutcome(t *testing.T) {
	tests := []struct {
		name     string
		response *api.GenerateGraphResponse
		want     GraphOutcome
	}{
		{
			name:     "path wins over message",
			response: &api.GenerateGraphResponse{Message: "Graph generated successfully for a.ifc.", GraphPath: "/generated_content/graphs/graph_1.png"},
			want:     GraphOutcome{ImagePath: "/generated_content/graphs/graph_1.png"},
		},
		{
			name:     "message only",
			response: &api.GenerateGraphResponse{Message: "No graph data (nodes/edges) could be generated for a.ifc."},
			want:     GraphOutcome{Message: "No graph data (nodes/edges) could be generated for a.ifc."},
		},
		{
			name:     "empty response falls back to placeholder",
			response: &api.GenerateGraphResponse{},
			want:     GraphOutcome{Message: "No graph was generated."},
		},
		{
			name: "nil response falls back to placeholder",
			want: GraphOutcome{Message: "No graph was generated."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NewGraphOutcome(tt.response))
		})
	}
}

func TestRenderGraph(t *testing.T) {
	tests := []struct {
		name    string
		outcome GraphOutcome
		want    string
	}{
		{name: "image", outcome: GraphOutcome{ImagePath: "/tmp/graph_1.png"}, want: "Graph image: /tmp/graph_1.png\n"},
		{name: "message", outcome: GraphOutcome{Message: "No graph was generated."}, want: "No graph was generated.\n"},
		{name: "error", outcome: GraphError("No data available for file a.ifc (ID: 1) to generate graph."), want: "Error: No data available for file a.ifc (ID: 1) to generate graph.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderGraph(&buf, tt.outcome))
			require.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRenderJobs(t *testing.T) {
	jobs := []registry.Job{
		{Id: "id-0", Filename: "a.ifc", Status: api.JobStatusProcessing, Selected: true, Category: registry.CategoryUnspecified},
		{Id: "id-1", Filename: "b.ifc", Status: api.JobStatusFailed, Error: "unsupported schema", Category: registry.CategoryStructural},
		{Id: "id-2", Filename: "c.ifc", Status: api.JobStatusCompleted, Selected: true, Category: registry.CategoryMEP,
			Result: &api.ResultPaths{CsvPath: "static/parsed_data/c.csv", JsonPath: "static/parsed_data/c.json"}},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderJobs(&buf, jobs))
	out := buf.String()

	require.Contains(t, out, "ID")
	require.Contains(t, out, "failed: unsupported schema")
	require.Contains(t, out, "completed (csv: static/parsed_data/c.csv, json: static/parsed_data/c.json)")
	require.Contains(t, out, "structural")
}
