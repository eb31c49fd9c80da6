package view

import (
	"fmt"
	"io"
	"strings"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
)

const noChartsPlaceholder = "No charts to display."

// Frame is one rendered page of the chart pager.
type Frame struct {
	Caption     string
	ImageData   string
	PrevEnabled bool
	NextEnabled bool
	Placeholder string
}

// ChartPager browses a chart batch one entry at a time. Navigation
// clamps at both ends, and replacing the batch rewinds to the start.
type ChartPager struct {
	charts []api.ChartEntry
	index  int
}

func NewChartPager() *ChartPager {
	return &ChartPager{}
}

// SetCharts replaces the whole batch and resets the position.
func (p *ChartPager) SetCharts(charts []api.ChartEntry) {
	p.charts = append([]api.ChartEntry(nil), charts...)
	p.index = 0
}

func (p *ChartPager) Len() int {
	return len(p.charts)
}

func (p *ChartPager) Index() int {
	return p.index
}

func (p *ChartPager) Charts() []api.ChartEntry {
	return append([]api.ChartEntry(nil), p.charts...)
}

// Show moves to the given index, clamped into range, and returns the
// resulting frame.
func (p *ChartPager) Show(index int) Frame {
	if len(p.charts) == 0 {
		p.index = 0
		return p.Current()
	}
	if index < 0 {
		index = 0
	}
	if index >= len(p.charts) {
		index = len(p.charts) - 1
	}
	p.index = index
	return p.Current()
}

func (p *ChartPager) Next() Frame {
	return p.Show(p.index + 1)
}

func (p *ChartPager) Previous() Frame {
	return p.Show(p.index - 1)
}

// RenderFrame writes the frame's caption and the navigation the frame
// still allows. A placeholder frame renders only the placeholder line.
func RenderFrame(w io.Writer, frame Frame) error {
	if frame.Placeholder != "" {
		_, err := fmt.Fprintln(w, frame.Placeholder)
		return err
	}
	nav := []string{}
	if frame.PrevEnabled {
		nav = append(nav, "previous")
	}
	if frame.NextEnabled {
		nav = append(nav, "next")
	}
	if len(nav) == 0 {
		_, err := fmt.Fprintln(w, frame.Caption)
		return err
	}
	_, err := fmt.Fprintf(w, "%s (%s available)\n", frame.Caption, strings.Join(nav, ", "))
	return err
}

// Current renders the entry at the current position. An empty batch
// renders the placeholder with navigation disabled.
func (p *ChartPager) Current() Frame {
	if len(p.charts) == 0 {
		return Frame{Placeholder: noChartsPlaceholder}
	}
	entry := p.charts[p.index]
	return Frame{
		Caption:     fmt.Sprintf("Chart %d of %d: %s", p.index+1, len(p.charts), entry.Filename),
		ImageData:   entry.ChartImage,
		PrevEnabled: p.index > 0,
		NextEnabled: p.index < len(p.charts)-1,
	}
}
