package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sahamkita/idxref/pkg/models"
)

// RunSummary collects the counters a maintenance run prints when it ends.
type RunSummary struct {
	NewlyActive   int
	NewlyInactive int
	StillActive   int

	// NameDrifted lists the still-active symbols whose registered name no
	// longer resembles the stored one.
	NameDrifted []string

	Updated   int
	Enriched  int
	Failed    []models.FailedItem
	Conflicts []models.TypeConflict

	SnapshotPaths []string
}

// Render prints the run summary as console tables.
func (s *RunSummary) Render(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Metric", "Count"})
	tw.AppendRows([]table.Row{
		{"newly active", s.NewlyActive},
		{"newly inactive", s.NewlyInactive},
		{"still active", s.StillActive},
		{"name drifted", len(s.NameDrifted)},
		{"profiles updated", s.Updated},
		{"profiles enriched", s.Enriched},
		{"failed", len(s.Failed)},
		{"type conflicts", len(s.Conflicts)},
	})
	tw.Render()

	if len(s.NameDrifted) > 0 {
		dt := table.NewWriter()
		dt.SetOutputMirror(w)
		dt.SetStyle(table.StyleLight)
		dt.AppendHeader(table.Row{"Possible Renamed Company"})
		for _, sym := range s.NameDrifted {
			dt.AppendRow(table.Row{sym})
		}
		dt.Render()
	}

	if len(s.Failed) > 0 {
		ft := table.NewWriter()
		ft.SetOutputMirror(w)
		ft.SetStyle(table.StyleLight)
		ft.AppendHeader(table.Row{"Ticker", "Reason"})
		for _, item := range s.Failed {
			ft.AppendRow(table.Row{item.Ticker, item.Reason})
		}
		ft.Render()
	}

	if len(s.Conflicts) > 0 {
		ct := table.NewWriter()
		ct.SetOutputMirror(w)
		ct.SetStyle(table.StyleLight)
		ct.AppendHeader(table.Row{"Symbol", "Holder", "Kept", "Seen"})
		for _, c := range s.Conflicts {
			ct.AppendRow(table.Row{c.Symbol, c.Name, c.Kept, c.Seen})
		}
		ct.Render()
	}
}
