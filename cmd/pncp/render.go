package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/farxc/pncp_wrapper/internal/pncp/export"
	"github.com/farxc/pncp_wrapper/internal/pncp/types"
)

func render(w io.Writer, res *types.AggregatedResult, format string, enc export.Encoding) error {
	switch format {
	case "table":
		renderTable(w, res)
		return nil
	case "csv":
		return export.WriteCSV(w, res.Records, enc)
	case "json":
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(res)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderTable(w io.Writer, res *types.AggregatedResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("PNCP notices %s..%s", res.Window.From, res.Window.To))
	t.AppendHeader(table.Row{"#", "Included", "Modality", "Issuing body", "UF", "Estimated value", "Object"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 7, WidthMax: 60},
	})

	for i, r := range res.Records {
		included := r.InclusionDate
		if included == "" {
			included = r.PncpPublicationDate
		}
		t.AppendRow(table.Row{
			i + 1,
			included,
			r.ModalityCode,
			text.Trim(r.IssuingBody.Name, 40),
			r.IssuingBody.State,
			r.EstimatedValue.StringFixed(2),
			r.ObjectDescription,
		})
	}

	footer := fmt.Sprintf("returned %d of %d", res.TotalReturned, res.TotalFound)
	if res.FailedPartitions > 0 {
		footer += fmt.Sprintf(", %d partitions failed", res.FailedPartitions)
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", footer})
	t.Render()
}
