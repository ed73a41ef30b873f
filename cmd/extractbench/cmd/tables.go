package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func renderSummary(w io.Writer, sums []entity.MethodSummary) {
	t := newTable(w)
	t.SetTitle("Extraction summary")
	t.AppendHeader(table.Row{"Method", "Documents", "Valid", "Invalid", "Failed"})
	for _, s := range sums {
		t.AppendRow(table.Row{s.Method, s.Documents, s.Valid, s.Invalid, s.Failed})
	}
	t.Render()
}

func renderAccuracy(w io.Writer, rep entity.ComparisonReport) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("Accuracy (%d documents)", rep.Documents))
	header := table.Row{"Method"}
	for _, f := range rep.Fields {
		header = append(header, f)
	}
	header = append(header, "overall")
	t.AppendHeader(header)
	for _, m := range rep.Methods {
		row := table.Row{m.Method}
		for _, f := range rep.Fields {
			row = append(row, pct(m.PerField[f]))
		}
		row = append(row, pct(m.Overall))
		t.AppendRow(row)
	}
	t.Render()
}

func renderMismatches(w io.Writer, rep entity.ComparisonReport) {
	t := newTable(w)
	t.SetTitle("Mismatches")
	t.AppendHeader(table.Row{"Method", "Document", "Field", "Got", "Want", "Similarity"})
	n := 0
	for _, m := range rep.Methods {
		for _, mm := range m.Mismatches {
			sim := ""
			if mm.Similarity != nil {
				sim = fmt.Sprintf("%.2f", *mm.Similarity)
			}
			t.AppendRow(table.Row{m.Method, mm.Document, mm.Field, mm.Got, mm.Want, sim})
			n++
		}
	}
	if n > 0 {
		t.Render()
	}
}

func renderJobs(w io.Writer, jobs []entity.ExtractionJob) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Document", "Method", "Model", "Status", "Valid", "Error"})
	for _, j := range jobs {
		valid := ""
		if j.IsValid != nil {
			valid = fmt.Sprintf("%t", *j.IsValid)
		}
		t.AppendRow(table.Row{j.DocumentID, j.Method, deref(j.Model), j.Status, valid, deref(j.ErrorMessage)})
	}
	t.Render()
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
