package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/c360studio/constraintsim/batch"
	"github.com/c360studio/constraintsim/facility"
)

// RenderBatchText writes one line per file followed by a totals line.
func RenderBatchText(w io.Writer, r *batch.Report, opts Options) error {
	st := newStyles(w, opts.Color)

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s)\n", r.RunID, r.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"))
	for _, e := range r.Entries {
		if e.Result == nil {
			label := fmt.Sprintf("%-14s", "! "+batch.StatusError)
			fmt.Fprintf(&b, "%s %s: %s\n", st.verdictStyle(facility.VerdictUnknown).Render(label), e.Path, e.Error)
			continue
		}
		label := fmt.Sprintf("%-14s", Symbol(e.Result.Verdict)+" "+string(e.Result.Verdict))
		fmt.Fprintf(&b, "%s %s (disqualifiers=%d cautions=%d missing=%d)\n",
			st.verdictStyle(e.Result.Verdict).Render(label), e.Path,
			len(e.Result.Disqualifiers), len(e.Result.CautionFlags), len(e.Result.MissingFields))
	}

	t := r.Totals
	fmt.Fprintf(&b, "%s %d file(s): %d qualified, %d disqualified, %d unknown, %d error(s)\n",
		st.heading.Render("TOTAL"), t.Files, t.Qualified, t.Disqualified, t.Unknown, t.Errors)

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderBatchJSON writes the whole run as an indented JSON object.
func RenderBatchJSON(w io.Writer, r *batch.Report) error {
	out := *r
	if out.Entries == nil {
		out.Entries = []batch.Entry{}
	}
	entries := make([]batch.Entry, len(out.Entries))
	for i, e := range out.Entries {
		if e.Result != nil {
			res := facility.NewResult(e.Result.Verdict, e.Result.Disqualifiers, e.Result.CautionFlags,
				e.Result.MissingFields, e.Result.Notes)
			e.Result = &res
		}
		entries[i] = e
	}
	out.Entries = entries
	return writeJSON(w, out)
}
