package output

import (
	"fmt"
	"io"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/placement/pkg/workflow"
)

// MarkdownFormatter outputs GitHub flavored markdown tables.
type MarkdownFormatter struct{}

// Format writes Data as a markdown table. Other values go through the same
// reflection the table formatter uses.
func (f *MarkdownFormatter) Format(w io.Writer, data any) error {
	view, ok := data.(Data)
	if !ok {
		converted := (&TableFormatter{}).convertToTableData(data)
		if converted == nil {
			return (&JSONFormatter{Indent: "  "}).Format(w, data)
		}
		view = *converted
	}
	return md.NewMarkdown(w).Table(tableSet(view)).Build()
}

// DriveReport writes a markdown document describing a loaded drive: its
// details, companies, jobs and completion.
func DriveReport(w io.Writer, st workflow.State) error {
	if st.Drive == nil {
		return fmt.Errorf("drive report: no drive loaded")
	}
	d := *st.Drive

	doc := md.NewMarkdown(w).H1(d.Title)
	if d.Desc != "" {
		doc.PlainText(d.Desc).LF()
	}
	if d.AdditionalInstructions != "" {
		doc.Blockquote(d.AdditionalInstructions)
	}

	doc.H2("Details").Table(tableSet(DriveData(d, st.DriveProgress)))
	doc.H2(fmt.Sprintf("Companies (%d)", len(st.Companies)))
	if len(st.Companies) == 0 {
		doc.PlainText(md.Italic("No companies yet.")).LF()
	} else {
		doc.Table(tableSet(CompaniesData(st)))
	}
	doc.H2(fmt.Sprintf("Jobs (%d)", len(st.Jobs)))
	if len(st.Jobs) == 0 {
		doc.PlainText(md.Italic("No jobs yet.")).LF()
	} else {
		doc.Table(tableSet(JobsData(st, true)))
	}
	doc.H2("Progress").Table(tableSet(ProgressData(st)))

	return doc.Build()
}

func tableSet(view Data) md.TableSet {
	rows := make([][]string, len(view.Rows))
	for i, row := range view.Rows {
		cells := make([]string, len(view.Headers))
		copy(cells, row)
		rows[i] = cells
	}
	return md.TableSet{Header: view.Headers, Rows: rows}
}
