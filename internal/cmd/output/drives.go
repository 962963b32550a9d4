package output

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/agentstation/utc"

	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/workflow"
)

const dateLayout = "2006-01-02"

// DriveData renders a drive as a property table.
func DriveData(d drives.Drive, progress int) Data {
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"ID", d.ID},
			{"Title", d.Title},
			{"Location", d.Location},
			{"Drive Date", date(d.DriveDate)},
			{"Deadline", date(d.ApplicationDeadline)},
			{"Stages", strings.Join(d.Stages, " > ")},
			{"Form Link", d.FormLink},
			{"Sent To", strconv.Itoa(len(d.SendTo)) + " students"},
			{"Progress", percent(progress)},
		},
	}
}

// CompaniesData renders the companies attached to a drive.
func CompaniesData(st workflow.State) Data {
	jobs := drives.JobsByCompany(st.Jobs)
	data := Data{
		Headers:         []string{"ID", "Name", "Branch", "Site", "Jobs", "Progress"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight},
	}
	for _, c := range st.Companies {
		data.Rows = append(data.Rows, []string{
			c.ID, c.Name, c.Branch, c.Site,
			strconv.Itoa(len(jobs[c.ID])),
			percent(st.CompanyProgress[c.ID]),
		})
	}
	return data
}

// JobsData renders the jobs of a drive with their requirement thresholds.
func JobsData(st workflow.State, wide bool) Data {
	names := make(map[string]string, len(st.Companies))
	for _, c := range st.Companies {
		names[c.ID] = c.Name
	}

	data := Data{
		Headers: []string{"ID", "Company", "Title", "Experience", "Degree CGPA", "Progress"},
	}
	if wide {
		data.Headers = append(data.Headers, "Location", "Salary", "Last Date")
	}
	for _, j := range st.Jobs {
		degree := "-"
		if r, ok := st.Requirements[j.ID]; ok && r.DegreeCGPA > 0 {
			degree = strconv.FormatFloat(r.DegreeCGPA, 'f', -1, 64)
		}
		row := []string{
			j.ID, names[j.Company], j.Title,
			strconv.Itoa(j.Experience), degree,
			percent(st.JobProgress[j.ID]),
		}
		if wide {
			row = append(row, j.Loc, money(j.Salary), date(j.LastDate))
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// ProgressData renders the progress of every entity in a drive.
func ProgressData(st workflow.State) Data {
	data := Data{
		Headers:         []string{"Kind", "ID", "Name", "Progress"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}
	if st.Drive != nil {
		data.Rows = append(data.Rows, []string{"drive", st.Drive.ID, st.Drive.Title, percent(st.DriveProgress)})
	}
	for _, c := range st.Companies {
		data.Rows = append(data.Rows, []string{"company", c.ID, c.Name, percent(st.CompanyProgress[c.ID])})
	}
	for _, j := range st.Jobs {
		data.Rows = append(data.Rows, []string{"job", j.ID, j.Title, percent(st.JobProgress[j.ID])})
	}
	return data
}

// StudentsData renders roster entries joined with their performance.
func StudentsData(students []drives.StudentWithPerformance) Data {
	data := Data{
		Headers:         []string{"ID", "Name", "Program", "Degree CGPA", "Status"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
	for _, s := range students {
		cgpa, status := "-", "-"
		if s.Performance != nil {
			if s.Performance.DegreeCGPA > 0 {
				cgpa = strconv.FormatFloat(s.Performance.DegreeCGPA, 'f', 2, 64)
			}
			if s.Performance.CurrentStatus != "" {
				status = s.Performance.CurrentStatus
			}
		}
		data.Rows = append(data.Rows, []string{s.ID, s.FirstName, s.Program, cgpa, status})
	}
	return data
}

// PublishData renders a finalized job to students map in job order.
func PublishData(jobs []drives.Job, final map[string][]string) Data {
	data := Data{
		Headers:         []string{"Job", "Title", "Students", "IDs"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
	seen := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		seen[j.ID] = true
		data.Rows = append(data.Rows, publishRow(j.ID, j.Title, final[j.ID]))
	}
	var extra []string
	for id := range final {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	slices.Sort(extra)
	for _, id := range extra {
		data.Rows = append(data.Rows, publishRow(id, "", final[id]))
	}
	return data
}

func publishRow(id, title string, students []string) []string {
	return []string{id, title, strconv.Itoa(len(students)), strings.Join(students, ", ")}
}

func date(t *utc.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func percent(p int) string {
	return fmt.Sprintf("%d%%", p)
}

func money(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
