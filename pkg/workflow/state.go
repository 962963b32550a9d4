package workflow

import (
	"maps"
	"slices"

	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/errors"
)

// Scope names an error slot. Each failing operation reports into the slot of
// the entity it was acting on.
type Scope string

// Error scopes.
const (
	ScopeDrive       Scope = "drive"
	ScopeCompany     Scope = "company"
	ScopeJob         Scope = "job"
	ScopeRequirement Scope = "requirement"
)

// Action names the mutating operation currently in flight.
type Action string

// Actions. ActionIdle means no operation is pending.
const (
	ActionIdle            Action = ""
	ActionLoadDrive       Action = "load_drive"
	ActionCreateDrive     Action = "create_drive"
	ActionUpdateDrive     Action = "update_drive"
	ActionDeleteDrive     Action = "delete_drive"
	ActionAddCompany      Action = "add_company"
	ActionUpdateCompany   Action = "update_company"
	ActionRemoveCompany   Action = "remove_company"
	ActionAddJob          Action = "add_job"
	ActionUpdateJob       Action = "update_job"
	ActionDeleteJob       Action = "delete_job"
	ActionSaveRequirement Action = "save_requirement"
)

// State is everything a session knows about the drive being edited.
// Transitions below are pure: they take a State and return a new one
// without mutating shared slices or maps.
type State struct {
	Drive           *drives.Drive
	CompanyIDs      []string
	Companies       []drives.Company // Only companies attached to the drive
	Jobs            []drives.Job
	Requirements    map[string]drives.Requirement // Keyed by job ID
	DriveProgress   int
	CompanyProgress map[string]int
	JobProgress     map[string]int
	Errors          map[Scope]string
	Action          Action
}

// emptyState returns a State with every map allocated.
func emptyState() State {
	return State{
		Requirements:    make(map[string]drives.Requirement),
		CompanyProgress: make(map[string]int),
		JobProgress:     make(map[string]int),
		Errors:          make(map[Scope]string),
	}
}

// clone returns a deep copy of s.
func (s State) clone() State {
	out := s
	if s.Drive != nil {
		d := cloneDrive(*s.Drive)
		out.Drive = &d
	}
	out.CompanyIDs = slices.Clone(s.CompanyIDs)
	out.Companies = slices.Clone(s.Companies)
	for i := range out.Companies {
		out.Companies[i].PlacedStudents = slices.Clone(out.Companies[i].PlacedStudents)
	}
	out.Jobs = slices.Clone(s.Jobs)
	out.Requirements = make(map[string]drives.Requirement, len(s.Requirements))
	for id, r := range s.Requirements {
		out.Requirements[id] = cloneRequirement(r)
	}
	out.CompanyProgress = maps.Clone(s.CompanyProgress)
	out.JobProgress = maps.Clone(s.JobProgress)
	out.Errors = maps.Clone(s.Errors)
	if out.Errors == nil {
		out.Errors = make(map[Scope]string)
	}
	return out
}

func cloneDrive(d drives.Drive) drives.Drive {
	d.Stages = slices.Clone(d.Stages)
	d.AppliedStudents = slices.Clone(d.AppliedStudents)
	d.SelectedStudents = slices.Clone(d.SelectedStudents)
	d.SendTo = slices.Clone(d.SendTo)
	return d
}

func cloneRequirement(r drives.Requirement) drives.Requirement {
	r.MCACGPA = slices.Clone(r.MCACGPA)
	r.SkillsRequired = slices.Clone(r.SkillsRequired)
	r.PreferredQualifications = slices.Clone(r.PreferredQualifications)
	r.RequiredCertifications = slices.Clone(r.RequiredCertifications)
	r.LanguageRequirements = slices.Clone(r.LanguageRequirements)
	return r
}

// Job returns the job with the given ID and whether it is present.
func (s State) Job(id string) (drives.Job, bool) {
	for _, j := range s.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return drives.Job{}, false
}

// Company returns the attached company with the given ID.
func (s State) Company(id string) (drives.Company, bool) {
	for _, c := range s.Companies {
		if c.ID == id {
			return c, true
		}
	}
	return drives.Company{}, false
}

// withDrive replaces the drive.
func withDrive(s State, d drives.Drive) State {
	out := s.clone()
	out.Drive = &d
	return recompute(out)
}

// withCompanies sets the attached company IDs and keeps only the companies
// in that set, in the order the company list returned them.
func withCompanies(s State, ids []string, all []drives.Company) State {
	out := s.clone()
	out.CompanyIDs = slices.Clone(ids)
	attached := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		attached[id] = struct{}{}
	}
	out.Companies = out.Companies[:0:0]
	for _, c := range all {
		if _, ok := attached[c.ID]; ok {
			out.Companies = append(out.Companies, c)
		}
	}
	return recompute(out)
}

// withCompany replaces one attached company.
func withCompany(s State, c drives.Company) State {
	out := s.clone()
	for i := range out.Companies {
		if out.Companies[i].ID == c.ID {
			out.Companies[i] = c
		}
	}
	return recompute(out)
}

// withJobs replaces the job list and drops requirements of jobs that no
// longer exist.
func withJobs(s State, jobs []drives.Job) State {
	out := s.clone()
	out.Jobs = slices.Clone(jobs)
	present := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		present[j.ID] = struct{}{}
	}
	for jobID := range out.Requirements {
		if _, ok := present[jobID]; !ok {
			delete(out.Requirements, jobID)
		}
	}
	return recompute(out)
}

// withJob inserts or replaces a single job.
func withJob(s State, j drives.Job) State {
	out := s.clone()
	for i := range out.Jobs {
		if out.Jobs[i].ID == j.ID {
			out.Jobs[i] = j
			return recompute(out)
		}
	}
	out.Jobs = append(out.Jobs, j)
	return recompute(out)
}

// withRequirement records the requirement of a job. A nil requirement
// removes it.
func withRequirement(s State, jobID string, r *drives.Requirement) State {
	out := s.clone()
	if r == nil {
		delete(out.Requirements, jobID)
	} else {
		out.Requirements[jobID] = *r
	}
	return out
}

// withError stores err's message in the scope's slot.
func withError(s State, scope Scope, err error) State {
	out := s.clone()
	out.Errors[scope] = errors.Message(err)
	return out
}

// clearError empties the scope's slot.
func clearError(s State, scope Scope) State {
	if _, ok := s.Errors[scope]; !ok {
		return s
	}
	out := s.clone()
	delete(out.Errors, scope)
	return out
}

// recompute derives every progress score from the current entities.
func recompute(s State) State {
	out := s
	out.DriveProgress = 0
	if s.Drive != nil {
		out.DriveProgress = drives.DriveProgress(*s.Drive)
	}
	out.CompanyProgress = make(map[string]int, len(s.Companies))
	for _, c := range s.Companies {
		out.CompanyProgress[c.ID] = drives.CompanyProgress(c)
	}
	out.JobProgress = make(map[string]int, len(s.Jobs))
	for _, j := range s.Jobs {
		out.JobProgress[j.ID] = drives.JobProgress(j)
	}
	return out
}
