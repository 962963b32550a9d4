package drives

import (
	"slices"

	"github.com/agentstation/utc"
)

// DrivePatch is a partial update to a Drive. A nil field, a blank string,
// a zero number or a zero date leaves the current value in place. A non-nil
// slice replaces the current slice, so an explicitly empty slice clears it.
type DrivePatch struct {
	Title                  *string   `json:"title,omitempty" yaml:"title,omitempty"`
	Desc                   *string   `json:"desc,omitempty" yaml:"desc,omitempty"`
	Location               *string   `json:"location,omitempty" yaml:"location,omitempty"`
	DriveDate              *utc.Time `json:"drive_date,omitempty" yaml:"drive_date,omitempty"`
	Stages                 []string  `json:"stages,omitempty" yaml:"stages,omitempty"`
	ApplicationDeadline    *utc.Time `json:"application_deadline,omitempty" yaml:"application_deadline,omitempty"`
	AdditionalInstructions *string   `json:"additional_instructions,omitempty" yaml:"additional_instructions,omitempty"`
	FormLink               *string   `json:"form_link,omitempty" yaml:"form_link,omitempty"`
}

// CompanyPatch is a partial update to a Company.
type CompanyPatch struct {
	Name   *string `json:"name,omitempty" yaml:"name,omitempty"`
	Branch *string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Site   *string `json:"site,omitempty" yaml:"site,omitempty"`
	Desc   *string `json:"desc,omitempty" yaml:"desc,omitempty"`
	Email  *string `json:"email,omitempty" yaml:"email,omitempty"`
	PhNo   *string `json:"ph_no,omitempty" yaml:"ph_no,omitempty"`
}

// JobPatch is a partial update to a Job.
type JobPatch struct {
	Title                  *string   `json:"title,omitempty" yaml:"title,omitempty"`
	Experience             *int      `json:"experience,omitempty" yaml:"experience,omitempty"`
	Desc                   *string   `json:"desc,omitempty" yaml:"desc,omitempty"`
	Loc                    *string   `json:"loc,omitempty" yaml:"loc,omitempty"`
	Salary                 *float64  `json:"salary,omitempty" yaml:"salary,omitempty"`
	JoinDate               *utc.Time `json:"join_date,omitempty" yaml:"join_date,omitempty"`
	LastDate               *utc.Time `json:"last_date,omitempty" yaml:"last_date,omitempty"`
	ContactPerson          *string   `json:"contact_person,omitempty" yaml:"contact_person,omitempty"`
	ContactEmail           *string   `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
	AdditionalInstructions *string   `json:"additional_instructions,omitempty" yaml:"additional_instructions,omitempty"`
	FormLink               *string   `json:"form_link,omitempty" yaml:"form_link,omitempty"`
}

// RequirementPatch is a partial update to a Requirement.
type RequirementPatch struct {
	ExperienceRequired      *int      `json:"experience_required,omitempty" yaml:"experience_required,omitempty"`
	SSLCCGPA                *float64  `json:"sslc_cgpa,omitempty" yaml:"sslc_cgpa,omitempty"`
	PlusTwoCGPA             *float64  `json:"plustwo_cgpa,omitempty" yaml:"plustwo_cgpa,omitempty"`
	DegreeCGPA              *float64  `json:"degree_cgpa,omitempty" yaml:"degree_cgpa,omitempty"`
	MCACGPA                 []float64 `json:"mca_cgpa,omitempty" yaml:"mca_cgpa,omitempty"`
	Contract                *float64  `json:"contract,omitempty" yaml:"contract,omitempty"`
	AdditionalCriteria      *string   `json:"additional_criteria,omitempty" yaml:"additional_criteria,omitempty"`
	SkillsRequired          []string  `json:"skills_required,omitempty" yaml:"skills_required,omitempty"`
	PreferredQualifications []string  `json:"preferred_qualifications,omitempty" yaml:"preferred_qualifications,omitempty"`
	RequiredCertifications  []string  `json:"required_certifications,omitempty" yaml:"required_certifications,omitempty"`
	LanguageRequirements    []string  `json:"language_requirements,omitempty" yaml:"language_requirements,omitempty"`
	RequirementDesc         *string   `json:"requirement_desc,omitempty" yaml:"requirement_desc,omitempty"`
}

func mergeString(dst *string, v *string) {
	if v != nil && filledString(*v) {
		*dst = *v
	}
}

func mergeNumber[T int | float64](dst *T, v *T) {
	if v != nil && *v != 0 {
		*dst = *v
	}
}

func mergeDate(dst **utc.Time, v *utc.Time) {
	if filledDate(v) {
		t := *v
		*dst = &t
	}
}

func mergeSlice[T any](dst *[]T, v []T) {
	if v != nil {
		*dst = slices.Clone(v)
	}
}

// ApplyDrivePatch returns current with the supplied patch fields applied.
func ApplyDrivePatch(current Drive, patch DrivePatch) Drive {
	merged := current
	mergeString(&merged.Title, patch.Title)
	mergeString(&merged.Desc, patch.Desc)
	mergeString(&merged.Location, patch.Location)
	mergeDate(&merged.DriveDate, patch.DriveDate)
	mergeSlice(&merged.Stages, patch.Stages)
	mergeDate(&merged.ApplicationDeadline, patch.ApplicationDeadline)
	mergeString(&merged.AdditionalInstructions, patch.AdditionalInstructions)
	mergeString(&merged.FormLink, patch.FormLink)
	return merged
}

// ApplyCompanyPatch returns current with the supplied patch fields applied.
func ApplyCompanyPatch(current Company, patch CompanyPatch) Company {
	merged := current
	mergeString(&merged.Name, patch.Name)
	mergeString(&merged.Branch, patch.Branch)
	mergeString(&merged.Site, patch.Site)
	mergeString(&merged.Desc, patch.Desc)
	mergeString(&merged.Email, patch.Email)
	mergeString(&merged.PhNo, patch.PhNo)
	return merged
}

// ApplyJobPatch returns current with the supplied patch fields applied.
func ApplyJobPatch(current Job, patch JobPatch) Job {
	merged := current
	mergeString(&merged.Title, patch.Title)
	mergeNumber(&merged.Experience, patch.Experience)
	mergeString(&merged.Desc, patch.Desc)
	mergeString(&merged.Loc, patch.Loc)
	mergeNumber(&merged.Salary, patch.Salary)
	mergeDate(&merged.JoinDate, patch.JoinDate)
	mergeDate(&merged.LastDate, patch.LastDate)
	mergeString(&merged.ContactPerson, patch.ContactPerson)
	mergeString(&merged.ContactEmail, patch.ContactEmail)
	mergeString(&merged.AdditionalInstructions, patch.AdditionalInstructions)
	mergeString(&merged.FormLink, patch.FormLink)
	return merged
}

// ApplyRequirementPatch returns current with the supplied patch fields applied.
func ApplyRequirementPatch(current Requirement, patch RequirementPatch) Requirement {
	merged := current
	mergeNumber(&merged.ExperienceRequired, patch.ExperienceRequired)
	mergeNumber(&merged.SSLCCGPA, patch.SSLCCGPA)
	mergeNumber(&merged.PlusTwoCGPA, patch.PlusTwoCGPA)
	mergeNumber(&merged.DegreeCGPA, patch.DegreeCGPA)
	mergeSlice(&merged.MCACGPA, patch.MCACGPA)
	mergeNumber(&merged.Contract, patch.Contract)
	mergeString(&merged.AdditionalCriteria, patch.AdditionalCriteria)
	mergeSlice(&merged.SkillsRequired, patch.SkillsRequired)
	mergeSlice(&merged.PreferredQualifications, patch.PreferredQualifications)
	mergeSlice(&merged.RequiredCertifications, patch.RequiredCertifications)
	mergeSlice(&merged.LanguageRequirements, patch.LanguageRequirements)
	mergeString(&merged.RequirementDesc, patch.RequirementDesc)
	return merged
}

// NewRequirement builds a fresh requirement for jobID from a patch.
func NewRequirement(jobID string, patch RequirementPatch) Requirement {
	return ApplyRequirementPatch(Requirement{Job: jobID}, patch)
}
