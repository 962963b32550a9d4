// Package cmdutil provides the flag sets shared by the placement commands
// and turns them into drive, company, job and requirement values.
package cmdutil

import (
	"github.com/agentstation/utc"
	"github.com/spf13/cobra"

	"github.com/agentstation/placement/internal/utils/ptr"
	"github.com/agentstation/placement/pkg/drives"
	"github.com/agentstation/placement/pkg/errors"
)

// DateLayout is the layout accepted by date flags.
const DateLayout = "2006-01-02"

// DriveFlags holds the editable drive fields.
type DriveFlags struct {
	Title        string
	Desc         string
	Location     string
	Date         string
	Deadline     string
	Stages       []string
	Instructions string
	FormLink     string
}

// AddDriveFlags adds drive field flags to a command.
func AddDriveFlags(cmd *cobra.Command) *DriveFlags {
	flags := &DriveFlags{}

	cmd.Flags().StringVar(&flags.Title, "title", "", "Drive title")
	cmd.Flags().StringVar(&flags.Desc, "desc", "", "Description")
	cmd.Flags().StringVar(&flags.Location, "location", "", "Venue")
	cmd.Flags().StringVar(&flags.Date, "date", "", "Drive date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.Deadline, "deadline", "", "Application deadline (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&flags.Stages, "stage", nil, "Selection stage, in order (repeatable)")
	cmd.Flags().StringVar(&flags.Instructions, "instructions", "", "Additional instructions")
	cmd.Flags().StringVar(&flags.FormLink, "form-link", "", "Application form link")

	return flags
}

// Patch returns the fields whose flags were set on cmd.
func (f *DriveFlags) Patch(cmd *cobra.Command) (drives.DrivePatch, error) {
	var (
		p   drives.DrivePatch
		err error
	)
	changed := cmd.Flags().Changed
	p.Title = stringIf(changed("title"), f.Title)
	p.Desc = stringIf(changed("desc"), f.Desc)
	p.Location = stringIf(changed("location"), f.Location)
	p.AdditionalInstructions = stringIf(changed("instructions"), f.Instructions)
	p.FormLink = stringIf(changed("form-link"), f.FormLink)
	if changed("stage") {
		p.Stages = append([]string{}, f.Stages...)
	}
	if p.DriveDate, err = dateIf(changed("date"), "date", f.Date); err != nil {
		return p, err
	}
	if p.ApplicationDeadline, err = dateIf(changed("deadline"), "deadline", f.Deadline); err != nil {
		return p, err
	}
	return p, nil
}

// Drive returns a new drive built from the flags.
func (f *DriveFlags) Drive(cmd *cobra.Command) (drives.Drive, error) {
	p, err := f.Patch(cmd)
	if err != nil {
		return drives.Drive{}, err
	}
	d := drives.ApplyDrivePatch(drives.Drive{Stages: []string{}}, p)
	if d.Title == "" {
		return d, errors.NewValidationError("title", d.Title, "is required")
	}
	return d, nil
}

// CompanyFlags holds the editable company fields.
type CompanyFlags struct {
	Name   string
	Branch string
	Site   string
	Desc   string
	Email  string
	Phone  string
}

// AddCompanyFlags adds company field flags to a command.
func AddCompanyFlags(cmd *cobra.Command) *CompanyFlags {
	flags := &CompanyFlags{}

	cmd.Flags().StringVar(&flags.Name, "name", "", "Company name")
	cmd.Flags().StringVar(&flags.Branch, "branch", "", "Branch or office")
	cmd.Flags().StringVar(&flags.Site, "site", "", "Website")
	cmd.Flags().StringVar(&flags.Desc, "desc", "", "Description")
	cmd.Flags().StringVar(&flags.Email, "email", "", "Contact email")
	cmd.Flags().StringVar(&flags.Phone, "phone", "", "Contact phone")

	return flags
}

// Patch returns the fields whose flags were set on cmd.
func (f *CompanyFlags) Patch(cmd *cobra.Command) drives.CompanyPatch {
	changed := cmd.Flags().Changed
	return drives.CompanyPatch{
		Name:   stringIf(changed("name"), f.Name),
		Branch: stringIf(changed("branch"), f.Branch),
		Site:   stringIf(changed("site"), f.Site),
		Desc:   stringIf(changed("desc"), f.Desc),
		Email:  stringIf(changed("email"), f.Email),
		PhNo:   stringIf(changed("phone"), f.Phone),
	}
}

// Company returns a new company built from the flags. Name and branch are
// required.
func (f *CompanyFlags) Company(cmd *cobra.Command) (drives.Company, error) {
	c := drives.ApplyCompanyPatch(drives.Company{}, f.Patch(cmd))
	if c.Name == "" {
		return c, errors.NewValidationError("name", c.Name, "is required")
	}
	if c.Branch == "" {
		return c, errors.NewValidationError("branch", c.Branch, "is required")
	}
	return c, nil
}

// JobFlags holds the editable job fields.
type JobFlags struct {
	Title         string
	Experience    int
	Desc          string
	Loc           string
	Salary        float64
	JoinDate      string
	LastDate      string
	ContactPerson string
	ContactEmail  string
	Instructions  string
	FormLink      string
}

// AddJobFlags adds job field flags to a command.
func AddJobFlags(cmd *cobra.Command) *JobFlags {
	flags := &JobFlags{}

	cmd.Flags().StringVar(&flags.Title, "title", "", "Job title")
	cmd.Flags().IntVar(&flags.Experience, "experience", 0, "Years of experience")
	cmd.Flags().StringVar(&flags.Desc, "desc", "", "Description")
	cmd.Flags().StringVar(&flags.Loc, "loc", "", "Location")
	cmd.Flags().Float64Var(&flags.Salary, "salary", 0, "Salary")
	cmd.Flags().StringVar(&flags.JoinDate, "join-date", "", "Joining date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.LastDate, "last-date", "", "Last date to apply (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.ContactPerson, "contact-person", "", "Contact person")
	cmd.Flags().StringVar(&flags.ContactEmail, "contact-email", "", "Contact email")
	cmd.Flags().StringVar(&flags.Instructions, "instructions", "", "Additional instructions")
	cmd.Flags().StringVar(&flags.FormLink, "form-link", "", "Application form link")

	return flags
}

// Patch returns the fields whose flags were set on cmd.
func (f *JobFlags) Patch(cmd *cobra.Command) (drives.JobPatch, error) {
	var (
		p   drives.JobPatch
		err error
	)
	changed := cmd.Flags().Changed
	p.Title = stringIf(changed("title"), f.Title)
	p.Desc = stringIf(changed("desc"), f.Desc)
	p.Loc = stringIf(changed("loc"), f.Loc)
	p.ContactPerson = stringIf(changed("contact-person"), f.ContactPerson)
	p.ContactEmail = stringIf(changed("contact-email"), f.ContactEmail)
	p.AdditionalInstructions = stringIf(changed("instructions"), f.Instructions)
	p.FormLink = stringIf(changed("form-link"), f.FormLink)
	if changed("experience") {
		p.Experience = ptr.Int(f.Experience)
	}
	if changed("salary") {
		p.Salary = ptr.Float64(f.Salary)
	}
	if p.JoinDate, err = dateIf(changed("join-date"), "join-date", f.JoinDate); err != nil {
		return p, err
	}
	if p.LastDate, err = dateIf(changed("last-date"), "last-date", f.LastDate); err != nil {
		return p, err
	}
	return p, nil
}

// Job returns a new job built from the flags. The title is required.
func (f *JobFlags) Job(cmd *cobra.Command) (drives.Job, error) {
	p, err := f.Patch(cmd)
	if err != nil {
		return drives.Job{}, err
	}
	j := drives.ApplyJobPatch(drives.Job{}, p)
	if j.Title == "" {
		return j, errors.NewValidationError("title", j.Title, "is required")
	}
	return j, nil
}

// RequirementFlags holds the eligibility criteria of a job.
type RequirementFlags struct {
	Experience     int
	SSLCCGPA       float64
	PlusTwoCGPA    float64
	DegreeCGPA     float64
	MCACGPA        []float64
	Contract       float64
	Criteria       string
	Skills         []string
	Preferred      []string
	Certifications []string
	Languages      []string
	Desc           string
}

// AddRequirementFlags adds requirement flags to a command.
func AddRequirementFlags(cmd *cobra.Command) *RequirementFlags {
	flags := &RequirementFlags{}

	cmd.Flags().IntVar(&flags.Experience, "experience", 0, "Years of experience required")
	cmd.Flags().Float64Var(&flags.SSLCCGPA, "sslc-cgpa", 0, "Minimum SSLC CGPA")
	cmd.Flags().Float64Var(&flags.PlusTwoCGPA, "plustwo-cgpa", 0, "Minimum plus two CGPA")
	cmd.Flags().Float64Var(&flags.DegreeCGPA, "degree-cgpa", 0, "Minimum degree CGPA")
	cmd.Flags().Float64SliceVar(&flags.MCACGPA, "mca-cgpa", nil, "Minimum MCA CGPA per semester")
	cmd.Flags().Float64Var(&flags.Contract, "contract", 0, "Bond length in years")
	cmd.Flags().StringVar(&flags.Criteria, "criteria", "", "Additional criteria")
	cmd.Flags().StringSliceVar(&flags.Skills, "skill", nil, "Required skill (repeatable)")
	cmd.Flags().StringSliceVar(&flags.Preferred, "preferred", nil, "Preferred qualification (repeatable)")
	cmd.Flags().StringSliceVar(&flags.Certifications, "certification", nil, "Required certification (repeatable)")
	cmd.Flags().StringSliceVar(&flags.Languages, "language", nil, "Language requirement (repeatable)")
	cmd.Flags().StringVar(&flags.Desc, "desc", "", "Requirement description")

	return flags
}

// Patch returns the fields whose flags were set on cmd.
func (f *RequirementFlags) Patch(cmd *cobra.Command) drives.RequirementPatch {
	changed := cmd.Flags().Changed
	p := drives.RequirementPatch{
		AdditionalCriteria: stringIf(changed("criteria"), f.Criteria),
		RequirementDesc:    stringIf(changed("desc"), f.Desc),
	}
	if changed("experience") {
		p.ExperienceRequired = ptr.Int(f.Experience)
	}
	if changed("sslc-cgpa") {
		p.SSLCCGPA = ptr.Float64(f.SSLCCGPA)
	}
	if changed("plustwo-cgpa") {
		p.PlusTwoCGPA = ptr.Float64(f.PlusTwoCGPA)
	}
	if changed("degree-cgpa") {
		p.DegreeCGPA = ptr.Float64(f.DegreeCGPA)
	}
	if changed("contract") {
		p.Contract = ptr.Float64(f.Contract)
	}
	if changed("mca-cgpa") {
		p.MCACGPA = append([]float64{}, f.MCACGPA...)
	}
	if changed("skill") {
		p.SkillsRequired = append([]string{}, f.Skills...)
	}
	if changed("preferred") {
		p.PreferredQualifications = append([]string{}, f.Preferred...)
	}
	if changed("certification") {
		p.RequiredCertifications = append([]string{}, f.Certifications...)
	}
	if changed("language") {
		p.LanguageRequirements = append([]string{}, f.Languages...)
	}
	return p
}

func stringIf(set bool, v string) *string {
	if !set {
		return nil
	}
	return ptr.String(v)
}

func dateIf(set bool, field, v string) (*utc.Time, error) {
	if !set || v == "" {
		return nil, nil
	}
	t, err := utc.Parse(DateLayout, v)
	if err != nil {
		return nil, errors.NewValidationError(field, v, "must be a date like 2006-01-02")
	}
	return &t, nil
}
