// Package drives defines the placement drive data model shared by the
// workflow, eligibility and publish packages: drives, the companies taking
// part in them, the jobs those companies offer and the eligibility
// requirement attached to each job.
//
// JSON field names follow the PMS backend wire format (Mongo style "_id"
// identifiers, snake_case fields). YAML tags mirror them for CLI output.
package drives

import (
	"github.com/agentstation/utc"
)

// Drive is a recruitment event.
type Drive struct {
	ID                     string    `json:"_id,omitempty" yaml:"id,omitempty"`
	Title                  string    `json:"title" yaml:"title"`
	Desc                   string    `json:"desc,omitempty" yaml:"desc,omitempty"`
	Location               string    `json:"location,omitempty" yaml:"location,omitempty"`
	DriveDate              *utc.Time `json:"drive_date,omitempty" yaml:"drive_date,omitempty"`
	Stages                 []string  `json:"stages" yaml:"stages,omitempty"`
	ApplicationDeadline    *utc.Time `json:"application_deadline,omitempty" yaml:"application_deadline,omitempty"`
	AdditionalInstructions string    `json:"additional_instructions,omitempty" yaml:"additional_instructions,omitempty"`
	FormLink               string    `json:"form_link,omitempty" yaml:"form_link,omitempty"`
	AppliedStudents        []string  `json:"applied_students,omitempty" yaml:"applied_students,omitempty"`
	SelectedStudents       []string  `json:"selected_students,omitempty" yaml:"selected_students,omitempty"`
	SendTo                 []string  `json:"send_to,omitempty" yaml:"send_to,omitempty"` // Students the drive was published to
	CreatedAt              *utc.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Company is an employer. Companies exist independently of drives and are
// attached to a drive through a DriveCompany association.
type Company struct {
	ID             string   `json:"_id,omitempty" yaml:"id,omitempty"`
	Name           string   `json:"name" yaml:"name"`
	Branch         string   `json:"branch" yaml:"branch"`
	Site           string   `json:"site,omitempty" yaml:"site,omitempty"`
	Desc           string   `json:"desc,omitempty" yaml:"desc,omitempty"`
	Email          string   `json:"email,omitempty" yaml:"email,omitempty"`
	PhNo           string   `json:"ph_no,omitempty" yaml:"ph_no,omitempty"`
	AvgSalary      float64  `json:"avg_salary,omitempty" yaml:"avg_salary,omitempty"`
	PlacedStudents []string `json:"placed_students,omitempty" yaml:"placed_students,omitempty"`
}

// DriveCompany links a company to a drive.
type DriveCompany struct {
	ID      string `json:"_id,omitempty" yaml:"id,omitempty"`
	Drive   string `json:"drive" yaml:"drive"`
	Company string `json:"company" yaml:"company"`
}

// Job is a position offered by a company within a drive.
type Job struct {
	ID                     string    `json:"_id,omitempty" yaml:"id,omitempty"`
	Company                string    `json:"company" yaml:"company"`
	Drive                  string    `json:"drive" yaml:"drive"`
	Title                  string    `json:"title" yaml:"title"`
	Experience             int       `json:"experience" yaml:"experience"` // Years; zero counts as unset for progress
	Desc                   string    `json:"desc,omitempty" yaml:"desc,omitempty"`
	Loc                    string    `json:"loc,omitempty" yaml:"loc,omitempty"`
	Requirement            string    `json:"requirement,omitempty" yaml:"requirement,omitempty"`
	Salary                 float64   `json:"salary,omitempty" yaml:"salary,omitempty"`
	JoinDate               *utc.Time `json:"join_date,omitempty" yaml:"join_date,omitempty"`
	LastDate               *utc.Time `json:"last_date,omitempty" yaml:"last_date,omitempty"`
	ContactPerson          string    `json:"contact_person,omitempty" yaml:"contact_person,omitempty"`
	ContactEmail           string    `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
	AdditionalInstructions string    `json:"additional_instructions,omitempty" yaml:"additional_instructions,omitempty"`
	FormLink               string    `json:"form_link,omitempty" yaml:"form_link,omitempty"`
}

// Requirement holds the eligibility criteria of a single job. A job has at
// most one requirement.
type Requirement struct {
	ID                      string    `json:"_id,omitempty" yaml:"id,omitempty"`
	Job                     string    `json:"job" yaml:"job"`
	ExperienceRequired      int       `json:"experience_required" yaml:"experience_required"`
	SSLCCGPA                float64   `json:"sslc_cgpa,omitempty" yaml:"sslc_cgpa,omitempty"`
	PlusTwoCGPA             float64   `json:"plustwo_cgpa,omitempty" yaml:"plustwo_cgpa,omitempty"`
	DegreeCGPA              float64   `json:"degree_cgpa,omitempty" yaml:"degree_cgpa,omitempty"`
	MCACGPA                 []float64 `json:"mca_cgpa,omitempty" yaml:"mca_cgpa,omitempty"` // Per-semester minimums
	Contract                float64   `json:"contract,omitempty" yaml:"contract,omitempty"` // Bond length in years
	AdditionalCriteria      string    `json:"additional_criteria,omitempty" yaml:"additional_criteria,omitempty"`
	SkillsRequired          []string  `json:"skills_required,omitempty" yaml:"skills_required,omitempty"`
	PreferredQualifications []string  `json:"preferred_qualifications,omitempty" yaml:"preferred_qualifications,omitempty"`
	RequiredCertifications  []string  `json:"required_certifications,omitempty" yaml:"required_certifications,omitempty"`
	LanguageRequirements    []string  `json:"language_requirements,omitempty" yaml:"language_requirements,omitempty"`
	RequirementDesc         string    `json:"requirement_desc,omitempty" yaml:"requirement_desc,omitempty"`
}

// Student is a roster entry.
type Student struct {
	ID        string `json:"_id" yaml:"id"`
	FirstName string `json:"first_name" yaml:"first_name"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
	PhNo      string `json:"ph_no,omitempty" yaml:"ph_no,omitempty"`
	AdmNo     string `json:"adm_no,omitempty" yaml:"adm_no,omitempty"`
	Program   string `json:"program,omitempty" yaml:"program,omitempty"`
}

// Performance is a student's academic record.
type Performance struct {
	ID            string    `json:"_id,omitempty" yaml:"id,omitempty"`
	StudentID     string    `json:"student_id" yaml:"student_id"`
	Semester      int       `json:"semester,omitempty" yaml:"semester,omitempty"`
	TenthCGPA     float64   `json:"tenth_cgpa,omitempty" yaml:"tenth_cgpa,omitempty"`
	TwelfthCGPA   float64   `json:"twelfth_cgpa,omitempty" yaml:"twelfth_cgpa,omitempty"`
	DegreeCGPA    float64   `json:"degree_cgpa,omitempty" yaml:"degree_cgpa,omitempty"`
	MCACGPA       []float64 `json:"mca_cgpa,omitempty" yaml:"mca_cgpa,omitempty"`
	Skills        []string  `json:"skills,omitempty" yaml:"skills,omitempty"`
	CurrentStatus string    `json:"current_status,omitempty" yaml:"current_status,omitempty"`
	Year          int       `json:"year,omitempty" yaml:"year,omitempty"`
	MCAPercentage float64   `json:"mca_percentage,omitempty" yaml:"mca_percentage,omitempty"`
	LinkedInURL   string    `json:"linkedin_url,omitempty" yaml:"linkedin_url,omitempty"`
}

// StudentWithPerformance joins a roster entry with its academic record.
// Performance is nil when the student has none on file.
type StudentWithPerformance struct {
	Student     `yaml:",inline"`
	Performance *Performance `json:"performance,omitempty" yaml:"performance,omitempty"`
}

// JobsByCompany groups jobs by their company ID, preserving input order.
func JobsByCompany(jobs []Job) map[string][]Job {
	grouped := make(map[string][]Job)
	for _, j := range jobs {
		grouped[j.Company] = append(grouped[j.Company], j)
	}
	return grouped
}
