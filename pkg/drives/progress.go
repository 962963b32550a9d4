package drives

import (
	"math"
	"strings"

	"github.com/agentstation/utc"
)

// Field weights used by the progress score.
const (
	requiredWeight = 2
	optionalWeight = 1
)

// score accumulates weighted fill state for a set of fields.
type score struct {
	earned int
	total  int
}

func (s *score) required(filled bool) {
	s.total += requiredWeight
	if filled {
		s.earned += requiredWeight
	}
}

func (s *score) optional(filled bool) {
	s.total += optionalWeight
	if filled {
		s.earned += optionalWeight
	}
}

// percent returns min(100, round(100 * earned / total)).
func (s *score) percent() int {
	if s.total == 0 {
		return 0
	}
	p := int(math.Round(float64(s.earned) / float64(s.total) * 100))
	return min(p, 100)
}

func filledString(v string) bool { return strings.TrimSpace(v) != "" }

func filledNumber[T int | float64](v T) bool { return v != 0 }

func filledDate(v *utc.Time) bool { return v != nil && !v.IsZero() }

func filledList(v []string) bool {
	for _, item := range v {
		if filledString(item) {
			return true
		}
	}
	return false
}

// DriveProgress scores how complete a drive's details are, 0 to 100.
// Title is required; description, location, drive date, stages, application
// deadline, additional instructions and form link are optional.
func DriveProgress(d Drive) int {
	var s score
	s.required(filledString(d.Title))
	s.optional(filledString(d.Desc))
	s.optional(filledString(d.Location))
	s.optional(filledDate(d.DriveDate))
	s.optional(filledList(d.Stages))
	s.optional(filledDate(d.ApplicationDeadline))
	s.optional(filledString(d.AdditionalInstructions))
	s.optional(filledString(d.FormLink))
	return s.percent()
}

// CompanyProgress scores how complete a company's details are, 0 to 100.
// Name and branch are required; site, description, email and phone number
// are optional.
func CompanyProgress(c Company) int {
	var s score
	s.required(filledString(c.Name))
	s.required(filledString(c.Branch))
	s.optional(filledString(c.Site))
	s.optional(filledString(c.Desc))
	s.optional(filledString(c.Email))
	s.optional(filledString(c.PhNo))
	return s.percent()
}

// JobProgress scores how complete a job's details are, 0 to 100. Title and
// experience are required, and zero experience counts as unset.
func JobProgress(j Job) int {
	var s score
	s.required(filledString(j.Title))
	s.required(filledNumber(j.Experience))
	s.optional(filledString(j.Desc))
	s.optional(filledString(j.Loc))
	s.optional(filledNumber(j.Salary))
	s.optional(filledDate(j.JoinDate))
	s.optional(filledDate(j.LastDate))
	s.optional(filledString(j.ContactPerson))
	s.optional(filledString(j.ContactEmail))
	s.optional(filledString(j.FormLink))
	return s.percent()
}
