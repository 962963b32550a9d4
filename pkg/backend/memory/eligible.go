package memory

import "github.com/agentstation/placement/pkg/drives"

// Eligible reports whether a student's performance satisfies a requirement.
// Zero thresholds are ignored. MCA thresholds apply per semester, and a
// missing semester fails its threshold. A student without a performance
// record only passes a requirement that sets no thresholds.
func Eligible(req drives.Requirement, perf drives.Performance, hasPerf bool) bool {
	checks := []struct {
		min, got float64
	}{
		{req.SSLCCGPA, perf.TenthCGPA},
		{req.PlusTwoCGPA, perf.TwelfthCGPA},
		{req.DegreeCGPA, perf.DegreeCGPA},
	}
	for i, threshold := range req.MCACGPA {
		got := 0.0
		if i < len(perf.MCACGPA) {
			got = perf.MCACGPA[i]
		}
		checks = append(checks, struct{ min, got float64 }{threshold, got})
	}

	for _, c := range checks {
		if c.min == 0 {
			continue
		}
		if !hasPerf || c.got < c.min {
			return false
		}
	}
	return true
}
