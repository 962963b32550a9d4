package backend

import (
	"net/url"
)

// Endpoint paths of the PMS backend. IDs are path-escaped by the helpers.
const (
	pathDriveGet       = "/drive/get/"
	pathDriveAdd       = "/drive/add"
	pathDriveUpdate    = "/drive/update/"
	pathDriveDelete    = "/drive/delete/"
	pathDrivePublish   = "/drive/publish/"
	pathDCGetByDrive   = "/drive_company/get/drive/"
	pathDCAdd          = "/drive_company/add"
	pathDCDelByDrive   = "/drive_company/delete/drive/"
	pathDCDelByCompany = "/drive_company/delete/company/"
	pathCompanyGet     = "/company/get"
	pathCompanyAdd     = "/company/add"
	pathCompanyUpdate  = "/company/update/"
	pathJobGetByDrive  = "/job/get/drive/"
	pathJobAdd         = "/job/add/"
	pathJobUpdate      = "/job/update/"
	pathJobDelete      = "/job/delete/"
	pathJobDelByDrive  = "/job/delete/drive/"
	pathJobDelByDC     = "/job/delete/drivecompany/"
	pathReqGetByJob    = "/requirements/get/job/"
	pathReqAdd         = "/requirements/add/"
	pathReqUpdate      = "/requirements/update/"
	pathJobPrefix      = "/job/"
	pathEligibleSuffix = "/eligible-students"
	pathStudentGet     = "/student/get"
	pathPerformanceGet = "/student-performance/get"
)

func withID(prefix string, ids ...string) string {
	p := prefix
	for i, id := range ids {
		if i > 0 {
			p += "/"
		}
		p += url.PathEscape(id)
	}
	return p
}
