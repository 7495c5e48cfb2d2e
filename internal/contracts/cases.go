package contracts

import "time"

// Placeholder values used in place of missing categorical data
const (
	NoData  = "No Data"
	Unknown = "Unknown"
)

// Health status values of the line list that close a case
const (
	HealthRecovered = "RECOVERED"
	HealthDied      = "DIED"
)

// OnsetProxy tells which date stood in for a missing onset date
type OnsetProxy string

const (
	OnsetNoProxy  OnsetProxy = "No Proxy"
	OnsetSpecimen OnsetProxy = "DateSpecimen"
	OnsetRepConf  OnsetProxy = "DateRepConf"
)

// RecoverNoProxy marks a record whose recovery date was reported.
// Proxied recoveries carry "<source>+<days>", e.g. "DateOnset+14".
const RecoverNoProxy = "No Proxy"

// CaseRepType classifies a record relative to the latest report date
type CaseRepType string

const (
	RepIncomplete CaseRepType = "Incomplete"
	RepNewCase    CaseRepType = "New Case"
	RepPrevious   CaseRepType = "Previous Case"
)

// CaseStatus is ACTIVE or CLOSED
type CaseStatus string

const (
	StatusActive CaseStatus = "ACTIVE"
	StatusClosed CaseStatus = "CLOSED"
)

// RawCase is one line of the case information CSV, fields as read.
type RawCase struct {
	CaseCode          string
	Age               string
	AgeGroup          string
	Sex               string
	DateSpecimen      string
	DateResultRelease string
	DateRepConf       string
	DateDied          string
	DateRecover       string
	RemovalType       string
	Admitted          string
	RegionRes         string
	ProvRes           string
	CityMunRes        string
	HealthStatus      string
	Quarantined       string
	DateOnset         string
}

// CaseRecord is the enriched case record.
// ⭐ SSOT: read-only once derivation finishes; every chart reads the same slice
//
// Zero time.Time means the date is null. Nil day counts are null.
type CaseRecord struct {
	CaseCode     string
	AgeGroup     string
	Sex          string
	HealthStatus string
	RemovalType  string
	Admitted     string
	Quarantined  string
	RegionRes    string
	ProvRes      string
	CityMunRes   string

	DateSpecimen      time.Time
	DateResultRelease time.Time
	DateRepConf       time.Time
	DateOnset         time.Time
	DateRecover       time.Time
	DateDied          time.Time

	SpecimenToRepConf *int
	SpecimenToRelease *int
	ReleaseToRepConf  *int

	OnsetProxy   OnsetProxy
	RecoverProxy string
	CaseRepType  CaseRepType
	CaseStatus   CaseStatus
	DateClosed   time.Time
	Region       string
}

// CaseColumn names a column of the enriched case table
type CaseColumn string

const (
	ColCaseCode     CaseColumn = "CaseCode"
	ColAgeGroup     CaseColumn = "AgeGroup"
	ColSex          CaseColumn = "Sex"
	ColHealthStatus CaseColumn = "HealthStatus"
	ColRemovalType  CaseColumn = "RemovalType"
	ColAdmitted     CaseColumn = "Admitted"
	ColQuarantined  CaseColumn = "Quarantined"
	ColProvRes      CaseColumn = "ProvRes"
	ColCityMunRes   CaseColumn = "CityMunRes"
	ColRegion       CaseColumn = "Region"
	ColOnsetProxy   CaseColumn = "OnsetProxy"
	ColRecoverProxy CaseColumn = "RecoverProxy"
	ColCaseRepType  CaseColumn = "CaseRepType"
	ColCaseStatus   CaseColumn = "CaseStatus"

	ColDateSpecimen      CaseColumn = "DateSpecimen"
	ColDateResultRelease CaseColumn = "DateResultRelease"
	ColDateRepConf       CaseColumn = "DateRepConf"
	ColDateOnset         CaseColumn = "DateOnset"
	ColDateRecover       CaseColumn = "DateRecover"
	ColDateDied          CaseColumn = "DateDied"
	ColDateClosed        CaseColumn = "DateClosed"

	ColSpecimenToRepConf CaseColumn = "SpecimenToRepConf"
	ColSpecimenToRelease CaseColumn = "SpecimenToRelease"
	ColReleaseToRepConf  CaseColumn = "ReleaseToRepConf"
)

// Category returns a categorical column. Unknown columns return "".
func (r CaseRecord) Category(col CaseColumn) string {
	switch col {
	case ColCaseCode:
		return r.CaseCode
	case ColAgeGroup:
		return r.AgeGroup
	case ColSex:
		return r.Sex
	case ColHealthStatus:
		return r.HealthStatus
	case ColRemovalType:
		return r.RemovalType
	case ColAdmitted:
		return r.Admitted
	case ColQuarantined:
		return r.Quarantined
	case ColProvRes:
		return r.ProvRes
	case ColCityMunRes:
		return r.CityMunRes
	case ColRegion:
		return r.Region
	case ColOnsetProxy:
		return string(r.OnsetProxy)
	case ColRecoverProxy:
		return r.RecoverProxy
	case ColCaseRepType:
		return string(r.CaseRepType)
	case ColCaseStatus:
		return string(r.CaseStatus)
	}
	return ""
}

// Date returns a date column. Unknown columns and nulls return the zero time.
func (r CaseRecord) Date(col CaseColumn) time.Time {
	switch col {
	case ColDateSpecimen:
		return r.DateSpecimen
	case ColDateResultRelease:
		return r.DateResultRelease
	case ColDateRepConf:
		return r.DateRepConf
	case ColDateOnset:
		return r.DateOnset
	case ColDateRecover:
		return r.DateRecover
	case ColDateDied:
		return r.DateDied
	case ColDateClosed:
		return r.DateClosed
	}
	return time.Time{}
}

// Days returns a day-count column and whether it is set.
func (r CaseRecord) Days(col CaseColumn) (int, bool) {
	var p *int
	switch col {
	case ColSpecimenToRepConf:
		p = r.SpecimenToRepConf
	case ColSpecimenToRelease:
		p = r.SpecimenToRelease
	case ColReleaseToRepConf:
		p = r.ReleaseToRepConf
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// IsClosed reports whether the health status closes the case
func IsClosed(healthStatus string) bool {
	return healthStatus == HealthRecovered || healthStatus == HealthDied
}
