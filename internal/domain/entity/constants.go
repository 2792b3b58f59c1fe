package entity

// Countries
const (
	CountryIndia Country = "india"
	CountryJapan Country = "japan"
)

// DateLayout is the storage format of invoice dates
const DateLayout = "2006-01-02"

// Email job status constants
const (
	EmailStatusPending = "PENDING"
	EmailStatusSent    = "SENT"
	EmailStatusFailed  = "FAILED"
)

// NotApplicable marks a missing employee name in imported data
const NotApplicable = "N/A"
