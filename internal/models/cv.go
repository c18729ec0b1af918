package models

// Validity tracks how far a StructuredCV made it through validation.
type Validity string

const (
	ValidityUnknown           Validity = "unknown"
	ValidityValid             Validity = "valid"
	ValidityUnresolvedDefects Validity = "unresolved_defects"
)

type DefectKind string

const (
	DefectMissing      DefectKind = "missing"
	DefectMalformed    DefectKind = "malformed"
	DefectInconsistent DefectKind = "inconsistent"
)

// ValidationDefect describes one rule violation found in a StructuredCV.
type ValidationDefect struct {
	FieldPath   string     `json:"field_path"`
	Kind        DefectKind `json:"kind"`
	Description string     `json:"description"`
}

type Education struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
}

type Experience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

type Skill struct {
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Proficiency string `json:"proficiency,omitempty"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
}

type Language struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency"`
}

// StructuredCV is the AI-derived projection of a raw CV into the
// candidate record shape. Each correction attempt produces a fresh
// instance; versions are replaced whole, never merged.
type StructuredCV struct {
	FullName  string `json:"full_name"`
	EmailAddr string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Summary   string `json:"summary,omitempty"`

	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Skills         []Skill         `json:"skills"`
	Certifications []Certification `json:"certifications,omitempty"`
	Languages      []Language      `json:"languages,omitempty"`

	Validity Validity           `json:"validity"`
	Defects  []ValidationDefect `json:"defects,omitempty"`
}

// HasContactMethod reports whether at least one way to reach the
// candidate was extracted.
func (cv *StructuredCV) HasContactMethod() bool {
	return cv.EmailAddr != "" || cv.Phone != "" || cv.LinkedIn != ""
}
