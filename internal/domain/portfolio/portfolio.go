package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DocumentKey is the fixed key of the singleton portfolio document.
// Every deployment reads and writes exactly one document.
const DocumentKey = "main"

var (
	ErrNotFound         = errors.New("portfolio document not found")
	ErrRevisionConflict = errors.New("portfolio revision conflict")
	ErrTitleRequired    = errors.New("title is required")
	ErrDescriptionEmpty = errors.New("description is required")
	ErrInstitutionEmpty = errors.New("institution is required")
	ErrDegreeEmpty      = errors.New("degree is required")
	ErrYearEmpty        = errors.New("year is required")
	ErrSkillEmpty       = errors.New("skill must not be empty")
)

type PersonalInfo struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Bio          string `json:"bio"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	ProfileImage string `json:"profileImage"`
}

type Project struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	Link         string   `json:"link"`
	Technologies []string `json:"technologies"`
}

func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(p.Description) == "" {
		return ErrDescriptionEmpty
	}
	return nil
}

type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        string `json:"year"`
	Description string `json:"description"`
}

func (e *Education) Validate() error {
	if strings.TrimSpace(e.Institution) == "" {
		return ErrInstitutionEmpty
	}
	if strings.TrimSpace(e.Degree) == "" {
		return ErrDegreeEmpty
	}
	if strings.TrimSpace(e.Year) == "" {
		return ErrYearEmpty
	}
	return nil
}

// Data is the singleton portfolio aggregate. Sequence order is display order.
type Data struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Projects     []Project    `json:"projects"`
	Education    []Education  `json:"education"`
	Skills       []string     `json:"skills"`
}

// Defaults returns the seed aggregate used when no document exists yet.
// It is never written back implicitly.
func Defaults() Data {
	return Data{
		PersonalInfo: PersonalInfo{
			Name:     "Your Name",
			Title:    "Full Stack Developer",
			Bio:      "Passionate developer creating amazing web experiences.",
			Email:    "your.email@example.com",
			Phone:    "+1234567890",
			Location: "Your City, Country",
		},
		Projects:  []Project{},
		Education: []Education{},
		Skills:    []string{},
	}
}

// FromDocument combines a stored document with defaults: a top-level key
// present in the document replaces the default wholesale, a missing key keeps
// the default. This covers documents written by earlier schema versions.
func FromDocument(raw []byte) (Data, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return Data{}, fmt.Errorf("malformed portfolio document: %w", err)
	}

	data := Defaults()
	if v, ok := keys["personalInfo"]; ok {
		if err := json.Unmarshal(v, &data.PersonalInfo); err != nil {
			return Data{}, fmt.Errorf("malformed personalInfo: %w", err)
		}
	}
	if v, ok := keys["projects"]; ok {
		if err := json.Unmarshal(v, &data.Projects); err != nil {
			return Data{}, fmt.Errorf("malformed projects: %w", err)
		}
	}
	if v, ok := keys["education"]; ok {
		if err := json.Unmarshal(v, &data.Education); err != nil {
			return Data{}, fmt.Errorf("malformed education: %w", err)
		}
	}
	if v, ok := keys["skills"]; ok {
		if err := json.Unmarshal(v, &data.Skills); err != nil {
			return Data{}, fmt.Errorf("malformed skills: %w", err)
		}
	}
	return data, nil
}

// Patch is a sparse update naming only the top-level keys being changed.
// A nil field is absent; a non-nil slice pointer replaces the whole sequence.
type Patch struct {
	PersonalInfo *PersonalInfo `json:"personalInfo,omitempty"`
	Projects     *[]Project    `json:"projects,omitempty"`
	Education    *[]Education  `json:"education,omitempty"`
	Skills       *[]string     `json:"skills,omitempty"`
}

func (p Patch) IsZero() bool {
	return p.PersonalInfo == nil && p.Projects == nil && p.Education == nil && p.Skills == nil
}

// Scopes lists the top-level keys the patch touches.
func (p Patch) Scopes() []string {
	scopes := make([]string, 0, 4)
	if p.PersonalInfo != nil {
		scopes = append(scopes, "personalInfo")
	}
	if p.Projects != nil {
		scopes = append(scopes, "projects")
	}
	if p.Education != nil {
		scopes = append(scopes, "education")
	}
	if p.Skills != nil {
		scopes = append(scopes, "skills")
	}
	return scopes
}

// Apply merges the patch into a copy of d at top-level key granularity.
// A patch supplying projects replaces the entire projects sequence.
func (p Patch) Apply(d Data) Data {
	if p.PersonalInfo != nil {
		d.PersonalInfo = *p.PersonalInfo
	}
	if p.Projects != nil {
		d.Projects = *p.Projects
	}
	if p.Education != nil {
		d.Education = *p.Education
	}
	if p.Skills != nil {
		d.Skills = *p.Skills
	}
	return d
}

// NewID generates an id for a new project or education entry. Ids are opaque
// strings, assigned once and never regenerated on edit.
func NewID() string {
	return uuid.NewString()
}

// Store is the document-store client contract: one named document holding the
// aggregate as JSON, a monotonically increasing revision per write.
type Store interface {
	// Get returns the raw document and its revision, or ErrNotFound.
	Get(ctx context.Context) ([]byte, int64, error)
	// SetMerge writes data with merge semantics: top-level keys of data
	// replace stored keys, stored keys absent from data survive. The write
	// only applies when the stored revision still equals expectedRevision;
	// otherwise ErrRevisionConflict is returned. expectedRevision 0 means
	// the document must not exist yet.
	SetMerge(ctx context.Context, data []byte, expectedRevision int64) (int64, error)
}
