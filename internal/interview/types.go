// Package interview implements the interview progression state machine: the
// stage policy tables, prompt assembly, per-turn orchestration against the
// language model gateway and completion recording.
//
// No dialogue state is held between calls. The stage of an interview is
// reconstructed on every turn from the caller-supplied transcript.
package interview

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mode selects the interview script.
type Mode string

// Supported interview modes
const (
	ModeTechnical    Mode = "technical"
	ModeNonTechnical Mode = "non-technical"
)

// ParseMode normalizes a stored interview type. Anything unrecognised is
// treated as technical.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeNonTechnical {
		return ModeNonTechnical
	}
	return ModeTechnical
}

// Status is the resume analysis state of a profile.
type Status string

// Profile statuses
const (
	StatusUploaded  Status = "uploaded"
	StatusAnalysing Status = "analysing"
	StatusAnalysed  Status = "analysed"
)

// Role is the speaker of a transcript turn.
type Role string

// Transcript roles
const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

// UnmarshalJSON accepts the canonical roles plus the "ai"/"user" spellings
// sent by older clients.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	role, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// ParseRole maps a wire role onto a transcript role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "interviewer", "ai", "assistant":
		return RoleInterviewer, nil
	case "candidate", "user":
		return RoleCandidate, nil
	default:
		return "", fmt.Errorf("unknown transcript role %q", s)
	}
}

// Turn is one entry of the chronological, append-only transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// MaxPromptSkills caps how many skills are interpolated into prompts.
const MaxPromptSkills = 12

// Profile is the resume-derived input to the controller. It is read-only here.
type Profile struct {
	UserID          uuid.UUID `json:"userId"`
	TargetRole      string    `json:"targetRole"`
	TargetCompany   string    `json:"targetCompany"`
	ExperienceLevel string    `json:"experience"`
	Mode            Mode      `json:"interviewType"`
	Skills          []string  `json:"skills"`
	Status          Status    `json:"status"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Ready reports whether chat turns may be accepted for this profile.
func (p *Profile) Ready() bool {
	return p != nil && p.Status == StatusAnalysed
}

// SkillsSummary joins at most MaxPromptSkills non-empty skills, or "N/A".
func (p *Profile) SkillsSummary() string {
	if p == nil {
		return "N/A"
	}
	skills := make([]string, 0, MaxPromptSkills)
	for _, s := range p.Skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		skills = append(skills, s)
		if len(skills) == MaxPromptSkills {
			break
		}
	}
	if len(skills) == 0 {
		return "N/A"
	}
	return strings.Join(skills, ", ")
}

// Title is the display title of an interview held against this profile.
func (p *Profile) Title() string {
	return fmt.Sprintf("%s at %s", p.TargetRole, p.TargetCompany)
}

// Category groups completed interviews on the dashboard.
type Category string

// Interview categories
const (
	CategoryTechnical     Category = "technical"
	CategoryBehavioral    Category = "behavioral"
	CategorySystemDesign  Category = "system-design"
	CategoryCommunication Category = "communication"
)

// Categories lists every category in dashboard order.
var Categories = []Category{
	CategoryTechnical,
	CategoryBehavioral,
	CategorySystemDesign,
	CategoryCommunication,
}

// CategoryForMode maps an interview mode to its record category.
func CategoryForMode(m Mode) Category {
	if m == ModeNonTechnical {
		return CategoryBehavioral
	}
	return CategoryTechnical
}

// CompletedInterview is the immutable record written once per finished interview.
type CompletedInterview struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	Title         string    `json:"title"`
	Category      Category  `json:"category"`
	Score         int       `json:"score"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	Text     string
	Stage    int
	Complete bool
	Phase    string
}
