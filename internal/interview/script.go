package interview

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ratuser/inter-prep-GenAi/internal/schemas"
)

//go:embed scripts.yaml
var defaultScriptsYAML []byte

//go:embed scripts.schema.json
var scriptsSchema string

// PhaseSummary names the terminal stage that follows the last scripted question.
const PhaseSummary = "summary"

// Phase is a contiguous range of stages sharing one instruction template.
type Phase struct {
	Name        string `yaml:"name"`
	From        int    `yaml:"from"`
	To          int    `yaml:"to"`
	Instruction string `yaml:"instruction"`
}

// Script is the ordered phase table of one mode.
type Script struct {
	Mode   Mode    `yaml:"mode"`
	Total  int     `yaml:"total"`
	Phases []Phase `yaml:"phases"`
}

type scriptFile struct {
	Terminal string   `yaml:"terminal"`
	Scripts  []Script `yaml:"scripts"`
}

// Instruction is what the policy hands to the prompt assembler for one stage.
// Template still carries {{.Stage}}, {{.Total}} and {{.Skills}} placeholders.
type Instruction struct {
	Phase    string
	Template string
	Stage    int
	Total    int
	Terminal bool
}

// String renders an instruction for logs.
func (i Instruction) String() string {
	return fmt.Sprintf("%s(%d/%d)", i.Phase, i.Stage, i.Total)
}

// Scripts is the immutable set of interview scripts keyed by mode.
// It is safe for concurrent use.
type Scripts struct {
	terminal string
	byMode   map[Mode]Script
}

// LoadScripts decodes and validates a YAML scripts document.
func LoadScripts(data []byte) (*Scripts, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse interview scripts: %w", err)
	}
	if err := schemas.ValidateDocument("scripts.schema.json", scriptsSchema, raw); err != nil {
		return nil, fmt.Errorf("invalid interview scripts: %w", err)
	}

	var file scriptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode interview scripts: %w", err)
	}

	s := &Scripts{
		terminal: file.Terminal,
		byMode:   make(map[Mode]Script, len(file.Scripts)),
	}
	for _, sc := range file.Scripts {
		if _, dup := s.byMode[sc.Mode]; dup {
			return nil, fmt.Errorf("duplicate script for mode %q", sc.Mode)
		}
		if err := checkCoverage(sc); err != nil {
			return nil, err
		}
		s.byMode[sc.Mode] = sc
	}
	if _, ok := s.byMode[ModeTechnical]; !ok {
		return nil, fmt.Errorf("scripts must define mode %q", ModeTechnical)
	}
	return s, nil
}

// checkCoverage sorts the phases and requires them to tile 1..Total exactly.
func checkCoverage(sc Script) error {
	sort.Slice(sc.Phases, func(i, j int) bool { return sc.Phases[i].From < sc.Phases[j].From })

	next := 1
	for _, p := range sc.Phases {
		if p.From != next {
			return fmt.Errorf("script %q: phase %q starts at stage %d, want %d", sc.Mode, p.Name, p.From, next)
		}
		if p.To < p.From {
			return fmt.Errorf("script %q: phase %q ends before it starts", sc.Mode, p.Name)
		}
		if p.Name == PhaseSummary {
			return fmt.Errorf("script %q: phase name %q is reserved", sc.Mode, PhaseSummary)
		}
		next = p.To + 1
	}
	if next-1 != sc.Total {
		return fmt.Errorf("script %q: phases cover %d stages, total is %d", sc.Mode, next-1, sc.Total)
	}
	return nil
}

// DefaultScripts loads the embedded scripts.
func DefaultScripts() (*Scripts, error) {
	return LoadScripts(defaultScriptsYAML)
}

// MustDefaultScripts is DefaultScripts that panics on error.
func MustDefaultScripts() *Scripts {
	s, err := DefaultScripts()
	if err != nil {
		panic(fmt.Sprintf("failed to load interview scripts: %v", err))
	}
	return s
}

// Script returns the script for mode, falling back to the technical script.
func (s *Scripts) Script(mode Mode) Script {
	if sc, ok := s.byMode[mode]; ok {
		return sc
	}
	return s.byMode[ModeTechnical]
}

// Modes lists the scripted modes in sorted order.
func (s *Scripts) Modes() []Mode {
	modes := make([]Mode, 0, len(s.byMode))
	for m := range s.byMode {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// Total is the number of scripted questions for mode.
func (s *Scripts) Total(mode Mode) int {
	return s.Script(mode).Total
}

// IsComplete reports whether stage is at or past the terminal stage. Once true
// it stays true for every larger stage.
func (s *Scripts) IsComplete(stage int, mode Mode) bool {
	return stage >= s.Total(mode)+1
}

// Policy maps a stage index and mode to an instruction. It is total: stages
// below 1 are treated as 1 and every stage past the script returns the
// terminal summary instruction.
func (s *Scripts) Policy(stage int, mode Mode) Instruction {
	sc := s.Script(mode)
	if stage < 1 {
		stage = 1
	}

	if stage > sc.Total {
		return Instruction{
			Phase:    PhaseSummary,
			Template: s.terminal,
			Stage:    stage,
			Total:    sc.Total,
			Terminal: true,
		}
	}

	for _, p := range sc.Phases {
		if stage >= p.From && stage <= p.To {
			return Instruction{
				Phase:    p.Name,
				Template: p.Instruction,
				Stage:    stage,
				Total:    sc.Total,
			}
		}
	}

	// checkCoverage guarantees a phase for every stage in 1..Total.
	panic(fmt.Sprintf("no phase for stage %d in script %q", stage, sc.Mode))
}

// StageIndex is the 1-based index of the question about to be asked: the
// number of interviewer turns in history plus one.
func StageIndex(history []Turn) int {
	n := 0
	for _, t := range history {
		if t.Role == RoleInterviewer {
			n++
		}
	}
	return n + 1
}
