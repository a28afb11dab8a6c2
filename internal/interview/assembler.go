package interview

import (
	"strconv"
	"strings"

	"github.com/ratuser/inter-prep-GenAi/internal/llm"
	"github.com/ratuser/inter-prep-GenAi/internal/prompts"
)

// DefaultHistoryWindow is how many trailing transcript turns reach the model.
const DefaultHistoryWindow = 8

// Assembler builds the gateway message list for one turn.
type Assembler struct {
	system     string
	opener     string
	modeLabels map[Mode]string
	modeRules  map[Mode]string
}

// NewAssembler loads the interviewer templates.
func NewAssembler() (*Assembler, error) {
	system, err := prompts.Get(prompts.InterviewFile, "system-prompt")
	if err != nil {
		return nil, err
	}
	opener, err := prompts.Get(prompts.InterviewFile, "default-opener")
	if err != nil {
		return nil, err
	}

	a := &Assembler{
		system:     system,
		opener:     opener,
		modeLabels: make(map[Mode]string),
		modeRules:  make(map[Mode]string),
	}
	for _, mode := range []Mode{ModeTechnical, ModeNonTechnical} {
		label, err := prompts.Get(prompts.InterviewFile, "mode-label-"+string(mode))
		if err != nil {
			return nil, err
		}
		rule, err := prompts.Get(prompts.InterviewFile, "mode-rule-"+string(mode))
		if err != nil {
			return nil, err
		}
		a.modeLabels[mode] = label
		a.modeRules[mode] = rule
	}
	return a, nil
}

// AssembleInput carries everything one prompt is built from.
type AssembleInput struct {
	Profile     *Profile
	Instruction Instruction
	History     []Turn
	Message     string
	// SessionTag is opaque; it only varies the prompt between sessions.
	SessionTag string
	// Window bounds the number of history turns. Negative means zero.
	Window int
}

// Assemble returns the system message, then the windowed history in original
// order, then the new candidate utterance. The output depends only on its
// input, so two calls with the same SessionTag are identical.
func (a *Assembler) Assemble(in AssembleInput) []llm.Message {
	history := WindowHistory(in.History, in.Window)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: a.systemPrompt(in),
	})

	for _, t := range history {
		role := llm.RoleUser
		if t.Role == RoleInterviewer {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Content})
	}

	message := in.Message
	if strings.TrimSpace(message) == "" {
		message = a.opener
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

	return messages
}

func (a *Assembler) systemPrompt(in AssembleInput) string {
	p := in.Profile
	mode := ParseMode(string(p.Mode))
	skills := p.SkillsSummary()

	instruction := prompts.Format(in.Instruction.Template, map[string]string{
		"Stage":  strconv.Itoa(in.Instruction.Stage),
		"Total":  strconv.Itoa(in.Instruction.Total),
		"Skills": skills,
	})

	return prompts.Format(a.system, map[string]string{
		"ModeLabel":     a.modeLabels[mode],
		"ModeRule":      a.modeRules[mode],
		"TargetRole":    p.TargetRole,
		"TargetCompany": p.TargetCompany,
		"Experience":    p.ExperienceLevel,
		"Skills":        skills,
		"SessionTag":    in.SessionTag,
		"Instruction":   instruction,
	})
}

// WindowHistory returns the last n turns of history, dropping the oldest.
// The returned slice never aliases a prefix the caller could append into.
func WindowHistory(history []Turn, n int) []Turn {
	if n < 0 {
		n = 0
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]Turn, len(history))
	copy(out, history)
	return out
}
