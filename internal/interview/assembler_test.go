package interview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratuser/inter-prep-GenAi/internal/llm"
)

func testProfile() *Profile {
	return &Profile{
		TargetRole:      "Backend Engineer",
		TargetCompany:   "Acme",
		ExperienceLevel: "3 years",
		Mode:            ModeTechnical,
		Skills:          []string{"Go", "PostgreSQL", "Redis"},
		Status:          StatusAnalysed,
	}
}

func transcript(n int) []Turn {
	turns := make([]Turn, 0, n)
	for i := 0; i < n; i++ {
		role := RoleInterviewer
		if i%2 == 1 {
			role = RoleCandidate
		}
		turns = append(turns, Turn{Role: role, Content: fmt.Sprintf("turn-%d", i)})
	}
	return turns
}

func TestAssemble_Order(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)

	history := transcript(4)
	msgs := a.Assemble(AssembleInput{
		Profile:     testProfile(),
		Instruction: MustDefaultScripts().Policy(3, ModeTechnical),
		History:     history,
		Message:     "my answer",
		SessionTag:  "TAG123",
		Window:      8,
	})

	require.Len(t, msgs, 6)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "turn-0"}, msgs[1])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "turn-1"}, msgs[2])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "turn-2"}, msgs[3])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "turn-3"}, msgs[4])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "my answer"}, msgs[5])

	for _, m := range msgs[1:] {
		assert.NotEqual(t, llm.RoleSystem, m.Role, "exactly one system message")
	}
}

func TestAssemble_SystemPrompt(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)

	msgs := a.Assemble(AssembleInput{
		Profile:     testProfile(),
		Instruction: MustDefaultScripts().Policy(2, ModeTechnical),
		SessionTag:  "01HZXTAG",
		Window:      8,
	})
	system := msgs[0].Content

	assert.Contains(t, system, "TECHNICAL interview for Backend Engineer at Acme")
	assert.Contains(t, system, "Candidate: 3 years experience. Skills: Go, PostgreSQL, Redis.")
	assert.Contains(t, system, "Session ID: 01HZXTAG")
	assert.Contains(t, system, "This is question 2 of 9.")
	assert.Contains(t, system, "skills: Go, PostgreSQL, Redis.")
	assert.Contains(t, system, "Ask ONE question at a time")
	assert.Contains(t, system, "switch to another skill")
	assert.NotContains(t, system, "{{.")
}

func TestAssemble_NonTechnicalRule(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)

	p := testProfile()
	p.Mode = ModeNonTechnical
	p.Skills = nil

	msgs := a.Assemble(AssembleInput{
		Profile:     p,
		Instruction: MustDefaultScripts().Policy(1, ModeNonTechnical),
	})
	system := msgs[0].Content

	assert.Contains(t, system, "NON-TECHNICAL behavioral interview")
	assert.Contains(t, system, "Only behavioral/soft-skill questions. No coding.")
	assert.Contains(t, system, "Skills: N/A.")
	assert.Contains(t, system, "This is question 1 of 8.")
}

func TestAssemble_EmptyMessageUsesOpener(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)

	for _, msg := range []string{"", "   ", "\n\t"} {
		msgs := a.Assemble(AssembleInput{
			Profile:     testProfile(),
			Instruction: MustDefaultScripts().Policy(1, ModeTechnical),
			Message:     msg,
		})
		last := msgs[len(msgs)-1]
		assert.Equal(t, llm.RoleUser, last.Role)
		assert.Equal(t, "Start the interview.", last.Content)
	}
}

func TestAssemble_WindowTruncation(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)

	history := transcript(13)
	msgs := a.Assemble(AssembleInput{
		Profile:     testProfile(),
		Instruction: MustDefaultScripts().Policy(7, ModeTechnical),
		History:     history,
		Message:     "answer",
		Window:      8,
	})

	require.Len(t, msgs, 1+8+1)
	for i, m := range msgs[1:9] {
		assert.Equal(t, fmt.Sprintf("turn-%d", 5+i), m.Content)
	}
	assert.Equal(t, "answer", msgs[9].Content)
}

func TestAssemble_DeterministicForSameTag(t *testing.T) {
	a, err := NewAssembler()
	require.NoError(t, err)

	in := AssembleInput{
		Profile:     testProfile(),
		Instruction: MustDefaultScripts().Policy(5, ModeTechnical),
		History:     transcript(9),
		Message:     "x",
		SessionTag:  "same",
		Window:      8,
	}
	assert.Equal(t, a.Assemble(in), a.Assemble(in))
}

func TestWindowHistory(t *testing.T) {
	history := transcript(5)

	tests := []struct {
		name  string
		n     int
		first string
		len   int
	}{
		{"shorter than window", 8, "turn-0", 5},
		{"equal to window", 5, "turn-0", 5},
		{"longer than window", 2, "turn-3", 2},
		{"zero window", 0, "", 0},
		{"negative window", -1, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowHistory(history, tt.n)
			require.Len(t, got, tt.len)
			if tt.len > 0 {
				assert.Equal(t, tt.first, got[0].Content)
				assert.Equal(t, "turn-4", got[len(got)-1].Content)
			}
		})
	}
}

func TestWindowHistory_DoesNotAlias(t *testing.T) {
	history := transcript(3)
	got := WindowHistory(history, 8)
	got[0].Content = "changed"
	assert.Equal(t, "turn-0", history[0].Content)
}

func TestSkillsSummary(t *testing.T) {
	skills := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		skills = append(skills, fmt.Sprintf("s%d", i))
	}
	p := &Profile{Skills: append([]string{" ", ""}, skills...)}

	assert.Equal(t, "s0, s1, s2, s3, s4, s5, s6, s7, s8, s9, s10, s11", p.SkillsSummary())
	assert.Equal(t, "N/A", (&Profile{}).SkillsSummary())
}
