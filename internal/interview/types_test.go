package interview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeTechnical, ParseMode("technical"))
	assert.Equal(t, ModeNonTechnical, ParseMode("non-technical"))
	assert.Equal(t, ModeNonTechnical, ParseMode(" Non-Technical "))
	assert.Equal(t, ModeTechnical, ParseMode(""))
	assert.Equal(t, ModeTechnical, ParseMode("system-design"))
}

func TestTurn_UnmarshalRoles(t *testing.T) {
	var turns []Turn
	err := json.Unmarshal([]byte(`[
		{"role":"ai","content":"q1"},
		{"role":"user","content":"a1"},
		{"role":"interviewer","content":"q2"},
		{"role":"candidate","content":"a2"}
	]`), &turns)
	require.NoError(t, err)

	assert.Equal(t, []Role{RoleInterviewer, RoleCandidate, RoleInterviewer, RoleCandidate},
		[]Role{turns[0].Role, turns[1].Role, turns[2].Role, turns[3].Role})
	assert.Equal(t, 3, StageIndex(turns))
}

func TestTurn_UnknownRole(t *testing.T) {
	var turn Turn
	err := json.Unmarshal([]byte(`{"role":"narrator","content":"x"}`), &turn)
	assert.Error(t, err)
}

func TestProfileReady(t *testing.T) {
	var nilProfile *Profile
	assert.False(t, nilProfile.Ready())
	assert.False(t, (&Profile{Status: StatusUploaded}).Ready())
	assert.True(t, (&Profile{Status: StatusAnalysed}).Ready())
}

func TestCategoryForMode(t *testing.T) {
	assert.Equal(t, CategoryTechnical, CategoryForMode(ModeTechnical))
	assert.Equal(t, CategoryBehavioral, CategoryForMode(ModeNonTechnical))
}
