package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/taskpilot/taskpilot/triage"
)

func TestSingleFunctionCallNoCandidates(t *testing.T) {
	_, err := singleFunctionCall(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, triage.ErrNoResponse)
}

func TestSingleFunctionCallCandidateWithoutCall(t *testing.T) {
	// A candidate that carries no function call is a refusal to decide,
	// not a missing response, whatever shape the candidate takes.
	cases := map[string]*genai.GenerateContentResponse{
		"nil content": {
			Candidates: []*genai.Candidate{{Content: nil}},
		},
		"empty parts": {
			Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
		},
		"text only": {
			Candidates: []*genai.Candidate{{Content: &genai.Content{
				Parts: []*genai.Part{{Text: "I cannot decide."}},
			}}},
		},
	}
	for name, resp := range cases {
		_, err := singleFunctionCall(resp)
		assert.ErrorIs(t, err, triage.ErrNoDecision, name)
	}
}

func TestSingleFunctionCallReturnsFirstCall(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{
			Parts: []*genai.Part{
				{Text: "calling the tool"},
				{FunctionCall: &genai.FunctionCall{Name: actionNoop, Args: map[string]any{"confirmed": true}}},
			},
		}}},
	}
	call, err := singleFunctionCall(resp)
	require.NoError(t, err)
	assert.Equal(t, actionNoop, call.Name)
}
