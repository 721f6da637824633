// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package guardrail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
)

func testPolicyLead() *datatypes.Lead {
	return &datatypes.Lead{
		Name:           "Priya Singh",
		Email:          "priya@example.com",
		Phone:          "+91 9876543210",
		Countries:      []string{"UK", "Ireland"},
		FieldOfStudy:   "Data Science",
		ProgramOfStudy: "Masters",
		Budget:         40000,
		LookingFor:     "scholarships",
	}
}

func TestClassifyResponse_RefusalPhraseAlwaysValid(t *testing.T) {
	p := DefaultPolicy()

	// Short AND off-topic, but the refusal phrase wins.
	res := p.ClassifyResponse("I can only help with study abroad questions.")
	assert.True(t, res.Valid)
	assert.Empty(t, res.Reason)

	// Case-insensitive match.
	res = p.ClassifyResponse("i CAN ONLY HELP with that.")
	assert.True(t, res.Valid)
}

func TestClassifyResponse_TooShort(t *testing.T) {
	p := DefaultPolicy()

	res := p.ClassifyResponse("Sure thing!")
	require.False(t, res.Valid)
	assert.Contains(t, res.Reason, "too short")
}

func TestClassifyResponse_OffTopicKeywords(t *testing.T) {
	p := DefaultPolicy()

	pasta := "To cook a great carbonara, whisk eggs with pecorino and black pepper, " +
		"fry guanciale until crisp, then toss everything with hot spaghetti off the heat " +
		"so the sauce stays silky and never scrambles."
	require.GreaterOrEqual(t, len(pasta), p.MinResponseLength)

	res := p.ClassifyResponse(pasta)
	require.False(t, res.Valid)
	assert.Contains(t, res.Reason, "on-topic")
}

func TestClassifyResponse_OnTopicKeywords(t *testing.T) {
	p := DefaultPolicy()

	res := p.ClassifyResponse("The University of Manchester offers strong Data Science " +
		"programmes, and the student visa process for the UK typically takes three weeks " +
		"once your CAS has been issued.")
	assert.True(t, res.Valid)
}

func TestRenderSystemPrompt_EmbedsProfile(t *testing.T) {
	p := DefaultPolicy()
	prompt := p.RenderSystemPrompt(testPolicyLead(), nil)

	assert.Contains(t, prompt, "Priya Singh")
	assert.Contains(t, prompt, "priya@example.com")
	assert.Contains(t, prompt, "UK, Ireland")
	assert.Contains(t, prompt, "Data Science")
	assert.Contains(t, prompt, "$40000")
	assert.Contains(t, prompt, "scholarships")
	assert.Contains(t, prompt, p.Company.Address)
	assert.Contains(t, prompt, p.Company.Phone)
}

func TestRenderSystemPrompt_NoContextSentinel(t *testing.T) {
	p := DefaultPolicy()
	prompt := p.RenderSystemPrompt(testPolicyLead(), nil)
	assert.Contains(t, prompt, "No specific knowledge base documents found")
}

func TestRenderSystemPrompt_NumbersSnippets(t *testing.T) {
	p := DefaultPolicy()
	prompt := p.RenderSystemPrompt(testPolicyLead(), []string{
		"**Visa guide**\nUK student visa steps (Relevance: 91.2%)",
		"**Fees**\nTuition ranges (Relevance: 84.0%)",
	})
	assert.Contains(t, prompt, "1. **Visa guide**")
	assert.Contains(t, prompt, "2. **Fees**")
	assert.NotContains(t, prompt, "No specific knowledge base documents found")
}

func TestRenderSystemPrompt_EmbedsTopicPolicy(t *testing.T) {
	p := DefaultPolicy()
	prompt := p.RenderSystemPrompt(testPolicyLead(), nil)

	for _, topic := range p.AllowedTopics {
		assert.Contains(t, prompt, topic.Name)
	}
	for _, topic := range p.BlockedTopics {
		assert.Contains(t, prompt, topic.Name)
	}
	assert.Contains(t, prompt, "Tell me a joke")
	assert.True(t, strings.Contains(prompt, p.RedirectMessage),
		"redirect message must appear verbatim")
}
