// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package guardrail enforces the counsellor's topic boundaries.
//
// It has two halves, both pure functions of a Policy value: a system-prompt
// renderer that embeds the lead's profile, retrieved knowledge snippets and
// an explicit allow/deny topic policy, and a response classifier that checks
// a completed reply against cheap keyword heuristics.
//
// The keyword lists are data, not logic: callers can swap in a different
// Policy without touching this package.
package guardrail

// TopicCategory is a named topic area with example questions, rendered into
// the system prompt so the model can see concrete boundaries.
type TopicCategory struct {
	Name     string
	Examples []string
}

// CompanyInfo is the static contact block embedded in every system prompt.
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Website string
}

// Policy holds everything the prompt renderer and response classifier need.
//
// # Fields
//
//   - AllowedTopics / BlockedTopics: Rendered into the system prompt as
//     explicit boundaries with example questions.
//   - RedirectMessage: The canned reply the model must reproduce verbatim
//     when refusing, and the text persisted in place of an off-topic reply.
//   - RefusalIndicators: Phrases whose presence marks a reply as a correct
//     self-refusal (case-insensitive substring match).
//   - OnTopicIndicators: Keywords at least one of which must appear in a
//     reply for it to count as on-topic.
//   - MinResponseLength: Replies shorter than this (and not refusals) are
//     treated as incomplete.
type Policy struct {
	AllowedTopics     []TopicCategory
	BlockedTopics     []TopicCategory
	RedirectMessage   string
	RefusalIndicators []string
	OnTopicIndicators []string
	MinResponseLength int
	Company           CompanyInfo
}

// topicSuggestions is the body of the canned redirect message.
const topicSuggestions = `I can only help with questions about:

**Studying Abroad**
   - Universities and programs in different countries
   - Admission requirements and application process
   - Choosing the right country and university

**Visa & Immigration**
   - Student visa application process
   - Required documentation
   - Embassy procedures

**Financial Planning**
   - Scholarships and financial aid
   - Education loans and funding options
   - Cost of living and tuition fees

**Prime Edutech Services**
   - How we help students study abroad
   - Our consultancy services
   - Free counselling sessions

Could you rephrase your question to focus on these topics?`

// DefaultRedirectMessage is the canned reply for off-topic requests.
const DefaultRedirectMessage = "I'm specifically designed to help with study abroad and education consultancy questions.\n\n" + topicSuggestions

// DefaultPolicy returns the production topic policy for Prime Edutech.
func DefaultPolicy() Policy {
	return Policy{
		AllowedTopics: []TopicCategory{
			{
				Name: "Study abroad logistics",
				Examples: []string{
					"What are the best universities for engineering in Canada?",
					"How much does it cost to study in Australia?",
				},
			},
			{
				Name: "Visa and immigration",
				Examples: []string{
					"What documents do I need for a UK student visa?",
					"How does Prime Edutech help with visa applications?",
				},
			},
			{
				Name: "Financial planning and scholarships",
				Examples: []string{
					"What are the scholarship options for Indian students?",
				},
			},
			{
				Name: "Admission requirements",
				Examples: []string{
					"What are the admission requirements for MBA programs?",
					"What IELTS score do I need for a Masters in Germany?",
				},
			},
			{
				Name: "Career prospects after study",
				Examples: []string{
					"What are the post-study work options in Canada?",
				},
			},
			{
				Name: "Prime Edutech consultancy services",
				Examples: []string{
					"How do I book a free counselling session?",
				},
			},
		},
		BlockedTopics: []TopicCategory{
			{
				Name: "General academic tutoring",
				Examples: []string{
					"Explain photosynthesis to me",
					"What is the quadratic formula?",
				},
			},
			{
				Name: "Off-topic entertainment, news and programming",
				Examples: []string{
					"Tell me a joke",
					"Who won the cricket match?",
					"How do I code in Python?",
					"What's the weather like today?",
				},
			},
		},
		RedirectMessage: DefaultRedirectMessage,
		RefusalIndicators: []string{
			"I can only help",
			"I'm designed to",
			"I specialize in",
			"I focus on",
			"study abroad",
			"education consultancy",
			"outside my scope",
			"not related to",
			"rephrase your question",
		},
		OnTopicIndicators: []string{
			"university", "universities", "college",
			"study", "abroad", "international",
			"visa", "admission", "application",
			"scholarship", "program", "course",
			"country", "prime edutech",
		},
		MinResponseLength: 50,
		Company: CompanyInfo{
			Name:    "Prime Edutech",
			Address: "H-Square, Office no.-503, 5th floor, Beside Amrawati Complex, Circular Road, Lalpur, Ranchi-834001 Jharkhand",
			Phone:   "+91 8797444844",
			Website: "primeedutech.com",
		},
	}
}
