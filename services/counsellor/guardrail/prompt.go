// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package guardrail

import (
	"fmt"
	"strings"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
)

// =============================================================================
// System Prompt Renderer
// =============================================================================

// RenderSystemPrompt builds the counsellor system prompt for one request.
//
// # Description
//
//	Pure function of the lead and the retrieved knowledge snippets. The
//	prompt embeds the student's profile, the knowledge context (or an
//	explicit "no documents found" sentinel when empty), the allow/deny
//	topic policy with example questions, the verbatim redirect message,
//	and the company contact block.
//
// # Inputs
//
//   - lead: The resolved lead. Must not be nil.
//   - knowledgeContext: Formatted snippets from the knowledge base search,
//     best first. May be empty.
//
// # Outputs
//
//   - string: The complete system prompt.
func (p Policy) RenderSystemPrompt(lead *datatypes.Lead, knowledgeContext []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert AI Education Counsellor for %s, a consultancy helping students study abroad.\n\n", p.Company.Name)

	b.WriteString("**Student Information:**\n")
	fmt.Fprintf(&b, "- Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "- Email: %s\n", lead.Email)
	fmt.Fprintf(&b, "- Phone: %s\n", lead.Phone)
	fmt.Fprintf(&b, "- Interested Countries: %s\n", strings.Join(lead.Countries, ", "))
	fmt.Fprintf(&b, "- Field of Study: %s\n", lead.FieldOfStudy)
	fmt.Fprintf(&b, "- Program of Study: %s\n", lead.ProgramOfStudy)
	fmt.Fprintf(&b, "- Budget: $%.0f\n", lead.Budget)
	fmt.Fprintf(&b, "- Looking For: %s\n\n", lead.LookingFor)

	b.WriteString("**Knowledge Base Context:**\n")
	if len(knowledgeContext) == 0 {
		b.WriteString("No specific knowledge base documents found for this query.\n\n")
	} else {
		for i, ctx := range knowledgeContext {
			fmt.Fprintf(&b, "%d. %s\n\n", i+1, ctx)
		}
	}

	b.WriteString("**Topics You Help With:**\n")
	for _, topic := range p.AllowedTopics {
		fmt.Fprintf(&b, "- %s (e.g. %s)\n", topic.Name, quoteJoin(topic.Examples))
	}
	b.WriteString("\n**Topics You Must Refuse:**\n")
	for _, topic := range p.BlockedTopics {
		fmt.Fprintf(&b, "- %s (e.g. %s)\n", topic.Name, quoteJoin(topic.Examples))
	}

	b.WriteString("\n**Your Role & Guidelines:**\n")
	b.WriteString("1. You are a professional education counsellor specializing in international education\n")
	b.WriteString("2. Use the student's information above to provide personalized advice\n")
	b.WriteString("3. Reference the knowledge base context when relevant to provide accurate information\n")
	b.WriteString("4. Focus on: university selection, admission requirements, visa processes, scholarships, career prospects\n")
	b.WriteString("5. Always maintain a helpful, encouraging, and professional tone\n")
	b.WriteString("6. If asked about a topic you must refuse, reply with exactly the redirect message below\n")
	b.WriteString("7. Never make up information - if you're unsure, say so and offer to research further\n")
	b.WriteString("8. Consider the student's budget when making recommendations\n")
	b.WriteString("9. Provide actionable next steps whenever possible\n")
	b.WriteString("10. Be empathetic and understanding of the stress of studying abroad\n\n")

	b.WriteString("**Redirect Message (reproduce verbatim when refusing):**\n")
	b.WriteString(p.RedirectMessage)
	b.WriteString("\n\n")

	b.WriteString("**Company Information:**\n")
	fmt.Fprintf(&b, "- %s\n", p.Company.Name)
	fmt.Fprintf(&b, "- Location: %s\n", p.Company.Address)
	fmt.Fprintf(&b, "- Phone: %s\n", p.Company.Phone)
	fmt.Fprintf(&b, "- Website: %s\n\n", p.Company.Website)

	fmt.Fprintf(&b, "Remember: Your goal is to guide %s through their study abroad journey with accurate, helpful, and personalized advice.", lead.Name)

	return b.String()
}

func quoteJoin(examples []string) string {
	quoted := make([]string, len(examples))
	for i, e := range examples {
		quoted[i] = fmt.Sprintf("%q", e)
	}
	return strings.Join(quoted, ", ")
}
