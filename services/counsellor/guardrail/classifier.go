// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package guardrail

import "strings"

// =============================================================================
// Response Classifier
// =============================================================================

// ValidationResult is the classifier's verdict on a completed reply.
type ValidationResult struct {
	Valid  bool
	Reason string
}

// ClassifyResponse checks a completed model reply against the topic policy.
//
// # Description
//
//	Heuristic keyword matching, not semantic classification. First match
//	wins, in order:
//
//	1. Contains a refusal phrase -> valid (the model self-refused).
//	2. Shorter than MinResponseLength -> invalid, likely incomplete.
//	3. Contains no on-topic keyword -> invalid.
//	4. Otherwise -> valid.
//
//	All matching is case-insensitive substring search. False positives and
//	negatives are an accepted tradeoff against a second model call.
//
// # Inputs
//
//   - responseText: The full accumulated reply.
//
// # Outputs
//
//   - ValidationResult: Valid flag, with a Reason when invalid.
func (p Policy) ClassifyResponse(responseText string) ValidationResult {
	lower := strings.ToLower(responseText)

	for _, phrase := range p.RefusalIndicators {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return ValidationResult{Valid: true}
		}
	}

	if len(responseText) < p.MinResponseLength {
		return ValidationResult{Valid: false, Reason: "response too short, likely incomplete"}
	}

	for _, keyword := range p.OnTopicIndicators {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return ValidationResult{Valid: true}
		}
	}
	return ValidationResult{Valid: false, Reason: "response lacks on-topic keywords"}
}
