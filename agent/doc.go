// Package agent defines the capabilities the contract-review pipeline calls
// out to, and the policies that keep their failures from aborting a run.
//
// # Capabilities
//
//   - Reviewer: produces a ReviewResult for a contract
//   - NegotiationProposer: proposes amendments and the amended contract
//   - Completer: a plain text-completion capability (typically an LLM)
//
// CompletionReviewer and CompletionProposer adapt a Completer: they build a
// prompt, extract the JSON object from the response and validate it against
// an embedded JSON Schema before decoding. RuleReviewer and RuleProposer are
// deterministic implementations driven by contract fields.
//
// # Specialties
//
// Each Specialty (Legal, Finance, Procurement) carries its own review
// instructions. A Registry maps specialties to reviewers in registration
// order, which is also the order their results are aggregated in.
//
// # Fallbacks
//
// SafeReview and SafePropose never fail. A capability error (or a response
// that cannot be decoded) is reported as a warning event and replaced by
// contract.FallbackReview or contract.FallbackProposal.
package agent
