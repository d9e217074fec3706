package pipeline

// Shared state locations written and read by the stages.
const (
	ScopeOriginalContract = "original-contract"
	KeyOriginalContract   = "original_contract"

	ScopeOriginalRisk = "original-risk"
	KeyOriginalRisk   = "original_risk"

	ScopeNegotiation = "negotiation"
	KeyIteration     = "iteration"
	KeyLatestRisk    = "latest_risk"

	ScopeNegotiationHistory = "negotiation-history"
	KeyProposals            = "proposals"

	ScopeEvaluationHistory = "evaluation-history"
	KeyEvaluations         = "evaluations"
)
