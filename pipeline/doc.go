// Package pipeline defines the contract-review stages and wires them into a
// graph for the orchestrate engine.
//
//	analyze -> fan-out {review-legal, review-finance, review-procurement}
//	fan-in -> aggregate
//	aggregate: score <= 30       -> auto-approve
//	           31 <= score <= 70 -> negotiation-setup -> propose <-> evaluate
//	           score > 70        -> reject-confirmation
//	evaluate:  done, score <= 30 -> final-approval
//	           done, score > 30  -> escalation
//
// Every terminal stage produces a contract.FinalDecision. Reviewer and
// proposer failures fall back to fixed values; approval timeouts resolve to
// "not approved".
//
// Build the graph from a capability set and run it:
//
//	g, err := pipeline.Build(pipeline.Capabilities{
//	    Reviewers: agent.RuleRegistry(),
//	    Proposer:  agent.RuleProposer{},
//	    Approvals: gateway,
//	})
//	eng, err := engine.New(g, config.DefaultGraphConfig(pipeline.GraphName))
//	result, err := eng.Run(ctx, c, sink)
package pipeline
