// Package hitl asks a human to approve or reject a contract decision.
//
// A Gateway owns the approval policy: one outstanding request at a time, a
// hard timeout that fails closed, and observer events for every request. The
// question itself travels through a Transport:
//
//   - ConsoleTransport prompts on a reader/writer pair (stdin/stdout in the CLI)
//   - CallbackTransport parks requests until the host answers them, and
//     backs the Connect approval service in hitl/connectapi
//   - AutoTransport answers every request with a fixed value
//
// Usage:
//
//	gw := hitl.NewGateway(hitl.NewConsoleTransport(os.Stdin, os.Stdout), cfg, observer)
//	approved, err := gw.Request(ctx, hitl.FinalApproval, c, risk, "Approve the negotiated contract?")
//
// A timeout yields (false, nil). Cancellation of ctx yields (false, ctx.Err()).
package hitl
