// Package connectapi serves pending approval requests over Connect so a
// remote approver can answer them. Messages are protobuf well-known types
// (structpb, wrapperspb, emptypb); no generated code is needed.
//
//	ApprovalService/Pending(google.protobuf.Empty) returns (google.protobuf.ListValue)
//	ApprovalService/Answer(google.protobuf.Struct{id, approved}) returns (google.protobuf.BoolValue)
package connectapi
