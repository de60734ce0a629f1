// Package dbm is a client for remote database managers served over gRPC by
// the tkrzw_rpc.DBMService protocol. RemoteDBM owns one channel and exposes
// the unary operations of the service; Iterator turns the Iterate stream into
// a synchronous cursor; Pipeline and Replicator cover the Stream and
// Replicate calls. Every operation reports its outcome as a *Status instead
// of panicking, and Status.OrDie gives fail-fast callers a panic carrying the
// unchanged status.
package dbm
