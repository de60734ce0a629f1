// Package dbm_sdk bootstraps a DBM client from the environment. With
// DBM_RUNTIME_MODE=grpc it connects to DBM_ADDRESS; with mock it starts an
// in-memory server inside the process, optionally seeded from
// DBM_MOCK_SEED. The default, auto, picks grpc when DBM_ADDRESS is set and
// mock otherwise. Both modes return the same *dbm.RemoteDBM type.
package dbm_sdk
