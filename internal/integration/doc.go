// Package integration provides integration tests for blocketa.
//
// These tests run the tracker against a real EVM node. They are skipped
// when no node is reachable, making them safe to include in CI.
//
// # Running Integration Tests
//
//	RPC_URL=https://bsc-dataseed.binance.org/ go test -tags=integration ./internal/integration/...
//
// # Environment Variables
//
//   - RPC_URL: RPC endpoint URL (default: http://localhost:8545)
package integration
