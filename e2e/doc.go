//go:build e2e

// Package e2e runs the homepage scenarios in a real browser.
//
// These tests are isolated from the standard test suite via build tags.
// They require Chromium (auto-downloaded by Rod if not present; the
// Playwright backend needs `playwright install chromium`) and are intended
// for CI pipelines or explicit local testing.
//
// Running E2E tests:
//
//	go test -tags=e2e ./e2e/...
//
// Running all tests except E2E:
//
//	go test ./...
//
// E2E tests use:
//   - the fixture-site server as a local stand-in for the homepage
//   - browser.Open for the Rod and Playwright sessions
//   - a stub for https://www.discoverireland.ie/* so navigation to the
//     production destination URL never leaves the machine
//
// Test isolation:
// Each test starts its own server on a random port and opens a fresh
// browser per case.
package e2e
