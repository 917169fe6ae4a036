// Package main hosts the lemmekk CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once per invocation, builds the
// structured logger, and hands work to the internal packages: planning runs
// internal/extract, token management goes through internal/tokens, and doctor
// reports internal/preflight results. Commands that must work without a valid
// configuration (config init, signatures) opt out with the skipConfigLoad
// annotation.
package main
