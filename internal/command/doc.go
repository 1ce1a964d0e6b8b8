// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package command defines the CLI command set for mealctl. It wires flags,
// validators, actions, and the cache/client plumbing for subcommands.
package command
