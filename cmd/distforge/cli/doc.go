// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the distforge binary:
// a tree of Command values dispatched by positional arguments, with
// pflag flag parsing, structured help output, and exit-code plumbing.
package cli
