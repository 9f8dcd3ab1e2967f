// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Command distforge packages a project's release artifacts and
// publishes only the ones whose content actually changed. See
// "distforge --help" for the command surface.
package main
