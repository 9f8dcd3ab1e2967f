// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package release orchestrates a packaging run: an ordered sequence
// of per-format steps, each building one artifact into a scratch
// directory and handing it to the publisher. Steps the host cannot
// build are skipped; the first step that fails ends the run, since
// later artifacts of the same version would disagree with the ones
// already published.
//
// One coupling crosses step boundaries: the Windows installer embeds
// the portable zip payload, so whenever the zip artifact changed, the
// msi step publishes unconditionally rather than trusting a content
// comparison against a stale payload.
package release
