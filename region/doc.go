// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package region implements an algebra over sets of disjoint integer
// rectangles.
//
// A Region is an unordered collection of pairwise non-overlapping
// rectangles with inclusive bounds. It supports union, intersection,
// subtraction, symmetric difference and translation. All regions of one
// compositor allocate their rectangles from a shared Pool, an index based
// arena with a free stack, so that steady-state region churn does not touch
// the Go allocator.
//
//	pool := region.NewPool()
//	r, _ := region.NewRect(pool, region.R(0, 0, 639, 479))
//	defer r.Free()
//	_ = r.SubRect(region.R(10, 10, 109, 109))
//	r.ForEach(func(rect region.Rect) { fmt.Println(rect) })
//
// Union coalesces a new rectangle with one of the MergeLookback most recently
// inserted rectangles when they share a full edge. MergeRect additionally
// collapses a fragmented region into its bounding box, which keeps dirty
// rectangle lists short at the price of over-coverage.
package region
