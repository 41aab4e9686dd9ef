// Copyright 2025 EURECOM
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sched computes SIB scheduling arithmetic per TS 36.331: which
// (T, n) a SIB is scheduled at according to SIB1's schedInfoList, and the
// next SI-window {start, length} for a given periodicity. Every function
// here is pure: no state, no I/O, wrap-aware TTI arithmetic only.
package sched

// TTIModulus is the SFN·10+subframe wraparound point (1024 frames of 10
// subframes each).
const TTIModulus = 10240

// SchedInfo is the subset of SIB1's schedulingInfoList this package needs:
// for schedInfoList[i], SibMappingInfo lists which (1-based) SIB indices
// are broadcast in that SI message.
type SchedInfo struct {
	SIPeriodicity uint32 // frames: one of {8,16,32,64,128,256,512}
	SibMapping    []uint32
}

// Sib1 is the subset of a decoded SIB1 the scheduling arithmetic needs.
type Sib1 struct {
	SchedInfoList   []SchedInfo
	SIWindowLength  uint32 // subframes: one of {1,2,5,10,15,20,40}
	Sib2Periodicity uint32 // si-Periodicity of schedInfoList[0]; not set or read by this package's functions
}

// PeriodicityAndIndex computes the (T, n) pair a SIB index is scheduled
// at. idx is 0-based (idx==0 is SIB1 itself, idx==1 is SIB2, idx>=2 is
// SIB3 and up). A negative n on return means "not scheduled" — the SIB is
// legitimately absent from this cell's schedInfoList.
func PeriodicityAndIndex(idx uint32, sib1 *Sib1) (t uint32, n int) {
	switch {
	case idx == 0:
		// SIB1 is always self-scheduled, T=20 frames (see WindowWithIndex's
		// special case for the true broadcast period of 2 frames used
		// for the physical repetition; the (20,0) pair here is only used
		// by callers that need a periodicity/index pair uniformly, e.g.
		// serving-cell-config bookkeeping).
		return 20, 0
	case idx == 1:
		if sib1 == nil || len(sib1.SchedInfoList) == 0 {
			return 0, -1
		}
		return sib1.SchedInfoList[0].SIPeriodicity, 0
	default:
		if sib1 == nil {
			return 0, -1
		}
		for i, si := range sib1.SchedInfoList {
			for _, mapped := range si.SibMapping {
				if mapped == idx+1 {
					return si.SIPeriodicity, i
				}
			}
		}
		return 0, -1
	}
}

// Window is a computed SI-window: the next opportunity's start TTI and
// its length in subframes.
type Window struct {
	Start  uint32
	Length uint32
}

// startTTI implements sib_start_tti(tti, T, o, a): the next subframe at
// which a periodicity-T (frames), offset-o (frames), subframe-a window
// begins, strictly after the current tti. Wrap-aware modulo TTIModulus.
func startTTI(tti uint64, tFrames uint32, offsetFrames uint32, subframe uint32) uint32 {
	period := uint64(tFrames) * 10
	next := period*(1+tti/period) + uint64(offsetFrames)*10 + uint64(subframe)
	return uint32(next % TTIModulus)
}

// WindowWithIndex computes the next SI-window for a SIB whose (T,
// schedIndex) pair has already been resolved via PeriodicityAndIndex.
// idx==0 (SIB1) is a fixed T=2 frames, subframe 5, length 1 window and
// ignores n/tFrames. For idx>0, the window offset within the period is
// derived from schedIndex*windowLength per TS 36.331 §5.2.3.
func WindowWithIndex(tti uint64, idx uint32, schedIndex int, tFrames uint32, sib1 *Sib1) Window {
	if idx == 0 {
		return Window{Start: startTTI(tti, 2, 0, 5), Length: 1}
	}
	w := uint32(1)
	if sib1 != nil && sib1.SIWindowLength > 0 {
		w = sib1.SIWindowLength
	}
	x := uint32(schedIndex) * w
	subframe := x % 10
	offsetFrames := x / 10
	return Window{Start: startTTI(tti, tFrames, offsetFrames, subframe), Length: w}
}

// TTIAfter reports whether a comes strictly after b in wrap-aware sense,
// assuming |a-b| < TTIModulus/2 as spec §6 requires ("the core assumes
// |Δ| < 5120").
func TTIAfter(a, b uint32) bool {
	return TTIDelta(a, b) > 0
}

// TTIDelta returns a-b as a signed delta in [-TTIModulus/2, TTIModulus/2),
// resolving wraparound the same way tti_point subtraction does in the
// original implementation.
func TTIDelta(a, b uint32) int32 {
	d := int32(a) - int32(b)
	switch {
	case d > TTIModulus/2:
		d -= TTIModulus
	case d < -TTIModulus/2:
		d += TTIModulus
	}
	return d
}

// TTIAdd adds delta subframes to tti, wrapping at TTIModulus. delta may be
// negative.
func TTIAdd(tti uint32, delta int64) uint32 {
	v := (int64(tti) + delta) % TTIModulus
	if v < 0 {
		v += TTIModulus
	}
	return uint32(v)
}
