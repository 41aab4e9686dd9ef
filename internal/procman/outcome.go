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

// Package procman implements the cooperative, event-driven procedure
// engine that the RRC layer runs its ten protocol procedures on top of.
package procman

// Outcome is the three-valued result every procedure handler returns.
type Outcome int

const (
	// Yield suspends the procedure until the next tick or a matching event.
	Yield Outcome = iota
	// Success terminates the procedure with a captured completion value.
	Success
	// Error terminates the procedure without a usable completion value.
	Error
)

func (o Outcome) String() string {
	switch o {
	case Yield:
		return "yield"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// IsComplete reports whether the outcome ends the invocation.
func (o Outcome) IsComplete() bool {
	return o == Success || o == Error
}
