// Copyright 2026 VoidLight
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package markitdown

import "slices"

// PriorityTier is the coarse priority class used to order converter
// trials. All specific-format converters run before any generic fallback.
type PriorityTier int

const (
	// TierSpecific is for format-specific converters (PDF, DOCX, HWP...).
	TierSpecific PriorityTier = 0
	// TierGeneric is for fallback converters (HTML, ZIP, plain text).
	TierGeneric PriorityTier = 1
)

// converterBinding pairs a converter with its trial-order position.
type converterBinding struct {
	name      string
	converter DocumentConverter
	tier      PriorityTier
	order     int
}

// converterRegistry keeps bindings sorted by tier, then registration
// order, with override registrations at the head of their tier. It has no
// internal locking: registration is an initialization-phase operation and
// must complete before any conversion traffic begins.
type converterRegistry struct {
	bindings  []converterBinding
	nextOrder int
}

// register appends a binding at the tail of its tier, or at its head when
// override is set (used by plugins pre-empting a built-in for the same
// format).
func (r *converterRegistry) register(name string, c DocumentConverter, tier PriorityTier, override bool) {
	b := converterBinding{
		name:      name,
		converter: c,
		tier:      tier,
		order:     r.nextOrder,
	}
	r.nextOrder++

	pos := len(r.bindings)
	for i, existing := range r.bindings {
		if override && existing.tier >= tier {
			pos = i
			break
		}
		if !override && existing.tier > tier {
			pos = i
			break
		}
	}
	r.bindings = slices.Insert(r.bindings, pos, b)
}

// ordered returns the bindings in trial order.
func (r *converterRegistry) ordered() []converterBinding {
	return r.bindings
}
