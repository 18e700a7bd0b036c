// Copyright 2025 Edgeo SCADA
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

package opcua

import (
	"sync"
)

// continuationPoint is a paused browse attached to a session. The cursor
// names the next unexamined (reference kind, target) pair of the starting
// node's reference list.
type continuationPoint struct {
	identifier         []byte
	description        BrowseDescription
	maxReferences      uint32
	referenceKindIndex int
	targetIndex        int
}

// Session holds the per-session state of the view services: the set of live
// continuation points and the remaining slot budget. View operations on the
// same session are serialized through mu.
type Session struct {
	ID                  uint32
	AuthenticationToken NodeID

	mu                          sync.Mutex
	continuationPoints          map[string]*continuationPoint
	availableContinuationPoints int
}

// newSession creates a session with the given continuation-point budget.
func newSession(id uint32, maxContinuationPoints int) *Session {
	return &Session{
		ID:                          id,
		continuationPoints:          make(map[string]*continuationPoint),
		availableContinuationPoints: maxContinuationPoints,
	}
}

// AvailableContinuationPoints returns the number of continuation-point slots
// the session has left.
func (s *Session) AvailableContinuationPoints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableContinuationPoints
}

// LiveContinuationPoints returns the number of active continuation points.
func (s *Session) LiveContinuationPoints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.continuationPoints)
}

// findContinuationPoint looks up an entry by identifier bytes. Callers hold
// s.mu.
func (s *Session) findContinuationPoint(identifier []byte) *continuationPoint {
	return s.continuationPoints[string(identifier)]
}

// storeContinuationPoint inserts an entry and consumes a slot. Callers hold
// s.mu and have checked the budget.
func (s *Session) storeContinuationPoint(cp *continuationPoint) {
	s.continuationPoints[string(cp.identifier)] = cp
	s.availableContinuationPoints--
}

// removeContinuationPoint deletes an entry and returns its slot. Callers
// hold s.mu.
func (s *Session) removeContinuationPoint(cp *continuationPoint) {
	delete(s.continuationPoints, string(cp.identifier))
	s.availableContinuationPoints++
}

// close releases all continuation points of the session.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.availableContinuationPoints += len(s.continuationPoints)
	s.continuationPoints = make(map[string]*continuationPoint)
}
