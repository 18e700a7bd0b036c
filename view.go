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
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/google/uuid"
)

// OperationLimits bounds the per-request and per-node work of the view
// services. A zero value means "no limit" except for continuation points,
// where zero selects DefaultMaxContinuationPoints.
type OperationLimits struct {
	MaxNodesPerBrowse                        uint32
	MaxReferencesPerNode                     uint32
	MaxNodesPerTranslateBrowsePathsToNodeIds uint32
	MaxNodesPerRegisterNodes                 uint32
	MaxContinuationPointsPerSession          int
}

// DefaultMaxContinuationPoints is the per-session continuation-point budget
// used when none is configured.
const DefaultMaxContinuationPoints = 16

// ViewService answers structural queries against a node store: Browse,
// BrowseNext, TranslateBrowsePathsToNodeIds, RegisterNodes and
// UnregisterNodes.
type ViewService struct {
	store   NodeStore
	limits  OperationLimits
	logger  *slog.Logger
	metrics *ServerMetrics

	adminSession  *Session
	sessionIDNext uint32
}

// NewViewService creates a view service over the given node store. A nil
// logger falls back to slog.Default; a nil metrics sink allocates a fresh
// one.
func NewViewService(store NodeStore, limits OperationLimits, logger *slog.Logger, metrics *ServerMetrics) *ViewService {
	if limits.MaxContinuationPointsPerSession <= 0 {
		limits.MaxContinuationPointsPerSession = DefaultMaxContinuationPoints
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewServerMetrics()
	}
	v := &ViewService{
		store:   store,
		limits:  limits,
		logger:  logger,
		metrics: metrics,
	}
	v.adminSession = newSession(0, limits.MaxContinuationPointsPerSession)
	return v
}

// NewSession creates a session with this service's continuation-point
// budget.
func (v *ViewService) NewSession() *Session {
	id := atomic.AddUint32(&v.sessionIDNext, 1)
	return newSession(id, v.limits.MaxContinuationPointsPerSession)
}

// CloseSession releases all continuation points held by the session.
func (v *ViewService) CloseSession(session *Session) {
	released := session.LiveContinuationPoints()
	session.close()
	if released > 0 {
		v.metrics.ContinuationPointsReleased.Add(int64(released))
		v.metrics.ContinuationPointsActive.Add(-int64(released))
	}
}

// isNodeInTree reports whether root equals leaf or leaf can be reached from
// root by following forward references of the given type. The walk ascends
// from leaf over inverse references and carries a visited set so reference
// cycles terminate.
func isNodeInTree(store NodeStore, leaf, root, refType NodeID) bool {
	if leaf.Equal(root) {
		return true
	}

	visited := map[string]bool{leaf.Text(): true}
	frontier := []NodeID{leaf}

	for len(frontier) > 0 {
		id := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		node := store.Get(id)
		if node == nil {
			continue
		}
		for i := range node.References {
			rk := &node.References[i]
			if !rk.IsInverse || !rk.ReferenceTypeID.Equal(refType) {
				continue
			}
			for _, target := range rk.Targets {
				if !target.IsLocal() {
					continue
				}
				if target.NodeID.Equal(root) {
					store.Release(node)
					return true
				}
				key := target.NodeID.Text()
				if visited[key] {
					continue
				}
				visited[key] = true
				frontier = append(frontier, target.NodeID)
			}
		}
		store.Release(node)
	}
	return false
}

// relevantReference decides whether a reference of type testRef passes a
// filter on rootRef, optionally including subtypes of rootRef.
func (v *ViewService) relevantReference(includeSubtypes bool, rootRef, testRef NodeID) bool {
	if !includeSubtypes {
		return rootRef.Equal(testRef)
	}
	return isNodeInTree(v.store, testRef, rootRef, NewNumericNodeID(0, IDHasSubtype))
}

// fillReferenceDescription materializes the client-facing description of a
// reference target. The target NodeID is always populated; every other field
// only when its result-mask bit is set.
func (v *ViewService) fillReferenceDescription(target *Node, rk *ReferenceKind, mask uint32) ReferenceDescription {
	descr := ReferenceDescription{
		NodeID: ExpandedNodeID{NodeID: target.NodeID.Copy()},
	}
	if mask&BrowseResultMaskReferenceTypeID != 0 {
		descr.ReferenceTypeID = rk.ReferenceTypeID.Copy()
	}
	if mask&BrowseResultMaskIsForward != 0 {
		descr.IsForward = !rk.IsInverse
	}
	if mask&BrowseResultMaskNodeClass != 0 {
		descr.NodeClass = target.NodeClass
	}
	if mask&BrowseResultMaskBrowseName != 0 {
		descr.BrowseName = target.BrowseName
	}
	if mask&BrowseResultMaskDisplayName != 0 {
		descr.DisplayName = target.DisplayName
	}
	if mask&BrowseResultMaskTypeDefinition != 0 {
		if target.NodeClass == NodeClassObject || target.NodeClass == NodeClassVariable {
			if typeNode := getTypeOf(v.store, target); typeNode != nil {
				descr.TypeDefinition = ExpandedNodeID{NodeID: typeNode.NodeID.Copy()}
				v.store.Release(typeNode)
			}
		}
	}
	return descr
}

// browseReferences walks the reference kinds of a single node, applying the
// direction, reference-type and node-class filters, and fills the result up
// to the effective reference budget. It reports whether the walk examined
// all references; on truncation the resume coordinates are stored in cp.
func (v *ViewService) browseReferences(node *Node, descr *BrowseDescription, result *BrowseResult, cp *continuationPoint) bool {
	if len(node.References) == 0 {
		result.References = []ReferenceDescription{}
		return true
	}

	browseAll := descr.ReferenceTypeID.IsNull()

	// Effective budget: the client's request capped by the server
	// configuration; zero on both sides means unbounded.
	maxrefs := cp.maxReferences
	if maxrefs == 0 {
		if v.limits.MaxReferencesPerNode != 0 {
			maxrefs = v.limits.MaxReferencesPerNode
		} else {
			maxrefs = math.MaxInt32
		}
	} else if v.limits.MaxReferencesPerNode != 0 && maxrefs > v.limits.MaxReferencesPerNode {
		maxrefs = v.limits.MaxReferencesPerNode
	}

	refs := make([]ReferenceDescription, 0, 2)

	referenceKindIndex := cp.referenceKindIndex
	targetIndex := cp.targetIndex

	for ; referenceKindIndex < len(node.References); referenceKindIndex++ {
		rk := &node.References[referenceKindIndex]

		if rk.IsInverse && descr.BrowseDirection == BrowseDirectionForward {
			continue
		}
		if !rk.IsInverse && descr.BrowseDirection == BrowseDirectionInverse {
			continue
		}

		if !browseAll && !v.relevantReference(descr.IncludeSubtypes, descr.ReferenceTypeID, rk.ReferenceTypeID) {
			continue
		}

		for ; targetIndex < len(rk.Targets); targetIndex++ {
			target := v.store.Get(rk.Targets[targetIndex].NodeID)
			if target == nil {
				continue
			}

			if descr.NodeClassMask != 0 && uint32(target.NodeClass)&descr.NodeClassMask == 0 {
				v.store.Release(target)
				continue
			}

			if uint32(len(refs)) >= maxrefs {
				// Budget exhausted with references left over. Record
				// where to resume.
				cp.referenceKindIndex = referenceKindIndex
				cp.targetIndex = targetIndex
				v.store.Release(target)
				result.References = refs
				return false
			}

			refs = append(refs, v.fillReferenceDescription(target, rk, descr.ResultMask))
			v.store.Release(target)
		}

		targetIndex = 0
	}

	result.References = refs
	return true
}

// browseSingle produces the result for one browse description. When cp is
// non-nil the browse resumes from the stored cursor with the stored
// description; otherwise a continuation point is created if the walk is
// truncated. The caller holds the session lock.
func (v *ViewService) browseSingle(session *Session, cp *continuationPoint, descr *BrowseDescription, maxRefs uint32, result *BrowseResult) {
	internalCP := cp
	if internalCP == nil {
		internalCP = &continuationPoint{maxReferences: maxRefs}
	} else {
		descr = &cp.description
	}

	if descr.BrowseDirection != BrowseDirectionForward &&
		descr.BrowseDirection != BrowseDirectionInverse &&
		descr.BrowseDirection != BrowseDirectionBoth {
		result.StatusCode = StatusBadBrowseDirectionInvalid
		return
	}

	if !descr.ReferenceTypeID.IsNull() {
		refType := v.store.Get(descr.ReferenceTypeID)
		if refType == nil {
			result.StatusCode = StatusBadReferenceTypeIdInvalid
			return
		}
		isRefType := refType.NodeClass == NodeClassReferenceType
		v.store.Release(refType)
		if !isRefType {
			result.StatusCode = StatusBadReferenceTypeIdInvalid
			return
		}
	}

	node := v.store.Get(descr.NodeID)
	if node == nil {
		result.StatusCode = StatusBadNodeIdUnknown
		return
	}

	done := v.browseReferences(node, descr, result, internalCP)

	v.store.Release(node)

	if result.StatusCode != StatusGood {
		return
	}

	// Resuming an existing continuation point.
	if cp != nil {
		if done {
			session.removeContinuationPoint(cp)
			v.metrics.ContinuationPointsReleased.Add(1)
			v.metrics.ContinuationPointsActive.Add(-1)
		} else {
			result.ContinuationPoint = append([]byte(nil), cp.identifier...)
		}
		return
	}

	// First page was truncated; try to park the cursor on the session.
	if !done {
		if session.availableContinuationPoints <= 0 {
			// The partial reference array is returned as-is; the client
			// has to reissue the full query.
			result.StatusCode = StatusBadNoContinuationPoints
			return
		}

		ident := uuid.New()
		ncp := &continuationPoint{
			identifier:         ident[:],
			description:        descr.Copy(),
			maxReferences:      internalCP.maxReferences,
			referenceKindIndex: internalCP.referenceKindIndex,
			targetIndex:        internalCP.targetIndex,
		}
		session.storeContinuationPoint(ncp)
		v.metrics.ContinuationPointsCreated.Add(1)
		v.metrics.ContinuationPointsActive.Add(1)

		result.ContinuationPoint = append([]byte(nil), ncp.identifier...)
	}
}

// processServiceOperations applies op to every input item, collecting one
// output per item. An empty input is a request-level BadNothingToDo.
func processServiceOperations[In, Out any](session *Session, op func(*Session, *In, *Out), input []In) ([]Out, StatusCode) {
	if len(input) == 0 {
		return nil, StatusBadNothingToDo
	}
	results := make([]Out, len(input))
	for i := range input {
		op(session, &input[i], &results[i])
	}
	return results, StatusGood
}

// Browse enumerates references for each browse description in the request.
func (v *ViewService) Browse(session *Session, req *BrowseRequest) *BrowseResponse {
	v.logger.Debug("processing browse request",
		slog.Uint64("session_id", uint64(session.ID)),
		slog.Int("nodes", len(req.NodesToBrowse)))

	resp := &BrowseResponse{}

	if !req.View.ViewID.IsNull() {
		resp.ResponseHeader.ServiceResult = StatusBadViewIdUnknown
		return resp
	}
	if len(req.NodesToBrowse) == 0 {
		resp.ResponseHeader.ServiceResult = StatusBadNothingToDo
		return resp
	}
	if v.limits.MaxNodesPerBrowse != 0 && uint32(len(req.NodesToBrowse)) > v.limits.MaxNodesPerBrowse {
		resp.ResponseHeader.ServiceResult = StatusBadTooManyOperations
		return resp
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	results := make([]BrowseResult, len(req.NodesToBrowse))
	for i := range req.NodesToBrowse {
		v.browseSingle(session, nil, &req.NodesToBrowse[i],
			req.RequestedMaxReferencesPerNode, &results[i])
	}
	resp.Results = results

	v.metrics.BrowseOperations.Add(int64(len(results)))
	return resp
}

// operationBrowseNext resolves one continuation-point identifier: release it,
// or resume the stored browse. The caller holds the session lock.
func (v *ViewService) operationBrowseNext(session *Session, release bool, identifier []byte, result *BrowseResult) {
	cp := session.findContinuationPoint(identifier)
	if cp == nil {
		result.StatusCode = StatusBadContinuationPointInvalid
		return
	}

	if release {
		session.removeContinuationPoint(cp)
		v.metrics.ContinuationPointsReleased.Add(1)
		v.metrics.ContinuationPointsActive.Add(-1)
		return
	}

	v.browseSingle(session, cp, nil, 0, result)
}

// BrowseNext resumes or releases the continuation points in the request.
func (v *ViewService) BrowseNext(session *Session, req *BrowseNextRequest) *BrowseNextResponse {
	v.logger.Debug("processing browse next request",
		slog.Uint64("session_id", uint64(session.ID)),
		slog.Int("continuation_points", len(req.ContinuationPoints)),
		slog.Bool("release", req.ReleaseContinuationPoints))

	resp := &BrowseNextResponse{}

	session.mu.Lock()
	defer session.mu.Unlock()

	op := func(sess *Session, identifier *[]byte, result *BrowseResult) {
		v.operationBrowseNext(sess, req.ReleaseContinuationPoints, *identifier, result)
	}
	results, serviceResult := processServiceOperations(session, op, req.ContinuationPoints)
	resp.Results = results
	resp.ResponseHeader.ServiceResult = serviceResult

	v.metrics.BrowseNextOperations.Add(int64(len(results)))
	return resp
}

// walkBrowsePathElement expands one relative-path element: every node of the
// current frontier that passes the previous element's target-name filter has
// its matching references followed. Local targets land in next; targets on
// remote servers are recorded on the result with the current depth.
func (v *ViewService) walkBrowsePathElement(result *BrowsePathResult, targets *[]BrowsePathTarget,
	elem *RelativePathElement, depth uint32, targetName *QualifiedName,
	current []NodeID, next *[]NodeID) {

	allRefs := elem.ReferenceTypeID.IsNull()
	if !allRefs {
		rootRef := v.store.Get(elem.ReferenceTypeID)
		if rootRef == nil {
			return
		}
		match := rootRef.NodeClass == NodeClassReferenceType
		v.store.Release(rootRef)
		if !match {
			return
		}
	}

	for i := range current {
		node := v.store.Get(current[i])
		if node == nil {
			// Only a missing starting node is an error; deeper levels may
			// race with address-space changes.
			if depth == 0 {
				result.StatusCode = StatusBadNodeIdUnknown
			}
			continue
		}

		if targetName != nil && !targetName.Equal(node.BrowseName) {
			v.store.Release(node)
			continue
		}

		for r := 0; r < len(node.References) && result.StatusCode == StatusGood; r++ {
			rk := &node.References[r]

			if rk.IsInverse != elem.IsInverse {
				continue
			}
			if !allRefs && !v.relevantReference(elem.IncludeSubtypes, elem.ReferenceTypeID, rk.ReferenceTypeID) {
				continue
			}

			for _, target := range rk.Targets {
				if target.ServerIndex != 0 {
					// The walk continues on another server; hand the
					// remaining path back to the client.
					*targets = append(*targets, BrowsePathTarget{
						TargetID: ExpandedNodeID{
							NodeID:       target.NodeID.Copy(),
							NamespaceURI: target.NamespaceURI,
							ServerIndex:  target.ServerIndex,
						},
						RemainingPathIndex: depth,
					})
					continue
				}
				*next = append(*next, target.NodeID.Copy())
			}
		}

		v.store.Release(node)
	}
}

// operationTranslateBrowsePath resolves one browse path by breadth-first
// expansion over the path depth, double-buffering the candidate frontier.
func (v *ViewService) operationTranslateBrowsePath(session *Session, path *BrowsePath, result *BrowsePathResult) {
	elements := path.RelativePath.Elements
	if len(elements) == 0 {
		result.StatusCode = StatusBadNothingToDo
		return
	}

	// Elements must carry a target name; checked before touching the store.
	for i := range elements {
		if elements[i].TargetName.IsNull() {
			result.StatusCode = StatusBadBrowseNameInvalid
			return
		}
	}

	targets := make([]BrowsePathTarget, 0, 10)
	current := make([]NodeID, 0, 10)
	next := make([]NodeID, 0, 10)
	current = append(current, path.StartingNode.Copy())

	// Target name of the previous path element; no pre-filter at depth 0.
	var targetName *QualifiedName

	completed := false
	for depth := 0; depth < len(elements); depth++ {
		next = next[:0]
		v.walkBrowsePathElement(result, &targets, &elements[depth],
			uint32(depth), targetName, current, &next)

		current = current[:0]

		if len(next) == 0 || result.StatusCode != StatusGood {
			break
		}

		// Exchange the frontier buffers for the next depth.
		current, next = next, current
		targetName = &elements[depth].TargetName

		completed = depth == len(elements)-1
	}

	if completed {
		// The final frontier still has to match the last element's target
		// name before it becomes a result.
		for _, id := range current {
			node := v.store.Get(id)
			if node == nil {
				continue
			}
			valid := targetName.Equal(node.BrowseName)
			v.store.Release(node)
			if !valid {
				continue
			}
			targets = append(targets, BrowsePathTarget{
				TargetID:           ExpandedNodeID{NodeID: id},
				RemainingPathIndex: RemainingPathIndexMax,
			})
		}
	}

	if len(targets) == 0 && result.StatusCode == StatusGood {
		result.StatusCode = StatusBadNoMatch
	}
	if result.StatusCode == StatusGood {
		result.Targets = targets
	}
}

// TranslateBrowsePaths resolves each browse path in the request.
func (v *ViewService) TranslateBrowsePaths(session *Session, req *TranslateBrowsePathsRequest) *TranslateBrowsePathsResponse {
	v.logger.Debug("processing translate browse paths request",
		slog.Uint64("session_id", uint64(session.ID)),
		slog.Int("paths", len(req.BrowsePaths)))

	resp := &TranslateBrowsePathsResponse{}

	if v.limits.MaxNodesPerTranslateBrowsePathsToNodeIds != 0 &&
		uint32(len(req.BrowsePaths)) > v.limits.MaxNodesPerTranslateBrowsePathsToNodeIds {
		resp.ResponseHeader.ServiceResult = StatusBadTooManyOperations
		return resp
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	results, serviceResult := processServiceOperations(session, v.operationTranslateBrowsePath, req.BrowsePaths)
	resp.Results = results
	resp.ResponseHeader.ServiceResult = serviceResult

	v.metrics.TranslateOperations.Add(int64(len(results)))
	return resp
}

// RegisterNodes echoes the node identifiers back as pseudo-handles. No
// per-session bookkeeping is attached.
func (v *ViewService) RegisterNodes(session *Session, req *RegisterNodesRequest) *RegisterNodesResponse {
	v.logger.Debug("processing register nodes request",
		slog.Uint64("session_id", uint64(session.ID)),
		slog.Int("nodes", len(req.NodesToRegister)))

	resp := &RegisterNodesResponse{}

	if len(req.NodesToRegister) == 0 {
		resp.ResponseHeader.ServiceResult = StatusBadNothingToDo
		return resp
	}
	if v.limits.MaxNodesPerRegisterNodes != 0 &&
		uint32(len(req.NodesToRegister)) > v.limits.MaxNodesPerRegisterNodes {
		resp.ResponseHeader.ServiceResult = StatusBadTooManyOperations
		return resp
	}

	registered := make([]NodeID, len(req.NodesToRegister))
	for i, id := range req.NodesToRegister {
		registered[i] = id.Copy()
	}
	resp.RegisteredNodeIDs = registered

	v.metrics.RegisterOperations.Add(int64(len(registered)))
	return resp
}

// UnregisterNodes discards previously registered pseudo-handles. An empty
// request is BadNothingToDo; there is no per-node result.
func (v *ViewService) UnregisterNodes(session *Session, req *UnregisterNodesRequest) *UnregisterNodesResponse {
	v.logger.Debug("processing unregister nodes request",
		slog.Uint64("session_id", uint64(session.ID)),
		slog.Int("nodes", len(req.NodesToUnregister)))

	resp := &UnregisterNodesResponse{}

	if len(req.NodesToUnregister) == 0 {
		resp.ResponseHeader.ServiceResult = StatusBadNothingToDo
		return resp
	}
	if v.limits.MaxNodesPerRegisterNodes != 0 &&
		uint32(len(req.NodesToUnregister)) > v.limits.MaxNodesPerRegisterNodes {
		resp.ResponseHeader.ServiceResult = StatusBadTooManyOperations
		return resp
	}

	v.metrics.RegisterOperations.Add(int64(len(req.NodesToUnregister)))
	return resp
}

// BrowseDirect is the single-shot variant of Browse. It runs on the admin
// session and bypasses request batching.
func (v *ViewService) BrowseDirect(descr *BrowseDescription, maxRefs uint32) BrowseResult {
	session := v.adminSession
	session.mu.Lock()
	defer session.mu.Unlock()

	var result BrowseResult
	v.browseSingle(session, nil, descr, maxRefs, &result)
	return result
}

// BrowseNextDirect is the single-shot variant of BrowseNext on the admin
// session.
func (v *ViewService) BrowseNextDirect(release bool, continuationPoint []byte) BrowseResult {
	session := v.adminSession
	session.mu.Lock()
	defer session.mu.Unlock()

	var result BrowseResult
	v.operationBrowseNext(session, release, continuationPoint, &result)
	return result
}

// TranslateBrowsePathDirect is the single-shot variant of
// TranslateBrowsePathsToNodeIds on the admin session.
func (v *ViewService) TranslateBrowsePathDirect(path *BrowsePath) BrowsePathResult {
	session := v.adminSession
	session.mu.Lock()
	defer session.mu.Unlock()

	var result BrowsePathResult
	v.operationTranslateBrowsePath(session, path, &result)
	return result
}
