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
	"sync/atomic"
)

// ReferenceKind groups all outgoing references of a node that share the same
// (reference type, direction) pair. Targets keep their insertion order.
type ReferenceKind struct {
	ReferenceTypeID NodeID
	IsInverse       bool
	Targets         []ExpandedNodeID
}

// Node is a single entry of the address space. Handles returned by a
// NodeStore are read-only snapshots; mutate the store, not the handle.
type Node struct {
	NodeID      NodeID
	NodeClass   NodeClass
	BrowseName  QualifiedName
	DisplayName LocalizedText
	Description LocalizedText
	References  []ReferenceKind
}

// NodeStore is the borrowed-handle contract the view services run against.
// Every handle obtained with Get must be returned with Release on every exit
// path, including error paths.
type NodeStore interface {
	// Get returns a handle for the node, or nil if the node does not exist.
	Get(id NodeID) *Node

	// Release returns a handle obtained from Get.
	Release(n *Node)
}

// getTypeOf resolves the HasTypeDefinition reference of an Object or
// Variable node. The returned handle must be released by the caller; nil is
// returned when the node carries no type definition.
func getTypeOf(store NodeStore, node *Node) *Node {
	typeDef := NewNumericNodeID(0, IDHasTypeDefinition)
	for i := range node.References {
		rk := &node.References[i]
		if rk.IsInverse || !rk.ReferenceTypeID.Equal(typeDef) {
			continue
		}
		for _, target := range rk.Targets {
			if !target.IsLocal() {
				continue
			}
			if t := store.Get(target.NodeID); t != nil {
				return t
			}
		}
	}
	return nil
}

// MemoryStore is an in-memory NodeStore guarded by a read-write mutex. Get
// hands out snapshot clones so callers observe a stable node even while the
// store is mutated; an atomic borrow counter tracks outstanding handles so
// tests can verify the get/release pairing.
type MemoryStore struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	borrowed int64
}

// NewMemoryStore creates an in-memory node store that holds only the
// preloaded namespace-zero base hierarchy.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{nodes: make(map[string]*Node)}
	s.initNamespaceZero()
	return s
}

// Get implements NodeStore.
func (s *MemoryStore) Get(id NodeID) *Node {
	s.mu.RLock()
	node, ok := s.nodes[id.Text()]
	if !ok {
		s.mu.RUnlock()
		return nil
	}
	clone := cloneNode(node)
	s.mu.RUnlock()

	atomic.AddInt64(&s.borrowed, 1)
	return clone
}

// Release implements NodeStore.
func (s *MemoryStore) Release(n *Node) {
	if n == nil {
		return
	}
	atomic.AddInt64(&s.borrowed, -1)
}

// Borrowed returns the number of handles that have been obtained with Get
// and not yet released.
func (s *MemoryStore) Borrowed() int64 {
	return atomic.LoadInt64(&s.borrowed)
}

// AddNode inserts a node. An existing node with the same NodeID is replaced.
func (s *MemoryStore) AddNode(id NodeID, class NodeClass, browseName QualifiedName, displayName LocalizedText) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes[id.Text()] = &Node{
		NodeID:      id,
		NodeClass:   class,
		BrowseName:  browseName,
		DisplayName: displayName,
	}
}

// AddObject inserts an Object node whose browse name and display name are
// both derived from name in namespace 0.
func (s *MemoryStore) AddObject(id NodeID, name string) {
	s.AddNode(id, NodeClassObject, QualifiedName{Name: name}, LocalizedText{Text: name})
}

// AddReference adds a reference from source to target under the given
// reference type and direction. The target may live on a remote server via
// its ServerIndex. Kind groups are created in encounter order.
func (s *MemoryStore) AddReference(source NodeID, refType NodeID, isInverse bool, target ExpandedNodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[source.Text()]
	if !ok {
		return false
	}
	for i := range node.References {
		rk := &node.References[i]
		if rk.IsInverse == isInverse && rk.ReferenceTypeID.Equal(refType) {
			rk.Targets = append(rk.Targets, target)
			return true
		}
	}
	node.References = append(node.References, ReferenceKind{
		ReferenceTypeID: refType,
		IsInverse:       isInverse,
		Targets:         []ExpandedNodeID{target},
	})
	return true
}

// AddBidirectional adds a forward reference on source and the matching
// inverse reference on target. Both nodes must be local.
func (s *MemoryStore) AddBidirectional(source NodeID, refType NodeID, target NodeID) bool {
	ok := s.AddReference(source, refType, false, ExpandedNodeID{NodeID: target})
	if !ok {
		return false
	}
	return s.AddReference(target, refType, true, ExpandedNodeID{NodeID: source})
}

// DeleteNode removes a node. References held by other nodes are left in
// place; browses skip targets that no longer resolve.
func (s *MemoryStore) DeleteNode(id NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, id.Text())
}

func cloneNode(n *Node) *Node {
	clone := &Node{
		NodeID:      n.NodeID.Copy(),
		NodeClass:   n.NodeClass,
		BrowseName:  n.BrowseName,
		DisplayName: n.DisplayName,
		Description: n.Description,
	}
	if len(n.References) > 0 {
		clone.References = make([]ReferenceKind, len(n.References))
		for i, rk := range n.References {
			targets := make([]ExpandedNodeID, len(rk.Targets))
			copy(targets, rk.Targets)
			clone.References[i] = ReferenceKind{
				ReferenceTypeID: rk.ReferenceTypeID.Copy(),
				IsInverse:       rk.IsInverse,
				Targets:         targets,
			}
		}
	}
	return clone
}

// initNamespaceZero loads the base folders, the reference-type hierarchy and
// the type nodes the view services depend on.
func (s *MemoryStore) initNamespaceZero() {
	ns0 := func(id uint32) NodeID { return NewNumericNodeID(0, id) }

	refType := func(id uint32, name string) {
		s.AddNode(ns0(id), NodeClassReferenceType,
			QualifiedName{Name: name}, LocalizedText{Text: name})
	}
	objType := func(id uint32, name string) {
		s.AddNode(ns0(id), NodeClassObjectType,
			QualifiedName{Name: name}, LocalizedText{Text: name})
	}

	s.AddObject(ns0(IDRootFolder), "Root")
	s.AddObject(ns0(IDObjectsFolder), "Objects")
	s.AddObject(ns0(IDTypesFolder), "Types")
	s.AddObject(ns0(IDViewsFolder), "Views")
	s.AddObject(ns0(IDReferenceTypesFolder), "ReferenceTypes")
	s.AddObject(ns0(IDObjectTypesFolder), "ObjectTypes")
	s.AddObject(ns0(IDServer), "Server")

	refType(IDReferences, "References")
	refType(IDHierarchicalReferences, "HierarchicalReferences")
	refType(IDNonHierarchicalReferences, "NonHierarchicalReferences")
	refType(IDHasChild, "HasChild")
	refType(IDOrganizes, "Organizes")
	refType(IDAggregates, "Aggregates")
	refType(IDHasComponent, "HasComponent")
	refType(IDHasProperty, "HasProperty")
	refType(IDHasSubtype, "HasSubtype")
	refType(IDHasTypeDefinition, "HasTypeDefinition")

	objType(IDBaseObjectType, "BaseObjectType")
	objType(IDFolderType, "FolderType")

	hasSubtype := ns0(IDHasSubtype)
	organizes := ns0(IDOrganizes)
	hasTypeDef := ns0(IDHasTypeDefinition)

	// Reference-type hierarchy.
	s.AddBidirectional(ns0(IDReferences), hasSubtype, ns0(IDHierarchicalReferences))
	s.AddBidirectional(ns0(IDReferences), hasSubtype, ns0(IDNonHierarchicalReferences))
	s.AddBidirectional(ns0(IDHierarchicalReferences), hasSubtype, ns0(IDHasChild))
	s.AddBidirectional(ns0(IDHierarchicalReferences), hasSubtype, ns0(IDOrganizes))
	s.AddBidirectional(ns0(IDHasChild), hasSubtype, ns0(IDAggregates))
	s.AddBidirectional(ns0(IDAggregates), hasSubtype, ns0(IDHasComponent))
	s.AddBidirectional(ns0(IDAggregates), hasSubtype, ns0(IDHasProperty))
	s.AddBidirectional(ns0(IDNonHierarchicalReferences), hasSubtype, ns0(IDHasTypeDefinition))

	// Object-type hierarchy.
	s.AddBidirectional(ns0(IDBaseObjectType), hasSubtype, ns0(IDFolderType))

	// Folder layout.
	s.AddBidirectional(ns0(IDRootFolder), organizes, ns0(IDObjectsFolder))
	s.AddBidirectional(ns0(IDRootFolder), organizes, ns0(IDTypesFolder))
	s.AddBidirectional(ns0(IDRootFolder), organizes, ns0(IDViewsFolder))
	s.AddBidirectional(ns0(IDTypesFolder), organizes, ns0(IDReferenceTypesFolder))
	s.AddBidirectional(ns0(IDTypesFolder), organizes, ns0(IDObjectTypesFolder))
	s.AddBidirectional(ns0(IDReferenceTypesFolder), organizes, ns0(IDReferences))
	s.AddBidirectional(ns0(IDObjectTypesFolder), organizes, ns0(IDBaseObjectType))
	s.AddBidirectional(ns0(IDObjectsFolder), organizes, ns0(IDServer))

	// Type definitions for the folders.
	folderType := ns0(IDFolderType)
	for _, id := range []uint32{IDRootFolder, IDObjectsFolder, IDTypesFolder,
		IDViewsFolder, IDReferenceTypesFolder, IDObjectTypesFolder} {
		s.AddReference(ns0(id), hasTypeDef, false, ExpandedNodeID{NodeID: folderType})
	}
	s.AddReference(ns0(IDServer), hasTypeDef, false, ExpandedNodeID{NodeID: ns0(IDBaseObjectType)})
}
