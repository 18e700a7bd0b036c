package opcua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetRelease(t *testing.T) {
	store := NewMemoryStore()

	node := store.Get(NewNumericNodeID(0, IDRootFolder))
	require.NotNil(t, node)
	assert.Equal(t, "Root", node.BrowseName.Name)
	assert.Equal(t, int64(1), store.Borrowed())

	store.Release(node)
	assert.Zero(t, store.Borrowed())

	assert.Nil(t, store.Get(NewStringNodeID(5, "nope")))
	assert.Zero(t, store.Borrowed(), "a failed get borrows nothing")

	// Releasing nil is a no-op.
	store.Release(nil)
	assert.Zero(t, store.Borrowed())
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	store := NewMemoryStore()
	objects := NewNumericNodeID(0, IDObjectsFolder)

	handle := store.Get(objects)
	require.NotNil(t, handle)
	before := len(handle.References)

	// Mutating the store must not change a held handle.
	extra := NewStringNodeID(2, "Extra")
	store.AddObject(extra, "Extra")
	store.AddBidirectional(objects, NewNumericNodeID(0, IDOrganizes), extra)

	assert.Len(t, handle.References, before)
	store.Release(handle)

	fresh := store.Get(objects)
	require.NotNil(t, fresh)
	assert.Len(t, fresh.References, before, "same kind, one more target")

	var found bool
	for _, rk := range fresh.References {
		for _, target := range rk.Targets {
			if target.NodeID.Equal(extra) {
				found = true
			}
		}
	}
	assert.True(t, found)
	store.Release(fresh)
}

func TestMemoryStoreReferenceKindGrouping(t *testing.T) {
	store := NewMemoryStore()
	organizes := NewNumericNodeID(0, IDOrganizes)
	hasComponent := NewNumericNodeID(0, IDHasComponent)

	parent := NewStringNodeID(2, "P")
	store.AddObject(parent, "P")

	a := ExpandedNodeID{NodeID: NewStringNodeID(2, "a")}
	b := ExpandedNodeID{NodeID: NewStringNodeID(2, "b")}
	c := ExpandedNodeID{NodeID: NewStringNodeID(2, "c")}

	require.True(t, store.AddReference(parent, organizes, false, a))
	require.True(t, store.AddReference(parent, hasComponent, false, b))
	require.True(t, store.AddReference(parent, organizes, false, c))
	require.True(t, store.AddReference(parent, organizes, true, a))

	node := store.Get(parent)
	require.NotNil(t, node)
	defer store.Release(node)

	// Three kinds: (Organizes, forward), (HasComponent, forward),
	// (Organizes, inverse) - in encounter order, targets appended in order.
	require.Len(t, node.References, 3)
	assert.True(t, node.References[0].ReferenceTypeID.Equal(organizes))
	assert.False(t, node.References[0].IsInverse)
	require.Len(t, node.References[0].Targets, 2)
	assert.True(t, node.References[0].Targets[0].NodeID.Equal(a.NodeID))
	assert.True(t, node.References[0].Targets[1].NodeID.Equal(c.NodeID))

	assert.True(t, node.References[1].ReferenceTypeID.Equal(hasComponent))
	assert.True(t, node.References[2].IsInverse)

	// Adding to a missing source fails.
	assert.False(t, store.AddReference(NewStringNodeID(2, "nope"), organizes, false, a))
}

func TestMemoryStoreNamespaceZero(t *testing.T) {
	store := NewMemoryStore()

	for _, id := range []uint32{IDRootFolder, IDObjectsFolder, IDTypesFolder,
		IDReferences, IDHierarchicalReferences, IDHasChild, IDOrganizes,
		IDHasSubtype, IDHasTypeDefinition, IDFolderType, IDServer} {
		node := store.Get(NewNumericNodeID(0, id))
		require.NotNil(t, node, "missing ns0 node i=%d", id)
		store.Release(node)
	}

	refType := store.Get(NewNumericNodeID(0, IDOrganizes))
	require.NotNil(t, refType)
	assert.Equal(t, NodeClassReferenceType, refType.NodeClass)
	store.Release(refType)
}

func TestGetTypeOf(t *testing.T) {
	store := NewMemoryStore()

	objects := store.Get(NewNumericNodeID(0, IDObjectsFolder))
	require.NotNil(t, objects)

	typeNode := getTypeOf(store, objects)
	require.NotNil(t, typeNode)
	assert.True(t, typeNode.NodeID.Equal(NewNumericNodeID(0, IDFolderType)))
	store.Release(typeNode)
	store.Release(objects)

	// A node without a type definition yields nil.
	bare := NewStringNodeID(2, "bare")
	store.AddObject(bare, "bare")
	handle := store.Get(bare)
	require.NotNil(t, handle)
	assert.Nil(t, getTypeOf(store, handle))
	store.Release(handle)

	assert.Zero(t, store.Borrowed())
}

func TestMemoryStoreDeleteNode(t *testing.T) {
	store := NewMemoryStore()
	id := NewStringNodeID(2, "gone")
	store.AddObject(id, "gone")

	handle := store.Get(id)
	require.NotNil(t, handle)
	store.Release(handle)

	store.DeleteNode(id)
	assert.Nil(t, store.Get(id))
	assert.Zero(t, store.Borrowed())
}
