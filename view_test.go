package opcua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plantFixture builds a store with a Station node under Objects that
// organizes five pumps, in insertion order.
func plantFixture(t *testing.T) (*MemoryStore, NodeID, []NodeID) {
	t.Helper()

	store := NewMemoryStore()
	objects := NewNumericNodeID(0, IDObjectsFolder)
	organizes := NewNumericNodeID(0, IDOrganizes)

	station := NewStringNodeID(2, "Station")
	store.AddNode(station, NodeClassObject,
		QualifiedName{NamespaceIndex: 2, Name: "Station"},
		LocalizedText{Text: "Station"})
	store.AddBidirectional(objects, organizes, station)
	store.AddReference(station, NewNumericNodeID(0, IDHasTypeDefinition), false,
		ExpandedNodeID{NodeID: NewNumericNodeID(0, IDFolderType)})

	children := make([]NodeID, 5)
	for i, name := range []string{"Pump1", "Pump2", "Pump3", "Pump4", "Pump5"} {
		id := NewStringNodeID(2, name)
		store.AddNode(id, NodeClassObject,
			QualifiedName{NamespaceIndex: 2, Name: name},
			LocalizedText{Text: name})
		store.AddBidirectional(station, organizes, id)
		children[i] = id
	}

	return store, station, children
}

func newTestView(store *MemoryStore, limits OperationLimits) *ViewService {
	return NewViewService(store, limits, nil, nil)
}

func browseRequest(nodes ...BrowseDescription) *BrowseRequest {
	return &BrowseRequest{NodesToBrowse: nodes}
}

func TestBrowseForward(t *testing.T) {
	store, station, children := plantFixture(t)
	view := newTestView(store, OperationLimits{})
	session := view.NewSession()

	resp := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionForward,
		ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
		IncludeSubtypes: true,
		ResultMask:      BrowseResultMaskAll,
	}))

	require.Equal(t, StatusGood, resp.ResponseHeader.ServiceResult)
	require.Len(t, resp.Results, 1)

	result := resp.Results[0]
	require.Equal(t, StatusGood, result.StatusCode)
	assert.Empty(t, result.ContinuationPoint)
	require.Len(t, result.References, len(children))

	for i, ref := range result.References {
		assert.True(t, ref.NodeID.NodeID.Equal(children[i]), "reference %d out of order", i)
		assert.True(t, ref.IsForward)
		assert.Equal(t, NodeClassObject, ref.NodeClass)
		assert.Equal(t, uint16(2), ref.BrowseName.NamespaceIndex)
		assert.True(t, ref.ReferenceTypeID.Equal(NewNumericNodeID(0, IDOrganizes)))
	}

	assert.Zero(t, store.Borrowed())
}

func TestBrowseResultMaskZero(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{})
	session := view.NewSession()

	resp := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionForward,
		ResultMask:      0,
	}))

	require.Len(t, resp.Results, 1)
	result := resp.Results[0]
	require.Equal(t, StatusGood, result.StatusCode)
	require.NotEmpty(t, result.References)

	for _, ref := range result.References {
		assert.False(t, ref.NodeID.NodeID.IsNull(), "nodeId must always be populated")
		assert.True(t, ref.ReferenceTypeID.IsNull())
		assert.False(t, ref.IsForward)
		assert.Equal(t, NodeClassUnspecified, ref.NodeClass)
		assert.Empty(t, ref.BrowseName.Name)
		assert.Empty(t, ref.DisplayName.Text)
		assert.True(t, ref.TypeDefinition.NodeID.IsNull())
	}
}

func TestBrowseTypeDefinition(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{})
	session := view.NewSession()

	// Browse Objects forward; Station carries a HasTypeDefinition to
	// FolderType.
	resp := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          NewNumericNodeID(0, IDObjectsFolder),
		BrowseDirection: BrowseDirectionForward,
		ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
		IncludeSubtypes: true,
		ResultMask:      BrowseResultMaskTypeDefinition,
	}))

	require.Len(t, resp.Results, 1)
	var found bool
	for _, ref := range resp.Results[0].References {
		if ref.NodeID.NodeID.Equal(station) {
			found = true
			assert.True(t, ref.TypeDefinition.NodeID.Equal(NewNumericNodeID(0, IDFolderType)))
		}
	}
	assert.True(t, found)
	assert.Zero(t, store.Borrowed())
}

func TestBrowseDirectionInvalid(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{})
	session := view.NewSession()

	resp := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirection(7),
	}))

	require.Len(t, resp.Results, 1)
	assert.Equal(t, StatusBadBrowseDirectionInvalid, resp.Results[0].StatusCode)
}

func TestBrowseReferenceTypeInvalid(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{})
	session := view.NewSession()

	// Unknown reference type node.
	resp := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionForward,
		ReferenceTypeID: NewStringNodeID(2, "not-a-node"),
	}))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, StatusBadReferenceTypeIdInvalid, resp.Results[0].StatusCode)

	// Existing node that is not a ReferenceType.
	resp = view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionForward,
		ReferenceTypeID: NewNumericNodeID(0, IDObjectsFolder),
	}))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, StatusBadReferenceTypeIdInvalid, resp.Results[0].StatusCode)

	assert.Zero(t, store.Borrowed())
}

func TestBrowseUnknownNode(t *testing.T) {
	store, _, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{})
	session := view.NewSession()

	resp := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          NewStringNodeID(2, "missing"),
		BrowseDirection: BrowseDirectionForward,
	}))

	require.Len(t, resp.Results, 1)
	assert.Equal(t, StatusBadNodeIdUnknown, resp.Results[0].StatusCode)
}

func TestBrowseEmptyNode(t *testing.T) {
	store := NewMemoryStore()
	lonely := NewStringNodeID(2, "Lonely")
	store.AddNode(lonely, NodeClassObject,
		QualifiedName{NamespaceIndex: 2, Name: "Lonely"}, LocalizedText{Text: "Lonely"})

	view := newTestView(store, OperationLimits{})
	session := view.NewSession()

	resp := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          lonely,
		BrowseDirection: BrowseDirectionBoth,
	}))

	require.Len(t, resp.Results, 1)
	result := resp.Results[0]
	assert.Equal(t, StatusGood, result.StatusCode)
	assert.NotNil(t, result.References, "empty array must be distinguishable from null")
	assert.Len(t, result.References, 0)
	assert.Empty(t, result.ContinuationPoint)
}

func TestBrowseNodeClassMask(t *testing.T) {
	store, station, _ := plantFixture(t)
	// Add a Variable child after the Object children.
	organizes := NewNumericNodeID(0, IDOrganizes)
	value := NewStringNodeID(2, "Level")
	store.AddNode(value, NodeClassVariable,
		QualifiedName{NamespaceIndex: 2, Name: "Level"}, LocalizedText{Text: "Level"})
	store.AddBidirectional(station, organizes, value)

	view := newTestView(store, OperationLimits{})
	session := view.NewSession()

	resp := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionForward,
		NodeClassMask:   uint32(NodeClassVariable),
		ResultMask:      BrowseResultMaskNodeClass,
	}))

	require.Len(t, resp.Results, 1)
	result := resp.Results[0]
	require.Equal(t, StatusGood, result.StatusCode)
	require.Len(t, result.References, 1)
	assert.Equal(t, NodeClassVariable, result.References[0].NodeClass)
	assert.True(t, result.References[0].NodeID.NodeID.Equal(value))
}

func TestBrowseDirectionBoth(t *testing.T) {
	store, station, children := plantFixture(t)
	view := newTestView(store, OperationLimits{})
	session := view.NewSession()

	resp := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionBoth,
		ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
		IncludeSubtypes: true,
		ResultMask:      BrowseResultMaskIsForward,
	}))

	require.Len(t, resp.Results, 1)
	result := resp.Results[0]
	require.Equal(t, StatusGood, result.StatusCode)
	// Inverse reference to Objects plus the five forward children.
	require.Len(t, result.References, len(children)+1)
	assert.False(t, result.References[0].IsForward, "store order puts the inverse kind first")
}

func TestBrowseSubtypeInclusion(t *testing.T) {
	store := NewMemoryStore()
	node := NewStringNodeID(2, "N")
	child := NewStringNodeID(2, "C")
	store.AddNode(node, NodeClassObject,
		QualifiedName{NamespaceIndex: 2, Name: "N"}, LocalizedText{Text: "N"})
	store.AddNode(child, NodeClassObject,
		QualifiedName{NamespaceIndex: 2, Name: "C"}, LocalizedText{Text: "C"})
	// HasComponent is a subtype of HasChild via Aggregates.
	store.AddBidirectional(node, NewNumericNodeID(0, IDHasComponent), child)

	view := newTestView(store, OperationLimits{})
	session := view.NewSession()

	withSubtypes := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          node,
		BrowseDirection: BrowseDirectionForward,
		ReferenceTypeID: NewNumericNodeID(0, IDHasChild),
		IncludeSubtypes: true,
	}))
	require.Len(t, withSubtypes.Results, 1)
	require.Equal(t, StatusGood, withSubtypes.Results[0].StatusCode)
	require.Len(t, withSubtypes.Results[0].References, 1)
	assert.True(t, withSubtypes.Results[0].References[0].NodeID.NodeID.Equal(child))

	withoutSubtypes := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          node,
		BrowseDirection: BrowseDirectionForward,
		ReferenceTypeID: NewNumericNodeID(0, IDHasChild),
		IncludeSubtypes: false,
	}))
	require.Len(t, withoutSubtypes.Results, 1)
	require.Equal(t, StatusGood, withoutSubtypes.Results[0].StatusCode)
	assert.Len(t, withoutSubtypes.Results[0].References, 0)

	assert.Zero(t, store.Borrowed())
}

func TestBrowseRequestValidation(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{MaxNodesPerBrowse: 2})
	session := view.NewSession()

	// Non-null view.
	resp := view.Browse(session, &BrowseRequest{
		View:          ViewDescription{ViewID: NewNumericNodeID(0, 5000)},
		NodesToBrowse: []BrowseDescription{{NodeID: station}},
	})
	assert.Equal(t, StatusBadViewIdUnknown, resp.ResponseHeader.ServiceResult)
	assert.Nil(t, resp.Results)

	// Empty request.
	resp = view.Browse(session, browseRequest())
	assert.Equal(t, StatusBadNothingToDo, resp.ResponseHeader.ServiceResult)

	// Over the operation cap.
	descr := BrowseDescription{NodeID: station, BrowseDirection: BrowseDirectionForward}
	resp = view.Browse(session, browseRequest(descr, descr, descr))
	assert.Equal(t, StatusBadTooManyOperations, resp.ResponseHeader.ServiceResult)
}

func TestBrowsePaginationSum(t *testing.T) {
	store, station, children := plantFixture(t)
	view := newTestView(store, OperationLimits{MaxReferencesPerNode: 2})
	session := view.NewSession()

	descr := BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionForward,
		ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
		IncludeSubtypes: true,
		ResultMask:      BrowseResultMaskNodeClass | BrowseResultMaskBrowseName,
	}

	resp := view.Browse(session, browseRequest(descr))
	require.Len(t, resp.Results, 1)
	page := resp.Results[0]
	require.Equal(t, StatusGood, page.StatusCode)
	require.Len(t, page.References, 2)
	require.NotEmpty(t, page.ContinuationPoint)
	assert.Len(t, page.ContinuationPoint, 16)
	assert.Equal(t, DefaultMaxContinuationPoints-1, session.AvailableContinuationPoints())

	var all []ReferenceDescription
	all = append(all, page.References...)

	cp := page.ContinuationPoint
	for i := 0; i < 10 && len(cp) > 0; i++ {
		nextResp := view.BrowseNext(session, &BrowseNextRequest{
			ContinuationPoints: [][]byte{cp},
		})
		require.Equal(t, StatusGood, nextResp.ResponseHeader.ServiceResult)
		require.Len(t, nextResp.Results, 1)
		page = nextResp.Results[0]
		require.Equal(t, StatusGood, page.StatusCode)
		all = append(all, page.References...)
		cp = page.ContinuationPoint
	}

	// Pages of 2, 2, 1.
	require.Len(t, all, len(children))
	for i, ref := range all {
		assert.Equal(t, children[i].String, ref.NodeID.NodeID.String,
			"pagination must preserve single-shot order")
	}

	// Identifier is consumed once the walk completes.
	assert.Equal(t, DefaultMaxContinuationPoints, session.AvailableContinuationPoints())
	assert.Zero(t, session.LiveContinuationPoints())

	// Concatenation equals an uncapped single shot through an uncapped view.
	uncapped := newTestView(store, OperationLimits{})
	single := uncapped.Browse(uncapped.NewSession(), browseRequest(descr))
	require.Len(t, single.Results, 1)
	require.Len(t, single.Results[0].References, len(all))
	for i := range all {
		assert.Equal(t, single.Results[0].References[i].NodeID.NodeID.String,
			all[i].NodeID.NodeID.String)
	}

	assert.Zero(t, store.Borrowed())
}

func TestBrowseNextRelease(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{MaxReferencesPerNode: 2})
	session := view.NewSession()

	resp := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionForward,
	}))
	require.Len(t, resp.Results, 1)
	cp := resp.Results[0].ContinuationPoint
	require.NotEmpty(t, cp)
	require.Equal(t, 1, session.LiveContinuationPoints())

	release := view.BrowseNext(session, &BrowseNextRequest{
		ReleaseContinuationPoints: true,
		ContinuationPoints:        [][]byte{cp},
	})
	require.Equal(t, StatusGood, release.ResponseHeader.ServiceResult)
	require.Len(t, release.Results, 1)
	assert.Equal(t, StatusGood, release.Results[0].StatusCode)
	assert.Empty(t, release.Results[0].References)
	assert.Zero(t, session.LiveContinuationPoints())
	assert.Equal(t, DefaultMaxContinuationPoints, session.AvailableContinuationPoints())

	// Releasing again is BadContinuationPointInvalid.
	again := view.BrowseNext(session, &BrowseNextRequest{
		ReleaseContinuationPoints: true,
		ContinuationPoints:        [][]byte{cp},
	})
	require.Len(t, again.Results, 1)
	assert.Equal(t, StatusBadContinuationPointInvalid, again.Results[0].StatusCode)
}

func TestBrowseNextUnknownIdentifier(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{MaxReferencesPerNode: 2})
	session := view.NewSession()

	resp := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionForward,
	}))
	require.NotEmpty(t, resp.Results[0].ContinuationPoint)

	before := session.AvailableContinuationPoints()
	bogus := view.BrowseNext(session, &BrowseNextRequest{
		ContinuationPoints: [][]byte{[]byte("0123456789abcdef")},
	})
	require.Len(t, bogus.Results, 1)
	assert.Equal(t, StatusBadContinuationPointInvalid, bogus.Results[0].StatusCode)

	// Session state untouched.
	assert.Equal(t, before, session.AvailableContinuationPoints())
	assert.Equal(t, 1, session.LiveContinuationPoints())
}

func TestBrowseNextEmptyRequest(t *testing.T) {
	store, _, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{})
	session := view.NewSession()

	resp := view.BrowseNext(session, &BrowseNextRequest{})
	assert.Equal(t, StatusBadNothingToDo, resp.ResponseHeader.ServiceResult)
	assert.Nil(t, resp.Results)
}

func TestBrowseNoContinuationPointSlots(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{
		MaxReferencesPerNode:            2,
		MaxContinuationPointsPerSession: 1,
	})
	session := view.NewSession()

	descr := BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionForward,
	}

	first := view.Browse(session, browseRequest(descr))
	require.Equal(t, StatusGood, first.Results[0].StatusCode)
	require.NotEmpty(t, first.Results[0].ContinuationPoint)
	require.Zero(t, session.AvailableContinuationPoints())

	// The slot budget is exhausted; the truncated browse keeps its partial
	// reference array but reports the exhaustion.
	second := view.Browse(session, browseRequest(descr))
	require.Len(t, second.Results, 1)
	assert.Equal(t, StatusBadNoContinuationPoints, second.Results[0].StatusCode)
	assert.Len(t, second.Results[0].References, 2)
	assert.Empty(t, second.Results[0].ContinuationPoint)

	assert.Zero(t, store.Borrowed())
}

func TestBrowseResumeAfterNodeDeleted(t *testing.T) {
	store, station, children := plantFixture(t)
	view := newTestView(store, OperationLimits{MaxReferencesPerNode: 2})
	session := view.NewSession()

	resp := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionForward,
	}))
	cp := resp.Results[0].ContinuationPoint
	require.NotEmpty(t, cp)

	// A target vanishing between pages is skipped silently.
	store.DeleteNode(children[2])

	// The first page held the type-definition reference and Pump1; the
	// resumed page skips the deleted Pump3.
	next := view.BrowseNext(session, &BrowseNextRequest{
		ContinuationPoints: [][]byte{cp},
	})
	require.Len(t, next.Results, 1)
	require.Equal(t, StatusGood, next.Results[0].StatusCode)
	require.Len(t, next.Results[0].References, 2)
	assert.Equal(t, children[1].String, next.Results[0].References[0].NodeID.NodeID.String)
	assert.Equal(t, children[3].String, next.Results[0].References[1].NodeID.NodeID.String)
}

func TestBrowseDirectAdminSession(t *testing.T) {
	store, station, children := plantFixture(t)
	view := newTestView(store, OperationLimits{})

	result := view.BrowseDirect(&BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionForward,
		ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
		IncludeSubtypes: true,
		ResultMask:      BrowseResultMaskBrowseName,
	}, 3)

	require.Equal(t, StatusGood, result.StatusCode)
	require.Len(t, result.References, 3)
	require.NotEmpty(t, result.ContinuationPoint)

	rest := view.BrowseNextDirect(false, result.ContinuationPoint)
	require.Equal(t, StatusGood, rest.StatusCode)
	require.Len(t, rest.References, len(children)-3)
	assert.Empty(t, rest.ContinuationPoint)
}

func TestTranslateSingleElementMatchesBrowse(t *testing.T) {
	store, station, children := plantFixture(t)
	view := newTestView(store, OperationLimits{})
	session := view.NewSession()

	path := BrowsePath{
		StartingNode: station,
		RelativePath: RelativePath{Elements: []RelativePathElement{{
			ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
			IncludeSubtypes: true,
			TargetName:      QualifiedName{NamespaceIndex: 2, Name: "Pump3"},
		}}},
	}

	resp := view.TranslateBrowsePaths(session, &TranslateBrowsePathsRequest{
		BrowsePaths: []BrowsePath{path},
	})
	require.Equal(t, StatusGood, resp.ResponseHeader.ServiceResult)
	require.Len(t, resp.Results, 1)

	result := resp.Results[0]
	require.Equal(t, StatusGood, result.StatusCode)
	require.Len(t, result.Targets, 1)
	assert.True(t, result.Targets[0].TargetID.NodeID.Equal(children[2]))
	assert.Equal(t, RemainingPathIndexMax, result.Targets[0].RemainingPathIndex)

	// A forward Organizes browse filtered by the same browse name yields
	// the same target.
	browsed := view.Browse(session, browseRequest(BrowseDescription{
		NodeID:          station,
		BrowseDirection: BrowseDirectionForward,
		ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
		IncludeSubtypes: true,
		ResultMask:      BrowseResultMaskBrowseName,
	}))
	require.Len(t, browsed.Results, 1)
	var matched []NodeID
	for _, ref := range browsed.Results[0].References {
		if ref.BrowseName.Equal(path.RelativePath.Elements[0].TargetName) {
			matched = append(matched, ref.NodeID.NodeID)
		}
	}
	require.Len(t, matched, len(result.Targets))
	assert.True(t, matched[0].Equal(result.Targets[0].TargetID.NodeID))

	assert.Zero(t, store.Borrowed())
}

func TestTranslateMultiHop(t *testing.T) {
	store, _, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{})

	hier := NewNumericNodeID(0, IDHierarchicalReferences)
	path := BrowsePath{
		StartingNode: NewNumericNodeID(0, IDRootFolder),
		RelativePath: RelativePath{Elements: []RelativePathElement{
			{ReferenceTypeID: hier, IncludeSubtypes: true, TargetName: QualifiedName{Name: "Objects"}},
			{ReferenceTypeID: hier, IncludeSubtypes: true, TargetName: QualifiedName{NamespaceIndex: 2, Name: "Station"}},
			{ReferenceTypeID: hier, IncludeSubtypes: true, TargetName: QualifiedName{NamespaceIndex: 2, Name: "Pump5"}},
		}},
	}

	result := view.TranslateBrowsePathDirect(&path)
	require.Equal(t, StatusGood, result.StatusCode)
	require.Len(t, result.Targets, 1)
	assert.True(t, result.Targets[0].TargetID.NodeID.Equal(NewStringNodeID(2, "Pump5")))
}

func TestTranslateEmptyPath(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{})

	result := view.TranslateBrowsePathDirect(&BrowsePath{StartingNode: station})
	assert.Equal(t, StatusBadNothingToDo, result.StatusCode)
}

func TestTranslateNullTargetName(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{})

	result := view.TranslateBrowsePathDirect(&BrowsePath{
		StartingNode: station,
		RelativePath: RelativePath{Elements: []RelativePathElement{
			{ReferenceTypeID: NewNumericNodeID(0, IDOrganizes), TargetName: QualifiedName{NamespaceIndex: 2, Name: "Pump1"}},
			{ReferenceTypeID: NewNumericNodeID(0, IDOrganizes)},
		}},
	})

	assert.Equal(t, StatusBadBrowseNameInvalid, result.StatusCode)
	assert.Empty(t, result.Targets)
	assert.Zero(t, store.Borrowed())
}

func TestTranslateUnknownStartingNode(t *testing.T) {
	store, _, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{})

	result := view.TranslateBrowsePathDirect(&BrowsePath{
		StartingNode: NewStringNodeID(2, "missing"),
		RelativePath: RelativePath{Elements: []RelativePathElement{{
			TargetName: QualifiedName{Name: "anything"},
		}}},
	})

	assert.Equal(t, StatusBadNodeIdUnknown, result.StatusCode)
}

func TestTranslateNoMatch(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{})

	result := view.TranslateBrowsePathDirect(&BrowsePath{
		StartingNode: station,
		RelativePath: RelativePath{Elements: []RelativePathElement{{
			ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
			IncludeSubtypes: true,
			TargetName:      QualifiedName{NamespaceIndex: 2, Name: "NoSuchPump"},
		}}},
	})

	assert.Equal(t, StatusBadNoMatch, result.StatusCode)
	assert.Empty(t, result.Targets)
}

func TestTranslateBadReferenceTypeElement(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{})

	// A reference type that is not a ReferenceType node terminates the
	// walk without error, producing BadNoMatch.
	result := view.TranslateBrowsePathDirect(&BrowsePath{
		StartingNode: station,
		RelativePath: RelativePath{Elements: []RelativePathElement{{
			ReferenceTypeID: NewNumericNodeID(0, IDObjectsFolder),
			TargetName:      QualifiedName{NamespaceIndex: 2, Name: "Pump1"},
		}}},
	})

	assert.Equal(t, StatusBadNoMatch, result.StatusCode)
}

func TestTranslateCrossServerHop(t *testing.T) {
	store, _, _ := plantFixture(t)
	local := NewStringNodeID(2, "Gateway")
	store.AddNode(local, NodeClassObject,
		QualifiedName{NamespaceIndex: 2, Name: "Gateway"}, LocalizedText{Text: "Gateway"})
	store.AddReference(local, NewNumericNodeID(0, IDHasComponent), false, ExpandedNodeID{
		NodeID:      NewStringNodeID(3, "Remote"),
		ServerIndex: 7,
	})

	view := newTestView(store, OperationLimits{})

	result := view.TranslateBrowsePathDirect(&BrowsePath{
		StartingNode: local,
		RelativePath: RelativePath{Elements: []RelativePathElement{{
			ReferenceTypeID: NewNumericNodeID(0, IDHasChild),
			IncludeSubtypes: true,
			TargetName:      QualifiedName{Name: "Remote"},
		}}},
	})

	require.Equal(t, StatusGood, result.StatusCode)
	require.Len(t, result.Targets, 1)
	target := result.Targets[0]
	assert.Equal(t, uint32(7), target.TargetID.ServerIndex)
	assert.Equal(t, uint32(0), target.RemainingPathIndex)
	assert.Zero(t, store.Borrowed())
}

func TestTranslateRemainingPathIndexInvariant(t *testing.T) {
	store, station, _ := plantFixture(t)
	// Mix a remote target into the Organizes kind of the station.
	store.AddReference(station, NewNumericNodeID(0, IDOrganizes), false, ExpandedNodeID{
		NodeID:      NewStringNodeID(9, "Far"),
		ServerIndex: 3,
	})

	view := newTestView(store, OperationLimits{})

	result := view.TranslateBrowsePathDirect(&BrowsePath{
		StartingNode: station,
		RelativePath: RelativePath{Elements: []RelativePathElement{{
			ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
			IncludeSubtypes: true,
			TargetName:      QualifiedName{NamespaceIndex: 2, Name: "Pump1"},
		}}},
	})

	require.Equal(t, StatusGood, result.StatusCode)
	require.NotEmpty(t, result.Targets)
	for _, target := range result.Targets {
		if target.RemainingPathIndex == RemainingPathIndexMax {
			assert.Zero(t, target.TargetID.ServerIndex)
		} else {
			assert.NotZero(t, target.TargetID.ServerIndex)
		}
	}
}

func TestTranslateInverseDirection(t *testing.T) {
	store, station, children := plantFixture(t)
	view := newTestView(store, OperationLimits{})

	// Walk from a pump back up to its station.
	result := view.TranslateBrowsePathDirect(&BrowsePath{
		StartingNode: children[0],
		RelativePath: RelativePath{Elements: []RelativePathElement{{
			ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
			IsInverse:       true,
			IncludeSubtypes: true,
			TargetName:      QualifiedName{NamespaceIndex: 2, Name: "Station"},
		}}},
	})

	require.Equal(t, StatusGood, result.StatusCode)
	require.Len(t, result.Targets, 1)
	assert.True(t, result.Targets[0].TargetID.NodeID.Equal(station))
}

func TestTranslateTooManyOperations(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{MaxNodesPerTranslateBrowsePathsToNodeIds: 1})
	session := view.NewSession()

	path := BrowsePath{
		StartingNode: station,
		RelativePath: RelativePath{Elements: []RelativePathElement{{
			TargetName: QualifiedName{NamespaceIndex: 2, Name: "Pump1"},
		}}},
	}

	resp := view.TranslateBrowsePaths(session, &TranslateBrowsePathsRequest{
		BrowsePaths: []BrowsePath{path, path},
	})
	assert.Equal(t, StatusBadTooManyOperations, resp.ResponseHeader.ServiceResult)
	assert.Nil(t, resp.Results)
}

func TestRegisterNodesEcho(t *testing.T) {
	store, _, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{MaxNodesPerRegisterNodes: 4})
	session := view.NewSession()

	ids := []NodeID{
		NewStringNodeID(2, "Pump1"),
		NewNumericNodeID(0, IDObjectsFolder),
	}

	resp := view.RegisterNodes(session, &RegisterNodesRequest{NodesToRegister: ids})
	require.Equal(t, StatusGood, resp.ResponseHeader.ServiceResult)
	require.Len(t, resp.RegisteredNodeIDs, 2)
	for i := range ids {
		assert.True(t, resp.RegisteredNodeIDs[i].Equal(ids[i]))
	}

	// Empty and oversized requests.
	empty := view.RegisterNodes(session, &RegisterNodesRequest{})
	assert.Equal(t, StatusBadNothingToDo, empty.ResponseHeader.ServiceResult)

	many := make([]NodeID, 5)
	for i := range many {
		many[i] = NewNumericNodeID(2, uint32(i))
	}
	over := view.RegisterNodes(session, &RegisterNodesRequest{NodesToRegister: many})
	assert.Equal(t, StatusBadTooManyOperations, over.ResponseHeader.ServiceResult)
}

func TestUnregisterNodes(t *testing.T) {
	store, _, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{MaxNodesPerRegisterNodes: 2})
	session := view.NewSession()

	ok := view.UnregisterNodes(session, &UnregisterNodesRequest{
		NodesToUnregister: []NodeID{NewStringNodeID(2, "Pump1")},
	})
	assert.Equal(t, StatusGood, ok.ResponseHeader.ServiceResult)

	empty := view.UnregisterNodes(session, &UnregisterNodesRequest{})
	assert.Equal(t, StatusBadNothingToDo, empty.ResponseHeader.ServiceResult)

	over := view.UnregisterNodes(session, &UnregisterNodesRequest{
		NodesToUnregister: make([]NodeID, 3),
	})
	assert.Equal(t, StatusBadTooManyOperations, over.ResponseHeader.ServiceResult)
}

func TestIsNodeInTree(t *testing.T) {
	store := NewMemoryStore()
	hasSubtype := NewNumericNodeID(0, IDHasSubtype)

	// HasComponent <- Aggregates <- HasChild <- HierarchicalReferences.
	assert.True(t, isNodeInTree(store,
		NewNumericNodeID(0, IDHasComponent),
		NewNumericNodeID(0, IDHierarchicalReferences), hasSubtype))
	assert.True(t, isNodeInTree(store,
		NewNumericNodeID(0, IDOrganizes),
		NewNumericNodeID(0, IDOrganizes), hasSubtype))
	assert.False(t, isNodeInTree(store,
		NewNumericNodeID(0, IDOrganizes),
		NewNumericNodeID(0, IDHasChild), hasSubtype))
	assert.False(t, isNodeInTree(store,
		NewNumericNodeID(0, IDHasTypeDefinition),
		NewNumericNodeID(0, IDHierarchicalReferences), hasSubtype))

	assert.Zero(t, store.Borrowed())
}

func TestIsNodeInTreeCycle(t *testing.T) {
	store := NewMemoryStore()
	hasSubtype := NewNumericNodeID(0, IDHasSubtype)

	a := NewStringNodeID(2, "A")
	b := NewStringNodeID(2, "B")
	store.AddNode(a, NodeClassReferenceType, QualifiedName{Name: "A"}, LocalizedText{Text: "A"})
	store.AddNode(b, NodeClassReferenceType, QualifiedName{Name: "B"}, LocalizedText{Text: "B"})
	// Deliberate subtype cycle between A and B.
	store.AddBidirectional(a, hasSubtype, b)
	store.AddBidirectional(b, hasSubtype, a)

	// Must terminate and report non-membership for an unrelated root.
	assert.False(t, isNodeInTree(store, a, NewNumericNodeID(0, IDReferences), hasSubtype))
	assert.Zero(t, store.Borrowed())
}
