package opcua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeIDCodec(t *testing.T) {
	cases := []NodeID{
		NewNumericNodeID(0, 84),      // two-byte form
		NewNumericNodeID(3, 1025),    // four-byte form
		NewNumericNodeID(300, 70000), // full numeric form
		NewStringNodeID(2, "Pump1"),  // string form
		{Type: NodeIDTypeGUID, Namespace: 1, GUID: [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}},
		{Type: NodeIDTypeOpaque, Namespace: 4, Opaque: []byte{0xde, 0xad}},
	}

	for _, id := range cases {
		e := NewEncoder()
		e.WriteNodeID(id)

		d := NewDecoder(e.Bytes())
		decoded, err := d.ReadNodeID()
		require.NoError(t, err, "node id %s", id.Text())
		assert.True(t, id.Equal(decoded), "node id %s", id.Text())
		assert.Zero(t, d.Remaining())
	}
}

func TestExpandedNodeIDCodec(t *testing.T) {
	cases := []ExpandedNodeID{
		{NodeID: NewNumericNodeID(0, 85)},
		{NodeID: NewStringNodeID(2, "Remote"), ServerIndex: 7},
		{NodeID: NewNumericNodeID(1, 42), NamespaceURI: "urn:factory:ns", ServerIndex: 3},
	}

	for _, x := range cases {
		e := NewEncoder()
		e.WriteExpandedNodeID(x)

		d := NewDecoder(e.Bytes())
		decoded, err := d.ReadExpandedNodeID()
		require.NoError(t, err)
		assert.True(t, x.NodeID.Equal(decoded.NodeID))
		assert.Equal(t, x.NamespaceURI, decoded.NamespaceURI)
		assert.Equal(t, x.ServerIndex, decoded.ServerIndex)
		assert.Zero(t, d.Remaining())
	}
}

func TestBrowseRequestCodec(t *testing.T) {
	req := &BrowseRequest{
		RequestHeader: RequestHeader{
			AuthenticationToken: NewNumericNodeID(0, 99),
			Timestamp:           1234567890,
			RequestHandle:       7,
			TimeoutHint:         5000,
		},
		RequestedMaxReferencesPerNode: 25,
		NodesToBrowse: []BrowseDescription{
			{
				NodeID:          NewNumericNodeID(0, IDObjectsFolder),
				BrowseDirection: BrowseDirectionForward,
				ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
				IncludeSubtypes: true,
				NodeClassMask:   uint32(NodeClassObject | NodeClassVariable),
				ResultMask:      BrowseResultMaskAll,
			},
			{
				NodeID:          NewStringNodeID(2, "Station"),
				BrowseDirection: BrowseDirectionBoth,
			},
		},
	}

	data, err := req.Encode()
	require.NoError(t, err)

	var decoded BrowseRequest
	require.NoError(t, decoded.Decode(data))

	assert.Equal(t, req.RequestHeader.RequestHandle, decoded.RequestHeader.RequestHandle)
	assert.True(t, decoded.RequestHeader.AuthenticationToken.Equal(req.RequestHeader.AuthenticationToken))
	assert.Equal(t, uint32(25), decoded.RequestedMaxReferencesPerNode)
	require.Len(t, decoded.NodesToBrowse, 2)
	assert.True(t, decoded.NodesToBrowse[0].NodeID.Equal(req.NodesToBrowse[0].NodeID))
	assert.True(t, decoded.NodesToBrowse[0].IncludeSubtypes)
	assert.Equal(t, BrowseResultMaskAll, decoded.NodesToBrowse[0].ResultMask)
	assert.Equal(t, BrowseDirectionBoth, decoded.NodesToBrowse[1].BrowseDirection)
}

func TestBrowseResponseCodecEmptyVsNull(t *testing.T) {
	resp := &BrowseResponse{
		Results: []BrowseResult{
			{StatusCode: StatusGood, References: []ReferenceDescription{}},
			{StatusCode: StatusBadNodeIdUnknown, References: nil},
		},
	}

	data, err := resp.Encode()
	require.NoError(t, err)

	var decoded BrowseResponse
	require.NoError(t, decoded.Decode(data))
	require.Len(t, decoded.Results, 2)

	// The empty array survives the wire as a non-nil empty slice; the null
	// array stays nil.
	assert.NotNil(t, decoded.Results[0].References)
	assert.Len(t, decoded.Results[0].References, 0)
	assert.Nil(t, decoded.Results[1].References)
	assert.Equal(t, StatusBadNodeIdUnknown, decoded.Results[1].StatusCode)
}

func TestBrowseResponseCodecReferences(t *testing.T) {
	resp := &BrowseResponse{
		Results: []BrowseResult{{
			StatusCode:        StatusGood,
			ContinuationPoint: []byte{1, 2, 3, 4},
			References: []ReferenceDescription{{
				ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
				IsForward:       true,
				NodeID:          ExpandedNodeID{NodeID: NewStringNodeID(2, "Pump1")},
				BrowseName:      QualifiedName{NamespaceIndex: 2, Name: "Pump1"},
				DisplayName:     LocalizedText{Text: "Pump 1"},
				NodeClass:       NodeClassObject,
				TypeDefinition:  ExpandedNodeID{NodeID: NewNumericNodeID(0, IDFolderType)},
			}},
		}},
	}

	data, err := resp.Encode()
	require.NoError(t, err)

	var decoded BrowseResponse
	require.NoError(t, decoded.Decode(data))
	require.Len(t, decoded.Results, 1)
	require.Len(t, decoded.Results[0].References, 1)

	ref := decoded.Results[0].References[0]
	assert.True(t, ref.ReferenceTypeID.Equal(NewNumericNodeID(0, IDOrganizes)))
	assert.True(t, ref.IsForward)
	assert.Equal(t, "Pump1", ref.NodeID.NodeID.String)
	assert.Equal(t, "Pump 1", ref.DisplayName.Text)
	assert.Equal(t, NodeClassObject, ref.NodeClass)
	assert.True(t, ref.TypeDefinition.NodeID.Equal(NewNumericNodeID(0, IDFolderType)))
	assert.Equal(t, []byte{1, 2, 3, 4}, decoded.Results[0].ContinuationPoint)
}

func TestBrowseNextRequestCodec(t *testing.T) {
	req := &BrowseNextRequest{
		ReleaseContinuationPoints: true,
		ContinuationPoints:        [][]byte{{0xaa, 0xbb}, {0xcc}},
	}

	data, err := req.Encode()
	require.NoError(t, err)

	var decoded BrowseNextRequest
	require.NoError(t, decoded.Decode(data))
	assert.True(t, decoded.ReleaseContinuationPoints)
	require.Len(t, decoded.ContinuationPoints, 2)
	assert.Equal(t, []byte{0xaa, 0xbb}, decoded.ContinuationPoints[0])
}

func TestTranslateBrowsePathsCodec(t *testing.T) {
	req := &TranslateBrowsePathsRequest{
		BrowsePaths: []BrowsePath{{
			StartingNode: NewNumericNodeID(0, IDRootFolder),
			RelativePath: RelativePath{Elements: []RelativePathElement{
				{
					ReferenceTypeID: NewNumericNodeID(0, IDHierarchicalReferences),
					IncludeSubtypes: true,
					TargetName:      QualifiedName{Name: "Objects"},
				},
				{
					ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
					IsInverse:       true,
					TargetName:      QualifiedName{NamespaceIndex: 2, Name: "Station"},
				},
			}},
		}},
	}

	data, err := req.Encode()
	require.NoError(t, err)

	var decoded TranslateBrowsePathsRequest
	require.NoError(t, decoded.Decode(data))
	require.Len(t, decoded.BrowsePaths, 1)
	elems := decoded.BrowsePaths[0].RelativePath.Elements
	require.Len(t, elems, 2)
	assert.True(t, elems[0].IncludeSubtypes)
	assert.True(t, elems[1].IsInverse)
	assert.Equal(t, "Station", elems[1].TargetName.Name)

	resp := &TranslateBrowsePathsResponse{
		Results: []BrowsePathResult{{
			StatusCode: StatusGood,
			Targets: []BrowsePathTarget{
				{TargetID: ExpandedNodeID{NodeID: NewStringNodeID(2, "Station")}, RemainingPathIndex: RemainingPathIndexMax},
				{TargetID: ExpandedNodeID{NodeID: NewStringNodeID(3, "Far"), ServerIndex: 7}, RemainingPathIndex: 1},
			},
		}},
	}

	respData, err := resp.Encode()
	require.NoError(t, err)

	var decodedResp TranslateBrowsePathsResponse
	require.NoError(t, decodedResp.Decode(respData))
	require.Len(t, decodedResp.Results, 1)
	targets := decodedResp.Results[0].Targets
	require.Len(t, targets, 2)
	assert.Equal(t, RemainingPathIndexMax, targets[0].RemainingPathIndex)
	assert.Equal(t, uint32(7), targets[1].TargetID.ServerIndex)
	assert.Equal(t, uint32(1), targets[1].RemainingPathIndex)
}

func TestRegisterNodesCodec(t *testing.T) {
	req := &RegisterNodesRequest{
		NodesToRegister: []NodeID{
			NewStringNodeID(2, "Pump1"),
			NewNumericNodeID(0, IDServer),
		},
	}

	data, err := req.Encode()
	require.NoError(t, err)

	var decoded RegisterNodesRequest
	require.NoError(t, decoded.Decode(data))
	require.Len(t, decoded.NodesToRegister, 2)
	assert.True(t, decoded.NodesToRegister[0].Equal(req.NodesToRegister[0]))

	resp := &RegisterNodesResponse{RegisteredNodeIDs: req.NodesToRegister}
	respData, err := resp.Encode()
	require.NoError(t, err)

	var decodedResp RegisterNodesResponse
	require.NoError(t, decodedResp.Decode(respData))
	require.Len(t, decodedResp.RegisteredNodeIDs, 2)
}

func TestResponseHeaderBadServiceResult(t *testing.T) {
	resp := &BrowseResponse{}
	resp.ResponseHeader.ServiceResult = StatusBadTooManyOperations

	data, err := resp.Encode()
	require.NoError(t, err)

	var decoded BrowseResponse
	err = decoded.Decode(data)
	require.Error(t, err)
	assert.True(t, IsStatusCode(err, StatusBadTooManyOperations))
}
