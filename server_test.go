package opcua

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestServer runs a server with the plant fixture on a loopback port
// and returns a connected client with an active session.
func startTestServer(t *testing.T, opts ...ServerOption) (*Client, *Server) {
	t.Helper()

	store, _, _ := plantFixture(t)

	server, err := NewServer("127.0.0.1:0", store, opts...)
	require.NoError(t, err)
	require.NoError(t, server.Start())
	t.Cleanup(func() { server.Stop() })

	client, err := NewClient(server.Addr(), WithTimeout(5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	require.NoError(t, client.ConnectAndActivateSession(ctx))

	return client, server
}

func TestServerBrowseEndToEnd(t *testing.T) {
	client, _ := startTestServer(t)
	ctx := context.Background()

	refs, err := client.BrowseNode(ctx, NewStringNodeID(2, "Station"), BrowseDirectionForward)
	require.NoError(t, err)

	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.BrowseName.Name)
	}
	assert.Contains(t, names, "Pump1")
	assert.Contains(t, names, "Pump5")
}

func TestServerBrowsePaginationEndToEnd(t *testing.T) {
	client, _ := startTestServer(t, WithMaxReferencesPerNode(2))
	ctx := context.Background()

	descr := BrowseDescription{
		NodeID:          NewStringNodeID(2, "Station"),
		BrowseDirection: BrowseDirectionForward,
		ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
		IncludeSubtypes: true,
		ResultMask:      BrowseResultMaskBrowseName,
	}

	results, err := client.Browse(ctx, []BrowseDescription{descr}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, StatusGood, results[0].StatusCode)
	require.Len(t, results[0].References, 2)
	require.NotEmpty(t, results[0].ContinuationPoint)

	// Drain via the auto-paging helper; order matches a single shot.
	all, err := client.BrowseAll(ctx, descr, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, ref := range all {
		assert.Equal(t, []string{"Pump1", "Pump2", "Pump3", "Pump4", "Pump5"}[i], ref.BrowseName.Name)
	}
}

func TestServerBrowseNextReleaseEndToEnd(t *testing.T) {
	client, _ := startTestServer(t, WithMaxReferencesPerNode(2))
	ctx := context.Background()

	results, err := client.Browse(ctx, []BrowseDescription{{
		NodeID:          NewStringNodeID(2, "Station"),
		BrowseDirection: BrowseDirectionForward,
		ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
		IncludeSubtypes: true,
	}}, 0)
	require.NoError(t, err)
	cp := results[0].ContinuationPoint
	require.NotEmpty(t, cp)

	released, err := client.BrowseNext(ctx, true, [][]byte{cp})
	require.NoError(t, err)
	require.Len(t, released, 1)
	assert.Equal(t, StatusGood, released[0].StatusCode)
	assert.Empty(t, released[0].References)

	invalid, err := client.BrowseNext(ctx, false, [][]byte{cp})
	require.NoError(t, err)
	require.Len(t, invalid, 1)
	assert.Equal(t, StatusBadContinuationPointInvalid, invalid[0].StatusCode)
}

func TestServerTranslateEndToEnd(t *testing.T) {
	client, _ := startTestServer(t)
	ctx := context.Background()

	hier := NewNumericNodeID(0, IDHierarchicalReferences)
	results, err := client.TranslateBrowsePaths(ctx, []BrowsePath{{
		StartingNode: NewNumericNodeID(0, IDRootFolder),
		RelativePath: RelativePath{Elements: []RelativePathElement{
			{ReferenceTypeID: hier, IncludeSubtypes: true, TargetName: QualifiedName{Name: "Objects"}},
			{ReferenceTypeID: hier, IncludeSubtypes: true, TargetName: QualifiedName{NamespaceIndex: 2, Name: "Station"}},
		}},
	}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, StatusGood, results[0].StatusCode)
	require.Len(t, results[0].Targets, 1)
	assert.True(t, results[0].Targets[0].TargetID.NodeID.Equal(NewStringNodeID(2, "Station")))
	assert.Equal(t, RemainingPathIndexMax, results[0].Targets[0].RemainingPathIndex)
}

func TestServerTranslateNoMatchEndToEnd(t *testing.T) {
	client, _ := startTestServer(t)
	ctx := context.Background()

	results, err := client.TranslateBrowsePaths(ctx, []BrowsePath{{
		StartingNode: NewNumericNodeID(0, IDRootFolder),
		RelativePath: RelativePath{Elements: []RelativePathElement{{
			ReferenceTypeID: NewNumericNodeID(0, IDHierarchicalReferences),
			IncludeSubtypes: true,
			TargetName:      QualifiedName{Name: "DoesNotExist"},
		}}},
	}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusBadNoMatch, results[0].StatusCode)
	assert.Empty(t, results[0].Targets)
}

func TestServerRegisterNodesEndToEnd(t *testing.T) {
	client, _ := startTestServer(t)
	ctx := context.Background()

	ids := []NodeID{NewStringNodeID(2, "Pump1"), NewStringNodeID(2, "Pump2")}
	registered, err := client.RegisterNodes(ctx, ids)
	require.NoError(t, err)
	require.Len(t, registered, 2)
	for i := range ids {
		assert.True(t, registered[i].Equal(ids[i]))
	}

	require.NoError(t, client.UnregisterNodes(ctx, ids))
}

func TestServerGetEndpointsEndToEnd(t *testing.T) {
	client, _ := startTestServer(t)
	ctx := context.Background()

	endpoints, err := client.GetEndpoints(ctx)
	require.NoError(t, err)
	require.Len(t, endpoints, 1)
	assert.Equal(t, string(SecurityPolicyNone), endpoints[0].SecurityPolicyURI)
	assert.Equal(t, MessageSecurityModeNone, endpoints[0].SecurityMode)
	require.Len(t, endpoints[0].UserIdentityTokens, 1)
	assert.Equal(t, UserTokenTypeAnonymous, endpoints[0].UserIdentityTokens[0].TokenType)
}

func TestServerBrowseErrorStatusEndToEnd(t *testing.T) {
	client, _ := startTestServer(t)
	ctx := context.Background()

	results, err := client.Browse(ctx, []BrowseDescription{{
		NodeID:          NewStringNodeID(2, "missing"),
		BrowseDirection: BrowseDirectionForward,
	}}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusBadNodeIdUnknown, results[0].StatusCode)
}

func TestServerMetricsEndToEnd(t *testing.T) {
	client, server := startTestServer(t, WithMaxReferencesPerNode(2))
	ctx := context.Background()

	_, err := client.BrowseAll(ctx, BrowseDescription{
		NodeID:          NewStringNodeID(2, "Station"),
		BrowseDirection: BrowseDirectionForward,
		ReferenceTypeID: NewNumericNodeID(0, IDOrganizes),
		IncludeSubtypes: true,
	}, 0)
	require.NoError(t, err)

	m := server.Metrics()
	assert.Positive(t, m.BrowseOperations.Value())
	assert.Positive(t, m.BrowseNextOperations.Value())
	assert.Positive(t, m.ContinuationPointsCreated.Value())
	assert.Zero(t, m.ContinuationPointsActive.Value(), "drained pagination leaves no live continuation points")
}
