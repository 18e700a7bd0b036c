package opcua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSessionContinuationPointAccounting verifies that the slot counter
// always equals the configured cap minus the live entries.
func TestSessionContinuationPointAccounting(t *testing.T) {
	store, station, _ := plantFixture(t)
	view := newTestView(store, OperationLimits{
		MaxReferencesPerNode:            1,
		MaxContinuationPointsPerSession: 3,
	})
	session := view.NewSession()

	check := func() {
		assert.Equal(t, 3-session.LiveContinuationPoints(), session.AvailableContinuationPoints())
	}
	check()

	descr := BrowseDescription{NodeID: station, BrowseDirection: BrowseDirectionForward}

	var cps [][]byte
	for i := 0; i < 3; i++ {
		resp := view.Browse(session, browseRequest(descr))
		require.Equal(t, StatusGood, resp.Results[0].StatusCode)
		require.NotEmpty(t, resp.Results[0].ContinuationPoint)
		cps = append(cps, resp.Results[0].ContinuationPoint)
		check()
	}
	require.Equal(t, 3, session.LiveContinuationPoints())

	// Identifiers are unique within the session.
	seen := map[string]bool{}
	for _, cp := range cps {
		require.False(t, seen[string(cp)])
		seen[string(cp)] = true
	}

	// A fourth truncated browse finds no slot.
	resp := view.Browse(session, browseRequest(descr))
	assert.Equal(t, StatusBadNoContinuationPoints, resp.Results[0].StatusCode)
	check()

	// Release one, drain another, close the rest.
	release := view.BrowseNext(session, &BrowseNextRequest{
		ReleaseContinuationPoints: true,
		ContinuationPoints:        [][]byte{cps[0]},
	})
	require.Equal(t, StatusGood, release.Results[0].StatusCode)
	check()

	for cp := cps[1]; len(cp) > 0; {
		next := view.BrowseNext(session, &BrowseNextRequest{
			ContinuationPoints: [][]byte{cp},
		})
		require.Equal(t, StatusGood, next.Results[0].StatusCode)
		cp = next.Results[0].ContinuationPoint
		check()
	}

	view.CloseSession(session)
	assert.Zero(t, session.LiveContinuationPoints())
	assert.Equal(t, 3, session.AvailableContinuationPoints())
}

func TestSessionIDsIncrease(t *testing.T) {
	store := NewMemoryStore()
	view := newTestView(store, OperationLimits{})

	a := view.NewSession()
	b := view.NewSession()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, DefaultMaxContinuationPoints, a.AvailableContinuationPoints())
}
