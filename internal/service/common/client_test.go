//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	api "github.com/oshokin/work-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/work-alarm/internal/domain/alarm"
)

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestUpdateRule_NilRule asserts that a nil rule is rejected by the client.
func TestUpdateRule_NilRule(t *testing.T) {
	t.Parallel()

	c := new(Client)

	_, err := c.UpdateRule(context.Background(), nil)
	require.ErrorIs(t, err, errRuleRequired)
}

// TestClient_callContext_Actor verifies the actor travels in outgoing metadata.
func TestClient_callContext_Actor(t *testing.T) {
	t.Parallel()

	c := new(Client)
	WithActor(&alarm.Actor{Hostname: "desk", Username: "tester"})(c)

	ctx, cancel := c.callContext(context.Background())
	defer cancel()

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	require.Equal(t, []string{"tester@desk"}, md.Get(api.ActorMetadataKey))
}
