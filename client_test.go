package meshwire

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshwire/meshwire-go/contracts"
	"github.com/meshwire/meshwire-go/link"
	"github.com/meshwire/meshwire-go/registry"
)

type heartbeat struct {
	contracts.BaseMessage
	Seq int `json:"seq"`
}

type heartbeatAck struct {
	contracts.BaseMessage
	Seq int `json:"seq"`
}

func TestNewClient(t *testing.T) {
	t.Run("creates client with defaults", func(t *testing.T) {
		client := NewClient()

		assert.NotNil(t, client.Router())
		assert.NotNil(t, client.TypeRegistry())
	})

	t.Run("applies options", func(t *testing.T) {
		logger := slog.Default()
		reg := registry.NewTypeRegistry()

		client := NewClient(WithLogger(logger), WithTypeRegistry(reg))

		assert.Equal(t, logger, client.logger)
		assert.Equal(t, reg, client.TypeRegistry())
	})

	t.Run("RegisterType registers by struct name", func(t *testing.T) {
		client := NewClient()

		require.NoError(t, client.RegisterType(&heartbeat{}))
		assert.True(t, client.TypeRegistry().IsRegistered("heartbeat"))
	})
}

func TestClientWithLinkBuilder(t *testing.T) {
	ctx := context.Background()
	client := NewClient()

	source, target, err := link.Bind[heartbeat, heartbeatAck](client.Router(), link.Spec{
		Name: "health", Source: "prober", Target: "responder", Capacity: 2,
	})
	require.NoError(t, err)

	require.NoError(t, source.Send(ctx, heartbeat{BaseMessage: contracts.NewBaseMessage(), Seq: 1}))

	got, err := target.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Seq)
}

func TestLoadTopology(t *testing.T) {
	const linksTOML = `
[[links]]
name = "health"
source = "prober"
target = "responder"
capacity = 2
forward_type = "heartbeat"
reverse_type = "heartbeatAck"
`

	t.Run("builds a topology from a declaration file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "links.toml")
		require.NoError(t, os.WriteFile(path, []byte(linksTOML), 0o644))

		client := NewClient()
		require.NoError(t, client.RegisterType(&heartbeat{}))
		require.NoError(t, client.RegisterType(&heartbeatAck{}))

		topo, err := client.LoadTopology(path)
		require.NoError(t, err)

		responderIn, err := topo.TakeReceiver("health", "responder")
		require.NoError(t, err)

		ctx := context.Background()
		require.NoError(t, topo.Send(ctx, "health", &heartbeat{BaseMessage: contracts.NewBaseMessage(), Seq: 2}))

		env, err := responderIn.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "heartbeat", env.TypeName)
	})

	t.Run("unregistered type names fail the build", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "links.toml")
		require.NoError(t, os.WriteFile(path, []byte(linksTOML), 0o644))

		client := NewClient()

		_, err := client.LoadTopology(path)
		assert.Error(t, err)
	})

	t.Run("missing file fails", func(t *testing.T) {
		client := NewClient()

		_, err := client.LoadTopology(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})
}
