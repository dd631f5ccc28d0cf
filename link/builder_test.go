package link

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshwire/meshwire-go/routing"
)

type Ping struct {
	N int
}

type Pong struct {
	N int
}

type StatusUpdate struct {
	Text string
}

func TestSpecValidation(t *testing.T) {
	router := routing.NewRouter()

	tests := []struct {
		name string
		spec Spec
	}{
		{"empty name", Spec{Source: "a", Target: "b", Capacity: 1}},
		{"empty source", Spec{Name: "l", Target: "b", Capacity: 1}},
		{"empty target", Spec{Name: "l", Source: "a", Capacity: 1}},
		{"same source and target", Spec{Name: "l", Source: "a", Target: "a", Capacity: 1}},
		{"negative capacity", Spec{Name: "l", Source: "a", Target: "b", Capacity: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Bind[Ping, Pong](router, tt.spec)
			assert.Error(t, err)
		})
	}

	t.Run("nil router", func(t *testing.T) {
		_, _, err := Bind[Ping, Pong](nil, Spec{Name: "l", Source: "a", Target: "b"})
		assert.Error(t, err)
	})
}

func TestBind(t *testing.T) {
	ctx := context.Background()

	t.Run("registers both directions and claims both receivers", func(t *testing.T) {
		router := routing.NewRouter()

		source, target, err := Bind[Ping, Pong](router, Spec{
			Name: "exchange", Source: "pinger", Target: "ponger", Capacity: 4,
		})
		require.NoError(t, err)

		assert.Equal(t, routing.EndpointID("exchange/pinger"), source.Identity())
		assert.Equal(t, routing.EndpointID("exchange/ponger"), target.Identity())
		assert.True(t, router.Claimed(source.Identity()))
		assert.True(t, router.Claimed(target.Identity()))
		assert.Len(t, router.LinkTypes("exchange"), 2)
	})

	t.Run("endpoints exchange typed messages", func(t *testing.T) {
		router := routing.NewRouter()

		source, target, err := Bind[Ping, Pong](router, Spec{
			Name: "exchange", Source: "pinger", Target: "ponger", Capacity: 2,
		})
		require.NoError(t, err)

		require.NoError(t, source.Send(ctx, Ping{N: 1}))

		got, err := target.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, Ping{N: 1}, got)

		require.NoError(t, target.Send(ctx, Pong{N: 1}))

		echo, err := source.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, Pong{N: 1}, echo)
	})

	t.Run("same payload type both ways is rejected", func(t *testing.T) {
		router := routing.NewRouter()

		_, _, err := Bind[Ping, Ping](router, Spec{
			Name: "symmetric", Source: "a", Target: "b", Capacity: 1,
		})
		assert.ErrorIs(t, err, routing.ErrAmbiguousDispatch)
	})

	t.Run("rebinding a link name fails", func(t *testing.T) {
		router := routing.NewRouter()
		spec := Spec{Name: "exchange", Source: "a", Target: "b", Capacity: 1}

		_, _, err := Bind[Ping, Pong](router, spec)
		require.NoError(t, err)

		_, _, err = Bind[Ping, Pong](router, spec)
		assert.ErrorIs(t, err, routing.ErrDuplicateRegistration)
	})

	t.Run("capacity override replaces the spec capacity", func(t *testing.T) {
		router := routing.NewRouter()

		source, target, err := Bind[Ping, Pong](router, Spec{
			Name: "exchange", Source: "a", Target: "b", Capacity: 1,
		}, WithCapacityOverride(3))
		require.NoError(t, err)

		// Three sends must complete without a receive.
		for i := 0; i < 3; i++ {
			sendCtx, cancel := context.WithTimeout(ctx, time.Second)
			require.NoError(t, source.Send(sendCtx, Ping{N: i}))
			cancel()
		}

		for i := 0; i < 3; i++ {
			got, err := target.Receive(ctx)
			require.NoError(t, err)
			assert.Equal(t, i, got.N)
		}
	})

	t.Run("closed endpoint fails the peer's sends", func(t *testing.T) {
		router := routing.NewRouter()

		source, target, err := Bind[Ping, Pong](router, Spec{
			Name: "exchange", Source: "a", Target: "b", Capacity: 1,
		})
		require.NoError(t, err)

		target.Close()

		err = source.Send(ctx, Ping{N: 0})
		assert.ErrorIs(t, err, routing.ErrSendFailed)
	})
}

func TestBindOneWay(t *testing.T) {
	ctx := context.Background()

	t.Run("broadcast pathway delivers in order", func(t *testing.T) {
		router := routing.NewRouter()

		sender, recv, err := BindOneWay[StatusUpdate](router, Spec{
			Name: "monitor", Source: "broadcaster", Target: "collector", Capacity: 8,
		})
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			require.NoError(t, sender.Send(ctx, StatusUpdate{Text: "update"}))
		}

		for i := 0; i < 3; i++ {
			_, err := recv.Receive(ctx)
			require.NoError(t, err)
		}
	})

	t.Run("reverse direction is not mapped", func(t *testing.T) {
		router := routing.NewRouter()

		_, _, err := BindOneWay[StatusUpdate](router, Spec{
			Name: "monitor", Source: "broadcaster", Target: "collector", Capacity: 1,
		})
		require.NoError(t, err)

		err = router.SendLink(ctx, "monitor", Ping{})
		assert.ErrorIs(t, err, routing.ErrLinkNotFound)
	})
}

// End-to-end exchange: pinger sends Ping{0..2}, awaiting the echoed Pong
// after each; ponger loops receiving Pings and echoing Pongs.
func TestPingPongExchange(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	router := routing.NewRouter()

	pinger, ponger, err := Bind[Ping, Pong](router, Spec{
		Name: "Exchange", Source: "Pinger", Target: "Ponger", Capacity: 8,
	})
	require.NoError(t, err)

	pongerDone := make(chan error, 1)
	go func() {
		for {
			ping, err := ponger.Receive(ctx)
			if err != nil {
				pongerDone <- err
				return
			}
			if err := ponger.Send(ctx, Pong{N: ping.N}); err != nil {
				pongerDone <- err
				return
			}
		}
	}()

	for n := 0; n < 3; n++ {
		require.NoError(t, pinger.Send(ctx, Ping{N: n}))

		pong, err := pinger.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, n, pong.N, "pong must echo the matching ping")
	}

	// Dropping the pinger's consumer ends the loop: the ponger's next echo
	// has no receiver.
	pinger.Close()
	require.NoError(t, pinger.Send(ctx, Ping{N: 3}))
	assert.ErrorIs(t, <-pongerDone, routing.ErrSendFailed)
}
