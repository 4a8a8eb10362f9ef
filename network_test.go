package simrt

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime_StreamAddressesAreCrossWired(t *testing.T) {
	rt, err := NewWithSeed(1)
	require.NoError(t, err)

	addr := Address{IP: "127.0.0.1", Port: 5900}
	var clientLocal, clientPeer, serverLocal, serverPeer Address

	err = rt.BlockOn(func(env Environment) {
		server := SpawnWithResult(env, func(env Environment) Address {
			ln, err := env.Bind(addr)
			require.NoError(t, err)
			stream, peer, err := ln.Accept()
			require.NoError(t, err)
			serverLocal = stream.LocalAddr()
			serverPeer = stream.PeerAddr()
			return peer
		})
		client := SpawnWithResult(env, func(env Environment) error {
			stream, err := env.Connect(addr)
			if err != nil {
				return err
			}
			clientLocal = stream.LocalAddr()
			clientPeer = stream.PeerAddr()
			return nil
		})
		require.NoError(t, client.Wait(env))
		acceptedFrom := server.Wait(env)
		assert.Equal(t, clientLocal, acceptedFrom)
	})

	require.NoError(t, err)
	assert.Equal(t, clientLocal, serverPeer, "peer_addr reported to listener must equal client's local_addr")
	assert.Equal(t, serverLocal, clientPeer, "client's peer_addr must equal the bound server address")
	assert.Equal(t, addr, serverLocal)
}

func TestRuntime_StreamShutdownYieldsEOFOnPeer(t *testing.T) {
	rt, err := NewWithSeed(1)
	require.NoError(t, err)

	addr := Address{IP: "127.0.0.1", Port: 6000}
	var readErr error

	err = rt.BlockOn(func(env Environment) {
		server := SpawnWithResult(env, func(env Environment) error {
			ln, err := env.Bind(addr)
			if err != nil {
				return err
			}
			stream, _, err := ln.Accept()
			if err != nil {
				return err
			}
			return stream.Shutdown()
		})
		client := SpawnWithResult(env, func(env Environment) error {
			stream, err := env.Connect(addr)
			if err != nil {
				return err
			}
			buf := make([]byte, 4)
			_, e := stream.Read(buf)
			readErr = e
			return nil
		})
		require.NoError(t, server.Wait(env))
		client.Wait(env)
	})

	require.NoError(t, err)
	assert.ErrorIs(t, readErr, io.EOF)
}

func TestRuntime_PartialReadsDrainInOrder(t *testing.T) {
	rt, err := NewWithSeed(1)
	require.NoError(t, err)

	addr := Address{IP: "127.0.0.1", Port: 6100}
	var gotFirst, gotSecond string

	err = rt.BlockOn(func(env Environment) {
		server := SpawnWithResult(env, func(env Environment) error {
			ln, err := env.Bind(addr)
			if err != nil {
				return err
			}
			stream, _, err := ln.Accept()
			if err != nil {
				return err
			}
			_, err = stream.Write([]byte("ab"))
			if err != nil {
				return err
			}
			_, err = stream.Write([]byte("cd"))
			return err
		})
		client := SpawnWithResult(env, func(env Environment) string {
			stream, err := env.Connect(addr)
			if err != nil {
				return ""
			}
			buf := make([]byte, 2)
			n1, _ := stream.Read(buf)
			gotFirst = string(buf[:n1])
			n2, _ := stream.Read(buf)
			gotSecond = string(buf[:n2])
			return ""
		})
		require.NoError(t, server.Wait(env))
		client.Wait(env)
	})

	require.NoError(t, err)
	assert.Equal(t, "ab", gotFirst)
	assert.Equal(t, "cd", gotSecond)
}

func TestRuntime_ListenerCloseWakesPendingAccept(t *testing.T) {
	rt, err := NewWithSeed(1)
	require.NoError(t, err)

	addr := Address{IP: "127.0.0.1", Port: 6200}
	var acceptErr error

	err = rt.BlockOn(func(env Environment) {
		ln, bindErr := env.Bind(addr)
		require.NoError(t, bindErr)

		accepted := SpawnWithResult(env, func(env Environment) error {
			_, _, e := ln.Accept()
			return e
		})
		require.NoError(t, env.Spawn(func(env Environment) {
			env.DelayFrom(0)
			_ = ln.Close()
		}))
		acceptErr = accepted.Wait(env)
	})

	require.NoError(t, err)
	require.Error(t, acceptErr)
	assert.True(t, errors.Is(acceptErr, ErrBrokenPipe))
}

func TestRuntime_ListenerTTLDefaultAndSet(t *testing.T) {
	rt, err := NewWithSeed(1)
	require.NoError(t, err)

	var ttlBefore, ttlAfter uint32
	err = rt.BlockOn(func(env Environment) {
		ln, err := env.Bind(Address{IP: "127.0.0.1", Port: 6300})
		require.NoError(t, err)
		ttlBefore = ln.TTL()
		ln.SetTTL(32)
		ttlAfter = ln.TTL()
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(64), ttlBefore)
	assert.Equal(t, uint32(32), ttlAfter)
}
