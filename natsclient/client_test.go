package natsclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionStatus_String(t *testing.T) {
	tests := []struct {
		status   ConnectionStatus
		expected string
	}{
		{StatusDisconnected, "disconnected"},
		{StatusConnecting, "connecting"},
		{StatusConnected, "connected"},
		{StatusReconnecting, "reconnecting"},
		{StatusClosed, "closed"},
		{ConnectionStatus(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.status.String())
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	assert.Equal(t, "nats://localhost:4222", client.URL())
	assert.Equal(t, StatusDisconnected, client.Status())
	assert.False(t, client.IsHealthy())
	assert.Nil(t, client.Conn())
	assert.Equal(t, -1, client.maxReconnects)
	assert.Equal(t, 2*time.Second, client.reconnectWait)
}

func TestNewClient_Options(t *testing.T) {
	logger := slog.Default()
	client, err := NewClient("nats://localhost:4222",
		WithLogger(logger),
		WithName("itemstore"),
		WithMaxReconnects(5),
		WithReconnectWait(time.Second),
		WithPingInterval(10*time.Second),
		WithTimeout(3*time.Second),
		WithDrainTimeout(15*time.Second),
	)
	require.NoError(t, err)

	assert.Equal(t, "itemstore", client.clientName)
	assert.Equal(t, 5, client.maxReconnects)
	assert.Equal(t, time.Second, client.reconnectWait)
	assert.Equal(t, 10*time.Second, client.pingInterval)
	assert.Equal(t, 3*time.Second, client.timeout)
	assert.Equal(t, 15*time.Second, client.drainTimeout)
}

func TestNewClient_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  ClientOption
	}{
		{"nil logger", WithLogger(nil)},
		{"zero reconnect wait", WithReconnectWait(0)},
		{"negative ping interval", WithPingInterval(-time.Second)},
		{"zero timeout", WithTimeout(0)},
		{"zero drain timeout", WithDrainTimeout(0)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewClient("nats://localhost:4222", test.opt)
			assert.Error(t, err)
		})
	}
}

func TestJetStream_NotConnected(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	_, err = client.JetStream()
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestIsAlreadyExistsError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"already exists message", fmt.Errorf("bucket already exists"), true},
		{"already in use message", fmt.Errorf("stream name already in use"), true},
		{"other error", errors.New("connection refused"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, isAlreadyExistsError(test.err))
		})
	}
}

func TestClose_BeforeConnect(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	require.NoError(t, client.Close(context.Background()))
	assert.Equal(t, StatusClosed, client.Status())

	// Second close is a no-op
	require.NoError(t, client.Close(context.Background()))
}
