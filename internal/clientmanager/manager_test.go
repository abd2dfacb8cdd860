package clientmanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"mcphost/internal/mcperrors"
	"mcphost/internal/mcptypes"
)

func TestSessionUnavailableBeforeConnect(t *testing.T) {
	h := New(mcptypes.ClientConfig{ClientID: "client-a", Transport: mcptypes.TransportStdio})

	_, err := h.Session()
	assert.True(t, mcperrors.IsClientUnavailable(err))
}

func TestConnectRejectsUnsupportedTransport(t *testing.T) {
	h := New(mcptypes.ClientConfig{ClientID: "client-a", Transport: "carrier-pigeon"})

	err := h.Connect(context.Background(), nil)
	assert.Error(t, err)

	status := h.Status()
	assert.False(t, status.Connected)
}

func TestCloseOnNeverConnectedIsSafe(t *testing.T) {
	h := New(mcptypes.ClientConfig{ClientID: "client-a", Transport: mcptypes.TransportStdio})
	h.Close()
	assert.False(t, h.Status().Connected)
}
