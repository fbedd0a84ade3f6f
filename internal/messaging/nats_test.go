package messaging

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"holidaze/internal/models"

	"github.com/nats-io/stan.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurableName(t *testing.T) {
	assert.Equal(t, "venue-created-venue-indexers-durable", DurableName("venue.created", "venue-indexers"))
}

// Needs NATS Streaming: NATS_URL=nats://localhost:4222 go test ./internal/messaging/
func TestPublishSubscribe(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set")
	}
	clusterID := os.Getenv("NATS_CLUSTER_ID")
	if clusterID == "" {
		clusterID = "holidaze"
	}

	client, err := NewNATSClient(Config{URL: url, ClusterID: clusterID, ClientID: "holidaze-test"})
	require.NoError(t, err)
	defer client.Close()

	received := make(chan models.SessionChangedEvent, 1)
	sub, err := client.Subscribe(models.EventSessionChanged, func(m *stan.Msg) {
		var event models.SessionChangedEvent
		if json.Unmarshal(m.Data, &event) == nil {
			received <- event
		}
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	sent := models.SessionChangedEvent{SessionID: "s-1", Authenticated: true, Origin: client.ClientID()}
	require.NoError(t, client.Publish(models.EventSessionChanged, sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.SessionID, got.SessionID)
		assert.Equal(t, sent.Origin, got.Origin)
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}
