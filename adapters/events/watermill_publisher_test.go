package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/require"
)

func TestPublishSignIn(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, SignInTopic)
	require.NoError(t, err)

	pub := NewWatermillPublisher(pubSub)
	require.NoError(t, pub.PublishSignIn(ctx, "0xabc", "id-1"))

	select {
	case msg := <-messages:
		var event SignInEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		require.Equal(t, "0xabc", event.Address)
		require.Equal(t, "id-1", event.IdentityID)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("sign-in event not delivered")
	}
}

func TestPublishSignOut(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, SignOutTopic)
	require.NoError(t, err)

	pub := NewWatermillPublisher(pubSub)
	require.NoError(t, pub.PublishSignOut(ctx, "0xabc", "token-1"))

	select {
	case msg := <-messages:
		var event SignOutEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		require.Equal(t, "0xabc", event.Address)
		require.Equal(t, "token-1", event.TokenID)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("sign-out event not delivered")
	}
}
