package fake

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
)

func TestSendSyncUsesScriptedResponder(t *testing.T) {
	c, ns := NewClient()

	c.OnRequest(ns.Requests.CursorInfo, func(req sourcekitd.Dict) (sourcekitd.Dict, error) {
		return sourcekitd.Dict{ns.Keys.Kind: ValueUIDClass}, nil
	})

	resp, err := c.SendSync(context.Background(), sourcekitd.Dict{
		ns.Keys.Request: ns.Requests.CursorInfo,
	})
	require.NoError(t, err)
	kind, ok := resp.GetUID(ns.Keys.Kind)
	require.True(t, ok)
	assert.Equal(t, ValueUIDClass, kind)
}

var ValueUIDClass = sourcekitd.ValueUID(9999)

func TestSendAsyncDeliversCallbackFromOtherGoroutine(t *testing.T) {
	c, ns := NewClient()
	c.OnRequest(ns.Requests.RelatedIdents, func(req sourcekitd.Dict) (sourcekitd.Dict, error) {
		return sourcekitd.Dict{}, nil
	})

	done := make(chan struct{})
	callerGoroutine := make(chan bool, 1)

	c.SendAsync(context.Background(), sourcekitd.Dict{
		ns.Keys.Request: ns.Requests.RelatedIdents,
	}, func(resp sourcekitd.Dict, err error) {
		callerGoroutine <- true
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never invoked")
	}
	<-callerGoroutine
}

func TestNotificationHandlersReceivePushedNotifications(t *testing.T) {
	c, ns := NewClient()

	var got sourcekitd.Dict
	c.AddNotificationHandler(sourcekitd.NotificationHandlerFunc(func(n sourcekitd.Dict) {
		got = n
	}))

	c.PushNotification(sourcekitd.Dict{ns.Keys.Name: "source.notification.sema_enabled"})
	assert.Equal(t, "source.notification.sema_enabled", got[ns.Keys.Name])
}

func TestRemoveNotificationHandlerStopsDelivery(t *testing.T) {
	c, ns := NewClient()

	calls := 0
	id := c.AddNotificationHandler(sourcekitd.NotificationHandlerFunc(func(n sourcekitd.Dict) {
		calls++
	}))
	c.RemoveNotificationHandler(id)

	c.PushNotification(sourcekitd.Dict{ns.Keys.Name: "x"})
	assert.Equal(t, 0, calls)
}

func TestCrashDeliversCrashNotification(t *testing.T) {
	c, ns := NewClient()

	var gotName string
	c.AddNotificationHandler(sourcekitd.NotificationHandlerFunc(func(n sourcekitd.Dict) {
		gotName, _ = n.GetString(ns.Keys.Name)
	}))

	c.Crash()
	assert.Equal(t, "source.notification.crash", gotName)
}

func TestCloseMarksClosed(t *testing.T) {
	c, _ := NewClient()
	assert.False(t, c.Closed())
	require.NoError(t, c.Close())
	assert.True(t, c.Closed())
}

func TestSentRecordsEveryRequest(t *testing.T) {
	c, ns := NewClient()
	_, _ = c.SendSync(context.Background(), sourcekitd.Dict{ns.Keys.Request: ns.Requests.CursorInfo})
	_, _ = c.SendSync(context.Background(), sourcekitd.Dict{ns.Keys.Request: ns.Requests.EditorOpen})

	require.Len(t, c.Sent(), 2)
}
