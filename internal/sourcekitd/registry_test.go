package sourcekitd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	closed bool
}

func (s *stubClient) Resolve(name string) Key           { return 0 }
func (s *stubClient) ResolveValue(name string) ValueUID { return 0 }
func (s *stubClient) SendSync(ctx context.Context, req Dict) (Dict, error) { return nil, nil }
func (s *stubClient) SendAsync(ctx context.Context, req Dict, callback func(Dict, error)) Handle {
	return nil
}
func (s *stubClient) AddNotificationHandler(h NotificationHandler) HandlerID { return 0 }
func (s *stubClient) RemoveNotificationHandler(id HandlerID)                {}
func (s *stubClient) Namespaces() Namespaces                                { return Namespaces{} }
func (s *stubClient) Close() error                                          { s.closed = true; return nil }

func TestRegistryDedupsByCanonicalPath(t *testing.T) {
	opens := 0
	var opened *stubClient
	r := NewRegistry(func(canonical string) (Client, error) {
		opens++
		opened = &stubClient{}
		return opened, nil
	})

	c1, release1, err := r.Acquire("/tmp/fake.dylib")
	require.NoError(t, err)
	c2, release2, err := r.Acquire("/tmp/fake.dylib")
	require.NoError(t, err)

	assert.Same(t, c1, c2)
	assert.Equal(t, 1, opens)

	require.NoError(t, release1())
	assert.False(t, opened.closed, "should stay open while one reference remains")

	require.NoError(t, release2())
	assert.True(t, opened.closed, "should close once the last reference releases")
}

func TestRegistryDistinctPathsGetDistinctClients(t *testing.T) {
	r := NewRegistry(func(canonical string) (Client, error) {
		return &stubClient{}, nil
	})

	c1, _, err := r.Acquire("/tmp/a.dylib")
	require.NoError(t, err)
	c2, _, err := r.Acquire("/tmp/b.dylib")
	require.NoError(t, err)

	assert.NotSame(t, c1, c2)
}
