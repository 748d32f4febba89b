package sourcekitd

// ReleasingClient wraps a Registry-acquired Client so that closing it
// calls the registry's release function instead of tearing down a
// connection other workers in this process may still be sharing.
// Worker.Shutdown calls Client.Close() unconditionally; without this
// wrapper that would close the shared dylib out from under every other
// worker using the same canonical path.
type ReleasingClient struct {
	Client
	release func() error
}

// NewReleasingClient wraps client, substituting release for its Close.
func NewReleasingClient(client Client, release func() error) *ReleasingClient {
	return &ReleasingClient{Client: client, release: release}
}

// Close invokes the registry's release function rather than the
// underlying client's own Close.
func (c *ReleasingClient) Close() error {
	return c.release()
}
