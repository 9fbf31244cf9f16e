package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to start the monitor.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Podboost.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop the monitor.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Podboost.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Podboost.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckNow runs one donation check and returns its outcome.
func (c *Client) CheckNow() (*CheckResponse, error) {
	var resp CheckResponse
	if err := c.client.Call("Podboost.CheckNow", CheckRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EpisodeList returns stored episodes optionally filtered by status names.
func (c *Client) EpisodeList(statuses []string) (*EpisodeListResponse, error) {
	var resp EpisodeListResponse
	req := EpisodeListRequest{Statuses: statuses}
	if err := c.client.Call("Podboost.EpisodeList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EpisodeShow returns details for a single episode by number.
func (c *Client) EpisodeShow(number int) (*EpisodeShowResponse, error) {
	var resp EpisodeShowResponse
	req := EpisodeShowRequest{Number: number}
	if err := c.client.Call("Podboost.EpisodeShow", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EpisodeSync refreshes the episode cache from the host.
func (c *Client) EpisodeSync() (*EpisodeSyncResponse, error) {
	var resp EpisodeSyncResponse
	if err := c.client.Call("Podboost.EpisodeSync", EpisodeSyncRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EpisodeStats returns episode counts keyed by status name.
func (c *Client) EpisodeStats() (*EpisodeStatsResponse, error) {
	var resp EpisodeStatsResponse
	if err := c.client.Call("Podboost.EpisodeStats", EpisodeStatsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Podboost.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("Podboost.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Podboost.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
