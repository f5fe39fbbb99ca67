// Package transport talks to the local messaging node: a command endpoint
// for outbound sends and queries, and a websocket feed for inbound events.
// The node's protocol is opaque here; commands go out as strings and come
// back as raw JSON for the caller to decode.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Application tag attached to every send so peers can filter our traffic.
const Application = "bazaar"

const maxResponseBytes = 4 << 20

// Commander issues one node command and returns the raw JSON response.
type Commander interface {
	Command(ctx context.Context, command string) ([]byte, error)
}

// Sender delivers an encoded payload to one public key.
type Sender interface {
	Send(ctx context.Context, publicKey, data string) ([]byte, error)
}

// CommandClient is the HTTP client for the node's command API.
type CommandClient struct {
	nodeURL    string
	token      string
	httpClient *http.Client
}

func NewCommandClient(nodeURL, token string) *CommandClient {
	return &CommandClient{
		nodeURL: nodeURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Command posts one command string to the node and returns the response
// body. A non-2xx status or unreachable node is a transport failure; the
// body is returned as-is for command-level status handling by the caller.
func (c *CommandClient) Command(ctx context.Context, command string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"command": command})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.nodeURL+"/cmd", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("node command: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read node response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("node returned %d", resp.StatusCode)
	}
	return body, nil
}

// Send addresses one encoded payload to a recipient's public key via the
// node's send command.
func (c *CommandClient) Send(ctx context.Context, publicKey, data string) ([]byte, error) {
	command := fmt.Sprintf("maxima action:send publickey:%s application:%s data:%s",
		publicKey, Application, data)
	return c.Command(ctx, command)
}
