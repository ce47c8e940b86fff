// Package mcpclient calls the task tools of an MCP server and decodes their
// JSON results.
package mcpclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/todomcp/todo/internal/view"
)

// ClientName is reported to the server during initialization.
const ClientName = "todo-chat"

var ErrNoResponse = errors.New("no response from server")

// Client is a connected, initialized MCP session.
type Client struct {
	mc         *client.Client
	ServerName string
}

// StartStdio launches command as a subprocess and talks MCP over its
// stdin/stdout.
func StartStdio(ctx context.Context, version, command string, env []string, args ...string) (*Client, error) {
	mc, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", command, err)
	}
	return initialize(ctx, mc, version)
}

// StartInProcess connects to s without a subprocess.
func StartInProcess(ctx context.Context, version string, s *server.MCPServer) (*Client, error) {
	mc, err := client.NewInProcessClient(s)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-process client: %w", err)
	}
	if err := mc.Start(ctx); err != nil {
		mc.Close()
		return nil, fmt.Errorf("failed to start in-process client: %w", err)
	}
	return initialize(ctx, mc, version)
}

func initialize(ctx context.Context, mc *client.Client, version string) (*Client, error) {
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{Name: ClientName, Version: version}

	res, err := mc.Initialize(ctx, req)
	if err != nil {
		mc.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}
	return &Client{mc: mc, ServerName: res.ServerInfo.Name}, nil
}

func (c *Client) Close() error {
	return c.mc.Close()
}

// Tools returns the names of the tools the server offers.
func (c *Client) Tools(ctx context.Context) ([]string, error) {
	res, err := c.mc.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	names := make([]string, 0, len(res.Tools))
	for _, t := range res.Tools {
		names = append(names, t.Name)
	}
	return names, nil
}

// Prompt fetches a prompt and returns the text of its messages.
func (c *Client) Prompt(ctx context.Context, name string, args map[string]string) (string, error) {
	req := mcp.GetPromptRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := c.mc.GetPrompt(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to get prompt %s: %w", name, err)
	}
	var text string
	for _, m := range res.Messages {
		if t, ok := textOf(m.Content); ok {
			text += t
		}
	}
	return text, nil
}

// Execute calls a tool and decodes the JSON body of its first text content.
// Tool failures come back as an {"error":{...}} result; the error return is
// for transport failures only.
func (c *Client) Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := c.mc.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", name, err)
	}
	if len(res.Content) == 0 {
		return nil, ErrNoResponse
	}

	text, ok := textOf(res.Content[0])
	if !ok {
		return nil, fmt.Errorf("unexpected %T content from %s", res.Content[0], name)
	}

	result, err := view.DecodeResult(text)
	if err != nil {
		// Not JSON: surface the raw text as an error line.
		return map[string]any{"error": map[string]any{"code": "ERROR", "message": text}}, nil
	}
	return result, nil
}

func textOf(c mcp.Content) (string, bool) {
	switch t := c.(type) {
	case mcp.TextContent:
		return t.Text, true
	case *mcp.TextContent:
		return t.Text, true
	}
	return "", false
}
