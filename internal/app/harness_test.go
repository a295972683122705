package app

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/mock/gomock"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces/mocks"
	tcommon "github.com/bobmcallan/marketctx/tests/common"
)

// testHarness provides an in-process MCP client connected to an App built
// over in-memory storage and a mock EODHD client.
type testHarness struct {
	t       *testing.T
	app     *App
	client  *client.Client
	eodhd   *mocks.MockEODHDClient
	storage *tcommon.MemoryStorage
}

// newTestHarness creates the App and an initialized in-process client.
func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	ctrl := gomock.NewController(t)
	eodhd := mocks.NewMockEODHDClient(ctrl)
	store := tcommon.NewMemoryStorage()

	config := common.NewDefaultConfig()
	a := NewAppWithDeps(config, common.NewSilentLogger(), store, eodhd)

	c, err := newInProcessClient(t, a)
	if err != nil {
		t.Fatalf("Failed to start in-process client: %v", err)
	}

	h := &testHarness{
		t:       t,
		app:     a,
		client:  c,
		eodhd:   eodhd,
		storage: store,
	}
	t.Cleanup(h.close)
	return h
}

// newInProcessClient connects an mcp-go in-process client to the App's MCP
// server and completes the initialization handshake.
func newInProcessClient(t *testing.T, a *App) (*client.Client, error) {
	t.Helper()

	c, err := client.NewInProcessClient(a.MCPServer)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		return nil, err
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// callTool invokes an MCP tool by name with the given arguments.
func (h *testHarness) callTool(name string, args map[string]any) *mcp.CallToolResult {
	h.t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := h.client.CallTool(context.Background(), req)
	if err != nil {
		h.t.Fatalf("CallTool(%s) failed: %v", name, err)
	}
	return result
}

// getTextContent extracts the text of the first content block.
func (h *testHarness) getTextContent(result *mcp.CallToolResult) string {
	h.t.Helper()
	if len(result.Content) == 0 {
		h.t.Fatalf("Result has no content blocks")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		h.t.Fatalf("Content[0] is %T, not TextContent", result.Content[0])
	}
	return tc.Text
}

func (h *testHarness) close() {
	if h.client != nil {
		h.client.Close()
	}
}
