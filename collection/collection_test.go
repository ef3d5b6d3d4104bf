package collection

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acuvity/sharepoint-flow/auth"
	"github.com/acuvity/sharepoint-flow/baggage"
	"github.com/acuvity/sharepoint-flow/config"
	"github.com/acuvity/sharepoint-flow/flow"
)

type echoArgs struct {
	Secret       auth.Secret `mapstructure:"secret"`
	ListName     string      `mapstructure:"listName"`
	ContextStore string      `mapstructure:"contextStore"`
	ListItem     string      `mapstructure:"listItem"`
}

func init() {
	RegisterNode(Node{
		Name:      "testEcho",
		Extension: "test",
		Tool:      mcp.NewTool("testEcho"),
		Run: func(ctx context.Context, cfg *config.Config, input *flow.Input, raw map[string]any) error {
			var args echoArgs
			if err := DecodeArgs(raw, &args); err != nil {
				return err
			}
			if args.ListName == "fail" {
				return errors.New("No ListName defined.")
			}
			return input.AddToContext(args.ContextStore, args.ListName, flow.ModeSimple)
		},
	})
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = "testEcho"
	req.Params.Arguments = args
	return req
}

func TestRegisterNode_Duplicate(t *testing.T) {
	assert.Panics(t, func() {
		RegisterNode(Node{Name: "testEcho"})
	})
}

func TestNames(t *testing.T) {
	assert.Contains(t, Names(), "testEcho")
}

func TestDecodeArgs_FoldsSecret(t *testing.T) {
	var args echoArgs
	err := DecodeArgs(map[string]any{
		"tenantId":     "t",
		"clientId":     "c",
		"clientSecret": "s",
		"listName":     "Tickets",
	}, &args)
	require.NoError(t, err)

	assert.Equal(t, auth.Secret{TenantID: "t", ClientID: "c", ClientSecret: "s"}, args.Secret)
	assert.Equal(t, "Tickets", args.ListName)
}

func TestDecodeArgs_NestedSecretWins(t *testing.T) {
	var args echoArgs
	err := DecodeArgs(map[string]any{
		"secret":   map[string]any{"tenantId": "nested"},
		"tenantId": "flat",
	}, &args)
	require.NoError(t, err)

	assert.Equal(t, "nested", args.Secret.TenantID)
}

func TestDecodeArgs_WeakTypes(t *testing.T) {
	var args echoArgs
	require.NoError(t, DecodeArgs(map[string]any{"listName": 42}, &args))
	assert.Equal(t, "42", args.ListName)
}

func TestDecodeArgs_ObjectAsJSONText(t *testing.T) {
	var args echoArgs
	require.NoError(t, DecodeArgs(map[string]any{
		"listItem": map[string]any{"Title": "Printer"},
	}, &args))
	assert.JSONEq(t, `{"Title":"Printer"}`, args.ListItem)

	require.NoError(t, DecodeArgs(map[string]any{"listItem": `{"Title":"Desk"}`}, &args))
	assert.Equal(t, `{"Title":"Desk"}`, args.ListItem)
}

func TestExecute(t *testing.T) {
	input, err := Execute(context.Background(), config.Default(), "testEcho",
		map[string]any{"listName": "Tickets", "contextStore": "result"},
		map[string]any{"existing": true})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"existing": true, "result": "Tickets"}, input.Context.Full())
}

func TestExecute_UnknownNode(t *testing.T) {
	_, err := Execute(context.Background(), config.Default(), "nope", nil, nil)
	assert.EqualError(t, err, `unknown node "nope"`)
}

func TestProcessor(t *testing.T) {
	ctx := baggage.WithConfig(context.Background(), config.Default())
	node := Nodes["testEcho"]

	res, err := node.Processor(ctx, callRequest(map[string]interface{}{
		"listName":     "Tickets",
		"contextStore": "list",
		"context":      `{"user":"ada"}`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &got))
	assert.Equal(t, map[string]any{"user": "ada", "list": "Tickets"}, got)
}

func TestProcessor_Errors(t *testing.T) {
	node := Nodes["testEcho"]

	res, err := node.Processor(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError, "missing configuration")

	ctx := baggage.WithConfig(context.Background(), config.Default())

	res, err = node.Processor(ctx, callRequest(map[string]interface{}{"context": "[1,2]"}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "context must be an object")

	res, err = node.Processor(ctx, callRequest(map[string]interface{}{"listName": "fail"}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "node error")
}
