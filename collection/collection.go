package collection

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	"github.com/acuvity/sharepoint-flow/baggage"
	"github.com/acuvity/sharepoint-flow/config"
	"github.com/acuvity/sharepoint-flow/flow"
)

// ContextArgument is the optional tool argument carrying the initial
// conversation context as a JSON object.
const ContextArgument = "context"

// secretKeys are flat argument names folded into the "secret" object.
var secretKeys = []string{"tenantId", "clientId", "clientSecret"}

// RunFunc executes a node against an input.
type RunFunc func(ctx context.Context, cfg *config.Config, input *flow.Input, args map[string]any) error

// Node is runtime information for an extension node
type Node struct {
	Name      string
	Extension string
	Tool      mcp.Tool
	Run       RunFunc
}

// nodesMap organizes nodes in a map
type nodesMap map[string]*Node

// Nodes is a map of node name to node
var Nodes nodesMap

func init() {
	Nodes = make(nodesMap)
}

// RegisterNode registers a node in the collection.
func RegisterNode(n Node) {
	if Nodes == nil {
		panic("nodes map is not initialized")
	}
	if Nodes[n.Name] != nil {
		panic("node already registered: " + n.Name)
	}
	Nodes[n.Name] = &n
}

// Names returns the registered node names, sorted.
func Names() []string {
	names := make([]string, 0, len(Nodes))
	for name := range Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the named node with a fresh input seeded from initial.
// The input is returned even on failure so callers can inspect it.
func Execute(ctx context.Context, cfg *config.Config, name string, args map[string]any, initial map[string]any) (*flow.Input, error) {
	node, ok := Nodes[name]
	if !ok {
		return nil, errors.Newf("unknown node %q", name)
	}

	input := flow.NewInput(initial)
	logger := log.With().
		Str("node", node.Name).
		Str("extension", node.Extension).
		Str("request_id", input.RequestID).
		Logger()
	ctx = logger.WithContext(ctx)

	start := time.Now()
	logger.Debug().Msg("node started")

	if err := node.Run(ctx, cfg, input, args); err != nil {
		logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("node failed")
		return input, err
	}

	logger.Info().Dur("elapsed", time.Since(start)).Msg("node finished")
	return input, nil
}

// Processor adapts the node to an MCP tool handler. The tool result is the
// resulting context as JSON.
func (n *Node) Processor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {

	cfg := baggage.ConfigFromContext(ctx)
	if cfg == nil {
		return mcp.NewToolResultError("configuration not found"), nil
	}

	args := make(map[string]any, len(request.Params.Arguments))
	for k, v := range request.Params.Arguments {
		args[k] = v
	}

	var initial map[string]any
	if raw, ok := args[ContextArgument]; ok {
		delete(args, ContextArgument)
		var err error
		if initial, err = contextArgument(raw); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	input, err := Execute(ctx, cfg, n.Name, args, initial)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	jsonData, err := json.MarshalIndent(input.Context.Full(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode context"), err
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// DecodeArgs decodes raw node arguments into out. Flat credential keys are
// folded into "secret" unless a secret object is already present.
func DecodeArgs(raw map[string]any, out any) error {
	args := make(map[string]any, len(raw))
	for k, v := range raw {
		args[k] = v
	}

	if _, ok := args["secret"]; !ok {
		secret := make(map[string]any)
		for _, key := range secretKeys {
			if v, ok := args[key]; ok {
				secret[key] = v
				delete(args, key)
			}
		}
		if len(secret) > 0 {
			args["secret"] = secret
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       jsonTextHook,
		TagName:          "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "error creating argument decoder")
	}
	if err := decoder.Decode(args); err != nil {
		return errors.Wrap(err, "error decoding arguments")
	}
	return nil
}

// jsonTextHook lets string fields such as listItem accept a JSON object
// or array, re-encoding it as text.
func jsonTextHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Map, reflect.Slice:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, errors.Wrap(err, "error encoding argument as JSON")
		}
		return string(b), nil
	}
	return data, nil
}

func contextArgument(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, errors.Wrap(err, "context argument is not a JSON object")
		}
		return m, nil
	default:
		return nil, errors.Newf("context argument has unsupported type %T", raw)
	}
}
