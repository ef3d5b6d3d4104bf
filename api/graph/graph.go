package graph

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/microsoft/kiota-abstractions-go/serialization"
	jsonserialization "github.com/microsoft/kiota-serialization-json-go"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/sites"
	"github.com/rs/zerolog"

	"github.com/acuvity/sharepoint-flow/collection"
	"github.com/acuvity/sharepoint-flow/config"
	"github.com/acuvity/sharepoint-flow/flow"
)

// Extension is the extension name of the Graph nodes.
const Extension = "graph"

func init() {
	collection.RegisterNode(collection.Node{
		Name:      "getSharePointList",
		Extension: Extension,
		Tool: siteTool("getSharePointList",
			"Gets a SharePoint list by name or ID through Microsoft Graph",
			listNameOption(),
		),
		Run: runWith(GetSharePointList),
	})

	collection.RegisterNode(collection.Node{
		Name:      "getSharePointListItems",
		Extension: Extension,
		Tool: siteTool("getSharePointListItems",
			"Gets every item of a SharePoint list, fields included, through Microsoft Graph",
			listNameOption(),
		),
		Run: runWith(GetSharePointListItems),
	})

	collection.RegisterNode(collection.Node{
		Name:      "getSharePointLists",
		Extension: Extension,
		Tool: siteTool("getSharePointLists",
			"Gets every list of a SharePoint site through Microsoft Graph",
		),
		Run: runWith(GetSharePointLists),
	})

	collection.RegisterNode(collection.Node{
		Name:      "createSharePointListItem",
		Extension: Extension,
		Tool: siteTool("createSharePointListItem",
			"Creates an item in a SharePoint list through Microsoft Graph",
			listNameOption(),
			mcp.WithString("listItem",
				mcp.Required(),
				mcp.Description(`The item to create, as {"fields":{...}} or the bare fields object`),
			),
		),
		Run: runWith(CreateSharePointListItem),
	})
}

func siteTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("tenantId", mcp.Description("Tenant ID of the app registration")),
		mcp.WithString("clientId", mcp.Description("Client ID of the app registration")),
		mcp.WithString("clientSecret", mcp.Description("Client secret of the app registration")),
		mcp.WithString("siteCollectionHost",
			mcp.Required(),
			mcp.Description("Your SharePoint host, e.g. contoso.sharepoint.com"),
		),
		mcp.WithString("siteName",
			mcp.Required(),
			mcp.Description("Name or ID of the site"),
		),
		mcp.WithString("contextStore",
			mcp.Required(),
			mcp.Description("Context key where the result is stored"),
		),
		mcp.WithString(collection.ContextArgument,
			mcp.Description("Initial conversation context as a JSON object"),
		),
	}
	return mcp.NewTool(name, append(opts, extra...)...)
}

func listNameOption() mcp.ToolOption {
	return mcp.WithString("listName",
		mcp.Required(),
		mcp.Description("Name or ID of the list"),
	)
}

func runWith(fn func(context.Context, *config.Config, *flow.Input, ListArgs) error) collection.RunFunc {
	return func(ctx context.Context, cfg *config.Config, input *flow.Input, raw map[string]any) error {
		var args ListArgs
		if err := collection.DecodeArgs(raw, &args); err != nil {
			return err
		}
		args.Secret = cfg.Secret(args.Secret)
		return fn(ctx, cfg, input, args)
	}
}

// GetSharePointList stores the list resource under args.ContextStore.
func GetSharePointList(ctx context.Context, cfg *config.Config, input *flow.Input, args ListArgs) error {
	if err := args.validate(true, false); err != nil {
		return err
	}

	client, err := cfg.GraphClient(args.Secret)
	if err != nil {
		return errors.Wrap(err, "error creating graph client")
	}

	endpoint := args.listURL(client.GetAdapter().GetBaseUrl())
	zerolog.Ctx(ctx).Debug().Str("url", endpoint).Msg("graph request")

	list, err := sites.NewItemListsListItemRequestBuilder(endpoint, client.GetAdapter()).Get(ctx, nil)
	if err != nil {
		return transformError(err, "error fetching SharePoint list")
	}

	data, err := toMap(list)
	if err != nil {
		return err
	}
	return input.AddToContext(args.ContextStore, data, flow.ModeSimple)
}

// GetSharePointListItems stores {"value":[...]} holding every item of the
// list with its fields expanded, across all result pages.
func GetSharePointListItems(ctx context.Context, cfg *config.Config, input *flow.Input, args ListArgs) error {
	if err := args.validate(true, false); err != nil {
		return err
	}

	client, err := cfg.GraphClient(args.Secret)
	if err != nil {
		return errors.Wrap(err, "error creating graph client")
	}

	// Raw URLs carry their own query string.
	endpoint := args.listURL(client.GetAdapter().GetBaseUrl()) + "/items?expand=fields"
	zerolog.Ctx(ctx).Debug().Str("url", endpoint).Msg("graph request")

	result, err := sites.NewItemListsItemItemsRequestBuilder(endpoint, client.GetAdapter()).Get(ctx, nil)
	if err != nil {
		return transformError(err, "error fetching SharePoint list items")
	}

	values, err := collect[models.ListItemable](ctx, client, result, models.CreateListItemCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return err
	}
	return input.AddToContext(args.ContextStore, map[string]any{"value": values}, flow.ModeSimple)
}

// GetSharePointLists stores {"value":[...]} holding every list of the site.
func GetSharePointLists(ctx context.Context, cfg *config.Config, input *flow.Input, args ListArgs) error {
	if err := args.validate(false, false); err != nil {
		return err
	}

	client, err := cfg.GraphClient(args.Secret)
	if err != nil {
		return errors.Wrap(err, "error creating graph client")
	}

	endpoint := args.listsURL(client.GetAdapter().GetBaseUrl())
	zerolog.Ctx(ctx).Debug().Str("url", endpoint).Msg("graph request")

	result, err := sites.NewItemListsRequestBuilder(endpoint, client.GetAdapter()).Get(ctx, nil)
	if err != nil {
		return transformError(err, "error fetching SharePoint lists")
	}

	values, err := collect[models.Listable](ctx, client, result, models.CreateListCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return err
	}
	return input.AddToContext(args.ContextStore, map[string]any{"value": values}, flow.ModeSimple)
}

// CreateSharePointListItem creates args.ListItem in the list and stores the
// created item.
func CreateSharePointListItem(ctx context.Context, cfg *config.Config, input *flow.Input, args ListArgs) error {
	if err := args.validate(true, true); err != nil {
		return err
	}

	item, err := newListItem(args.ListItem)
	if err != nil {
		return err
	}

	client, err := cfg.GraphClient(args.Secret)
	if err != nil {
		return errors.Wrap(err, "error creating graph client")
	}

	endpoint := args.listURL(client.GetAdapter().GetBaseUrl()) + "/items"
	zerolog.Ctx(ctx).Debug().Str("url", endpoint).Msg("graph request")

	created, err := sites.NewItemListsItemItemsRequestBuilder(endpoint, client.GetAdapter()).Post(ctx, item, nil)
	if err != nil {
		return transformError(err, "error creating SharePoint list item")
	}

	data, err := toMap(created)
	if err != nil {
		return err
	}
	return input.AddToContext(args.ContextStore, data, flow.ModeSimple)
}

// newListItem builds the request body from the listItem argument.
func newListItem(text string) (models.ListItemable, error) {
	var body map[string]any
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		return nil, errors.Wrap(err, "listItem is not a JSON object")
	}

	values := body
	if nested, ok := body["fields"].(map[string]any); ok {
		values = nested
	}

	fields := models.NewFieldValueSet()
	fields.SetAdditionalData(values)

	item := models.NewListItem()
	item.SetFields(fields)
	return item, nil
}

// collect walks every page of a collection response.
func collect[T serialization.Parsable](ctx context.Context, client *msgraphsdk.GraphServiceClient, result serialization.Parsable, factory serialization.ParsableFactory) ([]any, error) {

	pageIterator, err := msgraphcore.NewPageIterator[T](result, client.GetAdapter(), factory)
	if err != nil {
		return nil, errors.Wrap(err, "error creating page iterator")
	}

	values := []any{}
	var convErr error
	err = pageIterator.Iterate(ctx, func(v T) bool {
		m, err := toMap(v)
		if err != nil {
			convErr = err
			return false
		}
		values = append(values, m)
		return true
	})
	if err != nil {
		return nil, transformError(err, "error iterating over results")
	}
	if convErr != nil {
		return nil, convErr
	}
	return values, nil
}

// toMap renders a Graph model as plain JSON data for the context store.
func toMap(v serialization.Parsable) (map[string]any, error) {
	writer := jsonserialization.NewJsonSerializationWriter()
	defer writer.Close()

	if err := writer.WriteObjectValue("", v); err != nil {
		return nil, errors.Wrap(err, "error serializing graph response")
	}
	content, err := writer.GetSerializedContent()
	if err != nil {
		return nil, errors.Wrap(err, "error serializing graph response")
	}

	var out map[string]any
	if err := json.Unmarshal(content, &out); err != nil {
		return nil, errors.Wrap(err, "error decoding graph response")
	}
	return out, nil
}
