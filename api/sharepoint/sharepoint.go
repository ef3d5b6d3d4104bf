package sharepoint

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/acuvity/sharepoint-flow/collection"
	"github.com/acuvity/sharepoint-flow/config"
	"github.com/acuvity/sharepoint-flow/flow"
	"github.com/acuvity/sharepoint-flow/xmljson"
)

// Extension is the extension name of the classic REST nodes.
const Extension = "sharepoint"

func init() {
	collection.RegisterNode(collection.Node{
		Name:      "createListElement",
		Extension: Extension,
		Tool: listTool("createListElement",
			"Creates a SharePoint list element through the SharePoint REST API",
			mcp.WithString("listItem",
				mcp.Required(),
				mcp.Description("The item to add, as a JSON object"),
			),
		),
		Run: runWith(CreateListElement),
	})

	collection.RegisterNode(collection.Node{
		Name:      "getListElements",
		Extension: Extension,
		Tool: listTool("getListElements",
			"Gets the elements of a SharePoint list through the SharePoint REST API",
			mcp.WithString("contextStore",
				mcp.Description("Context key for the result (default listItems)"),
			),
		),
		Run: runWith(GetListElements),
	})

	collection.RegisterNode(collection.Node{
		Name:      "getListItemCount",
		Extension: Extension,
		Tool: listTool("getListItemCount",
			"Gets the number of elements in a SharePoint list through the SharePoint REST API",
			mcp.WithString("contextStore",
				mcp.Description("Context key for the result (default itemCount)"),
			),
		),
		Run: runWith(GetListItemCount),
	})
}

// listTool describes a node addressing one list; extra adds node specific
// arguments.
func listTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("tenantId", mcp.Description("Tenant ID of the app registration")),
		mcp.WithString("clientId", mcp.Description("Client ID of the app registration")),
		mcp.WithString("clientSecret", mcp.Description("Client secret of the app registration")),
		mcp.WithString("siteDomain",
			mcp.Required(),
			mcp.Description("Domain of your SharePoint instance, e.g. contoso.sharepoint.com"),
		),
		mcp.WithString("siteCollection",
			mcp.Required(),
			mcp.Description("The site collection containing your list"),
		),
		mcp.WithString("listName",
			mcp.Required(),
			mcp.Description("Title of your SharePoint list"),
		),
		mcp.WithString(collection.ContextArgument,
			mcp.Description("Initial conversation context as a JSON object"),
		),
	}
	return mcp.NewTool(name, append(opts, extra...)...)
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

// CreateListElement adds args.ListItem to the list and records the new
// item's display URL under itemCreated / itemUrl.
func CreateListElement(ctx context.Context, cfg *config.Config, input *flow.Input, args ListArgs) error {
	if err := args.validate(true); err != nil {
		return err
	}

	doc, err := call(ctx, cfg, input, args, http.MethodPost, listURL(cfg, args, "items"), []byte(args.ListItem), http.StatusCreated)
	if err != nil {
		return err
	}

	id, ok := xmljson.Text(doc, "entry", "content", "m:properties", "d:Id")
	if !ok {
		return errors.New("error reading created item: no d:Id in response")
	}

	if err := input.AddToContext(ItemCreatedKey, true, flow.ModeSimple); err != nil {
		return err
	}
	return input.AddToContext(ItemURLKey, itemURL(cfg, args, id), flow.ModeSimple)
}

// GetListElements stores the list's items feed, converted to JSON.
func GetListElements(ctx context.Context, cfg *config.Config, input *flow.Input, args ListArgs) error {
	if err := args.validate(false); err != nil {
		return err
	}

	doc, err := call(ctx, cfg, input, args, http.MethodGet, listURL(cfg, args, "items"), nil, http.StatusOK)
	if err != nil {
		return err
	}

	return input.AddToContext(args.storeKey(ListItemsKey), doc, flow.ModeSimple)
}

// GetListItemCount stores the list's item count as returned by SharePoint.
func GetListItemCount(ctx context.Context, cfg *config.Config, input *flow.Input, args ListArgs) error {
	if err := args.validate(false); err != nil {
		return err
	}

	doc, err := call(ctx, cfg, input, args, http.MethodGet, listURL(cfg, args, "itemcount"), nil, http.StatusOK)
	if err != nil {
		return err
	}

	count, ok := xmljson.Text(doc, "d:ItemCount")
	if !ok {
		return errors.New("error reading item count: no d:ItemCount in response")
	}
	return input.AddToContext(args.storeKey(ItemCountKey), count, flow.ModeSimple)
}
