package graph

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/sites"
	"github.com/rs/zerolog"

	"github.com/acuvity/sharepoint-flow/apierror"
	"github.com/acuvity/sharepoint-flow/auth"
	"github.com/acuvity/sharepoint-flow/collection"
	"github.com/acuvity/sharepoint-flow/config"
	"github.com/acuvity/sharepoint-flow/flow"
)

// siteFields are the site properties returned by getSharePointSites.
var siteFields = []string{"id", "name", "displayName", "webUrl", "siteCollection", "description"}

// SiteArgs searches the tenant's sites.
type SiteArgs struct {
	Secret auth.Secret `mapstructure:"secret"`
	// Search is matched against site names; empty lists every site.
	Search          string `mapstructure:"search"`
	IncludeSubsites bool   `mapstructure:"includeSubsites"`
	ContextStore    string `mapstructure:"contextStore"`
}

func (a SiteArgs) validate() error {
	if !a.Secret.Valid() {
		return apierror.Invalid("Secret not defined or invalid.")
	}
	if a.ContextStore == "" {
		return apierror.Invalid("No context store defined. This is needed to save results.")
	}
	return nil
}

func init() {
	collection.RegisterNode(collection.Node{
		Name:      "getSharePointSites",
		Extension: Extension,
		Tool: mcp.NewTool("getSharePointSites",
			mcp.WithDescription("Searches SharePoint sites through Microsoft Graph, to find the siteName of a list"),
			mcp.WithString("tenantId", mcp.Description("Tenant ID of the app registration")),
			mcp.WithString("clientId", mcp.Description("Client ID of the app registration")),
			mcp.WithString("clientSecret", mcp.Description("Client secret of the app registration")),
			mcp.WithString("search",
				mcp.Description("Text matched against site names"),
			),
			mcp.WithBoolean("includeSubsites",
				mcp.Description("Also fetch the subsites of every match"),
			),
			mcp.WithString("contextStore",
				mcp.Required(),
				mcp.Description("Context key where the result is stored"),
			),
			mcp.WithString(collection.ContextArgument,
				mcp.Description("Initial conversation context as a JSON object"),
			),
		),
		Run: func(ctx context.Context, cfg *config.Config, input *flow.Input, raw map[string]any) error {
			var args SiteArgs
			if err := collection.DecodeArgs(raw, &args); err != nil {
				return err
			}
			args.Secret = cfg.Secret(args.Secret)
			return GetSharePointSites(ctx, cfg, input, args)
		},
	})
}

// GetSharePointSites stores {"value":[...]} holding every matching site,
// each with a "subsites" array when args.IncludeSubsites is set.
func GetSharePointSites(ctx context.Context, cfg *config.Config, input *flow.Input, args SiteArgs) error {
	if err := args.validate(); err != nil {
		return err
	}

	client, err := cfg.GraphClient(args.Secret)
	if err != nil {
		return errors.Wrap(err, "error creating graph client")
	}

	params := &sites.SitesRequestBuilderGetQueryParameters{
		Select: siteFields,
	}
	if args.Search != "" {
		params.Search = to.Ptr(args.Search)
	}

	zerolog.Ctx(ctx).Debug().Str("search", args.Search).Msg("graph site search")

	result, err := client.Sites().Get(ctx, &sites.SitesRequestBuilderGetRequestConfiguration{
		QueryParameters: params,
	})
	if err != nil {
		return transformError(err, "error fetching SharePoint sites")
	}

	values, err := collect[models.Siteable](ctx, client, result, models.CreateSiteCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return err
	}

	if args.IncludeSubsites {
		for _, v := range values {
			site := v.(map[string]any)
			id, _ := site["id"].(string)
			if id == "" {
				continue
			}
			subsites, err := getSubsites(ctx, client, id)
			if err != nil {
				return err
			}
			site["subsites"] = subsites
		}
	}

	return input.AddToContext(args.ContextStore, map[string]any{"value": values}, flow.ModeSimple)
}

func getSubsites(ctx context.Context, client *msgraphsdk.GraphServiceClient, siteID string) ([]any, error) {

	result, err := client.Sites().BySiteId(siteID).Sites().Get(ctx, nil)
	if err != nil {
		return nil, transformError(err, "error fetching subsites")
	}
	return collect[models.Siteable](ctx, client, result, models.CreateSiteCollectionResponseFromDiscriminatorValue)
}
