package sharepoint

import (
	"github.com/acuvity/sharepoint-flow/apierror"
	"github.com/acuvity/sharepoint-flow/auth"
)

// Default context keys, used when no contextStore is given.
const (
	ListItemsKey   = "listItems"
	ItemCountKey   = "itemCount"
	ItemCreatedKey = "itemCreated"
	ItemURLKey     = "itemUrl"
)

// ListArgs addresses a list through the classic REST API.
type ListArgs struct {
	Secret         auth.Secret `mapstructure:"secret"`
	SiteDomain     string      `mapstructure:"siteDomain"`
	SiteCollection string      `mapstructure:"siteCollection"`
	ListName       string      `mapstructure:"listName"`
	// ListItem is the JSON body for item creation.
	ListItem string `mapstructure:"listItem"`
	// ContextStore overrides the default context key of read nodes.
	ContextStore string `mapstructure:"contextStore"`
}

func (a ListArgs) validate(requireItem bool) error {
	if !a.Secret.Valid() {
		return apierror.Invalid("Secret not defined or invalid.")
	}
	if a.SiteDomain == "" {
		return apierror.Invalid("No SiteDomain defined.")
	}
	if a.SiteCollection == "" {
		return apierror.Invalid("No SiteCollection defined.")
	}
	if a.ListName == "" {
		return apierror.Invalid("No ListName defined.")
	}
	if requireItem && a.ListItem == "" {
		return apierror.Invalid("No ListItem defined")
	}
	return nil
}

func (a ListArgs) storeKey(fallback string) string {
	if a.ContextStore != "" {
		return a.ContextStore
	}
	return fallback
}
