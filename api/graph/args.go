package graph

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/acuvity/sharepoint-flow/apierror"
	"github.com/acuvity/sharepoint-flow/auth"
)

// ListArgs addresses a list through Microsoft Graph.
type ListArgs struct {
	Secret auth.Secret `mapstructure:"secret"`
	// SiteCollectionHost is the SharePoint host, e.g. contoso.sharepoint.com.
	SiteCollectionHost string `mapstructure:"siteCollectionHost"`
	// SiteName is the name or ID of the site.
	SiteName string `mapstructure:"siteName"`
	// ListName is the name or ID of the list.
	ListName string `mapstructure:"listName"`
	// ListItem is the item to create, either {"fields":{...}} or the bare
	// fields object.
	ListItem     string `mapstructure:"listItem"`
	ContextStore string `mapstructure:"contextStore"`
}

func (a ListArgs) validate(requireList, requireItem bool) error {
	if !a.Secret.Valid() {
		return apierror.Invalid("Secret not defined or invalid.")
	}
	if a.SiteCollectionHost == "" {
		return apierror.Invalid("No siteCollectionsHost defined.")
	}
	if a.SiteName == "" {
		return apierror.Invalid("No siteName / siteID defined.")
	}
	if requireList && a.ListName == "" {
		return apierror.Invalid("No listName / listID defined.")
	}
	if requireItem && a.ListItem == "" {
		return apierror.Invalid("No listItem defined.")
	}
	if a.ContextStore == "" {
		return apierror.Invalid("No context store defined. This is needed to save results.")
	}
	return nil
}

// listsURL returns the raw Graph URL of the site's lists collection,
// addressed by host and site path.
func (a ListArgs) listsURL(baseURL string) string {
	return fmt.Sprintf("%s/sites/%s:/sites/%s:/lists",
		baseURL,
		url.PathEscape(a.SiteCollectionHost),
		escapePath(a.SiteName),
	)
}

// escapePath escapes each segment of a server-relative path such as a
// subsite "hr/team", keeping the separators.
func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func (a ListArgs) listURL(baseURL string) string {
	return a.listsURL(baseURL) + "/" + url.PathEscape(a.ListName)
}
