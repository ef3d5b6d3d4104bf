package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/acuvity/sharepoint-flow/apierror"
)

// SharePointPrincipal is the well-known application id of SharePoint Online,
// used to build the ACS resource identifier.
const SharePointPrincipal = "00000003-0000-0ff1-ce00-000000000000"

// Secret holds the app registration credentials.
type Secret struct {
	TenantID     string `mapstructure:"tenantId" json:"tenantId"`
	ClientID     string `mapstructure:"clientId" json:"clientId"`
	ClientSecret string `mapstructure:"clientSecret" json:"clientSecret"`
}

// Valid reports whether every credential field is set.
func (s Secret) Valid() bool {
	return s.TenantID != "" && s.ClientID != "" && s.ClientSecret != ""
}

// ACSTokenURL returns the Azure ACS token endpoint for a tenant.
func ACSTokenURL(tenantID string) string {
	return fmt.Sprintf("https://accounts.accesscontrol.windows.net/%s/tokens/OAuth/2", tenantID)
}

// SharePointToken runs the ACS client-credentials grant for siteDomain and
// returns the bearer token. A rejected grant is reported as *apierror.Error
// carrying the token endpoint's response body.
func SharePointToken(ctx context.Context, client *http.Client, tokenURL string, secret Secret, siteDomain string) (string, error) {

	conf := &clientcredentials.Config{
		ClientID:     secret.ClientID + "@" + secret.TenantID,
		ClientSecret: secret.ClientSecret,
		TokenURL:     tokenURL,
		EndpointParams: map[string][]string{
			"resource": {fmt.Sprintf("%s/%s@%s", SharePointPrincipal, siteDomain, secret.TenantID)},
		},
		AuthStyle: oauth2.AuthStyleInParams,
	}

	if client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	}

	token, err := conf.Token(ctx)
	if err != nil {
		return "", tokenError(err)
	}
	if token.AccessToken == "" {
		return "", &apierror.Error{Source: "token", StatusCode: http.StatusOK, Message: "token endpoint returned no access_token"}
	}
	return token.AccessToken, nil
}

func tokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		apiErr := &apierror.Error{
			Source:  "token",
			Code:    retrieveErr.ErrorCode,
			Message: strings.TrimSpace(string(retrieveErr.Body)),
		}
		if retrieveErr.Response != nil {
			apiErr.StatusCode = retrieveErr.Response.StatusCode
		}
		return apiErr
	}
	return errors.Wrap(err, "error fetching access token")
}
