package client

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/cockroachdb/errors"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"

	"github.com/acuvity/sharepoint-flow/auth"
)

// GraphScope is the client-credentials scope for Microsoft Graph.
const GraphScope = "https://graph.microsoft.com/.default"

// GetClient creates a new Microsoft Graph client using the provided credentials.
func GetClient(secret auth.Secret) (*msgraphsdk.GraphServiceClient, error) {

	// Get the credentials
	cred, err := azidentity.NewClientSecretCredential(
		secret.TenantID,     // Tenant ID
		secret.ClientID,     // Client ID
		secret.ClientSecret, // Client Secret
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating credentials")
	}

	return msgraphsdk.NewGraphServiceClientWithCredentials(cred, []string{GraphScope})
}
