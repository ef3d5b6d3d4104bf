package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acuvity/sharepoint-flow/auth"
)

func TestGetClient(t *testing.T) {
	cl, err := GetClient(auth.Secret{
		TenantID:     "00000000-0000-0000-0000-000000000001",
		ClientID:     "00000000-0000-0000-0000-000000000002",
		ClientSecret: "s3cret",
	})
	require.NoError(t, err)
	require.NotNil(t, cl)
	assert.Equal(t, "https://graph.microsoft.com/v1.0", cl.GetAdapter().GetBaseUrl())
}
