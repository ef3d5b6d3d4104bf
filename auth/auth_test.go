package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acuvity/sharepoint-flow/apierror"
)

var testSecret = Secret{TenantID: "tenant-1", ClientID: "app-1", ClientSecret: "s3cret"}

func TestSecret_Valid(t *testing.T) {
	assert.True(t, testSecret.Valid())
	assert.False(t, Secret{}.Valid())
	assert.False(t, Secret{TenantID: "t", ClientID: "c"}.Valid())
	assert.False(t, Secret{TenantID: "t", ClientSecret: "s"}.Valid())
	assert.False(t, Secret{ClientID: "c", ClientSecret: "s"}.Valid())
}

func TestACSTokenURL(t *testing.T) {
	assert.Equal(t, "https://accounts.accesscontrol.windows.net/tenant-1/tokens/OAuth/2", ACSTokenURL("tenant-1"))
}

func TestSharePointToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "app-1@tenant-1", r.PostForm.Get("client_id"))
		assert.Equal(t, "s3cret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "00000003-0000-0ff1-ce00-000000000000/contoso.sharepoint.com@tenant-1", r.PostForm.Get("resource"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"Bearer","access_token":"acs-token","expires_in":"3599"}`))
	}))
	defer srv.Close()

	token, err := SharePointToken(context.Background(), srv.Client(), srv.URL, testSecret, "contoso.sharepoint.com")
	require.NoError(t, err)
	assert.Equal(t, "acs-token", token)
}

func TestSharePointToken_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"AADSTS7000215: Invalid client secret provided."}`))
	}))
	defer srv.Close()

	_, err := SharePointToken(context.Background(), srv.Client(), srv.URL, testSecret, "contoso.sharepoint.com")
	require.Error(t, err)

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "token", apiErr.Source)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid_client", apiErr.Code)
	assert.Contains(t, apiErr.Message, "Invalid client secret provided.")
	assert.ErrorIs(t, err, apierror.ErrUnauthorised)
}

func TestSharePointToken_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	_, err := SharePointToken(context.Background(), srv.Client(), srv.URL, testSecret, "contoso.sharepoint.com")
	require.Error(t, err)
}
