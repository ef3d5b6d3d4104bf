package sharepoint

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/acuvity/sharepoint-flow/apierror"
	"github.com/acuvity/sharepoint-flow/auth"
	"github.com/acuvity/sharepoint-flow/config"
	"github.com/acuvity/sharepoint-flow/flow"
	"github.com/acuvity/sharepoint-flow/xmljson"
)

const maxErrorBody = 4096

// acceptXML covers Atom feeds and entries as well as primitive values such
// as itemcount.
const acceptXML = "application/atom+xml, application/xml"

// listURL returns the REST endpoint of a list addressed by title, with
// suffix appended (e.g. "items").
func listURL(cfg *config.Config, args ListArgs, suffix string) string {
	title := strings.ReplaceAll(args.ListName, "'", "''")
	return fmt.Sprintf("%s/sites/%s/_api/web/lists/getbytitle('%s')/%s",
		cfg.SiteURL(args.SiteDomain),
		url.PathEscape(args.SiteCollection),
		url.PathEscape(title),
		suffix,
	)
}

// itemURL returns the display form of a created item.
func itemURL(cfg *config.Config, args ListArgs, id string) string {
	return fmt.Sprintf("%s/sites/%s/Lists/%s/DispForm.aspx?ID=%s",
		cfg.SiteURL(args.SiteDomain),
		url.PathEscape(args.SiteCollection),
		url.PathEscape(args.ListName),
		url.QueryEscape(id),
	)
}

// call fetches an ACS token, sends one request and converts the Atom/XML
// response. Any status other than expected yields *apierror.Error.
func call(ctx context.Context, cfg *config.Config, input *flow.Input, args ListArgs, method, endpoint string, body []byte, expected int) (map[string]any, error) {

	token, err := auth.SharePointToken(ctx, cfg.HTTPClient, cfg.TokenURL(args.Secret.TenantID), args.Secret, args.SiteDomain)
	if err != nil {
		return nil, err
	}

	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "error waiting for rate limiter")
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, errors.Wrap(err, "error creating request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", acceptXML)
	req.Header.Set("client-request-id", input.RequestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error sending request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading response")
	}

	zerolog.Ctx(ctx).Debug().
		Str("method", method).
		Str("url", endpoint).
		Int("status", resp.StatusCode).
		Msg("sharepoint request")

	if resp.StatusCode != expected {
		return nil, responseError(resp.StatusCode, data)
	}

	doc, err := xmljson.Convert(data)
	if err != nil {
		return nil, errors.Wrap(err, "error converting sharepoint response")
	}
	return doc, nil
}

// responseError extracts m:error/m:message from an OData error document,
// falling back to the raw body.
func responseError(statusCode int, data []byte) error {
	apiErr := &apierror.Error{Source: "sharepoint", StatusCode: statusCode}

	if doc, err := xmljson.Convert(data); err == nil {
		if msg, ok := xmljson.Text(doc, "m:error", "m:message"); ok {
			apiErr.Message = msg
			apiErr.Code, _ = xmljson.Text(doc, "m:error", "m:code")
			return apiErr
		}
	}

	body := strings.TrimSpace(string(data))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	apiErr.Message = body
	return apiErr
}
