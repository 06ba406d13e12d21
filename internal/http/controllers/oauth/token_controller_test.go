package oauth_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tokenbridge/internal/exchange"
	oauthctrl "github.com/dropDatabas3/tokenbridge/internal/http/controllers/oauth"
	svc "github.com/dropDatabas3/tokenbridge/internal/http/services/oauth"
	"github.com/dropDatabas3/tokenbridge/internal/oidc"
)

// fakeTokenService devuelve una respuesta o error fijos y captura lo recibido.
type fakeTokenService struct {
	resp oidc.GrantResponse
	err  error

	gotGrantType string
	gotCreds     svc.ClientCredentials
	gotForm      url.Values
}

func (f *fakeTokenService) Exchange(_ context.Context, grantType string, creds svc.ClientCredentials, form url.Values) (oidc.GrantResponse, error) {
	f.gotGrantType = grantType
	f.gotCreds = creds
	f.gotForm = form
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func postForm(t *testing.T, ctrl *oauthctrl.TokenController, form url.Values, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	ctrl.Token(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code, description string) {
	t.Helper()
	var body struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error, body.Description
}

func TestToken_Success(t *testing.T) {
	fake := &fakeTokenService{resp: oidc.GrantResponse{
		"access_token":      "tok",
		"issued_token_type": "urn:ietf:params:oauth:token-type:access_token",
		"token_type":        "Bearer",
		"expires_in":        900,
	}}
	ctrl := oauthctrl.NewTokenController(fake)

	form := url.Values{
		"grant_type":    {"urn:ietf:params:oauth:grant-type:token-exchange"},
		"client_id":     {"web-app"},
		"client_secret": {"s3cr3t"},
		"subject_token": {"jwt"},
	}
	rec := postForm(t, ctrl, form)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "tok", body["access_token"])
	require.Equal(t, "Bearer", body["token_type"])

	require.Equal(t, "urn:ietf:params:oauth:grant-type:token-exchange", fake.gotGrantType)
	require.Equal(t, svc.ClientCredentials{ClientID: "web-app", ClientSecret: "s3cr3t"}, fake.gotCreds)
}

func TestToken_BasicAuthTakesPrecedence(t *testing.T) {
	fake := &fakeTokenService{resp: oidc.GrantResponse{}}
	ctrl := oauthctrl.NewTokenController(fake)

	form := url.Values{
		"grant_type":    {"urn:ietf:params:oauth:grant-type:token-exchange"},
		"client_id":     {"body-client"},
		"client_secret": {"body-secret"},
	}
	postForm(t, ctrl, form, func(r *http.Request) {
		r.SetBasicAuth("basic-client", "basic-secret")
	})

	require.Equal(t, svc.ClientCredentials{ClientID: "basic-client", ClientSecret: "basic-secret"}, fake.gotCreds)
}

func TestToken_MethodNotAllowed(t *testing.T) {
	ctrl := oauthctrl.NewTokenController(&fakeTokenService{})

	req := httptest.NewRequest(http.MethodGet, "/oauth2/token", nil)
	rec := httptest.NewRecorder()
	ctrl.Token(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "POST", rec.Header().Get("Allow"))
	code, _ := decodeError(t, rec)
	require.Equal(t, "invalid_request", code)
}

func TestToken_InvalidClientSets401AndChallenge(t *testing.T) {
	ctrl := oauthctrl.NewTokenController(&fakeTokenService{err: svc.ErrTokenInvalidClient})

	rec := postForm(t, ctrl, url.Values{"grant_type": {"x"}})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, `Basic realm="token"`, rec.Header().Get("WWW-Authenticate"))
	code, _ := decodeError(t, rec)
	require.Equal(t, "invalid_client", code)
}

func TestToken_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing params", svc.ErrTokenInvalidRequest, http.StatusBadRequest, "invalid_request"},
		{"unsupported grant", svc.ErrTokenUnsupportedGrantType, http.StatusBadRequest, "unsupported_grant_type"},
		{"handler invalid_grant", fmt.Errorf("%w: subject token not acceptable", exchange.ErrInvalidGrant), http.StatusBadRequest, "invalid_grant"},
		{"handler invalid_target", fmt.Errorf("%w: audience not permitted", exchange.ErrInvalidTarget), http.StatusBadRequest, "invalid_target"},
		{"handler invalid_client", exchange.ErrInvalidClient, http.StatusUnauthorized, "invalid_client"},
		{"unknown error", fmt.Errorf("boom"), http.StatusInternalServerError, "server_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := oauthctrl.NewTokenController(&fakeTokenService{err: tc.err})
			rec := postForm(t, ctrl, url.Values{"grant_type": {"x"}})

			require.Equal(t, tc.wantStatus, rec.Code)
			code, _ := decodeError(t, rec)
			require.Equal(t, tc.wantCode, code)
		})
	}
}

func TestToken_ScopeErrorNamesOffendingScopes(t *testing.T) {
	ctrl := oauthctrl.NewTokenController(&fakeTokenService{
		err: &exchange.ScopeError{Scopes: []string{"admin", "billing"}},
	})

	rec := postForm(t, ctrl, url.Values{"grant_type": {"x"}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	code, desc := decodeError(t, rec)
	require.Equal(t, "invalid_scope", code)
	require.Equal(t, "scopes not permitted: admin billing", desc)
}

func TestToken_HandlerDetailStrippedFromDescription(t *testing.T) {
	ctrl := oauthctrl.NewTokenController(&fakeTokenService{
		err: fmt.Errorf("%w: multiple audience values are not supported", exchange.ErrInvalidRequest),
	})

	rec := postForm(t, ctrl, url.Values{"grant_type": {"x"}})

	code, desc := decodeError(t, rec)
	require.Equal(t, "invalid_request", code)
	require.Equal(t, "multiple audience values are not supported", desc)
}
