package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/playi/play-silhouette/core"
)

const defaultTimeout = 10 * time.Second

// ErrorClassifier inspects a response body for a provider-specific error
// envelope. It returns a ProfileError when the body encodes one, nil
// otherwise. Classification is a structural test on the envelope shape,
// never a heuristic, and always runs before the parser.
type ErrorClassifier func(body json.RawMessage) *core.ProfileError

// Authorizer applies a provider's auth-header convention to a request.
type Authorizer func(req *http.Request, accessToken string)

// BearerAuthorizer sets the standard Bearer Authorization header.
func BearerAuthorizer(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
}

// OAuth2Provider is the generic profile-retrieval provider. A concrete
// provider is this struct configured with an endpoint template, an
// auth-header convention, an error classifier and a parser; adding an
// identity service never touches the shared plumbing below.
type OAuth2Provider struct {
	id        string
	settings  core.OAuth2Settings
	client    *http.Client
	parser    core.ProfileParser
	classify  ErrorClassifier
	authorize Authorizer
}

// Option configures an OAuth2Provider at construction.
type Option func(*OAuth2Provider)

// WithHTTPClient injects the transport used for provider API calls. The
// client must be safe for concurrent use; timeouts, retries and TLS policy
// belong to it, not to the provider.
func WithHTTPClient(client *http.Client) Option {
	return func(p *OAuth2Provider) { p.client = client }
}

// WithParser overrides the provider's default profile parser.
func WithParser(parser core.ProfileParser) Option {
	return func(p *OAuth2Provider) { p.parser = parser }
}

// NewOAuth2Provider assembles a provider from its variable parts. A nil
// authorizer falls back to the Bearer convention.
func NewOAuth2Provider(id string, settings core.OAuth2Settings, parser core.ProfileParser, classify ErrorClassifier, authorize Authorizer, opts ...Option) *OAuth2Provider {
	p := &OAuth2Provider{
		id:        id,
		settings:  settings,
		parser:    parser,
		classify:  classify,
		authorize: authorize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: defaultTimeout}
	}
	if p.authorize == nil {
		p.authorize = BearerAuthorizer
	}
	return p
}

func (p *OAuth2Provider) ID() string { return p.id }

// Settings returns a copy of the provider's current settings.
func (p *OAuth2Provider) Settings() core.OAuth2Settings {
	return cloneSettings(p.settings)
}

// WithSettings returns a new provider holding the transformed settings and
// sharing the transport handle. The receiver keeps its settings unchanged.
func (p *OAuth2Provider) WithSettings(transform func(core.OAuth2Settings) core.OAuth2Settings) core.SocialProvider {
	cp := *p
	cp.settings = transform(cloneSettings(p.settings))
	return &cp
}

// RetrieveProfile performs the GET, classifies the body for a provider error
// envelope and only then hands the body to the parser.
func (p *OAuth2Provider) RetrieveProfile(ctx context.Context, auth core.OAuth2Info) (*core.Profile, error) {
	status, body, err := p.get(ctx, auth.AccessToken)
	if err != nil {
		return nil, &core.TransportError{ProviderID: p.id, Err: err}
	}
	if apiErr := p.classify(body); apiErr != nil {
		apiErr.ProviderID = p.id
		return nil, apiErr
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, &core.TransportError{ProviderID: p.id, StatusCode: status}
	}
	return p.parser.Parse(body, auth)
}

func (p *OAuth2Provider) get(ctx context.Context, accessToken string) (int, json.RawMessage, error) {
	url := p.settings.APIURL
	if strings.Contains(url, "%s") {
		url = fmt.Sprintf(url, accessToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	p.authorize(req, accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

func cloneSettings(s core.OAuth2Settings) core.OAuth2Settings {
	if s.Scopes != nil {
		s.Scopes = append([]string(nil), s.Scopes...)
	}
	return s
}

// errorCode accepts both numeric and string provider error codes; numbers
// are rendered without a decimal point so they substitute verbatim into the
// error message format.
type errorCode string

func (c *errorCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = errorCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = errorCode(n.String())
	return nil
}

// codeMessageClassifier matches the {"error":{"code":…,"message":…}} envelope
// shared by the Microsoft and Google APIs. The structural test is a top-level
// "error" object; a profile field that merely happens to be named "error"
// but is not an object fails the unmarshal and is not classified.
func codeMessageClassifier(body json.RawMessage) *core.ProfileError {
	var envelope struct {
		Error *struct {
			Code    errorCode `json:"code"`
			Message string    `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return nil
	}
	return &core.ProfileError{
		Code:    string(envelope.Error.Code),
		Message: envelope.Error.Message,
	}
}
