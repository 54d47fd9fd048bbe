package auth

import (
	"fmt"
	"slices"
	"strconv"

	"firebasebindings/internal/binding"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleProviderID identifies the Google identity provider.
const GoogleProviderID = "google.com"

// AccessType asks for online or offline (refresh token) access.
type AccessType int

const (
	AccessTypeOffline AccessType = iota + 1
	AccessTypeOnline
)

var accessTypes = binding.NewEnum("access type",
	binding.Member(AccessTypeOffline, "Offline"),
	binding.Member(AccessTypeOnline, "Online"),
)

// Prompt controls which consent screens the user sees.
type Prompt int

const (
	PromptNone Prompt = iota + 1
	PromptConsent
	PromptSelectAccount
)

var prompts = binding.NewEnum("prompt",
	binding.Member(PromptNone, "None"),
	binding.Member(PromptConsent, "Consent"),
	binding.Member(PromptSelectAccount, "SelectAccount"),
)

// ParseAccessType maps "offline" or "online".
func ParseAccessType(wire string) (AccessType, error) {
	return accessTypes.FromSnake(wire)
}

// ParsePrompt maps "none", "consent" or "select_account".
func ParsePrompt(wire string) (Prompt, error) {
	return prompts.FromSnake(wire)
}

// OAuthCustomParameters are the OpenID Connect authentication URI parameters
// Google accepts. Zero values are left out.
type OAuthCustomParameters struct {
	AccessType           AccessType
	HD                   string
	IncludeGrantedScopes *bool
	LoginHint            string
	Prompt               Prompt
	State                string
}

// ToJSON returns the parameters keyed the way the client SDKs expect them.
func (p *OAuthCustomParameters) ToJSON() (map[string]any, error) {
	accessType, err := optionalSnake(accessTypes, p.AccessType)
	if err != nil {
		return nil, err
	}
	prompt, err := optionalSnake(prompts, p.Prompt)
	if err != nil {
		return nil, err
	}
	return binding.JSONWithoutNulls(
		binding.F("accessType", accessType),
		binding.F("hd", binding.Optional(p.HD)),
		binding.F("includeGrantedScopes", binding.Deref(p.IncludeGrantedScopes)),
		binding.F("loginHint", binding.Optional(p.LoginHint)),
		binding.F("prompt", prompt),
		binding.F("state", binding.Optional(p.State)),
	), nil
}

// authCodeOptions returns the parameters as OAuth 2.0 URL options.
func (p *OAuthCustomParameters) authCodeOptions() ([]oauth2.AuthCodeOption, error) {
	var opts []oauth2.AuthCodeOption
	if p.AccessType != 0 {
		v, err := accessTypes.Snake(p.AccessType)
		if err != nil {
			return nil, err
		}
		opts = append(opts, oauth2.SetAuthURLParam("access_type", v))
	}
	if p.Prompt != 0 {
		v, err := prompts.Snake(p.Prompt)
		if err != nil {
			return nil, err
		}
		opts = append(opts, oauth2.SetAuthURLParam("prompt", v))
	}
	if p.HD != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", p.HD))
	}
	if p.IncludeGrantedScopes != nil {
		opts = append(opts, oauth2.SetAuthURLParam("include_granted_scopes", strconv.FormatBool(*p.IncludeGrantedScopes)))
	}
	if p.LoginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", p.LoginHint))
	}
	return opts, nil
}

func optionalSnake[E comparable](enum *binding.Enum[E], v E) (any, error) {
	var zero E
	if v == zero {
		return nil, nil
	}
	return enum.Snake(v)
}

// Scope is an OAuth scope identified by its URL.
type Scope struct {
	key string
}

const googleScopePrefix = "https://www.googleapis.com/auth/"

// Google scopes.
var (
	ScopeGoogleEmail   = Scope{key: googleScopePrefix + "userinfo.email"}
	ScopeGoogleProfile = Scope{key: googleScopePrefix + "userinfo.profile"}
)

var knownScopes = []Scope{ScopeGoogleEmail, ScopeGoogleProfile}

// Key is the scope URL.
func (s Scope) Key() string {
	return s.key
}

func (s Scope) String() string {
	return s.key
}

// ParseScope looks a scope up by its URL.
func ParseScope(key string) (Scope, error) {
	for _, s := range knownScopes {
		if s.key == key {
			return s, nil
		}
	}
	return Scope{}, fmt.Errorf("%w: scope %q", binding.ErrUnknownEnumValue, key)
}

// GoogleAuthProvider describes a Google sign-in request.
type GoogleAuthProvider struct {
	scopes []Scope
	params *OAuthCustomParameters
}

func NewGoogleAuthProvider() *GoogleAuthProvider {
	return &GoogleAuthProvider{}
}

func (p *GoogleAuthProvider) ProviderID() string {
	return GoogleProviderID
}

// AddScope requests an additional scope. Adding a scope twice is a no-op.
func (p *GoogleAuthProvider) AddScope(scope Scope) *GoogleAuthProvider {
	if !slices.Contains(p.scopes, scope) {
		p.scopes = append(p.scopes, scope)
	}
	return p
}

func (p *GoogleAuthProvider) Scopes() []Scope {
	return slices.Clone(p.scopes)
}

// SetCustomParameters replaces the custom parameters sent with the request.
func (p *GoogleAuthProvider) SetCustomParameters(params OAuthCustomParameters) *GoogleAuthProvider {
	p.params = &params
	return p
}

// CustomParameters returns the wire form of the custom parameters.
func (p *GoogleAuthProvider) CustomParameters() (map[string]any, error) {
	if p.params == nil {
		return map[string]any{}, nil
	}
	return p.params.ToJSON()
}

// OAuth2Config returns an OAuth 2.0 config for Google with the requested
// scopes. Without scopes it asks for email and profile.
func (p *GoogleAuthProvider) OAuth2Config(clientID, clientSecret, redirectURL string) *oauth2.Config {
	scopes := p.scopes
	if len(scopes) == 0 {
		scopes = knownScopes
	}
	keys := make([]string, len(scopes))
	for i, s := range scopes {
		keys[i] = s.key
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       keys,
		Endpoint:     google.Endpoint,
	}
}

// AuthCodeURL builds the Google consent page URL. An empty state falls back
// to the State custom parameter.
func (p *GoogleAuthProvider) AuthCodeURL(clientID, redirectURL, state string) (string, error) {
	var opts []oauth2.AuthCodeOption
	if p.params != nil {
		var err error
		if opts, err = p.params.authCodeOptions(); err != nil {
			return "", err
		}
		if state == "" {
			state = p.params.State
		}
	}
	return p.OAuth2Config(clientID, "", redirectURL).AuthCodeURL(state, opts...), nil
}
