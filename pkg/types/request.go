// pkg/types/request.go
package types

import "time"

// HTTPMethod is the request method for an API ingestion call.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodPatch  HTTPMethod = "PATCH"
	MethodDelete HTTPMethod = "DELETE"
)

// ValidHTTPMethods returns all valid HTTP method values
func ValidHTTPMethods() []HTTPMethod {
	return []HTTPMethod{
		MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete,
	}
}

// IsValid checks if the method is a valid value
func (m HTTPMethod) IsValid() bool {
	for _, valid := range ValidHTTPMethods() {
		if m == valid {
			return true
		}
	}
	return false
}

// AuthType discriminates the auth configuration union.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBearer AuthType = "bearer"
	AuthAPIKey AuthType = "api_key"
	AuthBasic  AuthType = "basic"
	AuthOAuth2 AuthType = "oauth2"
)

// APIKeyLocation selects where an API key is injected.
type APIKeyLocation string

const (
	APIKeyInHeader APIKeyLocation = "header"
	APIKeyInQuery  APIKeyLocation = "query"
)

// OAuth2Config holds client-credentials exchange parameters. When
// FailOnTokenError is false a failed token exchange degrades to an
// unauthenticated request instead of failing the call.
type OAuth2Config struct {
	ClientID         string   `json:"client_id" yaml:"client_id"`
	ClientSecret     string   `json:"client_secret" yaml:"client_secret"`
	TokenURL         string   `json:"token_url" yaml:"token_url"`
	Scopes           []string `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	FailOnTokenError bool     `json:"fail_on_token_error" yaml:"fail_on_token_error"`
}

// AuthConfig is a tagged union over the supported auth schemes; Type
// selects which of the remaining fields are read.
type AuthConfig struct {
	Type AuthType `json:"type" yaml:"type"`

	// bearer
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// api_key
	Key      string         `json:"key,omitempty" yaml:"key,omitempty"`
	Value    string         `json:"value,omitempty" yaml:"value,omitempty"`
	Location APIKeyLocation `json:"location,omitempty" yaml:"location,omitempty"`

	// basic
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// oauth2
	OAuth2 *OAuth2Config `json:"oauth2,omitempty" yaml:"oauth2,omitempty"`
}

// APIRequestConfig describes one logical API request at the ingestion
// boundary. The config is owned by the caller and consumed per call.
type APIRequestConfig struct {
	URL         string            `json:"url" yaml:"url"`
	Method      HTTPMethod        `json:"method" yaml:"method"`
	Auth        AuthConfig        `json:"auth" yaml:"auth"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	QueryParams map[string]string `json:"query_params,omitempty" yaml:"query_params,omitempty"`
	Body        interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	Timeout     time.Duration     `json:"timeout" yaml:"timeout"`
	RetryCount  int               `json:"retry_count" yaml:"retry_count"`
	RetryDelay  time.Duration     `json:"retry_delay" yaml:"retry_delay"`
}

// APIResponse is the envelope returned from the API boundary. Duration
// is wall-clock time across all retry attempts.
type APIResponse struct {
	Success    bool              `json:"success"`
	Data       interface{}       `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
	StatusCode int               `json:"status_code,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Duration   time.Duration     `json:"duration"`
}

// ConnectionTestResult reports a connectivity probe against an API.
type ConnectionTestResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Latency time.Duration `json:"latency,omitempty"`
}

// ScrapeEngine selects the fetch strategy for a scrape.
type ScrapeEngine string

const (
	EngineStatic  ScrapeEngine = "static"
	EngineBrowser ScrapeEngine = "browser"
)

// SelectorConfig declares how one field is extracted from a page. A
// selector with Multiple set defines the record boundary: one record is
// produced per matched element, and the other selectors are evaluated
// scoped inside it.
type SelectorConfig struct {
	Name      string `json:"name" yaml:"name"`
	Selector  string `json:"selector" yaml:"selector"`
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Multiple  bool   `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Transform string `json:"transform,omitempty" yaml:"transform,omitempty"`
}

// ScrapePagination configures next-link traversal for a scrape.
type ScrapePagination struct {
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	NextSelector string        `json:"next_selector" yaml:"next_selector"`
	MaxPages     int           `json:"max_pages" yaml:"max_pages"`
	Delay        time.Duration `json:"delay" yaml:"delay"`
}

// ScrapingConfig describes one scrape at the inbound boundary.
type ScrapingConfig struct {
	URL             string            `json:"url" yaml:"url"`
	Engine          ScrapeEngine      `json:"engine" yaml:"engine"`
	JavaScript      bool              `json:"javascript,omitempty" yaml:"javascript,omitempty"`
	Selectors       []SelectorConfig  `json:"selectors" yaml:"selectors"`
	Pagination      *ScrapePagination `json:"pagination,omitempty" yaml:"pagination,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Cookies         map[string]string `json:"cookies,omitempty" yaml:"cookies,omitempty"`
	UserAgent       string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	Timeout         time.Duration     `json:"timeout" yaml:"timeout"`
	WaitForSelector string            `json:"wait_for_selector,omitempty" yaml:"wait_for_selector,omitempty"`
}

// ScrapingResult is the envelope returned from the scrape boundary.
type ScrapingResult struct {
	Success      bool          `json:"success"`
	Data         []Row         `json:"data,omitempty"`
	PagesScraped int           `json:"pages_scraped,omitempty"`
	TotalRecords int           `json:"total_records,omitempty"`
	Duration     time.Duration `json:"duration"`
	Error        string        `json:"error,omitempty"`
}

// URLProbe reports what a quick fetch of a URL suggests about how it
// should be scraped.
type URLProbe struct {
	Accessible         bool         `json:"accessible"`
	StatusCode         int          `json:"status_code,omitempty"`
	ContentLength      int          `json:"content_length"`
	RequiresJavaScript bool         `json:"requires_javascript"`
	RecommendedEngine  ScrapeEngine `json:"recommended_engine"`
	Error              string       `json:"error,omitempty"`
}
