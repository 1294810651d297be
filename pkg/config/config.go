package config

import (
	"time"
)

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[sendnreceive]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

// Conversion selects how deposits are converted. DemoMode is fixed for the
// lifetime of the process.
type Conversion struct {
	DemoMode bool `envconfig:"DEMO_MODE" default:"true"`
}

//revive:disable
type Backend struct {
	ApiBase       string        `envconfig:"API_BASE" default:"http://localhost:4000"`
	ProviderUrl   string        `envconfig:"PROVIDER_URL" default:"http://localhost:4000"`
	ApiKey        string        `envconfig:"API_KEY"`
	WebhookSecret string        `envconfig:"WEBHOOK_SECRET" default:"dev-secret"`
	ProbePath     string        `envconfig:"PROBE_PATH" default:"/v1/configuration"`
	ProbeTimeout  time.Duration `envconfig:"PROBE_TIMEOUT" default:"5s"`
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

type RateProvider struct {
	ApiUrl      string        `envconfig:"API_URL"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

//revive:enable

type QuoteProvider struct {
	RateProvider
	RequestsPerMinute int `envconfig:"REQUESTS_PER_MINUTE" default:"60"`
	BurstSize         int `envconfig:"BURST_SIZE" default:"10"`
}

type RateProviders struct {
	Fiat       *RateProvider  `envconfig:"FIAT"`
	Stablecoin *RateProvider  `envconfig:"STABLECOIN"`
	Quote      *QuoteProvider `envconfig:"QUOTE"`
}

type RateRefresh struct {
	Schedule string        `envconfig:"SCHEDULE" default:"@every 5m"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"15m"`
	Prefix   string        `envconfig:"CACHE_PREFIX" default:"snr:rates:"`
}

type Preview struct {
	Debounce time.Duration `envconfig:"DEBOUNCE" default:"500ms"`
}

type Ledger struct {
	DisplayEvents int `envconfig:"DISPLAY_EVENTS" default:"5"`
}

// Redis is optional; an empty URL keeps cache and event bus in memory.
type Redis struct {
	URL    string `envconfig:"URL"`
	Stream string `envconfig:"STREAM" default:"sendnreceive.events"`
	Group  string `envconfig:"GROUP" default:"sendnreceive"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type MockBackend struct {
	Port          int    `envconfig:"PORT" default:"4000"`
	ApiKey        string `envconfig:"API_KEY"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET" default:"dev-secret"`
}

type App struct {
	Env           string         `envconfig:"APP_ENV" default:"development"`
	Server        *Server        `envconfig:"SERVER"`
	Log           *Log           `envconfig:"LOG"`
	Conversion    *Conversion    `envconfig:"CONVERSION"`
	Backend       *Backend       `envconfig:"BACKEND"`
	RateProviders *RateProviders `envconfig:"RATE_PROVIDER"`
	RateRefresh   *RateRefresh   `envconfig:"RATE_REFRESH"`
	Preview       *Preview       `envconfig:"PREVIEW"`
	Ledger        *Ledger        `envconfig:"LEDGER"`
	Redis         *Redis         `envconfig:"REDIS"`
	RateLimit     *RateLimit     `envconfig:"RATE_LIMIT"`
	MockBackend   *MockBackend   `envconfig:"MOCK_BACKEND"`
}
