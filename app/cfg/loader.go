package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Calendar configuration
	ConfigPath string `long:"config" env:"CALENDAR_CONFIG" default:"./calendar.yml" description:"Path to the calendar configuration file"`

	// Delivery
	WebhookURL string `long:"webhook-url" env:"SLACK_WEBHOOK" description:"Incoming webhook URL (digest is printed to stdout when empty)"`

	// HTTP server
	Serve        bool   `long:"serve" env:"SERVE" description:"Run the HTTP API instead of sending a single digest"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Calendar Comb/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses the process arguments. A nil Cfg with a nil error means help
// was printed.
func Load() (*Cfg, error) {
	return Parse(nil)
}

// Parse reads args instead of os.Args when args is non-nil.
func Parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &Cfg{
		ConfigPath:   raw.ConfigPath,
		WebhookURL:   raw.WebhookURL,
		Serve:        raw.Serve,
		Port:         raw.Port,
		APIAccessKey: raw.APIAccessKey,
		UserAgent:    raw.UserAgent,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}, nil
}
