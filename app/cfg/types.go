package cfg

type Cfg struct {
	// Calendar configuration
	ConfigPath string

	// Delivery
	WebhookURL string

	// HTTP server
	Serve        bool
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
