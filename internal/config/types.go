package config

// ServerConfig contains the HTTP configuration API settings
type ServerConfig struct {
	Port    int      `yaml:"port" validate:"gt=0"`
	APIKeys []string `yaml:"apiKeys"`
}

// MBTAConfig contains the MBTA V3 API settings
type MBTAConfig struct {
	BaseURL   string `yaml:"baseURL" validate:"omitempty,url"`
	APIKey    string `yaml:"apiKey"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
}

// GTFSRTConfig selects an optional GTFS-Realtime trip updates feed as the
// live prediction source instead of the V3 predictions endpoint.
type GTFSRTConfig struct {
	TripUpdatesURL string `yaml:"tripUpdatesURL" validate:"omitempty,url"`
}

// DisplayConfig contains the TRMNL display delivery settings
type DisplayConfig struct {
	WebhookURL              string `yaml:"webhookURL" validate:"omitempty,url"`
	PollIntervalS           int    `yaml:"pollIntervalS" validate:"gte=0"`
	PredictionsPerDirection int    `yaml:"predictionsPerDirection" validate:"gte=0,lte=9"`
	MaxStops                int    `yaml:"maxStops" validate:"gte=0,lte=12"`
	HourlySendCap           int    `yaml:"hourlySendCap" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server  ServerConfig  `yaml:"server" validate:"required"`
	MBTA    MBTAConfig    `yaml:"mbta"`
	GTFSRT  GTFSRTConfig  `yaml:"gtfsrt"`
	Display DisplayConfig `yaml:"display"`
	DBPath  string        `yaml:"dbPath"`
}
