package config

// APIConfig contains MVG REST API client configuration
type APIConfig struct {
	BaseURL          string  `yaml:"baseURL" validate:"required,url"`
	TimeoutSeconds   int     `yaml:"timeoutSeconds" validate:"gt=0,lte=120"`
	UserAgent        string  `yaml:"userAgent" validate:"required"`
	AcceptLanguage   string  `yaml:"acceptLanguage"`
	DefaultLatitude  float64 `yaml:"defaultLatitude" validate:"gte=-90,lte=90"`
	DefaultLongitude float64 `yaml:"defaultLongitude" validate:"gte=-180,lte=180"`
}

// StationPoint is a corridor station with EPSG:3857 plane coordinates
type StationPoint struct {
	Name string  `yaml:"name" validate:"required"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// ApproachStop is one stop on an ordered approach to the corridor target,
// with the scheduled transit time to the target in minutes
type ApproachStop struct {
	Station string `yaml:"station" validate:"required"`
	Minutes int    `yaml:"minutes" validate:"gte=0"`
}

// CorridorConfig describes the monitored line corridor: the target station,
// the station geometry used for position snapping, and the per-direction
// approach sequences ending at the target
type CorridorConfig struct {
	Target              string         `yaml:"target" validate:"required"`
	Stations            []StationPoint `yaml:"stations" validate:"min=1,dive"`
	Inbound             []ApproachStop `yaml:"inbound" validate:"min=1,dive"`
	Outbound            []ApproachStop `yaml:"outbound" validate:"min=1,dive"`
	InboundDestination  string         `yaml:"inboundDestination" validate:"required"`
	OutboundDestination string         `yaml:"outboundDestination" validate:"required"`
	OutboundTerminus    string         `yaml:"outboundTerminus" validate:"required"`
}

// LiveConfig contains the realtime position feed configuration
type LiveConfig struct {
	URL                string         `yaml:"url" validate:"required,url"`
	APIKey             string         `yaml:"apiKey"`
	Origin             string         `yaml:"origin" validate:"required,url"`
	Channel            string         `yaml:"channel" validate:"required"`
	BBox               string         `yaml:"bbox" validate:"required"`
	CollectSeconds     int            `yaml:"collectSeconds" validate:"gt=0,lte=600"`
	Lines              []string       `yaml:"lines" validate:"min=1"`
	MaxStationDistance float64        `yaml:"maxStationDistance" validate:"gt=0"`
	PerDirection       int            `yaml:"perDirection" validate:"gt=0"`
	Corridor           CorridorConfig `yaml:"corridor"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	API  APIConfig  `yaml:"api"`
	Live LiveConfig `yaml:"live"`
}
