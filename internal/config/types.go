package config

const CurrentVersion = 1

// Config is the on-disk configuration. Zero values mean "use the default".
type Config struct {
	Version       int    `json:"version"`
	DebounceMs    int    `json:"debounceMs,omitempty"`
	Endpoint      string `json:"endpoint,omitempty"`
	Rows          int    `json:"rows,omitempty"`
	TimeoutMs     int    `json:"timeoutMs,omitempty"`
	Retries       *int   `json:"retries,omitempty"`
	MinIntervalMs int    `json:"minIntervalMs,omitempty"`
	Proxy         string `json:"proxy,omitempty"`
	Format        string `json:"format,omitempty"`
	LogFile       string `json:"logFile,omitempty"`
}
