package config

// ServerConfig defines configuration for the HTTP API shell.
type ServerConfig struct {
	ListenAddr   string   `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	DefaultSites []string `json:"default_sites,omitempty" yaml:"default_sites,omitempty"`
}

// NewDefaultServerConfig creates default server configuration
func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:   DefaultServerListenAddr,
		DefaultSites: []string{"amazon.co.jp", "louisvuitton.com"},
	}
}
