package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

// Config pins the in-process harness to fixed addresses instead of the
// ephemeral loopback ports it picks by default. Useful when inspecting the
// relay with external tools while a scenario is paused under a debugger.
type Config struct {
	HTTPAddr   string `envconfig:"RELAY_HTTP_ADDR"`
	SocketAddr string `envconfig:"RELAY_SOCKET_ADDR"`
	// RELAY_WEB_ROOT serves real pages instead of the generated fixtures.
	WebRoot string `envconfig:"RELAY_WEB_ROOT"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
