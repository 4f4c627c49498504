package chatserver

import "github.com/nyaruka/ezconf"

// Config is our top level configuration object
type Config struct {
	Address   string `help:"the network interface address the server will bind to"`
	Port      int    `help:"the port the server will listen on"`
	DB        string `help:"the SQLite database file used for users and message history, empty for in-memory storage"`
	SentryDSN string `help:"the DSN used for logging errors to Sentry"`
	LogLevel  string `help:"the logging level the server should use"`
	Version   string `help:"the version reported by the status endpoint"`
}

// NewConfig returns a new default configuration object
func NewConfig() *Config {
	return &Config{
		Address:  "",
		Port:     8080,
		LogLevel: "debug",
		Version:  "Dev",
	}
}

// LoadConfig loads our configuration from the passed in filename
func LoadConfig(filename string) *Config {
	config := NewConfig()
	loader := ezconf.NewLoader(
		config,
		"chat-server", "Chat Server - a real-time group chat hub over WebSockets",
		[]string{filename},
	)

	loader.MustLoad()
	return config
}
