package client

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/robotalks/console.go/pkg/wire"
	"github.com/robotalks/console.go/pkg/wire/mqtt"
	"github.com/robotalks/console.go/pkg/wire/websocket"
)

// Config provides common options to setup Connectors.
type Config struct {
	Ref wire.ConsoleRef

	// RegistryURL specifies the URL of the console registry.
	// e.g. mqtt://host:port/topic-prefix
	RegistryURL string
}

var defaultConfig = Config{
	RegistryURL: "mqtt://localhost:1883/console/",
}

func init() {
	if val := os.Getenv("CONSOLE_MODEL"); val != "" {
		defaultConfig.Ref.Model = val
	}
	if val := os.Getenv("CONSOLE_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("CONSOLE_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Model, "console-model", defaultConfig.Ref.Model, "Console model to attach.")
	flag.StringVar(&defaultConfig.Ref.ID, "console-id", defaultConfig.Ref.ID, "Console ID to attach.")
	flag.StringVar(&defaultConfig.RegistryURL, "console-reg", defaultConfig.RegistryURL, "Console Registry URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using current config.
func (c *Config) NewConnector() (wire.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %v", err)
	}
	switch parsedURL.Scheme {
	case "mqtt":
		return mqtt.NewConnector(c.RegistryURL)
	case "ws", "wss":
		return websocket.NewConnector(c.RegistryURL)
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() wire.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// Attach connects the addressed console.
func (c *Config) Attach() (wire.Session, error) {
	if !c.Ref.IsValid() {
		return nil, fmt.Errorf("console model and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Attach(context.TODO(), c.Ref)
}

// MustAttach connects the addressed console and fails on error.
func (c *Config) MustAttach() wire.Session {
	conn, err := c.Attach()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}
