package host

import (
	"flag"
	"fmt"
	"log"
	"os"

	fx "github.com/robotalks/console.go/pkg/framework"
	"github.com/robotalks/console.go/pkg/wire"
	"github.com/robotalks/console.go/pkg/wire/env"
	"github.com/robotalks/console.go/pkg/wire/mqtt"
)

// Config provides common options to setup an env for console hosts.
type Config struct {
	Info wire.ConsoleInfo

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/console/",
}

func init() {
	if val := os.Getenv("CONSOLE_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	defaultConfig.Info.Ref.ID = env.MachineID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Model, "model", defaultConfig.Info.Ref.Model, "Console model")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Console ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetModel should be called in init with basic info about the console.
func SetModel(model string, meta wire.ConsoleMeta) {
	defaultConfig.Info.Ref.Model = model
	defaultConfig.Info.Meta = meta
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is the env for console hosts.
type Env struct {
	Config    *Config
	Registrar *mqtt.Registrar
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("console model and id must be specified")
	}
	if c.MQTTBrokerURL == "" {
		return nil, fmt.Errorf("MQTT broker URL is required")
	}
	reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
	if err != nil {
		return nil, fmt.Errorf("create MQTT registrar error: %v", err)
	}
	return &Env{Config: c, Registrar: reg}, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddToLoop adds runners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
}
