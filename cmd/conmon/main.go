package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/console.go/pkg/wire/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/console/"
)

func init() {
	if val := os.Getenv("CONSOLE_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/meta") {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		log.Printf("%s: %q", topic, payload)
	}))
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
