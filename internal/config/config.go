package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

type Config struct {
	Extraction
	HTTP
	Sessions
}

type Extraction struct {
	ServerURL      string
	RequestTimeout time.Duration
}

type HTTP struct {
	Host         string
	Port         string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Sessions struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func Load(cmd *cli.Command) *Config {
	return &Config{
		Extraction: Extraction{
			ServerURL:      cmd.String("server-url"),
			RequestTimeout: cmd.Duration("request-timeout"),
		},
		HTTP: HTTP{
			Host:         cmd.String("http-host"),
			Port:         cmd.String("http-port"),
			IdleTimeout:  cmd.Duration("http-idle-timeout"),
			ReadTimeout:  cmd.Duration("http-read-timeout"),
			WriteTimeout: cmd.Duration("http-write-timeout"),
		},
		Sessions: Sessions{
			TTL:           cmd.Duration("session-ttl"),
			SweepInterval: cmd.Duration("session-sweep-interval"),
		},
	}
}
