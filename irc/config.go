// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ergochat/irc-go/ircfmt"
	"gopkg.in/yaml.v2"

	"github.com/lschrafstetter/42-ft-irc/irc/logger"
)

// ServerConfig is the `server` section of the config.
type ServerConfig struct {
	Name            string
	WebsocketListen string `yaml:"websocket-listen"`
	MOTD            string `yaml:"motd"`
	MOTDFormatting  bool   `yaml:"motd-formatting"`
	MaxClients      int    `yaml:"max-clients"`
	MaxChannels     int    `yaml:"max-channels"`
	LookupHostnames bool   `yaml:"lookup-hostnames"`
	Ident           bool   `yaml:"ident"`
}

// OperConfig is the `oper` section of the config.
type OperConfig struct {
	// bcrypt hash as produced by `ircserv genpasswd`
	Password string
}

// PingConfig is the `ping` section of the config.
type PingConfig struct {
	TimeoutSeconds  int `yaml:"timeout-seconds"`
	IntervalSeconds int `yaml:"interval-seconds"`
}

// Config defines the overall configuration of the server.
type Config struct {
	Server  ServerConfig
	Oper    OperConfig
	Ping    PingConfig
	Logging []logger.LoggingConfig

	// set from the command line, not the config file
	Port     int    `yaml:"-"`
	Password string `yaml:"-"`

	motdLines []string
}

// ParsePort validates the port given on the command line. Ports below 1025
// are reserved and refused.
func ParsePort(arg string) (int, error) {
	port, err := strconv.Atoi(arg)
	if err != nil || port < 1025 || port > 65535 {
		return 0, errBadPort
	}
	return port, nil
}

// PingTimeout is the window in which an outstanding PING must be answered.
func (config *Config) PingTimeout() time.Duration {
	return time.Duration(config.Ping.TimeoutSeconds) * time.Second
}

// PingInterval is how long a connection may sit idle before we ping it again.
func (config *Config) PingInterval() time.Duration {
	return time.Duration(config.Ping.IntervalSeconds) * time.Second
}

// DefaultConfig returns the configuration used when no config file is given:
// everything the protocol needs, logging to stderr.
func DefaultConfig() *Config {
	config := &Config{}
	config.applyDefaults()
	config.Logging = []logger.LoggingConfig{
		{
			Method:       "stderr",
			MethodStderr: true,
			Types:        []string{"*"},
			Level:        logger.LogInfo,
		},
	}
	return config
}

func (config *Config) applyDefaults() {
	if config.Server.Name == "" {
		config.Server.Name = "ircserv"
	}
	if config.Server.MaxClients == 0 {
		config.Server.MaxClients = maxClients
	}
	if config.Server.MaxChannels == 0 {
		config.Server.MaxChannels = maxChannelsPerClient
	}
	if config.Ping.TimeoutSeconds == 0 {
		config.Ping.TimeoutSeconds = 100
	}
	if config.Ping.IntervalSeconds == 0 {
		config.Ping.IntervalSeconds = 100
	}
}

// LoadConfig loads the given YAML configuration file.
func LoadConfig(filename string) (config *Config, err error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config = &Config{}
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, err
	}
	config.applyDefaults()

	// process the logging configs the same way regardless of where they came from
	for i, logConfig := range config.Logging {
		// methods
		methods := make(map[string]bool)
		for _, method := range strings.Split(logConfig.Method, " ") {
			if len(method) > 0 {
				methods[strings.ToLower(method)] = true
			}
		}
		if methods["file"] && logConfig.Filename == "" {
			return nil, errors.New("logging configuration specifies 'file' method but 'filename' is empty")
		}
		config.Logging[i].MethodFile = methods["file"]
		config.Logging[i].MethodStdout = methods["stdout"]
		config.Logging[i].MethodStderr = methods["stderr"]

		// levels
		level, exists := logger.LogLevelNames[strings.ToLower(logConfig.LevelString)]
		if !exists {
			return nil, fmt.Errorf("Could not translate log leve [%s]", logConfig.LevelString)
		}
		config.Logging[i].Level = level

		// types
		for _, typeStr := range strings.Split(logConfig.TypeString, " ") {
			if len(typeStr) == 0 {
				continue
			}
			if strings.HasPrefix(typeStr, "-") {
				typeStr = strings.TrimPrefix(typeStr, "-")
				config.Logging[i].ExcludedTypes = append(config.Logging[i].ExcludedTypes, typeStr)
			} else {
				config.Logging[i].Types = append(config.Logging[i].Types, typeStr)
			}
		}
		if len(config.Logging[i].Types) == 0 {
			return nil, errors.New("logging configuration has no types specified")
		}
	}
	if len(config.Logging) == 0 {
		config.Logging = DefaultConfig().Logging
	}

	err = config.loadMOTD()
	if err != nil {
		return nil, err
	}

	return config, nil
}

// loadMOTD reads the MOTD file into memory, applying formatting codes if
// configured. A missing file is not fatal; MOTD playback then answers with
// ERR_NOMOTD.
func (config *Config) loadMOTD() error {
	config.motdLines = nil
	if config.Server.MOTD == "" {
		return nil
	}

	file, err := os.Open(config.Server.MOTD)
	if err != nil {
		// 422 at runtime, not a startup failure
		return nil
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if config.Server.MOTDFormatting {
			line = ircfmt.Unescape(line)
		}
		config.motdLines = append(config.motdLines, line)
	}

	return nil
}
