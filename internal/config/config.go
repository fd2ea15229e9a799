package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

type Config struct {
	Ledger  Ledger  `yaml:"ledger"`
	Server  Server  `yaml:"server"`
	Content Content `yaml:"content"`
}

type Ledger struct {
	RPCEndpoint     string `yaml:"rpcEndpoint"`
	ContractAddress string `yaml:"contractAddress"`
	StartBlock      uint64 `yaml:"startBlock"`
	PollIntervalSec int    `yaml:"pollIntervalSec"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Content struct {
	GatewayURL string `yaml:"gatewayURL"`
	QueueSize  int    `yaml:"queueSize"`
}

func (l Ledger) PollInterval() time.Duration {
	if l.PollIntervalSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(l.PollIntervalSec) * time.Second
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Ledger.RPCEndpoint == "" {
		return Config{}, errors.New("ledger.rpcEndpoint is required")
	}
	if config.Ledger.ContractAddress == "" {
		return Config{}, errors.New("ledger.contractAddress is required")
	}
	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}
	if config.Content.QueueSize <= 0 {
		config.Content.QueueSize = 1024
	}

	return config, nil
}
