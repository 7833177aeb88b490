package config

import (
	"os"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"gopkg.in/yaml.v3"

	"github.com/anyproto/anytype-push-messaging/credential"
	"github.com/anyproto/anytype-push-messaging/messaging"
)

const CName = "config"

func NewFromFile(path string) (c *Config, err error) {
	c = &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return
}

type Config struct {
	Log        logger.Config     `yaml:"log"`
	Credential credential.Config `yaml:"credential"`
	Messaging  messaging.Config  `yaml:"messaging"`
}

func (c *Config) Init(a *app.App) (err error) {
	return nil
}

func (c *Config) Name() (name string) {
	return CName
}

func (c *Config) GetCredential() credential.Config {
	return c.Credential
}

func (c *Config) GetMessaging() messaging.Config {
	return c.Messaging
}
