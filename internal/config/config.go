package config

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/itsHabib/rsvpboard/internal/gym"
	"github.com/itsHabib/rsvpboard/internal/notify"
)

const (
	configPathEnv     = "CONFIG_PATH"
	defaultConfigPath = "etc/rsvpboard.yaml"
	envProduction     = "production"
	csrfKeyLen        = 32
)

type GymConf struct {
	BaseURL   string `json:",default=http://localhost:8080"`
	AuthToken string `json:",optional"`
	// AuthTokenParam names an SSM parameter holding the auth token.
	AuthTokenParam     string        `json:",optional"`
	MemberID           string        `json:",optional"`
	Days               int           `json:",default=14"`
	TolerateTaskErrors bool          `json:",optional"`
	Timeout            time.Duration `json:",default=10s"`
}

type AWSConf struct {
	Region string `json:",default=us-east-2"`
}

type SMSConf struct {
	AccountSID string `json:",optional"`
	AuthToken  string `json:",optional"`
	From       string `json:",optional"`
	To         string `json:",optional"`
}

type Config struct {
	ListenOn string `json:",default=:8080"`
	Env      string `json:",default=development,options=development|production"`
	TimeZone string `json:",default=Local"`
	// CSRFKey is 64 hex characters. Required in production.
	CSRFKey string `json:",optional"`

	Gym GymConf
	AWS AWSConf
	SMS SMSConf
	Log logx.LogConf
}

// Load reads the YAML config at path, or at $CONFIG_PATH when path is empty.
// ${VAR} references in the file are expanded from the environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path == "" {
		path = defaultConfigPath
	}

	c := new(Config)
	if err := conf.Load(path, c, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("unable to load config %s: %w", path, err)
	}

	return c, nil
}

// LoadFromYaml is Load for an in-memory document.
func LoadFromYaml(content []byte) (*Config, error) {
	c := new(Config)
	if err := conf.LoadFromYamlBytes(content, c); err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	return c, nil
}

// SetUp configures logging. It should be called once at process start.
func (c *Config) SetUp() error {
	return logx.SetUp(c.Log)
}

func (c *Config) Validate() error {
	if c.Gym.MemberID == "" {
		return fmt.Errorf("gym member id is required")
	}
	if c.Gym.AuthToken == "" && c.Gym.AuthTokenParam == "" {
		return fmt.Errorf("gym auth token or auth token param is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Env == envProduction && c.CSRFKey == "" {
		return fmt.Errorf("csrf key is required in production")
	}
	if c.CSRFKey != "" {
		if _, err := c.CSRFAuthKey(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("unable to load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// CSRFAuthKey decodes CSRFKey. It returns nil, nil when no key is configured.
func (c *Config) CSRFAuthKey() ([]byte, error) {
	if c.CSRFKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.CSRFKey)
	if err != nil || len(key) != csrfKeyLen {
		return nil, fmt.Errorf("csrf key must be %d hex characters", csrfKeyLen*2)
	}
	return key, nil
}

func (c *Config) GymConfig() gym.Config {
	return gym.Config{
		BaseURL:   c.Gym.BaseURL,
		AuthToken: c.Gym.AuthToken,
		MemberID:  c.Gym.MemberID,
	}
}

// SMSEnabled reports whether sign-up results should be texted.
func (c *Config) SMSEnabled() bool {
	return c.SMS.AccountSID != "" && c.SMS.To != ""
}

func (c *Config) SMSConfig() notify.SMSConfig {
	return notify.SMSConfig{
		AccountSID: c.SMS.AccountSID,
		AuthToken:  c.SMS.AuthToken,
		From:       c.SMS.From,
		To:         c.SMS.To,
	}
}

// Notifier returns the notifiers enabled by the config. Logging is always on.
func (c *Config) Notifier() (notify.Notifier, error) {
	notifiers := notify.Multi{notify.Log{}}
	if c.SMSEnabled() {
		sms, err := notify.NewSMS(c.SMSConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to create sms notifier: %w", err)
		}
		notifiers = append(notifiers, sms)
	}

	return notifiers, nil
}

// NewGymService builds the booking service client.
func (c *Config) NewGymService() (*gym.Service, error) {
	timeout := c.Gym.Timeout
	if timeout <= 0 {
		timeout = gym.DefaultTimeout
	}

	return gym.NewService(&http.Client{Timeout: timeout}, c.GymConfig())
}
