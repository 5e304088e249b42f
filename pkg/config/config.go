// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/livekit-token-server/pkg/auth"
)

const (
	generatedCLIFlagUsage = "generated"

	// TokenTTL is the only lifetime a token server will accept
	TokenTTL = 10 * time.Minute

	minSecretLength = 32
)

var (
	ErrKeyFileIncorrectPermission = errors.New("key file others permissions must be set to 0")
	ErrKeysNotSet                 = errors.New("one of key-file or keys must be provided")
	ErrSigningKeyNotFound         = errors.New("signing_key is not one of the configured keys")
	ErrSigningKeyAmbiguous        = errors.New("signing_key must be set when more than one key is configured")
	ErrTokenTTLLocked             = errors.New("token.ttl can only be 10m")
)

// DevelopmentKeys are used in development mode when no keys are configured. They match the
// media server's own --dev keys.
var DevelopmentKeys = map[string]string{
	"devkey": "secretsecretsecretsecretsecretsecret",
}

type Config struct {
	Port           uint32            `yaml:"port,omitempty"`
	BindAddresses  []string          `yaml:"bind_addresses,omitempty"`
	PrometheusPort uint32            `yaml:"prometheus_port,omitempty"`
	PrometheusAuth BasicAuthConfig   `yaml:"prometheus_auth,omitempty"`
	KeyFile        string            `yaml:"key_file,omitempty"`
	Keys           map[string]string `yaml:"keys,omitempty"`
	// key used to sign tokens, may be omitted when a single key is configured
	SigningKey string `yaml:"signing_key,omitempty"`
	// media server URL clients are told to connect to
	LiveKitURL string        `yaml:"livekit_url,omitempty"`
	CORS       CORSConfig    `yaml:"cors,omitempty"`
	Token      TokenConfig   `yaml:"token,omitempty"`
	Logging    LoggingConfig `yaml:"logging,omitempty"`

	Development bool `yaml:"development,omitempty"`
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins,omitempty"`
	AllowCredentials bool     `yaml:"allow_credentials,omitempty"`
}

// BasicAuthConfig protects the metrics endpoint when a username is set
type BasicAuthConfig struct {
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

type TokenConfig struct {
	TTL time.Duration `yaml:"ttl,omitempty"`
}

type LoggingConfig struct {
	logger.Config `yaml:",inline"`
}

var DefaultConfig = Config{
	Port:       3001,
	LiveKitURL: "ws://localhost:7880",
	CORS: CORSConfig{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:5174",
			"http://localhost:3000",
			"http://127.0.0.1:5173",
			"http://127.0.0.1:5174",
			"http://127.0.0.1:3000",
			"http://95.31.212.251:5173",
		},
		AllowCredentials: true,
	},
	Token: TokenConfig{
		TTL: TokenTTL,
	},
	Keys: map[string]string{},
}

func NewConfig(confString string, strictMode bool, c *cli.Context, baseFlags []cli.Flag) (*Config, error) {
	// start with defaults
	marshalled, err := yaml.Marshal(&DefaultConfig)
	if err != nil {
		return nil, err
	}

	var conf Config
	err = yaml.Unmarshal(marshalled, &conf)
	if err != nil {
		return nil, err
	}

	if confString != "" {
		decoder := yaml.NewDecoder(strings.NewReader(confString))
		decoder.KnownFields(strictMode)
		if err := decoder.Decode(&conf); err != nil {
			return nil, fmt.Errorf("could not parse config: %v", err)
		}
	}

	if c != nil {
		if err := conf.updateFromCLI(c, baseFlags); err != nil {
			return nil, err
		}
	}

	if conf.Token.TTL != TokenTTL {
		return nil, errors.Wrapf(ErrTokenTTLLocked, "got %s", conf.Token.TTL)
	}

	// expand env vars in filenames
	file, err := homedir.Expand(os.ExpandEnv(conf.KeyFile))
	if err != nil {
		return nil, err
	}
	conf.KeyFile = file

	if conf.Logging.Level == "" && conf.Development {
		conf.Logging.Level = "debug"
	}

	return &conf, nil
}

type configNode struct {
	TypeNode  reflect.Value
	TagPrefix string
}

func (conf *Config) ToCLIFlagNames(existingFlags []cli.Flag) map[string]reflect.Value {
	existingFlagNames := map[string]bool{}
	for _, flag := range existingFlags {
		for _, flagName := range flag.Names() {
			existingFlagNames[flagName] = true
		}
	}

	flagNames := map[string]reflect.Value{}
	var currNode configNode
	nodes := []configNode{{reflect.ValueOf(conf).Elem(), ""}}
	for len(nodes) > 0 {
		currNode, nodes = nodes[0], nodes[1:]
		for i := 0; i < currNode.TypeNode.NumField(); i++ {
			// inspect yaml tag from struct field to get path
			field := currNode.TypeNode.Type().Field(i)
			yamlTagArray := strings.SplitN(field.Tag.Get("yaml"), ",", 2)
			yamlTag := yamlTagArray[0]
			isInline := len(yamlTagArray) > 1 && yamlTagArray[1] == "inline"
			if (yamlTag == "" && (!isInline || currNode.TagPrefix == "")) || yamlTag == "-" {
				continue
			}
			yamlPath := yamlTag
			if currNode.TagPrefix != "" {
				if isInline {
					yamlPath = currNode.TagPrefix
				} else {
					yamlPath = fmt.Sprintf("%s.%s", currNode.TagPrefix, yamlTag)
				}
			}
			if existingFlagNames[yamlPath] {
				continue
			}

			// map flag name to value
			value := currNode.TypeNode.Field(i)
			if value.Kind() == reflect.Struct {
				nodes = append(nodes, configNode{value, yamlPath})
			} else {
				flagNames[yamlPath] = value
			}
		}
	}

	return flagNames
}

// ValidateKeys loads the key file when one is configured and makes sure there is something
// to sign with
func (conf *Config) ValidateKeys() error {
	// prefer keyfile if set
	if conf.KeyFile != "" {
		var otherFilter os.FileMode = 0o007
		if st, err := os.Stat(conf.KeyFile); err != nil {
			return err
		} else if st.Mode().Perm()&otherFilter != 0o000 {
			return ErrKeyFileIncorrectPermission
		}
		f, err := os.Open(conf.KeyFile)
		if err != nil {
			return err
		}
		defer func() {
			_ = f.Close()
		}()
		provider, err := auth.NewFileBasedKeyProvider(f)
		if err != nil {
			return errors.Wrap(err, "could not read key file")
		}
		conf.Keys = provider.Keys()
	}

	if len(conf.Keys) == 0 {
		if !conf.Development {
			return ErrKeysNotSet
		}
		conf.Keys = make(map[string]string, len(DevelopmentKeys))
		for key, secret := range DevelopmentKeys {
			conf.Keys[key] = secret
		}
		logger.Infow("no keys configured, using development keys", "apiKey", "devkey")
	}

	if !conf.Development {
		for key, secret := range conf.Keys {
			if len(secret) < minSecretLength {
				logger.Errorw("secret is too short, should be at least 32 characters for security", nil, "apiKey", key)
			}
		}
	}
	return nil
}

// SigningIdentity picks the key pair that tokens are signed with
func (conf *Config) SigningIdentity() (auth.SigningIdentity, error) {
	if conf.SigningKey != "" {
		secret, ok := conf.Keys[conf.SigningKey]
		if !ok || secret == "" {
			return auth.SigningIdentity{}, errors.Wrap(ErrSigningKeyNotFound, conf.SigningKey)
		}
		return auth.SigningIdentity{KeyID: conf.SigningKey, Secret: secret}, nil
	}

	switch len(conf.Keys) {
	case 0:
		return auth.SigningIdentity{}, ErrKeysNotSet
	case 1:
		for key, secret := range conf.Keys {
			return auth.SigningIdentity{KeyID: key, Secret: secret}, nil
		}
	}
	return auth.SigningIdentity{}, ErrSigningKeyAmbiguous
}

func GenerateCLIFlags(existingFlags []cli.Flag, hidden bool) ([]cli.Flag, error) {
	blankConfig := &Config{}
	flags := make([]cli.Flag, 0)
	for name, value := range blankConfig.ToCLIFlagNames(existingFlags) {
		kind := value.Kind()
		if kind == reflect.Ptr {
			kind = value.Type().Elem().Kind()
		}

		var flag cli.Flag
		envVar := fmt.Sprintf("LIVEKIT_TOKEN_%s", strings.ToUpper(strings.Replace(name, ".", "_", -1)))

		switch kind {
		case reflect.Bool:
			flag = &cli.BoolFlag{
				Name:   name,
				Usage:  generatedCLIFlagUsage,
				Hidden: hidden,
			}
		case reflect.String:
			flag = &cli.StringFlag{
				Name:    name,
				EnvVars: []string{envVar},
				Usage:   generatedCLIFlagUsage,
				Hidden:  hidden,
			}
		case reflect.Int, reflect.Int32:
			flag = &cli.IntFlag{
				Name:    name,
				EnvVars: []string{envVar},
				Usage:   generatedCLIFlagUsage,
				Hidden:  hidden,
			}
		case reflect.Int64:
			if value.Type() == reflect.TypeOf(time.Duration(0)) {
				flag = &cli.DurationFlag{
					Name:    name,
					EnvVars: []string{envVar},
					Usage:   generatedCLIFlagUsage,
					Hidden:  hidden,
				}
				break
			}
			flag = &cli.Int64Flag{
				Name:    name,
				EnvVars: []string{envVar},
				Usage:   generatedCLIFlagUsage,
				Hidden:  hidden,
			}
		case reflect.Uint8, reflect.Uint16, reflect.Uint32:
			flag = &cli.UintFlag{
				Name:    name,
				EnvVars: []string{envVar},
				Usage:   generatedCLIFlagUsage,
				Hidden:  hidden,
			}
		case reflect.Uint64:
			flag = &cli.Uint64Flag{
				Name:    name,
				EnvVars: []string{envVar},
				Usage:   generatedCLIFlagUsage,
				Hidden:  hidden,
			}
		case reflect.Float32, reflect.Float64:
			flag = &cli.Float64Flag{
				Name:    name,
				EnvVars: []string{envVar},
				Usage:   generatedCLIFlagUsage,
				Hidden:  hidden,
			}
		case reflect.Slice:
			if value.Type().Elem().Kind() != reflect.String {
				continue
			}
			flag = &cli.StringSliceFlag{
				Name:    name,
				EnvVars: []string{envVar},
				Usage:   generatedCLIFlagUsage,
				Hidden:  hidden,
			}
		case reflect.Map:
			// keys are only settable through --keys
			continue
		default:
			return flags, fmt.Errorf("cli flag generation unsupported for config type: %s is a %s", name, kind.String())
		}

		flags = append(flags, flag)
	}

	return flags, nil
}

func (conf *Config) updateFromCLI(c *cli.Context, baseFlags []cli.Flag) error {
	generatedFlagNames := conf.ToCLIFlagNames(baseFlags)
	for _, flag := range c.App.Flags {
		flagName := flag.Names()[0]
		if !c.IsSet(flagName) {
			continue
		}

		configValue, ok := generatedFlagNames[flagName]
		if !ok {
			continue
		}

		kind := configValue.Kind()
		if kind == reflect.Ptr {
			// instantiate value to be set
			configValue.Set(reflect.New(configValue.Type().Elem()))

			kind = configValue.Type().Elem().Kind()
			configValue = configValue.Elem()
		}

		switch kind {
		case reflect.Bool:
			configValue.SetBool(c.Bool(flagName))
		case reflect.String:
			configValue.SetString(c.String(flagName))
		case reflect.Int, reflect.Int32:
			configValue.SetInt(c.Int64(flagName))
		case reflect.Int64:
			if configValue.Type() == reflect.TypeOf(time.Duration(0)) {
				configValue.SetInt(int64(c.Duration(flagName)))
			} else {
				configValue.SetInt(c.Int64(flagName))
			}
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			configValue.SetUint(c.Uint64(flagName))
		case reflect.Float32, reflect.Float64:
			configValue.SetFloat(c.Float64(flagName))
		case reflect.Slice:
			configValue.Set(reflect.ValueOf(c.StringSlice(flagName)))
		default:
			return fmt.Errorf("unsupported generated cli flag type for config: %s is a %s", flagName, kind.String())
		}
	}

	if c.IsSet("dev") {
		conf.Development = c.Bool("dev")
	}
	if c.IsSet("port") {
		conf.Port = uint32(c.Uint("port"))
	}
	if c.IsSet("key-file") {
		conf.KeyFile = c.String("key-file")
	}
	if c.IsSet("keys") {
		if err := conf.unmarshalKeys(c.String("keys")); err != nil {
			return errors.New("Could not parse keys, it needs to be exactly, \"key: secret\", including the space")
		}
	}
	if c.IsSet("signing-key") {
		conf.SigningKey = c.String("signing-key")
	}
	if c.IsSet("livekit-url") {
		conf.LiveKitURL = c.String("livekit-url")
	}
	if c.IsSet("allowed-origin") {
		conf.CORS.AllowedOrigins = c.StringSlice("allowed-origin")
	}
	if c.IsSet("bind") {
		conf.BindAddresses = c.StringSlice("bind")
	}
	return nil
}

func (conf *Config) unmarshalKeys(keys string) error {
	temp := make(map[string]interface{})
	if err := yaml.Unmarshal([]byte(keys), temp); err != nil {
		return err
	}

	conf.Keys = make(map[string]string, len(temp))

	for key, val := range temp {
		if secret, ok := val.(string); ok {
			conf.Keys[key] = secret
		}
	}
	return nil
}

func InitLoggerFromConfig(config *LoggingConfig) {
	logger.InitFromConfig(config.Config, "livekit-token-server")
}
