package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRcodesignVersion is the pinned release of the external signing
// tool used when no version input is supplied.
const DefaultRcodesignVersion = "0.29.0"

// Config holds the run inputs: what to search for, which operations to
// perform, and the credential parameters forwarded verbatim to the
// external tool.
type Config struct {
	// InputPath is the search expression, one glob pattern per line.
	InputPath string `yaml:"input_path"`

	Sign     bool `yaml:"sign"`
	Notarize bool `yaml:"notarize"`
	Staple   bool `yaml:"staple"`

	RcodesignVersion string `yaml:"rcodesign_version"`

	// Signing credential sources, forwarded as rcodesign arguments.
	SignConfigFile             string   `yaml:"sign_config_file"`
	P12File                    string   `yaml:"p12_file"`
	P12Password                string   `yaml:"p12_password"`
	P12PasswordFile            string   `yaml:"p12_password_file"`
	PEMSources                 []string `yaml:"pem_sources"`
	RemoteSignPublicKey        string   `yaml:"remote_sign_public_key"`
	RemoteSignPublicKeyPEMFile string   `yaml:"remote_sign_public_key_pem_file"`

	// Notarization credentials.
	AppStoreConnectAPIKeyFile string `yaml:"app_store_connect_api_key_json_file"`

	Verbose bool `yaml:"verbose"`
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		RcodesignVersion: DefaultRcodesignVersion,
	}
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Substitute environment variables
	data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})

	// Start with defaults
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a Config from INPUT_* environment variables, the form
// a CI runner delivers action inputs in. Unset variables keep their
// defaults.
func FromEnv() *Config {
	cfg := DefaultConfig()

	setString(&cfg.InputPath, "INPUT_INPUT_PATH")
	setBool(&cfg.Sign, "INPUT_SIGN")
	setBool(&cfg.Notarize, "INPUT_NOTARIZE")
	setBool(&cfg.Staple, "INPUT_STAPLE")
	setString(&cfg.RcodesignVersion, "INPUT_RCODESIGN_VERSION")
	setString(&cfg.SignConfigFile, "INPUT_SIGN_CONFIG_FILE")
	setString(&cfg.P12File, "INPUT_P12_FILE")
	setString(&cfg.P12Password, "INPUT_P12_PASSWORD")
	setString(&cfg.P12PasswordFile, "INPUT_P12_PASSWORD_FILE")
	setLines(&cfg.PEMSources, "INPUT_PEM_SOURCES")
	setString(&cfg.RemoteSignPublicKey, "INPUT_REMOTE_SIGN_PUBLIC_KEY")
	setString(&cfg.RemoteSignPublicKeyPEMFile, "INPUT_REMOTE_SIGN_PUBLIC_KEY_PEM_FILE")
	setString(&cfg.AppStoreConnectAPIKeyFile, "INPUT_APP_STORE_CONNECT_API_KEY_JSON_FILE")
	setBool(&cfg.Verbose, "INPUT_VERBOSE")

	return cfg
}

// Validate checks the configuration before anything is downloaded or
// executed, so credential mistakes fail fast.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" {
		return errors.New("input_path is required")
	}
	if c.RcodesignVersion == "" {
		return errors.New("rcodesign_version must not be empty")
	}
	if c.Sign && !c.hasSigningCredential() {
		return errors.New("signing requested without a credential source: provide a p12 file, a PEM source, a remote signing key, or a sign config file")
	}
	if c.Notarize && c.AppStoreConnectAPIKeyFile == "" {
		return errors.New("notarization requested without app_store_connect_api_key_json_file")
	}
	if c.P12Password != "" && c.P12PasswordFile != "" {
		return errors.New("p12_password and p12_password_file are mutually exclusive")
	}
	return nil
}

func (c *Config) hasSigningCredential() bool {
	return c.P12File != "" ||
		len(c.PEMSources) > 0 ||
		c.RemoteSignPublicKey != "" ||
		c.RemoteSignPublicKeyPEMFile != "" ||
		c.SignConfigFile != ""
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		*dst = true
	case "false", "0", "no", "":
		*dst = false
	}
}

func setLines(dst *[]string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	var lines []string
	for _, line := range strings.Split(v, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		*dst = lines
	}
}
