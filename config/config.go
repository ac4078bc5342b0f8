// Package config loads run settings from an optional YAML file, MRITOPNG_ environment
// variables and explicit overrides, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	validatorV10 "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"mritopng/logging"
)

const EnvPrefix = "MRITOPNG"

// Settings is everything a run can be configured with besides the two root directories.
type Settings struct {
	// Format is the output raster format.
	Format string `mapstructure:"format" json:"format" yaml:"format" default:"png" validate:"oneof=png jpeg tiff bmp pdf webp"`
	// Quality applies to jpeg, pdf and webp output.
	Quality int `mapstructure:"quality" json:"quality" yaml:"quality" default:"90" validate:"min=1,max=100"`
	// Backend selects the encoder implementation.
	Backend string `mapstructure:"backend" json:"backend" yaml:"backend" default:"native" validate:"oneof=native imagick vips"`
	// MaxWidth and MaxHeight bound the output size; zero means unbounded.
	MaxWidth  int `mapstructure:"max-width" json:"maxWidth" yaml:"max-width" validate:"min=0"`
	MaxHeight int `mapstructure:"max-height" json:"maxHeight" yaml:"max-height" validate:"min=0"`
	// Album writes one PDF per output directory collecting its images.
	Album bool `mapstructure:"album" json:"album" yaml:"album"`
	// Report is the path of the JSON run summary; empty disables it.
	Report string `mapstructure:"report" json:"report" yaml:"report"`

	Log logging.Config `mapstructure:"log" json:"log" yaml:"log"`
}

// keys lists every setting so environment variables resolve without a config file.
var keys = []string{
	"format", "quality", "backend", "max-width", "max-height", "album", "report",
	"log.file", "log.level", "log.format", "log.time-format", "log.log-in-terminal",
	"log.max-size", "log.max-backups", "log.max-age", "log.compress",
}

var validate = validatorV10.New()

// Load reads path (skipped when empty), then the environment, then overrides keyed like
// the YAML file ("format", "log.level").
func Load(path string, overrides map[string]any) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}
	for key, value := range overrides {
		v.Set(key, value)
	}

	s := &Settings{}
	if err := defaults.Set(s); err != nil {
		return nil, fmt.Errorf("setting defaults: %w", err)
	}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Default returns the settings used when nothing is configured.
func Default() *Settings {
	s := &Settings{}
	_ = defaults.Set(s)
	return s
}

func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var fieldErrors validatorV10.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return fmt.Errorf("invalid settings: %w", err)
		}
		msgs := make([]string, len(fieldErrors))
		for i, fe := range fieldErrors {
			msgs[i] = fmt.Sprintf("%s %s", strings.TrimPrefix(fe.Namespace(), "Settings."), validationMessage(fe))
		}
		return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
	}
	if s.Format == "webp" && s.Backend == "native" {
		return errors.New("invalid settings: webp output needs the imagick or vips backend")
	}
	return nil
}

func validationMessage(fe validatorV10.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
	}
}
