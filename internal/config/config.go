// Package config loads the analyzer's ambient configuration: CLI default
// overrides for model directory, output format and log level, plus the
// spec's dimensionFamilies/specialSeparationDims maps when they're large
// enough that a modeler would rather keep them in a file than on the
// command line. Precedence follows the corpus's viper convention: CLI
// flag > environment variable (SDANALYZE_*) > config file > built-in
// default.
package config

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// AnalyzerConfig is the fully resolved ambient configuration for one CLI
// invocation.
type AnalyzerConfig struct {
	ModelDir string `mapstructure:"model-dir"`
	Format   string `mapstructure:"format"`
	LogLevel string `mapstructure:"log-level"`

	DimensionFamilies     map[string]string `mapstructure:"dimensionFamilies"`
	SpecialSeparationDims map[string]string `mapstructure:"specialSeparationDims"`
}

// Default returns the built-in defaults, the bottom of the precedence
// chain.
func Default() AnalyzerConfig {
	return AnalyzerConfig{
		ModelDir: ".",
		Format:   "json",
		LogLevel: "warn",
	}
}

// Loader wraps a *viper.Viper configured for sdanalyze's config file and
// environment variable conventions.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader. configFile, if non-empty, is read directly
// (the CLI passes its --x-config flag here); otherwise the default search
// path is used.
func NewLoader(configFile string) *Loader {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("sdanalyze")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.sdanalyze")
		v.AddConfigPath("/etc/sdanalyze")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("SDANALYZE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	def := Default()
	v.SetDefault("model-dir", def.ModelDir)
	v.SetDefault("format", def.Format)
	v.SetDefault("log-level", def.LogLevel)

	return &Loader{v: v}
}

// Viper exposes the underlying *viper.Viper so the CLI layer can bind
// cobra flags to it (cli flag > env > file > default).
func (l *Loader) Viper() *viper.Viper { return l.v }

// Load reads the config file (ignoring a missing file) and decodes the
// merged flag/env/file/default view into an AnalyzerConfig.
func (l *Loader) Load() (AnalyzerConfig, error) {
	_ = l.v.ReadInConfig()

	var cfg AnalyzerConfig
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := l.v.Unmarshal(&cfg, decodeHook); err != nil {
		return AnalyzerConfig{}, err
	}
	return cfg, nil
}
