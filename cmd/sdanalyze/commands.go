package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sdflow/modelanalyzer/analyzer"
	"github.com/sdflow/modelanalyzer/internal/config"
	"github.com/sdflow/modelanalyzer/internal/parsetree"
	"github.com/sdflow/modelanalyzer/internal/speccheck"
)

var resolvedConfig config.AnalyzerConfig

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sdanalyze",
		Short: "Semantic analysis front-end for system-dynamics models",
		Long: `sdanalyze runs canonical naming, dimension resolution, variable
classification, dead-code elimination and evaluation-order listing over an
already-parsed system-dynamics model.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (SDANALYZE_*)
3. Configuration file (sdanalyze.yaml in ., $HOME/.sdanalyze, /etc/sdanalyze)
4. Built-in defaults`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("x-config")
			loader := config.NewLoader(configFile)
			v := loader.Viper()
			_ = v.BindPFlag("log-level", cmd.Flags().Lookup("x-log-level"))
			_ = v.BindPFlag("format", cmd.Flags().Lookup("x-format"))
			_ = v.BindEnv("log-level", "SDANALYZE_LOG_LEVEL")
			_ = v.BindEnv("format", "SDANALYZE_FORMAT")

			cfg, err := loader.Load()
			if err != nil {
				return WrapError("load configuration", err)
			}
			resolvedConfig = cfg

			logQueries, _ := cmd.Flags().GetBool("x-log-queries")
			return initLogging(cfg.LogLevel, logQueries)
		},
	}

	flags := root.PersistentFlags()
	flags.String("x-config", "", "path to a config file (overrides default discovery)")
	flags.String("x-log-level", "warn", "log level: debug|info|warn|error")
	flags.Bool("x-log-queries", false, "also print structured log records to stdout")
	flags.String("x-format", "json", "listing output format: json|yaml")

	root.AddCommand(newAnalyzeCommand())
	root.AddCommand(newValidateCommand())
	return root
}

func newAnalyzeCommand() *cobra.Command {
	var modelPath, specPath, modelDir, reductionMode string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full analysis pipeline and print the evaluation-order listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadModel(modelPath)
			if err != nil {
				return WrapError("analyze", err)
			}
			spec, extData, err := loadSpec(specPath)
			if err != nil {
				return WrapError("analyze", err)
			}

			a := analyzer.New()
			decisionsLogger.Debug("starting analysis", "session", a.Session.ID, "model_dir", modelDir)
			opts := analyzer.Options{
				Spec:          spec,
				ExtData:       extData,
				ModelDir:      modelDir,
				ReductionMode: reductionMode,
			}
			if err := a.Analyze(tree, opts); err != nil {
				decisionsLogger.Debug("analysis failed", "session", a.Session.ID, "error", err)
				return WrapError("analyze", err)
			}

			var out []byte
			if resolvedConfig.Format == "yaml" {
				out, err = a.YAMLList()
			} else {
				out, err = a.JSONList()
			}
			if err != nil {
				return WrapError("analyze", err)
			}
			listingLogger.Info("listing produced", "session", a.Session.ID, "var_count", len(a.VarNames()), "format", resolvedConfig.Format)
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "path to a JSON-encoded parse tree (required)")
	cmd.Flags().StringVar(&specPath, "spec", "", "path to a YAML or JSON spec file")
	cmd.Flags().StringVar(&modelDir, "model-dir", ".", "base directory for external data file resolution")
	cmd.Flags().StringVar(&reductionMode, "reduction-mode", "", "constant-folding mode: off|default|aggressive")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func newValidateCommand() *cobra.Command {
	var modelPath, specPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that every declared input/output resolves, without printing a listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadModel(modelPath)
			if err != nil {
				return WrapError("validate", err)
			}
			spec, extData, err := loadSpec(specPath)
			if err != nil {
				return WrapError("validate", err)
			}

			a := analyzer.New()
			if err := a.Analyze(tree, analyzer.Options{Spec: spec, ExtData: extData}); err != nil {
				return WrapError("validate", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "path to a JSON-encoded parse tree (required)")
	cmd.Flags().StringVar(&specPath, "spec", "", "path to a YAML or JSON spec file")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

// lockedReadFile takes a shared lock on path before reading it, guarding
// against a concurrent writer (e.g. an editor's autosave) mid-read the way
// the corpus guards its on-disk store.
func lockedReadFile(path string) ([]byte, error) {
	fl := flock.New(path + ".lock")
	if err := fl.RLock(); err == nil {
		defer fl.Unlock()
	}
	return os.ReadFile(path)
}

func loadModel(path string) (*parsetree.Tree, error) {
	data, err := lockedReadFile(path)
	if err != nil {
		return nil, &CLIError{Operation: "load model", Cause: "could not read model file", Details: err.Error(), Suggestions: []string{CommonSuggestions.CheckModel}, Underlying: err}
	}
	var tree parsetree.Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, &CLIError{Operation: "load model", Cause: "model file is not valid JSON", Details: err.Error(), Underlying: err}
	}
	return &tree, nil
}

// loadSpec reads a spec file and converts its Bindings["extData"] entry (a
// map from variable name to a list of [time, value] pairs) into the
// ExtData map Analyze expects, since a spec file is the natural place for
// a modeler to attach external data series inline.
func loadSpec(path string) (speccheck.Spec, map[string][]speccheck.Point, error) {
	if path == "" {
		return speccheck.Spec{}, nil, nil
	}

	data, err := lockedReadFile(path)
	if err != nil {
		return speccheck.Spec{}, nil, &CLIError{Operation: "load spec", Cause: "could not read spec file", Details: err.Error(), Suggestions: []string{CommonSuggestions.CheckSpec}, Underlying: err}
	}

	var spec speccheck.Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return speccheck.Spec{}, nil, &CLIError{Operation: "load spec", Cause: "spec file is not valid YAML or JSON", Details: err.Error(), Underlying: err}
	}

	extData := map[string][]speccheck.Point{}
	if raw, ok := spec.Bindings["extData"]; ok {
		series, ok := raw.(map[string]any)
		if ok {
			for name, v := range series {
				points, ok := v.([]any)
				if !ok {
					continue
				}
				var pts []speccheck.Point
				for _, pv := range points {
					pair, ok := pv.([]any)
					if !ok || len(pair) != 2 {
						continue
					}
					t, tok := toFloat(pair[0])
					val, vok := toFloat(pair[1])
					if !tok || !vok {
						continue
					}
					pts = append(pts, speccheck.Point{Time: t, Value: val})
				}
				extData[name] = pts
			}
		}
	}

	return spec, extData, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
