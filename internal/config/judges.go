package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/judge.yaml"

// LoadJudgeConfig reads JUDGE_CONFIG_PATH, or configs/judge.yaml when unset.
func LoadJudgeConfig() (*JudgeConfig, error) {
	path := os.Getenv("JUDGE_CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return LoadJudgeConfigFile(path)
}

func LoadJudgeConfigFile(path string) (*JudgeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg JudgeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *JudgeConfig) {
	if cfg.Judge.Model.MaxTokens == 0 {
		cfg.Judge.Model.MaxTokens = 1024
	}
	if cfg.Judge.NumSamples == 0 {
		cfg.Judge.NumSamples = 1
	}
	if cfg.Judge.AggregateMethod == "" {
		cfg.Judge.AggregateMethod = "mean"
	}
	if cfg.Detection.Mode == "" {
		cfg.Detection.Mode = "programmatic_first"
	}
}

var validate = validator.New()

// PromptFuncs are available to the rubric templates.
var PromptFuncs = template.FuncMap{
	"join": strings.Join,
}

func (c *JudgeConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid judge config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid judge config: %w", err)
	}

	if _, err := template.New("system").Funcs(PromptFuncs).Parse(c.Judge.SystemPrompt); err != nil {
		return fmt.Errorf("invalid prompt template system_prompt: %w", err)
	}
	if _, err := template.New("user").Funcs(PromptFuncs).Parse(c.Judge.UserPrompt); err != nil {
		return fmt.Errorf("invalid prompt template user_prompt: %w", err)
	}

	seen := make(map[string]bool, len(c.Domains))
	for _, d := range c.Domains {
		if seen[d.Name] {
			return fmt.Errorf("duplicate domain name: %s", d.Name)
		}
		seen[d.Name] = true
	}

	return nil
}
