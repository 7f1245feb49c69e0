package config

import (
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names a backing LLM implementation.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	ProviderCLI       Provider = "cli"
	ProviderMock      Provider = "mock"
)

var ValidProviders = map[Provider]bool{
	ProviderGemini:    true,
	ProviderAnthropic: true,
	ProviderCLI:       true,
	ProviderMock:      true,
}

// Config carries credentials and provider selection from the environment.
type Config struct {
	GoogleKey    string `env:"GOOGLE_API_KEY"`
	GeminiAltKey string `env:"GEMINI_API_KEY"`
	AnthropicKey string `env:"ANTHROPIC_API_KEY"`

	Provider      Provider `env:"STYLEMINER_PROVIDER" envDefault:"gemini"`
	Model         string   `env:"STYLEMINER_MODEL"`
	ClaudeCLIPath string   `env:"CLAUDE_CLI_PATH" envDefault:"claude"`
}

// Load reads an optional .env file, then parses the environment.
func Load(envFile string) (*Config, error) {
	var err error
	if envFile != "" {
		err = godotenv.Load(envFile)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Println("No .env file found or error loading, continuing with environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// GeminiKey returns whichever Google credential variable is set.
func (c *Config) GeminiKey() string {
	if c.GoogleKey != "" {
		return c.GoogleKey
	}
	return c.GeminiAltKey
}

// Validate checks that the selected provider has the credential it needs.
func (c *Config) Validate() error {
	if !ValidProviders[c.Provider] {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiKey() == "" {
			return fmt.Errorf("GOOGLE_API_KEY or GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderAnthropic:
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	}
	return nil
}

// Settings holds run parameters, overridable from a YAML file and flags.
type Settings struct {
	DatasetPath   string `yaml:"dataset"`
	ModulesPath   string `yaml:"module_details"`
	RubricPath    string `yaml:"rubric"`
	GuidelinePath string `yaml:"instructions"`

	OutputDir string `yaml:"output_dir"`
	MasterCSV string `yaml:"master_csv"`

	Iterations int     `yaml:"iterations"`
	Threshold  float64 `yaml:"threshold"`
	Tolerance  float64 `yaml:"tolerance"`
	DelayMS    int     `yaml:"delay_ms"`
}

// DefaultSettings returns the standard run parameters.
func DefaultSettings() Settings {
	return Settings{
		DatasetPath:   "data/movie_grading_dataset.csv",
		ModulesPath:   "data/Movie-guideline-details.csv",
		RubricPath:    "data/grading-rubric.txt",
		GuidelinePath: "data/instructions.txt",
		OutputDir:     "output/iterations",
		MasterCSV:     "output/style_analysis_master.csv",
		Iterations:    15,
		Threshold:     85,
		Tolerance:     3.0,
		DelayMS:       500,
	}
}

// LoadSettings overlays a YAML settings file onto the defaults. A missing
// path is not an error; explicit paths must exist.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return settings, nil
}
