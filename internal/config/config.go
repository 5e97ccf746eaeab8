package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"hero-trivia-engine/internal/app"
	"hero-trivia-engine/internal/domain"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Dataset struct {
		TTL string `yaml:"ttl"`
	} `yaml:"dataset"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
	Game Game `yaml:"game"`
}

// Game holds the operator-tunable rule values.
type Game struct {
	TickResolution  string `yaml:"tickResolution"`
	StoryQuestions  int    `yaml:"storyQuestions"`
	BlitzSeconds    int    `yaml:"blitzSeconds"`
	TimePerQuestion struct {
		Easy   string `yaml:"easy"`
		Medium string `yaml:"medium"`
		Hard   string `yaml:"hard"`
	} `yaml:"timePerQuestion"`
	AchievementDismiss string `yaml:"achievementDismiss"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Defaults overlays the game section on the built-in rule values. Unset or
// unparseable fields keep the built-in value.
func (g Game) Defaults() app.Defaults {
	d := app.DefaultDefaults()
	d.TickResolution = TTLDuration(g.TickResolution, d.TickResolution)
	d.DismissAfter = TTLDuration(g.AchievementDismiss, d.DismissAfter)
	if g.StoryQuestions > 0 {
		d.StoryQuestions = g.StoryQuestions
	}
	if g.BlitzSeconds > 0 {
		d.BlitzTime = time.Duration(g.BlitzSeconds) * time.Second
	}
	d.TimePerQuestion[domain.DifficultyEasy] = TTLDuration(g.TimePerQuestion.Easy, d.TimePerQuestion[domain.DifficultyEasy])
	d.TimePerQuestion[domain.DifficultyMedium] = TTLDuration(g.TimePerQuestion.Medium, d.TimePerQuestion[domain.DifficultyMedium])
	d.TimePerQuestion[domain.DifficultyHard] = TTLDuration(g.TimePerQuestion.Hard, d.TimePerQuestion[domain.DifficultyHard])
	return d
}
