package config

import (
	"log"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config collects everything tunable: paths, the leaderboard capacity and
// the score-curve constants (the C1/C2 pair changed between data revisions,
// so it lives in config rather than code).
type Config struct {
	RepoPath     string  `mapstructure:"repo_path"`     // GitHub Pages 仓库目录
	DataFile     string  `mapstructure:"data_file"`     // catalog JSON, relative to repo_path unless absolute
	HistoryDB    string  `mapstructure:"history_db"`    // sqlite score-history file
	GitPath      string  `mapstructure:"git_path"`      // git 可执行文件
	GitHubUser   string  `mapstructure:"github_user"`
	Capacity     int     `mapstructure:"capacity"`
	CurveC1      float64 `mapstructure:"curve_c1"`
	CurveC2      float64 `mapstructure:"curve_c2"`
	Port         string  `mapstructure:"port"`
}

// Load reads .env, then hokrank.yaml (working dir or --config), then the
// HOKRANK_* environment. Missing config file is fine: defaults cover a
// fresh checkout.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	v := viper.New()
	v.SetDefault("repo_path", ".")
	v.SetDefault("data_file", "data.json")
	v.SetDefault("history_db", "history.db")
	v.SetDefault("git_path", "git")
	v.SetDefault("github_user", "hok11")
	v.SetDefault("capacity", 10)
	v.SetDefault("curve_c1", 282.0)
	v.SetDefault("curve_c2", 82.0)
	v.SetDefault("port", "8080")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("hokrank")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("HOKRANK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DataPath resolves the catalog file against the repo directory.
func (c *Config) DataPath() string {
	if filepath.IsAbs(c.DataFile) {
		return c.DataFile
	}
	return filepath.Join(c.RepoPath, c.DataFile)
}

// HistoryPath resolves the history database the same way.
func (c *Config) HistoryPath() string {
	if filepath.IsAbs(c.HistoryDB) {
		return c.HistoryDB
	}
	return filepath.Join(c.RepoPath, c.HistoryDB)
}
