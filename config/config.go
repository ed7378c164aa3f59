// Package config loads the server configuration: defaults first, then an
// optional YAML file over them.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/bonkhost/bonk-room/game"
)

// Config is everything the server reads at startup.
type Config struct {
	Port     int  `yaml:"port"`
	UseHTTPS bool `yaml:"useHttps"`
	// TLSCert and TLSKey are only read when UseHTTPS is set; missing
	// material is a startup error.
	TLSCert string `yaml:"tlsCert"`
	TLSKey  string `yaml:"tlsKey"`

	RoomNameOnStartup     string `yaml:"roomNameOnStartup"`
	RoomPasswordOnStartup string `yaml:"roomPasswordOnStartup"`
	MaxPlayers            int    `yaml:"maxPlayers"`
	// AutoAssignHost hands the host role to the first player in and to the
	// next player when the host leaves.
	AutoAssignHost bool `yaml:"autoAssignHost"`
	// TimeStampFormat is a Go time layout used for chat log lines and chat
	// log file names.
	TimeStampFormat     string            `yaml:"timeStampFormat"`
	DefaultGameSettings game.GameSettings `yaml:"defaultGameSettings"`
	Restrictions        Restrictions      `yaml:"restrictions"`

	// BanFile and ChatLogDir are where the room's durable state lives,
	// relative to the working directory unless absolute.
	BanFile    string `yaml:"banFile"`
	ChatLogDir string `yaml:"chatLogDir"`
}

// Restrictions gate who may join and how fast anyone may act.
type Restrictions struct {
	Usernames            UsernameRules        `yaml:"usernames"`
	Levels               LevelRules           `yaml:"levels"`
	MaxChatMessageLength int                  `yaml:"maxChatMessageLength"`
	Ratelimits           map[string]Ratelimit `yaml:"ratelimits"`
}

type UsernameRules struct {
	NoDuplicates bool `yaml:"noDuplicates"`
	NoEmptyNames bool `yaml:"noEmptyNames"`
	MaxLength    int  `yaml:"maxLength"`
	// DisallowRegex rejects any join whose username matches it. Empty
	// disables the check.
	DisallowRegex string `yaml:"disallowRegex"`
}

type LevelRules struct {
	MinLevel int `yaml:"minLevel"`
	MaxLevel int `yaml:"maxLevel"`
	// OnlyAllowNumbers rejects joins whose reported level is not all
	// digits. Levels are client-reported and spoofable either way.
	OnlyAllowNumbers bool `yaml:"onlyAllowNumbers"`
	// CensorLevels stores and shows "-" instead of the reported level.
	CensorLevels bool `yaml:"censorLevels"`
}

// Ratelimit is one action class's window: Amount hits inside Timeframe
// seconds fill the counter, Restore seconds later it empties again.
type Ratelimit struct {
	Amount    int `yaml:"amount"`
	Timeframe int `yaml:"timeframe"`
	Restore   int `yaml:"restore"`
}

// Default returns the configuration the server runs with when no file
// overrides it.
func Default() *Config {
	return &Config{
		Port:              3000,
		RoomNameOnStartup: "Unnamed server",
		MaxPlayers:        8,
		AutoAssignHost:    true,
		TimeStampFormat:   "2006-01-02 15:04:05",
		DefaultGameSettings: game.GameSettings{
			Map: "",
			GT:  2,
			WL:  3,
			GA:  "b",
			MO:  "b",
			Bal: map[string]int{},
		},
		Restrictions: Restrictions{
			Usernames: UsernameRules{
				NoDuplicates: true,
				NoEmptyNames: true,
				MaxLength:    15,
			},
			Levels: LevelRules{
				MinLevel: 0,
				MaxLevel: 999,
			},
			MaxChatMessageLength: 300,
			Ratelimits: map[string]Ratelimit{
				"joining":            {Amount: 5, Timeframe: 3, Restore: 20},
				"chatting":           {Amount: 7, Timeframe: 3, Restore: 7},
				"changingTeams":      {Amount: 7, Timeframe: 3, Restore: 10},
				"readying":           {Amount: 9, Timeframe: 4, Restore: 10},
				"transferringHost":   {Amount: 4, Timeframe: 5, Restore: 15},
				"changingMode":       {Amount: 5, Timeframe: 2, Restore: 8},
				"changingMap":        {Amount: 5, Timeframe: 2, Restore: 8},
				"startGameCountdown": {Amount: 5, Timeframe: 3, Restore: 8},
				"startingEndingGame": {Amount: 5, Timeframe: 3, Restore: 10},
			},
		},
		BanFile:    "banlist.json",
		ChatLogDir: "chatlogs",
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxPlayers < 1 {
		return fmt.Errorf("maxPlayers must be at least 1, got %d", c.MaxPlayers)
	}
	if pat := c.Restrictions.Usernames.DisallowRegex; pat != "" {
		if _, err := regexp.Compile(pat); err != nil {
			return fmt.Errorf("disallowRegex: %w", err)
		}
	}
	if c.TimeStampFormat == "" {
		return fmt.Errorf("timeStampFormat must not be empty")
	}
	return nil
}
