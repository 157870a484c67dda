package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Board  BoardConfig  `toml:"board"`
	Window WindowConfig `toml:"window"`
	Share  ShareConfig  `toml:"share"`
	Log    LogConfig    `toml:"log"`
}

type BoardConfig struct {
	ZoomMin  int     `toml:"zoom_min"`
	ZoomMax  int     `toml:"zoom_max"`
	GridStep float32 `toml:"grid_step"`
}

type WindowConfig struct {
	Title  string  `toml:"title"`
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
}

// ShareConfig controls hosting the board for other machines on the LAN.
type ShareConfig struct {
	Enabled   bool `toml:"enabled"`
	Port      int  `toml:"port"`
	Advertise bool `toml:"advertise"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		Board:  BoardConfig{ZoomMin: -5, ZoomMax: 5, GridStep: 20},
		Window: WindowConfig{Title: "NodeBoard", Width: 1024, Height: 768},
		Share:  ShareConfig{Port: 8888, Advertise: true},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path, or a path that does not
// exist, yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Board.ZoomMin > 0 || c.Board.ZoomMax < 0 {
		return fmt.Errorf("%w: zoom range [%d, %d] must contain 0", ErrInvalid, c.Board.ZoomMin, c.Board.ZoomMax)
	}
	if c.Board.GridStep <= 0 {
		return fmt.Errorf("%w: grid_step must be positive", ErrInvalid)
	}
	if c.Share.Port <= 0 || c.Share.Port > 65535 {
		return fmt.Errorf("%w: share port %d", ErrInvalid, c.Share.Port)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size", ErrInvalid)
	}
	return nil
}
