// Package config loads the fixtures run by `piperun check`.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Timeout  time.Duration `toml:"timeout"`
	Fixtures []Fixture     `toml:"fixture"`
}

// Fixture is one canned program plus the stdin it is fed. When Command is
// empty, Code is executed directly as a shebang payload; otherwise Code is
// appended to Command as its final argument.
type Fixture struct {
	Name    string   `toml:"name"`
	Command []string `toml:"command"`
	Code    string   `toml:"code"`
	Input   string   `toml:"input"`
	Expect  string   `toml:"expect"`
}

const greetingCode = `
name = input("Enter your name: ")
age = input("Enter your age: ")
print(f"Hello {name}, you are {age} years old!")
`

// Default returns the built-in configuration: the two line greeting program
// run through python3.
func Default() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Fixtures: []Fixture{{
			Name:    "greeting",
			Command: []string{"python3", "-c"},
			Code:    greetingCode,
			Input:   "Alice\n25\n",
			Expect:  "Hello Alice, you are 25 years old!",
		}},
	}
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "piperun")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "piperun")
	}
	return filepath.Join(home, ".config", "piperun")
}

func ConfigPath() string {
	return filepath.Join(configDir(), "fixtures.toml")
}

// Load reads path, or ConfigPath() when path is empty. A missing file yields
// Default(); a file without fixtures keeps the built-in ones.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.Fixtures) == 0 {
		cfg.Fixtures = Default().Fixtures
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	names := make(map[string]bool)
	for i, f := range c.Fixtures {
		if f.Name == "" {
			return fmt.Errorf("fixture[%d]: name is required", i)
		}
		if names[f.Name] {
			return fmt.Errorf("fixture[%d]: duplicate name %q", i, f.Name)
		}
		names[f.Name] = true
		if len(f.Command) == 0 && f.Code == "" {
			return fmt.Errorf("fixture[%d] (%s): one of command or code is required", i, f.Name)
		}
	}
	return nil
}

// Select returns the named fixtures in the order given, or all of them when
// no names are passed.
func (c *Config) Select(names ...string) ([]Fixture, error) {
	if len(names) == 0 {
		return c.Fixtures, nil
	}
	selected := make([]Fixture, 0, len(names))
	for _, name := range names {
		f := c.FindFixture(name)
		if f == nil {
			return nil, fmt.Errorf("unknown fixture: %s", name)
		}
		selected = append(selected, *f)
	}
	return selected, nil
}

func (c *Config) FindFixture(name string) *Fixture {
	for i := range c.Fixtures {
		if c.Fixtures[i].Name == name {
			return &c.Fixtures[i]
		}
	}
	return nil
}

// IsPayload reports whether Code runs as an executable of its own.
func (f Fixture) IsPayload() bool {
	return len(f.Command) == 0
}

// Argv is the command line for non-payload fixtures.
func (f Fixture) Argv() []string {
	argv := append([]string(nil), f.Command...)
	if f.Code != "" {
		argv = append(argv, f.Code)
	}
	return argv
}
