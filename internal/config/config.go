package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/idlecore/internal/model"
)

// Simulation holds all configuration for the simulation daemon.
type Simulation struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Game loop
	TickRate time.Duration `yaml:"tick_rate"`
	MaxStep  time.Duration `yaml:"max_step"`

	// World
	CellSize            int           `yaml:"cell_size"` // world units
	Workers             int           `yaml:"workers"`   // 0 = NumCPU
	SequentialThreshold int           `yaml:"sequential_threshold"`
	LockTimeout         time.Duration `yaml:"lock_timeout"` // 0 disables the watchdog
	ReserveSlots        int           `yaml:"reserve_slots"`

	Camera    CameraConfig   `yaml:"camera"`
	PoolSizes map[string]int `yaml:"pool_sizes"` // attack kind name -> pooled objects
	Combat    CombatConfig   `yaml:"combat"`
	Spawner   SpawnerConfig  `yaml:"spawner"`
	Autosave  AutosaveConfig `yaml:"autosave"`

	// Database
	Database DatabaseConfig `yaml:"database"`
}

// CameraConfig holds camera zoom limits and follow speed.
type CameraConfig struct {
	Zoom      float64 `yaml:"zoom"`
	MinZoom   float64 `yaml:"min_zoom"`
	MaxZoom   float64 `yaml:"max_zoom"`
	Smoothing float64 `yaml:"smoothing"`
}

// CombatConfig selects the player's and enemies' attacks.
type CombatConfig struct {
	PlayerAttacks []string `yaml:"player_attacks"`
	EnemyAttack   string   `yaml:"enemy_attack"` // empty = enemies only chase
	MightBonus    int32    `yaml:"might_bonus"`
}

// SpawnerConfig configures enemy waves.
type SpawnerConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Interval   time.Duration `yaml:"interval"`
	WaveSize   int           `yaml:"wave_size"`
	MaxEnemies int           `yaml:"max_enemies"`
	Radius     int           `yaml:"radius"` // world units
	Seed       int64         `yaml:"seed"`   // 0 = random
}

// AutosaveConfig configures periodic progress saves.
type AutosaveConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Slot     int           `yaml:"slot"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultSimulation returns Simulation config with sensible defaults.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel:            "info",
		TickRate:            time.Second / 60,
		MaxStep:             100 * time.Millisecond,
		CellSize:            8,
		Workers:             0,
		SequentialThreshold: 256,
		LockTimeout:         2 * time.Second,
		ReserveSlots:        4096,
		Camera: CameraConfig{
			Zoom:      1,
			MinZoom:   0.5,
			MaxZoom:   3,
			Smoothing: 8,
		},
		PoolSizes: map[string]int{
			"slash": 1024,
			"bolt":  1024,
			"nova":  1024,
		},
		Combat: CombatConfig{
			PlayerAttacks: []string{"slash", "bolt", "nova"},
			EnemyAttack:   "slash",
			MightBonus:    2,
		},
		Spawner: SpawnerConfig{
			Enabled:    true,
			Interval:   3 * time.Second,
			WaveSize:   8,
			MaxEnemies: 400,
			Radius:     24,
		},
		Autosave: AutosaveConfig{
			Enabled:  false,
			Interval: 30 * time.Second,
			Slot:     1,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "idlecore",
			Password: "idlecore",
			DBName:   "idlecore",
			SSLMode:  "disable",
		},
	}
}

// LoadSimulation loads simulation config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSimulation(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every invalid field at once.
func (s Simulation) Validate() error {
	var errs []error

	if _, err := s.Level(); err != nil {
		errs = append(errs, err)
	}
	if s.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %s", s.TickRate))
	}
	if s.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("cell_size must be positive, got %d", s.CellSize))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", s.Workers))
	}
	if s.Camera.MinZoom <= 0 || s.Camera.MaxZoom < s.Camera.MinZoom {
		errs = append(errs, fmt.Errorf("camera zoom range [%v, %v] is invalid", s.Camera.MinZoom, s.Camera.MaxZoom))
	}
	if _, err := s.AttackPools(); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.PlayerAttacks(); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.EnemyAttack(); err != nil {
		errs = append(errs, err)
	}
	if s.Spawner.Enabled && (s.Spawner.Interval <= 0 || s.Spawner.WaveSize <= 0) {
		errs = append(errs, errors.New("spawner needs a positive interval and wave_size"))
	}
	if s.Autosave.Enabled && s.Autosave.Interval <= 0 {
		errs = append(errs, errors.New("autosave needs a positive interval"))
	}

	return errors.Join(errs...)
}

// Level parses LogLevel.
func (s Simulation) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// AttackPools resolves PoolSizes to attack kinds.
func (s Simulation) AttackPools() (map[model.AttackKind]int, error) {
	pools := make(map[model.AttackKind]int, len(s.PoolSizes))
	for name, n := range s.PoolSizes {
		kind, err := model.ParseAttackKind(name)
		if err != nil {
			return nil, fmt.Errorf("pool_sizes: %w", err)
		}
		if n < 0 {
			return nil, fmt.Errorf("pool_sizes: %s size must not be negative, got %d", name, n)
		}
		pools[kind] = n
	}
	return pools, nil
}

// PlayerAttacks resolves Combat.PlayerAttacks to attack kinds.
func (s Simulation) PlayerAttacks() ([]model.AttackKind, error) {
	kinds := make([]model.AttackKind, 0, len(s.Combat.PlayerAttacks))
	for _, name := range s.Combat.PlayerAttacks {
		kind, err := model.ParseAttackKind(name)
		if err != nil {
			return nil, fmt.Errorf("combat.player_attacks: %w", err)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// EnemyAttack resolves Combat.EnemyAttack; an empty name yields 0.
func (s Simulation) EnemyAttack() (model.AttackKind, error) {
	if s.Combat.EnemyAttack == "" {
		return 0, nil
	}
	kind, err := model.ParseAttackKind(s.Combat.EnemyAttack)
	if err != nil {
		return 0, fmt.Errorf("combat.enemy_attack: %w", err)
	}
	return kind, nil
}
