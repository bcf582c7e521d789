package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/navgrid/internal/geo"
)

// Server holds all configuration for the navigation server.
type Server struct {
	World       WorldConfig       `yaml:"world"`
	Obstacles   []ObstacleConfig  `yaml:"obstacles"`
	Pathfinding PathfindingConfig `yaml:"pathfinding"`
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Journal     JournalConfig     `yaml:"journal"`
	Log         LogConfig         `yaml:"log"`
}

// WorldConfig describes the rectangle covered by the grid.
type WorldConfig struct {
	OriginX    float64 `yaml:"origin_x"`
	OriginY    float64 `yaml:"origin_y"`
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	CellRadius float64 `yaml:"cell_radius"`
}

// Origin returns the world centre.
func (w WorldConfig) Origin() geo.Vec2 { return geo.V(w.OriginX, w.OriginY) }

// Size returns the world extent.
func (w WorldConfig) Size() geo.Vec2 { return geo.V(w.Width, w.Height) }

// ObstacleConfig is one static obstacle. Kind is "circle" (uses Radius) or
// "rect" (uses Width and Height); X and Y are the shape's centre.
type ObstacleConfig struct {
	Kind   string  `yaml:"kind"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PathfindingConfig tunes the search engine.
type PathfindingConfig struct {
	MaxExpansions int  `yaml:"max_expansions"` // 0 = unlimited
	YieldEvery    int  `yaml:"yield_every"`
	Smooth        bool `yaml:"smooth"`
	CornerCutting bool `yaml:"corner_cutting"`
}

// HTTPConfig configures the websocket API listener.
type HTTPConfig struct {
	BindAddress  string        `yaml:"bind_address"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.BindAddress, h.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters for the route journal.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
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

// JournalConfig tunes the asynchronous route journal writer.
type JournalConfig struct {
	QueueSize     int           `yaml:"queue_size"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// LogConfig selects the slog level.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// SlogLevel maps Level to a slog.Level; unknown values mean info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultServer returns Server config with sensible defaults: a 100x100 world
// of 1-unit cells centred on the origin and no obstacles.
func DefaultServer() Server {
	return Server{
		World: WorldConfig{
			Width:      100,
			Height:     100,
			CellRadius: 0.5,
		},
		Pathfinding: PathfindingConfig{
			YieldEvery:    256,
			CornerCutting: true,
		},
		HTTP: HTTPConfig{
			BindAddress:  "0.0.0.0",
			Port:         7780,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "navgrid",
			Password: "navgrid",
			DBName:   "navgrid",
			SSLMode:  "disable",
		},
		Journal: JournalConfig{
			QueueSize:     1024,
			BatchSize:     128,
			FlushInterval: 2 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

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

// Validate rejects settings that cannot produce a usable grid or journal.
func (s Server) Validate() error {
	var errs []error
	if !(s.World.Width > 0) || !(s.World.Height > 0) {
		errs = append(errs, fmt.Errorf("world size must be positive, got %vx%v", s.World.Width, s.World.Height))
	}
	if !(s.World.CellRadius > 0) {
		errs = append(errs, fmt.Errorf("world cell_radius must be positive, got %v", s.World.CellRadius))
	}
	for i, o := range s.Obstacles {
		if _, err := o.Shape(); err != nil {
			errs = append(errs, fmt.Errorf("obstacle %d: %w", i, err))
		}
	}
	if s.Pathfinding.MaxExpansions < 0 || s.Pathfinding.YieldEvery < 0 {
		errs = append(errs, errors.New("pathfinding limits must not be negative"))
	}
	if s.Journal.QueueSize <= 0 || s.Journal.BatchSize <= 0 {
		errs = append(errs, errors.New("journal queue_size and batch_size must be positive"))
	}
	return errors.Join(errs...)
}

// Shape converts the entry to a geo.Shape.
func (o ObstacleConfig) Shape() (geo.Shape, error) {
	center := geo.V(o.X, o.Y)
	switch strings.ToLower(o.Kind) {
	case "circle":
		if !(o.Radius > 0) {
			return nil, fmt.Errorf("circle radius must be positive, got %v", o.Radius)
		}
		return geo.Circle{Center: center, Radius: o.Radius}, nil
	case "rect":
		if !(o.Width > 0) || !(o.Height > 0) {
			return nil, fmt.Errorf("rect size must be positive, got %vx%v", o.Width, o.Height)
		}
		return geo.NewRect(center, geo.V(o.Width, o.Height)), nil
	default:
		return nil, fmt.Errorf("unknown obstacle kind %q", o.Kind)
	}
}

// ObstacleSet builds the obstacle layer from all entries.
func (s Server) ObstacleSet() (geo.ObstacleSet, error) {
	set := make(geo.ObstacleSet, 0, len(s.Obstacles))
	for i, o := range s.Obstacles {
		shape, err := o.Shape()
		if err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
		set = append(set, shape)
	}
	return set, nil
}
