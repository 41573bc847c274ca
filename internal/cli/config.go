package cli

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/behave/pkg/canvas"
	"github.com/matzehuels/behave/pkg/errors"
	pkgio "github.com/matzehuels/behave/pkg/io"
	"github.com/matzehuels/behave/pkg/store"
)

// Config is the content of behave.toml:
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[export]
//	file_base_url = "https://cdn.example.com/game"
//	indent = "  "
//
//	[layout]
//	column_gap = 80
//	row_gap = 40
type Config struct {
	Store  store.Config `toml:"store"`
	Export ExportConfig `toml:"export"`
	Layout LayoutConfig `toml:"layout"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	FileBaseURL string `toml:"file_base_url"`
	Indent      string `toml:"indent"`
}

// LayoutConfig holds auto-layout defaults. Zero values keep the built-in
// defaults.
type LayoutConfig struct {
	ColumnGap float64 `toml:"column_gap"`
	RowGap    float64 `toml:"row_gap"`
	Sweeps    int     `toml:"sweeps"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Store:  store.Config{Backend: store.BackendFile},
		Export: ExportConfig{Indent: pkgio.DefaultOptions().Indent},
	}
}

// LoadConfig reads the config file at path, or at the default location when
// path is empty. A missing default file yields [DefaultConfig]; a missing
// explicit file is an error. Unknown keys and backends are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, appName+".toml")
	}

	md, err := toml.DecodeFile(path, &cfg)
	if stderrors.Is(err, fs.ErrNotExist) && !explicit {
		return DefaultConfig(), nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	switch cfg.Store.Backend {
	case "", store.BackendFile, store.BackendMemory, store.BackendRedis, store.BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", cfg.Store.Backend)
	}
	if cfg.Layout.ColumnGap < 0 || cfg.Layout.RowGap < 0 || cfg.Layout.Sweeps < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout gaps and sweeps must not be negative")
	}
	return nil
}

// layoutOptions merges the layout section over the built-in defaults.
func (cfg Config) layoutOptions() canvas.LayoutOptions {
	opts := canvas.DefaultLayoutOptions()
	if cfg.Layout.ColumnGap > 0 {
		opts.ColumnGap = cfg.Layout.ColumnGap
	}
	if cfg.Layout.RowGap > 0 {
		opts.RowGap = cfg.Layout.RowGap
	}
	if cfg.Layout.Sweeps > 0 {
		opts.Sweeps = cfg.Layout.Sweeps
	}
	return opts
}

// storeConfig returns the store section with a file backend rooted in the
// data directory when no directory is configured.
func (cfg Config) storeConfig() (store.Config, error) {
	sc := cfg.Store
	if (sc.Backend == store.BackendFile || sc.Backend == "") && sc.Dir == "" {
		dir, err := dataDir()
		if err != nil {
			return sc, errors.Wrap(errors.ErrCodeInvalidInput, err, "locate data directory")
		}
		sc.Backend = store.BackendFile
		sc.Dir = filepath.Join(dir, "store")
	}
	return sc, nil
}
