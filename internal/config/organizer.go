// Package config resolves folderly settings from viper.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/folderly/internal/common"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyUser                = "user"
	KeyDatabasePath        = "database.path"
	KeyQuarantineDir       = "quarantine.dir"
	KeyQuarantineEnabled   = "quarantine.enabled"
	KeyQuarantineRetention = "quarantine.retention"
	KeyExclusions          = "exclusions"
	KeyWatchDebounce       = "watch.debounce"
	KeyScheduleCron        = "schedule.cron"
)

// Defaults.
const (
	DefaultRetention    = 30 * 24 * time.Hour
	DefaultDebounce     = 2 * time.Second
	DefaultScheduleCron = "0 * * * *"
)

// Organizer holds the resolved settings shared by every command.
type Organizer struct {
	User                string
	DatabasePath        string
	QuarantineDir       string
	ScheduleCron        string
	Exclusions          []string
	QuarantineRetention time.Duration
	WatchDebounce       time.Duration
	QuarantineEnabled   bool
}

// DataDir is where the database and quarantine live unless configured otherwise.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "folderly")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".folderly")
	}
	return filepath.Join(home, ".local", "share", "folderly")
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	dataDir := DataDir()
	v.SetDefault(KeyDatabasePath, filepath.Join(dataDir, "folderly.db"))
	v.SetDefault(KeyQuarantineDir, filepath.Join(dataDir, "quarantine"))
	v.SetDefault(KeyQuarantineEnabled, true)
	v.SetDefault(KeyQuarantineRetention, DefaultRetention)
	v.SetDefault(KeyWatchDebounce, DefaultDebounce)
	v.SetDefault(KeyScheduleCron, DefaultScheduleCron)
}

// LoadOrganizerConfig reads the global viper instance.
func LoadOrganizerConfig() (*Organizer, error) {
	return FromViper(viper.GetViper())
}

// FromViper builds and validates an Organizer from v. Missing values fall
// back to the defaults; the user falls back to the login name.
func FromViper(v *viper.Viper) (*Organizer, error) {
	SetDefaults(v)

	cfg := &Organizer{
		User:                strings.TrimSpace(v.GetString(KeyUser)),
		DatabasePath:        ExpandPath(v.GetString(KeyDatabasePath)),
		QuarantineDir:       ExpandPath(v.GetString(KeyQuarantineDir)),
		QuarantineEnabled:   v.GetBool(KeyQuarantineEnabled),
		QuarantineRetention: v.GetDuration(KeyQuarantineRetention),
		Exclusions:          v.GetStringSlice(KeyExclusions),
		WatchDebounce:       v.GetDuration(KeyWatchDebounce),
		ScheduleCron:        strings.TrimSpace(v.GetString(KeyScheduleCron)),
	}

	if cfg.User == "" {
		cfg.User = currentUser()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (o *Organizer) Validate() error {
	if o.User == "" {
		return fmt.Errorf("%w: %s is not set and the login name is unknown", common.ErrMissingConfig, KeyUser)
	}
	if o.DatabasePath == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if o.QuarantineEnabled && o.QuarantineDir == "" {
		return fmt.Errorf("%w: %s is required when quarantine is enabled", common.ErrMissingConfig, KeyQuarantineDir)
	}
	if o.QuarantineRetention < 0 {
		return fmt.Errorf("%w: %s cannot be negative", common.ErrInvalidConfig, KeyQuarantineRetention)
	}
	if o.WatchDebounce <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyWatchDebounce)
	}
	for _, name := range o.Exclusions {
		if strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%w: exclusion %q must be a folder name, not a path", common.ErrInvalidConfig, name)
		}
	}
	return nil
}

// Quarantine returns the quarantine directory, or "" when it is disabled.
func (o *Organizer) Quarantine() string {
	if !o.QuarantineEnabled {
		return ""
	}
	return o.QuarantineDir
}

// ExpandPath expands a leading ~ and $VAR references.
func ExpandPath(path string) string {
	switch {
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

func currentUser() string {
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
