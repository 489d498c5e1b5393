// Package settings holds the player's persisted preferences.
//
// The record is stored as a versioned JSON blob through a ports.SettingsStore.
// Blobs that are missing, unreadable, or written by an incompatible version are
// replaced by defaults; loading never fails because of stored data.
package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// CurrentVersion is bumped whenever the stored shape changes incompatibly.
const CurrentVersion = 2

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
	ThemeAuto  Theme = "auto"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// ScaleSeconds adjusts a boss time budget for the difficulty.
func (d Difficulty) ScaleSeconds(seconds int) int {
	switch d {
	case DifficultyEasy:
		return int(math.Round(float64(seconds) * 1.5))
	case DifficultyHard:
		return int(math.Round(float64(seconds) * 0.75))
	}
	return seconds
}

// Settings is the flat preference record.
type Settings struct {
	Version      int        `json:"version"`
	SoundEnabled bool       `json:"sound_enabled"`
	Volume       float64    `json:"volume"`
	Theme        Theme      `json:"theme"`
	Hints        bool       `json:"hints"`
	AutoAdvance  bool       `json:"auto_advance"`
	Difficulty   Difficulty `json:"difficulty"`
	PlayerName   string     `json:"player_name"`
}

// Defaults returns the settings used on first launch.
func Defaults() Settings {
	return Settings{
		Version:      CurrentVersion,
		SoundEnabled: true,
		Volume:       0.7,
		Theme:        ThemeAuto,
		Hints:        true,
		AutoAdvance:  true,
		Difficulty:   DifficultyNormal,
		PlayerName:   "",
	}
}

var (
	ErrInvalidVolume     = errors.New("volume must be between 0 and 1")
	ErrInvalidTheme      = errors.New("unknown theme")
	ErrInvalidDifficulty = errors.New("unknown difficulty")
	ErrPlayerName        = errors.New("player name too long")
)

// MaxPlayerName bounds the player name in runes.
const MaxPlayerName = 32

// Validate checks every enumerated and bounded field.
func (s Settings) Validate() error {
	var errs []error
	if math.IsNaN(s.Volume) || s.Volume < 0 || s.Volume > 1 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidVolume, s.Volume))
	}
	switch s.Theme {
	case ThemeDark, ThemeLight, ThemeAuto:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidTheme, s.Theme))
	}
	switch s.Difficulty {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidDifficulty, s.Difficulty))
	}
	if len([]rune(s.PlayerName)) > MaxPlayerName {
		errs = append(errs, ErrPlayerName)
	}
	return errors.Join(errs...)
}

// Keys lists the names accepted by Set, in display order.
var Keys = []string{"sound_enabled", "volume", "theme", "hints", "auto_advance", "difficulty", "player_name"}

// Set assigns a field from its string form, as typed on the command line.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "sound_enabled", "hints", "auto_advance":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case "sound_enabled":
			s.SoundEnabled = b
		case "hints":
			s.Hints = b
		default:
			s.AutoAdvance = b
		}
	case "volume":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		s.Volume = v
	case "theme":
		s.Theme = Theme(value)
	case "difficulty":
		s.Difficulty = Difficulty(value)
	case "player_name":
		s.PlayerName = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
