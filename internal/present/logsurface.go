package present

import (
	"github.com/gridbanner/gridbanner/internal/types"
	"github.com/rs/zerolog"
)

// LogSurface is a headless DisplaySurface that logs every applied command.
// It keeps the agent observable when no windowing layer is attached and
// doubles as a reference implementation for real surfaces.
type LogSurface struct {
	id  string
	log zerolog.Logger
}

// NewLogSurface builds a LogSurface with the given ID.
func NewLogSurface(id string, log zerolog.Logger) *LogSurface {
	return &LogSurface{
		id:  id,
		log: log.With().Str("component", "surface").Str("surface", id).Logger(),
	}
}

// ID implements DisplaySurface.
func (s *LogSurface) ID() string { return s.id }

// Apply implements DisplaySurface.
func (s *LogSurface) Apply(cmd types.PresentationCommand) error {
	if !cmd.Visible {
		s.log.Info().Msg("banner hidden")
		return nil
	}
	ev := s.log.Info().
		Str("level", cmd.Alert.Level.String()).
		Str("summary", cmd.Alert.Summary).
		Str("background", cmd.Background).
		Str("foreground", cmd.Foreground).
		Bool("flashing", cmd.Flashing).
		Bool("dismissible", cmd.ShowDismiss)
	if cmd.Alert.AudioFile != "" {
		ev = ev.Str("audio_file", cmd.Alert.AudioFile)
	}
	ev.Msg("banner shown")
	return nil
}
