package types

// PresentationCommand is the single derived instruction fanned out to every
// display surface. It is recomputed whole on each poll tick or dismiss and
// always replaces the prior command; surfaces never see a partial update.
type PresentationCommand struct {
	Visible     bool          `json:"visible"`
	Alert       *AlertMessage `json:"alert,omitempty"`
	Background  string        `json:"background,omitempty"`
	Foreground  string        `json:"foreground,omitempty"`
	ShowDismiss bool          `json:"show_dismiss"`
	Flashing    bool          `json:"flashing"`
}

// Hidden is the command that blanks every surface.
func Hidden() PresentationCommand {
	return PresentationCommand{}
}

// CommandFor derives the presentation command for an active alert.
// SuperCritical forces flashing and is never user-dismissible; it clears only
// when the source clears it.
func CommandFor(alert *AlertMessage) PresentationCommand {
	if alert == nil {
		return Hidden()
	}
	return PresentationCommand{
		Visible:     true,
		Alert:       alert,
		Background:  alert.Background(),
		Foreground:  alert.Foreground(),
		ShowDismiss: alert.Level != SuperCritical,
		Flashing:    alert.Level == SuperCritical,
	}
}
