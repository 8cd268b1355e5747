package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Level is the ordered alert severity tier.
type Level int

const (
	Routine Level = iota
	Urgent
	Critical
	SuperCritical
)

// ParseLevel maps a wire level string to a Level. Unrecognized or absent
// values fall open to Routine so a bad payload degrades to the least
// disruptive presentation instead of failing.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "urgent":
		return Urgent
	case "critical":
		return Critical
	case "super_critical":
		return SuperCritical
	default:
		return Routine
	}
}

func (l Level) String() string {
	switch l {
	case Urgent:
		return "urgent"
	case Critical:
		return "critical"
	case SuperCritical:
		return "super_critical"
	default:
		return "routine"
	}
}

// DefaultBackground returns the banner background for alerts that do not
// carry their own palette.
func (l Level) DefaultBackground() string {
	switch l {
	case Urgent:
		return "#F9A825"
	case Critical:
		return "#C62828"
	case SuperCritical:
		return "#B71C1C"
	default:
		return "#2E7D32"
	}
}

// DefaultForeground returns the banner text color for alerts that do not
// carry their own palette.
func (l Level) DefaultForeground() string {
	if l == Urgent {
		return "#000000"
	}
	return "#FFFFFF"
}

// Contact is the optional point-of-contact panel. Presence of any field makes
// the panel visible.
type Contact struct {
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	TeamsLink string `json:"teams_link,omitempty"`
}

// Empty reports whether no contact field is set.
func (c Contact) Empty() bool {
	return c == Contact{}
}

// AlertMessage is one alert as consumed by the agent. Immutable once
// constructed; two messages with equal Signature are the same alert.
type AlertMessage struct {
	Signature       string  `json:"signature"`
	Level           Level   `json:"level"`
	Summary         string  `json:"summary"`
	Message         string  `json:"message"`
	BackgroundColor string  `json:"background_color,omitempty"`
	ForegroundColor string  `json:"foreground_color,omitempty"`
	Contact         Contact `json:"contact,omitempty"`
	Site            string  `json:"site,omitempty"`
	AudioFile       string  `json:"audio_file,omitempty"`
}

// Background returns the alert-provided background or the level default.
func (a *AlertMessage) Background() string {
	if a.BackgroundColor != "" {
		return a.BackgroundColor
	}
	return a.Level.DefaultBackground()
}

// Foreground returns the alert-provided foreground or the level default.
func (a *AlertMessage) Foreground() string {
	if a.ForegroundColor != "" {
		return a.ForegroundColor
	}
	return a.Level.DefaultForeground()
}

// MatchesSite reports whether this alert is relevant to a workstation
// configured with the given site tags. Alerts without a site are relevant
// everywhere; matching is case-insensitive.
func (a *AlertMessage) MatchesSite(sites []string) bool {
	if a.Site == "" {
		return true
	}
	for _, s := range sites {
		if strings.EqualFold(strings.TrimSpace(s), a.Site) {
			return true
		}
	}
	return false
}

// wirePayload is the JSON shape served by the alert file or endpoint.
type wirePayload struct {
	Signature        string `json:"signature"`
	Level            string `json:"level"`
	Summary          string `json:"summary"`
	Message          string `json:"message"`
	BackgroundColor  string `json:"background_color"`
	ForegroundColor  string `json:"foreground_color"`
	ContactName      string `json:"alert_contact_name"`
	ContactPhone     string `json:"alert_contact_phone"`
	ContactEmail     string `json:"alert_contact_email"`
	ContactTeamsLink string `json:"alert_contact_teams"`
	Site             string `json:"site"`
	AudioFile        string `json:"audio_file"`
}

// DecodeAlert parses a wire payload into an AlertMessage. It returns
// (nil, nil) for a recognized no-alert shape: empty input, or a payload with
// no level, summary and message. A payload without a server-assigned
// signature gets one derived from the raw bytes, so signature equality still
// tracks content identity.
func DecodeAlert(data []byte) (*AlertMessage, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	var p wirePayload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return nil, err
	}
	if p.Level == "" && p.Summary == "" && p.Message == "" {
		return nil, nil
	}

	sig := p.Signature
	if sig == "" {
		sum := sha256.Sum256([]byte(trimmed))
		sig = hex.EncodeToString(sum[:])
	}

	return &AlertMessage{
		Signature:       sig,
		Level:           ParseLevel(p.Level),
		Summary:         p.Summary,
		Message:         p.Message,
		BackgroundColor: p.BackgroundColor,
		ForegroundColor: p.ForegroundColor,
		Contact: Contact{
			Name:      p.ContactName,
			Phone:     p.ContactPhone,
			Email:     p.ContactEmail,
			TeamsLink: p.ContactTeamsLink,
		},
		Site:      p.Site,
		AudioFile: p.AudioFile,
	}, nil
}
