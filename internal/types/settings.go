package types

import "encoding/json"

// GlobalSettings are server-pushed feature toggles. Each field is nullable;
// nil means "use the local default".
type GlobalSettings struct {
	TripleClickMenuEnabled *bool `json:"triple_click_enabled,omitempty"`
	TerminateEnabled       *bool `json:"terminate_enabled,omitempty"`
	KeyringEnabled         *bool `json:"keyring_enabled,omitempty"`
	TrayOnlyMode           *bool `json:"tray_only_mode,omitempty"`
}

// DecodeSettings parses the admin settings payload. An empty body decodes to
// all-nil settings, not an error.
func DecodeSettings(data []byte) (*GlobalSettings, error) {
	s := &GlobalSettings{}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Equal reports whether two settings snapshots carry the same toggles.
func (s *GlobalSettings) Equal(o *GlobalSettings) bool {
	eq := func(a, b *bool) bool {
		if a == nil || b == nil {
			return a == b
		}
		return *a == *b
	}
	return eq(s.TripleClickMenuEnabled, o.TripleClickMenuEnabled) &&
		eq(s.TerminateEnabled, o.TerminateEnabled) &&
		eq(s.KeyringEnabled, o.KeyringEnabled) &&
		eq(s.TrayOnlyMode, o.TrayOnlyMode)
}
