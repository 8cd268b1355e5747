package types

import (
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Level
	}{
		{"routine", Routine},
		{"urgent", Urgent},
		{"critical", Critical},
		{"super_critical", SuperCritical},
		{"SUPER_CRITICAL", SuperCritical},
		{" urgent ", Urgent},
		{"", Routine},
		{"catastrophic", Routine},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDecodeAlert_FullPayload(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"signature": "abc-123",
		"level": "critical",
		"summary": "Network isolation",
		"message": "Disconnect from all external networks immediately.",
		"background_color": "#112233",
		"foreground_color": "#FFFFFF",
		"alert_contact_name": "SOC",
		"alert_contact_phone": "555-0100",
		"site": "HQ",
		"audio_file": "klaxon.wav"
	}`)

	alert, err := DecodeAlert(data)
	if err != nil {
		t.Fatalf("DecodeAlert: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert")
	}
	if alert.Signature != "abc-123" {
		t.Errorf("Signature = %q, want %q", alert.Signature, "abc-123")
	}
	if alert.Level != Critical {
		t.Errorf("Level = %v, want %v", alert.Level, Critical)
	}
	if alert.Contact.Empty() {
		t.Error("expected contact to be present")
	}
	if alert.Contact.Name != "SOC" {
		t.Errorf("Contact.Name = %q, want %q", alert.Contact.Name, "SOC")
	}
	if alert.Background() != "#112233" {
		t.Errorf("Background() = %q, want %q", alert.Background(), "#112233")
	}
}

func TestDecodeAlert_NoAlertShapes(t *testing.T) {
	t.Parallel()

	for _, data := range []string{"", "  \n", "{}", `{"site":"HQ"}`} {
		alert, err := DecodeAlert([]byte(data))
		if err != nil {
			t.Fatalf("DecodeAlert(%q): %v", data, err)
		}
		if alert != nil {
			t.Errorf("DecodeAlert(%q) = %+v, want nil", data, alert)
		}
	}
}

func TestDecodeAlert_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := DecodeAlert([]byte(`{"level": "urgent"`)); err == nil {
		t.Fatal("expected parse error for truncated JSON")
	}
}

func TestDecodeAlert_UnknownLevelFailsOpen(t *testing.T) {
	t.Parallel()

	alert, err := DecodeAlert([]byte(`{"level":"apocalyptic","summary":"x","message":"y"}`))
	if err != nil {
		t.Fatalf("DecodeAlert: %v", err)
	}
	if alert.Level != Routine {
		t.Errorf("Level = %v, want %v", alert.Level, Routine)
	}
}

func TestDecodeAlert_SignatureFallbackIsStable(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"level":"urgent","summary":"s","message":"m"}`)
	a, err := DecodeAlert(payload)
	if err != nil {
		t.Fatalf("DecodeAlert: %v", err)
	}
	b, err := DecodeAlert(payload)
	if err != nil {
		t.Fatalf("DecodeAlert: %v", err)
	}
	if a.Signature == "" {
		t.Fatal("expected a derived signature")
	}
	if a.Signature != b.Signature {
		t.Errorf("signatures differ for identical payloads: %q vs %q", a.Signature, b.Signature)
	}

	c, err := DecodeAlert([]byte(`{"level":"urgent","summary":"s","message":"changed"}`))
	if err != nil {
		t.Fatalf("DecodeAlert: %v", err)
	}
	if c.Signature == a.Signature {
		t.Error("expected different payloads to derive different signatures")
	}
}

func TestAlertMessage_PaletteFallback(t *testing.T) {
	t.Parallel()

	a := &AlertMessage{Level: SuperCritical}
	if a.Background() != SuperCritical.DefaultBackground() {
		t.Errorf("Background() = %q, want level default %q", a.Background(), SuperCritical.DefaultBackground())
	}
	if a.Foreground() != SuperCritical.DefaultForeground() {
		t.Errorf("Foreground() = %q, want level default %q", a.Foreground(), SuperCritical.DefaultForeground())
	}
}

func TestAlertMessage_MatchesSite(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		site  string
		sites []string
		want  bool
	}{
		{"no site means everywhere", "", []string{"HQ"}, true},
		{"exact", "HQ", []string{"HQ", "LAB"}, true},
		{"case insensitive", "hq", []string{"HQ"}, true},
		{"whitespace tolerant", "LAB", []string{" HQ ", " LAB "}, true},
		{"not a member", "DC2", []string{"HQ", "LAB"}, false},
		{"no local sites", "HQ", nil, false},
	}
	for _, tc := range cases {
		a := &AlertMessage{Site: tc.site}
		if got := a.MatchesSite(tc.sites); got != tc.want {
			t.Errorf("%s: MatchesSite = %v, want %v", tc.name, got, tc.want)
		}
	}
}
