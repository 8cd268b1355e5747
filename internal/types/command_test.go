package types

import "testing"

func TestCommandFor_SuperCritical(t *testing.T) {
	t.Parallel()

	cmd := CommandFor(&AlertMessage{Signature: "s", Level: SuperCritical, Summary: "x"})
	if !cmd.Visible {
		t.Error("expected visible command")
	}
	if !cmd.Flashing {
		t.Error("super_critical must flash")
	}
	if cmd.ShowDismiss {
		t.Error("super_critical must not be dismissible")
	}
}

func TestCommandFor_DismissibleLevels(t *testing.T) {
	t.Parallel()

	for _, lvl := range []Level{Routine, Urgent, Critical} {
		cmd := CommandFor(&AlertMessage{Signature: "s", Level: lvl})
		if !cmd.ShowDismiss {
			t.Errorf("level %v: expected dismiss button", lvl)
		}
		if cmd.Flashing {
			t.Errorf("level %v: expected no flashing", lvl)
		}
	}
}

func TestCommandFor_Idempotent(t *testing.T) {
	t.Parallel()

	a := &AlertMessage{Signature: "abc", Level: Urgent, Summary: "s", Message: "m"}
	first := CommandFor(a)
	second := CommandFor(a)
	if first != second {
		t.Errorf("commands differ for same alert: %+v vs %+v", first, second)
	}
}

func TestCommandFor_NilHides(t *testing.T) {
	t.Parallel()

	cmd := CommandFor(nil)
	if cmd != Hidden() {
		t.Errorf("CommandFor(nil) = %+v, want hidden", cmd)
	}
	if cmd.Visible || cmd.ShowDismiss || cmd.Flashing {
		t.Error("hidden command must have all flags off")
	}
}

func TestCommandFor_AlertPalette(t *testing.T) {
	t.Parallel()

	cmd := CommandFor(&AlertMessage{
		Signature:       "s",
		Level:           Critical,
		BackgroundColor: "#000001",
		ForegroundColor: "#000002",
	})
	if cmd.Background != "#000001" {
		t.Errorf("Background = %q, want alert-provided", cmd.Background)
	}
	if cmd.Foreground != "#000002" {
		t.Errorf("Foreground = %q, want alert-provided", cmd.Foreground)
	}
}
