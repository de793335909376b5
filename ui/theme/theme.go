package theme

// Palette and widget styles for the status panel.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/plaque-overlay/domain/tracking"
)

const (
	ColorBg        = "#f7f9fb"
	ColorSurface   = "#ffffff"
	ColorBorder    = "#d0d7de"
	ColorPrimary   = "#2563eb"
	ColorDanger    = "#dc2626"
	ColorTracking  = "#10b981"
	ColorNone      = "#64748b"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Tracking  string
	None      string
	Text      string
	TextMuted string
}

// CurrentPalette returns colors for the current dark/light mode.
func CurrentPalette() PaletteSnapshot {
	if darkMode {
		return PaletteSnapshot{
			AppBg:     "#0f172a",
			Surface:   "#1e293b",
			Border:    "#334155",
			Primary:   "#3b82f6",
			Danger:    "#ef4444",
			Tracking:  "#34d399",
			None:      "#475569",
			Text:      "#f1f5f9",
			TextMuted: "#94a3b8",
		}
	}
	return PaletteSnapshot{
		AppBg:     ColorBg,
		Surface:   ColorSurface,
		Border:    ColorBorder,
		Primary:   ColorPrimary,
		Danger:    ColorDanger,
		Tracking:  ColorTracking,
		None:      ColorNone,
		Text:      ColorText,
		TextMuted: ColorTextMuted,
	}
}

// StateColors returns background and foreground for the state label.
func StateColors(s tracking.State) (bg, fg string) {
	p := CurrentPalette()
	if s == tracking.StateTracking {
		return p.Tracking, "white"
	}
	return p.None, "white"
}

// StateText is the label caption for s.
func StateText(s tracking.State) string {
	if s == tracking.StateTracking {
		return "TRACKING"
	}
	return "NONE"
}

const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
)

var darkMode bool

// InitStyles (re)applies styles for the current darkMode value.
func InitStyles() { applyStyles() }

// SetDark switches mode and reapplies styles. Returns new mode value.
func SetDark(dark bool) bool {
	darkMode = dark
	applyStyles()
	return darkMode
}

// ToggleDark flips dark mode and reapplies styles. Returns new mode value.
func ToggleDark() bool { return SetDark(!darkMode) }

// IsDark reports current mode.
func IsDark() bool { return darkMode }

func applyStyles() {
	p := CurrentPalette()
	_ = ActivateTheme("azure light")
	App.Configure(Background(p.AppBg))
	StyleConfigure(StylePrimaryButton,
		Background(p.Primary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleDangerButton,
		Background(p.Danger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
}
