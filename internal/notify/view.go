package notify

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	maxToastWidth  = 60
	dialogWidth    = 44
	maxShownToasts = 5
)

var (
	colorBlue    = lipgloss.Color("#007AFF")
	colorRed     = lipgloss.Color("#FF3B30")
	colorGreen   = lipgloss.Color("#34C759")
	colorAmber   = lipgloss.Color("#FF9F0A")
	colorCyan    = lipgloss.Color("#64D2FF")
	colorText    = lipgloss.Color("#FFFFFF")
	colorMuted   = lipgloss.Color("#8E8E93")
	colorSurface = lipgloss.Color("#1E1E1E")
	colorButton  = lipgloss.Color("#3A3A3C")
)

// accent returns the colour an overlay of type t is drawn with. Dialogs
// only distinguish warning (red) from everything else (blue).
func accent(kind Kind, t Type) lipgloss.Color {
	if kind == KindConfirm {
		if t == TypeWarning {
			return colorRed
		}
		return colorBlue
	}
	switch t {
	case TypeSuccess:
		return colorGreen
	case TypeWarning:
		return colorAmber
	case TypeError:
		return colorRed
	default:
		return colorCyan
	}
}

func icon(t Type) string {
	switch t {
	case TypeSuccess:
		return "✓"
	case TypeWarning:
		return "!"
	case TypeError:
		return "✗"
	default:
		return "i"
	}
}

// Render draws the stack over base. An open dialog replaces the screen,
// centred; otherwise toasts are stacked under base, right-aligned.
func (c *Center) Render(base string, width, height int) string {
	overlays := c.Overlays()

	var dialog *Overlay
	toasts := make([]Overlay, 0, len(overlays))
	for i := range overlays {
		if overlays[i].Kind == KindConfirm {
			dialog = &overlays[i]
			continue
		}
		toasts = append(toasts, overlays[i])
	}

	if dialog != nil {
		box := renderDialog(*dialog)
		if width > 0 && height > 0 {
			return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
		}
		return box
	}

	if len(toasts) == 0 {
		return base
	}
	if len(toasts) > maxShownToasts {
		toasts = toasts[len(toasts)-maxShownToasts:]
	}
	rendered := make([]string, len(toasts))
	for i, t := range toasts {
		rendered[i] = renderToast(t, width)
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	if width > 0 {
		stack = lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
	}
	return base + "\n" + stack
}

func renderToast(o Overlay, width int) string {
	w := maxToastWidth
	if width > 0 && width-4 < w {
		w = width - 4
	}
	if w < 20 {
		w = 20
	}

	color := accent(o.Kind, o.Type)
	iconStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	msgStyle := lipgloss.NewStyle().Foreground(colorText).Width(w - 6)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		MaxWidth(w).
		Render(iconStyle.Render(icon(o.Type)+" ") + msgStyle.Render(o.Message))
}

func renderDialog(o Overlay) string {
	color := accent(o.Kind, o.Type)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorText).Render(o.Title)
	message := lipgloss.NewStyle().Foreground(colorMuted).Width(dialogWidth - 4).Render(o.Message)

	button := func(label string, focused bool, bg lipgloss.Color) string {
		style := lipgloss.NewStyle().Padding(0, 2).Foreground(colorText).Background(bg)
		if focused {
			style = style.Bold(true).Underline(true)
		}
		return style.Render(label)
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		button(o.CancelText, o.Focus == ButtonCancel, colorButton),
		"  ",
		button(o.ConfirmText, o.Focus == ButtonConfirm, color),
	)
	buttons = lipgloss.PlaceHorizontal(dialogWidth-4, lipgloss.Right, buttons)

	hint := lipgloss.NewStyle().Foreground(colorMuted).Italic(true).Render("enter select · tab switch · esc cancel")

	content := strings.Join([]string{title, "", message, "", buttons, hint}, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Background(colorSurface).
		Padding(1, 2).
		Width(dialogWidth).
		Render(content)
}
