package ui

import (
	"fmt"
	"strings"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/notify"
	"github.com/five82/storefront/internal/page"
	"github.com/five82/storefront/internal/render"
)

// renderHeader renders the status bar: logo, page, cart mode, identity and
// cart badge.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().OnSurface(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{
		bg.Render("storefront", styles.Logo),
		bg.Render(pageLabel(m.page.Kind), styles.AccentText),
	}

	mode := m.snapshot.Mode.String()
	parts = append(parts, styles.StatusStyle(mode).Render(strings.ToUpper(mode)))

	if id := m.snapshot.Identity; id != "" {
		limit := 32
		if compact {
			limit = 14
		}
		parts = append(parts, bg.Render(truncateMiddle(id, limit), styles.MutedText))
	}

	parts = append(parts,
		bg.Render("Cart:", styles.MutedText)+bg.Spaces(1)+
			bg.Render(fmt.Sprintf("%d", cart.Count(m.snapshot.Cart)), styles.Text))

	if !compact && !m.lastUpdated.IsZero() {
		parts = append(parts, bg.Render(m.lastUpdated.Format("15:04:05"), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderContent draws the current page fragment.
func (m Model) renderContent() string {
	styles := m.theme.Styles()
	f := m.fragment()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(f.Title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", maxWidth(m.width, 60))))
	b.WriteString("\n")

	if len(f.Rows) == 0 {
		style := styles.MutedText
		if f.NotFound {
			style = styles.WarningText
		}
		b.WriteString(style.Render(f.Empty))
		b.WriteString("\n")
	}

	for i, row := range f.Rows {
		line := padRight(truncate(row.Text, LayoutNameWidth), LayoutNameWidth)
		if row.Detail != "" {
			line += "  " + truncate(row.Detail, maxWidth(m.width-LayoutNameWidth-4, 20))
		}
		if i == m.selected {
			b.WriteString(styles.Selected.Render("› " + line))
		} else {
			b.WriteString(styles.Text.Render("  " + line))
		}
		b.WriteString("\n")
	}

	for _, line := range f.Footer {
		b.WriteString(styles.AccentText.Render(line))
		b.WriteString("\n")
	}
	if m.controls.bound(render.ControlCheckout) {
		b.WriteString(styles.SuccessText.Render("[C] Checkout"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFooter shows the active notification, or key hints when none is
// on screen.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().OnSurface(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.notices != nil {
		if msg, ok := m.notices.Current(); ok {
			badge := styles.StatusStyle(levelBadge(msg.Level)).Render(strings.ToUpper(levelBadge(msg.Level)))
			return bg.FillLine(badge+bg.Spaces(1)+bg.Render(msg.Text, styles.Text), m.width)
		}
	}

	hints := make([]string, 0, 8)
	for _, binding := range []string{"1-4 pages", "enter open", "a add", "x remove", "C checkout", "T theme", "h help", "e quit"} {
		hints = append(hints, bg.Render(binding, styles.MutedText))
	}
	return styles.Footer.Width(m.width).Render(bg.Join(hints, "  "))
}

func levelBadge(level notify.Level) string {
	switch level {
	case notify.LevelSuccess:
		return "success"
	case notify.LevelError:
		return "error"
	default:
		return "info"
	}
}

func pageLabel(kind page.Kind) string {
	switch kind {
	case page.KindProducts:
		return "Products"
	case page.KindDetails:
		return "Product"
	case page.KindCart:
		return "Cart"
	case page.KindAccount:
		return "Account"
	default:
		return "Home"
	}
}

func maxWidth(width, fallback int) int {
	if width <= 0 {
		return fallback
	}
	return width
}
