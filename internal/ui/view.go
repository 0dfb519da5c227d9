package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
	activeTab     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Padding(0, 1)
	inactiveTab   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
)

func (m Model) View() string {
	width, height := m.width, m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n\n")
	if m.pane == PaneNav {
		s.WriteString(m.renderSites())
	} else {
		s.WriteString(m.viewport.View())
		s.WriteString("\n")
		s.WriteString(m.input.View())
	}
	s.WriteString("\n\n")
	s.WriteString(m.renderFooter())

	return m.notifier.Render(s.String(), width, height)
}

func (m Model) renderHeader() string {
	title := m.title
	if title == "" {
		title = "qianxun"
	}
	tabs := []string{inactiveTab.Render("导航"), inactiveTab.Render("对话")}
	tabs[m.pane] = activeTab.Render([]string{"导航", "对话"}[m.pane])

	parts := []string{headerStyle.Render(title), lipgloss.JoinHorizontal(lipgloss.Top, tabs...)}
	if len(m.providers) > 0 {
		parts = append(parts, dimStyle.Render("["+m.providers[m.provider].Name+"]"))
	}
	parts = append(parts, statusStyle.Render(m.status))
	return strings.Join(parts, " ")
}

func (m Model) renderSites() string {
	if m.loading && len(m.sites) == 0 {
		return dimStyle.Render("  加载中...")
	}
	if len(m.sites) == 0 {
		return dimStyle.Render("  暂无网站，按 r 刷新")
	}

	var b strings.Builder
	for i, site := range m.sites {
		prefix := "  "
		name := site.Name
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
			name = cursorStyle.Render(name)
		}
		line := prefix + name
		if site.Category != "" {
			line += " " + categoryStyle.Render("#"+site.Category)
		}
		line += " " + dimStyle.Render(site.URL)
		b.WriteString(line)
		if i == m.cursor && site.Description != "" {
			b.WriteString("\n    " + dimStyle.Render(site.Description))
		}
		if i < len(m.sites)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderTurn(t turn, last bool) string {
	if t.role == roleUser {
		return userStyle.Render("你：") + t.content
	}
	if t.content == "" && last && m.streaming {
		return m.spinner.View() + " 思考中..."
	}
	if t.failed {
		return failedStyle.Render(t.content)
	}
	if m.renderer == nil {
		return t.content
	}
	out, err := m.renderer.Render(t.content)
	if err != nil {
		return t.content
	}
	return strings.TrimRight(out, "\n")
}

func (m Model) renderFooter() string {
	if m.pane == PaneNav {
		return footerStyle.Render("↑/↓: 选择  Enter: 复制链接  x: 删除  r: 刷新  ctrl+x: 关闭提示  Tab: 对话  q: 退出")
	}
	hint := "Enter: 发送  ctrl+v: 粘贴  ctrl+p: 切换模型  PgUp/PgDn: 滚动  ctrl+x: 关闭提示  Tab: 导航  ctrl+c: 退出"
	if len(m.providers) > 0 {
		hint = fmt.Sprintf("%s (%d/%d)", hint, m.provider+1, len(m.providers))
	}
	return footerStyle.Render(hint)
}
