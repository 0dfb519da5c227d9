package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/maximbilan/qianxun/internal/api"
	"github.com/maximbilan/qianxun/internal/notify"
	"github.com/tidwall/gjson"
)

// Site is one navigation entry served by the backend.
type Site struct {
	ID          string
	Name        string
	URL         string
	Icon        string
	Description string
	Category    string
}

type siteAction int

const (
	actionCopy siteAction = iota
	actionDelete
)

type sitesLoadedMsg struct {
	sites []Site
}

type sitesFailedMsg struct {
	err error
}

type confirmedMsg struct {
	action siteAction
	site   Site
	err    error
}

type siteDeletedMsg struct {
	site Site
	err  error
}

// parseSites accepts either a bare array or an object carrying the array
// under "data". Ids may be numbers or strings.
func parseSites(raw []byte) ([]Site, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("invalid site list")
	}
	list := gjson.ParseBytes(raw)
	if !list.IsArray() {
		list = list.Get("data")
		if !list.IsArray() {
			return nil, errors.New("unexpected site list payload")
		}
	}

	sites := make([]Site, 0, len(list.Array()))
	list.ForEach(func(_, v gjson.Result) bool {
		sites = append(sites, Site{
			ID:          v.Get("id").String(),
			Name:        v.Get("name").String(),
			URL:         v.Get("url").String(),
			Icon:        v.Get("icon").String(),
			Description: v.Get("description").String(),
			Category:    v.Get("category").String(),
		})
		return true
	})
	return sites, nil
}

func (m Model) loadSites() tea.Cmd {
	client, path, timeout := m.api, m.navPath, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var raw json.RawMessage
		if err := client.Get(ctx, path, nil, &raw); err != nil {
			return sitesFailedMsg{err: err}
		}
		sites, err := parseSites(raw)
		if err != nil {
			return sitesFailedMsg{err: fmt.Errorf("failed to load sites: %w", err)}
		}
		return sitesLoadedMsg{sites: sites}
	}
}

func (m Model) deleteSite(site Site) tea.Cmd {
	client, timeout := m.api, m.timeout
	path := sitePath(m.navPath, site.ID)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return siteDeletedMsg{site: site, err: client.Delete(ctx, path, nil)}
	}
}

func sitePath(navPath, id string) string {
	return strings.TrimRight(navPath, "/") + "/" + url.PathEscape(id)
}

// awaitConfirm blocks until the dialog settles.
func awaitConfirm(p *notify.Pending, action siteAction, site Site) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return confirmedMsg{action: action, site: site, err: p.Err()}
	}
}

func (m Model) handleNavKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.sites)-1 {
			m.cursor++
		}
	case "r":
		if m.api != nil && !m.loading {
			m.loading = true
			m.status = "加载中..."
			return m, m.loadSites()
		}
	case "enter":
		site, ok := m.selected()
		if !ok {
			return m, nil
		}
		p := m.notifier.Confirm(
			fmt.Sprintf("复制「%s」的链接？\n%s", site.Name, api.FormatURL(site.URL)),
			"打开网站",
			notify.ConfirmOptions{ConfirmText: "复制"},
		)
		return m, awaitConfirm(p, actionCopy, site)
	case "x", "delete":
		site, ok := m.selected()
		if !ok || m.api == nil {
			return m, nil
		}
		p := m.notifier.Confirm(
			fmt.Sprintf("确定删除「%s」吗？", site.Name),
			"删除网站",
			notify.ConfirmOptions{Type: notify.TypeWarning, ConfirmText: "删除"},
		)
		return m, awaitConfirm(p, actionDelete, site)
	}
	return m, nil
}

func (m Model) handleConfirmed(msg confirmedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, notify.ErrCancelled) {
		m.notifier.Info("已取消")
		return m, nil
	}
	switch msg.action {
	case actionCopy:
		link := api.FormatURL(msg.site.URL)
		if err := m.clipboard.Copy(link); err != nil {
			m.notifier.Error(err.Error())
			return m, nil
		}
		m.notifier.Success("已复制链接：" + link)
		m.status = link
		return m, nil
	case actionDelete:
		return m, m.deleteSite(msg.site)
	}
	return m, nil
}

func (m Model) selected() (Site, bool) {
	if m.cursor < 0 || m.cursor >= len(m.sites) {
		return Site{}, false
	}
	return m.sites[m.cursor], true
}
