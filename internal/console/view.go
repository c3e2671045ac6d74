package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"droneops-console/internal/store"
)

func (m *model) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())
	sectionHeight := lipgloss.Height(m.renderSections())
	dialogHeight := 0
	if m.importDialog || m.assignDialog {
		dialogHeight = 2
	}
	h := m.height - m.headerHeight - bottomHeight - sectionHeight - dialogHeight - 4
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *model) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m model) View() string {
	if m.help {
		return m.renderHelp()
	}
	bottom := m.renderBottom()
	divider := strings.Repeat("─", max(m.width, 1))
	if m.showMap {
		return strings.Join([]string{
			m.header,
			divider,
			m.renderMap(),
			divider,
			bottom,
		}, "\n")
	}
	sections := []string{
		m.header,
		divider,
		m.renderSections(),
		divider,
		"Events:",
		m.vp.View(),
	}
	if m.importDialog {
		sections = append(sections, divider,
			fmt.Sprintf("Import zones (GeoJSON path) - Enter to load, Esc to cancel: %s", m.importInput.View()))
	}
	if m.assignDialog {
		sections = append(sections, divider,
			fmt.Sprintf("Assign (uav,slot; slot 0 unassigns) - Enter to apply, Esc to cancel: %s", m.assignInput.View()))
	}
	sections = append(sections, divider, bottom)
	return strings.Join(sections, "\n")
}

func (m model) renderHeader() string {
	tableView := m.table.View()
	statusWidth := m.width/2 - 1
	status := m.renderStatusPanel(statusWidth)
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, tableView, sep, status)
}

func (m model) renderStatusPanel(width int) string {
	editor := "idle"
	if m.snap.Editor.Active {
		if m.snap.Editor.Slot == store.SlotUnassigned {
			editor = "editing (pick a slot)"
		} else {
			editor = fmt.Sprintf("editing %s", store.FormatMissionID(m.snap.Editor.Slot))
		}
	}
	layout := "list"
	if m.snap.Settings.Layout == store.LayoutGrid {
		layout = "grid"
	}
	lines := []string{
		"Fleet",
		fmt.Sprintf("├─ %d UAVs, %d selected", len(m.snap.Fleet), len(m.snap.Selection)),
		fmt.Sprintf("├─ mapping editor: %s", editor),
		fmt.Sprintf("└─ layout=%s mission_ids=%t", layout, m.snap.Settings.ShowMissionIDs),
	}
	if m.wrap && width > 0 {
		for i, l := range lines {
			lines[i] = wordwrap.String(l, width)
		}
	}
	return strings.Join(lines, "\n")
}

func (m model) renderSections() string {
	sections := BuildSections(m.snap, m.lists, m.selInfo, m.proposedLabels())
	var parts []string
	for si, sec := range sections {
		active := (si == 0 && m.section == sectionMain) || (si == 1 && m.section == sectionSpares)
		title := fmt.Sprintf("%s %s (%d)", Checkbox(sec.Header), sec.Title, len(store.RealIDs(entriesOf(sec))))
		if active {
			title = fmt.Sprintf("%s%s%s", colorCyan, title, colorReset)
		}
		parts = append(parts, title)
		if m.snap.Settings.Layout == store.LayoutGrid {
			parts = append(parts, m.renderGrid(sec, active))
		} else {
			parts = append(parts, m.renderList(sec, active))
		}
	}
	return strings.Join(parts, "\n")
}

func entriesOf(sec Section) []store.ListEntry {
	entries := make([]store.ListEntry, len(sec.Items))
	for i, it := range sec.Items {
		entries[i] = it.Entry
	}
	return entries
}

func (m model) renderList(sec Section, active bool) string {
	if len(sec.Items) == 0 {
		return fmt.Sprintf("  %snone%s", colorGray, colorReset)
	}
	var b strings.Builder
	for i, it := range sec.Items {
		cursor := "  "
		if active && i == m.cursor {
			cursor = "▸ "
		}
		b.WriteString(cursor + m.renderItemRow(it))
		if i < len(sec.Items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m model) renderItemRow(it Item) string {
	if it.Entry.Kind == store.KindExtraDropTarget {
		return fmt.Sprintf("%s⟡ %s%s", colorYellow, it.Label, colorReset)
	}
	check := "[ ]"
	if it.Selected {
		check = "[x]"
	}
	label := fmt.Sprintf("%-12s", it.Label)
	if it.EditTarget {
		label = fmt.Sprintf("%s%s%s", bgYellow, label, colorReset)
	}
	if it.Entry.Kind == store.KindEmptySlot {
		return fmt.Sprintf("%s %s%s(empty)%s", check, label, colorGray, colorReset)
	}
	line := fmt.Sprintf("%s %s", check, label)
	if it.Label != it.Entry.UAVID {
		line += fmt.Sprintf("%s%s%s ", colorWhite(), it.Entry.UAVID, colorReset)
	}
	if it.Info != nil {
		line += fmt.Sprintf("%sbatt=%.0f%%%s %s%s%s %sseen %s%s",
			colorCyan, it.Info.Battery, colorReset,
			statusColor(it.Info.Status), it.Info.Status, colorReset,
			colorGray, humanize.Time(it.Info.LastSeen), colorReset)
	}
	return line
}

func (m model) renderGrid(sec Section, active bool) string {
	if len(sec.Items) == 0 {
		return fmt.Sprintf("  %snone%s", colorGray, colorReset)
	}
	cols := m.cfg.Display.GridColumns
	if cols < 1 {
		cols = 1
	}
	var b strings.Builder
	for i, it := range sec.Items {
		cell := m.renderGridCell(it, active && i == m.cursor)
		b.WriteString(cell)
		if (i+1)%cols == 0 && i < len(sec.Items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m model) renderGridCell(it Item, underCursor bool) string {
	marker := " "
	switch {
	case it.Entry.Kind == store.KindExtraDropTarget:
		marker = "⟡"
	case it.Selected:
		marker = "✓"
	}
	cursor := " "
	if underCursor {
		cursor = "▸"
	}
	label := it.Label
	if it.Entry.Kind == store.KindEmptySlot {
		label += " ·"
	}
	if len(label) > gridCellWidth-4 {
		label = label[:gridCellWidth-4]
	}
	txt := fmt.Sprintf("%s%s%-*s", cursor, marker, gridCellWidth-2, label)
	switch {
	case it.EditTarget:
		return fmt.Sprintf("%s%s%s", bgYellow, txt, colorReset)
	case it.Entry.Kind == store.KindEmptySlot || it.Entry.Kind == store.KindExtraDropTarget:
		return fmt.Sprintf("%s%s%s", colorGray, txt, colorReset)
	case it.Info != nil:
		return fmt.Sprintf("%s%s%s", statusColor(it.Info.Status), txt, colorReset)
	default:
		return txt
	}
}

func (m model) renderSummary() string {
	total := len(m.snap.Fleet)
	var sum float64
	low := 0
	for _, u := range m.snap.Fleet {
		sum += u.Battery
		if u.Status != "ok" {
			low++
		}
	}
	avg := 0.0
	if total > 0 {
		avg = sum / float64(total)
	}
	mapped := 0
	for _, id := range m.snap.Mapping {
		if id != "" {
			mapped++
		}
	}
	return fmt.Sprintf("%sSUMMARY%s %suavs=%d%s %savg_batt=%.1f%s %sdegraded=%d%s %smapped=%d/%d%s %sspares=%d%s",
		colorBlue, colorReset,
		colorGreen, total, colorReset,
		colorCyan, avg, colorReset,
		colorRed, low, colorReset,
		colorMagenta, mapped, len(m.snap.Mapping), colorReset,
		colorYellow, len(m.lists.Spares), colorReset)
}

func (m model) renderBottom() string {
	indicator := func(on bool) string {
		c := lipgloss.Color("9")
		if on {
			c = lipgloss.Color("10")
		}
		return lipgloss.NewStyle().Foreground(c).Render("●")
	}
	line := fmt.Sprintf("Feed %s | Wrap %s | Scroll %s | Summary %s | Editor %s | Map %s",
		indicator(m.feedUp), indicator(m.wrap), indicator(m.autoscroll),
		indicator(m.summary), indicator(m.snap.Editor.Active), indicator(m.showMap))
	if m.notification != "" {
		line = fmt.Sprintf("%s%s%s\n%s", colorYellow, m.notification, colorReset, line)
	}
	if m.summary {
		return fmt.Sprintf("%s\n%s", m.renderSummary(), line)
	}
	return line
}

func (m model) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q       quit",
		" tab     switch between mission slots and spares",
		" j/k     move cursor",
		" space   toggle-select UAV under cursor",
		" enter   replace selection; in edit mode assign spare to edited slot",
		" v       range-select from last anchor to cursor",
		" a       toggle whole bucket selection (union/difference)",
		" e       start/finish a mapping edit session at the cursor slot",
		" x       unassign the mapped UAV under the cursor (edit mode)",
		" A       direct assignment dialog (uav,slot)",
		" esc     finish edit session / close dialog",
		" g       toggle list/grid layout",
		" i       toggle mission id labels",
		" T/L/R   takeoff / land / return-home for the selection",
		" o       import zones from GeoJSON",
		" m       toggle map view",
		" +/-     zoom map, arrows pan, digits toggle layers",
		" t       toggle summary footer",
		" w       toggle wrap",
		" s       toggle event auto-scroll",
		" pgup/pgdown  scroll events",
		" h/?     toggle this help view",
	}
	return strings.Join(lines, "\n")
}
