package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/logging"
	"github.com/five82/storefront/internal/notify"
	"github.com/five82/storefront/internal/page"
	"github.com/five82/storefront/internal/render"
	"github.com/five82/storefront/internal/session"
	"github.com/five82/storefront/internal/storage"
)

// Actions carries out cart operations. Implementations report outcomes to
// the user themselves; the returned error is only logged here.
type Actions interface {
	Add(ctx context.Context, id int) error
	Remove(ctx context.Context, id int) error
	Checkout(ctx context.Context) error
}

// Notices exposes the notification currently on screen.
type Notices interface {
	Current() (notify.Message, bool)
}

// ThemeSlots persists the chosen theme.
type ThemeSlots interface {
	Set(name, value string) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Session   *session.Store
	Actions   Actions
	Notices   Notices
	Page      page.Page
	Slots     ThemeSlots
	ThemeName string
	PollTick  time.Duration
	Log       logrus.FieldLogger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx      context.Context
	session  *session.Store
	actions  Actions
	notices  Notices
	slots    ThemeSlots
	pollTick time.Duration
	log      logrus.FieldLogger
	keys     keyMap

	// UI state
	theme    Theme
	page     page.Page
	width    int
	height   int
	ready    bool
	selected int
	showHelp bool

	// Data state
	snapshot    session.Snapshot
	lastUpdated time.Time
	controls    *controlRegistry
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	current := opts.Page
	if current.Kind == page.KindUnknown {
		current = page.Page{Kind: page.KindHome}
	}

	m := Model{
		ctx:      ctx,
		session:  opts.Session,
		actions:  opts.Actions,
		notices:  opts.Notices,
		slots:    opts.Slots,
		pollTick: pollTick,
		log:      log,
		keys:     DefaultKeyMap(),
		theme:    GetTheme(themeName),
		page:     current,
		controls: newControlRegistry(),
	}
	if m.session != nil {
		m.snapshot = m.session.Snapshot()
		m.syncControls()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	if m.session != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.session))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = session.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.syncControls()
		m.clampSelection()
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).WithField("action", msg.action).Debug("cart action finished with error")
		}
		if m.session != nil {
			return m, fetchSnapshotCmd(m.session)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.slots != nil {
			if err := m.slots.Set(storage.SlotTheme, m.theme.Name); err != nil {
				m.log.WithError(err).Warn("theme not saved")
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.PageHome):
		m.navigate(page.Page{Kind: page.KindHome})
		return m, nil

	case key.Matches(msg, m.keys.PageProducts):
		m.navigate(page.Page{Kind: page.KindProducts})
		return m, nil

	case key.Matches(msg, m.keys.PageCart):
		m.navigate(page.Page{Kind: page.KindCart})
		return m, nil

	case key.Matches(msg, m.keys.PageAccount):
		m.navigate(page.Page{Kind: page.KindAccount})
		return m, nil

	case key.Matches(msg, m.keys.Checkout):
		if cmd, ok := m.controls.handler(render.ControlCheckout); ok {
			return m, cmd
		}
		return m, nil
	}

	return m.handleRowKey(msg)
}

// handleRowKey processes selection movement and row actions.
func (m Model) handleRowKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.fragment().Rows
	if len(rows) == 0 {
		return m, nil
	}
	if m.selected >= len(rows) {
		m.selected = len(rows) - 1
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(rows)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selected = len(rows) - 1
	case key.Matches(msg, m.keys.Select):
		return m.runAction(rows[m.selected].Action)
	case key.Matches(msg, m.keys.Add):
		return m.runAction(findAction(rows, m.selected, render.ActionAdd))
	case key.Matches(msg, m.keys.Remove):
		return m.runAction(findAction(rows, m.selected, render.ActionRemove))
	}
	return m, nil
}

// findAction prefers the selected row's action and falls back to the first
// row carrying kind, so "a" works anywhere on a detail page.
func findAction(rows []render.Row, selected int, kind render.ActionKind) render.Action {
	if selected >= 0 && selected < len(rows) && rows[selected].Action.Kind == kind {
		return rows[selected].Action
	}
	for _, r := range rows {
		if r.Action.Kind == kind {
			return r.Action
		}
	}
	return render.Action{}
}

func (m Model) runAction(a render.Action) (tea.Model, tea.Cmd) {
	switch a.Kind {
	case render.ActionOpen:
		m.navigate(page.Details(a.ProductID))
		return m, nil
	case render.ActionAdd:
		actions := m.actions
		return m, m.actionCmd("add", func(ctx context.Context) error {
			return actions.Add(ctx, a.ProductID)
		})
	case render.ActionRemove:
		actions := m.actions
		return m, m.actionCmd("remove", func(ctx context.Context) error {
			return actions.Remove(ctx, a.ProductID)
		})
	}
	return m, nil
}

func (m *Model) navigate(p page.Page) {
	m.page = p
	m.selected = 0
	m.syncControls()
}

// syncControls re-renders the current fragment and binds its persistent
// controls.
func (m *Model) syncControls() {
	actions := m.actions
	bind := m.actionCmd
	m.controls.sync(m.fragment().Controls, func(c render.Control) tea.Cmd {
		if c != render.ControlCheckout {
			return nil
		}
		return bind("checkout", func(ctx context.Context) error {
			return actions.Checkout(ctx)
		})
	})
}

func (m *Model) clampSelection() {
	n := len(m.fragment().Rows)
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) actionCmd(name string, fn func(ctx context.Context) error) tea.Cmd {
	if m.actions == nil {
		return nil
	}
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, ActionTimeout)
		defer cancel()
		return actionDoneMsg{action: name, err: fn(ctx)}
	}
}

// fragment renders the current page from the latest snapshot.
func (m Model) fragment() render.Fragment {
	snap := m.snapshot
	switch m.page.Kind {
	case page.KindProducts:
		return render.Catalog(snap.Catalog)
	case page.KindDetails:
		return render.Detail(snap.Catalog, m.page.ProductID, m.page.HasID)
	case page.KindCart:
		return render.Cart(snap.Cart)
	case page.KindAccount:
		return render.Account(render.AccountInfo{
			Identity:     snap.Identity,
			State:        snap.AuthState,
			Synchronized: snap.Mode == session.ModeSynchronized,
			CartCount:    cart.Count(snap.Cart),
		})
	default:
		return render.Home(snap.Catalog)
	}
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.session != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.session))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg session.Snapshot

type actionDoneMsg struct {
	action string
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *session.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
