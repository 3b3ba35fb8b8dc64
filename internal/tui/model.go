package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/ledger"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/tui/components"
	"github.com/Veraticus/cashflow/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Field identifies the focusable areas of the screen, in tab order.
type Field int

const (
	FieldSalary Field = iota
	FieldName
	FieldAmount
	FieldCurrency
	FieldList
	fieldCount
)

// statusKind picks the style of the status line.
type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// Model holds the main TUI state.
type Model struct {
	ctx        context.Context
	theme      themes.Theme
	svc        *ledger.Service
	bridge     *bridge
	config     Config
	status     string
	pending    string
	keymap     KeyMap
	help       help.Model
	spinner    spinner.Model
	list       components.ExpenseListModel
	summary    components.SummaryModel
	inputs     [FieldList]textinput.Model
	snapshot   model.Snapshot
	alert      model.AlertEvent
	statusKind statusKind
	focus      Field
	alertCount int
	width      int
	height     int
	quitting   bool
}

// newModel creates a model and subscribes it to svc.
func newModel(ctx context.Context, cfg Config) Model {
	m := Model{
		ctx:     ctx,
		theme:   cfg.Theme,
		svc:     cfg.Service,
		bridge:  newBridge(),
		config:  cfg,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		list:    components.NewExpenseList(cfg.Theme),
		summary: components.NewSummaryModel(cfg.Theme),
		width:   cfg.Width,
		height:  cfg.Height,
	}
	m.spinner.Style = m.theme.StatusPending

	placeholders := [FieldList]string{
		FieldSalary:   "Monthly salary",
		FieldName:     "Expense name",
		FieldAmount:   "Amount",
		FieldCurrency: "Currency, e.g. USD",
	}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 64
		in.Width = 24
		m.inputs[i] = in
	}
	m.inputs[FieldCurrency].CharLimit = 3

	m.svc.Subscribe(m.bridge)
	m.applySnapshot(m.svc.Snapshot())
	m.alert = ledger.AlertFor(m.svc.Ledger(), m.svc.Totals())
	if m.alert.Triggered {
		m.alertCount = 1
	}
	m.setFocus(FieldSalary)
	m.resize()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.bridge.listen(), textinput.Blink}
	if m.config.Currency != "" && !strings.EqualFold(m.config.Currency, m.snapshot.Currency) {
		code := m.config.Currency
		cmds = append(cmds, func() tea.Msg { return selectCurrencyMsg{code: code} })
	}
	return tea.Batch(cmds...)
}

// selectCurrencyMsg starts a currency selection from a command.
type selectCurrencyMsg struct {
	code string
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case snapshotMsg:
		m.applySnapshot(msg.snapshot)
		return m, m.bridge.listen()

	case alertMsg:
		m.alert = msg.event
		if msg.event.Triggered {
			m.alertCount++
		}
		return m, m.bridge.listen()

	case actionDoneMsg:
		m.handleActionDone(msg)
		return m, nil

	case selectCurrencyMsg:
		cmd := m.selectCurrency(msg.code)
		return m, cmd

	case rateResolvedMsg:
		m.handleRate(msg)
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.setStatus(statusError, msg.err.Error())
		} else {
			m.setStatus(statusSuccess, "Report saved to "+msg.path)
		}
		return m, nil

	case components.DeleteExpenseMsg:
		return m, m.dispatch(ledger.Action{Kind: ledger.ActionDeleteExpense, ID: msg.ID})

	case spinner.TickMsg:
		if m.pending == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		m.bridge.close()
		return m, tea.Quit

	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.Export):
		return m, m.export()

	case key.Matches(msg, m.keymap.NextField):
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil

	case key.Matches(msg, m.keymap.PrevField):
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil

	case key.Matches(msg, m.keymap.Submit):
		cmd := m.submit()
		return m, cmd
	}

	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == FieldList {
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit acts on the focused field.
func (m *Model) submit() tea.Cmd {
	switch m.focus {
	case FieldSalary:
		value, err := parseAmount(m.inputs[FieldSalary].Value(), "salary")
		if err != nil {
			m.setStatus(statusError, common.UserMessage(err))
			return nil
		}
		return m.dispatch(ledger.Action{Kind: ledger.ActionSetSalary, Salary: value})

	case FieldName:
		m.setFocus(FieldAmount)
		return nil

	case FieldAmount:
		amount, err := parseAmount(m.inputs[FieldAmount].Value(), "amount")
		if err != nil {
			m.setStatus(statusError, common.UserMessage(err))
			return nil
		}
		return m.dispatch(ledger.Action{
			Kind:   ledger.ActionAddExpense,
			Name:   m.inputs[FieldName].Value(),
			Amount: amount,
		})

	case FieldCurrency:
		return m.selectCurrency(m.inputs[FieldCurrency].Value())
	}
	return nil
}

// dispatch runs a ledger action off the event loop.
func (m Model) dispatch(a ledger.Action) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		res, err := svc.Dispatch(ctx, a)
		return actionDoneMsg{kind: a.Kind, result: res, err: err}
	}
}

func (m *Model) handleActionDone(msg actionDoneMsg) {
	if msg.err != nil {
		m.setStatus(statusError, common.UserMessage(msg.err))
		return
	}
	m.applySnapshot(msg.result.Snapshot)

	switch msg.kind {
	case ledger.ActionSetSalary:
		m.inputs[FieldSalary].Reset()
		m.setStatus(statusSuccess, "Salary updated")
	case ledger.ActionAddExpense:
		m.inputs[FieldName].Reset()
		m.inputs[FieldAmount].Reset()
		m.setFocus(FieldName)
		if msg.result.Expense != nil {
			m.setStatus(statusSuccess, fmt.Sprintf("Added %q", msg.result.Expense.Name))
		}
	case ledger.ActionDeleteExpense:
		m.setStatus(statusSuccess, "Expense deleted")
	}
}

// selectCurrency records the selection and, unless it took effect at once,
// fetches the rate in the background. The previous rate stays on screen
// until the fetch for the latest selection lands.
func (m *Model) selectCurrency(code string) tea.Cmd {
	req, done, err := m.svc.RequestCurrency(code)
	if err != nil {
		m.setStatus(statusError, common.UserMessage(err))
		return nil
	}
	m.inputs[FieldCurrency].Reset()
	if done {
		m.pending = ""
		m.applySnapshot(m.svc.Snapshot())
		m.setStatus(statusSuccess, "Showing amounts in "+req.Currency)
		return nil
	}

	m.pending = req.Currency
	m.setStatus(statusInfo, "Fetching "+req.Currency+" rate...")

	svc, ctx := m.svc, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		rate, err := svc.ResolveRate(ctx, req)
		return rateResolvedMsg{req: req, rate: rate, err: err}
	})
}

func (m *Model) handleRate(msg rateResolvedMsg) {
	if msg.err != nil {
		if m.svc.FailRate(msg.req) {
			m.pending = ""
			m.setStatus(statusError, fmt.Sprintf("Could not switch to %s: %s",
				msg.req.Currency, common.UserMessage(msg.err)))
		}
		return
	}

	snap, applied := m.svc.ApplyRate(msg.req, msg.rate)
	if !applied {
		return
	}
	m.pending = ""
	m.applySnapshot(snap)
	m.setStatus(statusSuccess, "Showing amounts in "+msg.req.Currency)
}

// export renders the report into the export directory.
func (m Model) export() tea.Cmd {
	renderer := m.config.Renderer
	if renderer == nil {
		return func() tea.Msg {
			return exportDoneMsg{err: fmt.Errorf("%w: no report format configured", common.ErrExportFailure)}
		}
	}

	svc, ctx := m.svc, m.ctx
	path := filepath.Join(m.config.ExportDir, ExportFileName+"."+renderer.Extension())
	return func() tea.Msg {
		f, err := os.Create(filepath.Clean(path))
		if err != nil {
			return exportDoneMsg{err: fmt.Errorf("%w: %w", common.ErrExportFailure, err)}
		}
		_, err = svc.Dispatch(ctx, ledger.Action{Kind: ledger.ActionRequestExport, Renderer: renderer, Output: f})
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("%w: %w", common.ErrExportFailure, closeErr)
		}
		return exportDoneMsg{path: path, err: err}
	}
}

func (m *Model) applySnapshot(s model.Snapshot) {
	m.snapshot = s
	m.list.SetExpenses(s.Expenses, s.Currency)
	m.summary.SetSnapshot(s)
}

func (m *Model) setFocus(f Field) {
	m.focus = f
	for i := range m.inputs {
		if Field(i) == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	if f == FieldList {
		m.list.Focus()
	} else {
		m.list.Blur()
	}
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

// resize adjusts component sizes to the terminal.
func (m *Model) resize() {
	panel := max(m.width/2-2, 30)
	if m.width < 80 {
		panel = max(m.width-4, 30)
	}
	m.summary.Resize(panel)
	m.list.Resize(panel-2, max(m.height-18, 3))
	m.help.Width = m.width
}

// parseAmount reads a user-typed number.
func parseAmount(raw, what string) (float64, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return 0, common.InvalidInput("enter a %s", what)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, common.InvalidInput("%s %q is not a number", what, raw)
	}
	return v, nil
}

// Focus returns the focused field.
func (m Model) Focus() Field { return m.focus }

// Snapshot returns the snapshot currently on screen.
func (m Model) Snapshot() model.Snapshot { return m.snapshot }

// PendingCurrency returns the currency whose rate is being fetched, if any.
func (m Model) PendingCurrency() string { return m.pending }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

// AlertActive reports whether the low balance alert is showing.
func (m Model) AlertActive() bool { return m.alert.Triggered }
