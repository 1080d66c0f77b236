// Package tui is the interactive annotation screen: the fight video plays in
// mpv while rounds, phases, strikes and defenses are tagged from the keyboard.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/clip"
	"github.com/user/tagging-fight-cli/draft"
	"github.com/user/tagging-fight-cli/persist"
	"github.com/user/tagging-fight-cli/pkg/logger"
	"github.com/user/tagging-fight-cli/session"
	"github.com/user/tagging-fight-cli/tui/components"
	"github.com/user/tagging-fight-cli/tui/forms"
)

const (
	// tickInterval is the interval for polling the player.
	tickInterval = 100 * time.Millisecond
	// defaultStepSize is the default seek step size in seconds.
	defaultStepSize = 1.0
	// resultDisplayDuration is how long to show command results.
	resultDisplayDuration = 3 * time.Second
	// osdDuration is how long feedback stays on the video, in milliseconds.
	osdDuration = 1500
)

// stepSizes are the seek steps cycled with < and >.
var stepSizes = []float64{0.1, 0.5, 1, 2, 5, 10, 30}

// Player is the video player the TUI drives. *mpv.Client implements it.
type Player interface {
	IsConnected() bool
	CurrentTime() (float64, error)
	Duration() (float64, error)
	Paused() (bool, error)
	Seek(seconds float64) error
	SeekRelative(delta float64) error
	Pause() error
	TogglePause() error
	ShowText(text string, ms int) error
}

// SaveFunc persists a session and reports what was written.
type SaveFunc func(ctx context.Context, s *session.Session) (persist.SaveResult, error)

// Options configure a TUI run.
type Options struct {
	Session       *session.Session
	Player        Player
	Drafts        *draft.Store
	Taxonomy      annotate.Taxonomy
	BucketSeconds float64
	// Save is nil when no database is configured.
	Save   SaveFunc
	Logger *zap.Logger
	// Extract cuts clips; nil uses ffmpeg.
	Extract clip.Extractor
	// ClipDir overrides where cut clips go.
	ClipDir string
}

// tickMsg is a message sent on every tick interval to update playback status.
type tickMsg time.Time

// clearResultMsg is sent to clear the command result message.
type clearResultMsg struct{}

// saveDoneMsg carries the outcome of a background save.
type saveDoneMsg struct {
	result   persist.SaveResult
	err      error
	revision uint64
}

// Model is the Bubbletea model of the annotation screen.
type Model struct {
	ctx     context.Context
	sess    *session.Session
	player  Player
	drafts  *draft.Store
	tx      annotate.Taxonomy
	bucket  float64
	save    SaveFunc
	log     *zap.Logger
	extract clip.Extractor
	clipDir string

	width    int
	height   int
	focus    Focus
	quitting bool
	ticks    int
	pulse    bool
	saving   bool

	status    components.StatusBarState
	events    components.EventListState
	command   components.CommandInputState
	statsView components.StatsViewState

	tally     components.TallyState
	tallyKeys []annotate.StrikeKey

	export       components.ExportProgressState
	exportCh     <-chan clip.Result
	cancelExport context.CancelFunc

	form       *huh.Form
	formKind   formKind
	formAt     float64
	strikeRes  forms.StrikeFormResult
	defenseRes forms.DefenseFormResult
	quitOK     bool
}

// NewModel creates the model for one session.
func NewModel(ctx context.Context, opts Options) *Model {
	tx := opts.Taxonomy
	if len(tx) == 0 {
		tx = annotate.DefaultTaxonomy()
	}
	m := &Model{
		ctx:     ctx,
		sess:    opts.Session,
		player:  opts.Player,
		drafts:  opts.Drafts,
		tx:      tx,
		bucket:  opts.BucketSeconds,
		save:    opts.Save,
		log:     logger.OrNop(opts.Logger),
		extract: opts.Extract,
		clipDir: opts.ClipDir,
		status: components.StatusBarState{
			StepSize: defaultStepSize,
			Duration: opts.Session.Duration,
			Session:  opts.Session.ShortKey(),
		},
		tally: components.TallyState{Round: 1},
	}
	seen := map[annotate.StrikeKey]bool{}
	for _, t := range tx {
		if k := t.Key(); !seen[k] {
			seen[k] = true
			m.tallyKeys = append(m.tallyKeys, k)
		}
	}
	m.refreshEvents()
	return m
}

// Init starts polling the player.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func clearResultCmd() tea.Cmd {
	return tea.Tick(resultDisplayDuration, func(time.Time) tea.Msg {
		return clearResultMsg{}
	})
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			m.form = m.form.WithWidth(min(max(m.width-4, 40), 72))
		}
		return m, nil

	case tickMsg:
		m.pollPlayer()
		m.ticks++
		if m.ticks%5 == 0 {
			m.pulse = !m.pulse
		}
		return m, tickCmd()

	case clearResultMsg:
		m.command.ClearResult()
		if m.export.Done() {
			m.export = components.ExportProgressState{}
		}
		return m, nil

	case saveDoneMsg:
		return m, m.finishSave(msg)

	case clipResultMsg:
		return m, m.advanceExport(msg.result)

	case exportDoneMsg:
		return m, m.finishExport()
	}

	if m.focus == FocusForm && m.form != nil {
		return m.updateForm(msg)
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	return m, nil
}

// pollPlayer refreshes the status bar from the player.
func (m *Model) pollPlayer() {
	if m.player == nil || !m.player.IsConnected() {
		m.status.Connected = false
		return
	}
	m.status.Connected = true
	if paused, err := m.player.Paused(); err == nil {
		m.status.Paused = paused
	}
	if pos, err := m.player.CurrentTime(); err == nil {
		m.status.TimePos = pos
	}
	if d, err := m.player.Duration(); err == nil && d > 0 {
		m.status.Duration = d
		if m.sess.SetDuration(d) {
			m.persistDraft()
		}
	}
}

// now is the playback position used to stamp tags.
func (m *Model) now() float64 {
	return m.status.TimePos
}

func (m *Model) manual() bool {
	return m.sess.Mode == session.ModeManual
}

// osd shows feedback on the video.
func (m *Model) osd(text string) {
	if m.player == nil || !m.player.IsConnected() {
		return
	}
	if err := m.player.ShowText(text, osdDuration); err != nil {
		m.log.Debug("osd failed", zap.Error(err))
	}
}

// setResult shows msg on the command line for a few seconds.
func (m *Model) setResult(msg string, isError bool) tea.Cmd {
	m.command.SetResult(msg, isError)
	return clearResultCmd()
}

func (m *Model) decreaseStepSize() {
	if i := m.findStepSizeIndex(); i > 0 {
		m.status.StepSize = stepSizes[i-1]
	}
}

func (m *Model) increaseStepSize() {
	if i := m.findStepSizeIndex(); i < len(stepSizes)-1 {
		m.status.StepSize = stepSizes[i+1]
	}
}

// findStepSizeIndex returns the index of the step size, or of the closest
// smaller one when it is not in the list.
func (m *Model) findStepSizeIndex() int {
	for i, size := range stepSizes {
		if m.status.StepSize == size {
			return i
		}
	}
	for i, size := range stepSizes {
		if m.status.StepSize < size {
			return max(i-1, 0)
		}
	}
	return len(stepSizes) - 1
}

// persistDraft writes the draft file. Failures are shown but never block tagging.
func (m *Model) persistDraft() {
	if m.drafts == nil {
		return
	}
	if err := m.drafts.Save(m.sess); err != nil {
		m.log.Warn("autosave failed", zap.String("draft", m.sess.Key), zap.Error(err))
		m.command.SetResult("autosave failed: "+err.Error(), true)
	}
}

// changed is called after every mutation of the session.
func (m *Model) changed(feedback string) {
	m.sess.Touch()
	m.status.Unsaved = true
	m.persistDraft()
	m.refreshEvents()
	if feedback != "" {
		m.osd(feedback)
	}
}

// startSave saves a snapshot of the session in the background.
func (m *Model) startSave() tea.Cmd {
	if m.save == nil {
		return m.setResult("no database configured", true)
	}
	if m.saving {
		return m.setResult("save already running", true)
	}
	if err := m.sess.Validate(); err != nil {
		return m.setResult(err.Error(), true)
	}
	snap, err := snapshot(m.sess)
	if err != nil {
		return m.setResult(err.Error(), true)
	}
	m.saving = true
	m.command.SetResult("saving...", false)
	ctx, save, rev := m.ctx, m.save, m.sess.Revision()
	return func() tea.Msg {
		res, err := save(ctx, snap)
		return saveDoneMsg{result: res, err: err, revision: rev}
	}
}

func (m *Model) finishSave(msg saveDoneMsg) tea.Cmd {
	m.saving = false
	if msg.err != nil {
		m.log.Error("save failed", zap.Error(msg.err))
		return m.setResult("save failed: "+msg.err.Error(), true)
	}
	// Edits made while saving keep the draft marked unsaved.
	if m.sess.Revision() == msg.revision {
		m.status.Unsaved = false
	}
	verb := "saved"
	switch {
	case msg.result.Replaced:
		verb = "updated"
	case msg.result.FightExisted:
		verb = "resumed"
	}
	text := fmt.Sprintf("fight #%d %s: %d round(s), %d new strike(s)", msg.result.FightID, verb, msg.result.RoundsInserted, msg.result.StrikesInserted)
	m.osd(text)
	return m.setResult(text, false)
}

// snapshot deep-copies the session so a background save never races the
// event loop.
func snapshot(s *session.Session) (*session.Session, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot session: %w", err)
	}
	var out session.Session
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to snapshot session: %w", err)
	}
	return &out, nil
}

// quit leaves right away, or asks first when the draft was never saved.
func (m *Model) quit(force bool) (tea.Model, tea.Cmd) {
	if !force && m.status.Unsaved && m.save != nil {
		return m.openQuitForm()
	}
	m.quitting = true
	if m.cancelExport != nil {
		m.cancelExport()
	}
	m.persistDraft()
	return m, tea.Quit
}

// Run starts the Bubbletea program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Session == nil {
		return fmt.Errorf("no session to annotate")
	}
	model := NewModel(ctx, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if model.cancelExport != nil {
		model.cancelExport()
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
