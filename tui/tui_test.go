package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/persist"
	"github.com/user/tagging-fight-cli/session"
)

// fakePlayer is a player parked at pos.
type fakePlayer struct {
	pos    float64
	paused bool
	seeks  []float64
	osd    []string
}

func (p *fakePlayer) IsConnected() bool             { return true }
func (p *fakePlayer) CurrentTime() (float64, error) { return p.pos, nil }
func (p *fakePlayer) Duration() (float64, error)    { return 600, nil }
func (p *fakePlayer) Paused() (bool, error)         { return p.paused, nil }
func (p *fakePlayer) Pause() error                  { p.paused = true; return nil }
func (p *fakePlayer) TogglePause() error            { p.paused = !p.paused; return nil }

func (p *fakePlayer) ShowText(text string, _ int) error {
	p.osd = append(p.osd, text)
	return nil
}

func (p *fakePlayer) Seek(seconds float64) error {
	p.seeks = append(p.seeks, seconds)
	p.pos = seconds
	return nil
}

func (p *fakePlayer) SeekRelative(delta float64) error {
	return p.Seek(max(p.pos+delta, 0))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends keys and returns the last command.
func press(m *Model, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(k)
	}
	return cmd
}

// at moves the player and lets the model poll it.
func at(m *Model, p *fakePlayer, pos float64) {
	p.pos = pos
	m.Update(tickMsg{})
}

func newTestModel(mode session.Mode) (*Model, *fakePlayer) {
	p := &fakePlayer{}
	sess := session.New(session.Options{AthleteName: "Nong", OpponentName: "Kru", Mode: mode})
	m := NewModel(context.Background(), Options{Session: sess, Player: p, BucketSeconds: 30})
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	return m, p
}

func TestTimelineTagging(t *testing.T) {
	Convey("Given a timeline session at 10s", t, func() {
		m, p := newTestModel(session.ModeTimeline)
		at(m, p, 10)

		press(m, runes("r"), runes("a"))
		at(m, p, 12)
		press(m, runes("1"))

		tl := m.sess.Timeline
		strikes := tl.Events.Strikes()

		Convey("A quick strike inside an attack phase belongs to the athlete in round 1", func() {
			So(strikes, ShouldHaveLength, 1)
			So(strikes[0].Type.ID, ShouldEqual, "jab")
			So(strikes[0].Owner, ShouldEqual, annotate.OwnerAthlete)
			So(strikes[0].Round, ShouldNotBeNil)
			So(strikes[0].Round.Number, ShouldEqual, 1)
			So(m.status.Unsaved, ShouldBeTrue)
			So(p.osd, ShouldNotBeEmpty)
		})

		Convey("g toggles the selected strike to landed", func() {
			press(m, runes("g"))
			s, _ := tl.Events.Strike(strikes[0].ID)
			So(s.HitTarget, ShouldBeTrue)
		})

		Convey("A strike in a defense phase is the opponent's", func() {
			at(m, p, 20)
			press(m, runes("d"))
			at(m, p, 21)
			press(m, runes("6"), runes("x"))
			at(m, p, 30)
			press(m, runes("r"))

			rep := m.report()
			So(rep.Athlete.Total, ShouldEqual, 1)
			So(rep.Opponent.Total, ShouldEqual, 1)
			_, open := tl.Intervals.ActiveRound()
			So(open, ShouldBeFalse)
			_, open = tl.Intervals.ActiveAction()
			So(open, ShouldBeFalse)
		})

		Convey("Delete removes the selection and enter seeks to it", func() {
			at(m, p, 50)
			press(m, tea.KeyMsg{Type: tea.KeyEnter})
			So(p.seeks, ShouldResemble, []float64{12})

			press(m, tea.KeyMsg{Type: tea.KeyDelete})
			So(tl.Events.Strikes(), ShouldBeEmpty)
			So(m.events.Items, ShouldBeEmpty)
		})

		Convey("Keys without a strike type report an error", func() {
			m.tx = m.tx[:2]
			press(m, runes("5"))
			So(m.command.IsError, ShouldBeTrue)
			So(tl.Events.Strikes(), ShouldHaveLength, 1)
		})

		Convey("The main view shows the event list and live stats", func() {
			view := m.View()
			So(view, ShouldContainSubstring, "Events (1)")
			So(view, ShouldContainSubstring, "Live Stats")
			So(view, ShouldContainSubstring, "Timeline")
		})
	})
}

func TestCommandMode(t *testing.T) {
	Convey("Given a timeline session", t, func() {
		m, p := newTestModel(session.ModeTimeline)

		Convey("seek parses clock times", func() {
			press(m, runes(":"), runes("seek 1:30"), tea.KeyMsg{Type: tea.KeyEnter})
			So(m.focus, ShouldEqual, FocusMain)
			So(p.seeks, ShouldResemble, []float64{90})
			So(m.command.IsError, ShouldBeFalse)
		})

		Convey("strike and defend tag at the playhead", func() {
			at(m, p, 5)
			press(m, runes(":"), runes("strike cross landed"), tea.KeyMsg{Type: tea.KeyEnter})
			press(m, runes(":"), runes("defend slip failed"), tea.KeyMsg{Type: tea.KeyEnter})

			strikes := m.sess.Timeline.Events.Strikes()
			So(strikes, ShouldHaveLength, 1)
			So(strikes[0].HitTarget, ShouldBeTrue)
			defenses := m.sess.Timeline.Events.Defenses()
			So(defenses, ShouldHaveLength, 1)
			So(defenses[0].Successful, ShouldBeFalse)
			So(defenses[0].InWindow, ShouldBeFalse)
		})

		Convey("owner changes the policy for strikes outside phases", func() {
			press(m, runes(":"), runes("owner unassigned"), tea.KeyMsg{Type: tea.KeyEnter})
			press(m, runes("1"))
			So(m.sess.Timeline.Events.Strikes()[0].Owner, ShouldEqual, annotate.OwnerUnassigned)
		})

		Convey("Unknown commands are errors and history recalls them", func() {
			press(m, runes(":"), runes("knockout"), tea.KeyMsg{Type: tea.KeyEnter})
			So(m.command.IsError, ShouldBeTrue)
			So(m.command.Result, ShouldContainSubstring, "unknown command")

			press(m, runes(":"), tea.KeyMsg{Type: tea.KeyUp})
			So(string(m.command.Input), ShouldEqual, "knockout")
			press(m, tea.KeyMsg{Type: tea.KeyEsc})
			So(m.focus, ShouldEqual, FocusMain)
		})
	})
}

func TestManualTally(t *testing.T) {
	Convey("Given a manual session", t, func() {
		m, _ := newTestModel(session.ModeManual)
		first := m.tallyKeys[0]

		Convey("+ counts landed strikes in round 1 for the athlete", func() {
			press(m, runes("+"), runes("+"))
			So(m.sess.Tally.Get(1, annotate.OwnerAthlete, first).Landed, ShouldEqual, 2)

			press(m, runes("-"))
			So(m.sess.Tally.Get(1, annotate.OwnerAthlete, first).Landed, ShouldEqual, 1)
		})

		Convey("Correct cannot pass landed plus missed", func() {
			press(m, runes("+"), tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight}, runes("+"))
			So(m.sess.Tally.Get(1, annotate.OwnerAthlete, first).Correct, ShouldEqual, 1)

			press(m, runes("+"))
			So(m.sess.Tally.Get(1, annotate.OwnerAthlete, first).Correct, ShouldEqual, 1)
			So(m.command.IsError, ShouldBeTrue)
		})

		Convey("Tab and ] move to the opponent in round 2", func() {
			press(m, tea.KeyMsg{Type: tea.KeyTab}, runes("]"), runes("+"))
			So(m.sess.Tally.Get(2, annotate.OwnerOpponent, first).Landed, ShouldEqual, 1)
			So(m.sess.Tally.Get(1, annotate.OwnerAthlete, first).Landed, ShouldEqual, 0)
		})

		Convey("Defense rows follow the strike rows", func() {
			for range m.tallyKeys {
				press(m, tea.KeyMsg{Type: tea.KeyDown})
			}
			press(m, tea.KeyMsg{Type: tea.KeyRight}, runes("+"))
			got := m.sess.Tally.GetDefense(1, annotate.OwnerAthlete, annotate.DefenseTypes[0])
			So(got.Failed, ShouldEqual, 1)
		})

		Convey("d prompts for the round length", func() {
			press(m, runes("d"))
			So(m.focus, ShouldEqual, FocusCommand)
			press(m, runes("3:00"), tea.KeyMsg{Type: tea.KeyEnter})
			So(m.sess.Tally.RoundDuration(1), ShouldEqual, 180)
		})

		Convey("Tagging commands are refused", func() {
			press(m, runes(":"), runes("round"), tea.KeyMsg{Type: tea.KeyEnter})
			So(m.command.IsError, ShouldBeTrue)
			So(m.sess.Tally.Empty(), ShouldBeTrue)
		})
	})
}

func TestSaveAndQuit(t *testing.T) {
	Convey("Given a session with a strike", t, func() {
		m, _ := newTestModel(session.ModeTimeline)
		press(m, runes("1"))

		var saved *session.Session
		m.save = func(_ context.Context, s *session.Session) (persist.SaveResult, error) {
			saved = s
			return persist.SaveResult{FightID: 7, RoundsInserted: 0, StrikesInserted: 1}, nil
		}

		Convey("ctrl+s saves a copy and clears the unsaved mark", func() {
			cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
			So(cmd, ShouldNotBeNil)
			So(m.saving, ShouldBeTrue)

			m.Update(cmd())
			So(m.saving, ShouldBeFalse)
			So(m.status.Unsaved, ShouldBeFalse)
			So(saved, ShouldNotEqual, m.sess)
			So(saved.Key, ShouldEqual, m.sess.Key)
			So(saved.Timeline.Events.Strikes(), ShouldHaveLength, 1)
			So(m.command.Result, ShouldContainSubstring, "fight #7")
		})

		Convey("Edits during a save keep the draft unsaved", func() {
			cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
			press(m, runes("2"))
			m.Update(cmd())
			So(m.status.Unsaved, ShouldBeTrue)
		})

		Convey("A failed save keeps the draft unsaved", func() {
			m.save = func(context.Context, *session.Session) (persist.SaveResult, error) {
				return persist.SaveResult{}, errors.New("connection refused")
			}
			m.Update(press(m, tea.KeyMsg{Type: tea.KeyCtrlS})())
			So(m.status.Unsaved, ShouldBeTrue)
			So(m.command.IsError, ShouldBeTrue)
		})

		Convey("q with unsaved work asks first", func() {
			press(m, runes("q"))
			So(m.quitting, ShouldBeFalse)
			So(m.focus, ShouldEqual, FocusForm)
			So(m.formKind, ShouldEqual, formQuit)

			press(m, tea.KeyMsg{Type: tea.KeyEsc})
			So(m.focus, ShouldEqual, FocusMain)
		})

		Convey("Without a database q quits at once", func() {
			m.save = nil
			cmd := press(m, runes("q"))
			So(m.quitting, ShouldBeTrue)
			So(cmd, ShouldNotBeNil)
		})
	})
}

func TestExportClips(t *testing.T) {
	Convey("Given a tagged session with a video on disk", t, func() {
		dir := t.TempDir()
		video := filepath.Join(dir, "fight.mp4")
		So(os.WriteFile(video, []byte("x"), 0644), ShouldBeNil)

		m, p := newTestModel(session.ModeTimeline)
		m.sess.VideoPath = video
		m.clipDir = filepath.Join(dir, "clips")
		var cut []string
		m.extract = func(_ context.Context, _ string, start, end float64, output string, _ bool) error {
			cut = append(cut, output)
			if strings.Contains(output, "cross") {
				return errors.New("ffmpeg exited 1")
			}
			return nil
		}

		at(m, p, 10)
		press(m, runes("a"))
		at(m, p, 12)
		press(m, runes("1"), runes("2"))
		at(m, p, 20)
		press(m, runes("x"))

		Convey("ctrl+e cuts every clip and writes the list", func() {
			cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlE})
			So(cmd, ShouldNotBeNil)
			So(m.export.Active, ShouldBeTrue)
			So(m.export.Total, ShouldEqual, 3)

			for {
				msg := cmd()
				_, cmd = m.Update(msg)
				if _, done := msg.(exportDoneMsg); done {
					break
				}
			}
			So(cut, ShouldHaveLength, 3)
			So(m.export.Completed, ShouldEqual, 3)
			So(m.export.Errors, ShouldEqual, 1)
			So(m.command.IsError, ShouldBeTrue)

			_, err := os.Stat(filepath.Join(m.clipDir, "clips.json"))
			So(err, ShouldBeNil)
		})

		Convey("Manual sessions have nothing to cut", func() {
			m.sess.Mode = session.ModeManual
			press(m, tea.KeyMsg{Type: tea.KeyCtrlE})
			So(m.export.Active, ShouldBeFalse)
			So(m.command.IsError, ShouldBeTrue)
		})
	})
}

func TestStepSizes(t *testing.T) {
	Convey("Step sizes cycle within the list", t, func() {
		m, p := newTestModel(session.ModeTimeline)
		So(m.status.StepSize, ShouldEqual, 1)
		press(m, runes(">"), runes(">"))
		So(m.status.StepSize, ShouldEqual, 5)
		press(m, runes("l"))
		So(p.pos, ShouldEqual, 5)

		m.status.StepSize = 3
		press(m, runes("<"))
		So(m.status.StepSize, ShouldEqual, 1)
		for range stepSizes {
			press(m, runes("<"))
		}
		So(m.status.StepSize, ShouldEqual, 0.1)
	})
}
