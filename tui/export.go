package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/clip"
	"github.com/user/tagging-fight-cli/pkg/export"
	"github.com/user/tagging-fight-cli/tui/components"
)

// clipResultMsg carries one finished clip from the export goroutine.
type clipResultMsg struct {
	result clip.Result
}

// exportDoneMsg is sent when the result channel closes.
type exportDoneMsg struct{}

// waitForExportMsg returns a tea.Cmd that waits for the next result on the channel.
func waitForExportMsg(ch <-chan clip.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return exportDoneMsg{}
		}
		return clipResultMsg{result: r}
	}
}

// startExport writes the clip list next to the clips and starts cutting them
// in the background.
func (m *Model) startExport() tea.Cmd {
	if m.manual() {
		return m.setResult("manual sessions have no clips", true)
	}
	if m.export.Active && !m.export.Done() {
		return m.setResult("export already running", true)
	}
	if m.sess.VideoPath == "" {
		return m.setResult("session has no video", true)
	}
	if _, err := os.Stat(m.sess.VideoPath); err != nil {
		return m.setResult("video file not found: "+m.sess.VideoPath, true)
	}

	clips := export.BuildClips(m.sess.Timeline, export.ClipOptions{
		VideoDuration: m.status.Duration,
		Now:           m.now(),
	})
	if len(clips) == 0 {
		return m.setResult("nothing tagged to cut", true)
	}
	jobs := clip.Plan(m.sess.VideoPath, m.clipDir, clips)
	dir := filepath.Dir(jobs[0].Output)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return m.setResult(fmt.Sprintf("failed to create directory %s: %v", dir, err), true)
	}
	if err := writeClipList(filepath.Join(dir, "clips.json"), clips); err != nil {
		return m.setResult(err.Error(), true)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	p := &clip.Processor{VideoPath: m.sess.VideoPath, Logger: m.log, Extract: m.extract}
	ch, err := p.Start(ctx, jobs)
	if err != nil {
		cancel()
		return m.setResult(err.Error(), true)
	}
	m.cancelExport = cancel
	m.exportCh = ch
	m.export = components.ExportProgressState{Active: true, Total: len(jobs), Dir: dir}
	m.log.Info("clip export started", zap.Int("clips", len(jobs)), zap.String("dir", dir))
	return waitForExportMsg(ch)
}

func (m *Model) advanceExport(r clip.Result) tea.Cmd {
	m.export.Completed = r.Done
	m.export.Current = r.Job.Clip.Label
	if r.Err != nil {
		m.export.Errors++
	}
	return waitForExportMsg(m.exportCh)
}

func (m *Model) finishExport() tea.Cmd {
	if m.cancelExport != nil {
		m.cancelExport()
		m.cancelExport = nil
	}
	m.exportCh = nil
	st := m.export
	if st.Completed < st.Total {
		m.export = components.ExportProgressState{}
		return m.setResult(fmt.Sprintf("export stopped after %d of %d clips", st.Completed, st.Total), true)
	}
	m.osd(fmt.Sprintf("%d clips exported", st.Total))
	if st.Errors > 0 {
		return m.setResult(fmt.Sprintf("%d of %d clips failed, see the log", st.Errors, st.Total), true)
	}
	return m.setResult(fmt.Sprintf("%d clips written to %s", st.Total, st.Dir), false)
}

func writeClipList(path string, clips []export.Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteClips(f, clips); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
