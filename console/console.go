// Package console is an optional interactive operator dashboard: node id,
// session counts, recent spots, and the peer directory, refreshed on a
// timer. It is the tview/tcell analogue of the teacher's ANSI
// console_layout.go/ansi_console.go pinned-header approach — same idea
// (a periodically redrawn panel that never disturbs a scrolling log), a
// real TUI library standing in for hand-rolled escape sequences.
package console

import (
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/term"

	"dxnode/node"
	"dxnode/peerdir"
	"dxnode/status"
)

// refreshInterval is how often the dashboard redraws its panels, following
// the teacher's adaptiveRefresher "evaluate periodically" shape but fixed
// rather than adaptive — there is no trust/quality state to throttle
// against here, only a status snapshot cheap enough to rebuild every tick.
const refreshInterval = time.Second

// Dashboard is a running operator console bound to one node.
type Dashboard struct {
	app     *tview.Application
	header  *tview.TextView
	spots   *tview.Table
	peers   *tview.Table
	handle  *node.NodeHandle
	tracker *status.Tracker
	dir     *peerdir.Directory

	ticker *time.Ticker
	quit   chan struct{}
}

// NewDashboard constructs a dashboard for handle. tracker and dir may be
// nil: a nil tracker shows zero uptime and count in the header, and a nil
// dir shows a "(no peer directory configured)" row in the peers panel.
func NewDashboard(handle *node.NodeHandle, tracker *status.Tracker, dir *peerdir.Directory) *Dashboard {
	d := &Dashboard{
		app:     tview.NewApplication(),
		header:  tview.NewTextView().SetDynamicColors(true),
		spots:   tview.NewTable().SetBorders(false),
		peers:   tview.NewTable().SetBorders(false),
		handle:  handle,
		tracker: tracker,
		dir:     dir,
		quit:    make(chan struct{}),
	}

	d.spots.SetBorder(true).SetTitle(" recent spots ")
	d.peers.SetBorder(true).SetTitle(" peers ")
	d.header.SetBorder(true).SetTitle(" node ")

	rows := terminalRows(int(os.Stdout.Fd()))
	d.spots.SetFixed(1, 0)
	if rows > 4 {
		d.spots.SetOffset(0, 0)
	}

	body := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.header, 3, 0, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexColumn).
			AddItem(d.spots, 0, 2, false).
			AddItem(d.peers, 0, 1, false), 0, 1, false)

	d.app.SetRoot(body, true)
	return d
}

// terminalRows is a best-effort check the teacher's newConsoleLayout used
// to decide whether to enable VT-positioned rendering at all; tview drives
// its own screen, so this is informational only (NewDashboard uses it
// solely to decide whether to reset the spots table's scroll offset).
func terminalRows(fd int) int {
	if _, h, err := term.GetSize(fd); err == nil && h > 0 {
		return h
	}
	return 24
}

// Run starts the redraw ticker and blocks until Stop is called or the user
// quits the application (Ctrl-C).
func (d *Dashboard) Run() error {
	d.redraw()
	d.ticker = time.NewTicker(refreshInterval)
	go func() {
		for {
			select {
			case <-d.ticker.C:
				d.app.QueueUpdateDraw(d.redraw)
			case <-d.quit:
				return
			}
		}
	}()
	defer d.ticker.Stop()
	return d.app.Run()
}

// Stop tears down the dashboard and its redraw ticker.
func (d *Dashboard) Stop() {
	close(d.quit)
	d.app.Stop()
}

func (d *Dashboard) redraw() {
	d.renderHeader()
	d.renderSpots()
	d.renderPeers()
}

func (d *Dashboard) renderHeader() {
	uptime := time.Duration(0)
	total := uint64(0)
	if d.tracker != nil {
		uptime = d.tracker.Uptime()
		total = d.tracker.Total()
	}
	d.header.Clear()
	fmt.Fprintf(d.header, "[yellow]%s[white]  uptime %s  accepted %d\n",
		d.handle.NodeID(), uptime.Round(time.Second), total)
}

func (d *Dashboard) renderSpots() {
	d.spots.Clear()
	headers := []string{"time", "dx", "freq", "spotter", "comment"}
	for c, h := range headers {
		d.spots.SetCell(0, c, tview.NewTableCell(h).SetSelectable(false).SetTextColor(tcell.ColorYellow))
	}
	recent := d.handle.RecentSpots(50)
	for row, s := range recent {
		d.spots.SetCell(row+1, 0, tview.NewTableCell(s.Time.Format("15:04:05")))
		d.spots.SetCell(row+1, 1, tview.NewTableCell(s.DX.String()))
		d.spots.SetCell(row+1, 2, tview.NewTableCell(s.Freq.ToKHzString()))
		d.spots.SetCell(row+1, 3, tview.NewTableCell(s.Spotter.String()))
		d.spots.SetCell(row+1, 4, tview.NewTableCell(s.Comment))
	}
}

func (d *Dashboard) renderPeers() {
	d.peers.Clear()
	headers := []string{"node", "v", "last seen"}
	for c, h := range headers {
		d.peers.SetCell(0, c, tview.NewTableCell(h).SetSelectable(false).SetTextColor(tcell.ColorYellow))
	}
	if d.dir == nil {
		d.peers.SetCell(1, 0, tview.NewTableCell("(no peer directory configured)"))
		return
	}
	entries, err := d.dir.All()
	if err != nil {
		d.peers.SetCell(1, 0, tview.NewTableCell("error: "+err.Error()))
		return
	}
	for row, e := range entries {
		d.peers.SetCell(row+1, 0, tview.NewTableCell(string(e.NodeID)))
		d.peers.SetCell(row+1, 1, tview.NewTableCell(e.Version))
		d.peers.SetCell(row+1, 2, tview.NewTableCell(e.LastSeen.Format(time.RFC3339)))
	}
}
