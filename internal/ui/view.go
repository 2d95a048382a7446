package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/robgonnella/ipscannr/internal/cache"
	"github.com/robgonnella/ipscannr/internal/core"
	"github.com/robgonnella/ipscannr/internal/event"
	"github.com/robgonnella/ipscannr/internal/exception"
	"github.com/robgonnella/ipscannr/internal/export"
	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/logger"
	"github.com/robgonnella/ipscannr/internal/ui/component"
	"github.com/robgonnella/ipscannr/internal/ui/key"
)

type view struct {
	ctx             context.Context
	cancel          context.CancelFunc
	app             *tview.Application
	root            *tview.Flex
	pages           *tview.Pages
	tables          *tview.Flex
	header          *component.Header
	hostTable       *component.HostTable
	eventTable      *component.EventTable
	appCore         *core.Core
	eventUpdateChan chan *event.Event
	eventListenerId int
	rangeExpr       string
	opts            Options
	focused         tview.Primitive
	showingModal    bool
	logger          logger.Logger
}

func newView(appCore *core.Core, opts Options) *view {
	log := logger.New()

	ctx, cancel := context.WithCancel(context.Background())

	app := tview.NewApplication()

	v := &view{
		ctx:       ctx,
		cancel:    cancel,
		appCore:   appCore,
		app:       app,
		rangeExpr: opts.Range,
		opts:      opts,
		logger:    log,
	}

	root := tview.NewFlex().SetDirection(tview.FlexRow)
	pages := tview.NewPages()
	tables := tview.NewFlex().SetDirection(tview.FlexRow)

	header := component.NewHeader(opts.UserIP, v.onRangeSubmit)
	hostTable := component.NewHostTable()
	eventTable := component.NewEventTable()

	tables.
		AddItem(hostTable.Primitive(), 0, 2, true).
		AddItem(eventTable.Primitive(), 0, 1, false)

	pages.AddPage("tables", tables, true, true)

	root.
		AddItem(header.Primitive(), 16, 1, false).
		AddItem(pages, 0, 1, true)

	eventUpdateChan := make(chan *event.Event, 100)
	eventListenerId := appCore.RegisterEventListener(eventUpdateChan)

	v.root = root
	v.pages = pages
	v.tables = tables
	v.header = header
	v.hostTable = hostTable
	v.eventTable = eventTable
	v.eventUpdateChan = eventUpdateChan
	v.eventListenerId = eventListenerId

	v.focused = hostTable.Primitive()

	v.refreshStatus()
	v.showCached()

	return v
}

func (v *view) bindKeys() {
	v.app.SetInputCapture(func(evt *tcell.EventKey) *tcell.EventKey {
		switch evt.Key() {
		case key.KeyCtrlC:
			v.stop()
			return nil
		case key.KeyEsc:
			if v.showingModal {
				v.dismissModal()
				return nil
			}

			if v.header.IsShowingRangeInput() {
				v.hideRangeInput()
				return nil
			}
		case key.KeyTab:
			if !v.header.IsShowingRangeInput() && !v.showingModal {
				v.toggleFocus()
				return nil
			}
		}

		if v.header.IsShowingRangeInput() || v.showingModal {
			return evt
		}

		switch evt.Rune() {
		case key.RuneColon:
			v.header.ShowRangeInput()
			v.app.SetFocus(v.header.RangeInput().Primitive())
			return nil
		case key.RuneStart:
			go v.startScan()
			return nil
		case key.RunePause:
			go v.togglePause()
			return nil
		case key.RuneCancel:
			go v.cancelScan()
			return nil
		case key.RuneWake:
			v.wakeSelected()
			return nil
		case key.RuneExport:
			v.exportSnapshot()
			return nil
		case key.RuneRescan:
			v.rescanSelected()
			return nil
		case key.RuneSave:
			v.saveSelected()
			return nil
		case key.RuneFilter:
			v.toggleFilter()
			return nil
		case key.RuneQuit:
			v.stop()
			return nil
		}

		return evt
	})
}

func (v *view) onRangeSubmit(text string) {
	v.hideRangeInput()

	if text == "" {
		return
	}

	v.rangeExpr = text
	v.showCached()

	go v.startScan()
}

func (v *view) hideRangeInput() {
	v.header.HideRangeInput()
	v.app.SetFocus(v.focused)
}

func (v *view) toggleFocus() {
	if v.focused == v.hostTable.Primitive() {
		v.focused = v.eventTable.Primitive()
	} else {
		v.focused = v.hostTable.Primitive()
	}

	v.app.SetFocus(v.focused)
}

// core operations run off the ui goroutine, they block while events are
// delivered to the ui
func (v *view) startScan() {
	if v.appCore.State() == core.StatePaused || v.appCore.State() == core.StateScanning {
		if err := v.appCore.Cancel(); err != nil && !errors.Is(err, exception.ErrInvalidTransition) {
			v.notify(err.Error())
			return
		}
	}

	if _, err := v.appCore.Start(v.rangeExpr, nil); err != nil {
		v.notify(err.Error())
	}
}

func (v *view) togglePause() {
	var err error

	switch v.appCore.State() {
	case core.StateScanning:
		err = v.appCore.Pause()
	case core.StatePaused:
		err = v.appCore.Resume()
	default:
		return
	}

	if err != nil {
		v.notify(err.Error())
	}
}

func (v *view) cancelScan() {
	if err := v.appCore.Cancel(); err != nil {
		v.notify(err.Error())
	}
}

func (v *view) wakeSelected() {
	r, ok := v.hostTable.Selected()

	if !ok || r.MAC == "" {
		v.header.SetNotice("no hardware address for selected host")
		return
	}

	mac := r.MAC

	confirm := component.NewModal(
		fmt.Sprintf("Send wake-on-lan packet to %s (%s)?", r.IP, mac),
		[]component.ModalButton{
			{
				Label: "Wake",
				OnClick: func() {
					v.dismissModal()

					if err := v.appCore.WakeHost(mac); err != nil {
						v.header.SetNotice(fmt.Sprintf("wake failed: %s", err))
						return
					}

					v.header.SetNotice(fmt.Sprintf("sent wake-on-lan packet to %s", mac))
				},
			},
			{
				Label:   "Cancel",
				OnClick: v.dismissModal,
			},
		},
	)

	v.showingModal = true
	v.pages.AddPage("modal", confirm.Primitive(), true, true)
	v.app.SetFocus(confirm.Primitive())
}

func (v *view) dismissModal() {
	v.showingModal = false
	v.pages.RemovePage("modal")
	v.app.SetFocus(v.focused)
}

func (v *view) rescanSelected() {
	r, ok := v.hostTable.Selected()

	if !ok || !r.Alive() {
		v.header.SetNotice("select an online host to rescan")
		return
	}

	v.header.SetNotice(fmt.Sprintf("scanning ports of %s", r.IP))

	go func() {
		ports, err := v.appCore.ScanHostPorts(v.ctx, r.IP, nil)

		if v.ctx.Err() != nil {
			return
		}

		v.app.QueueUpdateDraw(func() {
			if err != nil {
				v.header.SetNotice(fmt.Sprintf("port scan failed: %s", err))
				return
			}

			v.hostTable.SetPorts(r.IP, ports)
			v.header.SetNotice(fmt.Sprintf("%s has %d open ports", r.IP, len(ports)))
		})
	}()
}

func (v *view) saveSelected() {
	r, ok := v.hostTable.Selected()

	if !ok {
		v.header.SetNotice("no host selected")
		return
	}

	path, err := export.SaveHost("", r)

	if err != nil {
		v.header.SetNotice(fmt.Sprintf("save failed: %s", err))
		return
	}

	v.header.SetNotice(fmt.Sprintf("saved to %s", path))
}

func (v *view) toggleFilter() {
	if v.hostTable.ToggleShowAll() {
		v.header.SetNotice("showing all probed hosts")
		return
	}

	v.header.SetNotice("showing online hosts")
}

func (v *view) exportSnapshot() {
	records := v.appCore.Snapshot()

	if len(records) == 0 {
		records = v.cachedRecords()
	}

	if len(records) == 0 {
		v.header.SetNotice("nothing to export")
		return
	}

	path := export.FileName(export.FormatCSV, time.Now())

	if err := export.WriteFile(path, export.FormatCSV, records); err != nil {
		v.header.SetNotice(fmt.Sprintf("export failed: %s", err))
		return
	}

	v.header.SetNotice(fmt.Sprintf("exported %d hosts to %s", len(records), path))
}

func (v *view) cachedRecords() []host.Record {
	entry, err := v.appCore.Cached(v.rangeExpr)

	if err != nil {
		return nil
	}

	records, err := entry.Records()

	if err != nil {
		v.logger.Error().Err(err).Msg("failed to read cached results")
		return nil
	}

	return records
}

// showCached fills the host table with results of a previous scan of the
// current range
func (v *view) showCached() {
	entry, err := v.appCore.Cached(v.rangeExpr)

	if err != nil {
		if !errors.Is(err, exception.ErrRecordNotFound) {
			v.header.SetNotice(err.Error())
		}

		v.hostTable.Reset(nil)

		return
	}

	records, err := entry.Records()

	if err != nil {
		v.logger.Error().Err(err).Msg("failed to read cached results")
		return
	}

	v.hostTable.Reset(records)

	v.header.SetNotice(fmt.Sprintf(
		"showing cached results from %s: %d hosts (%d online)",
		cache.FormatAge(entry.Finished, time.Now()),
		len(entry.Hosts),
		entry.Online(),
	))
}

func (v *view) notify(text string) {
	v.app.QueueUpdateDraw(func() {
		v.header.SetNotice(text)
	})
}

func (v *view) refreshStatus() {
	state, summary := v.appCore.Status()

	if summary.Range == "" {
		summary.Range = v.rangeExpr
	}

	v.header.SetStatus(string(state), summary)
}

func (v *view) handleEvent(evt *event.Event) {
	switch evt.Type {
	case event.ScanStarted:
		v.hostTable.Reset(nil)
		v.header.SetNotice("")
	case event.HostLiveness, event.DNSResolved, event.MACResolved, event.HostCompleted:
		if r, ok := evt.Payload.(host.Record); ok {
			v.hostTable.UpdateRecord(r)
		}
	case event.PortOpen:
		if p, ok := evt.Payload.(event.PortPayload); ok {
			v.hostTable.AddPort(p.IP, p.Port)
		}
	case event.ScanError:
		if p, ok := evt.Payload.(event.ErrorPayload); ok {
			v.header.SetNotice(p.Reason)
		}
	case event.ScanCompleted:
		v.header.SetNotice(v.appCore.Summary())
	}

	v.eventTable.UpdateTable(evt)
	v.refreshStatus()
}

func (v *view) stop() {
	v.appCore.RemoveEventListener(v.eventListenerId)
	v.cancel()

	go func() {
		if err := v.appCore.Stop(); err != nil {
			v.logger.Error().Err(err).Msg("failed to stop core")
		}
	}()

	v.app.Stop()
}

func (v *view) processBackgroundEventUpdates() {
	go func() {
		for {
			select {
			case <-v.ctx.Done():
				return
			case evt := <-v.eventUpdateChan:
				v.app.QueueUpdateDraw(func() {
					v.handleEvent(evt)
				})
			}
		}
	}()
}

func (v *view) run() error {
	v.bindKeys()
	v.processBackgroundEventUpdates()

	if v.opts.ScanNow {
		go v.startScan()
	}

	return v.app.
		SetRoot(v.root, true).
		SetFocus(v.focused).
		EnableMouse(!v.opts.Compat).
		Run()
}
