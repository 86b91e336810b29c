// Package gui is the desktop scanner window.
package gui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"github.com/blescan/blescan/internal/preflight"
	"github.com/blescan/blescan/internal/scan"
)

// Opener runs the permission flow with p and returns a ready session
// rendering into buf.
type Opener func(p preflight.Prompter, buf *scan.Buffer) (*scan.Session, error)

// Run shows the scanner window until it is closed. open runs in the
// background once the window is up so its notices can be shown as dialogs.
func Run(ctx context.Context, open Opener, log logrus.FieldLogger) {
	a := app.New()
	w := a.NewWindow("BLE Scanner")
	w.Resize(fyne.NewSize(480, 640))

	buf := scan.NewBuffer(scan.DefaultScrollback)
	result := widget.NewLabel("")
	result.Wrapping = fyne.TextWrapWord
	scroll := container.NewVScroll(result)

	var sess *scan.Session
	start := widget.NewButton("Start Scan", func() {
		if err := sess.Start(ctx); err != nil {
			log.WithError(err).Warn("can't start scan")
		}
	})
	stop := widget.NewButton("Stop Scan", func() {
		if err := sess.Stop(); err != nil {
			log.WithError(err).Warn("can't stop scan")
		}
	})
	start.Disable()
	stop.Hide()

	w.SetContent(container.NewBorder(container.NewHBox(start, stop), nil, nil, nil, scroll))

	go func() {
		for range buf.Changed() {
			text := buf.String()
			fyne.Do(func() {
				result.SetText(text)
				scroll.ScrollToBottom()
			})
		}
	}()

	go func() {
		s, err := open(&prompter{w: w}, buf)
		if err != nil {
			log.WithError(err).Error("can't open scanner")
			fyne.Do(func() {
				dialog.ShowError(err, w)
			})
			return
		}
		s.OnState(func(scanning bool) {
			fyne.Do(func() {
				if scanning {
					start.Hide()
					stop.Show()
				} else {
					stop.Hide()
					start.Show()
				}
			})
		})
		fyne.Do(func() {
			sess = s
			start.Enable()
		})
	}()

	w.SetOnClosed(func() {
		if sess != nil {
			sess.Close()
		}
	})
	w.ShowAndRun()
}

// prompter shows preflight notices as modal dialogs and blocks until the
// user dismisses them.
type prompter struct {
	w fyne.Window
}

func (p *prompter) Notify(n preflight.Notice) {
	done := make(chan struct{})
	fyne.Do(func() {
		d := dialog.NewInformation(n.Title, n.Message, p.w)
		d.SetOnClosed(func() { close(done) })
		d.Show()
	})
	<-done
}

func (p *prompter) Confirm(n preflight.Notice) bool {
	answer := make(chan bool, 1)
	fyne.Do(func() {
		dialog.ShowConfirm(n.Title, n.Message, func(ok bool) { answer <- ok }, p.w)
	})
	return <-answer
}
