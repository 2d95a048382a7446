package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/robgonnella/ipscannr/internal/core"
	"github.com/robgonnella/ipscannr/internal/event"
	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/robgonnella/ipscannr/internal/logger"
)

var errScanCancelled = errors.New("scan cancelled")

// runHeadless runs a single scan to completion, logging progress and
// printing the live hosts found. Cancelling ctx cancels the scan.
func runHeadless(ctx context.Context, appCore *core.Core, rangeExpr string, w io.Writer) error {
	log := logger.New()

	evtChan := make(chan *event.Event, 100)
	id := appCore.RegisterEventListener(evtChan)

	defer appCore.RemoveEventListener(id)

	if _, err := appCore.Start(rangeExpr, nil); err != nil {
		return err
	}

	done := ctx.Done()

	for {
		select {
		case <-done:
			done = nil

			// cancel delivers its event on evtChan, keep draining
			go appCore.Cancel()
		case evt := <-evtChan:
			switch evt.Type {
			case event.HostLiveness:
				if r, ok := evt.Payload.(host.Record); ok && r.Alive() {
					log.Info().
						Str("ip", r.IP.String()).
						Str("method", string(r.Method)).
						Dur("rtt", r.RTT).
						Msg("host online")
				}
			case event.PortOpen:
				if p, ok := evt.Payload.(event.PortPayload); ok {
					log.Debug().
						Str("ip", p.IP.String()).
						Uint16("port", p.Port.ID).
						Msg("port open")
				}
			case event.ScanError:
				if p, ok := evt.Payload.(event.ErrorPayload); ok {
					log.Error().Err(p.Err).Msg(p.Reason)
				}
			case event.ScanCompleted:
				fmt.Fprintln(w, appCore.Summary())
				printRecords(w, appCore.Snapshot())
				return nil
			case event.ScanCancelled:
				fmt.Fprintln(w, appCore.Summary())
				printRecords(w, appCore.Snapshot())
				return errScanCancelled
			}
		}
	}
}
