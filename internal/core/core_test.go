package core_test

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/robgonnella/ipscannr/internal/cache"
	"github.com/robgonnella/ipscannr/internal/core"
	"github.com/robgonnella/ipscannr/internal/discovery"
	"github.com/robgonnella/ipscannr/internal/event"
	"github.com/robgonnella/ipscannr/internal/exception"
	"github.com/robgonnella/ipscannr/internal/host"
	mock_cache "github.com/robgonnella/ipscannr/internal/mock/cache"
	mock_discovery "github.com/robgonnella/ipscannr/internal/mock/discovery"
	mock_history "github.com/robgonnella/ipscannr/internal/mock/history"
	mock_resolver "github.com/robgonnella/ipscannr/internal/mock/resolver"
	"github.com/robgonnella/ipscannr/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ip1 = netip.MustParseAddr("10.0.0.1")
	ip2 = netip.MustParseAddr("10.0.0.2")
	ip3 = netip.MustParseAddr("10.0.0.3")
)

func next(t *testing.T, ch chan *event.Event) *event.Event {
	t.Helper()

	select {
	case evt := <-ch:
		return evt
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func until(t *testing.T, ch chan *event.Event, want event.EventType) []*event.Event {
	t.Helper()

	evts := []*event.Event{}

	for {
		evt := next(t, ch)
		evts = append(evts, evt)

		if evt.Type == want {
			return evts
		}
	}
}

func untilHostCompleted(t *testing.T, ch chan *event.Event, ip netip.Addr) []*event.Event {
	t.Helper()

	evts := []*event.Event{}

	for {
		evt := next(t, ch)
		evts = append(evts, evt)

		if addr, ok := eventIP(evt); ok && addr == ip && evt.Type == event.HostCompleted {
			return evts
		}
	}
}

func assertQuiet(t *testing.T, ch chan *event.Event, wait time.Duration) {
	t.Helper()

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event: %s", evt.Type)
	case <-time.After(wait):
	}
}

func eventIP(evt *event.Event) (netip.Addr, bool) {
	switch p := evt.Payload.(type) {
	case host.Record:
		return p.IP, true
	case event.PortPayload:
		return p.IP, true
	}

	return netip.Addr{}, false
}

func typesFor(evts []*event.Event, ip netip.Addr) []event.EventType {
	types := []event.EventType{}

	for _, evt := range evts {
		if addr, ok := eventIP(evt); ok && addr == ip {
			types = append(types, evt.Type)
		}
	}

	return types
}

func result(ip netip.Addr, online bool) *discovery.HostResult {
	if online {
		return &discovery.HostResult{
			IP:     ip,
			Status: host.StatusOnline,
			Method: host.MethodTCP,
			RTT:    2 * time.Millisecond,
		}
	}

	return &discovery.HostResult{IP: ip, Status: host.StatusOffline}
}

func TestCoreScan(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	mockDiscoverer := mock_discovery.NewMockDiscoverer(ctrl)
	mockPortScanner := mock_discovery.NewMockPortScanner(ctrl)
	mockStore := mock_cache.NewMockStore(ctrl)
	mockDNS := mock_resolver.NewMockHostnameResolver(ctrl)
	mockMAC := mock_resolver.NewMockMACResolver(ctrl)
	mockHistory := mock_history.NewMockService(ctrl)

	coreService := core.New(
		core.Options{Ports: []uint16{22, 80}, ScanPorts: true},
		mockDiscoverer,
		mockPortScanner,
		mockStore,
		core.WithHostnameResolver(mockDNS),
		core.WithMACResolver(mockMAC),
		core.WithHistory(mockHistory),
	)

	evtChan := make(chan *event.Event, 100)
	coreService.RegisterEventListener(evtChan)

	mockDiscoverer.EXPECT().Discover(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(
			ctx context.Context,
			addrs []netip.Addr,
			gate discovery.Gate,
			results chan<- *discovery.HostResult,
		) error {
			assert.Equal(t, []netip.Addr{ip1, ip2, ip3}, addrs)

			for _, ip := range addrs {
				results <- result(ip, ip == ip1)
			}

			return nil
		})

	mockDNS.EXPECT().Resolve(gomock.Any(), ip1).Return("router.lan", true)
	mockMAC.EXPECT().Resolve(gomock.Any(), ip1).Return(&resolver.MACInfo{
		MAC:    "B8:27:EB:00:00:01",
		Vendor: "Raspberry Pi",
	}, true)

	mockPortScanner.EXPECT().ScanPorts(gomock.Any(), ip1, []uint16{22, 80}, gomock.Any(), gomock.Any()).
		DoAndReturn(func(
			ctx context.Context,
			ip netip.Addr,
			ports []uint16,
			gate discovery.Gate,
			results chan<- *discovery.PortResult,
		) error {
			results <- &discovery.PortResult{IP: ip, Port: host.NewPort(80)}
			results <- &discovery.PortResult{IP: ip, Port: host.NewPort(22)}
			return nil
		})

	mockStore.EXPECT().Save(gomock.Any()).DoAndReturn(func(entry *cache.Entry) error {
		assert.Equal(t, "10.0.0.1-3", entry.Range)
		assert.Len(t, entry.Hosts, 3)
		assert.Equal(t, 1, entry.Online())
		return nil
	})

	mockHistory.EXPECT().Record(gomock.Any(), "10.0.0.1-3", gomock.Any()).Return(1, nil)

	sessionID, err := coreService.Start("10.0.0.1-3", nil)

	require.NoError(t, err)

	evts := until(t, evtChan, event.ScanCompleted)

	t.Run("emits start first and completion last", func(st *testing.T) {
		assert.Equal(st, event.ScanStarted, evts[0].Type)
		assert.Equal(st, event.ScanCompleted, evts[len(evts)-1].Type)

		for _, evt := range evts {
			assert.Equal(st, sessionID, evt.SessionID)
		}

		summary, ok := evts[len(evts)-1].Payload.(event.Summary)

		assert.True(st, ok)
		assert.Equal(st, 3, summary.Total)
		assert.Equal(st, 3, summary.Done)
		assert.Equal(st, 1, summary.Online)
	})

	t.Run("orders events per host", func(st *testing.T) {
		assert.Equal(st, []event.EventType{
			event.HostLiveness,
			event.DNSResolved,
			event.MACResolved,
			event.PortOpen,
			event.PortOpen,
			event.HostCompleted,
		}, typesFor(evts, ip1))

		assert.Equal(st, []event.EventType{event.HostLiveness, event.HostCompleted}, typesFor(evts, ip2))
		assert.Equal(st, []event.EventType{event.HostLiveness, event.HostCompleted}, typesFor(evts, ip3))
	})

	t.Run("returns snapshot in discovery order", func(st *testing.T) {
		records := coreService.Snapshot()

		require.Len(st, records, 3)

		assert.Equal(st, ip1, records[0].IP)
		assert.Equal(st, host.StatusOnline, records[0].Status)
		assert.Equal(st, "router.lan", records[0].Hostname)
		assert.Equal(st, "B8:27:EB:00:00:01", records[0].MAC)
		assert.Equal(st, "Raspberry Pi", records[0].Vendor)
		assert.Equal(st, []uint16{22, 80}, records[0].PortIDs())
		assert.False(st, records[0].LastSeen.IsZero())

		assert.Equal(st, ip2, records[1].IP)
		assert.Equal(st, host.StatusOffline, records[1].Status)
		assert.Equal(st, ip3, records[2].IP)
	})

	t.Run("snapshot is a copy", func(st *testing.T) {
		records := coreService.Snapshot()
		records[0].Ports[0] = host.NewPort(1)

		assert.Equal(st, []uint16{22, 80}, coreService.Snapshot()[0].PortIDs())
	})

	t.Run("reports progress and summary", func(st *testing.T) {
		done, total := coreService.Progress()

		assert.Equal(st, 3, done)
		assert.Equal(st, 3, total)
		assert.Equal(st, "3 hosts (1 online)", coreService.Summary())
		assert.Equal(st, core.StateCompleted, coreService.State())
	})
}

func TestCoreTransitions(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	t.Run("rejects transitions from idle", func(st *testing.T) {
		coreService := core.New(
			core.Options{},
			mock_discovery.NewMockDiscoverer(ctrl),
			mock_discovery.NewMockPortScanner(ctrl),
			mock_cache.NewMockStore(ctrl),
		)

		assert.ErrorIs(st, coreService.Pause(), exception.ErrInvalidTransition)
		assert.ErrorIs(st, coreService.Resume(), exception.ErrInvalidTransition)
		assert.ErrorIs(st, coreService.Cancel(), exception.ErrInvalidTransition)
		assert.Equal(st, core.StateIdle, coreService.State())
	})

	t.Run("invalid range leaves state unchanged", func(st *testing.T) {
		coreService := core.New(
			core.Options{},
			mock_discovery.NewMockDiscoverer(ctrl),
			mock_discovery.NewMockPortScanner(ctrl),
			mock_cache.NewMockStore(ctrl),
		)

		_, err := coreService.Start("10.0.0.300", nil)

		assert.ErrorIs(st, err, exception.ErrInvalidRange)
		assert.Equal(st, core.StateIdle, coreService.State())
		assert.Empty(st, coreService.SessionID())
	})

	t.Run("rejects start while scanning and cancels", func(st *testing.T) {
		mockDiscoverer := mock_discovery.NewMockDiscoverer(ctrl)
		started := make(chan struct{}, 2)

		coreService := core.New(
			core.Options{},
			mockDiscoverer,
			mock_discovery.NewMockPortScanner(ctrl),
			mock_cache.NewMockStore(ctrl),
		)

		evtChan := make(chan *event.Event, 100)
		coreService.RegisterEventListener(evtChan)

		mockDiscoverer.EXPECT().Discover(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(
				ctx context.Context,
				addrs []netip.Addr,
				gate discovery.Gate,
				results chan<- *discovery.HostResult,
			) error {
				started <- struct{}{}
				<-ctx.Done()
				return ctx.Err()
			}).
			Times(2)

		first, err := coreService.Start("10.0.0.0/30", nil)

		require.NoError(st, err)

		<-started

		_, err = coreService.Start("10.0.0.0/30", nil)

		assert.ErrorIs(st, err, exception.ErrScanInProgress)

		assert.ErrorIs(st, coreService.Resume(), exception.ErrInvalidTransition)

		assert.NoError(st, coreService.Cancel())
		assert.Equal(st, core.StateCancelled, coreService.State())
		assert.ErrorIs(st, coreService.Cancel(), exception.ErrInvalidTransition)

		evts := until(st, evtChan, event.ScanCancelled)

		assert.Equal(st, event.ScanStarted, evts[0].Type)
		assert.Len(st, evts, 2)

		assertQuiet(st, evtChan, 50*time.Millisecond)

		second, err := coreService.Start("10.0.0.0/30", nil)

		require.NoError(st, err)
		assert.NotEqual(st, first, second)

		<-started

		evt := next(st, evtChan)

		assert.Equal(st, event.ScanStarted, evt.Type)
		assert.Equal(st, second, evt.SessionID)

		assert.NoError(st, coreService.Cancel())
	})

	t.Run("drops results arriving after cancel", func(st *testing.T) {
		mockDiscoverer := mock_discovery.NewMockDiscoverer(ctrl)
		cancelled := make(chan struct{})
		finished := make(chan struct{})

		coreService := core.New(
			core.Options{},
			mockDiscoverer,
			mock_discovery.NewMockPortScanner(ctrl),
			mock_cache.NewMockStore(ctrl),
		)

		evtChan := make(chan *event.Event, 100)
		coreService.RegisterEventListener(evtChan)

		mockDiscoverer.EXPECT().Discover(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(
				ctx context.Context,
				addrs []netip.Addr,
				gate discovery.Gate,
				results chan<- *discovery.HostResult,
			) error {
				defer close(finished)

				results <- result(ip1, false)
				<-cancelled

				// a worker racing the cancellation
				select {
				case results <- result(ip2, true):
				default:
				}

				return nil
			})

		_, err := coreService.Start("10.0.0.1-2", nil)

		require.NoError(st, err)

		untilHostCompleted(st, evtChan, ip1)

		assert.NoError(st, coreService.Cancel())

		close(cancelled)
		<-finished

		evts := until(st, evtChan, event.ScanCancelled)

		assert.Len(st, evts, 1)

		assertQuiet(st, evtChan, 100*time.Millisecond)

		records := coreService.Snapshot()

		require.Len(st, records, 1)
		assert.Equal(st, ip1, records[0].IP)
	})
}

func TestCorePauseResume(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	t.Run("pause holds new probes and keeps results", func(st *testing.T) {
		mockDiscoverer := mock_discovery.NewMockDiscoverer(ctrl)
		mockStore := mock_cache.NewMockStore(ctrl)
		proceed := make(chan struct{})

		coreService := core.New(
			core.Options{},
			mockDiscoverer,
			mock_discovery.NewMockPortScanner(ctrl),
			mockStore,
		)

		evtChan := make(chan *event.Event, 100)
		coreService.RegisterEventListener(evtChan)

		mockDiscoverer.EXPECT().Discover(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(
				ctx context.Context,
				addrs []netip.Addr,
				gate discovery.Gate,
				results chan<- *discovery.HostResult,
			) error {
				results <- result(ip1, false)

				<-proceed

				if err := gate.Wait(ctx); err != nil {
					return err
				}

				results <- result(ip2, false)

				return nil
			})

		mockStore.EXPECT().Save(gomock.Any()).DoAndReturn(func(entry *cache.Entry) error {
			assert.Len(st, entry.Hosts, 2)
			return nil
		})

		_, err := coreService.Start("10.0.0.1-2", nil)

		require.NoError(st, err)

		untilHostCompleted(st, evtChan, ip1)

		require.NoError(st, coreService.Pause())
		assert.ErrorIs(st, coreService.Pause(), exception.ErrInvalidTransition)

		evt := next(st, evtChan)

		assert.Equal(st, event.ScanPaused, evt.Type)

		close(proceed)

		assertQuiet(st, evtChan, 100*time.Millisecond)

		assert.Equal(st, core.StatePaused, coreService.State())
		assert.Len(st, coreService.Snapshot(), 1)

		require.NoError(st, coreService.Resume())

		evts := until(st, evtChan, event.ScanCompleted)

		assert.Equal(st, event.ScanResumed, evts[0].Type)
		assert.Equal(st, []event.EventType{event.HostLiveness, event.HostCompleted}, typesFor(evts, ip2))

		records := coreService.Snapshot()

		require.Len(st, records, 2)
		assert.Equal(st, ip1, records[0].IP)
		assert.Equal(st, ip2, records[1].IP)
	})

	t.Run("completion waits for resume", func(st *testing.T) {
		mockDiscoverer := mock_discovery.NewMockDiscoverer(ctrl)
		mockStore := mock_cache.NewMockStore(ctrl)
		proceed := make(chan struct{})

		coreService := core.New(
			core.Options{},
			mockDiscoverer,
			mock_discovery.NewMockPortScanner(ctrl),
			mockStore,
		)

		evtChan := make(chan *event.Event, 100)
		coreService.RegisterEventListener(evtChan)

		mockDiscoverer.EXPECT().Discover(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(
				ctx context.Context,
				addrs []netip.Addr,
				gate discovery.Gate,
				results chan<- *discovery.HostResult,
			) error {
				<-proceed
				results <- result(ip1, false)
				return nil
			})

		mockStore.EXPECT().Save(gomock.Any()).Return(nil)

		_, err := coreService.Start("10.0.0.1", nil)

		require.NoError(st, err)

		until(st, evtChan, event.ScanStarted)

		require.NoError(st, coreService.Pause())

		until(st, evtChan, event.ScanPaused)

		close(proceed)

		untilHostCompleted(st, evtChan, ip1)

		assertQuiet(st, evtChan, 100*time.Millisecond)

		assert.Equal(st, core.StatePaused, coreService.State())

		require.NoError(st, coreService.Resume())

		evts := until(st, evtChan, event.ScanCompleted)

		assert.Equal(st, []event.EventType{event.ScanResumed, event.ScanCompleted}, []event.EventType{evts[0].Type, evts[1].Type})
		assert.Equal(st, core.StateCompleted, coreService.State())
	})
}

func TestCoreCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	t.Run("save failure emits error then completes", func(st *testing.T) {
		mockDiscoverer := mock_discovery.NewMockDiscoverer(ctrl)
		mockStore := mock_cache.NewMockStore(ctrl)

		coreService := core.New(
			core.Options{Ports: []uint16{22}, ScanPorts: false},
			mockDiscoverer,
			mock_discovery.NewMockPortScanner(ctrl),
			mockStore,
		)

		evtChan := make(chan *event.Event, 100)
		coreService.RegisterEventListener(evtChan)

		mockDiscoverer.EXPECT().Discover(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(
				ctx context.Context,
				addrs []netip.Addr,
				gate discovery.Gate,
				results chan<- *discovery.HostResult,
			) error {
				results <- result(ip1, true)
				return nil
			})

		saveErr := errors.New("read-only file system")

		mockStore.EXPECT().Save(gomock.Any()).Return(saveErr)

		_, err := coreService.Start("10.0.0.1", nil)

		require.NoError(st, err)

		evts := until(st, evtChan, event.ScanCompleted)

		types := []event.EventType{}

		for _, evt := range evts {
			types = append(types, evt.Type)
		}

		assert.Equal(st, []event.EventType{
			event.ScanStarted,
			event.HostLiveness,
			event.HostCompleted,
			event.ScanError,
			event.ScanCompleted,
		}, types)

		payload, ok := evts[3].Payload.(event.ErrorPayload)

		assert.True(st, ok)
		assert.ErrorIs(st, payload.Err, saveErr)
		assert.Contains(st, payload.Reason, "read-only file system")

		assert.Equal(st, core.StateCompleted, coreService.State())
		assert.Len(st, coreService.Snapshot(), 1)
	})

	t.Run("removing a blocked listener releases the scan", func(st *testing.T) {
		mockDiscoverer := mock_discovery.NewMockDiscoverer(ctrl)
		mockStore := mock_cache.NewMockStore(ctrl)

		coreService := core.New(
			core.Options{},
			mockDiscoverer,
			mock_discovery.NewMockPortScanner(ctrl),
			mockStore,
		)

		// never read
		blocked := make(chan *event.Event)
		kept := make(chan *event.Event, 100)

		id := coreService.RegisterEventListener(blocked)
		coreService.RegisterEventListener(kept)

		mockDiscoverer.EXPECT().Discover(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		mockStore.EXPECT().Save(gomock.Any()).Return(nil)

		started := make(chan error, 1)

		go func() {
			_, err := coreService.Start("10.0.0.1", nil)
			started <- err
		}()

		select {
		case <-started:
			st.Fatal("start returned while a listener was blocked")
		case <-time.After(50 * time.Millisecond):
		}

		coreService.RemoveEventListener(id)

		select {
		case err := <-started:
			require.NoError(st, err)
		case <-time.After(3 * time.Second):
			st.Fatal("start still blocked after listener removal")
		}

		until(st, kept, event.ScanCompleted)

		assert.NoError(st, coreService.Stop())
	})

	t.Run("removed listeners receive nothing", func(st *testing.T) {
		mockDiscoverer := mock_discovery.NewMockDiscoverer(ctrl)
		mockStore := mock_cache.NewMockStore(ctrl)

		coreService := core.New(
			core.Options{},
			mockDiscoverer,
			mock_discovery.NewMockPortScanner(ctrl),
			mockStore,
		)

		kept := make(chan *event.Event, 100)
		removed := make(chan *event.Event, 100)

		coreService.RegisterEventListener(kept)
		id := coreService.RegisterEventListener(removed)
		coreService.RemoveEventListener(id)

		mockDiscoverer.EXPECT().Discover(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		mockStore.EXPECT().Save(gomock.Any()).Return(nil)

		_, err := coreService.Start("10.0.0.1", nil)

		require.NoError(st, err)

		until(st, kept, event.ScanCompleted)

		assert.Len(st, removed, 0)
	})
}

func TestCoreScanHostPorts(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	mockPortScanner := mock_discovery.NewMockPortScanner(ctrl)

	coreService := core.New(
		core.Options{Ports: []uint16{22, 80, 443}},
		mock_discovery.NewMockDiscoverer(ctrl),
		mockPortScanner,
		mock_cache.NewMockStore(ctrl),
	)

	t.Run("returns sorted open ports of the configured list", func(st *testing.T) {
		mockPortScanner.EXPECT().ScanPorts(gomock.Any(), ip1, []uint16{22, 80, 443}, gomock.Any(), gomock.Any()).
			DoAndReturn(func(
				ctx context.Context,
				ip netip.Addr,
				ports []uint16,
				gate discovery.Gate,
				results chan<- *discovery.PortResult,
			) error {
				require.NoError(st, gate.Wait(ctx))
				results <- &discovery.PortResult{IP: ip, Port: host.NewPort(443)}
				results <- &discovery.PortResult{IP: ip, Port: host.NewPort(22)}
				return nil
			})

		ports, err := coreService.ScanHostPorts(context.Background(), ip1, nil)

		require.NoError(st, err)
		assert.Equal(st, []host.Port{host.NewPort(22), host.NewPort(443)}, ports)
		assert.Equal(st, core.StateIdle, coreService.State())
	})

	t.Run("returns scanner errors", func(st *testing.T) {
		scanErr := errors.New("network unreachable")

		mockPortScanner.EXPECT().ScanPorts(gomock.Any(), ip2, []uint16{8080}, gomock.Any(), gomock.Any()).
			Return(scanErr)

		_, err := coreService.ScanHostPorts(context.Background(), ip2, []uint16{8080})

		assert.ErrorIs(st, err, scanErr)
	})
}

func TestCoreCachedAndWake(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	mockStore := mock_cache.NewMockStore(ctrl)
	woken := []string{}

	coreService := core.New(
		core.Options{},
		mock_discovery.NewMockDiscoverer(ctrl),
		mock_discovery.NewMockPortScanner(ctrl),
		mockStore,
		core.WithWaker(func(mac string) error {
			woken = append(woken, mac)
			return nil
		}),
	)

	t.Run("loads cached entry by normalized key", func(st *testing.T) {
		entry := &cache.Entry{Range: "192.168.1.0/24"}

		mockStore.EXPECT().Get("192.168.1.0/24").Return(entry, nil)

		cached, err := coreService.Cached("192.168.1.7/24")

		assert.NoError(st, err)
		assert.Equal(st, entry, cached)
	})

	t.Run("returns not found", func(st *testing.T) {
		mockStore.EXPECT().Get("10.0.0.1").Return(nil, exception.ErrRecordNotFound)

		_, err := coreService.Cached("10.0.0.1")

		assert.ErrorIs(st, err, exception.ErrRecordNotFound)
	})

	t.Run("wakes host", func(st *testing.T) {
		assert.NoError(st, coreService.WakeHost("AA:BB:CC:DD:EE:FF"))
		assert.Equal(st, []string{"AA:BB:CC:DD:EE:FF"}, woken)
	})
}
