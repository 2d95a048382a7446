package resolver

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	"github.com/robgonnella/ipscannr/internal/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// ResolvConf location of the system resolver configuration
const ResolvConf = "/etc/resolv.conf"

const mdnsPort = "5353"

var errNoName = errors.New("no PTR record")

// LookupFunc performs a single uncached reverse lookup
type LookupFunc func(ctx context.Context, ip netip.Addr) (string, error)

type cached struct {
	name string
	ok   bool
}

// DNS reverse resolver with a per session cache. Each address is looked up
// at most once, failures are cached as unresolved.
type DNS struct {
	timeout time.Duration
	workers int
	sem     *semaphore.Weighted
	servers []string
	mdns    bool
	lookup  LookupFunc
	group   singleflight.Group
	cache   map[netip.Addr]cached
	mux     sync.RWMutex
	log     logger.Logger
}

// DNSOption configures a DNS resolver
type DNSOption func(d *DNS)

// WithServers queries the given "host:port" nameservers instead of those
// found in /etc/resolv.conf
func WithServers(servers []string) DNSOption {
	return func(d *DNS) {
		d.servers = servers
	}
}

// WithMDNS enables or disables the unicast mDNS fallback query
func WithMDNS(enabled bool) DNSOption {
	return func(d *DNS) {
		d.mdns = enabled
	}
}

// WithLookup replaces the network lookup chain entirely
func WithLookup(fn LookupFunc) DNSOption {
	return func(d *DNS) {
		d.lookup = fn
	}
}

// NewDNS returns a new reverse resolver
func NewDNS(timeout time.Duration, workers int, options ...DNSOption) *DNS {
	d := &DNS{
		timeout: timeout,
		workers: workers,
		mdns:    true,
		cache:   map[netip.Addr]cached{},
		log:     logger.New(),
	}

	if conf, err := dns.ClientConfigFromFile(ResolvConf); err == nil {
		for _, s := range conf.Servers {
			d.servers = append(d.servers, net.JoinHostPort(s, conf.Port))
		}
	}

	for _, o := range options {
		o(d)
	}

	if d.workers < 1 {
		d.workers = 1
	}

	d.sem = semaphore.NewWeighted(int64(d.workers))

	if d.lookup == nil {
		d.lookup = d.lookupChain
	}

	return d
}

// Resolve returns the hostname for ip. Cache hits never touch the network.
// At most workers lookups are in flight across all callers.
func (d *DNS) Resolve(ctx context.Context, ip netip.Addr) (string, bool) {
	d.mux.RLock()
	c, hit := d.cache[ip]
	d.mux.RUnlock()

	if hit {
		return c.name, c.ok
	}

	v, _, _ := d.group.Do(ip.String(), func() (any, error) {
		d.mux.RLock()
		c, hit := d.cache[ip]
		d.mux.RUnlock()

		if hit {
			return c, nil
		}

		if err := d.sem.Acquire(ctx, 1); err != nil {
			return cached{}, nil
		}

		defer d.sem.Release(1)

		lookupCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		name, err := d.lookup(lookupCtx, ip)

		result := cached{name: name, ok: err == nil && name != ""}

		if ctx.Err() != nil {
			// abandoned by the caller, leave uncached
			return result, nil
		}

		if !result.ok {
			d.log.Debug().Str("ip", ip.String()).AnErr("reason", err).Msg("hostname unresolved")
		}

		d.mux.Lock()
		d.cache[ip] = result
		d.mux.Unlock()

		return result, nil
	})

	res := v.(cached)

	return res.name, res.ok
}

// ResolveBatch resolves many addresses concurrently, bounded by the
// configured worker count. Only resolved addresses are returned.
func (d *DNS) ResolveBatch(ctx context.Context, ips []netip.Addr) map[netip.Addr]string {
	results := map[netip.Addr]string{}
	mux := sync.Mutex{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for _, ip := range ips {
		ip := ip
		g.Go(func() error {
			if name, ok := d.Resolve(gctx, ip); ok {
				mux.Lock()
				results[ip] = name
				mux.Unlock()
			}

			return nil
		})
	}

	g.Wait()

	return results
}

// ClearCache forgets all previous lookups
func (d *DNS) ClearCache() {
	d.mux.Lock()
	defer d.mux.Unlock()

	d.cache = map[netip.Addr]cached{}
}

// CacheSize returns the number of cached lookups
func (d *DNS) CacheSize() int {
	d.mux.RLock()
	defer d.mux.RUnlock()

	return len(d.cache)
}

func (d *DNS) lookupChain(ctx context.Context, ip netip.Addr) (string, error) {
	var name string
	var err error

	if len(d.servers) > 0 {
		name, err = d.queryPTR(ctx, ip, d.servers, true)
	} else {
		name, err = d.systemLookup(ctx, ip)
	}

	if err == nil {
		return name, nil
	}

	if d.mdns && ctx.Err() == nil {
		mdnsAddr := net.JoinHostPort(ip.String(), mdnsPort)

		if n, mdnsErr := d.queryPTR(ctx, ip, []string{mdnsAddr}, false); mdnsErr == nil {
			return n, nil
		}
	}

	return "", err
}

func (d *DNS) queryPTR(
	ctx context.Context,
	ip netip.Addr,
	servers []string,
	recursive bool,
) (string, error) {
	arpa, err := dns.ReverseAddr(ip.String())

	if err != nil {
		return "", err
	}

	msg := new(dns.Msg)
	msg.SetQuestion(arpa, dns.TypePTR)
	msg.RecursionDesired = recursive

	client := &dns.Client{Net: "udp", Timeout: d.timeout}

	lastErr := errNoName

	for _, server := range servers {
		resp, _, err := client.ExchangeContext(ctx, msg, server)

		if err != nil {
			lastErr = err

			if ctx.Err() != nil {
				return "", ctx.Err()
			}

			continue
		}

		if resp.Rcode == dns.RcodeNameError {
			return "", errNoName
		}

		for _, ans := range resp.Answer {
			if ptr, ok := ans.(*dns.PTR); ok {
				return strings.TrimSuffix(ptr.Ptr, "."), nil
			}
		}
	}

	return "", lastErr
}

func (d *DNS) systemLookup(ctx context.Context, ip netip.Addr) (string, error) {
	names, err := net.DefaultResolver.LookupAddr(ctx, ip.String())

	if err != nil {
		return "", err
	}

	if len(names) == 0 {
		return "", errNoName
	}

	return strings.TrimSuffix(names[0], "."), nil
}
