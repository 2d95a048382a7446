package targets

import (
	"fmt"
	"net/netip"
	"slices"
	"strconv"
	"strings"

	"github.com/projectdiscovery/mapcidr"
	"github.com/robgonnella/ipscannr/internal/exception"
)

// MinPrefixBits smallest CIDR prefix accepted in a range expression
const MinPrefixBits = 16

// MaxPartSize largest number of addresses a single range part may expand to
const MaxPartSize = 1 << (32 - MinPrefixBits)

// Range represents a parsed range expression: an ascending, de-duplicated
// list of IPv4 addresses
type Range struct {
	Addrs []netip.Addr
	parts []part
}

type part struct {
	canonical string
	first     netip.Addr
}

// Key returns the normalized representation of the range used to key
// cached results
func (r *Range) Key() string {
	strs := make([]string, 0, len(r.parts))

	for _, p := range r.parts {
		strs = append(strs, p.canonical)
	}

	return strings.Join(strs, ",")
}

// Len returns the number of target addresses
func (r *Range) Len() int {
	return len(r.Addrs)
}

// NormalizeKey parses expr and returns its cache key
func NormalizeKey(expr string) (string, error) {
	r, err := Parse(expr)

	if err != nil {
		return "", err
	}

	return r.Key(), nil
}

// Parse parses a range expression. Supported forms, optionally combined
// with commas:
//
//	192.168.1.0/24          all addresses in the block, network and broadcast included
//	192.168.1.1-254         short range on the last octet
//	10.0.0.250-10.0.1.5     full range
//	192.168.1.10            single address
func Parse(expr string) (*Range, error) {
	addrs := []netip.Addr{}
	parts := []part{}

	for _, raw := range strings.Split(expr, ",") {
		raw = strings.TrimSpace(raw)

		if raw == "" {
			continue
		}

		p, expanded, err := parsePart(raw)

		if err != nil {
			return nil, fmt.Errorf("%w: %q: %s", exception.ErrInvalidRange, raw, err)
		}

		parts = append(parts, p)
		addrs = append(addrs, expanded...)
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty range expression", exception.ErrInvalidRange)
	}

	slices.SortFunc(addrs, func(a, b netip.Addr) int {
		return a.Compare(b)
	})

	slices.SortFunc(parts, func(a, b part) int {
		if c := a.first.Compare(b.first); c != 0 {
			return c
		}

		return strings.Compare(a.canonical, b.canonical)
	})

	return &Range{
		Addrs: slices.Compact(addrs),
		parts: slices.CompactFunc(parts, func(a, b part) bool {
			return a.canonical == b.canonical
		}),
	}, nil
}

func parsePart(raw string) (part, []netip.Addr, error) {
	if strings.Contains(raw, "/") {
		return parseCIDR(raw)
	}

	if lo, hi, ok := strings.Cut(raw, "-"); ok {
		lo = strings.TrimSpace(lo)
		hi = strings.TrimSpace(hi)

		if strings.Contains(hi, ".") {
			return parseFullRange(lo, hi)
		}

		return parseShortRange(lo, hi)
	}

	ip, err := parseIPv4(raw)

	if err != nil {
		return part{}, nil, err
	}

	return part{canonical: ip.String(), first: ip}, []netip.Addr{ip}, nil
}

func parseCIDR(raw string) (part, []netip.Addr, error) {
	addrStr, bitsStr, _ := strings.Cut(raw, "/")

	if _, err := parseIPv4(strings.TrimSpace(addrStr)); err != nil {
		return part{}, nil, err
	}

	bitsStr = strings.TrimSpace(bitsStr)

	if !isDigits(bitsStr, 2) {
		return part{}, nil, fmt.Errorf("malformed CIDR prefix")
	}

	bits, err := strconv.Atoi(bitsStr)

	if err != nil || bits < 0 || bits > 32 {
		return part{}, nil, fmt.Errorf("malformed CIDR prefix")
	}

	if bits < MinPrefixBits {
		return part{}, nil, fmt.Errorf("range too large: prefix must be /%d or longer", MinPrefixBits)
	}

	prefix, err := netip.ParsePrefix(strings.TrimSpace(addrStr) + "/" + strconv.Itoa(bits))

	if err != nil {
		return part{}, nil, fmt.Errorf("malformed CIDR prefix")
	}

	prefix = prefix.Masked()

	ipStrs, err := mapcidr.IPAddresses(prefix.String())

	if err != nil {
		return part{}, nil, fmt.Errorf("malformed CIDR prefix")
	}

	addrs := make([]netip.Addr, 0, len(ipStrs))

	for _, s := range ipStrs {
		ip, err := netip.ParseAddr(s)

		if err != nil {
			return part{}, nil, fmt.Errorf("invalid address %s", s)
		}

		addrs = append(addrs, ip)
	}

	return part{canonical: prefix.String(), first: prefix.Addr()}, addrs, nil
}

func parseShortRange(lo, hi string) (part, []netip.Addr, error) {
	start, err := parseIPv4(lo)

	if err != nil {
		return part{}, nil, err
	}

	end, err := parseOctet(hi)

	if err != nil {
		return part{}, nil, err
	}

	b := start.As4()

	if int(b[3]) > end {
		return part{}, nil, fmt.Errorf("reversed bounds")
	}

	addrs := []netip.Addr{}

	for o := int(b[3]); o <= end; o++ {
		addrs = append(addrs, netip.AddrFrom4([4]byte{b[0], b[1], b[2], byte(o)}))
	}

	canonical := fmt.Sprintf("%s-%d", start.String(), end)

	return part{canonical: canonical, first: start}, addrs, nil
}

func parseFullRange(lo, hi string) (part, []netip.Addr, error) {
	start, err := parseIPv4(lo)

	if err != nil {
		return part{}, nil, err
	}

	end, err := parseIPv4(hi)

	if err != nil {
		return part{}, nil, err
	}

	if end.Less(start) {
		return part{}, nil, fmt.Errorf("reversed bounds")
	}

	if span(start, end) > MaxPartSize {
		return part{}, nil, fmt.Errorf("range too large: more than %d addresses", MaxPartSize)
	}

	addrs := []netip.Addr{}

	for ip := start; ip.Compare(end) <= 0 && ip.IsValid(); ip = ip.Next() {
		addrs = append(addrs, ip)
	}

	canonical := start.String() + "-" + end.String()

	return part{canonical: canonical, first: start}, addrs, nil
}

func parseIPv4(s string) (netip.Addr, error) {
	if strings.Contains(s, ":") {
		return netip.Addr{}, fmt.Errorf("invalid address %q: only IPv4 is supported", s)
	}

	fields := strings.Split(s, ".")

	if len(fields) != 4 {
		return netip.Addr{}, fmt.Errorf("invalid address %q", s)
	}

	var b [4]byte

	for i, f := range fields {
		o, err := parseOctet(f)

		if err != nil {
			return netip.Addr{}, err
		}

		b[i] = byte(o)
	}

	return netip.AddrFrom4(b), nil
}

func parseOctet(s string) (int, error) {
	if !isDigits(s, 3) {
		return 0, fmt.Errorf("invalid octet %q", s)
	}

	n, err := strconv.Atoi(s)

	if err != nil || n < 0 || n > 255 {
		return 0, fmt.Errorf("invalid octet %q", s)
	}

	return n, nil
}

// isDigits reports whether s is 1 to maxLen ascii digits with no sign
func isDigits(s string, maxLen int) bool {
	if s == "" || len(s) > maxLen {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

func span(start, end netip.Addr) uint64 {
	s := start.As4()
	e := end.As4()

	return uint64(toUint32(e)) - uint64(toUint32(s)) + 1
}

func toUint32(b [4]byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
