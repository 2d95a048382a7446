package targets_test

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/robgonnella/ipscannr/internal/exception"
	"github.com/robgonnella/ipscannr/internal/targets"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("expands cidr blocks including network and broadcast", func(st *testing.T) {
		for _, tc := range []struct {
			expr  string
			count int
		}{
			{"192.168.1.0/24", 256},
			{"10.0.0.0/30", 4},
			{"10.0.0.9/32", 1},
			{"172.16.4.77/22", 1024},
			{"10.1.0.0/16", 65536},
		} {
			r, err := targets.Parse(tc.expr)

			assert.NoError(st, err, tc.expr)
			assert.Equal(st, tc.count, r.Len(), tc.expr)

			prefix := netip.MustParsePrefix(tc.expr).Masked()

			for _, ip := range r.Addrs {
				assert.True(st, prefix.Contains(ip), ip.String())
			}

			assert.Equal(st, prefix.Addr(), r.Addrs[0])
		}
	})

	t.Run("parses short range", func(st *testing.T) {
		r, err := targets.Parse("192.168.1.1-254")

		assert.NoError(st, err)
		assert.Equal(st, 254, r.Len())
		assert.Equal(st, "192.168.1.1", r.Addrs[0].String())
		assert.Equal(st, "192.168.1.254", r.Addrs[253].String())
	})

	t.Run("parses full range across octets", func(st *testing.T) {
		r, err := targets.Parse("10.0.0.254-10.0.1.1")

		assert.NoError(st, err)
		assert.Equal(st, []string{"10.0.0.254", "10.0.0.255", "10.0.1.0", "10.0.1.1"}, addrStrings(r))
	})

	t.Run("unions comma separated parts in ascending order", func(st *testing.T) {
		r, err := targets.Parse("192.168.1.1,10.0.0.0/30")

		assert.NoError(st, err)
		assert.Equal(
			st,
			[]string{"10.0.0.0", "10.0.0.1", "10.0.0.2", "10.0.0.3", "192.168.1.1"},
			addrStrings(r),
		)
	})

	t.Run("de-duplicates overlapping parts", func(st *testing.T) {
		r, err := targets.Parse("10.0.0.2, 10.0.0.0/30 ,10.0.0.1-3")

		assert.NoError(st, err)
		assert.Equal(st, []string{"10.0.0.0", "10.0.0.1", "10.0.0.2", "10.0.0.3"}, addrStrings(r))
	})

	t.Run("rejects malformed input naming the failing part", func(st *testing.T) {
		for _, tc := range []struct {
			expr   string
			reason string
		}{
			{"", "empty"},
			{" , ", "empty"},
			{"192.168.1.300-1", "invalid octet"},
			{"192.168.1.10-2", "reversed bounds"},
			{"192.168.1.1-256", "invalid octet"},
			{"10.0.1.0-10.0.0.255", "reversed bounds"},
			{"10.0.0.0/33", "malformed CIDR prefix"},
			{"10.0.0.0/abc", "malformed CIDR prefix"},
			{"10.0.0.0/8", "range too large"},
			{"10.0.0", "invalid address"},
			{"fe80::1", "invalid address"},
			{"10.0.0.1,bad", "\"bad\""},
			{"192.168.+1.1", "invalid octet"},
			{"192.168.1.1-+5", "invalid octet"},
			{"10.0.0.1-0003", "invalid octet"},
			{"10.0.0.1-+3", "invalid octet"},
			{"10.0.0.0/+24", "malformed CIDR prefix"},
		} {
			r, err := targets.Parse(tc.expr)

			assert.Nil(st, r, tc.expr)
			assert.Error(st, err, tc.expr)
			assert.True(st, errors.Is(err, exception.ErrInvalidRange), tc.expr)
			assert.Contains(st, err.Error(), tc.reason, tc.expr)
		}
	})
}

func TestKey(t *testing.T) {
	t.Run("normalizes equivalent expressions", func(st *testing.T) {
		a, err := targets.NormalizeKey(" 192.168.1.77/24 ")
		assert.NoError(st, err)

		b, err := targets.NormalizeKey("192.168.1.0/24")
		assert.NoError(st, err)

		assert.Equal(st, "192.168.1.0/24", a)
		assert.Equal(st, a, b)
	})

	t.Run("orders and de-duplicates parts", func(st *testing.T) {
		key, err := targets.NormalizeKey("192.168.1.5,10.0.0.1-4,192.168.1.5")

		assert.NoError(st, err)
		assert.Equal(st, "10.0.0.1-4,192.168.1.5", key)
	})

	t.Run("fails for invalid expression", func(st *testing.T) {
		_, err := targets.NormalizeKey("nope")

		assert.Error(st, err)
	})
}

func addrStrings(r *targets.Range) []string {
	strs := []string{}

	for _, ip := range r.Addrs {
		strs = append(strs, ip.String())
	}

	return strs
}
