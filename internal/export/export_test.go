package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robgonnella/ipscannr/internal/export"
	"github.com/robgonnella/ipscannr/internal/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records() []host.Record {
	online := host.NewRecord(netip.MustParseAddr("192.168.1.10"))
	online.Status = host.StatusOnline
	online.Method = host.MethodTCP
	online.RTT = 1500 * time.Microsecond
	online.Hostname = "printer.lan"
	online.MAC = "B8:27:EB:00:11:22"
	online.Vendor = "Raspberry Pi"
	online.AddPort(host.NewPort(443))
	online.AddPort(host.NewPort(22))

	offline := host.NewRecord(netip.MustParseAddr("192.168.1.11"))
	offline.Status = host.StatusOffline

	return []host.Record{online.Copy(), offline.Copy()}
}

func TestCSV(t *testing.T) {
	buf := bytes.Buffer{}

	err := export.CSV(&buf, records())

	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()

	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"IP", "Status", "RTT (ms)", "Hostname", "MAC", "Vendor", "Ports"}, rows[0])
	assert.Equal(t, []string{"192.168.1.10", "online", "1.5", "printer.lan", "B8:27:EB:00:11:22", "Raspberry Pi", "22;443"}, rows[1])
	assert.Equal(t, []string{"192.168.1.11", "offline", "", "", "", "", ""}, rows[2])
}

func TestJSON(t *testing.T) {
	buf := bytes.Buffer{}

	err := export.JSON(&buf, records())

	require.NoError(t, err)

	var hosts []map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &hosts))
	require.Len(t, hosts, 2)

	assert.Equal(t, "192.168.1.10", hosts[0]["ip"])
	assert.Equal(t, true, hosts[0]["is_alive"])
	assert.Equal(t, 1.5, hosts[0]["rtt_ms"])
	assert.Len(t, hosts[0]["open_ports"], 2)
	assert.Equal(t, false, hosts[1]["is_alive"])
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat(" CSV ")

	assert.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	_, err = export.ParseFormat("xml")

	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	now := time.Unix(1700000000, 0)
	path := filepath.Join(t.TempDir(), export.FileName(export.FormatCSV, now))

	assert.Equal(t, "ipscannr_export_1700000000.csv", filepath.Base(path))

	err := export.WriteFile(path, export.FormatCSV, records())

	require.NoError(t, err)

	data, err := os.ReadFile(path)

	require.NoError(t, err)
	assert.Contains(t, string(data), "192.168.1.10,online")
}

func TestHostDetails(t *testing.T) {
	t.Run("writes every known field", func(st *testing.T) {
		buf := bytes.Buffer{}

		err := export.HostDetails(&buf, records()[0])

		require.NoError(st, err)
		assert.Equal(
			st,
			"IP:     192.168.1.10\n"+
				"Status: Online\n"+
				"RTT:    1ms\n"+
				"Host:   printer.lan\n"+
				"MAC:    B8:27:EB:00:11:22\n"+
				"Vendor: Raspberry Pi\n"+
				"\nOpen Ports:\n"+
				"  22 (ssh)\n"+
				"  443 (https)\n",
			buf.String(),
		)
	})

	t.Run("omits unknown fields", func(st *testing.T) {
		buf := bytes.Buffer{}

		err := export.HostDetails(&buf, records()[1])

		require.NoError(st, err)
		assert.Equal(st, "IP:     192.168.1.11\nStatus: Offline\n", buf.String())
	})

	t.Run("saves to a file named by address", func(st *testing.T) {
		dir := st.TempDir()

		path, err := export.SaveHost(dir, records()[0])

		require.NoError(st, err)
		assert.Equal(st, filepath.Join(dir, "ipscannr_host_192.168.1.10.txt"), path)

		contents, err := os.ReadFile(path)

		require.NoError(st, err)
		assert.Contains(st, string(contents), "Host:   printer.lan")
	})
}
