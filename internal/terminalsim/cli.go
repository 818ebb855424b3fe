package terminalsim

import "os"

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Punchclock Terminal Simulator
=============================

Serves generated users and punches over the terminal bridge protocol
(GET /users, GET /attendance) so the attendance service can run without
a device.

Usage:
  go run ./cmd/terminal-sim [options]

Options:
  -addr string
        Listen address (default ":4370")
  -users int
        Number of users to generate (default 12)
  -seed uint
        Generator seed (default 1)
  -tz string
        IANA time zone punches are generated in (default "Local")
  -latency duration
        Delay added to every response (default 0)
  -fail-every int
        Fail every Nth request with 503 (default 0, never)
  -verbose
        Log every request
  -help
        Show this help message

Example:
  go run ./cmd/terminal-sim -users 30 -latency 2s &
  PUNCHCLOCK_TERMINAL_URL=http://localhost:4370 go run ./cmd
`)
}
