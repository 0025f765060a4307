// Package pkg holds small formatting helpers shared by the HTTP layer.
package pkg

import (
	"strconv"
	"strings"
	"time"
)

type unit struct {
	suffix string
	size   time.Duration
}

// largest first
var coarseUnits = []unit{
	{"d", 24 * time.Hour},
	{"h", time.Hour},
	{"m", time.Minute},
	{"s", time.Second},
	{"ms", time.Millisecond},
}

// SmartDurationFormat renders d compactly for access logs. Sub-second values
// use a single unit (ms, μs or ns); longer values use the two largest
// non-zero units, e.g. "1m30s" or "2s15ms".
func SmartDurationFormat(d time.Duration) string {
	if d == 0 {
		return "0"
	}
	if d < 0 {
		return "-" + SmartDurationFormat(-d)
	}
	switch {
	case d < time.Microsecond:
		return strconv.FormatInt(d.Nanoseconds(), 10) + "ns"
	case d < time.Millisecond:
		return strconv.FormatInt(d.Microseconds(), 10) + "μs"
	case d < time.Second:
		return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
	}

	var b strings.Builder
	parts := 0
	for _, u := range coarseUnits {
		if d < u.size {
			if parts > 0 {
				// units must be adjacent: 1h0m5s renders as 1h
				break
			}
			continue
		}
		b.WriteString(strconv.FormatInt(int64(d/u.size), 10))
		b.WriteString(u.suffix)
		d %= u.size
		parts++
		if parts == 2 || d == 0 {
			break
		}
	}
	return b.String()
}

// ServerTiming renders a Server-Timing header entry with millisecond
// precision, e.g. "app;dur=12.345".
func ServerTiming(name string, d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	return name + ";dur=" + strconv.FormatFloat(ms, 'f', 3, 64)
}
