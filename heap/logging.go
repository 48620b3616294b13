package heap

import "github.com/tliron/commonlog"

// gcLog is the logger name GC diagnostics are emitted under; a host
// process configuring commonlog can target it independently of its
// own logging.
const gcLog = "maggieheap.gc"

func logger() commonlog.Logger {
	return commonlog.GetLogger(gcLog)
}

func logScavengeBegin(log commonlog.Logger, reason string) {
	log.Debugf("scavenge begin: %s", reason)
}

func logScavengeEnd(log commonlog.Logger, reason string, before, after, capacity int) {
	log.Infof("scavenge end: %s: %d -> %d bytes live (capacity %d)", reason, before, after, capacity)
}

func logGrow(log commonlog.Logger, from, to int) {
	log.Infof("grow: %d -> %d bytes", from, to)
}

func logBecome(log commonlog.Logger, count int) {
	log.Debugf("become: %d identities swapped", count)
}
