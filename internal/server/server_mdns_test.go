package server

import (
	"net"
	"testing"
)

func TestListenPortFromAddr(t *testing.T) {
	if got := listenPortFromAddr(""); got != "8080" {
		t.Fatalf("expected default port 8080, got %q", got)
	}
	if got := listenPortFromAddr(":9000"); got != "9000" {
		t.Fatalf("expected :9000 to parse to 9000, got %q", got)
	}
	if got := listenPortFromAddr("127.0.0.1:7777"); got != "7777" {
		t.Fatalf("expected host:port to parse port 7777, got %q", got)
	}
	if got := listenPortFromAddr("not-a-port:"); got != "" {
		t.Fatalf("expected invalid addr parse to empty, got %q", got)
	}
}

func TestStartMDNSAdvertiserDisabled(t *testing.T) {
	t.Setenv("STATUSCI_MDNS_ENABLE", "false")
	shutdown := startMDNSAdvertiser("127.0.0.1:8080")
	// Should always be callable even when mDNS is disabled.
	shutdown()

	t.Setenv("STATUSCI_MDNS_ENABLE", "true")
	// Invalid listen addr should no-op and still return callable shutdown.
	shutdown = startMDNSAdvertiser("invalid:")
	shutdown()
}

func TestFilterAdvertiseIPsSkipsLoopbackAndDuplicates(t *testing.T) {
	addrs := []net.Addr{
		&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)},
		&net.IPNet{IP: net.ParseIP("192.168.1.10"), Mask: net.CIDRMask(24, 32)},
		&net.IPNet{IP: net.ParseIP("192.168.1.10"), Mask: net.CIDRMask(24, 32)},
		&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)},
	}
	out := filterAdvertiseIPs(addrs)
	if len(out) != 1 {
		t.Fatalf("expected one advertised IP, got %v", out)
	}
	if out[0].String() != "192.168.1.10" {
		t.Fatalf("unexpected advertised IP: %v", out[0])
	}
}
