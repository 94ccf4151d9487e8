package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"meshnode/internal/daemon"
	"meshnode/internal/metrics"
	"meshnode/internal/network"
	"meshnode/internal/node"
	"meshnode/internal/pprofutil"
	"meshnode/internal/state"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(stdout)
		return 0
	}
	switch args[0] {
	case "run":
		return runNode(args[1:], stdin, stdout, stderr)
	case "id":
		return runID(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: mesh-node <run|id> [args]")
	fmt.Fprintln(w, "  run  [--addr host:port] [--dial a,b,...] [--transport tcp|quic] [--home dir] [--debug]")
	fmt.Fprintln(w, "       stdin lines are broadcast to all live connections as state changes")
	fmt.Fprintln(w, "  id   [--home dir]")
}

func homeDir() string {
	h, _ := os.UserHomeDir()
	return filepath.Join(h, ".meshnode")
}

func defaultAddr() string {
	if addr := strings.TrimSpace(os.Getenv("MESH_LISTEN_ADDR")); addr != "" {
		return addr
	}
	return daemon.DefaultListenAddr
}

func runID(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("id", flag.ContinueOnError)
	fs.SetOutput(stderr)
	home := fs.String("home", homeDir(), "node home dir")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	self, err := node.NewNode(*home)
	if err != nil {
		fmt.Fprintf(stderr, "load node failed: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, self.IDHex())
	return 0
}

func runNode(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", defaultAddr(), "listen addr (host:port)")
	home := fs.String("home", homeDir(), "node home dir")
	transport := fs.String("transport", "tcp", "transport (tcp|quic)")
	dial := fs.String("dial", "", "comma-separated seed addresses to dial")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *debug {
		_ = os.Setenv("MESH_DEBUG", "1")
	}
	if err := pprofutil.StartFromEnv(stderr); err != nil {
		fmt.Fprintf(stderr, "pprof disabled: %v\n", err)
	}

	tr, err := network.ByName(*transport)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	self, err := node.NewNode(*home)
	if err != nil {
		fmt.Fprintf(stderr, "load node failed: %v\n", err)
		return 1
	}
	st := state.NewStore()
	m := metrics.New()
	p := daemon.New(self, daemon.Options{
		Addr:      *addr,
		Transport: tr,
		State:     st,
		Metrics:   m,
	})
	if err := p.Start(); err != nil {
		fmt.Fprintf(stderr, "listen failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "READY addr=%s node_id=%s\n", p.ListenAddr(), self.IDHex())

	for _, seed := range strings.Split(*dial, ",") {
		if seed = strings.TrimSpace(seed); seed != "" {
			p.Dial(seed)
		}
	}

	go writeSnapshots(m, filepath.Join(*home, "metrics.json"))
	go consumeEvents(p, st, stdout)

	// Host-side gossip source: every stdin line goes out as a state change.
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p.Broadcast(line)
	}
	// stdin closed; keep serving.
	select {}
}

func writeSnapshots(m *metrics.Metrics, path string) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		_ = m.WriteSnapshot(path)
	}
}

// consumeEvents is the host application side of the event channel: it prints
// everything and applies well-formed changes to the local state store. The
// protocol core itself never validates or applies a change.
func consumeEvents(p *daemon.Peer, st *state.Store, stdout io.Writer) {
	for ev := range p.Events() {
		switch ev.Kind {
		case daemon.EventReady:
			fmt.Fprintln(stdout, "event ready")
		case daemon.EventConnection:
			fmt.Fprintf(stdout, "event connection addr=%s status=%s initiator=%t\n", ev.Addr, ev.Status, ev.Initiator)
		case daemon.EventPeer:
			fmt.Fprintf(stdout, "event peer id=%x\n", ev.PeerID[:])
		case daemon.EventPart:
			fmt.Fprintf(stdout, "event part addr=%s\n", ev.Addr)
		case daemon.EventChanges:
			fmt.Fprintf(stdout, "event changes value=%v\n", ev.Value)
			if obj, ok := ev.Value.(map[string]any); ok {
				if path, ok := obj["path"].(string); ok && path != "" {
					st.Apply(path, obj["value"])
				}
			}
		}
	}
}
