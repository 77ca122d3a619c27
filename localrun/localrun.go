// Package localrun drives one in-process epoch of the core end to end:
// every client's broadcast or null-broadcast, every server's audit
// exchange, and the final accumulator reveal, without a transport or
// config-store collaborator. It supplements
// original_source/spectrum/src/bin/run_inmem.rs, which spec.md's
// distillation dropped (spec.md §1 puts transport/RPC out of scope for
// the core, so there is otherwise no way to watch the whole pipeline
// run). cmd/localrun and the top-level main.go's "localrun" subcommand
// are both thin wrappers around Run.
package localrun

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"spectrum-core/bytesutil"
	"spectrum-core/dpf"
	"spectrum-core/dpf/twokey"
	"spectrum-core/field"
	"spectrum-core/protocol"
	"spectrum-core/vdpf"
	"spectrum-core/worker"
)

// numServers is fixed at 2: the two-key construction hands out exactly
// one key per server.
const numServers = 2

// Config sizes one localrun epoch.
type Config struct {
	NumChannels int
	MsgSize     int
	NumClients  int
}

// ConfigFromEnv reads epoch sizing from SPECTRUM_NUM_CHANNELS,
// SPECTRUM_MSG_SIZE and SPECTRUM_NUM_CLIENTS, falling back to small
// defaults when unset.
func ConfigFromEnv() Config {
	return Config{
		NumChannels: envDefault("SPECTRUM_NUM_CHANNELS", 4),
		MsgSize:     envDefault("SPECTRUM_MSG_SIZE", 16),
		NumClients:  envDefault("SPECTRUM_NUM_CLIENTS", 50),
	}
}

func envDefault(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("localrun: invalid %s=%q: %v", name, v, err)
	}
	return n
}

// Run executes one epoch under cfg: cfg.NumClients clients each either
// broadcast to channel clientIdx%NumChannels or (one in five) send a
// null broadcast, uploading concurrently via errgroup; the servers'
// accumulators, XORed together into the full channel contents, are
// checked against the expected plaintext before Run returns.
func Run(cfg Config) error {
	dpfConstruction, err := twokey.New(dpf.Params{NumPoints: cfg.NumChannels, MsgSize: cfg.MsgSize})
	if err != nil {
		return fmt.Errorf("localrun: building DPF: %w", err)
	}
	v := vdpf.New(dpfConstruction)
	proto, err := protocol.New(v, numServers)
	if err != nil {
		return fmt.Errorf("localrun: building protocol: %w", err)
	}

	servers := make([]*worker.Server, numServers)
	for i := range servers {
		servers[i] = worker.NewServer(proto, numServers, cfg.NumChannels, cfg.MsgSize, cfg.NumClients)
	}

	log.Printf("localrun: %d channels x %d bytes, %d servers, %d clients",
		cfg.NumChannels, cfg.MsgSize, numServers, cfg.NumClients)

	var g errgroup.Group
	for c := 0; c < cfg.NumClients; c++ {
		c := c
		g.Go(func() error {
			return runClient(servers, proto, c, cfg.NumChannels, cfg.MsgSize)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	expected := worker.ZeroChannelVector(cfg.NumChannels, cfg.MsgSize)
	for c := 0; c < cfg.NumClients; c++ {
		if c%5 == 0 {
			continue // null broadcasts contribute nothing to the expected contents.
		}
		ch := c % cfg.NumChannels
		combined, err := expected[ch].XOR(clientMessage(c, cfg.MsgSize))
		if err != nil {
			return fmt.Errorf("localrun: %w", err)
		}
		expected[ch] = combined
	}

	accs := make([]worker.ChannelVector, numServers)
	for i, s := range servers {
		acc, count := s.Accumulator()
		log.Printf("server %d: accepted %d writes", i, count)
		accs[i] = acc
	}

	// Each server's accumulator is only its own DPF share of the channel
	// contents; XOR all numServers shares together before comparing to the
	// plaintext, the same combine step protocol.Protocol.ToAccumulator's
	// evaluations feed (spec.md §3's "combined by componentwise XOR").
	combined := worker.ZeroChannelVector(cfg.NumChannels, cfg.MsgSize)
	for _, acc := range accs {
		for c, share := range acc {
			v, err := combined[c].XOR(share)
			if err != nil {
				return fmt.Errorf("localrun: %w", err)
			}
			combined[c] = v
		}
	}

	for c, got := range combined {
		if !got.Equal(expected[c]) {
			return fmt.Errorf("channel %d: combined accumulator mismatch: got %x want %x", c, got, expected[c])
		}
	}
	return nil
}

// runClient drives one client's upload through every server: the audit
// exchange (Upload/Verify) followed by the check exchange
// (LocalCheck/Check) that the check registry's quorum gates the
// accumulate decision on (spec.md §4.6).
func runClient(servers []*worker.Server, proto *protocol.Protocol, clientIdx, numChannels, msgSize int) error {
	null := clientIdx%5 == 0
	var tokens []protocol.WriteToken
	var authKey vdpf.AuthKey
	var err error

	if null {
		tokens, err = proto.NullBroadcast()
	} else {
		channelIdx := clientIdx % numChannels
		authKey = field.FromUint64(uint64(channelIdx) + 1)
		msg := clientMessage(clientIdx, msgSize)
		tokens, err = proto.Broadcast(msg, protocol.ChannelKey{Idx: channelIdx, Secret: authKey})
	}
	if err != nil {
		return fmt.Errorf("client %d: %w", clientIdx, err)
	}

	shares := make([]protocol.AuditShare, len(servers))
	for i, srv := range servers {
		share, err := srv.Upload(clientIdx, authKey, tokens[i])
		if err != nil {
			return fmt.Errorf("client %d: server %d upload: %w", clientIdx, i, err)
		}
		shares[i] = share
	}
	for i, srv := range servers {
		for j, share := range shares {
			if i == j {
				continue
			}
			srv.Verify(clientIdx, share)
		}
	}

	checks := make([]worker.ShareCheck, len(servers))
	for i, srv := range servers {
		check, err := srv.LocalCheck(clientIdx)
		if err != nil {
			return fmt.Errorf("client %d: server %d local check: %w", clientIdx, i, err)
		}
		checks[i] = check
	}
	for i, srv := range servers {
		for j, check := range checks {
			if i == j {
				continue
			}
			srv.Check(clientIdx, check)
		}
	}
	return nil
}

func clientMessage(clientIdx, msgSize int) bytesutil.Bytes {
	msg := bytesutil.Zero(msgSize)
	for i := range msg {
		msg[i] = byte(clientIdx + 1)
	}
	return msg
}
