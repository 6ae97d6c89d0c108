// Package server implements hearthd's network layer: the content listener
// with its worker pool, the metrics listener, and the listening-socket set
// the shutdown sequencer force-closes.
package server

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/hearthlabs/hearthd/pkg/content"
	"github.com/hearthlabs/hearthd/pkg/logging"
	"github.com/hearthlabs/hearthd/pkg/metrics"
	"github.com/hearthlabs/hearthd/pkg/signals"
	"github.com/hearthlabs/hearthd/pkg/status"
)

// connTimeout bounds a single client exchange.
const connTimeout = 30 * time.Second

// Server serves content blobs over a line-oriented TCP protocol:
//
//	GET <key>   -> "OK <len>\n<data>" or "ERR not-found\n"
//	STAT        -> "OK status=<state> blobs=<n>\n"
//
// Accepted connections feed a queue consumed by a fixed pool of worker
// goroutines. Each worker registers with the wake broadcaster and exits when
// woken during a shutdown.
type Server struct {
	addr  string
	nwork int
	store *content.Store
	st    *status.Flag
	wake  *signals.Broadcaster
	log   *logging.Logger

	listeners *ListenerSet
	conns     chan net.Conn
	wg        sync.WaitGroup

	mu    sync.Mutex
	bound net.Addr
}

// New creates a Server. Listeners it binds are registered in ls.
func New(addr string, workers int, store *content.Store, st *status.Flag,
	wake *signals.Broadcaster, ls *ListenerSet, log *logging.Logger) *Server {
	return &Server{
		addr:      addr,
		nwork:     workers,
		store:     store,
		st:        st,
		wake:      wake,
		log:       log,
		listeners: ls,
		conns:     make(chan net.Conn, workers),
	}
}

// Start binds the content listener and launches the accept loop and worker
// pool.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("binding content listener: %w", err)
	}
	s.listeners.Add(l)
	s.mu.Lock()
	s.bound = l.Addr()
	s.mu.Unlock()

	s.wg.Add(1)
	go s.acceptLoop(l)

	for i := 0; i < s.nwork; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.log.Info("Content listener on %s (%d workers)", l.Addr(), s.nwork)
	return nil
}

// Addr returns the bound address of the content listener, or nil before
// Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

// Wait blocks until the accept loop and every worker have exited.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) acceptLoop(l net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.st.ShuttingDown() {
				return
			}
			s.log.Error("Accept error: %v", err)
			continue
		}
		metrics.ConnectionsServed.Inc()

		select {
		case s.conns <- conn:
		default:
			// Queue full: shed load rather than block the accept loop.
			s.log.Warn("Connection queue full, dropping client %s", conn.RemoteAddr())
			conn.Close()
		}
	}
}

// worker consumes the connection queue. It blocks on the queue until either
// work arrives or a wake broadcast tells it to re-check the status flag.
func (s *Server) worker(i int) {
	defer s.wg.Done()

	w := s.wake.Register(fmt.Sprintf("conn-worker-%d", i))
	defer w.Exit()

	for {
		select {
		case conn := <-s.conns:
			s.handle(conn)
		case <-w.C():
			if w.Woken() {
				return
			}
		}
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(connTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		s.log.Debug("Client read error from %s: %v", conn.RemoteAddr(), err)
		return
	}

	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch strings.ToUpper(verb) {
	case "GET":
		data, ok := s.store.Get(arg)
		if !ok {
			fmt.Fprintf(conn, "ERR not-found\n")
			return
		}
		fmt.Fprintf(conn, "OK %d\n", len(data))
		conn.Write(data)
	case "STAT":
		fmt.Fprintf(conn, "OK status=%s blobs=%d\n", s.st.Get(), s.store.Len())
	default:
		fmt.Fprintf(conn, "ERR bad-command\n")
	}
}
