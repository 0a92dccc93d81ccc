// Package nats runs the embedded NATS server that backs the local activity
// log. The server is in-process only (DontListen) and stores JetStream data
// under the configured data directory.
package nats

import (
	"errors"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/sbrock928/dealdesk/internal/logger"
)

// StartEmbedded starts an embedded NATS server with JetStream file storage
// rooted at dataDir. No network ports are opened.
func StartEmbedded(dataDir string) (*server.Server, error) {
	logger.Debug("starting embedded NATS server, store dir %s", dataDir)

	ns, err := server.NewServer(&server.Options{
		JetStream:  true,
		StoreDir:   dataDir,
		DontListen: true,
	})
	if err != nil {
		return nil, err
	}

	go ns.Start()

	if !ns.ReadyForConnections(4 * time.Second) {
		return nil, errors.New("embedded nats server not ready within 4s")
	}
	return ns, nil
}

// ConnectInProcess opens a connection that talks to the embedded server
// directly, without any sockets.
func ConnectInProcess(ns *server.Server) (*nats.Conn, error) {
	return nats.Connect("", nats.InProcessServer(ns))
}

// CreateJetStream wraps a connection in a JetStream context.
func CreateJetStream(nc *nats.Conn) (jetstream.JetStream, error) {
	return jetstream.New(nc)
}

// Shutdown drains the connection and stops the server. Both steps are
// bounded so a wedged stream can never hang process exit.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	if nc != nil {
		drained := make(chan error, 1)
		go func() { drained <- nc.Drain() }()

		select {
		case err := <-drained:
			if err != nil {
				logger.Warn("nats drain failed, closing: %v", err)
				nc.Close()
			}
		case <-time.After(2 * time.Second):
			logger.Warn("nats drain timed out, closing")
			nc.Close()
		}
	}

	if ns != nil {
		ns.Shutdown()

		done := make(chan struct{})
		go func() {
			ns.WaitForShutdown()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			return errors.New("nats server shutdown timed out")
		}
	}

	logger.Debug("nats shutdown complete")
	return nil
}
