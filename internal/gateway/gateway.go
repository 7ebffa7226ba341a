// Package gateway wires the ingestion path together: frames pulled from
// the radio link flow through decode, sequence check and classification
// into the data store, with per-node liveness supervised by watchdogs.
//
// All per-node state mutation happens on the single processing goroutine,
// which consumes incoming frames and watchdog expiries from one select.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/wsn-testbed/clusterhead/internal/config"
	"github.com/wsn-testbed/clusterhead/internal/dca"
	"github.com/wsn-testbed/clusterhead/internal/frame"
	"github.com/wsn-testbed/clusterhead/internal/link"
	"github.com/wsn-testbed/clusterhead/internal/log"
	"github.com/wsn-testbed/clusterhead/internal/metrics"
	"github.com/wsn-testbed/clusterhead/internal/node"
	"github.com/wsn-testbed/clusterhead/internal/notify"
	"github.com/wsn-testbed/clusterhead/internal/session"
	"github.com/wsn-testbed/clusterhead/internal/store"
)

// Gateway owns both connection sessions, the node registry and the
// classifier. Constructed at startup, run until the context is cancelled
// or a session exhausts its retry budget.
type Gateway struct {
	linkSess   *link.Session
	storeSess  *store.Session
	decoder    frame.Decoder
	nodes      *node.Registry
	classifier *dca.Classifier
	notifier   notify.Notifier
	logger     log.Logger
}

// New builds the production gateway from the configuration: XBee serial
// transport, PostgreSQL store and the configured notifier.
func New(cfg *config.Config) (*Gateway, error) {
	transport := link.NewXBee(link.XBeeConfig{
		Device:      cfg.Link.Device,
		Baud:        cfg.Link.Baud,
		ReadTimeout: cfg.Link.ReadTimeout,
	})
	st := store.NewPostgres(cfg.Store.DSN(), cfg.Store.Table)

	var notifier notify.Notifier
	switch cfg.Notifier.Type {
	case "smtp":
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.Notifier.SMTP.Host,
			Port:     cfg.Notifier.SMTP.Port,
			Username: cfg.Notifier.SMTP.Username,
			Password: cfg.Notifier.SMTP.Password,
			From:     cfg.Notifier.SMTP.From,
			To:       cfg.Notifier.SMTP.To,
		})
	default:
		notifier = notify.NewLogNotifier()
	}

	return assemble(cfg, transport, st, notifier)
}

// assemble wires the gateway from its collaborators. Tests inject fakes
// here.
func assemble(cfg *config.Config, t link.Transport, st store.Store, notifier notify.Notifier) (*Gateway, error) {
	decoder, err := frame.New(cfg.Link.Profile, cfg.Link.ProfileOptions)
	if err != nil {
		return nil, fmt.Errorf("gateway: profile %q: %w", cfg.Link.Profile, err)
	}
	seqBits, err := frame.SeqBits(cfg.Link.Profile)
	if err != nil {
		return nil, err
	}

	return &Gateway{
		linkSess:  link.NewSession(t, sessionConfig(cfg.Link.Session)),
		storeSess: store.NewSession(st, sessionConfig(cfg.Store.Session)),
		decoder:   decoder,
		nodes: node.NewRegistry(node.Config{
			Timeout:    cfg.Watchdog.Timeout,
			SeqBits:    seqBits,
			WindowSize: cfg.Classifier.WindowSize,
		}),
		classifier: dca.New(dca.Config{
			WindowSize:  cfg.Classifier.WindowSize,
			CellCap:     cfg.Classifier.CellCap,
			Sensitivity: cfg.Classifier.Sensitivity,
		}),
		notifier: notifier,
		logger:   log.GetLogger().WithField("component", "gateway"),
	}, nil
}

func sessionConfig(c config.SessionConfig) session.Config {
	return session.Config{
		Initial:   session.RetryPolicy{Budget: c.Initial.Budget, Delay: c.Initial.Delay},
		Reconnect: session.RetryPolicy{Budget: c.Reconnect.Budget, Delay: c.Reconnect.Delay},
	}
}

// Run connects both sessions and processes frames until the context is
// cancelled (returns nil) or a session becomes unrecoverable (returns the
// budget error). Both sessions are closed on the way out, the store before
// the link, matching the original termination order.
func (g *Gateway) Run(ctx context.Context) error {
	if err := g.linkSess.Connect(ctx); err != nil {
		return err
	}
	if err := g.storeSess.Connect(ctx); err != nil {
		// The store never came up; close the already open link.
		g.linkSess.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer g.shutdown()

	frames := make(chan *frame.Frame)
	fatal := make(chan error, 1)
	go g.readLoop(ctx, frames, fatal)

	g.logger.Infof("ingestion running, profile %s", g.decoder.Name())
	for {
		select {
		case <-ctx.Done():
			g.logger.Info("termination requested")
			return nil
		case err := <-fatal:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case ev := <-g.nodes.Events():
			g.handleExpiry(ctx, ev)
		case f := <-frames:
			if err := g.process(ctx, f); err != nil {
				return err
			}
		}
	}
}

// readLoop pulls frames from the link session onto the processing channel.
// The serial read timeout paces the poll; session reconnects happen inside
// Read. Only unrecoverable errors are forwarded.
func (g *Gateway) readLoop(ctx context.Context, frames chan<- *frame.Frame, fatal chan<- error) {
	for {
		f, err := g.linkSess.Read(ctx)
		if err != nil {
			fatal <- err
			return
		}
		if f == nil {
			continue
		}
		select {
		case frames <- f:
		case <-ctx.Done():
			return
		}
	}
}

// process runs one frame through decode, sequence check, classification
// and persistence, then re-arms the node's watchdog. Per-frame errors are
// local; only an unrecoverable store session aborts the loop.
func (g *Gateway) process(ctx context.Context, f *frame.Frame) error {
	metrics.FramesReceivedTotal.Inc()

	rec, err := g.decoder.Decode(f)
	if err != nil {
		metrics.FramesMalformedTotal.Inc()
		g.logger.WithError(err).WithField("snid", f.SNID()).Warn("discarding malformed frame")
		return nil
	}
	g.logger.WithField("snid", rec.SNID).Debugf("got a message, seq=%d", rec.Seq)

	note := ""
	if res := g.nodes.CheckSeq(rec.SNID, rec.Seq); !res.Ok() {
		metrics.SequenceGapsTotal.Inc()
		note = fmt.Sprintf("sequence gap: expected %d, got %d", res.Expected, res.Got)
		g.logger.WithField("snid", rec.SNID).Warn(note)
	}

	var label *int
	if rec.Tuple != nil {
		danger := dca.DangerFromIndicators(rec.Indicators)
		if rec.Danger != nil {
			danger = *rec.Danger
		}
		verdict := g.classifier.Classify(rec.SNID, g.nodes.Windows(rec.SNID), rec.Signals(), danger, rec.Safe)
		label = &verdict.Label
		metrics.FaultLabelsTotal.WithLabelValues(strconv.Itoa(verdict.Label)).Inc()
		metrics.CellPopulation.Set(float64(g.classifier.Population()))
	}

	err = g.storeSess.Insert(ctx, &store.Entry{Record: rec, Label: label, Note: note})
	switch {
	case err == nil:
		metrics.RecordsPersistedTotal.Inc()
	case errors.Is(err, store.ErrRecordDropped):
		metrics.RecordsDroppedTotal.Inc()
	default:
		return err
	}

	// The node proved alive even when its record was dropped.
	g.nodes.Reset(rec.SNID, f.ReceivedAt)
	metrics.NodesTracked.Set(float64(g.nodes.Len()))
	return nil
}

// handleExpiry validates one watchdog event, purges the node's entire
// state and notifies the operator. Stale events, obsoleted by a message
// that arrived after the timer fired, are dropped.
func (g *Gateway) handleExpiry(ctx context.Context, ev node.Event) {
	if !g.nodes.Expire(ev) {
		return
	}
	g.classifier.PurgeNode(ev.SNID)
	metrics.WatchdogExpiriesTotal.Inc()
	metrics.NodesTracked.Set(float64(g.nodes.Len()))
	metrics.CellPopulation.Set(float64(g.classifier.Population()))
	g.logger.WithField("snid", ev.SNID).Warnf("watchdog expired after %s, node state purged", ev.Idle)

	if err := g.notifier.Notify(ctx, notify.NewEvent(ev.SNID, ev.ArmedAt, ev.Idle)); err != nil {
		g.logger.WithError(err).WithField("snid", ev.SNID).Error("liveness notification failed")
	}
}

// shutdown cancels all armed watchdogs and closes both sessions, each
// tolerating "already closed".
func (g *Gateway) shutdown() {
	g.nodes.Stop()
	if err := g.storeSess.Close(); err != nil {
		g.logger.WithError(err).Warn("closing store session")
	}
	if err := g.linkSess.Close(); err != nil {
		g.logger.WithError(err).Warn("closing link session")
	}
	g.logger.Info("gateway stopped")
}
