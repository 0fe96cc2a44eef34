// Package service implements the daemon side of the clipstash IPC protocol:
// it accepts connections on the local socket and applies requests to the
// history engine, the system clipboard, and the focus coordinator.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/google/uuid"

	"go.klb.dev/clipstash/internal/classifier"
	"go.klb.dev/clipstash/internal/clip"
	"go.klb.dev/clipstash/internal/focus"
	"go.klb.dev/clipstash/internal/history"
	"go.klb.dev/clipstash/internal/item"
	"go.klb.dev/clipstash/internal/message"
	"go.klb.dev/clipstash/internal/wire"
)

// SelfWriteMarker is the monitor hook that suppresses re-ingestion of
// engine-initiated clipboard writes.
type SelfWriteMarker interface {
	MarkSelfWrite()
}

// Focuser sequences focus restoration and paste injection.
// *focus.Coordinator implements it.
type Focuser interface {
	Capture() (focus.App, bool)
	PasteInto(app focus.App)
}

// Server handles IPC requests against the live engine.
type Server struct {
	engine  *history.Engine
	extract *classifier.Service
	board   clip.Clipboard
	marker  SelfWriteMarker
	coord   Focuser
}

// NewServer wires the request handler to its collaborators.
func NewServer(engine *history.Engine, extract *classifier.Service, board clip.Clipboard, marker SelfWriteMarker, coord Focuser) *Server {
	return &Server{
		engine:  engine,
		extract: extract,
		board:   board,
		marker:  marker,
		coord:   coord,
	}
}

// Serve accepts connections until ctx is cancelled or ln fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	wc := wire.New(conn)
	defer wc.Close()

	for {
		req, err := wc.ReadMsg()
		if err != nil {
			return // EOF or broken pipe: client went away
		}
		resp := s.handle(ctx, req)
		if err := wc.WriteMsg(resp); err != nil {
			slog.Warn("ipc write failed", "err", err)
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, req *message.Message) *message.Message {
	switch req.Type {
	case message.TypeHistory:
		items := s.engine.Filter(req.Query)
		records := make([]message.Record, len(items))
		for i, it := range items {
			records[i] = message.RecordOf(it)
		}
		return &message.Message{Type: message.TypeHistory, Records: records}

	case message.TypeRecall:
		return s.recall(req)

	case message.TypeRemove:
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return message.Errorf("bad id: %v", err)
		}
		s.engine.Remove(id)
		return message.OK()

	case message.TypeClear:
		s.engine.Clear()
		return message.OK()

	case message.TypeExtract:
		return s.extractField(ctx, req)

	case message.TypeStatus:
		return &message.Message{
			Type:    message.TypeStatus,
			Items:   s.engine.Len(),
			Backend: s.board.Name(),
		}

	default:
		return message.Errorf("unknown request type %q", req.Type)
	}
}

// recall applies a history item back to the system clipboard, promotes it,
// and optionally restores focus and injects a paste. The clipboard write is
// marked as self-inflicted so the monitor swallows the revision bump.
func (s *Server) recall(req *message.Message) *message.Message {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return message.Errorf("bad id: %v", err)
	}
	it, ok := s.engine.Get(id)
	if !ok {
		return message.Errorf("no such item %s", req.ID)
	}

	// Capture the target app before touching anything else: it is whatever
	// had focus when the user asked for the recall.
	prev, captured := s.coord.Capture()

	s.applyToClipboard(it)
	s.engine.Promote(id)
	it.Log("item recalled")

	if req.Paste {
		if captured {
			s.coord.PasteInto(prev)
		} else {
			slog.Debug("no foreground app captured, skipping paste")
		}
	}
	return message.OK()
}

func (s *Server) extractField(ctx context.Context, req *message.Message) *message.Message {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return message.Errorf("bad id: %v", err)
	}

	var (
		text   string
		result item.Item
	)
	switch req.Field {
	case message.FieldBarcode:
		result, err = s.extract.RecallBarcode(ctx, id)
	default:
		result, err = s.extract.RecallText(ctx, id)
	}
	switch {
	case errors.Is(err, classifier.ErrNoTextFound), errors.Is(err, classifier.ErrNoBarcodeFound):
		return message.Errorf("%v", err)
	case err != nil:
		return message.Errorf("extraction failed: %v", err)
	}

	text = result.Body()
	s.applyToClipboard(result)
	return &message.Message{Type: message.TypeExtract, Text: text}
}

// applyToClipboard writes an item's content to the system clipboard with
// self-write suppression armed.
func (s *Server) applyToClipboard(it item.Item) {
	s.marker.MarkSelfWrite()
	if it.Kind == item.KindImage {
		s.board.Write(clip.FmtImage, it.Image)
	} else {
		s.board.Write(clip.FmtText, []byte(it.Body()))
	}
}
