package main

import (
	"errors"
	"fmt"

	"go.klb.dev/clipstash/internal/ipc"
	"go.klb.dev/clipstash/internal/message"
	"go.klb.dev/clipstash/internal/wire"
)

// request sends one message to the running daemon and returns its response.
func request(msg *message.Message) (*message.Message, error) {
	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf("no clipstash daemon on %s (start one with \"clipstash daemon\")", ipc.SocketPath())
	}
	wc := wire.New(conn)
	defer wc.Close()

	if err := wc.WriteMsg(msg); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.Type == message.TypeError {
		return nil, errors.New(resp.Error)
	}
	return resp, nil
}

// previewOf flattens a record's display text to a single bounded line.
func previewOf(rec message.Record, width int) string {
	s := rec.Preview
	if rec.SizeBytes > 0 {
		s = fmt.Sprintf("[image, %d bytes]", rec.SizeBytes)
	}
	out := make([]rune, 0, width)
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' {
			r = ' '
		}
		out = append(out, r)
		if len(out) == width {
			out = append(out[:width-1], '…')
			break
		}
	}
	return string(out)
}
