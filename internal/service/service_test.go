package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipstash/internal/classifier"
	"go.klb.dev/clipstash/internal/clip"
	"go.klb.dev/clipstash/internal/focus"
	"go.klb.dev/clipstash/internal/history"
	"go.klb.dev/clipstash/internal/item"
	"go.klb.dev/clipstash/internal/message"
)

type nopRepo struct{}

func (nopRepo) Load() []item.Item     { return nil }
func (nopRepo) Save([]item.Item)      {}
func (nopRepo) SaveAsync([]item.Item) {}
func (nopRepo) ClearAll()             {}

type fakeMarker struct{ marks int }

func (f *fakeMarker) MarkSelfWrite() { f.marks++ }

type fakeFocuser struct {
	app      focus.App
	captured bool
	pasted   []focus.App

	// clipboardAtCapture records what the clipboard held when Capture ran,
	// to pin the capture-before-write ordering.
	clipboardAtCapture string
	board              *clip.Memory
}

func (f *fakeFocuser) Capture() (focus.App, bool) {
	if f.board != nil {
		f.clipboardAtCapture = string(f.board.Read(clip.FmtText))
	}
	return f.app, f.captured
}

func (f *fakeFocuser) PasteInto(app focus.App) { f.pasted = append(f.pasted, app) }

type fakeOCR struct{ text string }

func (f *fakeOCR) ExtractText(context.Context, []byte) (string, error) {
	if f.text == "" {
		return "", classifier.ErrNoTextFound
	}
	return f.text, nil
}

func (f *fakeOCR) ExtractBarcode(context.Context, []byte) (string, error) {
	return "", classifier.ErrNoBarcodeFound
}

type fixture struct {
	server  *Server
	engine  *history.Engine
	board   *clip.Memory
	marker  *fakeMarker
	focuser *fakeFocuser
}

func newFixture(t *testing.T, ocr *fakeOCR) *fixture {
	t.Helper()
	engine := history.New(nopRepo{}, history.Options{})
	board := clip.NewMemory()
	marker := &fakeMarker{}
	focuser := &fakeFocuser{board: board}
	extract := classifier.NewService(engine, ocr)
	return &fixture{
		server:  NewServer(engine, extract, board, marker, focuser),
		engine:  engine,
		board:   board,
		marker:  marker,
		focuser: focuser,
	}
}

func (f *fixture) handle(req *message.Message) *message.Message {
	return f.server.handle(context.Background(), req)
}

func TestHistoryFilters(t *testing.T) {
	f := newFixture(t, &fakeOCR{})
	f.engine.Insert(item.NewText("alpha"))
	f.engine.Insert(item.NewText("beta"))

	resp := f.handle(&message.Message{Type: message.TypeHistory})
	require.Equal(t, message.TypeHistory, resp.Type)
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "beta", resp.Records[0].Preview)

	resp = f.handle(&message.Message{Type: message.TypeHistory, Query: "ALPHA"})
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "alpha", resp.Records[0].Preview)
}

func TestRecallWritesClipboardAndPromotes(t *testing.T) {
	f := newFixture(t, &fakeOCR{})
	f.engine.Insert(item.NewText("old"))
	f.engine.Insert(item.NewText("new"))
	target := f.engine.Items()[1] // old

	resp := f.handle(&message.Message{Type: message.TypeRecall, ID: target.ID.String()})

	require.Equal(t, message.TypeOK, resp.Type)
	assert.Equal(t, "old", string(f.board.Read(clip.FmtText)))
	assert.Equal(t, target.ID, f.engine.Items()[0].ID, "recalled item moves to the front")
	assert.Equal(t, 1, f.marker.marks, "the clipboard write is marked self-inflicted")
	assert.Empty(t, f.focuser.pasted, "no paste unless requested")
}

func TestRecallWithPaste(t *testing.T) {
	f := newFixture(t, &fakeOCR{})
	f.focuser.app = focus.App{PID: 5, Name: "editor"}
	f.focuser.captured = true
	f.engine.Insert(item.NewText("x"))
	target := f.engine.Items()[0]

	resp := f.handle(&message.Message{Type: message.TypeRecall, ID: target.ID.String(), Paste: true})

	require.Equal(t, message.TypeOK, resp.Type)
	require.Len(t, f.focuser.pasted, 1)
	assert.Equal(t, int32(5), f.focuser.pasted[0].PID)
	assert.Empty(t, f.focuser.clipboardAtCapture, "focus is captured before the clipboard changes")
}

func TestRecallSkipsPasteWithoutForegroundApp(t *testing.T) {
	f := newFixture(t, &fakeOCR{})
	f.engine.Insert(item.NewText("x"))
	target := f.engine.Items()[0]

	resp := f.handle(&message.Message{Type: message.TypeRecall, ID: target.ID.String(), Paste: true})

	require.Equal(t, message.TypeOK, resp.Type)
	assert.Empty(t, f.focuser.pasted)
}

func TestRecallImage(t *testing.T) {
	f := newFixture(t, &fakeOCR{})
	img := item.NewImage([]byte{1, 2, 3})
	f.engine.Insert(img)

	resp := f.handle(&message.Message{Type: message.TypeRecall, ID: img.ID.String()})

	require.Equal(t, message.TypeOK, resp.Type)
	assert.Equal(t, []byte{1, 2, 3}, f.board.Read(clip.FmtImage))
}

func TestRecallUnknownID(t *testing.T) {
	f := newFixture(t, &fakeOCR{})

	resp := f.handle(&message.Message{Type: message.TypeRecall, ID: "7d3adcde-0f3b-4a4f-9a1a-000000000000"})
	assert.Equal(t, message.TypeError, resp.Type)

	resp = f.handle(&message.Message{Type: message.TypeRecall, ID: "not-a-uuid"})
	assert.Equal(t, message.TypeError, resp.Type)
}

func TestRemove(t *testing.T) {
	f := newFixture(t, &fakeOCR{})
	f.engine.Insert(item.NewText("x"))
	target := f.engine.Items()[0]

	resp := f.handle(&message.Message{Type: message.TypeRemove, ID: target.ID.String()})

	require.Equal(t, message.TypeOK, resp.Type)
	assert.Zero(t, f.engine.Len())
}

func TestClear(t *testing.T) {
	f := newFixture(t, &fakeOCR{})
	f.engine.Insert(item.NewText("x"))

	resp := f.handle(&message.Message{Type: message.TypeClear})

	require.Equal(t, message.TypeOK, resp.Type)
	assert.Zero(t, f.engine.Len())
}

func TestExtractText(t *testing.T) {
	f := newFixture(t, &fakeOCR{text: "scanned words"})
	img := item.NewImage([]byte{1, 2, 3})
	f.engine.Insert(img)

	resp := f.handle(&message.Message{Type: message.TypeExtract, ID: img.ID.String()})

	require.Equal(t, message.TypeExtract, resp.Type)
	assert.Equal(t, "scanned words", resp.Text)
	assert.Equal(t, "scanned words", string(f.board.Read(clip.FmtText)))
	assert.Equal(t, 1, f.marker.marks)
	assert.Equal(t, 2, f.engine.Len(), "the extraction result joins the history")
}

func TestExtractTextNotFound(t *testing.T) {
	f := newFixture(t, &fakeOCR{})
	img := item.NewImage([]byte{1, 2, 3})
	f.engine.Insert(img)

	resp := f.handle(&message.Message{Type: message.TypeExtract, ID: img.ID.String()})

	assert.Equal(t, message.TypeError, resp.Type)
	assert.Equal(t, 1, f.engine.Len(), "nothing is inserted on a miss")
}

func TestStatus(t *testing.T) {
	f := newFixture(t, &fakeOCR{})
	f.engine.Insert(item.NewText("x"))

	resp := f.handle(&message.Message{Type: message.TypeStatus})

	assert.Equal(t, message.TypeStatus, resp.Type)
	assert.Equal(t, 1, resp.Items)
	assert.Equal(t, "in-memory", resp.Backend)
}

func TestUnknownType(t *testing.T) {
	f := newFixture(t, &fakeOCR{})
	resp := f.handle(&message.Message{Type: "BOGUS"})
	assert.Equal(t, message.TypeError, resp.Type)
}
