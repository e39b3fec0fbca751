package term

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// Rendered fragments, spelled out for readable expectations.
const (
	rEsc      = "\x1b["
	rClear    = rEsc + "2J" + rEsc + "H"
	rClearEOL = rEsc + "0K"
	rReset    = rEsc + "0m"
	rLeft     = rEsc + "D"
	rRight    = rEsc + "C"
	rBlue     = rEsc + "34m"
	rRed      = rEsc + "31m"

	rPrompt = rBlue + "$ " + rReset
)

// recorder captures everything the editor renders.
type recorder struct {
	out []byte
}

func (r *recorder) Write(p []byte) (int, error) {
	r.out = append(r.out, p...)
	return len(p), nil
}

func (r *recorder) WriteByte(b byte) error {
	r.out = append(r.out, b)
	return nil
}

func (r *recorder) take() string {
	out := r.out
	r.out = nil
	return string(out)
}

func testEditor() (*Editor, *recorder) {
	rec := &recorder{}
	ed := NewEditor(rec, "banner\r\n", "$ ", ColorBlue)
	ed.Start()
	rec.take()
	return ed, rec
}

func TestEditorStart(t *testing.T) {
	rec := &recorder{}
	ed := NewEditor(rec, "banner\r\n", "$ ", ColorRed)
	ed.Start()
	require.Equal(t, rClear+rRed+"banner\r\n"+rReset+rRed+"$ "+rReset, rec.take())
}

func TestEditorInsertEcho(t *testing.T) {
	ed, rec := testEditor()
	require.Empty(t, ed.Feed([]byte("hi")))
	require.Equal(t, "hi", rec.take())
	require.Equal(t, "hi", string(ed.Line()))
	require.Equal(t, 2, ed.Cursor())
}

func TestEditorInsertMidLineEchoOnly(t *testing.T) {
	ed, rec := testEditor()
	ed.Feed([]byte("ac" + rLeft))
	rec.take()
	ed.Feed([]byte("b"))
	require.Equal(t, "b", rec.take())
	require.Equal(t, "abc", string(ed.Line()))
	require.Equal(t, 2, ed.Cursor())
}

func TestEditorSpaceRedraw(t *testing.T) {
	ed, rec := testEditor()
	ed.Feed([]byte("ab" + rLeft))
	rec.take()
	ed.Feed([]byte(" "))
	require.Equal(t, rRight+rClearEOL+"\r"+rPrompt+"a b"+rLeft, rec.take())
	require.Equal(t, "a b", string(ed.Line()))
	require.Equal(t, 2, ed.Cursor())
}

func TestEditorBackspaceRedraw(t *testing.T) {
	ed, rec := testEditor()
	ed.Feed([]byte("abc"))
	rec.take()
	ed.Feed([]byte{codeBackspace})
	require.Equal(t, rLeft+rClearEOL+"\r"+rPrompt+"ab", rec.take())
	require.Equal(t, "ab", string(ed.Line()))
	require.Equal(t, 2, ed.Cursor())
}

func TestEditorBackspaceMidLine(t *testing.T) {
	ed, rec := testEditor()
	ed.Feed([]byte("abc" + rLeft))
	rec.take()
	ed.Feed([]byte{codeDelete})
	require.Equal(t, rLeft+rClearEOL+"\r"+rPrompt+"ac"+rLeft, rec.take())
	require.Equal(t, "ac", string(ed.Line()))
	require.Equal(t, 1, ed.Cursor())
}

func TestEditorBackspaceAtStart(t *testing.T) {
	ed, rec := testEditor()
	ed.Feed([]byte{codeBackspace})
	require.Empty(t, rec.take())
	require.Empty(t, ed.Line())
}

func TestEditorBackspaceRoundTrip(t *testing.T) {
	ed, _ := testEditor()
	ed.Feed([]byte("hello"))
	ed.Feed(bytes.Repeat([]byte{codeBackspace}, 5))
	require.Empty(t, ed.Line())
	require.Equal(t, 0, ed.Cursor())
}

func TestEditorCursorBounds(t *testing.T) {
	ed, rec := testEditor()
	ed.Feed([]byte(rLeft))
	require.Empty(t, rec.take())
	ed.Feed([]byte("a" + rRight))
	require.Equal(t, "a", rec.take())
	ed.Feed([]byte(rLeft))
	require.Equal(t, rLeft, rec.take())
	require.Equal(t, 0, ed.Cursor())
	ed.Feed([]byte(rRight))
	require.Equal(t, rRight, rec.take())
	require.Equal(t, 1, ed.Cursor())
}

func TestEditorCommit(t *testing.T) {
	ed, rec := testEditor()
	lines := ed.Feed([]byte("status\r"))
	require.Equal(t, [][]byte{[]byte("status")}, lines)
	require.Equal(t, "status\r\n"+rPrompt, rec.take())
	require.Empty(t, ed.Line())
	require.Equal(t, 0, ed.Cursor())
}

func TestEditorCommitEmptyOnCRLF(t *testing.T) {
	ed, _ := testEditor()
	lines := ed.Feed([]byte("a\r\n"))
	require.Equal(t, [][]byte{[]byte("a"), {}}, lines)
}

func TestEditorCommittedLineDetached(t *testing.T) {
	ed, _ := testEditor()
	lines := ed.Feed([]byte("one\r"))
	ed.Feed([]byte("two"))
	require.Equal(t, "one", string(lines[0]))
}

func TestEditorLineFull(t *testing.T) {
	ed, rec := testEditor()
	long := bytes.Repeat([]byte{'x'}, MaxLineLength)
	ed.Feed(long)
	rec.take()
	ed.Feed([]byte("y"))
	require.Empty(t, rec.take())
	ed.Feed([]byte(" "))
	require.Empty(t, rec.take())
	require.Len(t, ed.Line(), MaxLineLength)
	lines := ed.Feed([]byte{codeCarriageReturn})
	require.Equal(t, [][]byte{long}, lines)
}

func TestEditorPrint(t *testing.T) {
	ed, rec := testEditor()
	ed.Print([]byte("hello"), false)
	require.Equal(t, "hello"+rReset, rec.take())
	ed.Print([]byte("hello"), true)
	require.Equal(t, rBlue+"hello"+rReset, rec.take())
}

func TestEditorClearScreen(t *testing.T) {
	ed, rec := testEditor()
	ed.Feed([]byte("abc"))
	rec.take()
	ed.ClearScreen()
	require.Equal(t, rClear, rec.take())
	require.Empty(t, ed.Line())
	require.Equal(t, 0, ed.Cursor())
}

func TestEditorEscapeAcrossFeeds(t *testing.T) {
	ed, rec := testEditor()
	ed.Feed([]byte("ab"))
	rec.take()
	ed.Feed([]byte{codeEscape})
	require.Empty(t, rec.take())
	ed.Feed([]byte{codeLeftBracket})
	require.Empty(t, rec.take())
	ed.Feed([]byte{codeArrowLeft})
	require.Equal(t, rLeft, rec.take())
	require.Equal(t, 1, ed.Cursor())
}
