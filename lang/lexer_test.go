package lang

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizeOperators(t *testing.T) {
	toks, err := Tokenize("+ - * / % == < > ++ | ! <- =")
	require.NoError(t, err)
	want := []Kind{Plus, Minus, Star, Slash, Percent, EqEq, Lt, Gt, PlusPlus, Pipe, Bang, Arrow, Equals, EOF}
	require.Len(t, toks, len(want))
	for i, k := range want {
		require.Equal(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestTokenizeNumberWithDecimalPoint(t *testing.T) {
	toks, err := Tokenize("0.5")
	require.NoError(t, err)
	require.Equal(t, Number, toks[0].Kind)
	require.Equal(t, "0.5", toks[0].Text)
}

func TestTokenizeNoteAtomVsIdent(t *testing.T) {
	toks, err := Tokenize("Cn4 foo")
	require.NoError(t, err)
	require.Equal(t, NoteAtom, toks[0].Kind)
	require.Equal(t, "Cn4", toks[0].Text)
	require.Equal(t, Ident, toks[1].Kind)
	require.Equal(t, "foo", toks[1].Text)
}

func TestTokenizePositionTracking(t *testing.T) {
	toks, err := Tokenize("a\nb")
	require.NoError(t, err)
	require.Equal(t, 1, toks[0].Pos.Line)
	require.Equal(t, 2, toks[1].Pos.Line)
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	_, err := Tokenize("@")
	require.Error(t, err)
}

func TestIsKeyword(t *testing.T) {
	require.True(t, IsKeyword("while"))
	require.True(t, IsKeyword("initialize"))
	require.False(t, IsKeyword("steps"))
}
