package help

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextListsCommandsAndOperators(t *testing.T) {
	text := Text()
	require.Contains(t, text, "var IDENT")
	require.Contains(t, text, "++")
}

func TestCommandLooksUpKnownOperator(t *testing.T) {
	msg := Command([]string{"pitch"})
	require.Contains(t, msg.Text, "pitch")
}

func TestCommandRejectsUnknownOperator(t *testing.T) {
	msg := Command([]string{"nope"})
	require.Equal(t, "no such operator \"nope\"", msg.Text)
}

func TestCommandWithNoArgsReturnsFullText(t *testing.T) {
	msg := Command(nil)
	require.Contains(t, msg.Text, "MusicDSL")
}
