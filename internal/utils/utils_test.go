package utils

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMaskedWord(t *testing.T) {
	assert.Equal(t, "", GetMaskedWord(""))
	assert.Equal(t, "_ _ _ _ _", GetMaskedWord("pizza"))
	assert.Equal(t, "_ _ _   _ _ _ _ _", GetMaskedWord("ice cream"))
	assert.Equal(t, "_ _ _", GetMaskedWord("\u00e7a\u00e9"))
}

func TestMatchesWord(t *testing.T) {
	tests := []struct {
		guess string
		word  string
		want  bool
	}{
		{"pizza", "pizza", true},
		{"  Pizza  ", "pizza", true},
		{"PIZZA", "Pizza", true},
		{"pizzas", "pizza", false},
		{"piz za", "pizza", false},
		{"ice cream", "Ice Cream", true},
		{"Cafe\u0301", "Caf\u00e9", true},
		{"", "", false},
		{"anything", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchesWord(tt.guess, tt.word), "guess %q word %q", tt.guess, tt.word)
	}
}

func TestReadWords(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"apple",
		"Apple",
		"banana,12",
		"  ice cream  ",
		"",
		`"pirate ship",3`,
	}, "\n")

	list, err := ReadWords(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana", "ice cream", "pirate ship"}, list.Words())
}

func TestReadWordsEmpty(t *testing.T) {
	_, err := ReadWords(strings.NewReader("# only a comment\n\n"))
	assert.ErrorIs(t, err, ErrNoWords)
}

func TestReadWordFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("cat\ndog\n"), 0o600))

	list, err := ReadWordFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Len())

	_, err = ReadWordFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRandomWords(t *testing.T) {
	list := NewWordList([]string{"a", "b", "c", "d", "e"})

	words, err := list.RandomWords(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, words, 3)
	seen := map[string]bool{}
	for _, w := range words {
		assert.Contains(t, list.Words(), w)
		assert.False(t, seen[w], "duplicate %q", w)
		seen[w] = true
	}

	words, err = list.RandomWords(context.Background(), 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, list.Words(), words)

	_, err = NewWordList(nil).RandomWords(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoWords)
}
