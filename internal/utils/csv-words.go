package utils

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrNoWords = errors.New("word list is empty")

// WordList is a static, in-memory word source. It is safe for concurrent use.
type WordList struct {
	words []string
}

func NewWordList(words []string) *WordList {
	seen := make(map[string]bool, len(words))
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || seen[strings.ToLower(w)] {
			continue
		}
		seen[strings.ToLower(w)] = true
		cleaned = append(cleaned, w)
	}
	return &WordList{words: cleaned}
}

// ReadWordFile loads one word per line. Lines may also be "word,count" CSV
// records, in which case only the first column is used.
func ReadWordFile(filePath string) (*WordList, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open word file %s: %w", filePath, err)
	}
	defer f.Close()

	list, err := ReadWords(f)
	if err != nil {
		return nil, fmt.Errorf("parse word file %s: %w", filePath, err)
	}
	log.Info().Str("file", filePath).Int("words", list.Len()).Msg("[ReadWordFile] word list loaded")
	return list, nil
}

func ReadWords(r io.Reader) (*WordList, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	csvReader.Comment = '#'

	var words []string
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 {
			continue
		}
		words = append(words, record[0])
	}

	list := NewWordList(words)
	if list.Len() == 0 {
		return nil, ErrNoWords
	}
	return list, nil
}

// RandomWords returns up to n distinct words in random order.
func (w *WordList) RandomWords(_ context.Context, n int) ([]string, error) {
	if len(w.words) == 0 {
		return nil, ErrNoWords
	}
	n = min(n, len(w.words))

	picked := make([]string, 0, n)
	for _, idx := range rand.Perm(len(w.words))[:n] {
		picked = append(picked, w.words[idx])
	}
	return picked, nil
}

func (w *WordList) Words() []string {
	return append([]string(nil), w.words...)
}

func (w *WordList) Len() int {
	return len(w.words)
}
