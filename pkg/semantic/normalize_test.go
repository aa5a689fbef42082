package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"lastName", []string{"last", "name"}},
		{"LAST_NAME", []string{"last", "name"}},
		{"last-name", []string{"last", "name"}},
		{"Last Name", []string{"last", "name"}},
		{"XMLParser", []string{"xml", "parser"}},
		{"OrderID", []string{"order", "id"}},
		{"e-mail addr", []string{"e", "mail", "addr"}},
		{"address2", []string{"address2"}},
		{"ＬａｓｔＮａｍｅ", []string{"last", "name"}},
		{"__", []string{}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokens(tt.input))
		})
	}
}

func TestKey(t *testing.T) {
	for _, in := range []string{"lastname", "last_name", "lastName", "Last Name", "LAST-NAME"} {
		assert.Equal(t, "lastname", Key(in), in)
	}
	assert.Equal(t, "", Key(" - "))
}

func TestSingular(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"users", "user"},
		{"categories", "category"},
		{"address", "address"},
		{"status", "statu"},
		{"s", "s"},
		{"kettle", "kettle"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, singular(tt.input))
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"same", "same", 0},
		{"kitten", "sitting", 3},
		{"surname", "username", 2},
		{"naïve", "naive", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("name", "name"), 1e-9)
	assert.InDelta(t, 0.875, Similarity("lastname", "lastnme"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("surname", "username"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
}
