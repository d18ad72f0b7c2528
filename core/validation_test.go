package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validArticle() *Article {
	body := "OpenAI releases GPT-5 with notable benchmark improvements."
	return &Article{
		Id:          IDFromURL("https://techcrunch.com/gpt-5"),
		SourceKey:   "techcrunch",
		URL:         "https://techcrunch.com/gpt-5",
		Title:       "OpenAI releases GPT-5",
		Body:        body,
		Published:   time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
		FetchedAt:   time.Now().UTC(),
		Fingerprint: NewFingerprint(body),
	}
}

func TestValidateArticle_Valid(t *testing.T) {
	require.NoError(t, ValidateArticle(validArticle()))
}

func TestValidateArticle_NoPublishedDate(t *testing.T) {
	article := validArticle()
	article.Published = time.Time{}

	assert.NoError(t, ValidateArticle(article), "unknown publication date is allowed")
}

func TestValidateArticle_Invalid(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(*Article)
		expected error
	}{
		{"nil source key", func(a *Article) { a.SourceKey = "" }, ErrEmptySourceKey},
		{"empty body", func(a *Article) { a.Body = "" }, ErrEmptyBody},
		{"relative url", func(a *Article) { a.URL = "/gpt-5" }, ErrInvalidURL},
		{"no scheme", func(a *Article) { a.URL = "techcrunch.com/gpt-5" }, ErrInvalidURL},
		{"ftp scheme", func(a *Article) { a.URL = "ftp://techcrunch.com/gpt-5" }, ErrInvalidURL},
		{"body too long", func(a *Article) { a.Body = strings.Repeat("a", MaxBodyLength+1) }, ErrBodyTooLong},
		{"missing fingerprint", func(a *Article) { a.Fingerprint = Fingerprint{} }, ErrMissingFingerprint},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			article := validArticle()
			tc.mutate(article)

			err := ValidateArticle(article)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArticle)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestValidateArticle_Nil(t *testing.T) {
	assert.ErrorIs(t, ValidateArticle(nil), ErrInvalidArticle)
}

func TestIsAbsoluteURL(t *testing.T) {
	assert.True(t, IsAbsoluteURL("https://example.com/a"))
	assert.True(t, IsAbsoluteURL("http://example.com"))
	assert.False(t, IsAbsoluteURL("example.com/a"))
	assert.False(t, IsAbsoluteURL(""))
	assert.False(t, IsAbsoluteURL("://bad"))
}
