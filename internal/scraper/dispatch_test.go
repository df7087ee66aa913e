package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/gig-crawler/internal/browser/browsertest"
	"github.com/baxromumarov/gig-crawler/internal/project"
)

func TestNewCoversEveryPlatform(t *testing.T) {
	b := browsertest.New()
	for _, p := range project.Platforms() {
		c, err := New(p, b)
		require.NoError(t, err, p)
		assert.Equal(t, p, c.Platform())
	}
}

func TestNewReturnsIndependentCrawlers(t *testing.T) {
	b := browsertest.New()
	first, err := New(project.Lancers, b)
	require.NoError(t, err)
	second, err := New(project.Lancers, b)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Same(t, first.(*LancersCrawler).browser, second.(*LancersCrawler).browser)
}

func TestNewRejectsUnknownPlatform(t *testing.T) {
	_, err := New(project.Platform("upwork"), browsertest.New())
	assert.ErrorIs(t, err, project.ErrUnknownPlatform)
}
