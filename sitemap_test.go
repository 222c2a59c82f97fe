package sitemapper_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/fwojciec/sitemapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteMap_AddElement(t *testing.T) {
	t.Parallel()

	t.Run("drops elements with the same selector and page", func(t *testing.T) {
		t.Parallel()

		m := sitemapper.NewSiteMap("https://example.com", "example.com")

		assert.True(t, m.AddElement(sitemapper.Element{Selector: "#buy", PageURL: "https://example.com", Text: "Buy"}))
		assert.False(t, m.AddElement(sitemapper.Element{Selector: "#buy", PageURL: "https://example.com", Text: "Different text"}))

		require.Len(t, m.Elements(), 1)
		assert.Equal(t, "Buy", m.Elements()[0].Text)
	})

	t.Run("keeps the same selector on different pages", func(t *testing.T) {
		t.Parallel()

		m := sitemapper.NewSiteMap("https://example.com", "example.com")

		assert.True(t, m.AddElement(sitemapper.Element{Selector: "#search", PageURL: "https://example.com"}))
		assert.True(t, m.AddElement(sitemapper.Element{Selector: "#search", PageURL: "https://example.com/about"}))

		assert.Equal(t, 2, m.ElementsDiscovered())
	})

	t.Run("assigns sequential ids in insertion order", func(t *testing.T) {
		t.Parallel()

		m := sitemapper.NewSiteMap("https://example.com", "example.com")
		m.AddElement(sitemapper.Element{Selector: "a", PageURL: "p"})
		m.AddElement(sitemapper.Element{Selector: "a", PageURL: "p"})
		m.AddElement(sitemapper.Element{Selector: "b", PageURL: "p"})

		elements := m.Elements()
		require.Len(t, elements, 2)
		assert.Equal(t, "el_0001", elements[0].ID)
		assert.Equal(t, "el_0002", elements[1].ID)
	})

	t.Run("zero value site map is usable", func(t *testing.T) {
		t.Parallel()

		var m sitemapper.SiteMap

		assert.True(t, m.AddPage("https://example.com"))
		assert.True(t, m.AddElement(sitemapper.Element{Selector: "a", PageURL: "https://example.com"}))
	})
}

func TestSiteMap_Counters(t *testing.T) {
	t.Parallel()

	m := sitemapper.NewSiteMap("https://example.com", "example.com")
	mutations := []func(){
		func() { m.AddPage("https://example.com") },
		func() { m.AddPage("https://example.com") },
		func() { m.AddElement(sitemapper.Element{Selector: "x", PageURL: "https://example.com"}) },
		func() { m.AddPage("https://example.com/a") },
		func() { m.AddElement(sitemapper.Element{Selector: "x", PageURL: "https://example.com"}) },
		func() { m.AddElement(sitemapper.Element{Selector: "y", PageURL: "https://example.com/a"}) },
	}

	for _, mutate := range mutations {
		mutate()
		assert.Equal(t, len(m.Pages()), m.PagesCrawled())
		assert.Equal(t, len(m.Elements()), m.ElementsDiscovered())
	}
	assert.Equal(t, []string{"https://example.com", "https://example.com/a"}, m.Pages())
	assert.Equal(t, 2, m.ElementsDiscovered())
}

func TestSiteMap_Descriptors(t *testing.T) {
	t.Parallel()

	m := sitemapper.NewSiteMap("https://x.com", "x.com")
	m.AddElement(sitemapper.Element{Type: sitemapper.ElementButton, Text: "Add to Cart", Selector: "button.add-cart", PageURL: "https://x.com"})
	m.AddElement(sitemapper.Element{Type: sitemapper.ElementInput, Selector: "input[name='q']", PageURL: "https://x.com"})

	assert.Equal(t, []string{"button: Add to Cart (button.add-cart)"}, m.Descriptors())
}

func TestSiteMap_TypeCounts(t *testing.T) {
	t.Parallel()

	m := sitemapper.NewSiteMap("https://x.com", "x.com")
	m.AddElement(sitemapper.Element{Type: sitemapper.ElementLink, Selector: "a1", PageURL: "p"})
	m.AddElement(sitemapper.Element{Type: sitemapper.ElementLink, Selector: "a2", PageURL: "p"})
	m.AddElement(sitemapper.Element{Type: sitemapper.ElementButton, Selector: "b", PageURL: "p"})

	assert.Equal(t, []sitemapper.TypeCount{
		{Type: sitemapper.ElementLink, Count: 2},
		{Type: sitemapper.ElementButton, Count: 1},
	}, m.TypeCounts())
}

func TestSiteMap_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("serializes only the most recent log entries", func(t *testing.T) {
		t.Parallel()

		m := sitemapper.NewSiteMap("https://x.com", "x.com")
		for i := range 60 {
			m.Log(fmt.Sprintf("entry %d", i))
		}

		data, err := json.Marshal(m)
		require.NoError(t, err)

		var out struct {
			Log []string `json:"exploration_log"`
		}
		require.NoError(t, json.Unmarshal(data, &out))
		require.Len(t, out.Log, sitemapper.RecentLogSize)
		assert.Equal(t, "entry 10", out.Log[0])
		assert.Equal(t, "entry 59", out.Log[49])
		assert.Len(t, m.ExplorationLog(), 60)
	})

	t.Run("restores pages and elements with invariants", func(t *testing.T) {
		t.Parallel()

		m := sitemapper.NewSiteMap("https://x.com", "x.com")
		m.State = sitemapper.StateStopped
		m.AddPage("https://x.com")
		m.AddElement(sitemapper.Element{Type: sitemapper.ElementButton, Text: "Go", Selector: "#go", PageURL: "https://x.com"})

		data, err := json.Marshal(m)
		require.NoError(t, err)

		var restored sitemapper.SiteMap
		require.NoError(t, json.Unmarshal(data, &restored))

		assert.Equal(t, "https://x.com", restored.URL)
		assert.Equal(t, sitemapper.StateStopped, restored.State)
		assert.Equal(t, m.Pages(), restored.Pages())
		assert.Equal(t, m.Elements(), restored.Elements())
		assert.False(t, restored.AddElement(sitemapper.Element{Selector: "#go", PageURL: "https://x.com"}))
	})
}

func TestCrawlState_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, sitemapper.StateIdle.Terminal())
	assert.False(t, sitemapper.StateRunning.Terminal())
	assert.True(t, sitemapper.StateCompleted.Terminal())
	assert.True(t, sitemapper.StateStopped.Terminal())
	assert.True(t, sitemapper.StateFailed.Terminal())
}
