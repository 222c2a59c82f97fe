package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/fwojciec/sitemapper"
	main "github.com/fwojciec/sitemapper/cmd/sitemapper"
	"github.com/fwojciec/sitemapper/fs"
	"github.com/fwojciec/sitemapper/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginDiscoverer(got *[]string) *mock.FlowDiscoverer {
	return &mock.FlowDiscoverer{
		DiscoverFn: func(_ context.Context, elements, _ []string, _ bool) (*sitemapper.DiscoveryResult, error) {
			*got = elements
			semantic := 0.61
			return &sitemapper.DiscoveryResult{
				Flows: []*sitemapper.UserFlow{{
					ID: "flow_login_0", Name: "Login", PatternID: "login", Type: sitemapper.FlowHappyPath, Confidence: 0.81,
					Steps: []sitemapper.FlowStep{
						{Action: "fill", Description: "Fill on Password", Safe: true},
						{Action: "click", Description: "Click on Delete account", Safe: false},
					},
					Pages: []string{"https://shop.example.com/login"},
					Evidence: sitemapper.Evidence{
						ElementScore: 0.9, URLScore: 1, SemanticScore: &semantic, ContextBonus: 0.3,
						PatternSource: sitemapper.SourceCore,
					},
				}},
				PendingPatterns: []*sitemapper.Pattern{{ID: "wishlist"}},
				Stats:           sitemapper.DiscoveryStats{PatternsChecked: 11, PatternsMatched: 1, FlowsDiscovered: 1, AverageConfidence: 0.81, SemanticEnabled: true},
			}, nil
		},
	}
}

func TestDiscoverCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("scores a saved run", func(t *testing.T) {
		t.Parallel()

		var elements []string
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			SiteMaps: &mock.SiteMapService{
				FindSiteMapByIDFn: func(_ context.Context, id string) (*sitemapper.SiteMap, error) {
					require.Equal(t, "run-1", id)
					return shopSiteMap(), nil
				},
			},
			Discoverer: loginDiscoverer(&elements),
		}

		err := (&main.DiscoverCmd{Source: "run-1"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, shopSiteMap().Descriptors(), elements)
		output := stdout.String()
		assert.Contains(t, output, "semantic scoring on")
		assert.Contains(t, output, "flow_login_0  Login  [happy_path]  0.81")
		assert.Contains(t, output, "semantic 0.61")
		assert.Contains(t, output, "2. Click on Delete account  (unsafe)")
		assert.Contains(t, output, "page: https://shop.example.com/login")
		assert.Contains(t, output, "1 patterns awaiting review")
	})

	t.Run("scores a site map file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "shop.json")
		require.NoError(t, fs.WriteSiteMap(path, shopSiteMap()))

		var elements []string
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			SiteMaps: &mock.SiteMapService{
				FindSiteMapByIDFn: func(context.Context, string) (*sitemapper.SiteMap, error) {
					t.Fatal("file sources must not hit the database")
					return nil, nil
				},
			},
			Discoverer: loginDiscoverer(&elements),
		}

		err := (&main.DiscoverCmd{Source: path}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, shopSiteMap().Descriptors(), elements)
	})

	t.Run("prints JSON when requested", func(t *testing.T) {
		t.Parallel()

		var elements []string
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			SiteMaps: &mock.SiteMapService{
				FindSiteMapByIDFn: func(context.Context, string) (*sitemapper.SiteMap, error) {
					return shopSiteMap(), nil
				},
			},
			Discoverer: loginDiscoverer(&elements),
		}

		err := (&main.DiscoverCmd{Source: "run-1", JSON: true}).Run(deps)

		require.NoError(t, err)
		var decoded struct {
			Flows []struct {
				ID       string `json:"id"`
				FlowType string `json:"flow_type"`
			} `json:"flows"`
			Pending []struct {
				ID string `json:"id"`
			} `json:"new_patterns_pending"`
			Stats struct {
				PatternsChecked int `json:"patterns_checked"`
			} `json:"stats"`
		}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
		require.Len(t, decoded.Flows, 1)
		assert.Equal(t, "flow_login_0", decoded.Flows[0].ID)
		assert.Equal(t, "happy_path", decoded.Flows[0].FlowType)
		assert.Equal(t, "wishlist", decoded.Pending[0].ID)
		assert.Equal(t, 11, decoded.Stats.PatternsChecked)
	})

	t.Run("returns not found for an unknown run", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			SiteMaps: &mock.SiteMapService{
				FindSiteMapByIDFn: func(context.Context, string) (*sitemapper.SiteMap, error) {
					return nil, sitemapper.Errorf(sitemapper.ENOTFOUND, "run not found")
				},
			},
		}

		err := (&main.DiscoverCmd{Source: "missing"}).Run(deps)

		assert.Equal(t, sitemapper.ENOTFOUND, sitemapper.ErrorCode(err))
		assert.Contains(t, stderr.String(), "sitemapper runs")
	})
}
