package attack

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DefaultBundleBase is where the per-domain STIX bundles are published.
const DefaultBundleBase = "https://raw.githubusercontent.com/mitre/cti/master"

// Client fetches domain-scoped STIX bundles and hands over typed knowledge
// objects with revoked and deprecated entries already removed. Downloads are
// cached on disk so repeated runs stay offline.
type Client struct {
	baseURL  string
	cacheDir string
	httpc    *http.Client
	log      *zap.SugaredLogger
}

// NewClient creates a client caching bundles under cacheDir. A nil logger
// disables diagnostics.
func NewClient(cacheDir string, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL:  DefaultBundleBase,
		cacheDir: cacheDir,
		httpc:    http.DefaultClient,
		log:      logger,
	}
}

// Fetch returns the typed object collection for a domain, downloading the
// bundle on a cache miss.
func (c *Client) Fetch(domain string) ([]any, error) {
	if _, ok := domainPlatforms[domain]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, domain)
	}

	data, err := c.bundleData(domain)
	if err != nil {
		return nil, err
	}
	return c.decode(data)
}

// LoadBundle reads a STIX bundle from a local file instead of the network.
func (c *Client) LoadBundle(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	return c.decode(data)
}

func (c *Client) bundleData(domain string) ([]byte, error) {
	cachePath := filepath.Join(c.cacheDir, domain+".json")
	if cached, err := os.ReadFile(cachePath); err == nil {
		c.log.Debugf("using cached bundle %s", cachePath)
		return cached, nil
	}

	url := fmt.Sprintf("%s/%s/%s.json", c.baseURL, domain, domain)
	c.log.Infof("downloading ATT&CK bundle from %s", url)

	resp, err := c.httpc.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download bundle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download bundle: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download bundle: %w", err)
	}

	if err := os.MkdirAll(c.cacheDir, 0o755); err == nil {
		if err := os.WriteFile(cachePath, data, 0o644); err != nil {
			c.log.Warnf("could not cache bundle: %v", err)
		}
	}
	return data, nil
}

// decode parses a bundle and returns its supported objects, dropping revoked
// and deprecated entries. A malformed object aborts decoding.
func (c *Client) decode(data []byte) ([]any, error) {
	bundle, err := ParseBundle(data)
	if err != nil {
		return nil, err
	}

	var objects []any
	stats := make(map[string]int)
	for i, raw := range bundle.Objects {
		obj, err := ParseObject(raw)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		if obj == nil {
			continue
		}
		if revokedOrDeprecated(obj) {
			continue
		}
		switch obj.(type) {
		case AttackPattern:
			stats["techniques"]++
		case Tactic:
			stats["tactics"]++
		case DataSource:
			stats["data sources"]++
		case DataComponent:
			stats["data components"]++
		case Relationship:
			stats["relationships"]++
		}
		objects = append(objects, obj)
	}

	for kind, count := range stats {
		c.log.Debugf("loaded %d %s", count, kind)
	}
	c.log.Infof("loaded %d knowledge objects from bundle %s", len(objects), bundle.ID)
	return objects, nil
}

// ParseBundle unmarshals the STIX envelope without touching its objects.
func ParseBundle(data []byte) (*Bundle, error) {
	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	if bundle.Type != "bundle" {
		return nil, fmt.Errorf("parse bundle: expected STIX bundle, got type %q", bundle.Type)
	}
	return &bundle, nil
}

func revokedOrDeprecated(obj any) bool {
	switch o := obj.(type) {
	case AttackPattern:
		return o.Revoked || o.Deprecated
	case Tactic:
		return o.Deprecated
	case DataSource:
		return o.Revoked || o.Deprecated
	case DataComponent:
		return o.Revoked || o.Deprecated
	default:
		return false
	}
}
