// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultTTL matches spec.md §5's process-wide cache eviction window.
	DefaultTTL             = 1 * time.Hour
	defaultCleanupInterval = 10 * time.Minute
)

// Cache is a process-wide, TTL-evicted response cache.
type Cache struct {
	inner *gocache.Cache
}

// New returns a Cache that evicts entries ttl after they were last set.
// ttl <= 0 uses DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{inner: gocache.New(ttl, defaultCleanupInterval)}
}

// Key derives a cache key from a repo id, its current version, and the
// request payload: any field of req that changes, or a repo version
// bump from re-indexing, changes the key and so misses the cache
// rather than serving a stale response.
func Key(repoID, version string, req any) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("cache: marshal request for key: %w", err)
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|", repoID, version)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	return c.inner.Get(key)
}

// Set stores value under key with the cache's default TTL.
func (c *Cache) Set(key string, value any) {
	c.inner.SetDefault(key, value)
}

// Delete evicts key immediately, used when a repo's version bumps so
// its stale entries don't linger until natural TTL expiry.
func (c *Cache) Delete(key string) {
	c.inner.Delete(key)
}

// ItemCount reports the number of entries currently held (including any
// not yet swept past expiry) — exposed for status/observability.
func (c *Cache) ItemCount() int {
	return c.inner.ItemCount()
}
