/*
Copyright © 2020 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package ucumutil

import (
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/spatialmodel/ucum/measure"
	"github.com/spatialmodel/ucum/symbol"
)

// Cache parses unit expressions, remembering the most recently used
// results. It is safe for concurrent use.
type Cache struct {
	formats Formats

	mu    sync.Mutex
	units *lru.Cache
}

type cacheKey struct {
	variant symbol.Variant
	expr    string
}

// NewCache returns a cache of at most size parsed expressions. A size
// of zero means no limit.
func NewCache(f Formats, size int) *Cache {
	return &Cache{formats: f, units: lru.New(size)}
}

// Formats returns the formats the cache parses with.
func (c *Cache) Formats() Formats { return c.formats }

// Parse parses expr in variant v. Failed parses are not cached.
func (c *Cache) Parse(v symbol.Variant, expr string) (*measure.Unit, error) {
	key := cacheKey{variant: v, expr: expr}
	c.mu.Lock()
	u, ok := c.units.Get(key)
	c.mu.Unlock()
	if ok {
		return u.(*measure.Unit), nil
	}
	parsed, err := c.formats[v].Parse(expr)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.units.Add(key, parsed)
	c.mu.Unlock()
	return parsed, nil
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.units.Len()
}
