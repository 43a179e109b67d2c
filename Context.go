/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package bwcore

// WorkerPool is an opaque handle to a caller-owned pool of goroutines or
// workers. Context only forwards the reference; it never starts, stops,
// or otherwise owns the pool.
type WorkerPool interface{}

// ctxValue is a small tagged union rather than an any, so a transform
// reading the wrong type out of a Context hits a typed zero value
// instead of a runtime type-assertion panic.
type ctxValue struct {
	i      int64
	s      string
	isStr  bool
}

// Context is a string-keyed bag of configuration values passed from a
// factory to the transforms it builds: block size hints, entropy-level
// hints, a worker pool reference. It is built once by the caller and
// mostly read by transforms, though RLT stores the block's detected
// "dataType" in it; concurrent mutation is not supported.
type Context struct {
	values map[string]ctxValue
	pool   WorkerPool
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{values: make(map[string]ctxValue)}
}

// Has reports whether key was set.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// PutInt stores an integer value under key.
func (c *Context) PutInt(key string, v int) {
	c.values[key] = ctxValue{i: int64(v)}
}

// PutLong stores a 64-bit integer value under key.
func (c *Context) PutLong(key string, v int64) {
	c.values[key] = ctxValue{i: v}
}

// PutString stores a string value under key.
func (c *Context) PutString(key string, v string) {
	c.values[key] = ctxValue{s: v, isStr: true}
}

// GetInt returns the int stored under key, or def if absent or stored
// as a string.
func (c *Context) GetInt(key string, def int) int {
	v, ok := c.values[key]

	if !ok || v.isStr {
		return def
	}

	return int(v.i)
}

// GetLong returns the int64 stored under key, or def if absent or
// stored as a string.
func (c *Context) GetLong(key string, def int64) int64 {
	v, ok := c.values[key]

	if !ok || v.isStr {
		return def
	}

	return v.i
}

// GetString returns the string stored under key, or def if absent or
// stored as an int.
func (c *Context) GetString(key string, def string) string {
	v, ok := c.values[key]

	if !ok || !v.isStr {
		return def
	}

	return v.s
}

// SetPool attaches a worker pool reference. The Context does not take
// ownership of it.
func (c *Context) SetPool(p WorkerPool) {
	c.pool = p
}

// Pool returns the attached worker pool reference, or nil if none was
// set.
func (c *Context) Pool() WorkerPool {
	return c.pool
}
