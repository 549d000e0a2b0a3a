// Package cache keeps compiled shader modules keyed by the content hash of
// their source, so every device compiling the same WGSL pays once.
//
//	c := cache.New(64)
//	spirv, err := c.GetOrCompile(cache.KeyOf(src), func() ([]byte, error) {
//	    return naga.Compile(string(src))
//	})
//
// The cache has a soft limit: when it is exceeded the least recently used
// quarter of the entries is evicted. Cache is safe for concurrent use and
// must not be copied after creation.
package cache
