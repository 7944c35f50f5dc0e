package cache

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// The object cache holds large read-only objects that several solvers can
// share, such as evaluation tables loaded from disk.

type objectCache struct {
	sync.Mutex
	objects map[string]any
}

type LoadFunc func(key string) (any, error)

// GlobalObjectCache is our global object cache, of course.
var GlobalObjectCache *objectCache

var createOnce sync.Once

func (c *objectCache) get(key string, loadFunc LoadFunc) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("loading into cache")
	obj, err := loadFunc(key)
	if err != nil {
		return nil, err
	}
	c.objects[key] = obj
	return obj, nil
}

func CreateGlobalObjectCache() {
	createOnce.Do(func() {
		GlobalObjectCache = &objectCache{objects: make(map[string]any)}
	})
}

// Load returns the object cached under key, calling loadFunc the first time.
// Failed loads are not cached.
func Load(key string, loadFunc LoadFunc) (any, error) {
	CreateGlobalObjectCache()
	return GlobalObjectCache.get(key, loadFunc)
}
