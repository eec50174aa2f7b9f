package folio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/eringen/folio/blog"
)

// PostSource retrieves posts. *blog.Service and *PostCache implement it.
type PostSource interface {
	ListPosts(ctx context.Context, opts blog.ListOptions) (blog.PostList, error)
	GetPost(ctx context.Context, slug string) (blog.Post, error)
}

type listEntry struct {
	list    blog.PostList
	fetched time.Time
}

type postEntry struct {
	post    blog.Post
	fetched time.Time
}

// PostCache is an in-memory TTL cache in front of a PostSource. Concurrent
// misses for the same key share one upstream request. Errors are never cached.
//
// Shared loads run detached from the caller's cancellation, so one visitor
// going away does not fail the others waiting on the same key. Each caller
// still stops waiting when its own context ends.
type PostCache struct {
	src PostSource
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	gen   uint64
	lists map[blog.ListOptions]listEntry
	posts map[string]postEntry
	group singleflight.Group
}

// NewPostCache creates a PostCache backed by src.
func NewPostCache(src PostSource, ttl time.Duration) *PostCache {
	return &PostCache{
		src:   src,
		ttl:   ttl,
		now:   time.Now,
		lists: make(map[blog.ListOptions]listEntry),
		posts: make(map[string]postEntry),
	}
}

func (c *PostCache) fresh(fetched time.Time) bool {
	return c.now().Sub(fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load. Loads
// already in flight finish for their callers but are not stored, and new
// callers do not join them.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.lists = make(map[blog.ListOptions]listEntry)
	c.posts = make(map[string]postEntry)
	c.mu.Unlock()
}

// ListPosts returns a cached page of posts, loading it on a miss.
func (c *PostCache) ListPosts(ctx context.Context, opts blog.ListOptions) (blog.PostList, error) {
	c.mu.RLock()
	e, ok := c.lists[opts]
	gen := c.gen
	c.mu.RUnlock()
	if ok && c.fresh(e.fetched) {
		return e.list, nil
	}

	key := fmt.Sprintf("%d:list:%d:%d:%s", gen, opts.Skip, opts.Limit, opts.Tag)
	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) {
		list, err := c.src.ListPosts(ctx, opts)
		if err != nil {
			return list, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.lists[opts] = listEntry{list: list, fetched: c.now()}
		}
		c.mu.Unlock()
		return list, nil
	})
	list, _ := v.(blog.PostList)
	if err != nil && list.Posts == nil {
		list.Posts = []blog.PostSummary{}
	}
	return list, err
}

// GetPost returns a cached post, loading it on a miss.
func (c *PostCache) GetPost(ctx context.Context, slug string) (blog.Post, error) {
	c.mu.RLock()
	e, ok := c.posts[slug]
	gen := c.gen
	c.mu.RUnlock()
	if ok && c.fresh(e.fetched) {
		return e.post, nil
	}

	key := fmt.Sprintf("%d:post:%s", gen, slug)
	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) {
		post, err := c.src.GetPost(ctx, slug)
		if err != nil {
			return post, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.posts[slug] = postEntry{post: post, fetched: c.now()}
		}
		c.mu.Unlock()
		return post, nil
	})
	post, _ := v.(blog.Post)
	return post, err
}

// load runs fn once per key and waits for the shared result or for ctx to end.
func (c *PostCache) load(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", blog.ErrUnavailable, ctx.Err())
	}
}
