package table

import (
	"context"
	"fmt"
	"html/template"

	"bbcstats/internal/cache"
	"bbcstats/internal/core"
	applog "bbcstats/internal/log"
)

const initialBodyKey = "initial"

// View is everything a page or partial needs after a header activation.
type View struct {
	State   core.HeaderState
	Key     string
	Applied core.Direction
	Rows    int
	Cached  bool
	Head    template.HTML
	HeadOOB template.HTML
	Body    template.HTML
}

// Controller sorts the process-wide dataset on header activations. It keeps
// no per-client state; the header state arrives with each request.
type Controller struct {
	ds       core.Dataset
	renderer *Renderer
	bodies   cache.Cache[template.HTML]
}

// NewController binds the dataset, the renderer and a cache for rendered
// bodies. A nil cache disables caching.
func NewController(ds core.Dataset, renderer *Renderer, bodies cache.Cache[template.HTML]) *Controller {
	return &Controller{ds: ds, renderer: renderer, bodies: bodies}
}

// Dataset returns the dataset in load order.
func (c *Controller) Dataset() core.Dataset {
	return c.ds
}

// Columns returns the table layout the header state is encoded against.
func (c *Controller) Columns() core.Columns {
	return c.renderer.Columns()
}

// Initial renders the table as loaded: initial header, rows in load order.
func (c *Controller) Initial(ctx context.Context) (View, error) {
	state := core.NewHeaderState(c.renderer.Columns())
	body, hit, err := c.body(ctx, initialBodyKey, func() core.Dataset { return c.ds })
	if err != nil {
		return View{}, err
	}
	return c.view(state, "", "", body, hit)
}

// Activate applies a click on key's header cell to state: it sorts by the
// column's pending direction, then renders the body and the next header.
// Unknown keys return core.ErrUnknownColumn.
func (c *Controller) Activate(ctx context.Context, state core.HeaderState, key string) (View, error) {
	applied, next, err := state.Activate(key)
	if err != nil {
		return View{}, err
	}

	cacheKey := key + ":" + applied.String()
	body, hit, err := c.body(ctx, cacheKey, func() core.Dataset { return core.Sort(c.ds, key, applied) })
	if err != nil {
		return View{}, err
	}
	return c.view(next, key, applied, body, hit)
}

func (c *Controller) body(ctx context.Context, cacheKey string, sorted func() core.Dataset) (template.HTML, bool, error) {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentTable)
	if c.bodies != nil {
		if body, ok := c.bodies.Get(cacheKey); ok {
			logger.DebugContext(ctx, "Table body cache hit", "cache_key", cacheKey)
			return body, true, nil
		}
	}
	body, err := c.renderer.Body(sorted())
	if err != nil {
		return "", false, fmt.Errorf("render body %s: %w", cacheKey, err)
	}
	if c.bodies != nil {
		c.bodies.Set(cacheKey, body)
	}
	return body, false, nil
}

func (c *Controller) view(state core.HeaderState, key string, applied core.Direction, body template.HTML, cached bool) (View, error) {
	head, err := c.renderer.Header(state)
	if err != nil {
		return View{}, err
	}
	headOOB, err := c.renderer.HeaderSwap(state)
	if err != nil {
		return View{}, err
	}
	return View{
		State:   state,
		Key:     key,
		Applied: applied,
		Rows:    c.ds.Len(),
		Cached:  cached,
		Head:    head,
		HeadOOB: headOOB,
		Body:    body,
	}, nil
}
