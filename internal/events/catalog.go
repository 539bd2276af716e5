package events

import (
	"context"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/eventapp-cli/internal/api"
	"github.com/dropDatabas3/eventapp-cli/internal/observability/logger"
)

// Claves del cache en memoria.
const (
	keyTodos       = "eventos:todos"
	keyCategorias  = "eventos:categorias"
	keyUbicaciones = "eventos:ubicaciones"
)

// Catalog es el cliente del catálogo de eventos, con cache en memoria
// sobre los endpoints de solo lectura.
type Catalog struct {
	client *api.Client
	cache  *gocache.Cache
}

// NewCatalog crea el catálogo con el TTL dado para las lecturas cacheadas.
func NewCatalog(client *api.Client, ttl time.Duration) *Catalog {
	return &Catalog{
		client: client,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// Todos retorna el listado completo de eventos, del cache si está vigente.
func (c *Catalog) Todos(ctx context.Context) ([]Evento, error) {
	if v, ok := c.cache.Get(keyTodos); ok {
		return v.([]Evento), nil
	}
	var resp struct {
		Eventos []Evento `json:"eventos"`
	}
	if err := c.client.Get(ctx, "/api/event/todos", &resp); err != nil {
		return nil, err
	}
	c.cache.SetDefault(keyTodos, resp.Eventos)
	logger.From(ctx).Named("events").Debug("catálogo refrescado", logger.Count(len(resp.Eventos)))
	return resp.Eventos, nil
}

// Facets son las dimensiones de filtrado que expone el backend.
type Facets struct {
	Categorias  []string
	Ubicaciones []string
}

// Facets trae categorías y ubicaciones en paralelo: son dos endpoints
// independientes y la home las necesita juntas.
func (c *Catalog) Facets(ctx context.Context) (Facets, error) {
	var out Facets

	cachedCats, okCats := c.cache.Get(keyCategorias)
	cachedUbis, okUbis := c.cache.Get(keyUbicaciones)
	if okCats && okUbis {
		return Facets{
			Categorias:  cachedCats.([]string),
			Ubicaciones: cachedUbis.([]string),
		}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var resp struct {
			Categorias []string `json:"categorias"`
		}
		if err := c.client.Get(gctx, "/api/event/categorias", &resp); err != nil {
			return err
		}
		out.Categorias = resp.Categorias
		return nil
	})
	g.Go(func() error {
		var resp struct {
			Ubicaciones []string `json:"ubicaciones"`
		}
		if err := c.client.Get(gctx, "/api/event/ubicaciones", &resp); err != nil {
			return err
		}
		out.Ubicaciones = resp.Ubicaciones
		return nil
	})
	if err := g.Wait(); err != nil {
		return Facets{}, err
	}

	c.cache.SetDefault(keyCategorias, out.Categorias)
	c.cache.SetDefault(keyUbicaciones, out.Ubicaciones)
	return out, nil
}

// Uno retorna el detalle de un evento. No se cachea: la disponibilidad
// cambia con cada compra.
func (c *Catalog) Uno(ctx context.Context, id string) (*Evento, error) {
	var resp struct {
		Evento Evento `json:"evento"`
	}
	if err := c.client.Get(ctx, "/api/event/uno/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp.Evento, nil
}

// Invalidate descarta todo lo cacheado. Se llama después de una compra.
func (c *Catalog) Invalidate() {
	c.cache.Flush()
}
