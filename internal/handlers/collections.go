package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/handsomefox/reelscout/internal/favorites"
)

const keepAliveInterval = 25 * time.Second

type collection struct {
	h     *Handler
	store *favorites.Store
}

func (h *Handler) collectionRoutes(store *favorites.Store) func(chi.Router) {
	c := &collection{h: h, store: store}
	return func(r chi.Router) {
		r.Method(http.MethodGet, "/", Adapt(c.list))
		r.Method(http.MethodPost, "/", Adapt(c.add))
		r.Method(http.MethodDelete, "/", Adapt(c.clear))
		r.Method(http.MethodPost, "/toggle", Adapt(c.toggle))
		r.Method(http.MethodGet, "/events", Adapt(c.events))

		r.Route("/{kind}/{id:[0-9]+}", func(r chi.Router) {
			r.Method(http.MethodGet, "/", Adapt(c.get))
			r.Method(http.MethodDelete, "/", Adapt(c.remove))
		})
	}
}

func (c *collection) list(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	recs := c.store.List(r.Context(), profileOf(r))
	recs = favorites.View(recs, favorites.ParseSort(q.Get("sort")), q.Get("q"))
	writeJSON(w, http.StatusOK, c.h.toCollectionView(recs))
	return nil
}

func (c *collection) decodeRecord(r *http.Request) (favorites.Record, error) {
	var rec favorites.Record
	if err := decodeJSON(r, &rec); err != nil {
		return rec, badRequest("bad request")
	}
	return rec, nil
}

func writeFailed(err error) error {
	if errors.Is(err, favorites.ErrInvalidRecord) {
		return badRequest(err.Error())
	}
	return err
}

func (c *collection) add(w http.ResponseWriter, r *http.Request) error {
	rec, err := c.decodeRecord(r)
	if err != nil {
		return err
	}
	recs, err := c.store.Add(r.Context(), profileOf(r), rec)
	if err != nil {
		return writeFailed(err)
	}
	writeJSON(w, http.StatusOK, c.h.toCollectionView(recs))
	return nil
}

type toggleResponse struct {
	collectionView
	Added bool `json:"added"`
}

func (c *collection) toggle(w http.ResponseWriter, r *http.Request) error {
	rec, err := c.decodeRecord(r)
	if err != nil {
		return err
	}
	added, recs, err := c.store.Toggle(r.Context(), profileOf(r), rec)
	if err != nil {
		return writeFailed(err)
	}
	writeJSON(w, http.StatusOK, &toggleResponse{collectionView: c.h.toCollectionView(recs), Added: added})
	return nil
}

// clear needs ?confirm=true so a stray DELETE cannot wipe the collection.
func (c *collection) clear(w http.ResponseWriter, r *http.Request) error {
	if r.URL.Query().Get("confirm") != "true" {
		return badRequest("clearing requires confirm=true")
	}
	if err := c.store.Clear(r.Context(), profileOf(r)); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, c.h.toCollectionView(nil))
	return nil
}

type membershipResponse struct {
	Saved bool        `json:"saved"`
	Item  *recordView `json:"item,omitempty"`
}

func (c *collection) get(w http.ResponseWriter, r *http.Request) error {
	kind, err := kindParam(r, "kind")
	if err != nil {
		return err
	}
	id, err := idParam(r, "id")
	if err != nil {
		return badRequest(err.Error())
	}
	rec, ok := c.store.Get(r.Context(), profileOf(r), id, kind)
	resp := &membershipResponse{Saved: ok}
	if ok {
		resp.Item = &c.h.toCollectionView([]favorites.Record{rec}).Items[0]
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (c *collection) remove(w http.ResponseWriter, r *http.Request) error {
	kind, err := kindParam(r, "kind")
	if err != nil {
		return err
	}
	id, err := idParam(r, "id")
	if err != nil {
		return badRequest(err.Error())
	}
	recs, err := c.store.Remove(r.Context(), profileOf(r), id, kind)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, c.h.toCollectionView(recs))
	return nil
}

// events streams the profile's collection as server-sent events: the
// current state first, then one event per change.
func (c *collection) events(w http.ResponseWriter, r *http.Request) error {
	rc := http.NewResponseController(w)
	// The server write timeout would otherwise cut the stream.
	_ = rc.SetWriteDeadline(time.Time{})

	profile := profileOf(r)
	changes, cancel := c.store.Subscribe(16)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func(op favorites.Op, recs []favorites.Record) error {
		payload, err := json.Marshal(struct {
			Op favorites.Op `json:"op"`
			collectionView
		}{Op: op, collectionView: c.h.toCollectionView(recs)})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", c.store.Name(), payload); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := send("snapshot", c.store.List(r.Context(), profile)); err != nil {
		return nil
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return nil
			}
			if err := rc.Flush(); err != nil {
				return nil
			}
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if change.Profile != profile {
				continue
			}
			if err := send(change.Op, change.Records); err != nil {
				return nil
			}
		}
	}
}
