package handlers

import (
	"github.com/handsomefox/reelscout/internal/catalog"
	"github.com/handsomefox/reelscout/internal/favorites"
	"github.com/handsomefox/reelscout/internal/tmdb"
)

type itemView struct {
	ID            int64          `json:"id"`
	MediaType     tmdb.MediaType `json:"media_type"`
	Title         string         `json:"title"`
	OriginalTitle string         `json:"original_title,omitempty"`
	Overview      string         `json:"overview"`
	PosterPath    *string        `json:"poster_path"`
	BackdropPath  *string        `json:"backdrop_path"`
	PosterURL     *string        `json:"poster_url"`
	BackdropURL   *string        `json:"backdrop_url"`
	ReleaseDate   *string        `json:"release_date"`
	Year          string         `json:"year,omitempty"`
	VoteAverage   float64        `json:"vote_average"`
	VoteCount     int            `json:"vote_count"`
	Popularity    float64        `json:"popularity"`
	GenreIDs      []int          `json:"genre_ids"`
	Genres        []tmdb.Genre   `json:"genres,omitempty"`
}

type pageView struct {
	Results      []itemView `json:"results"`
	Page         int        `json:"page"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
	HasMore      bool       `json:"has_more"`
}

type detailView struct {
	itemView

	Tagline          string            `json:"tagline,omitempty"`
	Status           string            `json:"status,omitempty"`
	Homepage         string            `json:"homepage,omitempty"`
	Runtime          int               `json:"runtime,omitempty"`
	NumberOfSeasons  int               `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int               `json:"number_of_episodes,omitempty"`
	Cast             []castView        `json:"cast"`
	Crew             []tmdb.CrewMember `json:"crew"`
	Videos           []tmdb.Video      `json:"videos"`
	Similar          pageView          `json:"similar"`
}

type castView struct {
	tmdb.CastMember
	ProfileURL *string `json:"profile_url"`
}

type snapshotView struct {
	Query        string     `json:"query"`
	Type         string     `json:"type"`
	Page         int        `json:"page"`
	Results      []itemView `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
	HasMore      bool       `json:"has_more"`
	Loading      bool       `json:"loading"`
}

type recordView struct {
	favorites.Record
	PosterURL *string `json:"poster_url"`
}

type collectionView struct {
	Items []recordView `json:"items"`
	Count int          `json:"count"`
}

func (h *Handler) image(path string, size tmdb.ImageSize) *string {
	return optionalString(tmdb.ImageURL(h.imageBase, path, size))
}

func (h *Handler) toItemView(it *tmdb.Item) itemView {
	genreIDs := it.GenreIDs
	if genreIDs == nil {
		genreIDs = []int{}
	}
	return itemView{
		ID:            it.ID,
		MediaType:     it.MediaType,
		Title:         it.Title,
		OriginalTitle: it.OriginalTitle,
		Overview:      it.Overview,
		PosterPath:    optionalString(it.PosterPath),
		BackdropPath:  optionalString(it.BackdropPath),
		PosterURL:     h.image(it.PosterPath, tmdb.W500),
		BackdropURL:   h.image(it.BackdropPath, tmdb.W1280),
		ReleaseDate:   optionalString(it.ReleaseDate),
		Year:          it.Year(),
		VoteAverage:   it.VoteAverage,
		VoteCount:     it.VoteCount,
		Popularity:    it.Popularity,
		GenreIDs:      genreIDs,
		Genres:        it.Genres,
	}
}

func (h *Handler) toItemViews(items []tmdb.Item) []itemView {
	out := make([]itemView, 0, len(items))
	for i := range items {
		out = append(out, h.toItemView(&items[i]))
	}
	return out
}

func (h *Handler) toPageView(p *tmdb.Page) pageView {
	return pageView{
		Results:      h.toItemViews(p.Results),
		Page:         p.Page,
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
		HasMore:      catalog.HasMore(p.Page, p.TotalPages),
	}
}

func (h *Handler) toDetailView(d *tmdb.Detail) detailView {
	cast := make([]castView, 0, len(d.Credits.Cast))
	for _, c := range d.Credits.Cast {
		cast = append(cast, castView{CastMember: c, ProfileURL: h.image(c.ProfilePath, tmdb.W185)})
	}
	crew := d.Credits.Crew
	if crew == nil {
		crew = []tmdb.CrewMember{}
	}
	videos := d.Videos
	if videos == nil {
		videos = []tmdb.Video{}
	}
	return detailView{
		itemView:         h.toItemView(&d.Item),
		Tagline:          d.Tagline,
		Status:           d.Status,
		Homepage:         d.Homepage,
		Runtime:          d.Runtime,
		NumberOfSeasons:  d.NumberOfSeasons,
		NumberOfEpisodes: d.NumberOfEpisodes,
		Cast:             cast,
		Crew:             crew,
		Videos:           videos,
		Similar:          h.toPageView(&d.Similar),
	}
}

func (h *Handler) toSnapshotView(s *catalog.Snapshot) snapshotView {
	kind := s.Query.Kind
	if kind == "" {
		kind = catalog.All
	}
	return snapshotView{
		Query:        s.Query.Text,
		Type:         string(kind),
		Page:         s.Page,
		Results:      h.toItemViews(s.Items),
		TotalPages:   s.TotalPages,
		TotalResults: s.TotalResults,
		HasMore:      s.HasMore,
		Loading:      s.Loading,
	}
}

func (h *Handler) toCollectionView(recs []favorites.Record) collectionView {
	items := make([]recordView, 0, len(recs))
	for _, r := range recs {
		var poster string
		if r.PosterPath != nil {
			poster = *r.PosterPath
		}
		items = append(items, recordView{Record: r, PosterURL: h.image(poster, tmdb.W342)})
	}
	return collectionView{Items: items, Count: len(items)}
}
