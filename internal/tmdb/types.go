package tmdb

import (
	"strconv"
	"strings"
)

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Item is a movie or TV show as it appears in listings. Identity is
// (ID, MediaType): the same numeric id exists in both namespaces.
type Item struct {
	ID               int64
	MediaType        MediaType
	Title            string
	OriginalTitle    string
	PosterPath       string
	BackdropPath     string
	Overview         string
	ReleaseDate      string
	VoteAverage      float64
	VoteCount        int
	Popularity       float64
	GenreIDs         []int
	Genres           []Genre
	OriginalLanguage string
}

func (i Item) Year() string {
	return yearFromDate(i.ReleaseDate)
}

type Page struct {
	Results      []Item
	Page         int
	TotalPages   int
	TotalResults int
}

type Detail struct {
	Item

	Tagline          string
	Status           string
	Homepage         string
	Runtime          int
	NumberOfSeasons  int
	NumberOfEpisodes int
	Credits          Credits
	Videos           []Video
	Similar          Page
}

type Credits struct {
	Cast []CastMember
	Crew []CrewMember
}

type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

type CrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

type rawItem struct {
	ID               int64   `json:"id"`
	MediaType        string  `json:"media_type"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	OriginalTitle    string  `json:"original_title"`
	OriginalName     string  `json:"original_name"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	Overview         string  `json:"overview"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	GenreIDs         []int   `json:"genre_ids"`
	Genres           []Genre `json:"genres"`
	OriginalLanguage string  `json:"original_language"`
}

type rawPage struct {
	Page         int       `json:"page"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
	Results      []rawItem `json:"results"`
}

type rawDetail struct {
	rawItem

	Tagline          string `json:"tagline"`
	Status           string `json:"status"`
	Homepage         string `json:"homepage"`
	Runtime          int    `json:"runtime"`
	EpisodeRunTime   []int  `json:"episode_run_time"`
	NumberOfSeasons  int    `json:"number_of_seasons"`
	NumberOfEpisodes int    `json:"number_of_episodes"`
	Credits          struct {
		Cast []CastMember `json:"cast"`
		Crew []CrewMember `json:"crew"`
	} `json:"credits"`
	Videos struct {
		Results []Video `json:"results"`
	} `json:"videos"`
	Similar rawPage `json:"similar"`
}

// item normalises a raw result. override wins over the payload's media_type;
// anything that is neither a movie nor a show (people in trending/all) is dropped.
func (r *rawItem) item(override MediaType) (Item, bool) {
	mediaType := MediaType(r.MediaType)
	if override != "" {
		mediaType = override
	}
	if !mediaType.Valid() {
		return Item{}, false
	}
	it := Item{
		ID:               r.ID,
		MediaType:        mediaType,
		PosterPath:       deref(r.PosterPath),
		BackdropPath:     deref(r.BackdropPath),
		Overview:         r.Overview,
		VoteAverage:      r.VoteAverage,
		VoteCount:        r.VoteCount,
		Popularity:       r.Popularity,
		GenreIDs:         r.GenreIDs,
		Genres:           r.Genres,
		OriginalLanguage: r.OriginalLanguage,
	}
	if mediaType == TV {
		it.Title = r.Name
		it.OriginalTitle = r.OriginalName
		it.ReleaseDate = r.FirstAirDate
	} else {
		it.Title = r.Title
		it.OriginalTitle = r.OriginalTitle
		it.ReleaseDate = r.ReleaseDate
	}
	if len(it.GenreIDs) == 0 && len(it.Genres) > 0 {
		for _, g := range it.Genres {
			it.GenreIDs = append(it.GenreIDs, g.ID)
		}
	}
	return it, true
}

func (p *rawPage) page(override MediaType) Page {
	out := make([]Item, 0, len(p.Results))
	for i := range p.Results {
		if it, ok := p.Results[i].item(override); ok {
			out = append(out, it)
		}
	}
	return Page{
		Results:      out,
		Page:         p.Page,
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func yearFromDate(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

func ParseYear(year string) *int {
	year = strings.TrimSpace(year)
	if year == "" {
		return nil
	}
	val, err := strconv.Atoi(year)
	if err != nil {
		return nil
	}
	return &val
}
