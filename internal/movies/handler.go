package movies

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"topmovies/internal/middleware"
	synchub "topmovies/internal/sync"
	"topmovies/internal/tmdb"
)

type Handler struct {
	Repo     *Repo
	Metadata tmdb.Searcher
	Events   synchub.Publisher
	Flash    *Flasher
	tmpl     *template.Template
}

// NewHandler wires the HTML pages. events and flash may be nil.
func NewHandler(repo *Repo, metadata tmdb.Searcher, events synchub.Publisher, flash *Flasher) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if err := RegisterValidators(); err != nil {
		return nil, err
	}
	return &Handler{Repo: repo, Metadata: metadata, Events: events, Flash: flash, tmpl: tmpl}, nil
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/", h.list)
	rg.GET("/edit", h.editForm)
	rg.POST("/edit", h.editSubmit)
	rg.GET("/delete", h.remove)
	rg.GET("/add", h.addForm)
	rg.POST("/add", h.addSubmit)
	rg.GET("/find", h.find)
}

func (h *Handler) list(c *gin.Context) {
	ranked, err := h.Repo.ListRanked(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	h.html(c, http.StatusOK, "index.html", listPage{
		Movies:  ByRank(ranked),
		Count:   len(ranked),
		Flashes: h.Flash.Pop(c),
	})
}

func (h *Handler) editForm(c *gin.Context) {
	id, err := movieID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	m, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	page := editPage{MovieID: m.ID, Title: m.Title, Year: m.Year}
	if m.Rating != nil {
		page.Rating = strconv.FormatFloat(*m.Rating, 'f', -1, 64)
	}
	if m.Review != nil {
		page.Review = *m.Review
	}
	h.html(c, http.StatusOK, "edit.html", page)
}

func (h *Handler) editSubmit(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := movieID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	m, err := h.Repo.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	var form rateForm
	bindErr := c.ShouldBind(&form)
	page := editPage{MovieID: m.ID, Title: m.Title, Year: m.Year, Rating: form.Rating, Review: form.Review}
	if bindErr != nil {
		page.Errors = formErrors(bindErr)
		h.html(c, http.StatusBadRequest, "edit.html", page)
		return
	}

	if err := h.Repo.UpdateRating(ctx, id, form.Rating, form.Review); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			page.Errors = map[string]string{"form": inputMessage(err)}
			h.html(c, http.StatusBadRequest, "edit.html", page)
			return
		}
		h.fail(c, err)
		return
	}

	middleware.Logger(c).Info("movie rated", "id", id, "title", m.Title, "rating", form.Rating)
	if h.Events != nil {
		rating, _ := ParseRating(form.Rating)
		h.Events.Publish(synchub.MovieEvent{Type: synchub.EventMovieRated, MovieID: id, Title: m.Title, Rating: &rating})
	}
	h.Flash.Add(c, fmt.Sprintf("Rated %s.", m.Title))
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) remove(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := movieID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	m, err := h.Repo.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.Repo.Delete(ctx, id); err != nil {
		h.fail(c, err)
		return
	}

	middleware.Logger(c).Info("movie deleted", "id", id, "title", m.Title)
	if h.Events != nil {
		h.Events.Publish(synchub.MovieEvent{Type: synchub.EventMovieDeleted, MovieID: id, Title: m.Title})
	}
	h.Flash.Add(c, fmt.Sprintf("Removed %s.", m.Title))
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) addForm(c *gin.Context) {
	h.html(c, http.StatusOK, "add.html", addPage{})
}

func (h *Handler) addSubmit(c *gin.Context) {
	var form addForm
	if err := c.ShouldBind(&form); err != nil {
		h.html(c, http.StatusBadRequest, "add.html", addPage{Title: form.Title, Errors: formErrors(err)})
		return
	}
	title := strings.TrimSpace(form.Title)
	if title == "" {
		h.html(c, http.StatusBadRequest, "add.html", addPage{Errors: map[string]string{"title": "Movie title is required."}})
		return
	}

	results, err := h.Metadata.Search(c.Request.Context(), title)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.html(c, http.StatusOK, "select.html", selectPage{Query: title, Results: results})
}

func (h *Handler) find(c *gin.Context) {
	ctx := c.Request.Context()
	externalID, err := movieID(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	details, err := h.Metadata.FetchDetails(ctx, externalID)
	if err != nil {
		h.fail(c, err)
		return
	}
	id, err := h.Repo.Insert(ctx, details.NewMovie())
	if err != nil {
		// nothing the user typed reaches Insert; a rejected record is bad upstream data
		if errors.Is(err, ErrInvalidInput) {
			err = fmt.Errorf("%w: movie %d: %v", tmdb.ErrMalformedMetadata, externalID, err)
		}
		h.fail(c, err)
		return
	}

	middleware.Logger(c).Info("movie added", "id", id, "tmdb_id", externalID, "title", details.Title)
	if h.Events != nil {
		h.Events.Publish(synchub.MovieEvent{Type: synchub.EventMovieAdded, MovieID: id, Title: details.Title})
	}
	h.Flash.Add(c, fmt.Sprintf("Added %s. Give it a rating.", details.Title))
	c.Redirect(http.StatusFound, "/edit?"+url.Values{"id": {strconv.FormatInt(id, 10)}}.Encode())
}

func (h *Handler) html(c *gin.Context, status int, name string, data any) {
	c.Render(status, render.HTML{Template: h.tmpl, Name: name, Data: data})
}

// fail renders the error page with the status mapped from err.
func (h *Handler) fail(c *gin.Context, err error) {
	status, msg := classify(err)
	_ = c.Error(err)

	log := middleware.Logger(c)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", c.Request.URL.Path, "status", status, "error", err)
	} else {
		log.Warn("request rejected", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	h.html(c, status, "error.html", errorPage{Status: status, Message: msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "That movie is not on your list."
	case errors.Is(err, ErrDuplicateTitle):
		return http.StatusConflict, "That movie is already on your list."
	case errors.Is(err, ErrInvalidInput), errors.Is(err, tmdb.ErrInvalidQuery):
		return http.StatusBadRequest, inputMessage(err)
	case errors.Is(err, tmdb.ErrMetadataUnavailable):
		return http.StatusBadGateway, "The movie database is unavailable right now. Try again shortly."
	case errors.Is(err, tmdb.ErrMalformedMetadata):
		return http.StatusBadGateway, "The movie database returned incomplete details for that film."
	default:
		return http.StatusInternalServerError, "Something went wrong."
	}
}

// inputMessage drops the sentinel prefix so the user sees only the reason.
func inputMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{ErrInvalidInput.Error() + ": ", tmdb.ErrInvalidQuery.Error() + ": "} {
		if i := strings.Index(msg, prefix); i >= 0 {
			msg = msg[i+len(prefix):]
		}
	}
	if msg == "" {
		return "Invalid input."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

func movieID(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.Query("id"))
	if raw == "" {
		return 0, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", ErrInvalidInput)
	}
	return id, nil
}
