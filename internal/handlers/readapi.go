package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/snapkeep/snapkeep/internal/archive"
	"github.com/snapkeep/snapkeep/internal/storage"
)

// ReadAPIHandler serves the object-storage-backed read endpoints. store is
// nil when mirroring is disabled; the endpoints then answer 500 as the
// data simply is not there.
type ReadAPIHandler struct {
	logger *slog.Logger
	apiKey string
	store  storage.Store
}

func NewReadAPIHandler(log *slog.Logger, apiKey string, store storage.Store) *ReadAPIHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ReadAPIHandler{
		logger: log.With(slog.String("handler", "readapi")),
		apiKey: apiKey,
		store:  store,
	}
}

func (h *ReadAPIHandler) Register(e *echo.Echo) {
	e.GET("/api/groups", h.Groups)
	e.GET("/api/files", h.Files)
}

type groupsResponse struct {
	Date   string   `json:"date"`
	Groups []string `json:"groups"`
}

type fileItem struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	URL     string `json:"url,omitempty"`
	GsURI   string `json:"gs_uri"`
	Size    int64  `json:"size"`
	Updated string `json:"updated"`
}

type filesResponse struct {
	Date  string     `json:"date"`
	Group string     `json:"group"`
	Count int        `json:"count"`
	Items []fileItem `json:"items"`
}

// Groups lists the conversation folders archived on a given date.
func (h *ReadAPIHandler) Groups(c echo.Context) error {
	if err := h.authorize(c); err != nil {
		return err
	}
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}
	if h.store == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "object storage not configured")
	}
	folders, err := h.store.ListFolders(c.Request().Context(), archive.Sanitize(date))
	if err != nil {
		h.logger.Error("list folders failed", slog.String("date", date), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "list folders failed")
	}
	if folders == nil {
		folders = []string{}
	}
	return c.JSON(http.StatusOK, groupsResponse{Date: date, Groups: folders})
}

// Files lists the attachments under one conversation folder, with
// time-limited access URLs.
func (h *ReadAPIHandler) Files(c echo.Context) error {
	if err := h.authorize(c); err != nil {
		return err
	}
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}
	group := c.QueryParam("group")
	if group == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "group is required")
	}
	if h.store == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "object storage not configured")
	}

	// Query values become path segments; run them through the sanitizer
	// like every other segment.
	prefix := path.Join(archive.Sanitize(date), archive.Sanitize(group))
	if album := c.QueryParam("album"); album != "" {
		prefix = path.Join(prefix, "album_"+archive.Sanitize(album))
	}

	objects, err := h.store.List(c.Request().Context(), prefix)
	if err != nil {
		h.logger.Error("list objects failed", slog.String("prefix", prefix), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "list objects failed")
	}

	items := make([]fileItem, 0, len(objects))
	for _, obj := range objects {
		item := fileItem{
			Name:    obj.Name,
			Path:    obj.Path,
			GsURI:   h.store.AccessPath(obj.Path),
			Size:    obj.Size,
			Updated: obj.Updated.Format(time.RFC3339),
		}
		if url, err := h.store.SignedURL(obj.Path, archive.AccessURLTTL); err == nil {
			item.URL = url
		} else {
			h.logger.Warn("signed url failed", slog.String("path", obj.Path), slog.Any("error", err))
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, filesResponse{
		Date:  date,
		Group: group,
		Count: len(items),
		Items: items,
	})
}

// authorize checks the shared API key from the X-API-Key header or the key
// query parameter. A static shared key is a known weak point of this API;
// it stays because the deployment surface is a single private bucket.
func (h *ReadAPIHandler) authorize(c echo.Context) error {
	presented := c.Request().Header.Get("X-API-Key")
	if presented == "" {
		presented = c.QueryParam("key")
	}
	if h.apiKey == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(h.apiKey)) != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
	}
	return nil
}
