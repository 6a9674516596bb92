package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/ctxutil"
	"github.com/kevinaaaquil/novels/middleware"
	"github.com/kevinaaaquil/novels/models"
	"github.com/kevinaaaquil/novels/respond"
	"github.com/kevinaaaquil/novels/service"
)

// multipart parts beyond this are spooled to disk
const multipartMemory = 8 << 20

type NovelsHandler struct {
	Catalog  *service.Catalog
	Novels   *service.Novels
	MaxBytes int64
}

type CreateNovelResponse struct {
	Message string        `json:"message"`
	Novel   *models.Novel `json:"novel"`
}

// List serves one catalog page. A store fault is logged and served as an
// empty page rather than an error.
func (h *NovelsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.CatalogQuery{
		Search: q.Get("search"),
		Genre:  q.Get("genre"),
		Page:   intParam(q.Get("page")),
		Limit:  intParam(q.Get("limit")),
	}
	page, err := h.Catalog.Query(r.Context(), query)
	if err != nil {
		ctxutil.Logger(r.Context()).Error("catalog query failed", slog.Any("error", err))
		page = service.EmptyPage()
	}
	respond.JSON(w, http.StatusOK, page)
}

// intParam returns 0 for anything that is not an integer so that the catalog
// falls back to its defaults.
func intParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// Create handles the multipart novel form. The cover part is optional.
func (h *NovelsHandler) Create(w http.ResponseWriter, r *http.Request) {
	creator, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.Error(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, r, apperr.ValidationError("Upload too large."))
			return
		}
		respond.Error(w, r, apperr.ValidationError("Expected a multipart form."))
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := r.MultipartForm.Value
	in := service.NewNovel{
		Title:         first(form["title"]),
		Author:        first(form["author"]),
		Description:   first(form["description"]),
		Genre:         first(form["genre"]),
		PublishedDate: first(form["publishedDate"]),
		Tags:          append(append([]string{}, form["tags[]"]...), form["tags"]...),
	}

	var cover *service.CoverUpload
	file, header, err := r.FormFile("cover")
	switch {
	case err == nil:
		defer file.Close()
		cover = coverUpload(file, header)
	case !errors.Is(err, http.ErrMissingFile):
		respond.Error(w, r, apperr.ValidationError("Invalid cover upload."))
		return
	}

	novel, err := h.Novels.Create(r.Context(), creator, in, cover)
	if err != nil {
		ae := apperr.As(err)
		if ae == nil || ae.HTTPStatus >= http.StatusInternalServerError {
			ctxutil.Logger(r.Context()).Error("create novel failed", slog.Any("error", err))
			respond.JSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Failed to create novel.",
				"details": apperr.Internal(err).Message,
			})
			return
		}
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, CreateNovelResponse{Message: "Novel created successfully.", Novel: novel})
}

func coverUpload(file multipart.File, header *multipart.FileHeader) *service.CoverUpload {
	return &service.CoverUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Get returns a novel and counts the view. Signed-in readers get it added to
// their history.
func (h *NovelsHandler) Get(w http.ResponseWriter, r *http.Request) {
	var reader *models.Principal
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		reader = &p
	}
	novel, err := h.Novels.View(r.Context(), chi.URLParam(r, "id"), reader)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, novel)
}

// Cover streams a stored cover image. Public so that img src works.
func (h *NovelsHandler) Cover(w http.ResponseWriter, r *http.Request) {
	body, contentType, err := h.Novels.Cover(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	if _, err := io.Copy(w, body); err != nil {
		ctxutil.Logger(r.Context()).Warn("stream cover", slog.Any("error", err))
	}
}
