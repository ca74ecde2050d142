package uploads

import (
	"errors"
	"net/http"
	"net/url"
	"os"

	"github.com/andrebq/blogbox/internal/httpserver"
	"github.com/andrebq/blogbox/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

const (
	FormField = "image"
	// parts larger than this are buffered on disk by the multipart reader
	maxMemory = 8 << 20
)

type (
	Gate interface {
		Protect(http.Handler) http.Handler
	}

	uploadResponse struct {
		Message  string `json:"message"`
		ImageURL string `json:"imageUrl"`
	}

	handler struct {
		disk     *Disk
		maxBytes int64
	}

	// filesOnly hides directories so their contents are never listed
	filesOnly struct {
		fs http.FileSystem
	}
)

// AsHandler returns the handler for POST /api/upload (through gate) and
// the static files under /uploads/
func AsHandler(disk *Disk, gate Gate, maxBytes int64) http.Handler {
	h := &handler{disk: disk, maxBytes: maxBytes}
	router := httprouter.New()
	router.Handler("POST", "/api/upload", gate.Protect(http.HandlerFunc(h.upload)))
	router.ServeFiles("/uploads/*filepath", filesOnly{fs: http.Dir(disk.Dir())})
	return router
}

func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	log := logutil.GetOrDefault(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	err := r.ParseMultipartForm(maxMemory)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httpserver.WriteJSON(w, r, http.StatusRequestEntityTooLarge, httpserver.Message{Message: "Image too large"})
		return
	} else if err != nil {
		httpserver.WriteJSON(w, r, http.StatusBadRequest, httpserver.Message{Message: "No image uploaded"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FormField)
	if err != nil {
		httpserver.WriteJSON(w, r, http.StatusBadRequest, httpserver.Message{Message: "No image uploaded"})
		return
	}
	defer file.Close()

	name, err := h.disk.Save(header.Filename, file)
	if err != nil {
		httpserver.InternalError(w, r, err, "Error uploading image")
		return
	}
	log.Info().Str("upload.name", name).Int64("upload.size", header.Size).Msg("Image uploaded")
	httpserver.WriteJSON(w, r, http.StatusCreated, uploadResponse{
		Message:  "Upload successful",
		ImageURL: publicURL(r, name),
	})
}

func publicURL(r *http.Request, name string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: "/uploads/" + name}
	return u.String()
}

func (f filesOnly) Open(name string) (http.File, error) {
	fd, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, err
	}
	if st.IsDir() {
		fd.Close()
		return nil, os.ErrNotExist
	}
	return fd, nil
}
