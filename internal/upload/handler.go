package upload

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/radif/imageproc/internal/response"
)

// formField is the multipart field carrying the image.
const formField = "file"

// Handler holds HTTP handlers for upload endpoints.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
}

// NewHandler creates a new upload Handler. maxUploadBytes caps the request
// body; zero or less disables the cap.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

type profileEntry struct {
	Suffix string `json:"suffix" example:"@2x"`
	Spec   string `json:"spec"   example:"fit(128x128)"`
}

type profileBody struct {
	Name    string         `json:"name"    example:"64"`
	Entries []profileEntry `json:"entries"`
}

// Resized godoc
//
//	@Summary		Upload and derive sizes
//	@Description	Decodes the uploaded image and stores one WebP derivative per profile entry under images/{hash}{suffix}.webp.
//	@Tags			upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			profile	path		string	true	"Size profile"	Enums(64, 80, 100, 158, 400, 600)
//	@Param			file	formData	file	true	"Image file"
//	@Success		200		{object}	response.Envelope{data=Result}
//	@Failure		400		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/{profile} [post]
//
// Resized returns the handler bound to one size profile.
func (h *Handler) Resized(profileName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := h.readInput(w, r)
		if !ok {
			return
		}

		res, err := h.svc.ProcessResized(r.Context(), profileName, in)
		if err != nil {
			writeError(w, err)
			return
		}
		response.OK(w, res)
	}
}

// Original godoc
//
//	@Summary		Upload without resizing
//	@Description	Converts the uploaded image to WebP at its original dimensions and stores it under images/{hash}.webp.
//	@Tags			upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"Image file"
//	@Success		200		{object}	response.Envelope{data=Result}
//	@Failure		400		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Original(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readInput(w, r)
	if !ok {
		return
	}

	res, err := h.svc.ProcessOriginal(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, res)
}

// ListProfiles godoc
//
//	@Summary		List size profiles
//	@Description	Returns every configured profile with its suffixes and target sizes.
//	@Tags			upload
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]profileBody}
//	@Router			/profiles [get]
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	all := h.svc.Profiles().All()
	out := make([]profileBody, 0, len(all))
	for _, p := range all {
		body := profileBody{Name: p.Name, Entries: make([]profileEntry, 0, len(p.Entries))}
		for _, e := range p.Entries {
			body.Entries = append(body.Entries, profileEntry{Suffix: e.Suffix, Spec: e.Spec.String()})
		}
		out = append(out, body)
	}
	response.OK(w, out)
}

// readInput extracts the uploaded file. It writes the error response itself
// and returns false when the request carries no usable file.
func (h *Handler) readInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	file, header, err := r.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "file too large")
			return Input{}, false
		}
		response.BadRequest(w, "No file provided")
		return Input{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[upload] read %q: %v", header.Filename, err)
		response.BadRequest(w, "could not read file")
		return Input{}, false
	}
	return Input{Filename: header.Filename, Data: data}, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyInput):
		response.BadRequest(w, "Empty filename")
	case errors.Is(err, ErrDecode):
		response.BadRequest(w, "invalid image")
	case errors.Is(err, ErrUnknownProfile):
		response.Error(w, http.StatusInternalServerError, "Invalid endpoint configuration")
	case errors.Is(err, ErrStore):
		response.BadGateway(w, "failed to store image")
	default:
		log.Printf("[upload] unexpected error: %v", err)
		response.InternalError(w)
	}
}
