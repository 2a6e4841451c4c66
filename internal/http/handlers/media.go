package handlers

import (
	"net/http"

	"mansio/internal/media"
	"mansio/internal/pipeline"
)

type enhanceResponse struct {
	Status           string           `json:"status"`
	Message          string           `json:"message"`
	EnhancedImageURL string           `json:"enhanced_image_url,omitempty"`
	EnhancedVideoURL string           `json:"enhanced_video_url,omitempty"`
	StitchedVideoURL string           `json:"stitched_video_url,omitempty"`
	WatermarkInfo    *media.Watermark `json:"watermark_info,omitempty"`
}

// EnhanceImage handles POST /enhance/image/: one multipart "file" field.
func (a *App) EnhanceImage(w http.ResponseWriter, r *http.Request) {
	up, cleanup, ok := a.singleUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	art, err := a.Pipeline.EnhanceImage(r.Context(), up)
	if err != nil {
		a.pipelineError(w, err)
		return
	}
	a.json(w, http.StatusOK, enhanceResponse{
		Status:           "success",
		Message:          "image enhanced successfully",
		EnhancedImageURL: art.URL,
	})
}

// EnhanceVideo handles POST /enhance/video/: one multipart "file" field. The
// response carries the watermark metadata applied to the output.
func (a *App) EnhanceVideo(w http.ResponseWriter, r *http.Request) {
	up, cleanup, ok := a.singleUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	art, err := a.Pipeline.EnhanceVideo(r.Context(), up)
	if err != nil {
		a.pipelineError(w, err)
		return
	}
	a.json(w, http.StatusOK, enhanceResponse{
		Status:           "success",
		Message:          "video enhanced successfully with Mansio watermark",
		EnhancedVideoURL: art.URL,
		WatermarkInfo:    art.Watermark,
	})
}

// StitchVideos handles POST /stitch/videos/: two or more multipart "files"
// entries, merged in lexicographic order of their filenames.
func (a *App) StitchVideos(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		a.error(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	headers := r.MultipartForm.File["files"]
	ups := make([]pipeline.Upload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			a.error(w, http.StatusBadRequest, "failed to read uploaded file: "+h.Filename)
			return
		}
		defer f.Close()
		ups = append(ups, pipeline.Upload{Filename: h.Filename, Content: f})
	}

	art, err := a.Pipeline.StitchVideos(r.Context(), ups)
	if err != nil {
		a.pipelineError(w, err)
		return
	}
	a.json(w, http.StatusOK, enhanceResponse{
		Status:           "success",
		Message:          "videos stitched successfully with Mansio watermark",
		StitchedVideoURL: art.URL,
		WatermarkInfo:    art.Watermark,
	})
}

// singleUpload extracts the "file" multipart field shared by both enhance
// endpoints. It writes the error response itself when the upload is unusable.
func (a *App) singleUpload(w http.ResponseWriter, r *http.Request) (pipeline.Upload, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "a multipart 'file' field is required")
		return pipeline.Upload{}, nil, false
	}
	cleanup := func() {
		file.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
	return pipeline.Upload{Filename: header.Filename, Content: file}, cleanup, true
}
