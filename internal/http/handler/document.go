package handler

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"

	"docrepo/internal/auth"
	"docrepo/internal/service"
)

const octetStream = "application/octet-stream"

// versionView is one entry of the versions listing.
type versionView struct {
	VersionNum int             `json:"version_num"`
	MetaData   json.RawMessage `json:"meta_data" swaggertype:"object"`
}

// UploadDocument stores a document, or a new version of it.
// Form fields: app_id, meta_data (JSON object text) and doc (the file).
//
// @Summary Upload a document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param client_id header string true "Client ID"
// @Param access_key header string true "Access key"
// @Param app_id formData string true "App ID"
// @Param meta_data formData string true "Metadata JSON object"
// @Param doc formData file true "Document"
// @Success 200 {object} envelope{data=service.IngestResult}
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Failure 404 {object} envelope
// @Failure 500 {object} envelope
// @Router /documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := service.IngestInput{
			ClientID: auth.ClientID(c),
			AppID:    c.FormValue("app_id"),
			Metadata: c.FormValue("meta_data"),
		}

		// A missing file is reported by the service in its validation order.
		if fh, err := c.FormFile("doc"); err == nil {
			upload, err := readUpload(fh)
			if err != nil {
				return badRequest("Unable to read the uploaded document.")
			}
			in.Payload = upload
		}

		res, err := svc.Ingest(c.UserContext(), in)
		if err != nil {
			return err
		}
		return writeOK(c, fiber.StatusOK, res)
	}
}

// GetDocument streams the newest version of a document.
//
// @Summary Download the current version of a document
// @Tags documents
// @Produce octet-stream
// @Param client_id header string true "Client ID"
// @Param access_key header string true "Access key"
// @Param doc_id path string true "Document ID"
// @Param app_id query string true "App ID"
// @Success 200 {file} file
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Failure 404 {object} envelope
// @Router /documents/{doc_id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Fetch(c.UserContext(), documentRef(c))
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, res.ContentType)
		c.Set(fiber.HeaderContentDisposition, attachment(res.Title))
		c.Set("X-Document-Version", strconv.Itoa(res.VersionNum))
		return c.Status(fiber.StatusOK).Send(res.Data)
	}
}

// attachment builds an RFC 6266 Content-Disposition; non-ASCII titles use the RFC 2231 form.
func attachment(title string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": title}); v != "" {
		return v
	}
	return "attachment"
}

// ListDocumentVersions returns the version history of a document, oldest first.
//
// @Summary List the versions of a document
// @Tags documents
// @Produce json
// @Param client_id header string true "Client ID"
// @Param access_key header string true "Access key"
// @Param doc_id path string true "Document ID"
// @Param app_id query string true "App ID"
// @Success 200 {object} envelope{data=[]versionView}
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Failure 404 {object} envelope
// @Router /documents/{doc_id}/versions [get]
func ListDocumentVersions(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		versions, err := svc.ListVersions(c.UserContext(), documentRef(c))
		if err != nil {
			return err
		}
		out := make([]versionView, 0, len(versions))
		for _, v := range versions {
			out = append(out, versionView{VersionNum: v.VersionNum, MetaData: json.RawMessage(v.MetaData)})
		}
		return writeOK(c, fiber.StatusOK, out)
	}
}

// DeleteDocument removes a document with every version.
//
// @Summary Delete a document
// @Tags documents
// @Produce json
// @Param client_id header string true "Client ID"
// @Param access_key header string true "Access key"
// @Param doc_id path string true "Document ID"
// @Param app_id query string true "App ID"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Failure 404 {object} envelope
// @Router /documents/{doc_id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), documentRef(c)); err != nil {
			return err
		}
		return writeOK(c, fiber.StatusOK, nil)
	}
}

func documentRef(c *fiber.Ctx) service.FetchInput {
	return service.FetchInput{
		ClientID: auth.ClientID(c),
		AppID:    c.Query("app_id"),
		DocID:    c.Params("doc_id"),
	}
}

// readUpload loads the file into memory. A missing or generic content type is
// replaced by the one sniffed from the payload.
func readUpload(fh *multipart.FileHeader) (*service.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	ct := strings.TrimSpace(fh.Header.Get(fiber.HeaderContentType))
	if ct == "" || ct == octetStream {
		ct = sniffContentType(data)
	}

	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: ct,
		Data:        data,
	}, nil
}

func sniffContentType(data []byte) string {
	ct := mimetype.Detect(data).String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}
