package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/imedbrahmi/hospital_backend/internal/service/document"
)

// pdfLink answers a PDF request: 200 with the presigned URL once the
// document is ready, 202 while it is still being rendered.
func pdfLink(c fiber.Ctx, link *document.Link) error {
	if link.Ready() {
		return c.JSON(fiber.Map{
			"success":   true,
			"message":   "PDF ready",
			"pdfStatus": link.Status,
			"pdfUrl":    link.URL,
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success":   true,
		"message":   "PDF is being generated",
		"pdfStatus": link.Status,
	})
}
