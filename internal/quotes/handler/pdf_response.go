package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const contentTypePDF = "application/pdf"

func servePDFBytes(c *gin.Context, runID string, pdfBytes []byte) {
	setPDFHeaders(c, runID)
	c.Data(http.StatusOK, contentTypePDF, pdfBytes)
}

func setPDFHeaders(c *gin.Context, runID string) {
	fileName := fmt.Sprintf("Quote-%s.pdf", runID)
	c.Header("Content-Type", contentTypePDF)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
}
