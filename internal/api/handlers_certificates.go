package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shuttle-hq/shuttle-sub002/models"
)

// uploadCertificate handles POST /api/v1/certificates
//
// The certificate becomes visible to the TLS listener as soon as this
// handler returns; there is no reload step.
func (s *Server) uploadCertificate(c echo.Context) error {
	var req models.CertificateRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestError("invalid request body", err.Error())
	}

	if err := s.validate.Struct(&req); err != nil {
		return ValidationError("invalid certificate request", fieldErrors(err))
	}

	if err := s.resolver.AddPEM(req.Hostname, []byte(req.CertPEM), []byte(req.KeyPEM)); err != nil {
		return BadRequestError("invalid certificate", err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"hostname": req.Hostname,
	})
}
