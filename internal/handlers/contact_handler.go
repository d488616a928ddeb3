package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/alimrdn/solarportal/internal/helpers"
)

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// ContactForm forwards a public contact-form submission to the site inbox.
func ContactForm(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Name, email and message are required.")
		return
	}

	apiKey := os.Getenv("SENDGRID_API_KEY")
	inbox := os.Getenv("CONTACT_INBOX")
	if apiKey == "" || inbox == "" {
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Mail service not configured.")
		return
	}

	from := mail.NewEmail("Website Contact Form", os.Getenv("SENDGRID_FROM_EMAIL"))
	to := mail.NewEmail("", inbox)
	subject := fmt.Sprintf("Contact form message from %s", req.Name)
	body := fmt.Sprintf("From: %s <%s>\n\n%s", req.Name, req.Email, req.Message)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	client := sendgrid.NewSendClient(apiKey)
	resp, err := client.Send(message)
	if err != nil || resp.StatusCode >= 400 {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to send message.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message sent successfully."})
}
