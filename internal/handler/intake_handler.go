package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/internal/service"
)

// Subscribe stores a newsletter address and returns to the referring page.
func (a *API) Subscribe(c *gin.Context) {
	if err := a.intake.Subscribe(c.PostForm("email")); err != nil {
		if errors.Is(err, service.ErrEmailRequired) {
			a.renderError(c, http.StatusBadRequest, "Please enter an email address.")
			return
		}
		a.serverError(c, "subscribe", err)
		return
	}

	target := localRedirectTarget(c.Request.Referer(), c.Request.Host)
	c.Redirect(http.StatusFound, withQueryFlag(target, "subscribed"))
}

// ShowContact renders the contact form.
func (a *API) ShowContact(c *gin.Context) {
	a.renderPublic(c, http.StatusOK, "contact.html", gin.H{
		"title": "Contact",
	})
}

// SubmitContact appends a contact message.
func (a *API) SubmitContact(c *gin.Context) {
	input := service.ContactInput{
		Name:    c.PostForm("name"),
		Mobile:  c.PostForm("mobile"),
		Message: c.PostForm("message"),
	}

	if _, err := a.intake.SubmitContact(input); err != nil {
		if errors.Is(err, service.ErrContactFieldsRequired) {
			a.renderPublic(c, http.StatusBadRequest, "contact.html", gin.H{
				"title": "Contact",
				"error": "Name, mobile and message are required.",
				"form":  input,
			})
			return
		}
		a.serverError(c, "submit contact", err)
		return
	}

	a.renderPublic(c, http.StatusOK, "contact.html", gin.H{
		"title": "Contact",
		"sent":  true,
	})
}
