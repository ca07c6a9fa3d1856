package gateway

import (
	"net/url"
	"strings"

	"github.com/onurcolak/dispatch-service/internal/domain"
)

// Tokens understood in a provider's parameter template.
const (
	TokenNumber     = "[NUMBER]"
	TokenMessage    = "[MESSAGE]"
	TokenTemplateID = "[TEMP_ID]"
	TokenFile       = "[FILE]"
	TokenSubject    = "[SUBJECT]"
	TokenTitle      = "[TITLE]"
)

// componentUnescaper undoes query escaping that JavaScript's encodeURIComponent
// does not apply, so providers see the bytes they always have.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent escapes s for use inside a query value the way
// encodeURIComponent does: spaces become %20 and !'()* stay literal.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// BuildParams fills the provider's parameter template for a job. Every
// occurrence of each token is replaced.
func BuildParams(job domain.DispatchJob) string {
	return strings.NewReplacer(
		TokenNumber, job.Recipient,
		TokenMessage, EncodeComponent(job.Message),
		TokenTemplateID, job.TemplateRef,
		TokenFile, EncodeComponent(job.Attachment),
		TokenSubject, EncodeComponent(job.Subject),
		TokenTitle, EncodeComponent(job.Title),
	).Replace(job.Provider.Params)
}

// BuildURL joins the provider base URL and rendered params with "?".
func BuildURL(baseURL, params string) string {
	if params == "" {
		return baseURL
	}
	return baseURL + "?" + params
}
