package frontend_domain

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error         string
	CurrentUserId string // from the user_id cookie, empty for anonymous visitors
}
