package handler

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"
)

// Pages are thin HTML shells: the forms and tables are driven by the /api
// routes. The server decides who may see them and carries notifications.

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body data-page="{{.Page}}"{{with .Param}} data-param="{{.}}"{{end}}>
{{- with .Identity}}
<header>Store: {{.Username}}</header>
{{- end}}
{{- range .Notifications}}
<div class="toast toast-{{.Level}}" role="alert">{{.Message}}</div>
{{- end}}
<main id="app"></main>
</body>
</html>
`))

const loadingPage = `<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>Loading...</title></head>
<body><div class="loading">Loading...</div></body></html>
`

type pageData struct {
	Title         string
	Page          string
	Param         string
	Identity      *domain.Identity
	Notifications []domain.Notification
}

func renderLoading(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(loadingPage))
}

func renderPage(w http.ResponseWriter, r *http.Request, data pageData, logger *zap.Logger) {
	data.Notifications = append(popFlash(w, r), data.Notifications...)
	if h, ok := session.FromContext(r.Context()); ok {
		data.Identity = h.Identity()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.Error("render page failed", zap.String("page", data.Page), zap.Error(err))
	}
}

// loginPageHandler serves the public landing page, the login form.
// Operators who are already signed in go straight to the dashboard.
func loginPageHandler(landingPath string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := session.FromContext(r.Context()); ok && h.State() == session.Authenticated {
			http.Redirect(w, r, landingPath, http.StatusFound)
			return
		}
		renderPage(w, r, pageData{Title: "Store Login", Page: "login"}, logger)
	}
}

// redirectHandler always sends the client to target.
func redirectHandler(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	}
}

func dashboardPageHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, r, pageData{Title: "Dashboard", Page: "dashboard"}, logger)
	}
}

func addCustomerPageHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, r, pageData{Title: "Add Customer", Page: "addCustomer"}, logger)
	}
}

func manageCustomerPageHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, r, pageData{Title: "Manage Customers", Page: "manageCustomer"}, logger)
	}
}

func editCustomerPageHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, r, pageData{
			Title: "Update Customer",
			Page:  "editCustomer",
			Param: chi.URLParam(r, "id"),
		}, logger)
	}
}
