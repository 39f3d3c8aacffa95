package respond

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
)

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, map[string]string{"error": message})
}

// HTML renders the named template into a buffer first, so a template error
// still produces a clean 500 instead of half a page.
func HTML(w http.ResponseWriter, r *http.Request, code int, t *template.Template, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, err := buf.WriteTo(w)
	return err
}

// SeeOther redirects after a form post or a failed guard check.
func SeeOther(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}
