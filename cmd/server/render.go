package main

import (
	"log"
	"net/http"

	"github.com/gnemet/motionpitch/internal/i18n"
)

func getBaseData(r *http.Request, title string) map[string]interface{} {
	lang := i18n.GetLang(r)
	return map[string]interface{}{
		"Title": title,
		"Lang":  lang,
	}
}

func renderTemplate(w http.ResponseWriter, name string, data map[string]interface{}) {
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error executing template %s: %v", name, err)
	}
}
