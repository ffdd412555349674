package i18n

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
)

var translations = make(map[string]map[string]string)

// Init loads <lang>.json files from dir. Missing or broken files leave the
// key-fallback behavior in place.
func Init(dir string) {
	files, _ := os.ReadDir(dir)
	for _, f := range files {
		if filepath.Ext(f.Name()) == ".json" {
			lang := f.Name()[:len(f.Name())-5]
			data, _ := os.ReadFile(filepath.Join(dir, f.Name()))
			var t map[string]string
			if err := json.Unmarshal(data, &t); err == nil {
				translations[lang] = t
			}
		}
	}
}

func T(lang, key string) string {
	if t, ok := translations[lang]; ok {
		if val, ok := t[key]; ok {
			return val
		}
	}
	// Fallback to en
	if t, ok := translations["en"]; ok {
		if val, ok := t[key]; ok {
			return val
		}
	}
	return key
}

func GetLang(r *http.Request) string {
	cookie, err := r.Cookie("lang")
	if err == nil {
		return cookie.Value
	}
	return "en"
}
