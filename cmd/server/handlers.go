package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gnemet/motionpitch/internal/i18n"
	"github.com/gnemet/motionpitch/internal/pipeline"
)

const (
	defaultSlideCount = 3
	maxSlideCount     = 10
	maxUploadBytes    = 32 << 20
)

type generateResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect,omitempty"`
	Error    string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeGenerateError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, generateResponse{Success: false, Error: msg})
}

// guestID returns the browser's guest identifier, assigning one on first
// contact. Logged-in users keep their cookie but it is not consulted.
func guestID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie("guest_id"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     "guest_id",
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	gid := guestID(w, r)
	data := getBaseData(r, "MotionPitch")

	if userID := sessions.CurrentUserID(r); userID != 0 {
		if user, err := store.GetUserByID(userID); err == nil {
			data["User"] = user
			if presentations, err := store.GetPresentationsByUser(userID); err == nil {
				data["Presentations"] = presentations
			}
		} else {
			log.Printf("User lookup failed for session user %d: %v", userID, err)
		}
	}

	// Without a resolved user the page renders the guest view, so the
	// guest fields have to be present even when a session cookie exists.
	if data["User"] == nil {
		usage, err := store.GuestUsage(gid)
		if err != nil {
			log.Printf("Guest usage lookup failed: %v", err)
		}
		data["GuestUsage"] = usage
		data["GuestLimit"] = cfg.Application.GuestLimit
	}

	renderTemplate(w, "index.html", data)
}

func handleGenerate(w http.ResponseWriter, r *http.Request) {
	lang := i18n.GetLang(r)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeGenerateError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Topic is validated before any model call is made.
	topic := strings.TrimSpace(r.FormValue("topic"))
	if topic == "" {
		writeGenerateError(w, http.StatusBadRequest, i18n.T(lang, "error.topic_required"))
		return
	}

	slideCount := defaultSlideCount
	if v := r.FormValue("slide_count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			slideCount = n
		}
	}
	if slideCount < 1 {
		slideCount = 1
	}
	if slideCount > maxSlideCount {
		slideCount = maxSlideCount
	}

	enableVideo := r.FormValue("enable_video") == "true"
	urlLink := strings.TrimSpace(r.FormValue("url_link"))

	userID := sessions.CurrentUserID(r)
	gid := guestID(w, r)

	// Guests are quota-checked before anything expensive happens.
	if userID == 0 {
		usage, err := store.GuestUsage(gid)
		if err != nil {
			log.Printf("Guest usage lookup failed: %v", err)
			writeGenerateError(w, http.StatusInternalServerError, i18n.T(lang, "error.internal"))
			return
		}
		if usage >= cfg.Application.GuestLimit {
			writeGenerateError(w, http.StatusForbidden, i18n.T(lang, "error.quota_exceeded"))
			return
		}
	}

	pdfPath, err := savePDFUpload(r)
	if err != nil {
		log.Printf("PDF upload failed: %v", err)
		writeGenerateError(w, http.StatusBadRequest, err.Error())
		return
	}

	clientID := r.FormValue("client_id")
	if clientID == "" {
		clientID = gid
	}

	pres, err := runner.Run(r.Context(), pipeline.Request{
		Topic:       topic,
		SlideCount:  slideCount,
		EnableVideo: enableVideo,
		URLLink:     urlLink,
		PDFPath:     pdfPath,
		ClientID:    clientID,
	})
	if err != nil {
		log.Printf("Generation failed: %v", err)
		writeGenerateError(w, http.StatusBadGateway, i18n.T(lang, "error.planning_failed"))
		return
	}

	if userID != 0 {
		pres.UserID = sql.NullInt64{Int64: int64(userID), Valid: true}
	}

	if err := store.SavePresentation(pres); err != nil {
		log.Printf("Saving presentation failed: %v", err)
		writeGenerateError(w, http.StatusInternalServerError, i18n.T(lang, "error.internal"))
		return
	}

	// Quota is charged only for generations that actually succeeded.
	if userID == 0 {
		if _, err := store.IncrementGuestUsage(gid); err != nil {
			log.Printf("Guest usage increment failed: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, generateResponse{Success: true, Redirect: "/viewer/" + pres.ID})
}

// savePDFUpload stores an optional pdf_file part under the uploads dir and
// returns its path, or "" when no file was sent.
func savePDFUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("pdf_file")
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	if header.Filename == "" {
		return "", nil
	}

	path := filepath.Join(cfg.Application.Storage.Uploads, "doc_"+uuid.NewString()+".pdf")
	dest, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		return "", err
	}
	return path, nil
}

func handleViewer(w http.ResponseWriter, r *http.Request) {
	pid := mux.Vars(r)["pid"]

	pres, err := store.GetPresentation(pid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		log.Printf("Presentation lookup failed: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := getBaseData(r, pres.Title)
	data["Presentation"] = pres
	renderTemplate(w, "viewer.html", data)
}
