package main

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gnemet/motionpitch/internal/auth"
	"github.com/gnemet/motionpitch/internal/database"
	"github.com/gnemet/motionpitch/internal/i18n"
)

func handleRegister(w http.ResponseWriter, r *http.Request) {
	lang := i18n.GetLang(r)

	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	name := strings.TrimSpace(r.FormValue("name"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		http.Error(w, i18n.T(lang, "error.invalid_login"), http.StatusBadRequest)
		return
	}

	if _, err := store.GetUserByEmail(email); err == nil {
		http.Error(w, i18n.T(lang, "error.email_taken"), http.StatusConflict)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("User lookup failed: %v", err)
		http.Error(w, i18n.T(lang, "error.internal"), http.StatusInternalServerError)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Printf("Password hashing failed: %v", err)
		http.Error(w, i18n.T(lang, "error.internal"), http.StatusInternalServerError)
		return
	}

	id, err := store.SaveUser(&database.User{Email: email, Name: name, PasswordHash: hash})
	if err != nil {
		log.Printf("User insert failed: %v", err)
		http.Error(w, i18n.T(lang, "error.internal"), http.StatusInternalServerError)
		return
	}

	if err := sessions.SetSession(w, id); err != nil {
		log.Printf("Session issue failed: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	lang := i18n.GetLang(r)

	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")

	user, err := store.GetUserByEmail(email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, password) {
		http.Error(w, i18n.T(lang, "error.invalid_login"), http.StatusUnauthorized)
		return
	}

	if err := sessions.SetSession(w, user.ID); err != nil {
		log.Printf("Session issue failed: %v", err)
		http.Error(w, i18n.T(lang, "error.internal"), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	sessions.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
