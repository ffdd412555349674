package observer

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnemet/motionpitch/internal/database"
)

// Observer watches the uploads directory and indexes every generated asset
// (slide images, video clips, uploaded PDFs) into the generated_assets table,
// deduplicating by content checksum. The pipeline only writes files; the
// observer is the single place that records them.
type Observer struct {
	db          *sql.DB
	dir         string
	activeTasks int
	mu          sync.Mutex
}

func NewObserver(db *sql.DB, uploadsDir string) *Observer {
	return &Observer{
		db:  db,
		dir: uploadsDir,
	}
}

func (o *Observer) incrementTask() {
	o.mu.Lock()
	o.activeTasks++
	o.mu.Unlock()
}

func (o *Observer) decrementTask() {
	o.mu.Lock()
	o.activeTasks--
	o.mu.Unlock()
}

func (o *Observer) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if o.dir == "" {
		return fmt.Errorf("uploads directory not configured")
	}
	if err := os.MkdirAll(o.dir, 0755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %v", err)
	}

	if err := watcher.Add(o.dir); err != nil {
		return err
	}

	log.Printf("Asset observer started, watching: %s", o.dir)

	// Initial scan picks up assets written while the server was down.
	o.scanDirectory()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if AssetKind(event.Name) != "" {
					// Let the writer finish before hashing.
					time.Sleep(2 * time.Second)
					o.processFile(event.Name)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			return nil
		}
	}
}

// AssetKind classifies a file by extension; unknown extensions return "".
func AssetKind(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return "image"
	case ".mp4":
		return "video"
	case ".pdf":
		return "pdf"
	default:
		return ""
	}
}

func (o *Observer) scanDirectory() {
	files, err := os.ReadDir(o.dir)
	if err != nil {
		log.Printf("Failed to scan uploads directory: %v", err)
		return
	}

	for _, f := range files {
		if !f.IsDir() && AssetKind(f.Name()) != "" {
			o.processFile(filepath.Join(o.dir, f.Name()))
		}
	}
}

func (o *Observer) processFile(path string) {
	o.incrementTask()
	defer o.decrementTask()

	filename := filepath.Base(path)

	fileBytes, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Failed to read %s for checksum: %v", filename, err)
		return
	}
	hash := sha256.Sum256(fileBytes)
	checksum := hex.EncodeToString(hash[:])

	if existing, err := database.GetAssetByChecksum(o.db, checksum); err == nil {
		if existing.Filename != filename {
			log.Printf("Asset %s duplicates %s (checksum %s), indexed under existing record", filename, existing.Filename, checksum)
		}
		return
	}

	_, err = database.SaveGeneratedAsset(o.db, &database.GeneratedAsset{
		Filename: filename,
		Checksum: checksum,
		Kind:     AssetKind(path),
	})
	if err != nil {
		log.Printf("Failed to index asset %s: %v", filename, err)
		return
	}
	log.Printf("Indexed asset: %s", filename)
}

func (o *Observer) IsProcessing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeTasks > 0
}
