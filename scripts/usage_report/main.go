package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Quick report of generation activity: total presentations, guest usage rows
// and indexed assets. Handy when checking what the quota is doing in prod.
func main() {
	godotenv.Load()

	db, err := sql.Open("postgres", os.Getenv("DB_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	var presentations, withVideo, assets int
	if err := db.QueryRow("SELECT COUNT(*) FROM presentations").Scan(&presentations); err != nil {
		log.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM presentations WHERE has_video").Scan(&withVideo); err != nil {
		log.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM generated_assets").Scan(&assets); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Presentations: %d (with video: %d)\n", presentations, withVideo)
	fmt.Printf("Indexed assets: %d\n", assets)

	rows, err := db.Query("SELECT guest_id, generations FROM guest_usage ORDER BY generations DESC LIMIT 20")
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	fmt.Println("Top guests:")
	for rows.Next() {
		var guestID string
		var generations int
		if err := rows.Scan(&guestID, &generations); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %s: %d\n", guestID, generations)
	}
}
