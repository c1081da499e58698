package main

import (
	"fmt"
	"log"

	"github.com/driftkv/driftkv/logstore"
)

func main() {
	cfg := logstore.DefaultConfig("./data.jsonl")
	cfg.BatchSize = 3

	db, err := logstore.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Buffered writes; the third one crosses the batch threshold and
	// flushes all three to the log in one append.
	db.Set("name", "Alice")
	db.Set("age", 30)
	db.Set("city", "NYC")

	var name string
	if found, _ := db.Get("name", &name); found {
		fmt.Printf("Name: %s\n", name)
	}

	db.Remove("age")
	fmt.Printf("Keys: %v\n", db.Keys())

	stats := db.Stats()
	fmt.Printf("Stats: %+v\n", stats)
}
