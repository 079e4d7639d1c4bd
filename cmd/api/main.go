package main

import (
	"log"
	"net/http"

	"coursetrack/internal/api"
	"coursetrack/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("coursetrack api listening on %s provider=%q", cfg.APIAddr, cfg.Provider)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
