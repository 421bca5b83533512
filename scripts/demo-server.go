//go:build ignore

// Local stub server for trying out riposte: echo, canned users, a login
// endpoint for extraction demos, and adjustable status/delay endpoints.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func main() {
	// Echoes the request back so captures can be inspected end to end
	http.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		headers := make(map[string]string)
		for name := range r.Header {
			headers[name] = r.Header.Get(name)
		}

		response := map[string]interface{}{
			"method":  r.Method,
			"url":     r.URL.String(),
			"headers": headers,
			"body":    string(body),
			"time":    time.Now().Format(time.RFC3339),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})

	// Canned collection for run/test configs
	http.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": 1, "name": "Alice", "email": "alice@example.com"},
			{"id": 2, "name": "Bob", "email": "bob@example.com"},
		})
	})

	// Hands out a token for variable-extraction demos
	http.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "demo-token",
			"user":  map[string]interface{}{"id": 1, "name": "Alice"},
		})
	})

	// Responds with the requested status code, e.g. /status/503
	http.HandleFunc("/status/", func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/status/"))
		if err != nil || code < 100 || code > 599 {
			http.Error(w, "bad status code", http.StatusBadRequest)
			return
		}
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"status": %d}`, code)
	})

	// Sleeps for the requested duration, e.g. /delay/250ms
	http.HandleFunc("/delay/", func(w http.ResponseWriter, r *http.Request) {
		delay, err := time.ParseDuration(strings.TrimPrefix(r.URL.Path, "/delay/"))
		if err != nil {
			http.Error(w, "bad duration", http.StatusBadRequest)
			return
		}
		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"slept": "%s"}`, delay)
	})

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	port := "8080"
	fmt.Printf("Starting demo server on http://localhost:%s\n", port)
	fmt.Println("Endpoints:")
	fmt.Println("  - ANY /echo")
	fmt.Println("  - GET /users")
	fmt.Println("  - POST /login")
	fmt.Println("  - GET /status/{code}")
	fmt.Println("  - GET /delay/{duration}")
	fmt.Println("  - GET /health")
	fmt.Println()

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}
