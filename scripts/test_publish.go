//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	recommendStream = "stream:route:recommend"
	doneStream      = "stream:route:done"
)

type point struct {
	ID        int64   `json:"id,omitempty"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type recommendEvent struct {
	RequestID    uuid.UUID `json:"request_id"`
	StartAddress string    `json:"start_address"`
	Venue        point     `json:"venue"`
	Candidates   []point   `json:"candidates"`
	Weather      string    `json:"weather,omitempty"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	start := flag.String("start", "Dortmund Hauptbahnhof", "Start address")
	wait := flag.Duration("wait", 60*time.Second, "How long to wait for the answer")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Тестовое событие: матч в Signal Iduna Park
	event := recommendEvent{
		RequestID:    uuid.New(),
		StartAddress: *start,
		Venue:        point{Name: "Signal Iduna Park", Latitude: 51.4926, Longitude: 7.4519},
		Candidates: []point{
			{ID: 1, Name: "Parkhaus Westfalenhallen", Latitude: 51.4953, Longitude: 7.4565},
			{ID: 2, Name: "Parkplatz Remydamm", Latitude: 51.4982, Longitude: 7.4480},
			{ID: 3, Name: "Parkhaus Hauptbahnhof", Latitude: 51.5180, Longitude: 7.4605},
		},
		Weather: "leichter Regen, 9°C",
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Публикация в стрим
	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: recommendStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", recommendStream)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Request ID: %s\n", event.RequestID)
	fmt.Printf("   Candidates: %d\n", len(event.Candidates))

	fmt.Printf("\nWaiting for response in %s...\n", doneStream)

	timeout := time.After(*wait)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("Timeout waiting for response")
			return
		case <-ticker.C:
			results, err := client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{doneStream, "0"},
				Count:   50,
				Block:   -1,
			}).Result()
			if err != nil && err != redis.Nil {
				continue
			}

			for _, stream := range results {
				for _, msg := range stream.Messages {
					dataStr, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}

					var response map[string]interface{}
					if err := json.Unmarshal([]byte(dataStr), &response); err != nil {
						continue
					}

					if id, ok := response["request_id"].(string); ok && id == event.RequestID.String() {
						fmt.Printf("\nResponse received\n")
						prettyJSON, _ := json.MarshalIndent(response, "", "  ")
						fmt.Printf("%s\n", prettyJSON)
						return
					}
				}
			}
		}
	}
}
