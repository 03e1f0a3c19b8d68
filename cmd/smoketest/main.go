// smoketest checks that the services a rendering deployment depends
// on are reachable: Redis for job state, Kafka for the job queue and
// the mapserver API itself.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"
	h3 "github.com/uber/h3-go/v4"
)

func getenv(key, def string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return def
}

func testRedis(ctx context.Context, addr string) error {
	fmt.Println("Redis test")
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
	})
	defer func() { _ = client.Close() }()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	if err := client.Set(ctx, "smoketest", "ok", 30*time.Second).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	val, err := client.Get(ctx, "smoketest").Result()
	if err != nil {
		return fmt.Errorf("redis get: %w", err)
	}
	fmt.Println("redis GET smoketest:", val)
	return nil
}

func testAPI(baseURL string) error {
	fmt.Println("API test")

	resp, err := http.Get(strings.TrimRight(baseURL, "/") + "/healthz")
	if err != nil {
		return fmt.Errorf("http get healthz: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("healthz status %d: %s", resp.StatusCode, string(b))
	}

	resp2, err := http.Get(strings.TrimRight(baseURL, "/") + "/papers")
	if err != nil {
		return fmt.Errorf("http get papers: %w", err)
	}
	defer func() { _ = resp2.Body.Close() }()
	body, _ := io.ReadAll(io.LimitReader(resp2.Body, 2048))
	fmt.Println("papers sample:")
	fmt.Println(string(body))
	return nil
}

func testKafka(brokers []string, topic string) error {
	fmt.Println("Kafka test")

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Version = sarama.V3_6_0_0
	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return fmt.Errorf("producer create: %w", err)
	}
	defer func() { _ = prod.Close() }()

	payload := map[string]any{
		"smoketest": true,
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
	}
	msgBytes, _ := json.Marshal(payload)
	_, _, err = prod.SendMessage(&sarama.ProducerMessage{
		Topic: topic, Value: sarama.ByteEncoder(msgBytes),
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	fmt.Println("produced one message")

	consumer, err := sarama.NewConsumer(brokers, cfg)
	if err != nil {
		return fmt.Errorf("consumer create: %w", err)
	}
	defer func() { _ = consumer.Close() }()

	pc, err := consumer.ConsumePartition(topic, 0, sarama.OffsetNewest)
	if err != nil {
		pc, err = consumer.ConsumePartition(topic, 0, sarama.OffsetOldest)
		if err != nil {
			return fmt.Errorf("consume partition: %w", err)
		}
	}
	defer func() { _ = pc.Close() }()

	select {
	case m := <-pc.Messages():
		fmt.Println("consumed:", string(m.Value))
	case <-time.After(5 * time.Second):
		fmt.Println("no message consumed (timeout)")
	}

	return nil
}

// demoH3 exercises the cell prefilter library used by the PBF source.
func demoH3() error {
	fmt.Println("H3 demo")
	lat, lon := 48.8126, 2.0422
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lon}, 8)
	if err != nil {
		return fmt.Errorf("lat/lng to cell: %w", err)
	}
	neighbors, err := h3.GridDisk(cell, 1)
	if err != nil {
		return fmt.Errorf("grid disk: %w", err)
	}
	fmt.Printf("H3 center: %s, neighbors: %d\n", cell.String(), len(neighbors))
	return nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	redisAddr := getenv("REDIS_ADDR", "localhost:6379")
	apiURL := getenv("MAPSERVER_URL", "http://localhost:8080")
	brokers := strings.Split(getenv("KAFKA_BROKERS", "localhost:9092"), ",")
	topic := getenv("KAFKA_TOPIC", "render-jobs")

	if err := testRedis(ctx, redisAddr); err != nil {
		fmt.Println("Redis error:", err)
		return
	}
	if err := testAPI(apiURL); err != nil {
		fmt.Println("API error:", err)
		return
	}
	if err := testKafka(brokers, topic); err != nil {
		fmt.Println("Kafka error:", err)
		return
	}
	if err := demoH3(); err != nil {
		fmt.Println("H3 error:", err)
		return
	}
	fmt.Println("All tests completed")
}
