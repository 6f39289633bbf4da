package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/annel0/voxel-sandbox/internal/api"
	"github.com/annel0/voxel-sandbox/internal/sandbox"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/gorilla/websocket"
)

const (
	defaultServerAddr = "http://localhost:8088"
	timeFormat        = "15:04:05"
)

func main() {
	var (
		serverAddr = flag.String("server", defaultServerAddr, "Sandbox REST address")
		command    = flag.String("cmd", "tail", "Command: tail, blocks, variants")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		limit      = flag.Int("limit", 0, "Stop after N events (0 = follow)")
	)
	flag.Parse()

	base, err := url.Parse(*serverAddr)
	if err != nil {
		log.Fatalf("❌ Invalid server address: %v", err)
	}

	switch *command {
	case "tail":
		if err := tailEvents(base, parseStringList(*eventTypes), *limit); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}

	case "blocks":
		if err := showBlocks(base); err != nil {
			log.Fatalf("❌ Blocks failed: %v", err)
		}

	case "variants":
		if err := showVariants(base); err != nil {
			log.Fatalf("❌ Variants failed: %v", err)
		}

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, blocks, variants")
		os.Exit(1)
	}
}

// tailEvents выводит события сцены из /ws в реальном времени
func tailEvents(base *url.URL, types []string, limit int) error {
	wsURL := *base
	wsURL.Scheme = strings.Replace(base.Scheme, "http", "ws", 1)
	wsURL.Path = "/ws"
	if len(types) > 0 {
		wsURL.RawQuery = url.Values{"types": {strings.Join(types, ",")}}.Encode()
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL.String(), err)
	}
	defer conn.Close()

	fmt.Printf("🎬 Tailing scene events from %s\n", wsURL.String())

	eventCount := 0
	for {
		var msg api.SceneMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			return fmt.Errorf("stream error: %w", err)
		}

		printMessage(msg)
		if msg.Type == api.MessageTypeSnapshot {
			continue
		}
		eventCount++

		if limit > 0 && eventCount >= limit {
			break
		}
	}

	fmt.Printf("\n📊 Total events: %d\n", eventCount)
	return nil
}

// showBlocks выводит текущую карту занятости
func showBlocks(base *url.URL) error {
	var resp struct {
		Data api.BlocksResponse `json:"data"`
	}
	if err := getJSON(base, "/api/blocks", &resp); err != nil {
		return err
	}

	fmt.Printf("🧱 Blocks: %d\n", resp.Data.Total)
	for _, b := range resp.Data.Blocks {
		fmt.Printf("  %-12s %s\n", b.Key, b.Variant.ID)
	}
	return nil
}

// showVariants выводит каталог вариантов
func showVariants(base *url.URL) error {
	var resp struct {
		Data []sandbox.VariantInfo `json:"data"`
	}
	if err := getJSON(base, "/api/variants", &resp); err != nil {
		return err
	}

	fmt.Println("📋 Variants")
	for _, v := range resp.Data {
		mark := " "
		if v.Selected {
			mark = "*"
		}
		fmt.Printf(" %s %-8s %-10s ready=%v\n", mark, v.ID, v.Name, v.Ready)
	}
	return nil
}

func getJSON(base *url.URL, path string, out any) error {
	u := *base
	u.Path = path

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(u.String())
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// printMessage выводит кадр в читаемом формате
func printMessage(msg api.SceneMessage) {
	fmt.Printf("[%s] [%s] %s\n", msg.Timestamp.Local().Format(timeFormat), msg.Type, msg.ID)

	// Добавляем детали в зависимости от типа события
	switch msg.Type {
	case api.MessageTypeSnapshot:
		var snap api.BlocksResponse
		if json.Unmarshal(msg.Payload, &snap) == nil {
			fmt.Printf("  Blocks: %d\n", snap.Total)
		}
	case sandbox.EventTypePreview:
		var p world.Preview
		if json.Unmarshal(msg.Payload, &p) == nil {
			fmt.Printf("  Target: %v has=%v can_place=%v\n", p.Target, p.HasTarget, p.CanPlace)
		}
	default:
		var ev world.BlockEvent
		if json.Unmarshal(msg.Payload, &ev) == nil {
			if ev.Cleared > 0 {
				fmt.Printf("  Cleared: %d\n", ev.Cleared)
			} else {
				fmt.Printf("  Block: %s Variant: %s\n", ev.Block.Key, ev.Block.Variant.ID)
			}
		}
	}
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
